package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/config"
	"github.com/ecorewards/ecorewards-backend/internal/db"
	"github.com/ecorewards/ecorewards-backend/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Branch{},
		&model.WasteType{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.RecyclingEvent{},
		&model.RecyclingItem{},
		&model.Reward{},
		&model.UserReward{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("waste types already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, wt := range buildWasteTypes() {
			wt := wt
			if err := tx.Where("name = ?", wt.Name).FirstOrCreate(&wt).Error; err != nil {
				return fmt.Errorf("seed waste type %q: %w", wt.Name, err)
			}
		}
		for _, b := range buildBranches() {
			b := b
			if err := tx.Where("name = ?", b.Name).FirstOrCreate(&b).Error; err != nil {
				return fmt.Errorf("seed branch %q: %w", b.Name, err)
			}
		}
		for _, rw := range buildRewards() {
			rw := rw
			if err := tx.Where("name = ?", rw.Name).FirstOrCreate(&rw).Error; err != nil {
				return fmt.Errorf("seed reward %q: %w", rw.Name, err)
			}
		}
		log.Printf("seed completed")
		return nil
	})
}

func buildWasteTypes() []model.WasteType {
	return []model.WasteType{
		{
			Name:              "Botella de Plástico PET",
			Description:       "Botellas de bebidas de plástico transparente",
			Category:          "plastic",
			RecyclingPoints:   10,
			CarbonFootprintKg: 2.5,
			Biodegradable:     false,
			RecyclingNotes:    "Vaciar completamente, retirar etiquetas y tapas",
			BinColor:          "yellow",
			IsActive:          true,
		},
		{
			Name:              "Envase de Comida de Cartón",
			Description:       "Cajas de pizza, envases de comida rápida",
			Category:          "paper",
			RecyclingPoints:   8,
			CarbonFootprintKg: 1.8,
			Biodegradable:     true,
			RecyclingNotes:    "Remover restos de comida y grasas",
			BinColor:          "blue",
			IsActive:          true,
		},
		{
			Name:              "Lata de Aluminio",
			Description:       "Latas de bebidas y conservas",
			Category:          "metal",
			RecyclingPoints:   15,
			CarbonFootprintKg: 3.2,
			Biodegradable:     false,
			RecyclingNotes:    "Enjuagar para remover residuos",
			BinColor:          "gray",
			IsActive:          true,
		},
		{
			Name:              "Botella de Vidrio",
			Description:       "Botellas de bebidas de vidrio",
			Category:          "glass",
			RecyclingPoints:   12,
			CarbonFootprintKg: 2.1,
			Biodegradable:     false,
			RecyclingNotes:    "Retirar tapas y etiquetas",
			BinColor:          "green",
			IsActive:          true,
		},
		{
			Name:              "Restos Orgánicos",
			Description:       "Residuos de frutas y verduras",
			Category:          "organic",
			RecyclingPoints:   5,
			CarbonFootprintKg: 0.8,
			Biodegradable:     true,
			RecyclingNotes:    "Sin carnes ni lácteos",
			BinColor:          "brown",
			IsActive:          true,
		},
		{
			Name:              "Dispositivo Electrónico",
			Description:       "Celulares, baterías, componentes electrónicos",
			Category:          "electronic",
			RecyclingPoints:   25,
			CarbonFootprintKg: 5.5,
			Biodegradable:     false,
			RecyclingNotes:    "Remover datos personales",
			BinColor:          "red",
			IsActive:          true,
		},
	}
}

func buildBranches() []model.Branch {
	return []model.Branch{
		{
			Name:     "EcoRestaurant Centro",
			Address:  "Av. Reforma 123",
			City:     "Ciudad de México",
			Country:  "México",
			Phone:    "+52 55 1234 5678",
			IsActive: true,
		},
		{
			Name:     "EcoRestaurant Polanco",
			Address:  "Av. Presidente Masaryk 456",
			City:     "Ciudad de México",
			Country:  "México",
			Phone:    "+52 55 2345 6789",
			IsActive: true,
		},
		{
			Name:     "EcoRestaurant Condesa",
			Address:  "Av. Michoacán 789",
			City:     "Ciudad de México",
			Country:  "México",
			Phone:    "+52 55 3456 7890",
			IsActive: true,
		},
	}
}

func buildRewards() []model.Reward {
	return []model.Reward{
		{
			Name:              "Café Gratis",
			Description:       "Un café americano o espresso gratis",
			Type:              model.RewardTypeFreeItem,
			PointsRequired:    100,
			MonetaryValue:     35.0,
			Currency:          "MXN",
			TotalQuantity:     intPtr(500),
			RemainingQuantity: intPtr(500),
			Status:            model.RewardStatusActive,
			UsageLimitPerUser: 3,
			Category:          "bebidas",
		},
		{
			Name:              "Descuento 15% en tu próxima comida",
			Description:       "15% de descuento en cualquier platillo del menú",
			Type:              model.RewardTypeDiscount,
			PointsRequired:    250,
			MonetaryValue:     75.0,
			Currency:          "MXN",
			TotalQuantity:     intPtr(200),
			RemainingQuantity: intPtr(200),
			Status:            model.RewardStatusActive,
			UsageLimitPerUser: 1,
			Category:          "descuentos",
		},
		{
			Name:              "Postre Gratis",
			Description:       "Cualquier postre del menú sin costo",
			Type:              model.RewardTypeFreeItem,
			PointsRequired:    150,
			MonetaryValue:     55.0,
			Currency:          "MXN",
			TotalQuantity:     intPtr(300),
			RemainingQuantity: intPtr(300),
			Status:            model.RewardStatusActive,
			UsageLimitPerUser: 2,
			Category:          "postres",
		},
		{
			Name:              "Bolsa Ecológica EcoRewards",
			Description:       "Bolsa reutilizable de material reciclado",
			Type:              model.RewardTypeMerchandise,
			PointsRequired:    500,
			MonetaryValue:     120.0,
			Currency:          "MXN",
			TotalQuantity:     intPtr(100),
			RemainingQuantity: intPtr(100),
			Status:            model.RewardStatusActive,
			UsageLimitPerUser: 1,
			Category:          "merchandise",
		},
		{
			Name:              "Experiencia de Compostaje",
			Description:       "Taller de 2 horas sobre compostaje doméstico",
			Type:              model.RewardTypeExperience,
			PointsRequired:    800,
			MonetaryValue:     200.0,
			Currency:          "MXN",
			TotalQuantity:     intPtr(50),
			RemainingQuantity: intPtr(50),
			Status:            model.RewardStatusActive,
			UsageLimitPerUser: 1,
			Category:          "experiencias",
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func shouldSeed(gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.Model(&model.WasteType{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count waste types: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
