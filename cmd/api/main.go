package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ecorewards/ecorewards-backend/internal/config"
	"github.com/ecorewards/ecorewards-backend/internal/db"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := conn.AutoMigrate(
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
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	srv, err := server.New(cfg, conn, logger, gitSHA, buildTime)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	port := cfg.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	logger.Info("starting server", zap.String("addr", addr))
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
