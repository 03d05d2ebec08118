package model

import "time"

// WasteType is reference data: immutable while recycling events run,
// maintained only by administrative seeding.
type WasteType struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:50;index;not null"` // plastic, paper, glass, metal, organic, electronic

	RecyclingPoints   int     `gorm:"column:recycling_points;not null;default:0"` // points per unit
	CarbonFootprintKg float64 `gorm:"column:carbon_footprint_per_kg;not null;default:0"`
	Biodegradable     bool    `gorm:"default:false"`
	RecyclingNotes    string  `gorm:"column:recycling_instructions;type:text"`
	BinColor          string  `gorm:"column:bin_color;size:50"`
	IsActive          bool    `gorm:"column:is_active;default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (WasteType) TableName() string {
	return "waste_types"
}
