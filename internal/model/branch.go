package model

import "time"

type Branch struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"size:200;not null"`
	Address string `gorm:"type:text;not null"`
	City    string `gorm:"size:100;not null"`
	Country string `gorm:"size:100"`
	Phone   string `gorm:"size:20"`

	IsActive bool `gorm:"column:is_active;default:true"`

	// Aggregates maintained by the recycling lifecycle; monotonically
	// increasing, never decremented.
	TotalRecycledItems int     `gorm:"column:total_recycled_items;not null;default:0"`
	TotalCarbonReduced float64 `gorm:"column:total_carbon_reduced;not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Branch) TableName() string {
	return "branches"
}
