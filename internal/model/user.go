package model

import "time"

// User carries the cumulative recycling totals for one account. Identity
// comes from the auth provider, so the Firebase UID is the primary key.
type User struct {
	UID         string `gorm:"column:uid;primaryKey;size:128"`
	Email       string `gorm:"size:255;index"`
	DisplayName string `gorm:"column:display_name;size:200"`
	IsAdmin     bool   `gorm:"column:is_admin;default:false"`
	IsActive    bool   `gorm:"column:is_active;default:true"`

	TotalPoints        int     `gorm:"column:total_points;not null;default:0"`
	TotalRecycledItems int     `gorm:"column:total_recycled_items;not null;default:0"`
	CarbonReducedKg    float64 `gorm:"column:carbon_footprint_reduced;not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
