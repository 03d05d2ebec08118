package model

import "time"

type Purchase struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	PurchaseCode string `gorm:"column:purchase_code;size:100;uniqueIndex;not null"`
	UserUID      string `gorm:"column:user_uid;size:128;index;not null"`
	BranchID     uint64 `gorm:"column:branch_id;index;not null"`

	TotalAmount float64 `gorm:"column:total_amount;not null"`
	Currency    string  `gorm:"size:3;default:USD"`

	// Sums over items, recomputed when items are finalized.
	EstimatedWasteWeight float64 `gorm:"column:estimated_waste_weight;not null;default:0"`
	PotentialPoints      int     `gorm:"column:potential_points;not null;default:0"`

	// Issued once at creation, never regenerated.
	QRData      string     `gorm:"column:qr_code_data;type:text"`
	QRImageURL  string     `gorm:"column:qr_code_url;size:512"`
	QRExpiresAt *time.Time `gorm:"column:qr_expires_at"`

	IsRecycled bool       `gorm:"column:is_recycled;default:false"`
	RecycledAt *time.Time `gorm:"column:recycled_at"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID"`
}

func (Purchase) TableName() string {
	return "purchases"
}

type PurchaseItem struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	PurchaseID  uint64 `gorm:"column:purchase_id;index;not null"`
	WasteTypeID uint64 `gorm:"column:waste_type_id;index;not null"`

	Name            string  `gorm:"size:200;not null"`
	Quantity        int     `gorm:"not null;default:1"`
	EstimatedWeight float64 `gorm:"column:estimated_weight;not null;default:0"` // kg
	PotentialPoints int     `gorm:"column:potential_points;not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`

	WasteType *WasteType `gorm:"foreignKey:WasteTypeID"`
}

func (PurchaseItem) TableName() string {
	return "purchase_items"
}
