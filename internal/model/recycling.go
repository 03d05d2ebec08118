package model

import "time"

type RecyclingStatus string

const (
	RecyclingStatusPending    RecyclingStatus = "pending"
	RecyclingStatusInProgress RecyclingStatus = "in_progress"
	RecyclingStatusCompleted  RecyclingStatus = "completed"
	RecyclingStatusFailed     RecyclingStatus = "failed"
)

type ValidationStatus string

const (
	ValidationStatusPending      ValidationStatus = "pending"
	ValidationStatusValidated    ValidationStatus = "validated"
	ValidationStatusRejected     ValidationStatus = "rejected"
	ValidationStatusManualReview ValidationStatus = "manual_review"
)

// RecyclingEvent tracks one scanned QR through validation and settlement.
// Events are never deleted; failed ones stay behind as the audit trail.
type RecyclingEvent struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	EventCode string `gorm:"column:event_code;size:100;uniqueIndex;not null"`

	UserUID    string `gorm:"column:user_uid;size:128;index;not null"`
	PurchaseID uint64 `gorm:"column:purchase_id;index;not null"`
	BranchID   uint64 `gorm:"column:branch_id;index;not null"`

	Status           RecyclingStatus  `gorm:"column:status;size:32;not null"`
	ValidationStatus ValidationStatus `gorm:"column:validation_status;size:32;not null"`

	PointsEarned    int     `gorm:"column:points_earned;not null;default:0"`
	PointsPotential int     `gorm:"column:points_potential;not null;default:0"`
	AccuracyScore   float64 `gorm:"column:accuracy_score;not null;default:0"` // 0-100

	AIValidationID     string  `gorm:"column:ai_validation_id;size:100"`
	AIConfidenceScore  float64 `gorm:"column:ai_confidence_score;not null;default:0"`
	ValidationImageURL string  `gorm:"column:validation_image_url;size:512"`

	TotalWeightRecycled    float64 `gorm:"column:total_weight_recycled;not null;default:0"`    // kg
	CarbonFootprintReduced float64 `gorm:"column:carbon_footprint_reduced;not null;default:0"` // kg CO2

	QRScannedAt           *time.Time `gorm:"column:qr_scanned_at"`
	ValidationStartedAt   *time.Time `gorm:"column:validation_started_at"`
	ValidationCompletedAt *time.Time `gorm:"column:validation_completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Items []RecyclingItem `gorm:"foreignKey:RecyclingEventID"`
}

func (RecyclingEvent) TableName() string {
	return "recycling_events"
}

// TotalWeight sums the recycled weight over items.
func (e *RecyclingEvent) TotalWeight() float64 {
	var total float64
	for _, it := range e.Items {
		total += it.WeightRecycled
	}
	return total
}

// CarbonReduced sums weight * per-kg factor over items. Items must have
// their WasteType preloaded.
func (e *RecyclingEvent) CarbonReduced() float64 {
	var total float64
	for _, it := range e.Items {
		if it.WasteType != nil {
			total += it.WeightRecycled * it.WasteType.CarbonFootprintKg
		}
	}
	return total
}

type RecyclingItem struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	RecyclingEventID uint64 `gorm:"column:recycling_event_id;index;not null"`
	WasteTypeID      uint64 `gorm:"column:waste_type_id;index;not null"`

	Name           string  `gorm:"size:200;not null"`
	Quantity       int     `gorm:"not null;default:1"`
	WeightRecycled float64 `gorm:"column:weight_recycled;not null;default:0"` // kg, 0 until validated

	IsCorrectlyClassified bool    `gorm:"column:is_correctly_classified;default:false"`
	PredictedBin          string  `gorm:"column:predicted_bin;size:50"`
	ConfidenceScore       float64 `gorm:"column:confidence_score;not null;default:0"`

	// Awarded in full or not at all.
	PointsPotential int `gorm:"column:points_potential;not null;default:0"`
	PointsAwarded   int `gorm:"column:points_awarded;not null;default:0"`

	RejectedReason string `gorm:"column:rejected_reason;size:200"`

	CreatedAt time.Time `gorm:"autoCreateTime"`

	WasteType *WasteType `gorm:"foreignKey:WasteTypeID"`
}

func (RecyclingItem) TableName() string {
	return "recycling_items"
}
