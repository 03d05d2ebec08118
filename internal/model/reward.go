package model

import "time"

type RewardType string

const (
	RewardTypeDiscount    RewardType = "discount"
	RewardTypeFreeItem    RewardType = "free_item"
	RewardTypeVoucher     RewardType = "voucher"
	RewardTypeExperience  RewardType = "experience"
	RewardTypeMerchandise RewardType = "merchandise"
)

type RewardStatus string

const (
	RewardStatusActive     RewardStatus = "active"
	RewardStatusInactive   RewardStatus = "inactive"
	RewardStatusExpired    RewardStatus = "expired"
	RewardStatusOutOfStock RewardStatus = "out_of_stock"
)

type UserRewardStatus string

const (
	UserRewardStatusActive    UserRewardStatus = "active"
	UserRewardStatusUsed      UserRewardStatus = "used"
	UserRewardStatusExpired   UserRewardStatus = "expired"
	UserRewardStatusCancelled UserRewardStatus = "cancelled"
)

type Reward struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	Name        string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text"`
	Type        RewardType `gorm:"size:32;not null"`

	PointsRequired int     `gorm:"column:points_required;not null"`
	MonetaryValue  float64 `gorm:"column:monetary_value;default:0"`
	Currency       string  `gorm:"size:3;default:USD"`

	// nil quantities mean unlimited stock.
	TotalQuantity     *int         `gorm:"column:total_quantity"`
	RemainingQuantity *int         `gorm:"column:remaining_quantity"`
	Status            RewardStatus `gorm:"column:status;size:32;not null;default:active"`

	UsageLimitPerUser int    `gorm:"column:usage_limit_per_user;not null;default:1"`
	Category          string `gorm:"size:100;index"`
	ImageURL          string `gorm:"column:image_url;size:512"`

	TotalRedeemed int `gorm:"column:total_redeemed;not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Reward) TableName() string {
	return "rewards"
}

// IsAvailable reports whether the reward can currently be redeemed.
func (r *Reward) IsAvailable() bool {
	if r.Status != RewardStatusActive {
		return false
	}
	if r.RemainingQuantity != nil && *r.RemainingQuantity <= 0 {
		return false
	}
	return true
}

type UserReward struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserUID  string `gorm:"column:user_uid;size:128;index;not null"`
	RewardID uint64 `gorm:"column:reward_id;index;not null"`

	RedemptionCode string           `gorm:"column:redemption_code;size:100;uniqueIndex;not null"`
	PointsSpent    int              `gorm:"column:points_spent;not null"`
	Status         UserRewardStatus `gorm:"column:status;size:32;not null;default:active"`

	QRImageURL string `gorm:"column:qr_code_url;size:512"`

	UsedAt         *time.Time `gorm:"column:used_at"`
	UsedAtBranchID *uint64    `gorm:"column:used_at_branch_id"`
	ExpiresAt      *time.Time `gorm:"column:expires_at"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Reward *Reward `gorm:"foreignKey:RewardID"`
}

func (UserReward) TableName() string {
	return "user_rewards"
}

// IsValid reports whether the redemption can still be used.
func (ur *UserReward) IsValid(now time.Time) bool {
	if ur.Status != UserRewardStatusActive {
		return false
	}
	if ur.ExpiresAt != nil && !now.Before(*ur.ExpiresAt) {
		return false
	}
	return true
}
