package coupons

import "time"

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

type Coupon struct {
	ID   string `gorm:"type:char(36);primaryKey" json:"-"`
	Code string `gorm:"type:varchar(64);not null;uniqueIndex:ux_coupons_code" json:"code"`

	DiscountType  string  `gorm:"type:varchar(16);not null" json:"discount_type"`
	DiscountValue float64 `gorm:"type:decimal(10,2);not null" json:"discount_value"`

	MinSubtotal float64  `gorm:"type:decimal(10,2);not null;default:0" json:"min_subtotal"`
	MaxDiscount *float64 `gorm:"type:decimal(10,2)" json:"max_discount,omitempty"`

	StartsAt *time.Time `gorm:"type:datetime(3)" json:"starts_at,omitempty"`
	EndsAt   *time.Time `gorm:"type:datetime(3)" json:"ends_at,omitempty"`

	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	UsageLimit *int `gorm:"" json:"usage_limit,omitempty"`
	UsedCount  int  `gorm:"not null;default:0" json:"used_count"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
}

func (Coupon) TableName() string { return "coupons" }
