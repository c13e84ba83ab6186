package models

import "time"

// PromotionType represents the kind of discount a promotion applies.
type PromotionType string

const (
	PromotionPercentage   PromotionType = "percentage"
	PromotionFixed        PromotionType = "fixed"
	PromotionFreeDelivery PromotionType = "freeDelivery"
	PromotionBuyXGetY     PromotionType = "buyXgetY"
)

// PromotionStatus is derived from the validity window and the active flag at
// read time. It is never persisted, so it cannot drift from the clock.
type PromotionStatus string

const (
	PromotionActive    PromotionStatus = "active"
	PromotionScheduled PromotionStatus = "scheduled"
	PromotionExpired   PromotionStatus = "expired"
	PromotionInactive  PromotionStatus = "inactive"
)

// Promotion is a merchant-created discount rule.
type Promotion struct {
	ID            string        `bson:"_id" json:"id"`
	StoreID       string        `bson:"store_id" json:"storeId"`
	Name          string        `bson:"name" json:"name"`
	Type          PromotionType `bson:"type" json:"type"`
	Value         float64       `bson:"value" json:"value"`
	BuyQuantity   int           `bson:"buy_quantity,omitempty" json:"buyQuantity,omitempty"`
	GetQuantity   int           `bson:"get_quantity,omitempty" json:"getQuantity,omitempty"`
	MinOrderValue float64       `bson:"min_order_value" json:"minOrderValue"`
	MaxDiscount   float64       `bson:"max_discount,omitempty" json:"maxDiscount,omitempty"`
	StartDate     time.Time     `bson:"start_date" json:"startDate"`
	EndDate       time.Time     `bson:"end_date" json:"endDate"`
	UsageLimit    int           `bson:"usage_limit" json:"usageLimit"` // 0 = unlimited
	UsageCount    int           `bson:"usage_count" json:"usageCount"`
	IsActive      bool          `bson:"is_active" json:"isActive"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// StatusAt computes the derived promotion status for the given instant.
func (p *Promotion) StatusAt(now time.Time) PromotionStatus {
	if !p.IsActive {
		return PromotionInactive
	}
	if now.Before(p.StartDate) {
		return PromotionScheduled
	}
	if now.After(p.EndDate) {
		return PromotionExpired
	}
	return PromotionActive
}

// CreatePromotionRequest is the merchant payload for a new promotion.
type CreatePromotionRequest struct {
	StoreID       string        `json:"storeId" binding:"required"`
	Name          string        `json:"name" binding:"required,min=3"`
	Type          PromotionType `json:"type" binding:"required,oneof=percentage fixed freeDelivery buyXgetY"`
	Value         float64       `json:"value" binding:"gte=0"`
	BuyQuantity   int           `json:"buyQuantity" binding:"gte=0"`
	GetQuantity   int           `json:"getQuantity" binding:"gte=0"`
	MinOrderValue float64       `json:"minOrderValue" binding:"gte=0"`
	MaxDiscount   float64       `json:"maxDiscount" binding:"gte=0"`
	StartDate     time.Time     `json:"startDate" binding:"required"`
	EndDate       time.Time     `json:"endDate" binding:"required"`
	UsageLimit    int           `json:"usageLimit" binding:"gte=0"`
}
