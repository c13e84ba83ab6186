package models

import "time"

// Review is one customer's rating of one order. At most one review exists per
// order; it is never deleted in the normal flow.
type Review struct {
	ID           string    `bson:"_id" json:"id"`
	OrderID      string    `bson:"order_id" json:"orderId"`
	StoreID      string    `bson:"store_id" json:"storeId"`
	CustomerID   string    `bson:"customer_id" json:"customerId"`
	CustomerName string    `bson:"customer_name" json:"customerName"`
	Rating       int       `bson:"rating" json:"rating"`
	Comment      string    `bson:"comment" json:"comment"`
	Response     string    `bson:"response,omitempty" json:"response,omitempty"`
	Helpful      int       `bson:"helpful" json:"helpful"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// ReviewStats is a derived aggregate, recomputed from the full review set on
// demand rather than kept as incrementable counters.
type ReviewStats struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// CreateReviewRequest is the payload for a customer review of an order.
type CreateReviewRequest struct {
	OrderID      string `json:"orderId" binding:"required"`
	StoreID      string `json:"storeId" binding:"required"`
	CustomerID   string `json:"customerId" binding:"required"`
	CustomerName string `json:"customerName" binding:"required"`
	Rating       int    `json:"rating" binding:"required"`
	Comment      string `json:"comment" binding:"required"`
}

// RespondReviewRequest is the store's one-time reply to a review.
type RespondReviewRequest struct {
	Response string `json:"response" binding:"required"`
}
