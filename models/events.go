package models

import "time"

// OrderStatusChangedEvent is published to Kafka after every successful
// transition. Downstream consumers: courier dispatch, customer-app push.
type OrderStatusChangedEvent struct {
	EventType  string      `json:"event_type"`
	OrderID    string      `json:"order_id"`
	StoreID    string      `json:"store_id"`
	CustomerID string      `json:"customer_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewOrderAlertEvent is the payload of the best-effort SNS alert sent when a
// store's active-orders view grows.
type NewOrderAlertEvent struct {
	EventType     string    `json:"event_type"`
	StoreID       string    `json:"store_id"`
	PreviousCount int       `json:"previous_count"`
	NewCount      int       `json:"new_count"`
	Timestamp     time.Time `json:"timestamp"`
}
