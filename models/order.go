package models

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// ActiveStatuses are the states shown on the kitchen kanban; a growing result
// set for this filter is what triggers the new-order alert.
var ActiveStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing}

// IsActiveStatusSet reports whether statuses is exactly the active-order
// set, in any order. Only streams over this set drive the new-order alert.
func IsActiveStatusSet(statuses []OrderStatus) bool {
	if len(statuses) != len(ActiveStatuses) {
		return false
	}
	seen := map[OrderStatus]bool{}
	for _, s := range statuses {
		seen[s] = true
	}
	for _, s := range ActiveStatuses {
		if !seen[s] {
			return false
		}
	}
	return true
}

// transitions is the only legal set of status moves. Terminal states have no
// outgoing transitions, so cancelling a completed order fails loudly.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusReady, StatusCancelled},
	StatusReady:      {StatusInDelivery, StatusCancelled},
	StatusInDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// AllowedNext returns the statuses the given status may transition to.
func AllowedNext(from OrderStatus) []OrderStatus {
	next, ok := transitions[from]
	if !ok {
		return nil
	}
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s OrderStatus) bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// PaymentMethod is how the customer pays on checkout.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentPix        PaymentMethod = "pix"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
)

// DeliveryStatus is the sub-status of an order that already has a courier.
type DeliveryStatus string

const (
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
)

// OrderItem is one line of an order, with the menu item name and price
// snapshotted at purchase time.
type OrderItem struct {
	Name        string  `bson:"name" json:"name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	Observation string  `bson:"observation,omitempty" json:"observation,omitempty"`
}

// DeliveryAddress is the structured destination of an order.
type DeliveryAddress struct {
	Street       string `bson:"street" json:"street"`
	Number       string `bson:"number" json:"number"`
	Neighborhood string `bson:"neighborhood" json:"neighborhood"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	ZipCode      string `bson:"zip_code" json:"zipCode"`
	Complement   string `bson:"complement,omitempty" json:"complement,omitempty"`
}

// GeoPoint is a courier's last reported location.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// DeliveryTracking is embedded in an order once a courier is assigned.
type DeliveryTracking struct {
	CourierID    string         `bson:"courier_id" json:"courierId"`
	CourierName  string         `bson:"courier_name" json:"courierName"`
	CourierPhone string         `bson:"courier_phone" json:"courierPhone"`
	VehicleType  string         `bson:"vehicle_type" json:"vehicleType"`
	Location     *GeoPoint      `bson:"location,omitempty" json:"location,omitempty"`
	Status       DeliveryStatus `bson:"status" json:"status"`
	AssignedAt   time.Time      `bson:"assigned_at" json:"assignedAt"`
	PickedUpAt   *time.Time     `bson:"picked_up_at,omitempty" json:"pickedUpAt,omitempty"`
}

// Order represents one customer purchase, owned by the store that received it.
// Orders are never deleted; they only reach a terminal status.
type Order struct {
	ID                    string            `bson:"_id" json:"id"`
	CustomerID            string            `bson:"customer_id" json:"customerId"`
	StoreID               string            `bson:"store_id" json:"storeId"`
	Items                 []OrderItem       `bson:"items" json:"items"`
	Subtotal              float64           `bson:"subtotal" json:"subtotal"`
	DeliveryFee           float64           `bson:"delivery_fee" json:"deliveryFee"`
	ServiceFee            float64           `bson:"service_fee" json:"serviceFee"`
	Total                 float64           `bson:"total" json:"total"`
	PaymentMethod         PaymentMethod     `bson:"payment_method" json:"paymentMethod"`
	ChangeFor             *float64          `bson:"change_for,omitempty" json:"changeFor,omitempty"`
	DeliveryAddress       DeliveryAddress   `bson:"delivery_address" json:"deliveryAddress"`
	DeliveryInstructions  string            `bson:"delivery_instructions,omitempty" json:"deliveryInstructions,omitempty"`
	Status                OrderStatus       `bson:"status" json:"status"`
	Tracking              *DeliveryTracking `bson:"tracking,omitempty" json:"tracking,omitempty"`
	EstimatedDeliveryTime *time.Time        `bson:"estimated_delivery_time,omitempty" json:"estimatedDeliveryTime,omitempty"`
	CreatedAt             time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time         `bson:"updated_at" json:"updatedAt"`
}

// ItemsTotal returns the sum of line-item subtotals. It must equal Subtotal
// for a well-formed order.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal
	}
	return sum
}

// CreateOrderRequest is the checkout-boundary payload for a new order.
type CreateOrderRequest struct {
	CustomerID           string          `json:"customerId" binding:"required"`
	StoreID              string          `json:"storeId" binding:"required"`
	Items                []OrderItem     `json:"items" binding:"required,dive"`
	DeliveryFee          float64         `json:"deliveryFee" binding:"gte=0"`
	ServiceFee           float64         `json:"serviceFee" binding:"gte=0"`
	PaymentMethod        PaymentMethod   `json:"paymentMethod" binding:"required,oneof=cash pix credit_card debit_card"`
	ChangeFor            *float64        `json:"changeFor,omitempty"`
	DeliveryAddress      DeliveryAddress `json:"deliveryAddress" binding:"required"`
	DeliveryInstructions string          `json:"deliveryInstructions,omitempty"`
}

// TransitionRequest asks the state machine to move an order to a new status.
type TransitionRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// AssignCourierRequest attaches a courier to an in-delivery order.
type AssignCourierRequest struct {
	CourierID    string `json:"courierId" binding:"required"`
	CourierName  string `json:"courierName" binding:"required"`
	CourierPhone string `json:"courierPhone"`
	VehicleType  string `json:"vehicleType"`
}

// UpdateTrackingRequest advances the delivery sub-status and/or reports a
// new courier location.
type UpdateTrackingRequest struct {
	Status   DeliveryStatus `json:"status,omitempty"`
	Location *GeoPoint      `json:"location,omitempty"`
}
