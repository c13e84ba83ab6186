package models

import "time"

// DateRange bounds a report query. Zero values mean unbounded on that side.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the range (inclusive bounds).
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// OrderFinancialEntry is the per-order breakdown in a financial report.
type OrderFinancialEntry struct {
	OrderID     string    `json:"orderId"`
	Date        time.Time `json:"date"`
	ItemsTotal  float64   `json:"itemsTotal"`
	DeliveryFee float64   `json:"deliveryFee"`
	PlatformFee float64   `json:"platformFee"`
	NetAmount   float64   `json:"netAmount"`
}

// FinancialSummary holds the rolled-up totals of a financial report. The
// numbers always satisfy grossRevenue + deliveryFee - platformFee = netRevenue.
type FinancialSummary struct {
	GrossRevenue float64 `json:"grossRevenue"`
	DeliveryFee  float64 `json:"deliveryFee"`
	PlatformFee  float64 `json:"platformFee"`
	NetRevenue   float64 `json:"netRevenue"`
	OrderCount   int     `json:"orderCount"`
}

// FinancialReport is the merchant revenue report over a date range. Only
// delivered and completed orders count as revenue.
type FinancialReport struct {
	Range   DateRange             `json:"range"`
	Summary FinancialSummary      `json:"summary"`
	Orders  []OrderFinancialEntry `json:"orders"`
}

// CustomerSegment is a derived display label, never stored.
type CustomerSegment string

const (
	SegmentNew       CustomerSegment = "new"
	SegmentRecurring CustomerSegment = "recurring"
	SegmentFrequent  CustomerSegment = "frequent"
	SegmentVIP       CustomerSegment = "vip"
)

// CustomerSummary is the per-customer rollup in a customer analytics report.
type CustomerSummary struct {
	CustomerID  string          `json:"customerId"`
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  float64         `json:"totalSpent"`
	FirstOrder  time.Time       `json:"firstOrder"`
	LastOrder   time.Time       `json:"lastOrder"`
	Segment     CustomerSegment `json:"segment"`
}

// CustomerAnalytics groups a store's orders by customer within a date range.
type CustomerAnalytics struct {
	Range     DateRange         `json:"range"`
	Customers []CustomerSummary `json:"customers"`
}
