package services

import (
	"math"
	"sort"

	"github.com/duwalace/App-Rango-sub000/models"
)

// CommissionRate is the platform's cut of a store's items total.
const CommissionRate = 0.12

// revenueStatuses are the order states that count toward revenue. Cancelled
// orders never do.
var revenueStatuses = map[models.OrderStatus]bool{
	models.StatusDelivered: true,
	models.StatusCompleted: true,
}

// ComputeReviewStats derives the rating rollup from the full review set.
// It is a pure function: same set in (any order), same stats out, and empty
// input degrades to a zero-valued result rather than an error. Ratings
// outside 1-5 (malformed stored data) are skipped entirely, so the
// distribution always sums to the count.
func ComputeReviewStats(reviews []models.Review) models.ReviewStats {
	stats := models.ReviewStats{
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var sum int
	for _, r := range reviews {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		sum += r.Rating
		stats.Distribution[r.Rating]++
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average = round1(float64(sum) / float64(stats.Count))
	}
	return stats
}

// ComputeFinancialReport filters orders to the date range and the
// revenue-counting statuses, then computes per-order and summary figures.
// platformFee is CommissionRate of the items total; the delivery fee passes
// through to the store, so gross + deliveryFee - platformFee = net.
func ComputeFinancialReport(orders []models.Order, dateRange models.DateRange) models.FinancialReport {
	report := models.FinancialReport{
		Range:  dateRange,
		Orders: []models.OrderFinancialEntry{},
	}

	for _, o := range orders {
		if !revenueStatuses[o.Status] || !dateRange.Contains(o.CreatedAt) {
			continue
		}

		itemsTotal := round2(o.ItemsTotal())
		platformFee := round2(itemsTotal * CommissionRate)
		entry := models.OrderFinancialEntry{
			OrderID:     o.ID,
			Date:        o.CreatedAt,
			ItemsTotal:  itemsTotal,
			DeliveryFee: round2(o.DeliveryFee),
			PlatformFee: platformFee,
			NetAmount:   round2(itemsTotal + o.DeliveryFee - platformFee),
		}
		report.Orders = append(report.Orders, entry)

		report.Summary.GrossRevenue = round2(report.Summary.GrossRevenue + entry.ItemsTotal)
		report.Summary.DeliveryFee = round2(report.Summary.DeliveryFee + entry.DeliveryFee)
		report.Summary.PlatformFee = round2(report.Summary.PlatformFee + entry.PlatformFee)
		report.Summary.OrderCount++
	}
	report.Summary.NetRevenue = round2(
		report.Summary.GrossRevenue + report.Summary.DeliveryFee - report.Summary.PlatformFee,
	)

	sort.Slice(report.Orders, func(i, j int) bool {
		return report.Orders[i].Date.After(report.Orders[j].Date)
	})
	return report
}

// ComputeCustomerAnalytics groups a store's orders by customer within the
// range. Cancelled orders are excluded. Totals and first/last dates are
// range-scoped, but the segment label is derived from the customer's lifetime
// order count across the full input, never stored: a ten-order regular
// queried over last week is still a VIP.
func ComputeCustomerAnalytics(orders []models.Order, dateRange models.DateRange) models.CustomerAnalytics {
	analytics := models.CustomerAnalytics{
		Range:     dateRange,
		Customers: []models.CustomerSummary{},
	}

	byCustomer := map[string]*models.CustomerSummary{}
	lifetimeOrders := map[string]int{}
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		lifetimeOrders[o.CustomerID]++
		if !dateRange.Contains(o.CreatedAt) {
			continue
		}

		c, ok := byCustomer[o.CustomerID]
		if !ok {
			c = &models.CustomerSummary{
				CustomerID: o.CustomerID,
				FirstOrder: o.CreatedAt,
				LastOrder:  o.CreatedAt,
			}
			byCustomer[o.CustomerID] = c
		}
		c.TotalOrders++
		c.TotalSpent = round2(c.TotalSpent + o.Total)
		if o.CreatedAt.Before(c.FirstOrder) {
			c.FirstOrder = o.CreatedAt
		}
		if o.CreatedAt.After(c.LastOrder) {
			c.LastOrder = o.CreatedAt
		}
	}

	for id, c := range byCustomer {
		c.Segment = classifyCustomer(lifetimeOrders[id])
		analytics.Customers = append(analytics.Customers, *c)
	}
	sort.Slice(analytics.Customers, func(i, j int) bool {
		return analytics.Customers[i].TotalSpent > analytics.Customers[j].TotalSpent
	})
	return analytics
}

func classifyCustomer(lifetimeOrders int) models.CustomerSegment {
	switch {
	case lifetimeOrders >= 10:
		return models.SegmentVIP
	case lifetimeOrders >= 5:
		return models.SegmentFrequent
	case lifetimeOrders > 1:
		return models.SegmentRecurring
	default:
		return models.SegmentNew
	}
}

// round1 rounds to one decimal, the precision for displayed rating averages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
