// Package alert delivers new-order notifications. The synchronizer detects
// the count increase; this package only ships the alert to its sink.
package alert

import (
	"context"
)

// Notifier is the delivery side of the new-order trigger.
type Notifier interface {
	NotifyNewOrders(ctx context.Context, storeID string, previousCount, newCount int) error
}
