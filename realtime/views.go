package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// NewOrderSynchronizer builds the live-order view fan-out used by the
// dashboard overview, the kanban board and the delivery tracker.
func NewOrderSynchronizer(repo repository.OrderRepository, logger *zap.Logger) *Synchronizer[models.Order] {
	return NewSynchronizer(
		func(ctx context.Context, f FilterSpec) ([]models.Order, error) {
			return repo.FindByStore(ctx, f.StoreID, f.Statuses)
		},
		repo.Watch,
		func(o models.Order) time.Time { return o.CreatedAt },
		logger,
	)
}

// NewReviewSynchronizer builds the live-review view fan-out for the reviews
// screen.
func NewReviewSynchronizer(repo repository.ReviewRepository, logger *zap.Logger) *Synchronizer[models.Review] {
	return NewSynchronizer(
		func(ctx context.Context, f FilterSpec) ([]models.Review, error) {
			return repo.FindByStore(ctx, f.StoreID)
		},
		repo.Watch,
		func(r models.Review) time.Time { return r.CreatedAt },
		logger,
	)
}
