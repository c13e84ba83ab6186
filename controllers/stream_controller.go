package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/alert"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/realtime"
)

// StreamController exposes the live order and review views as server-sent
// event streams for the merchant dashboard. Streams over the active-order
// statuses also drive the new-order alert.
type StreamController struct {
	orders   *realtime.Synchronizer[models.Order]
	reviews  *realtime.Synchronizer[models.Review]
	notifier alert.Notifier
}

// NewStreamController creates a new StreamController.
func NewStreamController(orders *realtime.Synchronizer[models.Order], reviews *realtime.Synchronizer[models.Review], notifier alert.Notifier) *StreamController {
	return &StreamController{orders: orders, reviews: reviews, notifier: notifier}
}

type orderSnapshot struct {
	Orders []models.Order `json:"orders"`
	Count  int            `json:"count"`
}

// StreamStoreOrders handles GET /stores/:storeId/orders/stream. Each event is
// the full current result set for the filter, most recent first.
func (sc *StreamController) StreamStoreOrders(ctx *gin.Context) {
	filter := realtime.FilterSpec{StoreID: ctx.Param("storeId")}
	if raw := ctx.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := models.OrderStatus(strings.TrimSpace(s))
			if !st.Valid() {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status: " + string(st)})
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}

	snapshots := make(chan orderSnapshot, 8)
	failures := make(chan error, 1)

	handler := realtime.Handler[models.Order]{
		OnSnapshot: func(items []models.Order) {
			select {
			case snapshots <- orderSnapshot{Orders: items, Count: len(items)}:
			default:
				// Slow consumer: drop this snapshot, the next one carries
				// the full state anyway.
			}
		},
		OnError: func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	}
	// Only the active-orders stream (the kitchen kanban) drives the
	// new-order alert; history streams stay silent.
	if sc.notifier != nil && models.IsActiveStatusSet(filter.Statuses) {
		storeID := filter.StoreID
		handler.OnCountIncrease = func(prev, cur int) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sc.notifier.NotifyNewOrders(notifyCtx, storeID, prev, cur)
		}
	}

	sub, err := sc.orders.Subscribe(ctx.Request.Context(), filter, handler)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer sub.Unsubscribe()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Stream(func(w io.Writer) bool {
		select {
		case snap := <-snapshots:
			ctx.SSEvent("orders", snap)
			return true
		case err := <-failures:
			ctx.SSEvent("error", gin.H{"error": err.Error()})
			return false
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

type reviewSnapshot struct {
	Reviews []models.Review `json:"reviews"`
	Count   int             `json:"count"`
}

// StreamStoreReviews handles GET /stores/:storeId/reviews/stream.
func (sc *StreamController) StreamStoreReviews(ctx *gin.Context) {
	filter := realtime.FilterSpec{StoreID: ctx.Param("storeId")}

	snapshots := make(chan reviewSnapshot, 8)
	failures := make(chan error, 1)

	handler := realtime.Handler[models.Review]{
		OnSnapshot: func(items []models.Review) {
			select {
			case snapshots <- reviewSnapshot{Reviews: items, Count: len(items)}:
			default:
			}
		},
		OnError: func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	}

	sub, err := sc.reviews.Subscribe(ctx.Request.Context(), filter, handler)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer sub.Unsubscribe()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Stream(func(w io.Writer) bool {
		select {
		case snap := <-snapshots:
			ctx.SSEvent("reviews", snap)
			return true
		case err := <-failures:
			ctx.SSEvent("error", gin.H{"error": err.Error()})
			return false
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}
