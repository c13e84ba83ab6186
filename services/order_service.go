package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/kafka"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// OrderService owns the order lifecycle: creation at the checkout boundary
// and the status state machine.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListStoreOrders(ctx context.Context, storeID string, statuses []models.OrderStatus) ([]models.Order, error)
	// Transition validates the move against the transition table and applies
	// it as a conditional write on the order's current status. Attempting to
	// leave a terminal state fails with an InvalidTransitionError.
	Transition(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error)
	AssignCourier(ctx context.Context, orderID string, req *models.AssignCourierRequest) error
	UpdateTracking(ctx context.Context, orderID string, req *models.UpdateTrackingRequest) error
}

type orderServiceImpl struct {
	repo     repository.OrderRepository
	producer kafka.ProducerAPI
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService. producer may be nil when event
// publication is not configured.
func NewOrderService(repo repository.OrderRepository, producer kafka.ProducerAPI, logger *zap.Logger) OrderService {
	return &orderServiceImpl{repo: repo, producer: producer, logger: logger}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &apperrors.ValidationError{Field: "items", Message: "at least one item is required"}
	}

	var subtotal float64
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &apperrors.ValidationError{Field: "items", Message: "quantity must be positive"}
		}
		if item.UnitPrice < 0 {
			return nil, &apperrors.ValidationError{Field: "items", Message: "unit price cannot be negative"}
		}
		expected := round2(item.UnitPrice * float64(item.Quantity))
		if math.Abs(item.Subtotal-expected) > 0.001 {
			return nil, &apperrors.ValidationError{Field: "items", Message: "line subtotal does not match quantity x unit price"}
		}
		req.Items[i].Subtotal = expected
		subtotal += expected
	}
	subtotal = round2(subtotal)

	now := time.Now().UTC()
	order := &models.Order{
		ID:                   uuid.NewString(),
		CustomerID:           req.CustomerID,
		StoreID:              req.StoreID,
		Items:                req.Items,
		Subtotal:             subtotal,
		DeliveryFee:          round2(req.DeliveryFee),
		ServiceFee:           round2(req.ServiceFee),
		Total:                round2(subtotal + req.DeliveryFee + req.ServiceFee),
		PaymentMethod:        req.PaymentMethod,
		ChangeFor:            req.ChangeFor,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
		Status:               models.StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("store_id", order.StoreID),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *orderServiceImpl) ListStoreOrders(ctx context.Context, storeID string, statuses []models.OrderStatus) ([]models.Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, &apperrors.ValidationError{Field: "status", Message: "unknown order status: " + string(st)}
		}
	}
	return s.repo.FindByStore(ctx, storeID, statuses)
}

func (s *orderServiceImpl) Transition(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, &apperrors.ValidationError{Field: "status", Message: "unknown order status: " + string(target)}
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, target) {
		return nil, &apperrors.InvalidTransitionError{
			OrderID: orderID,
			From:    string(order.Status),
			To:      string(target),
		}
	}

	// Conditional on the status we validated against, so a racing client
	// cannot silently overwrite an interleaved transition.
	if err := s.repo.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
		return nil, err
	}

	from := order.Status
	order.Status = target
	order.UpdatedAt = time.Now().UTC()

	s.logger.Info("Order transitioned",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)

	if s.producer != nil {
		evt := models.OrderStatusChangedEvent{
			EventType:  "order.status_changed",
			OrderID:    order.ID,
			StoreID:    order.StoreID,
			CustomerID: order.CustomerID,
			FromStatus: from,
			ToStatus:   target,
			Timestamp:  order.UpdatedAt,
		}
		// Best-effort: the transition already committed.
		if err := s.producer.PublishStatusChanged(ctx, evt); err != nil {
			s.logger.Warn("Status-changed event not published",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

func (s *orderServiceImpl) AssignCourier(ctx context.Context, orderID string, req *models.AssignCourierRequest) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusReady && order.Status != models.StatusInDelivery {
		return &apperrors.ValidationError{Field: "status", Message: "courier can only be assigned to ready or in_delivery orders"}
	}

	tracking := &models.DeliveryTracking{
		CourierID:    req.CourierID,
		CourierName:  req.CourierName,
		CourierPhone: req.CourierPhone,
		VehicleType:  req.VehicleType,
		Status:       models.DeliveryAssigned,
		AssignedAt:   time.Now().UTC(),
	}
	if err := s.repo.SetTracking(ctx, orderID, tracking); err != nil {
		return err
	}

	s.logger.Info("Courier assigned",
		zap.String("order_id", orderID),
		zap.String("courier_id", req.CourierID),
	)
	return nil
}

func (s *orderServiceImpl) UpdateTracking(ctx context.Context, orderID string, req *models.UpdateTrackingRequest) error {
	if req.Status == "" && req.Location == nil {
		return &apperrors.ValidationError{Message: "nothing to update"}
	}
	switch req.Status {
	case "", models.DeliveryAssigned, models.DeliveryPickedUp, models.DeliveryInTransit:
	default:
		return &apperrors.ValidationError{Field: "status", Message: "unknown delivery status: " + string(req.Status)}
	}
	return s.repo.UpdateTracking(ctx, orderID, req.Status, req.Location)
}

// round2 rounds to two decimals, the currency precision used everywhere.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
