package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// PromotionWithStatus pairs a stored promotion with its derived status.
type PromotionWithStatus struct {
	models.Promotion
	Status models.PromotionStatus `json:"status"`
}

// PromotionService owns merchant promotions. The promotion status is always
// computed from the validity window at read time, never persisted.
type PromotionService interface {
	CreatePromotion(ctx context.Context, req *models.CreatePromotionRequest) (*PromotionWithStatus, error)
	GetPromotion(ctx context.Context, id string) (*PromotionWithStatus, error)
	ListStorePromotions(ctx context.Context, storeID string) ([]PromotionWithStatus, error)
	SetActive(ctx context.Context, id string, active bool) error
	RedeemPromotion(ctx context.Context, id string, orderValue float64) (float64, error)
}

type promotionServiceImpl struct {
	repo   repository.PromotionRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(repo repository.PromotionRepository, logger *zap.Logger) PromotionService {
	return &promotionServiceImpl{repo: repo, logger: logger, now: time.Now}
}

func (s *promotionServiceImpl) CreatePromotion(ctx context.Context, req *models.CreatePromotionRequest) (*PromotionWithStatus, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, &apperrors.ValidationError{Field: "endDate", Message: "end date must be after start date"}
	}
	if req.EndDate.Before(s.now()) {
		return nil, &apperrors.ValidationError{Field: "endDate", Message: "end date must be in the future"}
	}

	switch req.Type {
	case models.PromotionPercentage:
		if req.Value <= 0 || req.Value > 100 {
			return nil, &apperrors.ValidationError{Field: "value", Message: "percentage must be between 0 and 100"}
		}
	case models.PromotionFixed:
		if req.Value <= 0 {
			return nil, &apperrors.ValidationError{Field: "value", Message: "fixed discount must be positive"}
		}
	case models.PromotionFreeDelivery:
		// value unused; the delivery fee is waived at checkout
	case models.PromotionBuyXGetY:
		if req.BuyQuantity <= 0 || req.GetQuantity <= 0 {
			return nil, &apperrors.ValidationError{Field: "buyQuantity", Message: "buy and get quantities must be positive"}
		}
	default:
		return nil, &apperrors.ValidationError{Field: "type", Message: "unknown promotion type: " + string(req.Type)}
	}

	now := s.now().UTC()
	promo := &models.Promotion{
		ID:            uuid.NewString(),
		StoreID:       req.StoreID,
		Name:          req.Name,
		Type:          req.Type,
		Value:         req.Value,
		BuyQuantity:   req.BuyQuantity,
		GetQuantity:   req.GetQuantity,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		s.logger.Error("Failed to create promotion", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Promotion created",
		zap.String("promotion_id", promo.ID),
		zap.String("store_id", promo.StoreID),
		zap.String("type", string(promo.Type)),
	)
	return s.withStatus(promo), nil
}

func (s *promotionServiceImpl) GetPromotion(ctx context.Context, id string) (*PromotionWithStatus, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStatus(promo), nil
}

func (s *promotionServiceImpl) ListStorePromotions(ctx context.Context, storeID string) ([]PromotionWithStatus, error) {
	promos, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]PromotionWithStatus, 0, len(promos))
	for i := range promos {
		out = append(out, *s.withStatus(&promos[i]))
	}
	return out, nil
}

func (s *promotionServiceImpl) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("Promotion toggled", zap.String("promotion_id", id), zap.Bool("active", active))
	return nil
}

// RedeemPromotion validates the promotion against an order value, records
// one usage and returns the discount amount.
func (s *promotionServiceImpl) RedeemPromotion(ctx context.Context, id string, orderValue float64) (float64, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if status := promo.StatusAt(s.now()); status != models.PromotionActive {
		return 0, &apperrors.ValidationError{Field: "promotion", Message: "promotion is " + string(status)}
	}
	if orderValue < promo.MinOrderValue {
		return 0, &apperrors.ValidationError{Field: "orderValue", Message: "order value below promotion minimum"}
	}

	var discount float64
	switch promo.Type {
	case models.PromotionPercentage:
		discount = round2(orderValue * promo.Value / 100)
	case models.PromotionFixed:
		discount = promo.Value
		if discount > orderValue {
			discount = orderValue
		}
	case models.PromotionFreeDelivery, models.PromotionBuyXGetY:
		// Applied in kind at checkout; no monetary discount here.
	}
	if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
		discount = promo.MaxDiscount
	}

	if err := s.repo.IncrementUsage(ctx, id); err != nil {
		return 0, err
	}

	s.logger.Info("Promotion redeemed",
		zap.String("promotion_id", id),
		zap.Float64("discount", discount),
	)
	return discount, nil
}

func (s *promotionServiceImpl) withStatus(p *models.Promotion) *PromotionWithStatus {
	return &PromotionWithStatus{Promotion: *p, Status: p.StatusAt(s.now())}
}
