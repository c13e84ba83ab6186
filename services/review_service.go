package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

const (
	minCommentLength  = 10
	minResponseLength = 5

	reviewStatsCachePrefix = "reviews:stats:"
	reviewStatsCacheTTL    = 5 * time.Minute
)

// ReviewService owns review creation, the store's one-time response, the
// helpful counter and the derived rating rollup.
type ReviewService interface {
	CreateReview(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error)
	GetReviewByOrderID(ctx context.Context, orderID string) (*models.Review, error)
	ListStoreReviews(ctx context.Context, storeID string) ([]models.Review, error)
	RespondToReview(ctx context.Context, reviewID, response string) error
	MarkHelpful(ctx context.Context, reviewID string) error
	// GetReviewStats recomputes the rollup from the full review set. The
	// Redis entry only memoizes the result for a few minutes; it is never
	// incremented in place, so it cannot drift.
	GetReviewStats(ctx context.Context, storeID string) (models.ReviewStats, error)
}

type reviewServiceImpl struct {
	reviews repository.ReviewRepository
	orders  repository.OrderRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// NewReviewService creates a new ReviewService. cache may be nil; stats are
// then recomputed on every call.
func NewReviewService(reviews repository.ReviewRepository, orders repository.OrderRepository, cache *redis.Client, logger *zap.Logger) ReviewService {
	return &reviewServiceImpl{reviews: reviews, orders: orders, cache: cache, logger: logger}
}

func (s *reviewServiceImpl) CreateReview(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, &apperrors.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if len(strings.TrimSpace(req.Comment)) < minCommentLength {
		return nil, &apperrors.ValidationError{Field: "comment", Message: "comment must be at least 10 characters"}
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.StoreID != req.StoreID {
		return nil, &apperrors.ValidationError{Field: "storeId", Message: "order does not belong to this store"}
	}

	// One review per order.
	if existing, err := s.reviews.FindByOrderID(ctx, req.OrderID); err == nil && existing != nil {
		return nil, &apperrors.ValidationError{Field: "orderId", Message: "order already has a review"}
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	review := &models.Review{
		ID:           uuid.NewString(),
		OrderID:      req.OrderID,
		StoreID:      req.StoreID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		s.logger.Error("Failed to create review", zap.Error(err))
		return nil, err
	}

	s.invalidateStats(ctx, req.StoreID)
	s.logger.Info("Review created",
		zap.String("review_id", review.ID),
		zap.String("order_id", review.OrderID),
		zap.Int("rating", review.Rating),
	)
	return review, nil
}

func (s *reviewServiceImpl) GetReviewByOrderID(ctx context.Context, orderID string) (*models.Review, error) {
	return s.reviews.FindByOrderID(ctx, orderID)
}

func (s *reviewServiceImpl) ListStoreReviews(ctx context.Context, storeID string) ([]models.Review, error) {
	return s.reviews.FindByStore(ctx, storeID)
}

func (s *reviewServiceImpl) RespondToReview(ctx context.Context, reviewID, response string) error {
	if len(strings.TrimSpace(response)) < minResponseLength {
		return &apperrors.ValidationError{Field: "response", Message: "response must be at least 5 characters"}
	}

	if err := s.reviews.SetResponse(ctx, reviewID, strings.TrimSpace(response)); err != nil {
		return err
	}

	s.logger.Info("Review response added", zap.String("review_id", reviewID))
	return nil
}

func (s *reviewServiceImpl) MarkHelpful(ctx context.Context, reviewID string) error {
	return s.reviews.IncrementHelpful(ctx, reviewID)
}

func (s *reviewServiceImpl) GetReviewStats(ctx context.Context, storeID string) (models.ReviewStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, reviewStatsCachePrefix+storeID).Result(); err == nil {
			var stats models.ReviewStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		}
	}

	reviews, err := s.reviews.FindByStore(ctx, storeID)
	if err != nil {
		return models.ReviewStats{}, err
	}
	stats := ComputeReviewStats(reviews)

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, reviewStatsCachePrefix+storeID, data, reviewStatsCacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache review stats", zap.String("store_id", storeID), zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *reviewServiceImpl) invalidateStats(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, reviewStatsCachePrefix+storeID).Err(); err != nil {
		s.logger.Warn("Failed to invalidate review stats cache", zap.String("store_id", storeID), zap.Error(err))
	}
}
