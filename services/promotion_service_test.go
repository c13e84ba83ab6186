package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/services"
)

// --- Mock Promotion Repository ---

type mockPromotionRepo struct {
	promos map[string]*models.Promotion
}

func newMockPromotionRepo() *mockPromotionRepo {
	return &mockPromotionRepo{promos: make(map[string]*models.Promotion)}
}

func (m *mockPromotionRepo) Create(_ context.Context, promo *models.Promotion) error {
	if promo.ID == "" {
		promo.ID = uuid.NewString()
	}
	clone := *promo
	m.promos[promo.ID] = &clone
	return nil
}

func (m *mockPromotionRepo) FindByID(_ context.Context, id string) (*models.Promotion, error) {
	p, ok := m.promos[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "promotion", ID: id}
	}
	clone := *p
	return &clone, nil
}

func (m *mockPromotionRepo) FindByStore(_ context.Context, storeID string) ([]models.Promotion, error) {
	var out []models.Promotion
	for _, p := range m.promos {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPromotionRepo) SetActive(_ context.Context, id string, active bool) error {
	p, ok := m.promos[id]
	if !ok {
		return &apperrors.NotFoundError{Resource: "promotion", ID: id}
	}
	p.IsActive = active
	return nil
}

func (m *mockPromotionRepo) IncrementUsage(_ context.Context, id string) error {
	p, ok := m.promos[id]
	if !ok {
		return &apperrors.NotFoundError{Resource: "promotion", ID: id}
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return &apperrors.ConflictError{Resource: "promotion", ID: id, Message: "usage limit reached"}
	}
	p.UsageCount++
	return nil
}

// --- Helpers ---

func newTestPromotionService(repo *mockPromotionRepo) services.PromotionService {
	logger, _ := zap.NewDevelopment()
	return services.NewPromotionService(repo, logger)
}

func validPromotionRequest(promoType models.PromotionType, value float64) *models.CreatePromotionRequest {
	return &models.CreatePromotionRequest{
		StoreID:   "store-1",
		Name:      "Weekend special",
		Type:      promoType,
		Value:     value,
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(7 * 24 * time.Hour),
	}
}

// --- Tests ---

func TestPromotionService_CreateActive(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	promo, err := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionPercentage, 10))
	assert.NoError(t, err)
	assert.Equal(t, models.PromotionActive, promo.Status)
	assert.True(t, promo.IsActive)
}

func TestPromotionService_CreateScheduled(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionFixed, 5)
	req.StartDate = time.Now().Add(24 * time.Hour)
	req.EndDate = time.Now().Add(48 * time.Hour)

	promo, err := svc.CreatePromotion(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, models.PromotionScheduled, promo.Status)
}

func TestPromotionService_RejectsWindowInPast(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionFixed, 5)
	req.StartDate = time.Now().Add(-48 * time.Hour)
	req.EndDate = time.Now().Add(-24 * time.Hour)

	_, err := svc.CreatePromotion(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPromotionService_RejectsInvertedWindow(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionFixed, 5)
	req.StartDate = time.Now().Add(48 * time.Hour)
	req.EndDate = time.Now().Add(24 * time.Hour)

	_, err := svc.CreatePromotion(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPromotionService_RejectsPercentageOver100(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	_, err := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionPercentage, 150))
	assert.True(t, apperrors.IsValidation(err))
}

func TestPromotionService_RejectsBuyXGetYWithoutQuantities(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	_, err := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionBuyXGetY, 0))
	assert.True(t, apperrors.IsValidation(err))
}

func TestPromotionService_ToggleMakesInactive(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	created, _ := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionPercentage, 10))

	assert.NoError(t, svc.SetActive(context.Background(), created.ID, false))

	fetched, err := svc.GetPromotion(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PromotionInactive, fetched.Status)
}

func TestPromotionService_RedeemPercentage(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	created, _ := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionPercentage, 10))

	discount, err := svc.RedeemPromotion(context.Background(), created.ID, 100.00)
	assert.NoError(t, err)
	assert.InDelta(t, 10.00, discount, 0.001)

	stored, _ := repo.FindByID(context.Background(), created.ID)
	assert.Equal(t, 1, stored.UsageCount)
}

func TestPromotionService_RedeemFixedCappedAtOrderValue(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	created, _ := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionFixed, 50))

	discount, err := svc.RedeemPromotion(context.Background(), created.ID, 30.00)
	assert.NoError(t, err)
	assert.InDelta(t, 30.00, discount, 0.001)
}

func TestPromotionService_RedeemHonorsMaxDiscount(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionPercentage, 50)
	req.MaxDiscount = 15.00
	created, _ := svc.CreatePromotion(context.Background(), req)

	discount, err := svc.RedeemPromotion(context.Background(), created.ID, 100.00)
	assert.NoError(t, err)
	assert.InDelta(t, 15.00, discount, 0.001)
}

func TestPromotionService_RedeemBelowMinimumRejected(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionPercentage, 10)
	req.MinOrderValue = 50.00
	created, _ := svc.CreatePromotion(context.Background(), req)

	_, err := svc.RedeemPromotion(context.Background(), created.ID, 20.00)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPromotionService_RedeemUsageLimit(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	req := validPromotionRequest(models.PromotionPercentage, 10)
	req.UsageLimit = 1
	created, _ := svc.CreatePromotion(context.Background(), req)

	_, err := svc.RedeemPromotion(context.Background(), created.ID, 100.00)
	assert.NoError(t, err)

	_, err = svc.RedeemPromotion(context.Background(), created.ID, 100.00)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPromotionService_RedeemInactiveRejected(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestPromotionService(repo)

	created, _ := svc.CreatePromotion(context.Background(), validPromotionRequest(models.PromotionPercentage, 10))
	_ = svc.SetActive(context.Background(), created.ID, false)

	_, err := svc.RedeemPromotion(context.Background(), created.ID, 100.00)
	assert.True(t, apperrors.IsValidation(err))
}
