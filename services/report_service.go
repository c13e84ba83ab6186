package services

import (
	"context"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// ReportService feeds the merchant analytics screens. It fetches the store's
// order snapshot and hands it to the pure computation functions.
type ReportService interface {
	FinancialReport(ctx context.Context, storeID string, dateRange models.DateRange) (models.FinancialReport, error)
	CustomerAnalytics(ctx context.Context, storeID string, dateRange models.DateRange) (models.CustomerAnalytics, error)
}

type reportServiceImpl struct {
	orders repository.OrderRepository
}

// NewReportService creates a new ReportService.
func NewReportService(orders repository.OrderRepository) ReportService {
	return &reportServiceImpl{orders: orders}
}

func (s *reportServiceImpl) FinancialReport(ctx context.Context, storeID string, dateRange models.DateRange) (models.FinancialReport, error) {
	if err := validateRange(dateRange); err != nil {
		return models.FinancialReport{}, err
	}
	orders, err := s.orders.FindByStore(ctx, storeID, nil)
	if err != nil {
		return models.FinancialReport{}, err
	}
	return ComputeFinancialReport(orders, dateRange), nil
}

func (s *reportServiceImpl) CustomerAnalytics(ctx context.Context, storeID string, dateRange models.DateRange) (models.CustomerAnalytics, error) {
	if err := validateRange(dateRange); err != nil {
		return models.CustomerAnalytics{}, err
	}
	orders, err := s.orders.FindByStore(ctx, storeID, nil)
	if err != nil {
		return models.CustomerAnalytics{}, err
	}
	return ComputeCustomerAnalytics(orders, dateRange), nil
}

func validateRange(r models.DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return &apperrors.ValidationError{Field: "range", Message: "end of range is before its start"}
	}
	return nil
}
