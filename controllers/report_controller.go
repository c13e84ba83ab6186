package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/services"
)

// ReportController handles HTTP requests for the analytics screens.
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController.
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// FinancialReport handles GET /stores/:storeId/reports/financial?from&to.
func (rc *ReportController) FinancialReport(ctx *gin.Context) {
	dateRange, ok := parseRange(ctx)
	if !ok {
		return
	}

	report, err := rc.reportService.FinancialReport(ctx.Request.Context(), ctx.Param("storeId"), dateRange)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// CustomerAnalytics handles GET /stores/:storeId/reports/customers?from&to.
func (rc *ReportController) CustomerAnalytics(ctx *gin.Context) {
	dateRange, ok := parseRange(ctx)
	if !ok {
		return
	}

	analytics, err := rc.reportService.CustomerAnalytics(ctx.Request.Context(), ctx.Param("storeId"), dateRange)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, analytics)
}

// parseRange reads optional RFC 3339 `from`/`to` query params. A missing
// bound leaves that side of the range open.
func parseRange(ctx *gin.Context) (models.DateRange, bool) {
	var r models.DateRange
	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, expected RFC 3339"})
			return r, false
		}
		r.From = t
	}
	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, expected RFC 3339"})
			return r, false
		}
		r.To = t
	}
	return r, true
}
