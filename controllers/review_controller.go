package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/services"
)

// ReviewController handles HTTP requests for review operations.
type ReviewController struct {
	reviewService services.ReviewService
}

// NewReviewController creates a new ReviewController.
func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReview handles POST /reviews.
func (rc *ReviewController) CreateReview(ctx *gin.Context) {
	var req models.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	review, err := rc.reviewService.CreateReview(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}

// GetOrderReview handles GET /orders/:id/review.
func (rc *ReviewController) GetOrderReview(ctx *gin.Context) {
	review, err := rc.reviewService.GetReviewByOrderID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"review": review})
}

// ListStoreReviews handles GET /stores/:storeId/reviews.
func (rc *ReviewController) ListStoreReviews(ctx *gin.Context) {
	reviews, err := rc.reviewService.ListStoreReviews(ctx.Request.Context(), ctx.Param("storeId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

// GetStoreReviewStats handles GET /stores/:storeId/reviews/stats.
func (rc *ReviewController) GetStoreReviewStats(ctx *gin.Context) {
	stats, err := rc.reviewService.GetReviewStats(ctx.Request.Context(), ctx.Param("storeId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}

// RespondToReview handles POST /reviews/:id/response.
func (rc *ReviewController) RespondToReview(ctx *gin.Context) {
	var req models.RespondReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := rc.reviewService.RespondToReview(ctx.Request.Context(), ctx.Param("id"), req.Response); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Response added"})
}

// MarkHelpful handles POST /reviews/:id/helpful.
func (rc *ReviewController) MarkHelpful(ctx *gin.Context) {
	if err := rc.reviewService.MarkHelpful(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Marked helpful"})
}
