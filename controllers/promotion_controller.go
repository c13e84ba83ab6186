package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/services"
)

// PromotionController handles HTTP requests for promotion operations.
type PromotionController struct {
	promotionService services.PromotionService
}

// NewPromotionController creates a new PromotionController.
func NewPromotionController(promotionService services.PromotionService) *PromotionController {
	return &PromotionController{promotionService: promotionService}
}

// CreatePromotion handles POST /promotions.
func (pc *PromotionController) CreatePromotion(ctx *gin.Context) {
	var req models.CreatePromotionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	promo, err := pc.promotionService.CreatePromotion(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"promotion": promo})
}

// GetPromotion handles GET /promotions/:id.
func (pc *PromotionController) GetPromotion(ctx *gin.Context) {
	promo, err := pc.promotionService.GetPromotion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"promotion": promo})
}

// ListStorePromotions handles GET /stores/:storeId/promotions.
func (pc *PromotionController) ListStorePromotions(ctx *gin.Context) {
	promos, err := pc.promotionService.ListStorePromotions(ctx.Request.Context(), ctx.Param("storeId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"promotions": promos, "count": len(promos)})
}

type togglePromotionRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// TogglePromotion handles PATCH /promotions/:id/toggle.
func (pc *PromotionController) TogglePromotion(ctx *gin.Context) {
	var req togglePromotionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := pc.promotionService.SetActive(ctx.Request.Context(), ctx.Param("id"), *req.Active); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Promotion updated"})
}

type redeemPromotionRequest struct {
	OrderValue float64 `json:"orderValue" binding:"required,gt=0"`
}

// RedeemPromotion handles POST /promotions/:id/redeem.
func (pc *PromotionController) RedeemPromotion(ctx *gin.Context) {
	var req redeemPromotionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	discount, err := pc.promotionService.RedeemPromotion(ctx.Request.Context(), ctx.Param("id"), req.OrderValue)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"discount": discount})
}
