package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/controllers"
)

// Register sets up all platform routes.
func Register(
	r *gin.Engine,
	oc *controllers.OrderController,
	sc *controllers.StreamController,
	rc *controllers.ReviewController,
	rpc *controllers.ReportController,
	pc *controllers.PromotionController,
) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orders := r.Group("/orders")
	orders.POST("", oc.CreateOrder)
	orders.GET("/:id", oc.GetOrder)
	orders.PATCH("/:id/status", oc.Transition)
	orders.POST("/:id/courier", oc.AssignCourier)
	orders.PATCH("/:id/tracking", oc.UpdateTracking)
	orders.GET("/:id/review", rc.GetOrderReview)

	stores := r.Group("/stores/:storeId")
	stores.GET("/orders", oc.ListStoreOrders)
	stores.GET("/orders/stream", sc.StreamStoreOrders)
	stores.GET("/reviews", rc.ListStoreReviews)
	stores.GET("/reviews/stream", sc.StreamStoreReviews)
	stores.GET("/reviews/stats", rc.GetStoreReviewStats)
	stores.GET("/reports/financial", rpc.FinancialReport)
	stores.GET("/reports/customers", rpc.CustomerAnalytics)
	stores.GET("/promotions", pc.ListStorePromotions)

	reviews := r.Group("/reviews")
	reviews.POST("", rc.CreateReview)
	reviews.POST("/:id/response", rc.RespondToReview)
	reviews.POST("/:id/helpful", rc.MarkHelpful)

	promotions := r.Group("/promotions")
	promotions.POST("", pc.CreatePromotion)
	promotions.GET("/:id", pc.GetPromotion)
	promotions.PATCH("/:id/toggle", pc.TogglePromotion)
	promotions.POST("/:id/redeem", pc.RedeemPromotion)
}
