package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/alert"
	"github.com/duwalace/App-Rango-sub000/controllers"
	"github.com/duwalace/App-Rango-sub000/database"
	"github.com/duwalace/App-Rango-sub000/kafka"
	"github.com/duwalace/App-Rango-sub000/logger"
	"github.com/duwalace/App-Rango-sub000/realtime"
	"github.com/duwalace/App-Rango-sub000/repository"
	"github.com/duwalace/App-Rango-sub000/routes"
	"github.com/duwalace/App-Rango-sub000/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	log := logger.Log
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Document store
	if err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("Error connecting to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(context.Background()); err != nil {
			log.Warn("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	// Review-stats cache (optional)
	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("Error connecting to Redis", zap.Error(err))
		}
		defer cache.Close()
	}

	// Order event producer (optional)
	var producer kafka.ProducerAPI
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer p.Close()
		producer = p
	}

	// New-order alert sink
	var notifier alert.Notifier = &alert.LogNotifier{Logger: log}
	if cfg.SNSTopicArn != "" {
		snsNotifier, err := alert.NewSNSNotifier(ctx, cfg.SNSTopicArn, log)
		if err != nil {
			log.Warn("SNS notifier unavailable, falling back to log alerts", zap.Error(err))
		} else {
			notifier = snsNotifier
		}
	}
	orderRepo := repository.NewOrderRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	promotionRepo := repository.NewPromotionRepository(database.DB)

	orderService := services.NewOrderService(orderRepo, producer, log)
	reviewService := services.NewReviewService(reviewRepo, orderRepo, cache, log)
	reportService := services.NewReportService(orderRepo)
	promotionService := services.NewPromotionService(promotionRepo, log)

	orderSync := realtime.NewOrderSynchronizer(orderRepo, log)
	if err := orderSync.Start(ctx); err != nil {
		log.Fatal("Error starting order synchronizer", zap.Error(err))
	}
	reviewSync := realtime.NewReviewSynchronizer(reviewRepo, log)
	if err := reviewSync.Start(ctx); err != nil {
		log.Fatal("Error starting review synchronizer", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.Register(r,
		controllers.NewOrderController(orderService),
		controllers.NewStreamController(orderSync, reviewSync, notifier),
		controllers.NewReviewController(reviewService),
		controllers.NewReportController(reportService),
		controllers.NewPromotionController(promotionService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
		os.Exit(1)
	}
}
