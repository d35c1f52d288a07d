package main

import (
	"context"
	"log"

	"github.com/mindplate/backend/config"
	"github.com/mindplate/backend/internal/api"
	"github.com/mindplate/backend/internal/database"
	"github.com/mindplate/backend/internal/middleware"
	"github.com/mindplate/backend/internal/router"
	"github.com/mindplate/backend/internal/server"
	"github.com/mindplate/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// S3 is optional; evaluation reports are only archived when it is configured
	var reports *service.ReportService
	if s3cfg, err := config.NewS3Config(context.Background()); err != nil {
		log.Printf("S3 not configured, report archiving disabled: %v", err)
	} else {
		reports = service.NewReportService(s3cfg)
	}

	// Initialize prediction client
	predictor, err := service.NewPredictionService()
	if err != nil {
		log.Fatalf("Failed to create prediction service: %v", err)
	}

	// Initialize services
	foodService := service.NewFoodService(db)
	evaluator := service.NewEvaluatorService(db, predictor, reports)
	calibration := service.NewCalibrationService(db, redisClient)
	fusion := service.NewFusionService(db, service.DefaultMergePolicy())
	classifier := service.NewEvidenceClassifier()
	tokenService := service.NewTokenService(cfg.JWTSecret)

	// Initialize handlers and router
	foodHandler := api.NewFoodHandler(foodService)
	adminHandler := api.NewAdminHandler(evaluator, calibration, fusion, classifier)
	rateLimiter := middleware.NewAdminRateLimiter(redisClient)
	r := router.SetupRouter(foodHandler, adminHandler, tokenService, rateLimiter)

	// Create and start server
	srv := server.NewServer(db, r)
	if err := srv.Start(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
