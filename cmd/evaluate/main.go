package main

import (
	"context"
	"flag"
	"log"

	"github.com/mindplate/backend/config"
	"github.com/mindplate/backend/internal/database"
	"github.com/mindplate/backend/internal/service"
)

func main() {
	limit := flag.Int("limit", -1, "Maximum number of foods to evaluate (-1 for all)")
	calibrate := flag.Bool("calibrate", false, "Rebuild the calibration model and recalibrate AI-generated records after the run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	// S3 is optional; the run still completes without an archive
	var reports *service.ReportService
	if s3cfg, err := config.NewS3Config(ctx); err != nil {
		log.Printf("S3 not configured, report archiving disabled: %v", err)
	} else {
		reports = service.NewReportService(s3cfg)
	}

	predictor, err := service.NewPredictionService()
	if err != nil {
		log.Fatalf("Failed to create prediction service: %v", err)
	}

	evaluator := service.NewEvaluatorService(db, predictor, reports)
	result, err := evaluator.Run(ctx, *limit)
	if err != nil {
		log.Fatalf("Evaluation run failed: %v", err)
	}
	log.Printf("Run %s complete: %d foods evaluated, %d failed",
		result.RunID, result.FoodsEvaluated, result.FoodsFailed)

	if !*calibrate {
		return
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	calibration := service.NewCalibrationService(db, redisClient)
	stats, err := calibration.CalibrateDataset(ctx)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}
	log.Printf("Calibration complete: %d calibrated, %d skipped, %d failed",
		stats.Calibrated, stats.Skipped, stats.Failed)
}
