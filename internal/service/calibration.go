package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mindplate/backend/internal/model"
)

// ErrNoEvaluationRuns is returned when no metrics exist to build a
// calibration model from.
var ErrNoEvaluationRuns = errors.New("no evaluation runs available")

const calibrationModelKey = "calibration:model:latest"

// CalibrationService builds confidence calibration models from
// evaluation metrics and applies them to the dataset.
type CalibrationService struct {
	db        *gorm.DB
	redis     *redis.Client
	batchSize int
}

func NewCalibrationService(db *gorm.DB, redisClient *redis.Client) *CalibrationService {
	return &CalibrationService{
		db:        db,
		redis:     redisClient,
		batchSize: 100,
	}
}

// BuildModel derives a calibration model from the most recent nutrients
// metrics row and caches it in Redis.
func (s *CalibrationService) BuildModel(ctx context.Context) (*model.CalibrationModel, error) {
	var row model.EvaluationMetrics
	err := s.db.WithContext(ctx).
		Where("metrics_type = ?", model.EvaluationTypeNutrients).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEvaluationRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation metrics: %w", err)
	}
	if row.Metrics.Nutrients == nil {
		return nil, ErrNoEvaluationRuns
	}

	m := BuildCalibrationModel(row.RunID, row.Metrics.Nutrients)
	m.BuiltAt = time.Now().UTC()

	if s.redis != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := s.redis.Set(ctx, calibrationModelKey, data, 24*time.Hour).Err(); err != nil {
				log.Printf("failed to cache calibration model: %v", err)
			}
		}
	}

	return m, nil
}

// CachedModel returns the last built model from Redis, if present.
func (s *CalibrationService) CachedModel(ctx context.Context) (*model.CalibrationModel, error) {
	if s.redis == nil {
		return nil, redis.Nil
	}
	data, err := s.redis.Get(ctx, calibrationModelKey).Bytes()
	if err != nil {
		return nil, err
	}
	var m model.CalibrationModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached calibration model: %w", err)
	}
	return &m, nil
}

// BuildCalibrationModel derives per-nutrient adjustments and a global
// offset from aggregated nutrient metrics.
func BuildCalibrationModel(runID string, metrics *model.NutrientMetrics) *model.CalibrationModel {
	m := &model.CalibrationModel{
		RunID:               runID,
		NutrientAdjustments: make(map[string]float64),
		CategoryAdjustments: make(map[string]map[string]float64),
	}

	for name, acc := range metrics.ByNutrient {
		accuracy := acc.AccuracyWithin25Percent
		switch {
		case accuracy < 50:
			m.NutrientAdjustments[name] = -2.0
		case accuracy < 75:
			m.NutrientAdjustments[name] = -1.0
		case accuracy >= 90:
			m.NutrientAdjustments[name] = 0.5
		default:
			m.NutrientAdjustments[name] = 0
		}
	}

	if cce := metrics.ConfidenceCalibrationError; cce > 2 {
		m.GlobalOffset -= cce / 2
	}
	if metrics.MeanPercentageError > 50 {
		m.GlobalOffset -= 1.0
	}

	return m
}

// Apply recalibrates all confidence ratings on one record in place.
// Bioactive and impact confidences take an extra -1 on top of the model
// adjustment. Applying a model twice compounds; the batch runner guards
// against that with a calibration tag.
func (s *CalibrationService) Apply(food *model.Food, m *model.CalibrationModel) {
	for name, rating := range food.BrainNutrients.Confidences {
		adjusted := rating + m.AdjustmentFor(name, food.Category)
		food.BrainNutrients.Confidences[name] = model.ClampConfidence(adjusted)
	}

	if o := food.BrainNutrients.Omega3; o != nil && o.Confidence != nil {
		adjusted := *o.Confidence + m.AdjustmentFor("omega3.total_g", food.Category)
		clamped := model.ClampConfidence(adjusted)
		o.Confidence = &clamped
	}

	for name, rating := range food.BioactiveCompounds.Confidences {
		adjusted := rating + m.AdjustmentFor(name, food.Category) - 1
		food.BioactiveCompounds.Confidences[name] = model.ClampConfidence(adjusted)
	}

	for i := range food.MentalHealthImpacts {
		impact := &food.MentalHealthImpacts[i]
		if impact.Confidence > 0 {
			impact.Confidence = model.ClampConfidence(impact.Confidence + m.GlobalOffset - 1)
		}
	}
}

// CalibrationStats summarizes a dataset recalibration pass.
type CalibrationStats struct {
	RunID      string `json:"run_id"`
	Calibrated int    `json:"calibrated"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// CalibrateDataset builds the latest model and applies it to every
// AI-sourced record, in offset-paginated batches. Records already
// stamped for the model's run are skipped; per-record failures are
// counted and do not abort the pass.
func (s *CalibrationService) CalibrateDataset(ctx context.Context) (*CalibrationStats, error) {
	m, err := s.BuildModel(ctx)
	if err != nil {
		return nil, err
	}

	tag := "calibrated:" + m.RunID
	stats := &CalibrationStats{RunID: m.RunID}

	offset := 0
	for {
		var foods []model.Food
		err := s.db.WithContext(ctx).
			Where("food_id LIKE ?", "ai_%").
			Order("food_id").
			Limit(s.batchSize).
			Offset(offset).
			Find(&foods).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load foods for calibration: %w", err)
		}
		if len(foods) == 0 {
			break
		}

		for i := range foods {
			food := &foods[i]
			if food.Meta.HasTag(tag) {
				stats.Skipped++
				continue
			}

			s.Apply(food, m)
			food.Meta.AddTag(tag)
			food.Meta.LastUpdated = time.Now().UTC()

			if err := s.db.WithContext(ctx).Save(food).Error; err != nil {
				log.Printf("failed to save calibrated food %s: %v", food.FoodID, err)
				stats.Failed++
				continue
			}
			stats.Calibrated++
		}

		offset += len(foods)
	}

	log.Printf("calibration run %s: %d calibrated, %d skipped, %d failed",
		m.RunID, stats.Calibrated, stats.Skipped, stats.Failed)
	return stats, nil
}
