package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// Evaluation types stored in food_evaluations.
const (
	EvaluationTypeNutrients = "nutrients"
	EvaluationTypeImpacts   = "mental_health_impacts"
)

// FieldEvaluation scores one predicted nutrient against its reference
// value. PercentageError is nil when the reference is zero, which fails
// every tolerance band.
type FieldEvaluation struct {
	Predicted           float64  `json:"predicted"`
	Reference           float64  `json:"reference"`
	AbsoluteError       float64  `json:"absolute_error"`
	PercentageError     *float64 `json:"percentage_error"`
	PredictedConfidence float64  `json:"predicted_confidence,omitempty"`
	ExpectedConfidence  float64  `json:"expected_confidence"`
	ConfidenceError     *float64 `json:"confidence_error,omitempty"`
}

// ImpactEvaluation scores predicted mental health impacts against a
// reference set, matched by impact type.
type ImpactEvaluation struct {
	PredictedTypes   []string           `json:"predicted_types"`
	ReferenceTypes   []string           `json:"reference_types"`
	MatchedTypes     []string           `json:"matched_types"`
	Precision        float64            `json:"precision"`
	Recall           float64            `json:"recall"`
	ConfidenceErrors map[string]float64 `json:"confidence_errors,omitempty"`
}

// EvaluationPayload is the JSONB body of one food_evaluations row.
type EvaluationPayload struct {
	FoodName  string                     `json:"food_name"`
	Category  string                     `json:"category,omitempty"`
	Failed    bool                       `json:"failed,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Nutrients map[string]FieldEvaluation `json:"nutrients,omitempty"`
	Impacts   *ImpactEvaluation          `json:"impacts,omitempty"`
}

func (p EvaluationPayload) Value() (driver.Value, error) { return jsonbValue(p) }

func (p *EvaluationPayload) Scan(value interface{}) error { return jsonbScan(p, value) }

// FoodEvaluation is one evaluated food within a run. The unique index on
// (food_id, run_id, evaluation_type) makes re-runs upsert.
type FoodEvaluation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FoodID         string            `gorm:"size:255;not null;uniqueIndex:idx_food_run_type" json:"food_id"`
	RunID          string            `gorm:"size:100;not null;uniqueIndex:idx_food_run_type" json:"run_id"`
	EvaluationType string            `gorm:"size:50;not null;uniqueIndex:idx_food_run_type" json:"evaluation_type"`
	EvaluatedAt    time.Time         `json:"evaluated_at"`
	Payload        EvaluationPayload `gorm:"type:jsonb" json:"payload"`
}

// NutrientAccuracy summarizes the accuracy history of one nutrient.
type NutrientAccuracy struct {
	AccuracyWithin25Percent float64 `json:"accuracy_within_25_percent"`
	MeanErrorPercent        float64 `json:"mean_error_percent"`
	SampleSize              int     `json:"sample_size"`
}

// NutrientMetrics aggregates scalar prediction accuracy for a run.
// ErrorSamples counts predictions with a finite percentage error;
// ConfidenceSamples counts predictions that carried a confidence rating.
// Both are kept so later batches can be merged by weighted averaging.
type NutrientMetrics struct {
	TotalPredictions           int     `json:"total_predictions"`
	Within10Percent            int     `json:"predictions_within_10_percent"`
	Within25Percent            int     `json:"predictions_within_25_percent"`
	Within50Percent            int     `json:"predictions_within_50_percent"`
	PercentWithin10            float64 `json:"percent_within_10"`
	PercentWithin25            float64 `json:"percent_within_25"`
	PercentWithin50            float64 `json:"percent_within_50"`
	MeanAbsoluteError          float64 `json:"mean_absolute_error"`
	MeanPercentageError        float64 `json:"mean_absolute_percentage_error"`
	ConfidenceCalibrationError float64 `json:"confidence_calibration_error"`
	ErrorSamples               int     `json:"error_samples"`
	ConfidenceSamples          int     `json:"confidence_samples"`

	ByNutrient map[string]NutrientAccuracy `json:"nutrient_types_by_accuracy,omitempty"`
}

// ImpactMetrics aggregates impact prediction accuracy for a run.
type ImpactMetrics struct {
	TotalPredictions           int     `json:"total_predictions"`
	CorrectlyIdentified        int     `json:"correctly_identified"`
	Precision                  float64 `json:"precision"`
	Recall                     float64 `json:"recall"`
	ConfidenceCalibrationError float64 `json:"confidence_calibration_error"`
	ConfidenceSamples          int     `json:"confidence_samples"`
}

// MetricsPayload is the JSONB body of one evaluation_metrics row.
type MetricsPayload struct {
	Nutrients      *NutrientMetrics `json:"nutrients,omitempty"`
	Impacts        *ImpactMetrics   `json:"impacts,omitempty"`
	FoodsEvaluated int              `json:"foods_evaluated,omitempty"`
	FoodsFailed    int              `json:"foods_failed,omitempty"`
}

func (p MetricsPayload) Value() (driver.Value, error) { return jsonbValue(p) }

func (p *MetricsPayload) Scan(value interface{}) error { return jsonbScan(p, value) }

// EvaluationMetrics is one append-only aggregated metrics row.
type EvaluationMetrics struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RunID       string         `gorm:"size:100;not null;index" json:"run_id"`
	MetricsType string         `gorm:"size:50;not null;index" json:"metrics_type"`
	Metrics     MetricsPayload `gorm:"type:jsonb" json:"metrics"`
}

// CalibrationModel holds confidence adjustments derived from an
// evaluation run.
type CalibrationModel struct {
	RunID               string                        `json:"run_id"`
	BuiltAt             time.Time                     `json:"built_at"`
	NutrientAdjustments map[string]float64            `json:"nutrient_adjustments"`
	CategoryAdjustments map[string]map[string]float64 `json:"category_adjustments"`
	GlobalOffset        float64                       `json:"global_offset"`
}

// AdjustmentFor returns the combined adjustment for a nutrient within a
// food category: global offset, plus the nutrient's adjustment, plus any
// category-specific override.
func (m *CalibrationModel) AdjustmentFor(nutrient, category string) float64 {
	adj := m.GlobalOffset
	if a, ok := m.NutrientAdjustments[nutrient]; ok {
		adj += a
	}
	if byNutrient, ok := m.CategoryAdjustments[category]; ok {
		if a, ok := byNutrient[nutrient]; ok {
			adj += a
		}
	}
	return adj
}

// ClampConfidence keeps a confidence rating inside the 1..10 scale.
func ClampConfidence(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
