package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mindplate/backend/internal/model"
)

// PredictionTargets lists the nutrient keys the evaluator asks the AI
// service to predict. Dotted keys address omega-3 sub-fields.
var PredictionTargets = []string{
	"tryptophan_mg",
	"tyrosine_mg",
	"vitamin_b6_mg",
	"folate_mcg",
	"vitamin_b12_mcg",
	"vitamin_d_mcg",
	"magnesium_mg",
	"zinc_mg",
	"iron_mg",
	"selenium_mcg",
	"choline_mg",
	"omega3.total_g",
	"omega3.epa_mg",
	"omega3.dha_mg",
	"omega3.ala_mg",
}

// ExpectedConfidence maps a percentage error to the confidence a
// well-calibrated predictor should have reported.
func ExpectedConfidence(percentageError float64) float64 {
	switch {
	case percentageError <= 10:
		return 10
	case percentageError <= 25:
		return 7
	case percentageError <= 50:
		return 5
	case percentageError <= 100:
		return 3
	default:
		return 1
	}
}

// EvaluateField scores one predicted value against its reference. A zero
// reference leaves the percentage error undefined, which misses every
// tolerance band and expects the minimum confidence.
func EvaluateField(predicted, reference, predictedConfidence float64) model.FieldEvaluation {
	eval := model.FieldEvaluation{
		Predicted:           predicted,
		Reference:           reference,
		AbsoluteError:       math.Abs(predicted - reference),
		PredictedConfidence: predictedConfidence,
	}

	if reference != 0 {
		pct := eval.AbsoluteError / math.Abs(reference) * 100
		eval.PercentageError = &pct
		eval.ExpectedConfidence = ExpectedConfidence(pct)
	} else {
		eval.ExpectedConfidence = ExpectedConfidence(math.Inf(1))
	}

	if predictedConfidence > 0 {
		confErr := math.Abs(predictedConfidence - eval.ExpectedConfidence)
		eval.ConfidenceError = &confErr
	}

	return eval
}

// EvaluateImpacts scores predicted impacts against the reference set,
// matched by impact type. Precision and recall fall back to 0 when their
// denominator is empty. Confidence errors are computed for matched pairs
// only, against the reference confidence.
func EvaluateImpacts(predicted, reference []model.MentalHealthImpact) model.ImpactEvaluation {
	eval := model.ImpactEvaluation{
		PredictedTypes: impactTypes(predicted),
		ReferenceTypes: impactTypes(reference),
	}

	refByType := make(map[string]model.MentalHealthImpact, len(reference))
	for _, r := range reference {
		refByType[r.ImpactType] = r
	}

	seen := make(map[string]bool, len(predicted))
	for _, p := range predicted {
		if seen[p.ImpactType] {
			continue
		}
		seen[p.ImpactType] = true
		if r, ok := refByType[p.ImpactType]; ok {
			eval.MatchedTypes = append(eval.MatchedTypes, p.ImpactType)
			if p.Confidence > 0 && r.Confidence > 0 {
				if eval.ConfidenceErrors == nil {
					eval.ConfidenceErrors = make(map[string]float64)
				}
				eval.ConfidenceErrors[p.ImpactType] = math.Abs(p.Confidence - r.Confidence)
			}
		}
	}
	sort.Strings(eval.MatchedTypes)

	if n := len(eval.PredictedTypes); n > 0 {
		eval.Precision = float64(len(eval.MatchedTypes)) / float64(n)
	}
	if n := len(eval.ReferenceTypes); n > 0 {
		eval.Recall = float64(len(eval.MatchedTypes)) / float64(n)
	}

	return eval
}

func impactTypes(impacts []model.MentalHealthImpact) []string {
	seen := make(map[string]bool, len(impacts))
	var types []string
	for _, i := range impacts {
		if !seen[i.ImpactType] {
			seen[i.ImpactType] = true
			types = append(types, i.ImpactType)
		}
	}
	sort.Strings(types)
	return types
}

// nutrientAccumulator carries the running sums behind one nutrient's
// accuracy entry.
type nutrientAccumulator struct {
	total    int
	within25 int
	errSum   float64
	errCount int
}

// MetricsAccumulator aggregates field and impact evaluations across
// batches by weighted incremental averaging, so a new batch can be
// absorbed without re-scanning history.
type MetricsAccumulator struct {
	nutrients model.NutrientMetrics
	impacts   model.ImpactMetrics
	byName    map[string]*nutrientAccumulator

	foodsEvaluated int
	foodsFailed    int
}

func NewMetricsAccumulator() *MetricsAccumulator {
	return &MetricsAccumulator{byName: make(map[string]*nutrientAccumulator)}
}

// AbsorbField folds one field evaluation into the running aggregates.
func (a *MetricsAccumulator) AbsorbField(nutrient string, eval model.FieldEvaluation) {
	m := &a.nutrients
	m.TotalPredictions++
	m.MeanAbsoluteError = mergeMean(m.MeanAbsoluteError, m.TotalPredictions-1, eval.AbsoluteError, 1)

	acc := a.byName[nutrient]
	if acc == nil {
		acc = &nutrientAccumulator{}
		a.byName[nutrient] = acc
	}
	acc.total++

	if eval.PercentageError != nil {
		pct := *eval.PercentageError
		m.MeanPercentageError = mergeMean(m.MeanPercentageError, m.ErrorSamples, pct, 1)
		m.ErrorSamples++
		if pct <= 10 {
			m.Within10Percent++
		}
		if pct <= 25 {
			m.Within25Percent++
			acc.within25++
		}
		if pct <= 50 {
			m.Within50Percent++
		}
		acc.errSum += pct
		acc.errCount++
	}

	if eval.ConfidenceError != nil {
		m.ConfidenceCalibrationError = mergeMean(m.ConfidenceCalibrationError, m.ConfidenceSamples, *eval.ConfidenceError, 1)
		m.ConfidenceSamples++
	}
}

// AbsorbImpacts folds one impact evaluation into the running aggregates.
func (a *MetricsAccumulator) AbsorbImpacts(eval model.ImpactEvaluation) {
	m := &a.impacts
	m.TotalPredictions += len(eval.PredictedTypes)
	m.CorrectlyIdentified += len(eval.MatchedTypes)
	for _, confErr := range eval.ConfidenceErrors {
		m.ConfidenceCalibrationError = mergeMean(m.ConfidenceCalibrationError, m.ConfidenceSamples, confErr, 1)
		m.ConfidenceSamples++
	}
}

// MarkEvaluated records one successfully evaluated food.
func (a *MetricsAccumulator) MarkEvaluated() { a.foodsEvaluated++ }

// MarkFailed records one food whose prediction failed; failed foods are
// excluded from all accuracy aggregates.
func (a *MetricsAccumulator) MarkFailed() { a.foodsFailed++ }

// Merge folds another accumulator into this one using mean-count
// weighting, yielding the same result as a single-pass aggregation.
func (a *MetricsAccumulator) Merge(other *MetricsAccumulator) {
	m, o := &a.nutrients, &other.nutrients
	m.MeanAbsoluteError = mergeMean(m.MeanAbsoluteError, m.TotalPredictions, o.MeanAbsoluteError, o.TotalPredictions)
	m.MeanPercentageError = mergeMean(m.MeanPercentageError, m.ErrorSamples, o.MeanPercentageError, o.ErrorSamples)
	m.ConfidenceCalibrationError = mergeMean(m.ConfidenceCalibrationError, m.ConfidenceSamples, o.ConfidenceCalibrationError, o.ConfidenceSamples)
	m.TotalPredictions += o.TotalPredictions
	m.Within10Percent += o.Within10Percent
	m.Within25Percent += o.Within25Percent
	m.Within50Percent += o.Within50Percent
	m.ErrorSamples += o.ErrorSamples
	m.ConfidenceSamples += o.ConfidenceSamples

	for name, acc := range other.byName {
		mine := a.byName[name]
		if mine == nil {
			mine = &nutrientAccumulator{}
			a.byName[name] = mine
		}
		mine.total += acc.total
		mine.within25 += acc.within25
		mine.errSum += acc.errSum
		mine.errCount += acc.errCount
	}

	im, oi := &a.impacts, &other.impacts
	im.ConfidenceCalibrationError = mergeMean(im.ConfidenceCalibrationError, im.ConfidenceSamples, oi.ConfidenceCalibrationError, oi.ConfidenceSamples)
	im.TotalPredictions += oi.TotalPredictions
	im.CorrectlyIdentified += oi.CorrectlyIdentified
	im.ConfidenceSamples += oi.ConfidenceSamples

	a.foodsEvaluated += other.foodsEvaluated
	a.foodsFailed += other.foodsFailed
}

// NutrientMetrics finalizes the aggregated nutrient metrics.
func (a *MetricsAccumulator) NutrientMetrics() model.NutrientMetrics {
	m := a.nutrients
	if m.TotalPredictions > 0 {
		m.PercentWithin10 = float64(m.Within10Percent) / float64(m.TotalPredictions) * 100
		m.PercentWithin25 = float64(m.Within25Percent) / float64(m.TotalPredictions) * 100
		m.PercentWithin50 = float64(m.Within50Percent) / float64(m.TotalPredictions) * 100
	}

	m.ByNutrient = make(map[string]model.NutrientAccuracy, len(a.byName))
	for name, acc := range a.byName {
		entry := model.NutrientAccuracy{SampleSize: acc.total}
		if acc.total > 0 {
			entry.AccuracyWithin25Percent = float64(acc.within25) / float64(acc.total) * 100
		}
		if acc.errCount > 0 {
			entry.MeanErrorPercent = acc.errSum / float64(acc.errCount)
		}
		m.ByNutrient[name] = entry
	}

	return m
}

// ImpactMetrics finalizes the aggregated impact metrics. Precision here
// is over all predicted impacts in the run; recall requires the
// per-food reference sets and is reported per evaluation instead.
func (a *MetricsAccumulator) ImpactMetrics() model.ImpactMetrics {
	m := a.impacts
	if m.TotalPredictions > 0 {
		m.Precision = float64(m.CorrectlyIdentified) / float64(m.TotalPredictions) * 100
	}
	return m
}

func mergeMean(mean float64, count int, otherMean float64, otherCount int) float64 {
	total := count + otherCount
	if total == 0 {
		return 0
	}
	return (mean*float64(count) + otherMean*float64(otherCount)) / float64(total)
}

// EvaluatorService runs known-answer tests: it asks the prediction
// client to estimate brain nutrients and impacts for foods that already
// carry trusted reference data, scores the predictions and persists the
// per-food evaluations and aggregated metrics.
type EvaluatorService struct {
	db        *gorm.DB
	client    PredictionClient
	reports   *ReportService
	batchSize int
}

func NewEvaluatorService(db *gorm.DB, client PredictionClient, reports *ReportService) *EvaluatorService {
	return &EvaluatorService{
		db:        db,
		client:    client,
		reports:   reports,
		batchSize: 50,
	}
}

// NewRunID generates an evaluation run identifier.
func NewRunID() string {
	return fmt.Sprintf("test_%d", time.Now().Unix())
}

// EvaluationRunResult summarizes one completed run.
type EvaluationRunResult struct {
	RunID          string                `json:"run_id"`
	FoodsEvaluated int                   `json:"foods_evaluated"`
	FoodsFailed    int                   `json:"foods_failed"`
	Nutrients      model.NutrientMetrics `json:"nutrients"`
	Impacts        model.ImpactMetrics   `json:"impacts"`
}

// Run evaluates up to limit reference foods and persists the results.
// Reference foods are those from trusted sources that carry brain
// nutrient data. Per-food failures are recorded and skipped, never
// aborting the run.
func (s *EvaluatorService) Run(ctx context.Context, limit int) (*EvaluationRunResult, error) {
	runID := NewRunID()
	acc := NewMetricsAccumulator()

	offset := 0
	remaining := limit
	for remaining != 0 {
		batch := s.batchSize
		if remaining > 0 && remaining < batch {
			batch = remaining
		}

		var foods []model.Food
		err := s.db.WithContext(ctx).
			Where("food_id LIKE ? OR food_id LIKE ?", "usda_%", "lit_%").
			Order("food_id").
			Limit(batch).
			Offset(offset).
			Find(&foods).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load reference foods: %w", err)
		}
		if len(foods) == 0 {
			break
		}

		batchAcc := NewMetricsAccumulator()
		for i := range foods {
			s.evaluateFood(ctx, &foods[i], runID, batchAcc)
		}
		acc.Merge(batchAcc)

		offset += len(foods)
		if remaining > 0 {
			remaining -= len(foods)
		}
	}

	result := &EvaluationRunResult{
		RunID:          runID,
		FoodsEvaluated: acc.foodsEvaluated,
		FoodsFailed:    acc.foodsFailed,
		Nutrients:      acc.NutrientMetrics(),
		Impacts:        acc.ImpactMetrics(),
	}

	if err := s.persistMetrics(ctx, result); err != nil {
		return nil, err
	}

	if s.reports != nil {
		key := fmt.Sprintf("evaluations/%s.json", runID)
		if err := s.reports.Archive(ctx, key, result); err != nil {
			log.Printf("failed to archive evaluation report %s: %v", runID, err)
		}
	}

	log.Printf("evaluation run %s complete: %d evaluated, %d failed", runID, acc.foodsEvaluated, acc.foodsFailed)
	return result, nil
}

// evaluateFood scores one reference food and records the evaluation
// rows. A prediction failure is stored as a failed evaluation and
// excluded from the aggregates.
func (s *EvaluatorService) evaluateFood(ctx context.Context, food *model.Food, runID string, acc *MetricsAccumulator) {
	if food.BrainNutrients.IsEmpty() {
		return
	}

	pred, err := s.client.PredictBrainNutrients(ctx, food, PredictionTargets)
	if err != nil {
		log.Printf("prediction failed for %s: %v", food.FoodID, err)
		acc.MarkFailed()
		s.saveEvaluation(ctx, food, runID, model.EvaluationTypeNutrients, model.EvaluationPayload{
			FoodName: food.Name,
			Category: food.Category,
			Failed:   true,
			Error:    err.Error(),
		})
		return
	}

	fields := make(map[string]model.FieldEvaluation)
	for _, key := range PredictionTargets {
		reference, ok := food.BrainNutrients.Field(key)
		if !ok {
			continue
		}
		predicted, ok := pred.Values[key]
		if !ok {
			continue
		}
		eval := EvaluateField(predicted, reference, pred.Confidences[key])
		fields[key] = eval
		acc.AbsorbField(key, eval)
	}

	payload := model.EvaluationPayload{
		FoodName:  food.Name,
		Category:  food.Category,
		Nutrients: fields,
	}
	s.saveEvaluation(ctx, food, runID, model.EvaluationTypeNutrients, payload)

	if len(food.MentalHealthImpacts) > 0 {
		predicted, err := s.client.PredictMentalHealthImpacts(ctx, food)
		if err != nil {
			log.Printf("impact prediction failed for %s: %v", food.FoodID, err)
		} else {
			impactEval := EvaluateImpacts(predicted, food.MentalHealthImpacts)
			acc.AbsorbImpacts(impactEval)
			s.saveEvaluation(ctx, food, runID, model.EvaluationTypeImpacts, model.EvaluationPayload{
				FoodName: food.Name,
				Category: food.Category,
				Impacts:  &impactEval,
			})
		}
	}

	acc.MarkEvaluated()
}

func (s *EvaluatorService) saveEvaluation(ctx context.Context, food *model.Food, runID, evalType string, payload model.EvaluationPayload) {
	row := model.FoodEvaluation{
		FoodID:         food.FoodID,
		RunID:          runID,
		EvaluationType: evalType,
		EvaluatedAt:    time.Now().UTC(),
		Payload:        payload,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}, {Name: "run_id"}, {Name: "evaluation_type"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		log.Printf("failed to save evaluation for %s: %v", food.FoodID, err)
	}
}

func (s *EvaluatorService) persistMetrics(ctx context.Context, result *EvaluationRunResult) error {
	rows := []model.EvaluationMetrics{
		{
			RunID:       result.RunID,
			MetricsType: model.EvaluationTypeNutrients,
			Metrics: model.MetricsPayload{
				Nutrients:      &result.Nutrients,
				FoodsEvaluated: result.FoodsEvaluated,
				FoodsFailed:    result.FoodsFailed,
			},
		},
		{
			RunID:       result.RunID,
			MetricsType: model.EvaluationTypeImpacts,
			Metrics: model.MetricsPayload{
				Impacts: &result.Impacts,
			},
		},
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to persist run metrics: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recent metrics row of the given type.
func (s *EvaluatorService) LatestMetrics(ctx context.Context, metricsType string) (*model.EvaluationMetrics, error) {
	var row model.EvaluationMetrics
	err := s.db.WithContext(ctx).
		Where("metrics_type = ?", metricsType).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest %s metrics: %w", metricsType, err)
	}
	return &row, nil
}
