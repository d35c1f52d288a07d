package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindplate/backend/internal/model"
)

func TestExpectedConfidence(t *testing.T) {
	assert.Equal(t, 10.0, ExpectedConfidence(0))
	assert.Equal(t, 10.0, ExpectedConfidence(10))
	assert.Equal(t, 7.0, ExpectedConfidence(25))
	assert.Equal(t, 5.0, ExpectedConfidence(50))
	assert.Equal(t, 3.0, ExpectedConfidence(100))
	assert.Equal(t, 1.0, ExpectedConfidence(100.01))
}

func TestEvaluateField(t *testing.T) {
	t.Run("should compute errors and expected confidence", func(t *testing.T) {
		eval := EvaluateField(110, 100, 9)

		assert.Equal(t, 10.0, eval.AbsoluteError)
		require.NotNil(t, eval.PercentageError)
		assert.InDelta(t, 10.0, *eval.PercentageError, 1e-9)
		assert.Equal(t, 10.0, eval.ExpectedConfidence)
		require.NotNil(t, eval.ConfidenceError)
		assert.InDelta(t, 1.0, *eval.ConfidenceError, 1e-9)
	})

	t.Run("should leave percentage error undefined for a zero reference", func(t *testing.T) {
		eval := EvaluateField(5, 0, 8)

		assert.Equal(t, 5.0, eval.AbsoluteError)
		assert.Nil(t, eval.PercentageError)
		assert.Equal(t, 1.0, eval.ExpectedConfidence)
		require.NotNil(t, eval.ConfidenceError)
		assert.InDelta(t, 7.0, *eval.ConfidenceError, 1e-9)
	})

	t.Run("should skip confidence error without a predicted confidence", func(t *testing.T) {
		eval := EvaluateField(30, 40, 0)
		assert.Nil(t, eval.ConfidenceError)
	})
}

func TestEvaluateImpacts(t *testing.T) {
	predicted := []model.MentalHealthImpact{
		{ImpactType: model.ImpactMoodElevation, Confidence: 6},
		{ImpactType: model.ImpactCognitiveEnhancement, Confidence: 7},
		{ImpactType: model.ImpactMoodElevation, Confidence: 9}, // duplicate type
	}
	reference := []model.MentalHealthImpact{
		{ImpactType: model.ImpactMoodElevation, Confidence: 8},
		{ImpactType: model.ImpactAnxietyReduction, Confidence: 7},
	}

	eval := EvaluateImpacts(predicted, reference)

	assert.ElementsMatch(t, []string{model.ImpactMoodElevation, model.ImpactCognitiveEnhancement}, eval.PredictedTypes)
	assert.Equal(t, []string{model.ImpactMoodElevation}, eval.MatchedTypes)
	assert.InDelta(t, 0.5, eval.Precision, 1e-9)
	assert.InDelta(t, 0.5, eval.Recall, 1e-9)
	require.Contains(t, eval.ConfidenceErrors, model.ImpactMoodElevation)
	assert.InDelta(t, 2.0, eval.ConfidenceErrors[model.ImpactMoodElevation], 1e-9)

	t.Run("should return zero rates on empty sets", func(t *testing.T) {
		eval := EvaluateImpacts(nil, nil)
		assert.Zero(t, eval.Precision)
		assert.Zero(t, eval.Recall)
	})
}

func TestMetricsAccumulator(t *testing.T) {
	t.Run("should aggregate field evaluations", func(t *testing.T) {
		acc := NewMetricsAccumulator()
		acc.AbsorbField("magnesium_mg", EvaluateField(110, 100, 9)) // 10% error
		acc.AbsorbField("magnesium_mg", EvaluateField(60, 100, 5))  // 40% error
		acc.AbsorbField("zinc_mg", EvaluateField(5, 0, 8))          // undefined error
		acc.MarkEvaluated()

		m := acc.NutrientMetrics()
		assert.Equal(t, 3, m.TotalPredictions)
		assert.Equal(t, 1, m.Within10Percent)
		assert.Equal(t, 1, m.Within25Percent)
		assert.Equal(t, 2, m.Within50Percent)
		assert.Equal(t, 2, m.ErrorSamples)
		assert.InDelta(t, 25.0, m.MeanPercentageError, 1e-9)
		assert.InDelta(t, (10.0+40.0+5.0)/3, m.MeanAbsoluteError, 1e-9)
		// Undefined errors still count against the tolerance bands
		assert.InDelta(t, 100.0/3, m.PercentWithin25, 1e-6)

		// |9-10|, |5-5|, |8-1|
		assert.Equal(t, 3, m.ConfidenceSamples)
		assert.InDelta(t, (1.0+0.0+7.0)/3, m.ConfidenceCalibrationError, 1e-9)

		require.Contains(t, m.ByNutrient, "magnesium_mg")
		mg := m.ByNutrient["magnesium_mg"]
		assert.Equal(t, 2, mg.SampleSize)
		assert.InDelta(t, 50.0, mg.AccuracyWithin25Percent, 1e-9)
		assert.InDelta(t, 25.0, mg.MeanErrorPercent, 1e-9)
	})

	t.Run("merging batches should match single-pass aggregation", func(t *testing.T) {
		evals := []model.FieldEvaluation{
			EvaluateField(110, 100, 9),
			EvaluateField(60, 100, 5),
			EvaluateField(5, 0, 8),
			EvaluateField(33, 30, 7),
			EvaluateField(200, 100, 10),
		}

		single := NewMetricsAccumulator()
		for _, e := range evals {
			single.AbsorbField("folate_mcg", e)
		}

		first, second := NewMetricsAccumulator(), NewMetricsAccumulator()
		for i, e := range evals {
			if i < 2 {
				first.AbsorbField("folate_mcg", e)
			} else {
				second.AbsorbField("folate_mcg", e)
			}
		}
		first.Merge(second)

		sm, fm := single.NutrientMetrics(), first.NutrientMetrics()
		assert.Equal(t, sm.TotalPredictions, fm.TotalPredictions)
		assert.Equal(t, sm.ErrorSamples, fm.ErrorSamples)
		assert.InDelta(t, sm.MeanAbsoluteError, fm.MeanAbsoluteError, 1e-9)
		assert.InDelta(t, sm.MeanPercentageError, fm.MeanPercentageError, 1e-9)
		assert.InDelta(t, sm.ConfidenceCalibrationError, fm.ConfidenceCalibrationError, 1e-9)
		assert.Equal(t, sm.ByNutrient["folate_mcg"], fm.ByNutrient["folate_mcg"])
	})

	t.Run("failed foods stay out of the accuracy aggregates", func(t *testing.T) {
		acc := NewMetricsAccumulator()
		acc.AbsorbField("iron_mg", EvaluateField(8, 10, 6))
		acc.MarkEvaluated()
		acc.MarkFailed()

		m := acc.NutrientMetrics()
		assert.Equal(t, 1, m.TotalPredictions)
		assert.Equal(t, 1, acc.foodsEvaluated)
		assert.Equal(t, 1, acc.foodsFailed)
	})

	t.Run("impact precision is over all predicted impacts", func(t *testing.T) {
		acc := NewMetricsAccumulator()
		acc.AbsorbImpacts(model.ImpactEvaluation{
			PredictedTypes: []string{"mood_elevation", "gut_health_improvement"},
			MatchedTypes:   []string{"mood_elevation"},
		})
		acc.AbsorbImpacts(model.ImpactEvaluation{
			PredictedTypes: []string{"anxiety_reduction"},
			MatchedTypes:   []string{"anxiety_reduction"},
		})

		m := acc.ImpactMetrics()
		assert.Equal(t, 3, m.TotalPredictions)
		assert.Equal(t, 2, m.CorrectlyIdentified)
		assert.InDelta(t, 200.0/3, m.Precision, 1e-6)
	})
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	assert.Regexp(t, `^test_\d+$`, id)
}
