package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindplate/backend/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildCalibrationModel(t *testing.T) {
	t.Run("should band per-nutrient adjustments by accuracy", func(t *testing.T) {
		metrics := &model.NutrientMetrics{
			ByNutrient: map[string]model.NutrientAccuracy{
				"vitamin_d_mcg": {AccuracyWithin25Percent: 30},
				"folate_mcg":    {AccuracyWithin25Percent: 60},
				"magnesium_mg":  {AccuracyWithin25Percent: 80},
				"zinc_mg":       {AccuracyWithin25Percent: 95},
			},
		}

		m := BuildCalibrationModel("test_1", metrics)

		assert.Equal(t, -2.0, m.NutrientAdjustments["vitamin_d_mcg"])
		assert.Equal(t, -1.0, m.NutrientAdjustments["folate_mcg"])
		assert.Equal(t, 0.0, m.NutrientAdjustments["magnesium_mg"])
		assert.Equal(t, 0.5, m.NutrientAdjustments["zinc_mg"])
		assert.Zero(t, m.GlobalOffset)
	})

	t.Run("should derive a global offset from calibration error and MAPE", func(t *testing.T) {
		m := BuildCalibrationModel("test_2", &model.NutrientMetrics{
			ConfidenceCalibrationError: 3,
			MeanPercentageError:        60,
		})
		assert.InDelta(t, -2.5, m.GlobalOffset, 1e-9)

		m = BuildCalibrationModel("test_3", &model.NutrientMetrics{
			ConfidenceCalibrationError: 2,
			MeanPercentageError:        50,
		})
		assert.Zero(t, m.GlobalOffset)
	})
}

func TestCalibrationModel_AdjustmentFor(t *testing.T) {
	m := &model.CalibrationModel{
		GlobalOffset:        -1,
		NutrientAdjustments: map[string]float64{"zinc_mg": 0.5},
		CategoryAdjustments: map[string]map[string]float64{
			"fish": {"zinc_mg": 1},
		},
	}

	assert.InDelta(t, 0.5, m.AdjustmentFor("zinc_mg", "fish"), 1e-9)
	assert.InDelta(t, -0.5, m.AdjustmentFor("zinc_mg", "grains"), 1e-9)
	assert.InDelta(t, -1.0, m.AdjustmentFor("iron_mg", "fish"), 1e-9)
}

func TestCalibrationService_Apply(t *testing.T) {
	svc := NewCalibrationService(nil, nil)

	newFood := func() *model.Food {
		conf := 6.0
		return &model.Food{
			FoodID:   "ai_oats",
			Name:     "Oats",
			Category: "grains",
			BrainNutrients: model.BrainNutrients{
				Omega3:      &model.Omega3{TotalG: floatPtr(0.1), Confidence: &conf},
				Confidences: map[string]float64{"magnesium_mg": 7, "vitamin_d_mcg": 2},
			},
			BioactiveCompounds: model.BioactiveCompounds{
				Confidences: map[string]float64{"polyphenols_mg": 5},
			},
			MentalHealthImpacts: model.ImpactList{
				{ImpactType: model.ImpactEnergyIncrease, Confidence: 6},
			},
		}
	}

	t.Run("should adjust and clamp all confidence ratings", func(t *testing.T) {
		food := newFood()
		m := &model.CalibrationModel{
			GlobalOffset: -1,
			NutrientAdjustments: map[string]float64{
				"magnesium_mg":   0.5,
				"vitamin_d_mcg":  -2,
				"omega3.total_g": -1,
			},
		}

		svc.Apply(food, m)

		assert.InDelta(t, 6.5, food.BrainNutrients.Confidences["magnesium_mg"], 1e-9)
		// 2 - 1 - 2 clamps up to the floor
		assert.InDelta(t, 1.0, food.BrainNutrients.Confidences["vitamin_d_mcg"], 1e-9)
		require.NotNil(t, food.BrainNutrients.Omega3.Confidence)
		assert.InDelta(t, 4.0, *food.BrainNutrients.Omega3.Confidence, 1e-9)
		// Bioactives take an extra -1: 5 - 1 - 1
		assert.InDelta(t, 3.0, food.BioactiveCompounds.Confidences["polyphenols_mg"], 1e-9)
		// Impacts use the global offset with an extra -1: 6 - 1 - 1
		assert.InDelta(t, 4.0, food.MentalHealthImpacts[0].Confidence, 1e-9)
	})

	t.Run("applying twice compounds", func(t *testing.T) {
		food := newFood()
		m := &model.CalibrationModel{GlobalOffset: -1}

		svc.Apply(food, m)
		first := food.BrainNutrients.Confidences["magnesium_mg"]
		svc.Apply(food, m)

		assert.InDelta(t, first-1, food.BrainNutrients.Confidences["magnesium_mg"], 1e-9)
	})

	t.Run("zero-confidence impacts stay untouched", func(t *testing.T) {
		food := newFood()
		food.MentalHealthImpacts[0].Confidence = 0
		svc.Apply(food, &model.CalibrationModel{GlobalOffset: -2})
		assert.Zero(t, food.MentalHealthImpacts[0].Confidence)
	})
}
