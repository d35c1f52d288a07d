package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindplate/backend/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestDatabaseSetup(t *testing.T) {
	db := SetupTestDatabase(t)
	assert.NotNil(t, db)

	// Create a food record with nested JSONB sections
	food := &model.Food{
		FoodID:         "usda_12345",
		Name:           "Wild Atlantic Salmon",
		NormalizedName: model.NormalizeName("Wild Atlantic Salmon"),
		Category:       "fish",
		ServingSize:    100,
		ServingUnit:    "g",
		StandardNutrients: model.StandardNutrients{
			Calories: floatPtr(208),
			ProteinG: floatPtr(20.4),
			FatG:     floatPtr(13.4),
		},
		BrainNutrients: model.BrainNutrients{
			VitaminB12Mcg: floatPtr(2.8),
			Omega3: &model.Omega3{
				TotalG:     floatPtr(2.2),
				EPAMg:      floatPtr(690),
				DHAMg:      floatPtr(1100),
				Confidence: floatPtr(9),
			},
			Confidences: map[string]float64{"vitamin_b12_mcg": 9},
		},
		MentalHealthImpacts: model.ImpactList{
			{
				ImpactType: model.ImpactMoodElevation,
				Direction:  model.DirectionPositive,
				Strength:   7,
				Confidence: 8,
			},
		},
		DataQuality: model.DataQuality{
			BrainNutrientsSource: "usda_provided",
			OverallConfidence:    9,
		},
		Meta: model.Metadata{
			SourceIDs: map[string]string{"usda_fdc_id": "12345"},
			Tags:      []string{"seafood"},
		},
	}
	food.DataQuality.Completeness = food.ComputeCompleteness()

	require.NoError(t, db.Create(food).Error)
	assert.NotZero(t, food.ID)

	// Round-trip the JSONB sections
	var loaded model.Food
	require.NoError(t, db.Where("food_id = ?", "usda_12345").First(&loaded).Error)
	assert.Equal(t, food.Name, loaded.Name)
	assert.Equal(t, model.SourceAuthoritative, loaded.Source())
	require.NotNil(t, loaded.StandardNutrients.Calories)
	assert.InDelta(t, 208, *loaded.StandardNutrients.Calories, 0.001)
	require.NotNil(t, loaded.BrainNutrients.Omega3)
	require.NotNil(t, loaded.BrainNutrients.Omega3.DHAMg)
	assert.InDelta(t, 1100, *loaded.BrainNutrients.Omega3.DHAMg, 0.001)
	require.Len(t, loaded.MentalHealthImpacts, 1)
	assert.Equal(t, model.ImpactMoodElevation, loaded.MentalHealthImpacts[0].ImpactType)

	// Evaluation rows are unique per food, run and type
	eval := &model.FoodEvaluation{
		FoodID:         food.FoodID,
		RunID:          "test_1700000000",
		EvaluationType: model.EvaluationTypeNutrients,
		Payload: model.EvaluationPayload{
			FoodName: food.Name,
			Nutrients: map[string]model.FieldEvaluation{
				"magnesium_mg": {Predicted: 28, Reference: 30, AbsoluteError: 2},
			},
		},
	}
	require.NoError(t, db.Create(eval).Error)

	dup := &model.FoodEvaluation{
		FoodID:         food.FoodID,
		RunID:          "test_1700000000",
		EvaluationType: model.EvaluationTypeNutrients,
	}
	assert.Error(t, db.Create(dup).Error)
}
