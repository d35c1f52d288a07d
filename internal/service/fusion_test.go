package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindplate/backend/internal/model"
)

func spinachUSDA() model.Food {
	return model.Food{
		FoodID:         "usda_11457",
		Name:           "Spinach",
		NormalizedName: "spinach",
		Category:       "vegetables",
		StandardNutrients: model.StandardNutrients{
			Calories:       floatPtr(23),
			ProteinG:       floatPtr(2.9),
			CarbohydratesG: floatPtr(3.6),
			FatG:           floatPtr(0.4),
			FiberG:         floatPtr(2.2),
			SugarsG:        floatPtr(0.4),
		},
		BrainNutrients: model.BrainNutrients{
			FolateMcg:   floatPtr(194),
			MagnesiumMg: floatPtr(79),
			Omega3: &model.Omega3{
				DHAMg: floatPtr(0),
				ALAMg: floatPtr(138),
			},
		},
		DataQuality: model.DataQuality{
			BrainNutrientsSource: "usda_provided",
			OverallConfidence:    9,
		},
		Meta: model.Metadata{
			SourceIDs:  map[string]string{"usda_fdc_id": "11457"},
			SourceURLs: []string{"https://fdc.nal.usda.gov/11457"},
			Tags:       []string{"leafy-green"},
		},
	}
}

func spinachLit() model.Food {
	return model.Food{
		FoodID:         "lit_spinach_01",
		Name:           "Spinach",
		NormalizedName: "spinach",
		Category:       "vegetables",
		StandardNutrients: model.StandardNutrients{
			Calories: floatPtr(24),
			ProteinG: floatPtr(3.0),
		},
		BrainNutrients: model.BrainNutrients{
			FolateMcg:    floatPtr(190),
			MagnesiumMg:  floatPtr(80),
			VitaminB6Mg:  floatPtr(0.2),
			TryptophanMg: floatPtr(39),
			Omega3: &model.Omega3{
				TotalG: floatPtr(0.14),
				EPAMg:  floatPtr(0),
			},
		},
		MentalHealthImpacts: model.ImpactList{
			{ImpactType: model.ImpactMoodElevation, Direction: model.DirectionPositive, Strength: 6, Confidence: 8},
		},
		DataQuality: model.DataQuality{
			BrainNutrientsSource: "literature_derived",
			OverallConfidence:    8,
		},
		Meta: model.Metadata{
			SourceURLs: []string{"https://doi.org/10.1000/spinach"},
			Tags:       []string{"literature"},
		},
	}
}

func spinachAI() model.Food {
	return model.Food{
		FoodID:         "ai_spinach_01",
		Name:           "Spinach",
		NormalizedName: "spinach",
		Category:       "vegetables",
		// mood_elevation duplicates the literature entry and
		// stress_reduction sits below the AI confidence floor.
		MentalHealthImpacts: model.ImpactList{
			{ImpactType: model.ImpactMoodElevation, Confidence: 9},
			{ImpactType: model.ImpactStressReduction, Confidence: 6},
			{ImpactType: model.ImpactCognitiveEnhancement, Confidence: 7.5},
		},
		DataQuality: model.DataQuality{OverallConfidence: 6},
		Meta: model.Metadata{
			Tags: []string{"ai"},
		},
	}
}

func TestGroupCandidates(t *testing.T) {
	svc := NewFusionService(nil, DefaultMergePolicy())

	t.Run("should cluster matching names including containment", func(t *testing.T) {
		foods := []model.Food{
			{FoodID: "usda_1", NormalizedName: "cheddar cheese",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(400)}},
			{FoodID: "off_1", NormalizedName: "cheddar cheese block",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(410)}},
			{FoodID: "usda_2", NormalizedName: "almond butter"},
		}

		groups := svc.GroupCandidates(foods)
		require.Len(t, groups, 2)
	})

	t.Run("should split clusters on macronutrient conflict", func(t *testing.T) {
		foods := []model.Food{
			{FoodID: "usda_1", NormalizedName: "cheddar cheese",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(400)}},
			{FoodID: "off_1", NormalizedName: "cheddar cheese",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(100)}},
		}

		// |400-100|/400 = 0.75 exceeds the 0.5 tolerance
		groups := svc.GroupCandidates(foods)
		require.Len(t, groups, 2)
	})

	t.Run("should tolerate differences within the threshold", func(t *testing.T) {
		foods := []model.Food{
			{FoodID: "usda_1", NormalizedName: "cheddar cheese",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(400), ProteinG: floatPtr(25)}},
			{FoodID: "off_1", NormalizedName: "cheddar cheese",
				StandardNutrients: model.StandardNutrients{Calories: floatPtr(300), ProteinG: floatPtr(22)}},
		}

		groups := svc.GroupCandidates(foods)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0], 2)
	})
}

func TestClusterNames(t *testing.T) {
	// "baby spinach" and "spinach" sort apart but must share a batch
	clusters := clusterNames([]string{"baby spinach", "kale", "spinach"})

	assert.ElementsMatch(t, [][]string{
		{"baby spinach", "spinach"},
		{"kale"},
	}, clusters)
}

func TestFusionService_Merge(t *testing.T) {
	svc := NewFusionService(nil, DefaultMergePolicy())

	t.Run("should return a single entry unchanged", func(t *testing.T) {
		food := spinachUSDA()
		merged, err := svc.Merge([]model.Food{food})
		require.NoError(t, err)
		assert.Equal(t, "usda_11457", merged.FoodID)
	})

	t.Run("should reject an empty cluster", func(t *testing.T) {
		_, err := svc.Merge(nil)
		assert.Error(t, err)
	})

	t.Run("should build the canonical record by section priority", func(t *testing.T) {
		merged, err := svc.Merge([]model.Food{spinachAI(), spinachLit(), spinachUSDA()})
		require.NoError(t, err)

		assert.Equal(t, "merged_spinach", merged.FoodID)

		// Standard nutrients come from the authoritative record
		assert.Equal(t, model.SourceAuthoritative, merged.DataQuality.SourcePriority["standard_nutrients"])
		require.NotNil(t, merged.StandardNutrients.Calories)
		assert.InDelta(t, 23, *merged.StandardNutrients.Calories, 1e-9)

		// Brain nutrients come from literature, which reports more fields
		assert.Equal(t, model.SourceLiterature, merged.DataQuality.SourcePriority["brain_nutrients"])
		require.NotNil(t, merged.BrainNutrients.TryptophanMg)

		// Impacts keep the first entry per type and drop sub-threshold AI entries
		types := make([]string, 0, len(merged.MentalHealthImpacts))
		for _, impact := range merged.MentalHealthImpacts {
			types = append(types, impact.ImpactType)
		}
		assert.ElementsMatch(t, []string{model.ImpactMoodElevation, model.ImpactCognitiveEnhancement}, types)
		for _, impact := range merged.MentalHealthImpacts {
			if impact.ImpactType == model.ImpactMoodElevation {
				assert.InDelta(t, 8, impact.Confidence, 1e-9)
			}
		}

		// The recorded impact source is the highest priority contributor
		assert.Equal(t, model.SourceLiterature, merged.DataQuality.SourcePriority["mental_health_impacts"])

		// Metadata unions are sorted
		assert.Equal(t, []string{"ai", "leafy-green", "literature"}, merged.Meta.Tags)
		assert.Equal(t, "11457", merged.Meta.SourceIDs["usda_fdc_id"])
	})

	t.Run("should merge omega-3 per sub-field with a fill-based confidence", func(t *testing.T) {
		merged, err := svc.Merge([]model.Food{spinachLit(), spinachUSDA()})
		require.NoError(t, err)

		o := merged.BrainNutrients.Omega3
		require.NotNil(t, o)
		// total and EPA from literature, DHA and ALA from the USDA record
		require.NotNil(t, o.TotalG)
		assert.InDelta(t, 0.14, *o.TotalG, 1e-9)
		require.NotNil(t, o.ALAMg)
		assert.InDelta(t, 138, *o.ALAMg, 1e-9)
		require.NotNil(t, o.Confidence)
		assert.InDelta(t, 9, *o.Confidence, 1e-9) // 5 + min(5, 4 filled)
	})

	t.Run("should skip community sections below their confidence floor", func(t *testing.T) {
		off := model.Food{
			FoodID:         "off_spinach",
			Name:           "Spinach",
			NormalizedName: "spinach",
			StandardNutrients: model.StandardNutrients{
				Calories: floatPtr(25),
				ProteinG: floatPtr(2.8),
			},
			DataQuality: model.DataQuality{OverallConfidence: 4},
		}

		merged, err := svc.Merge([]model.Food{off, spinachLit()})
		require.NoError(t, err)

		// Community confidence 4 is under its floor of 6, literature wins
		assert.Equal(t, model.SourceLiterature, merged.DataQuality.SourcePriority["standard_nutrients"])
		require.NotNil(t, merged.StandardNutrients.Calories)
		assert.InDelta(t, 24, *merged.StandardNutrients.Calories, 1e-9)
	})

	t.Run("should leave a section empty when no source meets its floor", func(t *testing.T) {
		off := model.Food{
			FoodID:         "off_spinach",
			Name:           "Spinach",
			NormalizedName: "spinach",
			StandardNutrients: model.StandardNutrients{
				Calories:       floatPtr(25),
				ProteinG:       floatPtr(2.8),
				CarbohydratesG: floatPtr(3.5),
				FatG:           floatPtr(0.5),
			},
			DataQuality: model.DataQuality{OverallConfidence: 4, Completeness: 0.9},
		}
		lit := spinachLit()
		lit.StandardNutrients = model.StandardNutrients{}

		// The community record is the most complete entry and becomes
		// the base; its sub-floor nutrients must not survive the merge.
		merged, err := svc.Merge([]model.Food{off, lit})
		require.NoError(t, err)

		assert.True(t, merged.StandardNutrients.IsEmpty())
		assert.Nil(t, merged.StandardNutrients.Calories)
		_, recorded := merged.DataQuality.SourcePriority["standard_nutrients"]
		assert.False(t, recorded)

		// Qualifying sections still merge normally
		assert.Equal(t, model.SourceLiterature, merged.DataQuality.SourcePriority["brain_nutrients"])
	})

	t.Run("should be deterministic regardless of input order", func(t *testing.T) {
		a, err := svc.Merge([]model.Food{spinachUSDA(), spinachLit(), spinachAI()})
		require.NoError(t, err)
		b, err := svc.Merge([]model.Food{spinachAI(), spinachUSDA(), spinachLit()})
		require.NoError(t, err)

		assert.Equal(t, a.FoodID, b.FoodID)
		assert.Equal(t, a.StandardNutrients, b.StandardNutrients)
		assert.Equal(t, a.BrainNutrients, b.BrainNutrients)
		assert.Equal(t, a.MentalHealthImpacts, b.MentalHealthImpacts)
		assert.Equal(t, a.Meta.Tags, b.Meta.Tags)
		assert.Equal(t, a.Meta.SourceURLs, b.Meta.SourceURLs)
		assert.Equal(t, a.DataQuality.SourcePriority, b.DataQuality.SourcePriority)
	})

	t.Run("should recompute completeness on the merged record", func(t *testing.T) {
		merged, err := svc.Merge([]model.Food{spinachUSDA(), spinachLit()})
		require.NoError(t, err)
		assert.Equal(t, merged.ComputeCompleteness(), merged.DataQuality.Completeness)
		assert.Greater(t, merged.DataQuality.Completeness, 0.0)
	})
}
