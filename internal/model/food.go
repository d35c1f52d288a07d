package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Food is one food record from a single source, or a merged canonical
// record. FoodID is the stable external identifier and carries a source
// prefix (usda_, off_, lit_, ai_, merged_).
type Food struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FoodID         string `gorm:"size:255;uniqueIndex;not null" json:"food_id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	NormalizedName string `gorm:"size:255;index" json:"normalized_name"`
	Category       string `gorm:"size:100" json:"category,omitempty"`
	Description    string `gorm:"type:text" json:"description,omitempty"`

	ServingSize      float64 `gorm:"type:float" json:"serving_size,omitempty"`
	ServingUnit      string  `gorm:"size:50" json:"serving_unit,omitempty"`
	HouseholdServing string  `gorm:"size:100" json:"household_serving,omitempty"`

	StandardNutrients    StandardNutrients       `gorm:"type:jsonb" json:"standard_nutrients"`
	BrainNutrients       BrainNutrients          `gorm:"type:jsonb" json:"brain_nutrients"`
	BioactiveCompounds   BioactiveCompounds      `gorm:"type:jsonb" json:"bioactive_compounds"`
	MentalHealthImpacts  ImpactList              `gorm:"type:jsonb" json:"mental_health_impacts,omitempty"`
	NutrientInteractions InteractionList         `gorm:"type:jsonb" json:"nutrient_interactions,omitempty"`
	NeuralTargets        NeuralTargetList        `gorm:"type:jsonb" json:"neural_targets,omitempty"`
	PopulationVariations PopulationVariationList `gorm:"type:jsonb" json:"population_variations,omitempty"`
	DietaryPatterns      DietaryPatternList      `gorm:"type:jsonb" json:"dietary_patterns,omitempty"`
	InflammatoryIndex    InflammatoryIndex       `gorm:"type:jsonb" json:"inflammatory_index,omitempty"`
	DataQuality          DataQuality             `gorm:"type:jsonb" json:"data_quality"`
	Meta                 Metadata                `gorm:"type:jsonb;column:metadata" json:"metadata"`
}

// NormalizeName lowercases a food name and collapses internal whitespace
// so that records from different sources can be compared by name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// Source infers where this record came from: an explicit source-id map
// entry wins, then the food_id prefix, then the data quality attribution.
func (f *Food) Source() Source {
	if f.Meta.SourceIDs != nil {
		if _, ok := f.Meta.SourceIDs["usda_fdc_id"]; ok {
			return SourceAuthoritative
		}
		if _, ok := f.Meta.SourceIDs["openfoodfacts_id"]; ok {
			return SourceCommunity
		}
	}

	switch {
	case strings.HasPrefix(f.FoodID, "usda_"):
		return SourceAuthoritative
	case strings.HasPrefix(f.FoodID, "off_"):
		return SourceCommunity
	case strings.HasPrefix(f.FoodID, "lit_"):
		return SourceLiterature
	case strings.HasPrefix(f.FoodID, "ai_"):
		return SourceAIGenerated
	}

	switch f.DataQuality.BrainNutrientsSource {
	case "usda_provided":
		return SourceAuthoritative
	case "openfoodfacts":
		return SourceCommunity
	case "literature_derived":
		return SourceLiterature
	case "ai_generated":
		return SourceAIGenerated
	}

	return SourceUnknown
}

// SectionConfidence rates how much to trust a named section of this
// record. Brain nutrients carry their own attribution; everything else
// falls back to the record's overall confidence.
func (f *Food) SectionConfidence(section string) float64 {
	if section == "brain_nutrients" {
		switch f.DataQuality.BrainNutrientsSource {
		case "usda_provided":
			return 9
		case "literature_derived":
			return 8
		case "openfoodfacts":
			return 7
		}
	}
	return f.DataQuality.OverallConfidence
}

// Required fields for the completeness score.
var (
	completenessStandardFields = []string{
		"calories", "protein_g", "carbohydrates_g", "fat_g", "fiber_g", "sugars_g",
	}
	completenessBrainFields = []string{
		"vitamin_b6_mg", "folate_mcg", "vitamin_b12_mcg", "vitamin_d_mcg",
		"magnesium_mg", "zinc_mg", "iron_mg", "selenium_mcg",
	}
)

// ComputeCompleteness scores the record against the required-field
// checklist, rounded to two decimals.
func (f *Food) ComputeCompleteness() float64 {
	filled := 0
	total := len(completenessStandardFields) + len(completenessBrainFields)

	for _, key := range completenessStandardFields {
		if _, ok := f.StandardNutrients.Field(key); ok {
			filled++
		}
	}
	for _, key := range completenessBrainFields {
		if _, ok := f.BrainNutrients.Field(key); ok {
			filled++
		}
	}

	return math.Round(float64(filled)/float64(total)*100) / 100
}
