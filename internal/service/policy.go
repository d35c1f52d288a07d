package service

import "github.com/mindplate/backend/internal/model"

// MergePolicy is the explicit configuration of the fusion engine:
// which source wins each section, how much confidence a source needs
// before it is considered, and how far macronutrients may disagree
// before two records are treated as different foods.
type MergePolicy struct {
	// SectionPriority maps a section name to its source preference
	// order. The first qualifying source wins the section.
	SectionPriority map[string][]model.Source

	// ConfidenceThresholds is the minimum section confidence a source
	// must carry to be adopted.
	ConfidenceThresholds map[model.Source]float64

	// Omega3Priority is the source preference order for omega-3
	// sub-field merging.
	Omega3Priority []model.Source

	// ConflictTolerance is the maximum relative difference between two
	// records' core macronutrients before they are disqualified from
	// merging, as a fraction (0.5 = 50%).
	ConflictTolerance float64

	// BatchSize paginates whole-dataset merges.
	BatchSize int
}

// DefaultMergePolicy returns the standard policy: authoritative data
// leads the nutrition panel, literature leads everything brain-related,
// community data needs confidence 6 and AI needs 7 to be considered.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{
		SectionPriority: map[string][]model.Source{
			"standard_nutrients": {
				model.SourceAuthoritative, model.SourceCommunity, model.SourceLiterature, model.SourceAIGenerated,
			},
			"brain_nutrients": {
				model.SourceLiterature, model.SourceAuthoritative, model.SourceCommunity, model.SourceAIGenerated,
			},
			"bioactive_compounds": {
				model.SourceLiterature, model.SourceCommunity, model.SourceAuthoritative, model.SourceAIGenerated,
			},
			"mental_health_impacts": {
				model.SourceLiterature, model.SourceAIGenerated,
			},
			"nutrient_interactions": {
				model.SourceLiterature, model.SourceAIGenerated,
			},
			"inflammatory_index": {
				model.SourceLiterature, model.SourceCommunity, model.SourceAIGenerated,
			},
		},
		ConfidenceThresholds: map[model.Source]float64{
			model.SourceAuthoritative: 0,
			model.SourceCommunity:     6,
			model.SourceLiterature:    0,
			model.SourceAIGenerated:   7,
		},
		Omega3Priority: []model.Source{
			model.SourceLiterature, model.SourceAuthoritative, model.SourceCommunity, model.SourceAIGenerated,
		},
		ConflictTolerance: 0.5,
		BatchSize:         100,
	}
}

// Threshold returns the confidence floor for a source, defaulting to 0
// for sources the policy does not name.
func (p *MergePolicy) Threshold(source model.Source) float64 {
	return p.ConfidenceThresholds[source]
}

// Priority returns the preference order for a section, or nil when the
// section has no priority table.
func (p *MergePolicy) Priority(section string) []model.Source {
	return p.SectionPriority[section]
}
