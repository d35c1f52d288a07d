package service

import (
	"strings"

	"github.com/mindplate/backend/internal/model"
)

// EvidenceTier labels the methodological quality of a study.
type EvidenceTier string

const (
	TierMetaAnalysis        EvidenceTier = "meta_analysis"
	TierSystematicReview    EvidenceTier = "systematic_review"
	TierRCT                 EvidenceTier = "rct"
	TierCohortLarge         EvidenceTier = "cohort_large"
	TierCohortMedium        EvidenceTier = "cohort_medium"
	TierCaseControl         EvidenceTier = "case_control"
	TierCrossSectionalLarge EvidenceTier = "cross_sectional_large"
	TierCrossSectionalSmall EvidenceTier = "cross_sectional_small"
	TierCaseSeries          EvidenceTier = "case_series"
	TierAnimalStudy         EvidenceTier = "animal_study"
	TierInVitro             EvidenceTier = "in_vitro"
	TierExpertOpinion       EvidenceTier = "expert_opinion"
)

// StudyMetadata describes a study being classified.
type StudyMetadata struct {
	Title      string `json:"title,omitempty"`
	Journal    string `json:"journal,omitempty"`
	Year       int    `json:"year,omitempty"`
	DOI        string `json:"doi,omitempty"`
	StudyType  string `json:"study_type,omitempty"`
	SampleSize int    `json:"sample_size,omitempty"`
}

// Base confidence per evidence tier.
var evidenceHierarchy = map[EvidenceTier]float64{
	TierMetaAnalysis:        10,
	TierSystematicReview:    9,
	TierRCT:                 8,
	TierCohortLarge:         7,
	TierCohortMedium:        6,
	TierCaseControl:         5,
	TierCrossSectionalLarge: 4,
	TierCrossSectionalSmall: 3,
	TierCaseSeries:          2,
	TierAnimalStudy:         2,
	TierInVitro:             1,
	TierExpertOpinion:       1,
}

type studyTypePattern struct {
	keyword string
	tier    EvidenceTier
}

// Scanned in order; specific phrases must come before generic ones
// ("meta-analysis" before "review").
var studyTypePatterns = []studyTypePattern{
	{"meta-analysis", TierMetaAnalysis},
	{"meta analysis", TierMetaAnalysis},
	{"systematic review", TierSystematicReview},
	{"randomized controlled trial", TierRCT},
	{"rct", TierRCT},
	{"randomised controlled trial", TierRCT},
	{"double-blind", TierRCT},
	{"double blind", TierRCT},
	{"placebo-controlled", TierRCT},
	{"placebo controlled", TierRCT},
	{"cohort study", TierCohortMedium},
	{"prospective cohort", TierCohortMedium},
	{"longitudinal study", TierCohortMedium},
	{"case-control", TierCaseControl},
	{"case control", TierCaseControl},
	{"cross-sectional", TierCrossSectionalSmall},
	{"cross sectional", TierCrossSectionalSmall},
	{"observational study", TierCrossSectionalSmall},
	{"case series", TierCaseSeries},
	{"case report", TierCaseSeries},
	{"animal study", TierAnimalStudy},
	{"animal model", TierAnimalStudy},
	{"in vitro", TierInVitro},
	{"cell culture", TierInVitro},
	{"expert opinion", TierExpertOpinion},
	{"review", TierExpertOpinion},
}

// Confidence adjustments applied on top of the tier baseline.
const (
	adjustLargeSample       = 1  // > 1000 participants
	adjustSmallSample       = -1 // < 100 participants
	adjustMechanism         = 1
	adjustMethodologyIssues = -2
	adjustDirectMeasurement = 1
)

var (
	mechanismKeywords = []string{
		"mechanism", "pathway", "signaling", "signalling", "receptor", "neurotransmitter",
	}
	issueKeywords = []string{
		"limitation", "bias", "confound", "problematic", "drawback",
	}
	measurementKeywords = []string{
		"blood sample", "serum level", "plasma concentration", "measured",
	}
)

// EvidenceClassifier assigns an evidence tier and a 1..10 confidence
// rating to a study excerpt.
type EvidenceClassifier struct{}

func NewEvidenceClassifier() *EvidenceClassifier {
	return &EvidenceClassifier{}
}

// Classify determines the evidence tier from the declared study type
// (preferred) or the excerpt text, then applies language and sample-size
// adjustments and clamps the result to the 1..10 scale.
func (c *EvidenceClassifier) Classify(meta StudyMetadata, excerpt string) (EvidenceTier, float64) {
	tier := TierCrossSectionalSmall

	if meta.StudyType != "" {
		declared := strings.ToLower(meta.StudyType)
		for _, p := range studyTypePatterns {
			if strings.Contains(declared, p.keyword) {
				tier = p.tier
				break
			}
		}
	}

	lowered := strings.ToLower(excerpt)
	if tier == TierCrossSectionalSmall && excerpt != "" {
		for _, p := range studyTypePatterns {
			if strings.Contains(lowered, p.keyword) {
				tier = p.tier
				break
			}
		}
	}

	base, ok := evidenceHierarchy[tier]
	if !ok {
		base = 3
	}

	adjustments := 0.0
	if meta.SampleSize > 1000 {
		adjustments += adjustLargeSample
	} else if meta.SampleSize > 0 && meta.SampleSize < 100 {
		adjustments += adjustSmallSample
	}
	if containsAny(lowered, mechanismKeywords) {
		adjustments += adjustMechanism
	}
	if containsAny(lowered, issueKeywords) {
		adjustments += adjustMethodologyIssues
	}
	if containsAny(lowered, measurementKeywords) {
		adjustments += adjustDirectMeasurement
	}

	return tier, model.ClampConfidence(base + adjustments)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
