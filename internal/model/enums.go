package model

// Source identifies where a food record originated.
type Source string

const (
	// SourceAuthoritative is curated government reference data (USDA FDC).
	SourceAuthoritative Source = "authoritative"
	// SourceCommunity is crowd-sourced label data (Open Food Facts).
	SourceCommunity Source = "community"
	// SourceLiterature is data derived from published research.
	SourceLiterature Source = "literature"
	// SourceAIGenerated is data predicted by the AI service.
	SourceAIGenerated Source = "ai_generated"
	// SourceUnknown is returned when no attribution can be inferred.
	SourceUnknown Source = "unknown"
)

// ImpactType enumerates the recognized mental health impact categories.
const (
	ImpactMoodElevation        = "mood_elevation"
	ImpactMoodDepression       = "mood_depression"
	ImpactAnxietyReduction     = "anxiety_reduction"
	ImpactAnxietyIncrease      = "anxiety_increase"
	ImpactCognitiveEnhancement = "cognitive_enhancement"
	ImpactCognitiveDecline     = "cognitive_decline"
	ImpactEnergyIncrease       = "energy_increase"
	ImpactEnergyDecrease       = "energy_decrease"
	ImpactStressReduction      = "stress_reduction"
	ImpactSleepImprovement     = "sleep_improvement"
	ImpactGutHealthImprovement = "gut_health_improvement"
)

// Direction of a reported effect.
const (
	DirectionPositive = "positive"
	DirectionNegative = "negative"
	DirectionMixed    = "mixed"
	DirectionNeutral  = "neutral"
)

// Time scales over which an impact manifests.
const (
	TimeAcute      = "acute"
	TimeCumulative = "cumulative"
	TimeBoth       = "both"
)

// Interaction types between nutrients.
const (
	InteractionSynergistic  = "synergistic"
	InteractionAntagonistic = "antagonistic"
	InteractionRequired     = "required_cofactor"
	InteractionProtective   = "protective"
)
