package model

import (
	"database/sql/driver"
	"time"
)

// StandardNutrients holds the conventional nutrition panel per 100g.
// All values are optional; nil means the source did not report the field.
type StandardNutrients struct {
	Calories        *float64 `json:"calories,omitempty"`
	ProteinG        *float64 `json:"protein_g,omitempty"`
	CarbohydratesG  *float64 `json:"carbohydrates_g,omitempty"`
	FatG            *float64 `json:"fat_g,omitempty"`
	FiberG          *float64 `json:"fiber_g,omitempty"`
	SugarsG         *float64 `json:"sugars_g,omitempty"`
	SugarsAddedG    *float64 `json:"sugars_added_g,omitempty"`
	CalciumMg       *float64 `json:"calcium_mg,omitempty"`
	IronMg          *float64 `json:"iron_mg,omitempty"`
	MagnesiumMg     *float64 `json:"magnesium_mg,omitempty"`
	PhosphorusMg    *float64 `json:"phosphorus_mg,omitempty"`
	PotassiumMg     *float64 `json:"potassium_mg,omitempty"`
	SodiumMg        *float64 `json:"sodium_mg,omitempty"`
	ZincMg          *float64 `json:"zinc_mg,omitempty"`
	CopperMg        *float64 `json:"copper_mg,omitempty"`
	ManganeseMg     *float64 `json:"manganese_mg,omitempty"`
	SeleniumMcg     *float64 `json:"selenium_mcg,omitempty"`
	VitaminCMg      *float64 `json:"vitamin_c_mg,omitempty"`
	VitaminAMcg     *float64 `json:"vitamin_a_mcg,omitempty"`
}

func (s StandardNutrients) Value() (driver.Value, error) { return jsonbValue(s) }

func (s *StandardNutrients) Scan(value interface{}) error { return jsonbScan(s, value) }

// Field returns the value of a named standard nutrient.
func (s *StandardNutrients) Field(key string) (float64, bool) {
	ref := s.fieldRef(key)
	if ref == nil || *ref == nil {
		return 0, false
	}
	return **ref, true
}

func (s *StandardNutrients) fieldRef(key string) **float64 {
	switch key {
	case "calories":
		return &s.Calories
	case "protein_g":
		return &s.ProteinG
	case "carbohydrates_g":
		return &s.CarbohydratesG
	case "fat_g":
		return &s.FatG
	case "fiber_g":
		return &s.FiberG
	case "sugars_g":
		return &s.SugarsG
	case "sugars_added_g":
		return &s.SugarsAddedG
	case "calcium_mg":
		return &s.CalciumMg
	case "iron_mg":
		return &s.IronMg
	case "magnesium_mg":
		return &s.MagnesiumMg
	case "phosphorus_mg":
		return &s.PhosphorusMg
	case "potassium_mg":
		return &s.PotassiumMg
	case "sodium_mg":
		return &s.SodiumMg
	case "zinc_mg":
		return &s.ZincMg
	case "copper_mg":
		return &s.CopperMg
	case "manganese_mg":
		return &s.ManganeseMg
	case "selenium_mcg":
		return &s.SeleniumMcg
	case "vitamin_c_mg":
		return &s.VitaminCMg
	case "vitamin_a_mcg":
		return &s.VitaminAMcg
	}
	return nil
}

func (s *StandardNutrients) IsEmpty() bool {
	for _, key := range standardNutrientKeys {
		if ref := s.fieldRef(key); ref != nil && *ref != nil {
			return false
		}
	}
	return true
}

// FilledCount reports how many standard nutrient fields are populated.
func (s *StandardNutrients) FilledCount() int {
	n := 0
	for _, key := range standardNutrientKeys {
		if ref := s.fieldRef(key); ref != nil && *ref != nil {
			n++
		}
	}
	return n
}

var standardNutrientKeys = []string{
	"calories", "protein_g", "carbohydrates_g", "fat_g", "fiber_g",
	"sugars_g", "sugars_added_g", "calcium_mg", "iron_mg", "magnesium_mg",
	"phosphorus_mg", "potassium_mg", "sodium_mg", "zinc_mg", "copper_mg",
	"manganese_mg", "selenium_mcg", "vitamin_c_mg", "vitamin_a_mcg",
}

// Omega3 breaks omega-3 fatty acids into their component measurements.
type Omega3 struct {
	TotalG     *float64 `json:"total_g,omitempty"`
	EPAMg      *float64 `json:"epa_mg,omitempty"`
	DHAMg      *float64 `json:"dha_mg,omitempty"`
	ALAMg      *float64 `json:"ala_mg,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Omega3Components lists the measurable omega-3 sub-fields in merge order.
var Omega3Components = []string{"total_g", "epa_mg", "dha_mg", "ala_mg"}

func (o *Omega3) fieldRef(key string) **float64 {
	switch key {
	case "total_g":
		return &o.TotalG
	case "epa_mg":
		return &o.EPAMg
	case "dha_mg":
		return &o.DHAMg
	case "ala_mg":
		return &o.ALAMg
	}
	return nil
}

// Component returns the value of a named omega-3 sub-field.
func (o *Omega3) Component(key string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	ref := o.fieldRef(key)
	if ref == nil || *ref == nil {
		return 0, false
	}
	return **ref, true
}

// SetComponent assigns a named omega-3 sub-field.
func (o *Omega3) SetComponent(key string, v float64) {
	if ref := o.fieldRef(key); ref != nil {
		val := v
		*ref = &val
	}
}

// FilledCount reports how many omega-3 sub-fields are populated.
func (o *Omega3) FilledCount() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, key := range Omega3Components {
		if _, ok := o.Component(key); ok {
			n++
		}
	}
	return n
}

func (o *Omega3) IsEmpty() bool { return o.FilledCount() == 0 }

// BrainNutrients holds nutrients with documented relevance to mental
// health. Per-nutrient confidence ratings live in Confidences, keyed by
// the canonical field name.
type BrainNutrients struct {
	TryptophanMg  *float64 `json:"tryptophan_mg,omitempty"`
	TyrosineMg    *float64 `json:"tyrosine_mg,omitempty"`
	VitaminB6Mg   *float64 `json:"vitamin_b6_mg,omitempty"`
	FolateMcg     *float64 `json:"folate_mcg,omitempty"`
	VitaminB12Mcg *float64 `json:"vitamin_b12_mcg,omitempty"`
	VitaminDMcg   *float64 `json:"vitamin_d_mcg,omitempty"`
	MagnesiumMg   *float64 `json:"magnesium_mg,omitempty"`
	ZincMg        *float64 `json:"zinc_mg,omitempty"`
	IronMg        *float64 `json:"iron_mg,omitempty"`
	SeleniumMcg   *float64 `json:"selenium_mcg,omitempty"`
	CholineMg     *float64 `json:"choline_mg,omitempty"`
	Omega3        *Omega3  `json:"omega3,omitempty"`

	Confidences map[string]float64 `json:"confidence_ratings,omitempty"`
}

// BrainNutrientKeys lists the scalar brain-nutrient fields in canonical order.
var BrainNutrientKeys = []string{
	"tryptophan_mg", "tyrosine_mg", "vitamin_b6_mg", "folate_mcg",
	"vitamin_b12_mcg", "vitamin_d_mcg", "magnesium_mg", "zinc_mg",
	"iron_mg", "selenium_mcg", "choline_mg",
}

func (b BrainNutrients) Value() (driver.Value, error) { return jsonbValue(b) }

func (b *BrainNutrients) Scan(value interface{}) error { return jsonbScan(b, value) }

func (b *BrainNutrients) fieldRef(key string) **float64 {
	switch key {
	case "tryptophan_mg":
		return &b.TryptophanMg
	case "tyrosine_mg":
		return &b.TyrosineMg
	case "vitamin_b6_mg":
		return &b.VitaminB6Mg
	case "folate_mcg":
		return &b.FolateMcg
	case "vitamin_b12_mcg":
		return &b.VitaminB12Mcg
	case "vitamin_d_mcg":
		return &b.VitaminDMcg
	case "magnesium_mg":
		return &b.MagnesiumMg
	case "zinc_mg":
		return &b.ZincMg
	case "iron_mg":
		return &b.IronMg
	case "selenium_mcg":
		return &b.SeleniumMcg
	case "choline_mg":
		return &b.CholineMg
	}
	return nil
}

// Field returns a nutrient value by canonical key. Dotted keys of the
// form "omega3.<component>" address omega-3 sub-fields.
func (b *BrainNutrients) Field(key string) (float64, bool) {
	if component, ok := omega3Component(key); ok {
		return b.Omega3.Component(component)
	}
	ref := b.fieldRef(key)
	if ref == nil || *ref == nil {
		return 0, false
	}
	return **ref, true
}

// SetField assigns a nutrient value by canonical key, accepting the same
// dotted omega-3 keys as Field.
func (b *BrainNutrients) SetField(key string, v float64) {
	if component, ok := omega3Component(key); ok {
		if b.Omega3 == nil {
			b.Omega3 = &Omega3{}
		}
		b.Omega3.SetComponent(component, v)
		return
	}
	if ref := b.fieldRef(key); ref != nil {
		val := v
		*ref = &val
	}
}

// SetConfidence records a per-nutrient confidence rating.
func (b *BrainNutrients) SetConfidence(key string, rating float64) {
	if b.Confidences == nil {
		b.Confidences = make(map[string]float64)
	}
	b.Confidences[key] = rating
}

func (b *BrainNutrients) IsEmpty() bool {
	for _, key := range BrainNutrientKeys {
		if ref := b.fieldRef(key); ref != nil && *ref != nil {
			return false
		}
	}
	return b.Omega3.IsEmpty()
}

func omega3Component(key string) (string, bool) {
	const prefix = "omega3."
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):], true
	}
	return "", false
}

// BioactiveCompounds holds non-nutrient compounds with mental health
// relevance. Confidences follows the same convention as BrainNutrients.
type BioactiveCompounds struct {
	PolyphenolsMg   *float64 `json:"polyphenols_mg,omitempty"`
	FlavonoidsMg    *float64 `json:"flavonoids_mg,omitempty"`
	AnthocyaninsMg  *float64 `json:"anthocyanins_mg,omitempty"`
	CarotenoidsMg   *float64 `json:"carotenoids_mg,omitempty"`
	ProbioticsCFU   *float64 `json:"probiotics_cfu,omitempty"`
	PrebioticFiberG *float64 `json:"prebiotic_fiber_g,omitempty"`

	Confidences map[string]float64 `json:"confidence_ratings,omitempty"`
}

// BioactiveKeys lists the bioactive compound fields in canonical order.
var BioactiveKeys = []string{
	"polyphenols_mg", "flavonoids_mg", "anthocyanins_mg",
	"carotenoids_mg", "probiotics_cfu", "prebiotic_fiber_g",
}

func (b BioactiveCompounds) Value() (driver.Value, error) { return jsonbValue(b) }

func (b *BioactiveCompounds) Scan(value interface{}) error { return jsonbScan(b, value) }

func (b *BioactiveCompounds) fieldRef(key string) **float64 {
	switch key {
	case "polyphenols_mg":
		return &b.PolyphenolsMg
	case "flavonoids_mg":
		return &b.FlavonoidsMg
	case "anthocyanins_mg":
		return &b.AnthocyaninsMg
	case "carotenoids_mg":
		return &b.CarotenoidsMg
	case "probiotics_cfu":
		return &b.ProbioticsCFU
	case "prebiotic_fiber_g":
		return &b.PrebioticFiberG
	}
	return nil
}

func (b *BioactiveCompounds) IsEmpty() bool { return b.FilledCount() == 0 }

// FilledCount reports how many bioactive compound fields are populated.
func (b *BioactiveCompounds) FilledCount() int {
	n := 0
	for _, key := range BioactiveKeys {
		if ref := b.fieldRef(key); ref != nil && *ref != nil {
			n++
		}
	}
	return n
}

// ResearchSupport cites a study backing an impact or interaction.
type ResearchSupport struct {
	Citation string `json:"citation"`
	DOI      string `json:"doi,omitempty"`
	URL      string `json:"url,omitempty"`
	Year     int    `json:"study_year,omitempty"`
}

// MentalHealthImpact describes one documented effect of a food on mental
// health, keyed by impact type.
type MentalHealthImpact struct {
	ImpactType      string            `json:"impact_type"`
	Direction       string            `json:"direction"`
	Mechanism       string            `json:"mechanism,omitempty"`
	Strength        float64           `json:"strength"`
	Confidence      float64           `json:"confidence"`
	TimeToEffect    string            `json:"time_to_effect,omitempty"`
	ResearchContext string            `json:"research_context,omitempty"`
	ResearchSupport []ResearchSupport `json:"research_support,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

type ImpactList []MentalHealthImpact

func (l ImpactList) Value() (driver.Value, error) { return jsonbValue(l) }

func (l *ImpactList) Scan(value interface{}) error { return jsonbScan(l, value) }

// NutrientInteraction describes how nutrients modify each other's effects.
type NutrientInteraction struct {
	InteractionID         string            `json:"interaction_id"`
	NutrientsInvolved     []string          `json:"nutrients_involved"`
	InteractionType       string            `json:"interaction_type"`
	Mechanism             string            `json:"mechanism,omitempty"`
	Confidence            float64           `json:"confidence"`
	Pathway               string            `json:"pathway,omitempty"`
	MentalHealthRelevance string            `json:"mental_health_relevance,omitempty"`
	ResearchSupport       []ResearchSupport `json:"research_support,omitempty"`
	FoodsDemonstrating    []string          `json:"foods_demonstrating,omitempty"`
}

type InteractionList []NutrientInteraction

func (l InteractionList) Value() (driver.Value, error) { return jsonbValue(l) }

func (l *InteractionList) Scan(value interface{}) error { return jsonbScan(l, value) }

// NeuralTarget describes a neural pathway a food component acts on.
type NeuralTarget struct {
	Pathway               string   `json:"pathway"`
	Effect                string   `json:"effect"`
	Confidence            float64  `json:"confidence"`
	Mechanisms            []string `json:"mechanisms,omitempty"`
	MentalHealthRelevance string   `json:"mental_health_relevance,omitempty"`
}

type NeuralTargetList []NeuralTarget

func (l NeuralTargetList) Value() (driver.Value, error) { return jsonbValue(l) }

func (l *NeuralTargetList) Scan(value interface{}) error { return jsonbScan(l, value) }

// NutrientVariation describes how one nutrient's effect changes within a
// population.
type NutrientVariation struct {
	Nutrient        string   `json:"nutrient"`
	Effect          string   `json:"effect"`
	Confidence      float64  `json:"confidence"`
	Mechanism       string   `json:"mechanism,omitempty"`
	ImpactModifier  float64  `json:"impact_modifier,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Citations       []string `json:"citations,omitempty"`
}

// PopulationVariation groups nutrient variations for one population.
type PopulationVariation struct {
	Population  string              `json:"population"`
	Description string              `json:"description,omitempty"`
	Variations  []NutrientVariation `json:"variations,omitempty"`
}

type PopulationVariationList []PopulationVariation

func (l PopulationVariationList) Value() (driver.Value, error) { return jsonbValue(l) }

func (l *PopulationVariationList) Scan(value interface{}) error { return jsonbScan(l, value) }

// DietaryPattern records a food's role within a named dietary pattern.
type DietaryPattern struct {
	PatternName           string `json:"pattern_name"`
	PatternContribution   string `json:"pattern_contribution"`
	MentalHealthRelevance string `json:"mental_health_relevance,omitempty"`
}

type DietaryPatternList []DietaryPattern

func (l DietaryPatternList) Value() (driver.Value, error) { return jsonbValue(l) }

func (l *DietaryPatternList) Scan(value interface{}) error { return jsonbScan(l, value) }

// InflammatoryIndex scores a food's inflammatory potential. The score
// field is named Score in Go to leave Value free for driver.Valuer.
type InflammatoryIndex struct {
	Score             *float64 `json:"value,omitempty"`
	Confidence        float64  `json:"confidence,omitempty"`
	CalculationMethod string   `json:"calculation_method,omitempty"`
	Citations         []string `json:"citations,omitempty"`
}

func (i InflammatoryIndex) Value() (driver.Value, error) { return jsonbValue(i) }

func (i *InflammatoryIndex) Scan(value interface{}) error { return jsonbScan(i, value) }

func (i *InflammatoryIndex) IsEmpty() bool { return i.Score == nil }

// DataQuality tracks provenance and completeness of a record.
type DataQuality struct {
	Completeness         float64           `json:"completeness"`
	OverallConfidence    float64           `json:"overall_confidence"`
	BrainNutrientsSource string            `json:"brain_nutrients_source,omitempty"`
	ImpactsSource        string            `json:"impacts_source,omitempty"`
	SourcePriority       map[string]Source `json:"source_priority,omitempty"`
}

func (d DataQuality) Value() (driver.Value, error) { return jsonbValue(d) }

func (d *DataQuality) Scan(value interface{}) error { return jsonbScan(d, value) }

// Metadata carries record bookkeeping: version, timestamps, external ids
// and free-form tags.
type Metadata struct {
	Version     string            `json:"version,omitempty"`
	Created     time.Time         `json:"created,omitempty"`
	LastUpdated time.Time         `json:"last_updated,omitempty"`
	SourceURLs  []string          `json:"source_urls,omitempty"`
	SourceIDs   map[string]string `json:"source_ids,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

func (m Metadata) Value() (driver.Value, error) { return jsonbValue(m) }

func (m *Metadata) Scan(value interface{}) error { return jsonbScan(m, value) }

// HasTag reports whether the metadata carries the given tag.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present.
func (m *Metadata) AddTag(tag string) {
	if !m.HasTag(tag) {
		m.Tags = append(m.Tags, tag)
	}
}
