package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mindplate/backend/internal/model"
)

// FusionService merges food records from multiple sources into one
// canonical record per food, following the merge policy's priority and
// confidence rules.
type FusionService struct {
	db     *gorm.DB
	policy MergePolicy
}

func NewFusionService(db *gorm.DB, policy MergePolicy) *FusionService {
	return &FusionService{db: db, policy: policy}
}

// GroupCandidates clusters records that describe the same food:
// normalized names must be equal or one must contain the other, and no
// pair in a cluster may disagree on a core macronutrient by more than
// the conflict tolerance.
func (s *FusionService) GroupCandidates(foods []model.Food) [][]model.Food {
	sorted := make([]model.Food, len(foods))
	copy(sorted, foods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FoodID < sorted[j].FoodID })

	var groups [][]model.Food
	assigned := make([]bool, len(sorted))

	for i := range sorted {
		if assigned[i] {
			continue
		}
		group := []model.Food{sorted[i]}
		assigned[i] = true

		for j := i + 1; j < len(sorted); j++ {
			if assigned[j] {
				continue
			}
			if !namesMatch(sorted[i].NormalizedName, sorted[j].NormalizedName) {
				continue
			}
			conflict := false
			for k := range group {
				if s.macroConflict(&group[k], &sorted[j]) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}
			group = append(group, sorted[j])
			assigned[j] = true
		}

		groups = append(groups, group)
	}

	return groups
}

func namesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

var coreMacronutrients = []string{"calories", "protein_g", "carbohydrates_g", "fat_g"}

// macroConflict reports whether two records disagree on any core
// macronutrient by more than the tolerance, using |a-b|/max(a,b).
func (s *FusionService) macroConflict(a, b *model.Food) bool {
	for _, key := range coreMacronutrients {
		av, aok := a.StandardNutrients.Field(key)
		bv, bok := b.StandardNutrients.Field(key)
		if !aok || !bok {
			continue
		}
		max := math.Max(math.Abs(av), math.Abs(bv))
		if max == 0 {
			continue
		}
		if math.Abs(av-bv)/max > s.policy.ConflictTolerance {
			return true
		}
	}
	return false
}

// Merge combines a cluster of records into one canonical record. A
// single-entry cluster is returned unchanged. The output is
// deterministic: entries are walked in food ID order and set unions are
// sorted.
func (s *FusionService) Merge(entries []model.Food) (*model.Food, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to merge")
	}
	if len(entries) == 1 {
		merged := entries[0]
		return &merged, nil
	}

	sorted := make([]model.Food, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FoodID < sorted[j].FoodID })

	// The most complete entry is the base; ties fall to food ID order.
	base := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].DataQuality.Completeness > sorted[base].DataQuality.Completeness {
			base = i
		}
	}

	merged := sorted[base]
	merged.ID = uuid.Nil
	merged.FoodID = "merged_" + strings.ReplaceAll(merged.NormalizedName, " ", "_")

	// The base contributes identity and serving info only. Every section
	// must re-qualify through the adoption walk; a base section with no
	// qualifying source stays empty.
	merged.StandardNutrients = model.StandardNutrients{}
	merged.BrainNutrients = model.BrainNutrients{}
	merged.BioactiveCompounds = model.BioactiveCompounds{}
	merged.InflammatoryIndex = model.InflammatoryIndex{}

	sourcePriority := make(map[string]model.Source)

	s.mergeStandardNutrients(&merged, sorted, sourcePriority)
	s.mergeBrainNutrients(&merged, sorted, sourcePriority)
	s.mergeBioactiveCompounds(&merged, sorted, sourcePriority)
	s.mergeMentalHealthImpacts(&merged, sorted, sourcePriority)
	s.mergeNutrientInteractions(&merged, sorted)
	s.mergeNeuralTargets(&merged, sorted)
	s.mergePopulationVariations(&merged, sorted)
	s.mergeDietaryPatterns(&merged, sorted)
	s.mergeInflammatoryIndex(&merged, sorted)
	s.mergeMetadata(&merged, sorted)

	merged.DataQuality.SourcePriority = sourcePriority
	merged.DataQuality.Completeness = merged.ComputeCompleteness()

	return &merged, nil
}

// adoptSection walks the priority order and returns the first entry
// whose section qualifies: non-empty (per the caller's check) and at or
// above the source's confidence threshold. Among entries of the same
// source, the one reporting the most fields wins.
func (s *FusionService) adoptSection(
	section string,
	entries []model.Food,
	nonEmpty func(*model.Food) bool,
	filled func(*model.Food) int,
) (*model.Food, model.Source) {
	for _, source := range s.policy.Priority(section) {
		var best *model.Food
		for i := range entries {
			entry := &entries[i]
			if entry.Source() != source || !nonEmpty(entry) {
				continue
			}
			if entry.SectionConfidence(section) < s.policy.Threshold(source) {
				continue
			}
			if best == nil || filled(entry) > filled(best) {
				best = entry
			}
		}
		if best != nil {
			return best, source
		}
	}
	return nil, model.SourceUnknown
}

func (s *FusionService) mergeStandardNutrients(merged *model.Food, entries []model.Food, sourcePriority map[string]model.Source) {
	winner, source := s.adoptSection("standard_nutrients", entries,
		func(f *model.Food) bool { return !f.StandardNutrients.IsEmpty() },
		func(f *model.Food) int { return f.StandardNutrients.FilledCount() },
	)
	if winner != nil {
		merged.StandardNutrients = winner.StandardNutrients
		sourcePriority["standard_nutrients"] = source
	}
}

func (s *FusionService) mergeBrainNutrients(merged *model.Food, entries []model.Food, sourcePriority map[string]model.Source) {
	winner, source := s.adoptSection("brain_nutrients", entries,
		func(f *model.Food) bool { return !f.BrainNutrients.IsEmpty() },
		func(f *model.Food) int {
			n := 0
			for _, key := range model.BrainNutrientKeys {
				if _, ok := f.BrainNutrients.Field(key); ok {
					n++
				}
			}
			return n
		},
	)
	if winner != nil {
		merged.BrainNutrients = winner.BrainNutrients
		sourcePriority["brain_nutrients"] = source
	}

	// Omega-3 merges at sub-field granularity across all entries.
	s.mergeOmega3(merged, entries)
}

// mergeOmega3 fills each omega-3 sub-field from the highest priority
// qualifying source that reports it. The merged confidence is
// 5 + min(5, filled sub-fields) when anything was filled.
func (s *FusionService) mergeOmega3(merged *model.Food, entries []model.Food) {
	result := &model.Omega3{}

	for _, component := range model.Omega3Components {
		for _, source := range s.policy.Omega3Priority {
			found := false
			for i := range entries {
				entry := &entries[i]
				if entry.Source() != source {
					continue
				}
				value, ok := entry.BrainNutrients.Omega3.Component(component)
				if !ok {
					continue
				}
				if entry.SectionConfidence("brain_nutrients") < s.policy.Threshold(source) {
					continue
				}
				result.SetComponent(component, value)
				found = true
				break
			}
			if found {
				break
			}
		}
	}

	if filled := result.FilledCount(); filled > 0 {
		confidence := 5 + math.Min(5, float64(filled))
		result.Confidence = &confidence
		merged.BrainNutrients.Omega3 = result
	}
}

func (s *FusionService) mergeBioactiveCompounds(merged *model.Food, entries []model.Food, sourcePriority map[string]model.Source) {
	winner, source := s.adoptSection("bioactive_compounds", entries,
		func(f *model.Food) bool { return !f.BioactiveCompounds.IsEmpty() },
		func(f *model.Food) int { return f.BioactiveCompounds.FilledCount() },
	)
	if winner != nil {
		merged.BioactiveCompounds = winner.BioactiveCompounds
		sourcePriority["bioactive_compounds"] = source
	}
}

// mergeMentalHealthImpacts unions impacts in priority order, keeping the
// first entry seen for each impact type and dropping entries below their
// source's confidence threshold.
func (s *FusionService) mergeMentalHealthImpacts(merged *model.Food, entries []model.Food, sourcePriority map[string]model.Source) {
	var result model.ImpactList
	seen := make(map[string]bool)
	var sourceUsed model.Source

	for _, source := range s.policy.Priority("mental_health_impacts") {
		for i := range entries {
			entry := &entries[i]
			if entry.Source() != source {
				continue
			}
			for _, impact := range entry.MentalHealthImpacts {
				if impact.ImpactType == "" || seen[impact.ImpactType] {
					continue
				}
				if impact.Confidence < s.policy.Threshold(source) {
					continue
				}
				result = append(result, impact)
				seen[impact.ImpactType] = true
				if sourceUsed == "" {
					sourceUsed = source
				}
			}
		}
	}

	merged.MentalHealthImpacts = result
	if sourceUsed != "" {
		sourcePriority["mental_health_impacts"] = sourceUsed
	}
}

func (s *FusionService) mergeNutrientInteractions(merged *model.Food, entries []model.Food) {
	var result model.InteractionList
	seen := make(map[string]bool)

	for _, source := range s.policy.Priority("nutrient_interactions") {
		for i := range entries {
			entry := &entries[i]
			if entry.Source() != source {
				continue
			}
			for _, interaction := range entry.NutrientInteractions {
				if interaction.InteractionID == "" || seen[interaction.InteractionID] {
					continue
				}
				if interaction.Confidence < s.policy.Threshold(source) {
					continue
				}
				result = append(result, interaction)
				seen[interaction.InteractionID] = true
			}
		}
	}

	merged.NutrientInteractions = result
}

func (s *FusionService) mergeNeuralTargets(merged *model.Food, entries []model.Food) {
	var result model.NeuralTargetList
	seen := make(map[string]bool)

	for i := range entries {
		entry := &entries[i]
		source := entry.Source()
		for _, target := range entry.NeuralTargets {
			if target.Pathway == "" || seen[target.Pathway] {
				continue
			}
			if target.Confidence < s.policy.Threshold(source) {
				continue
			}
			result = append(result, target)
			seen[target.Pathway] = true
		}
	}

	merged.NeuralTargets = result
}

// Population variations and dietary patterns carry no per-entry
// confidence, so they union with de-duplication only.
func (s *FusionService) mergePopulationVariations(merged *model.Food, entries []model.Food) {
	var result model.PopulationVariationList
	seen := make(map[string]bool)

	for i := range entries {
		for _, variation := range entries[i].PopulationVariations {
			if variation.Population == "" || seen[variation.Population] {
				continue
			}
			result = append(result, variation)
			seen[variation.Population] = true
		}
	}

	merged.PopulationVariations = result
}

func (s *FusionService) mergeDietaryPatterns(merged *model.Food, entries []model.Food) {
	var result model.DietaryPatternList
	seen := make(map[string]bool)

	for i := range entries {
		for _, pattern := range entries[i].DietaryPatterns {
			if pattern.PatternName == "" || seen[pattern.PatternName] {
				continue
			}
			result = append(result, pattern)
			seen[pattern.PatternName] = true
		}
	}

	merged.DietaryPatterns = result
}

func (s *FusionService) mergeInflammatoryIndex(merged *model.Food, entries []model.Food) {
	for _, source := range s.policy.Priority("inflammatory_index") {
		for i := range entries {
			entry := &entries[i]
			if entry.Source() != source || entry.InflammatoryIndex.IsEmpty() {
				continue
			}
			if entry.InflammatoryIndex.Confidence < s.policy.Threshold(source) {
				continue
			}
			merged.InflammatoryIndex = entry.InflammatoryIndex
			return
		}
	}
}

// mergeMetadata unions source URLs, source IDs and tags across all
// entries, sorting the sets for deterministic output.
func (s *FusionService) mergeMetadata(merged *model.Food, entries []model.Food) {
	urls := make(map[string]bool)
	tags := make(map[string]bool)
	sourceIDs := make(map[string]string)

	for _, u := range merged.Meta.SourceURLs {
		urls[u] = true
	}
	for _, t := range merged.Meta.Tags {
		tags[t] = true
	}
	for k, v := range merged.Meta.SourceIDs {
		sourceIDs[k] = v
	}

	for i := range entries {
		meta := &entries[i].Meta
		for _, u := range meta.SourceURLs {
			urls[u] = true
		}
		for _, t := range meta.Tags {
			tags[t] = true
		}
		for k, v := range meta.SourceIDs {
			sourceIDs[k] = v
		}
		if merged.Meta.ImageURL == "" && meta.ImageURL != "" {
			merged.Meta.ImageURL = meta.ImageURL
		}
	}

	merged.Meta.SourceURLs = sortedKeys(urls)
	merged.Meta.Tags = sortedKeys(tags)
	merged.Meta.SourceIDs = sourceIDs
	merged.Meta.LastUpdated = time.Now().UTC()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeStats summarizes a merge pass over the dataset.
type MergeStats struct {
	GroupsProcessed int `json:"groups_processed"`
	RecordsMerged   int `json:"records_merged"`
	Failed          int `json:"failed"`
}

// MergeByName merges the group of records sharing one normalized name
// and persists the canonical result.
func (s *FusionService) MergeByName(ctx context.Context, name string) (*model.Food, error) {
	normalized := model.NormalizeName(name)

	var foods []model.Food
	err := s.db.WithContext(ctx).
		Where("normalized_name = ? AND food_id NOT LIKE ?", normalized, "merged_%").
		Order("food_id").
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load foods named %q: %w", normalized, err)
	}
	if len(foods) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	merged, err := s.Merge(foods)
	if err != nil {
		return nil, err
	}

	if err := s.saveCanonical(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// MergeAll walks the whole dataset in batches, groups candidates and
// persists one canonical record per group. Names that could cluster by
// containment are kept in the same batch. Group failures are counted
// and do not abort the pass.
func (s *FusionService) MergeAll(ctx context.Context) (*MergeStats, error) {
	stats := &MergeStats{}

	var names []string
	err := s.db.WithContext(ctx).
		Model(&model.Food{}).
		Where("food_id NOT LIKE ?", "merged_%").
		Distinct("normalized_name").
		Order("normalized_name").
		Pluck("normalized_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list food names: %w", err)
	}

	var batch []string
	for _, cluster := range clusterNames(names) {
		if len(batch) > 0 && len(batch)+len(cluster) > s.policy.BatchSize {
			if err := s.mergeNameBatch(ctx, batch, stats); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
		batch = append(batch, cluster...)
	}
	if len(batch) > 0 {
		if err := s.mergeNameBatch(ctx, batch, stats); err != nil {
			return nil, err
		}
	}

	log.Printf("merge pass complete: %d groups, %d records merged, %d failed",
		stats.GroupsProcessed, stats.RecordsMerged, stats.Failed)
	return stats, nil
}

// clusterNames groups normalized names under the same
// equality-or-containment rule GroupCandidates uses, so a containment
// pair never splits across batches. A cluster larger than the batch
// size becomes its own oversized batch.
func clusterNames(names []string) [][]string {
	var clusters [][]string
	assigned := make([]bool, len(names))

	for i := range names {
		if assigned[i] {
			continue
		}
		cluster := []string{names[i]}
		assigned[i] = true

		for j := i + 1; j < len(names); j++ {
			if assigned[j] {
				continue
			}
			for _, member := range cluster {
				if namesMatch(member, names[j]) {
					cluster = append(cluster, names[j])
					assigned[j] = true
					break
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

func (s *FusionService) mergeNameBatch(ctx context.Context, names []string, stats *MergeStats) error {
	var foods []model.Food
	err := s.db.WithContext(ctx).
		Where("normalized_name IN ? AND food_id NOT LIKE ?", names, "merged_%").
		Order("food_id").
		Find(&foods).Error
	if err != nil {
		return fmt.Errorf("failed to load merge batch: %w", err)
	}

	for _, group := range s.GroupCandidates(foods) {
		stats.GroupsProcessed++
		if len(group) < 2 {
			continue
		}

		merged, err := s.Merge(group)
		if err != nil {
			log.Printf("merge failed for %q: %v", group[0].NormalizedName, err)
			stats.Failed++
			continue
		}
		if err := s.saveCanonical(ctx, merged); err != nil {
			log.Printf("failed to save merged record %s: %v", merged.FoodID, err)
			stats.Failed++
			continue
		}
		stats.RecordsMerged += len(group)
	}

	return nil
}

// saveCanonical upserts the merged record by food_id. Losing inputs are
// kept; the merged record supersedes without deleting.
func (s *FusionService) saveCanonical(ctx context.Context, merged *model.Food) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}},
			UpdateAll: true,
		}).
		Create(merged).Error
}
