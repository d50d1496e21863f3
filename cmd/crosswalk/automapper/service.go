package automapper

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

// Fixed weights of the confidence blend.
const (
	weightName     = 0.4
	weightSemantic = 0.2
	weightPattern  = 0.2
	weightLearning = 0.2

	// confidenceFloor drops candidates with no meaningful signal.
	confidenceFloor = 0.1
	// maxSuggestions caps the ranking returned per source column.
	maxSuggestions = 5

	exactCorrectionBoost   = 0.3
	similarCorrectionBoost = 0.1
	maxLearningBoost       = 0.5
	similarSourceThreshold = 80
)

var nameSeparators = regexp.MustCompile(`[_\s-]+`)

// FieldSource provides the target dictionary.
type FieldSource interface {
	AllFields() []datamodel.Field
}

// CorrectionSource provides and records correction history.
type CorrectionSource interface {
	All() []Correction
	Record(ctx context.Context, correction Correction) error
}

// Service is the AutoMapper suggestion engine. Scoring is a pure read over
// the cached dictionary and correction history; only RecordCorrection writes.
type Service struct {
	fields      FieldSource
	corrections CorrectionSource
	cache       *SuggestionCache
	log         zerolog.Logger
}

// NewService creates a new AutoMapper service. The cache is optional.
func NewService(fields FieldSource, corrections CorrectionSource, cache *SuggestionCache, log zerolog.Logger) *Service {
	return &Service{
		fields:      fields,
		corrections: corrections,
		cache:       cache,
		log:         log.With().Str("component", "automapper").Logger(),
	}
}

// Suggest generates the ranked mapping suggestions for a single source column.
func (svc *Service) Suggest(ctx context.Context, sourceColumn string, sampleValues []string) []Suggestion {
	if svc.cache != nil {
		if cached, found := svc.cache.Get(ctx, sourceColumn, sampleValues); found {
			svc.log.Debug().Str("source_column", sourceColumn).Msg("Serving suggestions from cache")
			return cached
		}
	}

	patternScores := analyzeDataPatterns(sampleValues)
	history := svc.corrections.All()

	var suggestions []Suggestion
	for _, field := range svc.fields.AllFields() {
		nameSimilarity := nameSimilarity(sourceColumn, field.ColumnName)
		semanticSimilarity := tfidfCosine(sourceColumn, field.Description)
		learningBoost := learningBoost(sourceColumn, field, history)
		patternBoost := patternBoost(patternScores, field.ColumnName)

		confidence := weightName*nameSimilarity +
			weightSemantic*semanticSimilarity +
			weightPattern*patternBoost +
			weightLearning*learningBoost

		if confidence <= confidenceFloor {
			continue
		}

		suggestions = append(suggestions, Suggestion{
			SourceColumn: sourceColumn,
			TargetColumn: field.ColumnName,
			TargetTable:  field.TableName,
			Confidence:   confidence,
			Reasoning:    buildReasoning(nameSimilarity, semanticSimilarity, patternBoost, learningBoost, patternScores),
			DataType:     field.DataType,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	svc.log.Debug().
		Str("source_column", sourceColumn).
		Int("suggestions", len(suggestions)).
		Msg("Generated mapping suggestions")

	if svc.cache != nil {
		svc.cache.Store(ctx, sourceColumn, sampleValues, suggestions)
	}
	return suggestions
}

// BulkSuggest generates suggestions for multiple source columns.
func (svc *Service) BulkSuggest(ctx context.Context, columns []SourceColumnInput) map[string][]Suggestion {
	results := make(map[string][]Suggestion, len(columns))
	for _, col := range columns {
		if col.ColumnName == "" {
			continue
		}
		results[col.ColumnName] = svc.Suggest(ctx, col.ColumnName, col.SampleValues)
	}
	return results
}

// RecordCorrection persists user feedback so subsequent scoring runs see it.
func (svc *Service) RecordCorrection(ctx context.Context, correction Correction) error {
	if err := svc.corrections.Record(ctx, correction); err != nil {
		return err
	}
	if svc.cache != nil {
		svc.cache.Invalidate(ctx)
	}
	return nil
}

// Stats summarizes the engine state.
func (svc *Service) Stats() Stats {
	return Stats{
		DataModelFields:    len(svc.fields.AllFields()),
		CorrectionsLearned: len(svc.corrections.All()),
		PatternTypes:       len(patternLibrary),
		Status:             "ready",
	}
}

// nameSimilarity blends ratio, partial ratio and token sort ratio over
// normalized column names.
func nameSimilarity(sourceCol, targetCol string) float64 {
	sourceNorm := nameSeparators.ReplaceAllString(strings.ToLower(sourceCol), "")
	targetNorm := nameSeparators.ReplaceAllString(strings.ToLower(targetCol), "")
	if sourceNorm == "" || targetNorm == "" {
		return 0
	}

	ratio := float64(fuzzy.Ratio(sourceNorm, targetNorm)) / 100.0
	partial := float64(fuzzy.PartialRatio(sourceNorm, targetNorm)) / 100.0
	tokenSort := float64(fuzzy.TokenSortRatio(strings.ToLower(sourceCol), strings.ToLower(targetCol))) / 100.0

	return 0.4*ratio + 0.3*partial + 0.3*tokenSort
}

// learningBoost applies fixed increments for exact and near-duplicate past
// corrections to the same target, capped at maxLearningBoost.
func learningBoost(sourceCol string, field datamodel.Field, history []Correction) float64 {
	boost := 0.0
	sourceLower := strings.ToLower(sourceCol)

	for _, c := range history {
		if c.CorrectTargetTable != field.TableName || c.CorrectTargetColumn != field.ColumnName {
			continue
		}
		correctedLower := strings.ToLower(c.SourceColumn)
		if correctedLower == sourceLower {
			boost += exactCorrectionBoost
		}
		if fuzzy.Ratio(correctedLower, sourceLower) > similarSourceThreshold {
			boost += similarCorrectionBoost
		}
	}

	if boost > maxLearningBoost {
		return maxLearningBoost
	}
	return boost
}

// patternBoost sums the contribution of every matching pattern category.
func patternBoost(patternScores map[string]float64, columnName string) float64 {
	boost := 0.0
	for category, score := range patternScores {
		if categoryMatchesColumn(category, columnName) {
			boost += score * 0.2
		}
	}
	return boost
}

// buildReasoning produces the human-readable explanation of which signals
// contributed to a suggestion.
func buildReasoning(name, semantic, pattern, learning float64, patternScores map[string]float64) string {
	var parts []string

	if name > 0.6 {
		parts = append(parts, fmt.Sprintf("Column name match (%.0f%%)", name*100))
	}
	if pattern > 0.1 {
		if best := bestPattern(patternScores); best != "" {
			parts = append(parts, fmt.Sprintf("Data pattern suggests %s", best))
		}
	}
	if learning > 0.1 {
		parts = append(parts, "Previously learned mapping")
	}
	if semantic > 0.3 {
		parts = append(parts, "Description similarity")
	}

	if len(parts) == 0 {
		return "Basic similarity match"
	}
	return strings.Join(parts, " • ")
}

func bestPattern(patternScores map[string]float64) string {
	best := ""
	bestScore := -1.0
	for category, score := range patternScores {
		if score > bestScore || (score == bestScore && category < best) {
			best = category
			bestScore = score
		}
	}
	return best
}
