package crosswalk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrRuleNotFound is returned when a regex rule does not exist.
var ErrRuleNotFound = errors.New("regex rule not found")

// RuleTestResult is the outcome of running a regex rule against one value.
type RuleTestResult struct {
	Matches   bool     `json:"matches"`
	Groups    []string `json:"groups"`
	FullMatch string   `json:"full_match"`
}

// compilePattern compiles a rule pattern, translating the stored single
// letter flags (i, m, s) into an inline flag group.
func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// TryPattern runs a pattern against a single value. The pattern matches
// anywhere in the value, not only at the start.
func TryPattern(pattern, value, flags string) (RuleTestResult, error) {
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return RuleTestResult{}, fmt.Errorf("invalid pattern: %w", err)
	}

	match := re.FindStringSubmatch(value)
	if match == nil {
		return RuleTestResult{Matches: false, Groups: []string{}}, nil
	}
	return RuleTestResult{
		Matches:   true,
		Groups:    match[1:],
		FullMatch: match[0],
	}, nil
}

// ValidationSummary aggregates mapping coverage and regex rule results
// for one profile.
type ValidationSummary struct {
	TotalColumns      int     `json:"total_columns"`
	MappedColumns     int     `json:"mapped_columns"`
	UnmappedColumns   int     `json:"unmapped_columns"`
	MappingPercentage float64 `json:"mapping_percentage"`
	RegexPassCount    int     `json:"regex_pass_count"`
	RegexFailCount    int     `json:"regex_fail_count"`
}

// ColumnSamples pairs a source column id with its decoded sample values.
type ColumnSamples struct {
	ID      int
	Samples []string
}

// buildValidationSummary computes the summary from in-memory inputs. A
// column counts as mapped when any of its mappings names a model column
// or a custom field. Rules that fail to compile count every sample of
// their column as a failure.
func buildValidationSummary(columns []ColumnSamples, mappings []Mapping, rules map[int][]RegexRule) ValidationSummary {
	byColumn := make(map[int][]Mapping, len(mappings))
	for _, m := range mappings {
		byColumn[m.SourceColumnID] = append(byColumn[m.SourceColumnID], m)
	}

	summary := ValidationSummary{TotalColumns: len(columns)}
	for _, col := range columns {
		for _, m := range byColumn[col.ID] {
			if m.ModelColumn != "" || m.CustomFieldName != "" {
				summary.MappedColumns++
				break
			}
		}

		for _, rule := range rules[col.ID] {
			re, err := compilePattern(rule.Pattern, rule.Flags)
			if err != nil {
				summary.RegexFailCount += len(col.Samples)
				continue
			}
			for _, sample := range col.Samples {
				if re.MatchString(sample) {
					summary.RegexPassCount++
				} else {
					summary.RegexFailCount++
				}
			}
		}
	}

	summary.UnmappedColumns = summary.TotalColumns - summary.MappedColumns
	if summary.TotalColumns > 0 {
		pct := float64(summary.MappedColumns) / float64(summary.TotalColumns) * 100
		summary.MappingPercentage = math.Round(pct*10) / 10
	}
	return summary
}

func decodeSamples(encoded string) []string {
	var samples []string
	if err := json.Unmarshal([]byte(encoded), &samples); err != nil {
		return nil
	}
	return samples
}

// DeleteRule removes a regex rule by id.
func (repo *MappingRepository) DeleteRule(ctx context.Context, ruleID int) error {
	result, err := repo.db.ExecContext(ctx, `DELETE FROM regex_rules WHERE id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete regex rule %d: %w", ruleID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrRuleNotFound
	}

	repo.log.Info().Int("rule_id", ruleID).Msg("Deleted regex rule")
	return nil
}

// ValidationSummary loads a profile's columns, mappings and rules and
// aggregates them into a coverage summary.
func (repo *MappingRepository) ValidationSummary(ctx context.Context, profileID int) (ValidationSummary, error) {
	var raw []struct {
		ID           int    `db:"id"`
		SampleValues string `db:"sample_values"`
	}
	query := `
		SELECT id, sample_values
		FROM source_columns
		WHERE profile_id = $1
		ORDER BY id`
	if err := repo.db.SelectContext(ctx, &raw, query, profileID); err != nil {
		return ValidationSummary{}, fmt.Errorf("failed to load source columns: %w", err)
	}

	columns := make([]ColumnSamples, 0, len(raw))
	rules := make(map[int][]RegexRule, len(raw))
	for _, col := range raw {
		samples := decodeSamples(col.SampleValues)
		columns = append(columns, ColumnSamples{ID: col.ID, Samples: samples})

		colRules, err := repo.RulesBySourceColumn(ctx, col.ID)
		if err != nil {
			return ValidationSummary{}, err
		}
		if len(colRules) > 0 {
			rules[col.ID] = colRules
		}
	}

	mappings, err := repo.ListByProfile(ctx, profileID)
	if err != nil {
		return ValidationSummary{}, err
	}

	return buildValidationSummary(columns, mappings, rules), nil
}
