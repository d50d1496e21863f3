package crosswalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryPattern(t *testing.T) {
	t.Parallel()

	t.Run("matching value returns groups and the full match", func(t *testing.T) {
		t.Parallel()
		result, err := TryPattern(`(\d{3})-(\d{4})`, "call 555-1234 now", "")
		require.NoError(t, err)
		assert.True(t, result.Matches)
		assert.Equal(t, "555-1234", result.FullMatch)
		assert.Equal(t, []string{"555", "1234"}, result.Groups)
	})

	t.Run("non-matching value reports empty groups", func(t *testing.T) {
		t.Parallel()
		result, err := TryPattern(`^\d+$`, "abc", "")
		require.NoError(t, err)
		assert.False(t, result.Matches)
		assert.Empty(t, result.Groups)
		assert.Empty(t, result.FullMatch)
	})

	t.Run("i flag makes the match case insensitive", func(t *testing.T) {
		t.Parallel()
		result, err := TryPattern(`^active$`, "ACTIVE", "i")
		require.NoError(t, err)
		assert.True(t, result.Matches)

		result, err = TryPattern(`^active$`, "ACTIVE", "")
		require.NoError(t, err)
		assert.False(t, result.Matches)
	})

	t.Run("s flag lets dot cross newlines", func(t *testing.T) {
		t.Parallel()
		result, err := TryPattern(`a.b`, "a\nb", "s")
		require.NoError(t, err)
		assert.True(t, result.Matches)
	})

	t.Run("invalid pattern returns an error", func(t *testing.T) {
		t.Parallel()
		_, err := TryPattern(`[unclosed`, "value", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("unknown flag letters are ignored", func(t *testing.T) {
		t.Parallel()
		result, err := TryPattern(`\d+`, "42", "ix")
		require.NoError(t, err)
		assert.True(t, result.Matches)
	})
}

func TestBuildValidationSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts mapped and unmapped columns", func(t *testing.T) {
		t.Parallel()
		columns := []ColumnSamples{{ID: 1}, {ID: 2}, {ID: 3}}
		mappings := []Mapping{
			{SourceColumnID: 1, ModelColumn: "member_id"},
			{SourceColumnID: 2},
			{SourceColumnID: 3, IsCustomField: true, CustomFieldName: "legacy_code"},
		}

		summary := buildValidationSummary(columns, mappings, nil)
		assert.Equal(t, 3, summary.TotalColumns)
		assert.Equal(t, 2, summary.MappedColumns)
		assert.Equal(t, 1, summary.UnmappedColumns)
	})

	t.Run("mapping percentage rounds to one decimal", func(t *testing.T) {
		t.Parallel()
		columns := []ColumnSamples{{ID: 1}, {ID: 2}, {ID: 3}}
		mappings := []Mapping{{SourceColumnID: 1, ModelColumn: "member_id"}}

		summary := buildValidationSummary(columns, mappings, nil)
		assert.InDelta(t, 33.3, summary.MappingPercentage, 0.0001)
	})

	t.Run("rules run against every sample", func(t *testing.T) {
		t.Parallel()
		columns := []ColumnSamples{{ID: 1, Samples: []string{"12345", "9021", "abcde"}}}
		rules := map[int][]RegexRule{
			1: {{Pattern: `^\d{5}$`}},
		}

		summary := buildValidationSummary(columns, nil, rules)
		assert.Equal(t, 1, summary.RegexPassCount)
		assert.Equal(t, 2, summary.RegexFailCount)
	})

	t.Run("uncompilable rule fails all samples of its column", func(t *testing.T) {
		t.Parallel()
		columns := []ColumnSamples{{ID: 1, Samples: []string{"a", "b", "c"}}}
		rules := map[int][]RegexRule{
			1: {{Pattern: `[broken`}},
		}

		summary := buildValidationSummary(columns, nil, rules)
		assert.Equal(t, 0, summary.RegexPassCount)
		assert.Equal(t, 3, summary.RegexFailCount)
	})

	t.Run("empty profile yields a zero summary", func(t *testing.T) {
		t.Parallel()
		summary := buildValidationSummary(nil, nil, nil)
		assert.Equal(t, 0, summary.TotalColumns)
		assert.Equal(t, float64(0), summary.MappingPercentage)
	})
}
