package automapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDataPatterns(t *testing.T) {
	t.Parallel()

	t.Run("iso dates score the date category", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"2024-01-15", "2024-02-20", "2024-03-01"})
		assert.Equal(t, 1.0, scores["date"])
		assert.Zero(t, scores["phone"])
	})

	t.Run("partial matches score fractionally", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"2024-01-15", "not a date"})
		assert.Equal(t, 0.5, scores["date"])
	})

	t.Run("ten digit values hit phone and npi", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"5551234567"})
		assert.Equal(t, 1.0, scores["phone"])
		assert.Equal(t, 1.0, scores["npi"])
	})

	t.Run("currency amounts", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"125.50", "$1,200.00"})
		assert.Equal(t, 1.0, scores["amount"])
	})

	t.Run("zip codes with and without plus four", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"60601", "60601-1234"})
		assert.Equal(t, 1.0, scores["zip_code"])
	})

	t.Run("blank values dilute the fraction", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"  ", "2024-01-15"})
		assert.Equal(t, 0.5, scores["date"])
	})

	t.Run("all-blank samples score zero everywhere", func(t *testing.T) {
		t.Parallel()
		scores := analyzeDataPatterns([]string{"", "   "})
		require.NotEmpty(t, scores)
		for category, score := range scores {
			assert.Zero(t, score, "category %s", category)
		}
	})

	t.Run("empty input yields empty scores", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, analyzeDataPatterns(nil))
	})

	t.Run("only the first ten samples are classified", func(t *testing.T) {
		t.Parallel()
		samples := make([]string, 0, 12)
		for i := 0; i < 10; i++ {
			samples = append(samples, "2024-01-15")
		}
		samples = append(samples, "not a date", "also not")
		scores := analyzeDataPatterns(samples)
		assert.Equal(t, 1.0, scores["date"])
	})
}

func TestCategoryMatchesColumn(t *testing.T) {
	t.Parallel()

	assert.True(t, categoryMatchesColumn("zip_code", "patient_zip_code"))
	assert.True(t, categoryMatchesColumn("zip_code", "billing_zip"))
	assert.True(t, categoryMatchesColumn("claim_number", "claim_id"))
	assert.True(t, categoryMatchesColumn("date", "service_date"))
	assert.False(t, categoryMatchesColumn("phone", "member_id"))
}
