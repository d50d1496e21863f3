package automapper

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

type staticFields struct {
	fields []datamodel.Field
}

func (s staticFields) AllFields() []datamodel.Field { return s.fields }

type memoryCorrections struct {
	corrections []Correction
}

func (m *memoryCorrections) All() []Correction { return m.corrections }

func (m *memoryCorrections) Record(ctx context.Context, c Correction) error {
	m.corrections = append(m.corrections, c)
	return nil
}

func testFields() []datamodel.Field {
	return []datamodel.Field{
		{SchemaLayer: "claims", TableName: "claims", ColumnName: "claim_number", DataType: "VARCHAR", Description: "Unique identifier for the claim"},
		{SchemaLayer: "claims", TableName: "claims", ColumnName: "member_id", DataType: "VARCHAR", Description: "Identifier of the enrolled member"},
		{SchemaLayer: "claims", TableName: "claims", ColumnName: "paid_amount", DataType: "NUMBER", Description: "Amount paid for the claim line"},
		{SchemaLayer: "claims", TableName: "claims", ColumnName: "service_date", DataType: "DATE", Description: "Date the service was rendered"},
	}
}

func newTestService(corrections *memoryCorrections) *Service {
	if corrections == nil {
		corrections = &memoryCorrections{}
	}
	return NewService(staticFields{fields: testFields()}, corrections, nil, zerolog.Nop())
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	t.Run("exact name match ranks first", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(nil)

		suggestions := svc.Suggest(context.Background(), "member_id", nil)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "member_id", suggestions[0].TargetColumn)
		assert.Equal(t, "claims", suggestions[0].TargetTable)
	})

	t.Run("normalized names match exactly", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(nil)

		suggestions := svc.Suggest(context.Background(), "Member ID", nil)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "member_id", suggestions[0].TargetColumn)
	})

	t.Run("confidence is sorted descending and bounded", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(nil)

		suggestions := svc.Suggest(context.Background(), "clm_num", []string{"123456789"})
		require.NotEmpty(t, suggestions)
		assert.LessOrEqual(t, len(suggestions), 5)
		for i, s := range suggestions {
			assert.Greater(t, s.Confidence, 0.1)
			assert.LessOrEqual(t, s.Confidence, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, suggestions[i-1].Confidence, s.Confidence)
			}
		}
	})

	t.Run("unrelated column yields nothing", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(nil)

		suggestions := svc.Suggest(context.Background(), "xyzzy", nil)
		assert.Empty(t, suggestions)
	})

	t.Run("empty sample values are tolerated", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(nil)

		assert.NotPanics(t, func() {
			svc.Suggest(context.Background(), "claim_number", []string{"", "  ", ""})
		})
	})
}

func TestSuggestLearning(t *testing.T) {
	t.Parallel()

	corrections := &memoryCorrections{}
	svc := newTestService(corrections)
	ctx := context.Background()

	confidenceFor := func(target string) float64 {
		for _, s := range svc.Suggest(ctx, "mbr_no", nil) {
			if s.TargetColumn == target {
				return s.Confidence
			}
		}
		return 0
	}

	before := confidenceFor("member_id")

	err := svc.RecordCorrection(ctx, Correction{
		SourceColumn:        "mbr_no",
		CorrectTargetTable:  "claims",
		CorrectTargetColumn: "member_id",
	})
	require.NoError(t, err)

	after := confidenceFor("member_id")
	assert.Greater(t, after, before, "corrected target should score higher on the next run")
}

func TestBulkSuggest(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil)

	results := svc.BulkSuggest(context.Background(), []SourceColumnInput{
		{ColumnName: "member_id"},
		{ColumnName: ""},
		{ColumnName: "claim_number", SampleValues: []string{"123456789"}},
	})

	assert.Len(t, results, 2)
	assert.Contains(t, results, "member_id")
	assert.Contains(t, results, "claim_number")
}

func TestStats(t *testing.T) {
	t.Parallel()
	corrections := &memoryCorrections{corrections: []Correction{{SourceColumn: "a"}}}
	svc := newTestService(corrections)

	stats := svc.Stats()
	assert.Equal(t, 4, stats.DataModelFields)
	assert.Equal(t, 1, stats.CorrectionsLearned)
	assert.Equal(t, len(patternLibrary), stats.PatternTypes)
	assert.Equal(t, "ready", stats.Status)
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, nameSimilarity("member_id", "member_id"), 0.001)
	assert.InDelta(t, 1.0, nameSimilarity("Member-ID", "member_id"), 0.1)
	assert.Zero(t, nameSimilarity("", "member_id"))
	assert.Greater(t, nameSimilarity("claim_num", "claim_number"), nameSimilarity("paid", "claim_number"))
}

func TestLearningBoost(t *testing.T) {
	t.Parallel()

	field := datamodel.Field{TableName: "claims", ColumnName: "member_id"}
	exact := Correction{SourceColumn: "MBR_ID", CorrectTargetTable: "claims", CorrectTargetColumn: "member_id"}
	other := Correction{SourceColumn: "mbr_id", CorrectTargetTable: "claims", CorrectTargetColumn: "claim_number"}

	t.Run("exact correction boosts", func(t *testing.T) {
		t.Parallel()
		boost := learningBoost("mbr_id", field, []Correction{exact})
		assert.Greater(t, boost, 0.0)
	})

	t.Run("different target gets nothing", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, learningBoost("mbr_id", field, []Correction{other}))
	})

	t.Run("boost is capped", func(t *testing.T) {
		t.Parallel()
		history := []Correction{exact, exact, exact, exact}
		assert.InDelta(t, maxLearningBoost, learningBoost("mbr_id", field, history), 0.001)
	})
}

func TestBuildReasoning(t *testing.T) {
	t.Parallel()

	t.Run("strong name match", func(t *testing.T) {
		t.Parallel()
		reasoning := buildReasoning(0.95, 0, 0, 0, nil)
		assert.Contains(t, reasoning, "Column name match (95%)")
	})

	t.Run("learned mapping", func(t *testing.T) {
		t.Parallel()
		reasoning := buildReasoning(0, 0, 0, 0.3, nil)
		assert.Contains(t, reasoning, "Previously learned mapping")
	})

	t.Run("pattern signal", func(t *testing.T) {
		t.Parallel()
		reasoning := buildReasoning(0, 0, 0.2, 0, map[string]float64{"date": 1.0})
		assert.Contains(t, reasoning, "Data pattern suggests date")
	})

	t.Run("no signal falls back", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Basic similarity match", buildReasoning(0.1, 0.1, 0, 0, nil))
	})
}
