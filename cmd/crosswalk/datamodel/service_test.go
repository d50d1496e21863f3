package datamodel

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFields struct {
	byColumn map[string][]Field
}

func (f fakeFields) FieldsByColumn(columnName string) []Field {
	return f.byColumn[strings.ToLower(columnName)]
}

func newValidationService() *Service {
	fields := fakeFields{byColumn: map[string][]Field{
		"member_id": {{
			SchemaLayer:     "base",
			TableName:       "members",
			ColumnName:      "member_id",
			DataType:        "VARCHAR(50)",
			Description:     "Identifier of the enrolled member",
			IsCaseSensitive: true,
		}},
		"paid_amount": {{
			SchemaLayer: "base",
			TableName:   "claims",
			ColumnName:  "paid_amount",
			DataType:    "NUMBER",
			Description: "Amount paid for the claim line",
		}},
	}}
	return NewService(fields, zerolog.Nop())
}

func violationRules(result ValidationResult) []string {
	rules := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func TestValidateMapping(t *testing.T) {
	t.Parallel()
	svc := newValidationService()

	t.Run("in model requires mcdm column", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{InModel: "Y"})
		assert.False(t, result.IsValid)
		assert.Contains(t, violationRules(result), "IN_MODEL_Y_REQUIRES_MCDM_COLUMN")
	})

	t.Run("case sensitive target needs formatting", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{
			SourceColumnName: "MBR_ID",
			InModel:          "Y",
			MCDMColumnName:   "member_id",
		})
		assert.False(t, result.IsValid)
		assert.Contains(t, violationRules(result), "VARCHAR_FIELDS_CASE_SENSITIVITY")
		assert.Contains(t, result.Suggestions, "Try: UPPER(MBR_ID)")
	})

	t.Run("formatting satisfies case sensitivity", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{
			SourceColumnName:       "MBR_ID",
			InModel:                "Y",
			MCDMColumnName:         "member_id",
			SourceColumnFormatting: "UPPER(MBR_ID)",
		})
		assert.True(t, result.IsValid)
	})

	t.Run("custom fields need a type", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{InModel: "N"})
		assert.False(t, result.IsValid)
		assert.Contains(t, violationRules(result), "CUSTOM_FIELD_TYPE_VALIDATION")

		result = svc.ValidateMapping(MappingInput{InModel: "N", CustomFieldType: "reporting"})
		assert.True(t, result.IsValid)
	})

	t.Run("skipped fields must be n/a", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{
			InModel:         "Y",
			MCDMColumnName:  "paid_amount",
			SkippedFlag:     true,
			CustomFieldType: "",
		})
		assert.False(t, result.IsValid)
		assert.Contains(t, violationRules(result), "SKIPPED_FIELD_LOGIC")
		assert.Contains(t, result.Suggestions, "Set IN_MODEL to 'N/A' for skipped fields")

		result = svc.ValidateMapping(MappingInput{InModel: "N/A", SkippedFlag: true})
		assert.True(t, result.IsValid)
	})

	t.Run("valid mapping yields target info", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{
			SourceColumnName: "AMT_PAID",
			InModel:          "Y",
			MCDMColumnName:   "paid_amount",
		})
		require.True(t, result.IsValid)
		assert.Empty(t, result.Violations)
		assert.Contains(t, result.Suggestions, "Target: base.claims.paid_amount - Amount paid for the claim line")
	})

	t.Run("in model comparison is case insensitive", func(t *testing.T) {
		t.Parallel()
		result := svc.ValidateMapping(MappingInput{InModel: "y"})
		assert.False(t, result.IsValid)
		assert.Contains(t, violationRules(result), "IN_MODEL_Y_REQUIRES_MCDM_COLUMN")
	})
}
