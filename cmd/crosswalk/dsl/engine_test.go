package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("empty expression is valid", func(t *testing.T) {
		t.Parallel()
		result := Validate("   ")
		assert.True(t, result.Valid)
		assert.Equal(t, "Empty expression", result.Message)
	})

	t.Run("well formed calls pass", func(t *testing.T) {
		t.Parallel()
		for _, expr := range []string{
			"upper(col('name'))",
			"trim(col('member_id'))",
			"substr(x, 1, 5)",
			"coalesce(x, 'unknown')",
			"matches(x, '^\\d{10}$')",
			"regex_replace(x, '[0-9]', '')",
			"is_null(x)",
			"UPPER(col('name'))",
		} {
			result := Validate(expr)
			assert.True(t, result.Valid, "expected %q to validate: %s", expr, result.Message)
			assert.Equal(t, "Valid expression", result.Message)
		}
	})

	t.Run("unbalanced parentheses fail", func(t *testing.T) {
		t.Parallel()
		result := Validate("upper(col('name')")
		assert.False(t, result.Valid)
		assert.Equal(t, "Unbalanced parentheses", result.Message)

		assert.False(t, Validate("upper)col('name')(").Valid)
	})

	t.Run("malformed known function fails", func(t *testing.T) {
		t.Parallel()
		result := Validate("substr(col('zip'), one, two)")
		assert.False(t, result.Valid)
		assert.Contains(t, result.Message, "Invalid function calls")
	})

	t.Run("unknown function names are allowed", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Validate("to_varchar(x)").Valid)
	})
}

func TestTranslateToSQL(t *testing.T) {
	t.Parallel()

	t.Run("empty expression becomes NULL", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "NULL", TranslateToSQL("", nil))
		assert.Equal(t, "NULL", TranslateToSQL("   ", nil))
	})

	t.Run("functions map to SQL", func(t *testing.T) {
		t.Parallel()
		cases := map[string]string{
			"upper(x)":                       "UPPER(x)",
			"lower(x)":                       "LOWER(x)",
			"trim(x)":                        "TRIM(x)",
			"substr(x, 1, 5)":                "SUBSTR(x, 1, 5)",
			"coalesce(x)":                    "COALESCE(x)",
			"regex_extract(x, '\\d+', 1)":    "REGEXP_SUBSTR(x, '\\d+')",
			"regex_replace(x, '-', '')":      "REGEXP_REPLACE(x, '-', '')",
			"if(x > 1, 'yes', 'no')":         "CASE WHEN x > 1 THEN 'yes' ELSE 'no' END",
			"matches(x, '^\\d{5}$')":         "REGEXP_LIKE(x, '^\\d{5}$')",
			"is_null(x)":                     "(x IS NULL)",
		}
		for expr, want := range cases {
			assert.Equal(t, want, TranslateToSQL(expr, nil), "expression %q", expr)
		}
	})

	t.Run("col references resolve through the mapping", func(t *testing.T) {
		t.Parallel()
		mapping := map[string]string{"member_id": "src.MEMBER_ID"}
		assert.Equal(t, "UPPER(src.MEMBER_ID)", TranslateToSQL("upper(col('member_id'))", mapping))
	})

	t.Run("unmapped col references stay literal under a mapping", func(t *testing.T) {
		t.Parallel()
		mapping := map[string]string{"other": "src.OTHER"}
		assert.Equal(t, "TRIM(col('member_id'))", TranslateToSQL("trim(col('member_id'))", mapping))
	})

	t.Run("col references reduce to the bare name without a mapping", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "member_id", TranslateToSQL("col('member_id')", nil))
		assert.Equal(t, "TRIM(member_id)", TranslateToSQL("trim(col('member_id'))", map[string]string{}))
	})

	t.Run("nested calls translate outside in", func(t *testing.T) {
		t.Parallel()
		got := TranslateToSQL("upper(trim(col('name')))", nil)
		assert.Contains(t, got, "UPPER(")
		assert.Contains(t, got, "TRIM(")
		assert.Contains(t, got, "name")
	})
}
