// Package dsl implements the transform expression mini-language used in
// crosswalk mappings and its translation to warehouse SQL.
package dsl

import (
	"fmt"
	"regexp"
	"strings"
)

// functionPatterns validates recognized function calls.
var functionPatterns = map[string]*regexp.Regexp{
	"upper":         regexp.MustCompile(`(?i)^upper\(([^)]+)\)$`),
	"lower":         regexp.MustCompile(`(?i)^lower\(([^)]+)\)$`),
	"trim":          regexp.MustCompile(`(?i)^trim\(([^)]+)\)$`),
	"substr":        regexp.MustCompile(`(?i)^substr\(([^,]+),\s*(\d+),\s*(\d+)\)$`),
	"coalesce":      regexp.MustCompile(`(?i)^coalesce\(([^)]+)\)$`),
	"regex_extract": regexp.MustCompile(`(?i)^regex_extract\(([^,]+),\s*['"]([^'"]+)['"],\s*(\d+)\)$`),
	"regex_replace": regexp.MustCompile(`(?i)^regex_replace\(([^,]+),\s*['"]([^'"]+)['"],\s*['"]([^'"]*)['"]\)$`),
	"col":           regexp.MustCompile(`(?i)^col\(['"]([^'"]+)['"]\)$`),
	"if":            regexp.MustCompile(`(?i)^if\(([^,]+),\s*([^,]+),\s*([^)]+)\)$`),
	"matches":       regexp.MustCompile(`(?i)^matches\(([^,]+),\s*['"]([^'"]+)['"]\)$`),
	"is_null":       regexp.MustCompile(`(?i)^is_null\(([^)]+)\)$`),
}

// sqlReplacement is one DSL-to-SQL substitution.
type sqlReplacement struct {
	pattern     *regexp.Regexp
	replacement string
}

// sqlReplacements rewrite DSL function calls into Snowflake SQL.
var sqlReplacements = []sqlReplacement{
	{regexp.MustCompile(`(?i)upper\(([^)]+)\)`), `UPPER($1)`},
	{regexp.MustCompile(`(?i)lower\(([^)]+)\)`), `LOWER($1)`},
	{regexp.MustCompile(`(?i)trim\(([^)]+)\)`), `TRIM($1)`},
	{regexp.MustCompile(`(?i)substr\(([^,]+),\s*(\d+),\s*(\d+)\)`), `SUBSTR($1, $2, $3)`},
	{regexp.MustCompile(`(?i)coalesce\(([^)]+)\)`), `COALESCE($1)`},
	{regexp.MustCompile(`(?i)regex_extract\(([^,]+),\s*['"]([^'"]+)['"],\s*(\d+)\)`), `REGEXP_SUBSTR($1, '$2')`},
	{regexp.MustCompile(`(?i)regex_replace\(([^,]+),\s*['"]([^'"]+)['"],\s*['"]([^'"]*)['"]\)`), `REGEXP_REPLACE($1, '$2', '$3')`},
	{regexp.MustCompile(`(?i)if\(([^,]+),\s*([^,]+),\s*([^)]+)\)`), `CASE WHEN $1 THEN $2 ELSE $3 END`},
	{regexp.MustCompile(`(?i)matches\(([^,]+),\s*['"]([^'"]+)['"]\)`), `REGEXP_LIKE($1, '$2')`},
	{regexp.MustCompile(`(?i)is_null\(([^)]+)\)`), `($1 IS NULL)`},
}

var colPattern = regexp.MustCompile(`(?i)col\(['"]([^'"]+)['"]\)`)

// functionCallPattern finds candidate function calls for validation.
var functionCallPattern = regexp.MustCompile(`(?i)[a-z_]+\([^)]*\)`)

// ValidationResult reports whether an expression is well formed.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Validate checks an expression for balanced parentheses and recognized
// function calls.
func Validate(expression string) ValidationResult {
	if strings.TrimSpace(expression) == "" {
		return ValidationResult{Valid: true, Message: "Empty expression"}
	}

	if !balancedParentheses(expression) {
		return ValidationResult{Valid: false, Message: "Unbalanced parentheses"}
	}

	var invalid []string
	for _, call := range functionCallPattern.FindAllString(expression, -1) {
		if !validFunctionCall(call) {
			invalid = append(invalid, call)
		}
	}
	if len(invalid) > 0 {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Invalid function calls: %s", strings.Join(invalid, ", ")),
		}
	}

	return ValidationResult{Valid: true, Message: "Valid expression"}
}

// TranslateToSQL rewrites a DSL expression into SQL. With a column mapping,
// col('x') references resolve through it and unmapped ones are left literal;
// without one, every col('x') reduces to the bare column name. An empty
// expression translates to NULL.
func TranslateToSQL(expression string, columnMapping map[string]string) string {
	if strings.TrimSpace(expression) == "" {
		return "NULL"
	}

	sqlExpr := expression
	for _, r := range sqlReplacements {
		sqlExpr = r.pattern.ReplaceAllString(sqlExpr, r.replacement)
	}

	if len(columnMapping) > 0 {
		sqlExpr = colPattern.ReplaceAllStringFunc(sqlExpr, func(call string) string {
			name := colPattern.FindStringSubmatch(call)[1]
			if ref, ok := columnMapping[name]; ok {
				return ref
			}
			return call
		})
	} else {
		sqlExpr = colPattern.ReplaceAllString(sqlExpr, `$1`)
	}

	return sqlExpr
}

func balancedParentheses(expression string) bool {
	count := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			count++
		case ')':
			count--
			if count < 0 {
				return false
			}
		}
	}
	return count == 0
}

// validFunctionCall checks a single call against the known patterns. Calls
// whose name is not in the function table are left alone: they may be plain
// SQL the user wrote directly.
func validFunctionCall(call string) bool {
	name := strings.ToLower(call[:strings.Index(call, "(")])
	pattern, known := functionPatterns[name]
	if !known {
		return true
	}
	return pattern.MatchString(call)
}
