package automapper

import (
	"regexp"
	"strings"
)

// patternLibrary maps semantic categories to the regexes used to classify
// sample values. Category names double as keywords matched against target
// column names when applying the pattern boost.
var patternLibrary = map[string][]*regexp.Regexp{
	"claim_number": {
		regexp.MustCompile(`^\d{5,20}$`),
		regexp.MustCompile(`^\w{5,15}-\w{3,10}$`),
	},
	"member_id": {
		regexp.MustCompile(`^\d{8,12}$`),
		regexp.MustCompile(`^[A-Z]{2}\d{6,10}$`),
	},
	"date": {
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
	},
	"phone": {
		regexp.MustCompile(`^\d{10}$`),
		regexp.MustCompile(`^\(\d{3}\)\s?\d{3}-\d{4}$`),
	},
	"amount": {
		regexp.MustCompile(`^\d+\.\d{2}$`),
		regexp.MustCompile(`^\$?\d+,?\d*\.?\d*$`),
	},
	"zip_code": {
		regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	},
	"npi": {
		regexp.MustCompile(`^\d{10}$`),
	},
	"tax_id": {
		regexp.MustCompile(`^\d{2}-\d{7}$`),
		regexp.MustCompile(`^\d{9}$`),
	},
}

// maxSampleValues limits how many sample values are classified per column.
const maxSampleValues = 10

// analyzeDataPatterns scores each pattern category by the fraction of
// sample values matching any of its regexes. Blank values match nothing but
// stay in the denominator. Empty input yields an empty map.
func analyzeDataPatterns(sampleValues []string) map[string]float64 {
	if len(sampleValues) == 0 {
		return map[string]float64{}
	}

	clean := make([]string, 0, len(sampleValues))
	for _, v := range sampleValues {
		clean = append(clean, strings.TrimSpace(v))
	}
	if len(clean) > maxSampleValues {
		clean = clean[:maxSampleValues]
	}

	scores := make(map[string]float64, len(patternLibrary))
	for category, patterns := range patternLibrary {
		matches := 0
		for _, value := range clean {
			for _, pattern := range patterns {
				if pattern.MatchString(value) {
					matches++
					break
				}
			}
		}
		scores[category] = float64(matches) / float64(len(clean))
	}
	return scores
}

// categoryMatchesColumn reports whether a pattern category applies to a
// target column name: either the full category name or any of its tokens
// appears in the lowercased column name.
func categoryMatchesColumn(category, columnName string) bool {
	name := strings.ToLower(columnName)
	if strings.Contains(name, category) {
		return true
	}
	for _, keyword := range strings.Split(category, "_") {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
