package datamodel

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// FieldSource provides the dictionary entries the validation rules consult.
type FieldSource interface {
	FieldsByColumn(columnName string) []Field
}

// Service answers data model lookups and validates proposed crosswalk
// mappings against the PI20 business rules.
type Service struct {
	fields FieldSource
	log    zerolog.Logger
}

// NewService creates a new data model service.
func NewService(fields FieldSource, log zerolog.Logger) *Service {
	return &Service{
		fields: fields,
		log:    log.With().Str("component", "datamodel_service").Logger(),
	}
}

// ValidateMapping checks a proposed mapping against the data model rules
// and returns violations plus advisory suggestions.
func (svc *Service) ValidateMapping(input MappingInput) ValidationResult {
	violations := []RuleViolation{}
	suggestions := []string{}

	inModel := strings.ToUpper(strings.TrimSpace(input.InModel))
	mcdmColumn := strings.TrimSpace(input.MCDMColumnName)
	formatting := strings.TrimSpace(input.SourceColumnFormatting)
	customType := strings.TrimSpace(input.CustomFieldType)

	if inModel == "Y" && mcdmColumn == "" {
		violations = append(violations, RuleViolation{
			Rule:    "IN_MODEL_Y_REQUIRES_MCDM_COLUMN",
			Message: "Fields with IN_MODEL=Y must have an MCDM column name specified",
			Field:   "mcdm_column_name",
		})
	}

	var target *Field
	if mcdmColumn != "" {
		if matches := svc.fields.FieldsByColumn(mcdmColumn); len(matches) > 0 {
			target = &matches[0]
		}
	}

	if target != nil && target.IsCaseSensitive && formatting == "" {
		violations = append(violations, RuleViolation{
			Rule:    "VARCHAR_FIELDS_CASE_SENSITIVITY",
			Message: fmt.Sprintf("%s is case-sensitive and requires UPPER() or LOWER() function", mcdmColumn),
			Field:   "source_column_formatting",
		})
		sourceName := input.SourceColumnName
		if sourceName == "" {
			sourceName = "column_name"
		}
		suggestions = append(suggestions, fmt.Sprintf("Try: UPPER(%s)", sourceName))
	}

	if inModel == "N" && customType == "" {
		violations = append(violations, RuleViolation{
			Rule:    "CUSTOM_FIELD_TYPE_VALIDATION",
			Message: "Custom fields (IN_MODEL=N) must specify a custom field type",
			Field:   "custom_field_type",
		})
	}

	if input.SkippedFlag && inModel != "N/A" {
		violations = append(violations, RuleViolation{
			Rule:    "SKIPPED_FIELD_LOGIC",
			Message: "Skipped fields should have IN_MODEL set to N/A",
			Field:   "in_model",
		})
		suggestions = append(suggestions, "Set IN_MODEL to 'N/A' for skipped fields")
	}

	if target != nil && inModel == "Y" {
		if formatting == "" && strings.Contains(strings.ToUpper(target.DataType), "VARCHAR") {
			suggestions = append(suggestions, fmt.Sprintf("Consider data type formatting for %s", target.DataType))
		}
		suggestions = append(suggestions, fmt.Sprintf("Target: %s.%s.%s - %s",
			target.SchemaLayer, target.TableName, target.ColumnName, target.Description))
	}

	return ValidationResult{
		IsValid:     len(violations) == 0,
		Violations:  violations,
		Suggestions: suggestions,
	}
}
