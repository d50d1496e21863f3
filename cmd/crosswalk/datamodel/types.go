package datamodel

// Field is a single column of the PI20 target data model.
type Field struct {
	ID              int    `db:"id" json:"-"`
	SchemaLayer     string `db:"schema_layer" json:"schema_layer"`
	TableName       string `db:"table_name" json:"table_name"`
	ColumnName      string `db:"column_name" json:"column_name"`
	DataType        string `db:"data_type" json:"data_type"`
	ColumnOrder     int    `db:"column_order" json:"column_order"`
	Description     string `db:"description" json:"description"`
	IsStandardField bool   `db:"is_standard_field" json:"is_standard_field"`
	IsCaseSensitive bool   `db:"is_case_sensitive" json:"is_case_sensitive"`
	IsMandatory     bool   `db:"is_mandatory" json:"is_mandatory"`
	MaskingType     string `db:"masking_type" json:"masking_type,omitempty"`
	InCrosswalk     bool   `db:"in_crosswalk" json:"in_crosswalk"`
	KeyType         string `db:"key_type" json:"key_type,omitempty"`
}

// FieldFilter narrows dictionary lookups.
type FieldFilter struct {
	SchemaLayer string
	TableName   string
	Search      string
}

// RuleViolation is a single business rule failure for a proposed mapping.
type RuleViolation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// ValidationResult is the outcome of validating a crosswalk mapping
// against the data model rules.
type ValidationResult struct {
	IsValid     bool            `json:"is_valid"`
	Violations  []RuleViolation `json:"rule_violations"`
	Suggestions []string        `json:"suggestions"`
}

// MappingInput carries the crosswalk fields the validation rules inspect.
type MappingInput struct {
	SourceColumnName       string `json:"source_column_name"`
	InModel                string `json:"in_model"`
	MCDMColumnName         string `json:"mcdm_column_name"`
	SourceColumnFormatting string `json:"source_column_formatting"`
	CustomFieldType        string `json:"custom_field_type"`
	SkippedFlag            bool   `json:"skipped_flag"`
}
