package crosswalk

import "time"

// TemplateRow is one row of the crosswalk template: a tracked mapping from
// a client source column to the target data model.
type TemplateRow struct {
	ID                     int       `db:"id" json:"id"`
	ClientID               string    `db:"client_id" json:"client_id"`
	SourceColumnOrder      int       `db:"source_column_order" json:"source_column_order"`
	SourceColumnName       string    `db:"source_column_name" json:"source_column_name"`
	FileGroupName          string    `db:"file_group_name" json:"file_group_name"`
	MCDMColumnName         string    `db:"mcdm_column_name" json:"mcdm_column_name"`
	InModel                string    `db:"in_model" json:"in_model"`
	MCDMTable              string    `db:"mcdm_table" json:"mcdm_table"`
	CustomFieldType        string    `db:"custom_field_type" json:"custom_field_type"`
	DataProfileInfo        string    `db:"data_profile_info" json:"data_profile_info"`
	SourceColumnFormatting string    `db:"source_column_formatting" json:"source_column_formatting"`
	SkippedFlag            bool      `db:"skipped_flag" json:"skipped_flag"`
	Notes                  string    `db:"notes" json:"notes"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	ClientID  string
	FileGroup string
	Limit     int
	Offset    int
}

// ClientCount pairs a client id with its mapping count.
type ClientCount struct {
	ClientID     string `db:"client_id" json:"client_id"`
	MappingCount int    `db:"mapping_count" json:"mapping_count"`
}

// FileGroupCount pairs a file group with its mapping count.
type FileGroupCount struct {
	FileGroup    string `db:"file_group_name" json:"file_group"`
	MappingCount int    `db:"mapping_count" json:"mapping_count"`
}

// DistributionEntry is one bucket of a summary distribution.
type DistributionEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary aggregates crosswalk statistics.
type Summary struct {
	TotalMappings         int                 `json:"total_mappings"`
	TotalClients          int                 `json:"total_clients"`
	TotalFileGroups       int                 `json:"total_file_groups"`
	SkippedFields         int                 `json:"skipped_fields"`
	InModelDistribution   []DistributionEntry `json:"in_model_distribution"`
	FileGroupDistribution []DistributionEntry `json:"file_group_distribution"`
}

// Mapping is a profile-scoped crosswalk mapping used by the export surface.
type Mapping struct {
	ID                  int    `db:"id" json:"id"`
	ProfileID           int    `db:"profile_id" json:"profile_id"`
	SourceColumnID      int    `db:"source_column_id" json:"source_column_id"`
	ModelTable          string `db:"model_table" json:"model_table"`
	ModelColumn         string `db:"model_column" json:"model_column"`
	IsCustomField       bool   `db:"is_custom_field" json:"is_custom_field"`
	CustomFieldName     string `db:"custom_field_name" json:"custom_field_name,omitempty"`
	TransformExpression string `db:"transform_expression" json:"transform_expression,omitempty"`
	Notes               string `db:"notes" json:"notes,omitempty"`
}

// RegexRule is a validation regex attached to a source column.
type RegexRule struct {
	ID             int    `db:"id" json:"id"`
	SourceColumnID int    `db:"source_column_id" json:"source_column_id"`
	RuleName       string `db:"rule_name" json:"name"`
	Pattern        string `db:"pattern" json:"pattern"`
	Flags          string `db:"flags" json:"flags,omitempty"`
	Description    string `db:"description" json:"description,omitempty"`
}
