package export

import "time"

// Snowflake export types.
const (
	ExportCreateTable   = "CREATE_TABLE"
	ExportInsertMapping = "INSERT_MAPPING"
	ExportFullETL       = "FULL_ETL"
)

// SnowflakeRequest asks for generated Snowflake SQL from the crosswalk.
type SnowflakeRequest struct {
	ClientID   string `json:"client_id"`
	FileGroup  string `json:"file_group,omitempty"`
	ExportType string `json:"export_type"`
	TableName  string `json:"table_name"`
	CreatedBy  string `json:"created_by,omitempty"`
}

// SnowflakeExport is a persisted generated SQL artifact.
type SnowflakeExport struct {
	ID         string    `db:"id" json:"id"`
	ClientID   string    `db:"client_id" json:"client_id"`
	FileGroup  string    `db:"file_group" json:"file_group,omitempty"`
	ExportType string    `db:"export_type" json:"export_type"`
	SQLContent string    `db:"sql_content" json:"-"`
	TableName  string    `db:"table_name" json:"table_name"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	IsDeployed bool      `db:"is_deployed" json:"is_deployed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// JSONConfig is the JSON export artifact of a profile's crosswalk.
type JSONConfig struct {
	ClientID string        `json:"client_id"`
	Profile  string        `json:"profile"`
	Mappings []JSONMapping `json:"mappings"`
}

// JSONMapping is one mapping entry of the JSON export.
type JSONMapping struct {
	SourceColumn    string      `json:"source_column"`
	Target          JSONTarget  `json:"target"`
	Custom          bool        `json:"custom"`
	CustomFieldName string      `json:"custom_field_name,omitempty"`
	Transform       string      `json:"transform"`
	RegexRules      []JSONRegex `json:"regex_rules"`
}

// JSONTarget identifies the model table and column of a mapping.
type JSONTarget struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// JSONRegex serializes one regex rule.
type JSONRegex struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Flags       string `json:"flags"`
	Description string `json:"description"`
}
