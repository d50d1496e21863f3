package profile

import "time"

// Profile is a client source profile: one uploaded file or declared schema.
type Profile struct {
	ID              int       `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	ClientID        string    `db:"client_id" json:"client_id,omitempty"`
	RawTableName    string    `db:"raw_table_name" json:"raw_table_name,omitempty"`
	HasPhysicalFile bool      `db:"has_physical_file" json:"has_physical_file"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SourceColumn is one column of a profile's source schema.
type SourceColumn struct {
	ID           int    `db:"id" json:"id"`
	ProfileID    int    `db:"profile_id" json:"profile_id"`
	SourceColumn string `db:"source_column" json:"source_column"`
	SampleValues string `db:"sample_values" json:"-"`
	InferredType string `db:"inferred_type" json:"inferred_type"`
}
