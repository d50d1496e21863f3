// Package storage owns the database schema bootstrap.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// schema holds the DDL of every table, executed idempotently at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS pi20_data_model (
		id SERIAL PRIMARY KEY,
		schema_layer VARCHAR(50) NOT NULL DEFAULT '',
		table_name VARCHAR(100) NOT NULL,
		column_name VARCHAR(255) NOT NULL,
		data_type VARCHAR(100) NOT NULL DEFAULT '',
		column_order INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		is_standard_field BOOLEAN NOT NULL DEFAULT FALSE,
		is_case_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
		is_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
		masking_type VARCHAR(50) NOT NULL DEFAULT '',
		in_crosswalk BOOLEAN NOT NULL DEFAULT FALSE,
		key_type VARCHAR(50) NOT NULL DEFAULT '',
		UNIQUE (table_name, column_name)
	)`,
	`CREATE TABLE IF NOT EXISTS mapping_corrections (
		id SERIAL PRIMARY KEY,
		source_column TEXT NOT NULL,
		correct_target_table TEXT NOT NULL,
		correct_target_column TEXT NOT NULL,
		incorrect_suggestion TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS source_profiles (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		client_id VARCHAR(100) NOT NULL DEFAULT '',
		raw_table_name VARCHAR(255) NOT NULL DEFAULT '',
		has_physical_file BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS source_columns (
		id SERIAL PRIMARY KEY,
		profile_id INTEGER NOT NULL REFERENCES source_profiles(id) ON DELETE CASCADE,
		source_column VARCHAR(255) NOT NULL,
		sample_values TEXT NOT NULL DEFAULT '[]',
		inferred_type VARCHAR(20) NOT NULL DEFAULT 'string'
	)`,
	`CREATE TABLE IF NOT EXISTS crosswalk_mappings (
		id SERIAL PRIMARY KEY,
		profile_id INTEGER NOT NULL REFERENCES source_profiles(id) ON DELETE CASCADE,
		source_column_id INTEGER NOT NULL REFERENCES source_columns(id) ON DELETE CASCADE,
		model_table VARCHAR(100) NOT NULL,
		model_column VARCHAR(100) NOT NULL,
		is_custom_field BOOLEAN NOT NULL DEFAULT FALSE,
		custom_field_name VARCHAR(255) NOT NULL DEFAULT '',
		transform_expression TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS regex_rules (
		id SERIAL PRIMARY KEY,
		source_column_id INTEGER NOT NULL REFERENCES source_columns(id) ON DELETE CASCADE,
		rule_name VARCHAR(255) NOT NULL DEFAULT '',
		pattern TEXT NOT NULL,
		flags VARCHAR(20) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS crosswalk_template (
		id SERIAL PRIMARY KEY,
		client_id VARCHAR(100) NOT NULL,
		source_column_order INTEGER NOT NULL DEFAULT 0,
		source_column_name VARCHAR(255) NOT NULL,
		file_group_name VARCHAR(100) NOT NULL,
		mcdm_column_name VARCHAR(255) NOT NULL DEFAULT '',
		in_model VARCHAR(10) NOT NULL DEFAULT 'Y',
		mcdm_table VARCHAR(100) NOT NULL DEFAULT '',
		custom_field_type VARCHAR(50) NOT NULL DEFAULT '',
		data_profile_info TEXT NOT NULL DEFAULT '',
		source_column_formatting TEXT NOT NULL DEFAULT '',
		skipped_flag BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_crosswalk_template_client ON crosswalk_template (client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_crosswalk_template_file_group ON crosswalk_template (file_group_name)`,
	`CREATE TABLE IF NOT EXISTS snowflake_sql_exports (
		id UUID PRIMARY KEY,
		client_id VARCHAR(100) NOT NULL,
		file_group VARCHAR(100) NOT NULL DEFAULT '',
		export_type VARCHAR(50) NOT NULL,
		sql_content TEXT NOT NULL,
		table_name VARCHAR(255) NOT NULL,
		created_by VARCHAR(100) NOT NULL DEFAULT 'SYSTEM',
		is_deployed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// InitSchema creates all tables if they do not exist.
func InitSchema(ctx context.Context, db *sqlx.DB, log zerolog.Logger) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Database schema initialized")
	return nil
}
