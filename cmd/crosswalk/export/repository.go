package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// ErrExportNotFound is returned when an export artifact does not exist.
var ErrExportNotFound = errors.New("export not found")

// SnowflakeExportRepository persists generated Snowflake SQL artifacts.
type SnowflakeExportRepository struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewSnowflakeExportRepository creates a new SnowflakeExportRepository.
func NewSnowflakeExportRepository(db *sqlx.DB, log zerolog.Logger) *SnowflakeExportRepository {
	return &SnowflakeExportRepository{
		db:  db,
		log: log.With().Str("component", "snowflake_export_repository").Logger(),
	}
}

// Save stores a generated artifact and returns it with id and timestamp.
func (repo *SnowflakeExportRepository) Save(ctx context.Context, export SnowflakeExport) (*SnowflakeExport, error) {
	export.ID = uuid.NewString()

	query := `
		INSERT INTO snowflake_sql_exports
			(id, client_id, file_group, export_type, sql_content, table_name, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if err := repo.db.GetContext(ctx, &export.CreatedAt, query,
		export.ID, export.ClientID, export.FileGroup, export.ExportType,
		export.SQLContent, export.TableName, export.CreatedBy,
	); err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}

	repo.log.Info().Str("id", export.ID).Str("export_type", export.ExportType).Msg("Saved SQL export")
	return &export, nil
}

// List returns exports filtered by client and type, newest first.
func (repo *SnowflakeExportRepository) List(ctx context.Context, clientID, exportType string) ([]SnowflakeExport, error) {
	query := `
		SELECT id, client_id, file_group, export_type, sql_content, table_name,
		       created_by, is_deployed, created_at
		FROM snowflake_sql_exports
		WHERE 1=1`
	var args []interface{}

	if clientID != "" {
		args = append(args, clientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if exportType != "" {
		args = append(args, exportType)
		query += fmt.Sprintf(" AND export_type = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var exports []SnowflakeExport
	if err := repo.db.SelectContext(ctx, &exports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return exports, nil
}

// SQLContent returns the generated SQL of one export.
func (repo *SnowflakeExportRepository) SQLContent(ctx context.Context, id string) (string, error) {
	var content string
	query := `SELECT sql_content FROM snowflake_sql_exports WHERE id = $1`

	if err := repo.db.GetContext(ctx, &content, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrExportNotFound
		}
		return "", fmt.Errorf("failed to get export %s: %w", id, err)
	}
	return content, nil
}
