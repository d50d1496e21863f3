package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// ErrColumnNotFound is returned when a source column does not exist.
var ErrColumnNotFound = errors.New("source column not found")

// Repository handles source profile and source column persistence.
type Repository struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewRepository creates a new profile repository.
func NewRepository(db *sqlx.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "profile_repository").Logger(),
	}
}

// Create inserts a new profile and returns it with its assigned id.
func (repo *Repository) Create(ctx context.Context, name, clientID string) (*Profile, error) {
	var p Profile
	query := `
		INSERT INTO source_profiles (name, client_id)
		VALUES ($1, $2)
		RETURNING id, name, client_id, raw_table_name, has_physical_file, created_at, updated_at`

	if err := repo.db.GetContext(ctx, &p, query, name, clientID); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	repo.log.Info().Int("id", p.ID).Str("name", p.Name).Msg("Created source profile")
	return &p, nil
}

// List returns all profiles, newest first.
func (repo *Repository) List(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	query := `
		SELECT id, name, client_id, raw_table_name, has_physical_file, created_at, updated_at
		FROM source_profiles
		ORDER BY created_at DESC`

	if err := repo.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Get returns one profile by id.
func (repo *Repository) Get(ctx context.Context, id int) (*Profile, error) {
	var p Profile
	query := `
		SELECT id, name, client_id, raw_table_name, has_physical_file, created_at, updated_at
		FROM source_profiles
		WHERE id = $1`

	if err := repo.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile %d: %w", id, err)
	}
	return &p, nil
}

// UpdateRawTableName points a profile at a warehouse table. An empty name
// clears the reference.
func (repo *Repository) UpdateRawTableName(ctx context.Context, id int, rawTableName string) error {
	result, err := repo.db.ExecContext(ctx,
		`UPDATE source_profiles SET raw_table_name = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		rawTableName, id)
	if err != nil {
		return fmt.Errorf("failed to update raw table name for profile %d: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	repo.log.Info().Int("profile_id", id).Str("raw_table_name", rawTableName).Msg("Updated raw table name")
	return nil
}

// ReplaceSourceColumns swaps a profile's source columns for a freshly
// parsed set and flags the profile as file-backed when fromFile is set.
func (repo *Repository) ReplaceSourceColumns(ctx context.Context, profileID int, columns []SourceColumn, fromFile bool) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM source_columns WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to clear source columns: %w", err)
	}

	insert := `
		INSERT INTO source_columns (profile_id, source_column, sample_values, inferred_type)
		VALUES ($1, $2, $3, $4)`
	for _, col := range columns {
		if _, err := tx.ExecContext(ctx, insert, profileID, col.SourceColumn, col.SampleValues, col.InferredType); err != nil {
			return fmt.Errorf("failed to insert source column %s: %w", col.SourceColumn, err)
		}
	}

	if fromFile {
		if _, err := tx.ExecContext(ctx,
			`UPDATE source_profiles SET has_physical_file = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
			profileID); err != nil {
			return fmt.Errorf("failed to update profile flags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit source columns: %w", err)
	}

	repo.log.Info().Int("profile_id", profileID).Int("columns", len(columns)).Msg("Replaced source columns")
	return nil
}

// SourceColumns returns a profile's source columns in insertion order.
func (repo *Repository) SourceColumns(ctx context.Context, profileID int) ([]SourceColumn, error) {
	var columns []SourceColumn
	query := `
		SELECT id, profile_id, source_column, sample_values, inferred_type
		FROM source_columns
		WHERE profile_id = $1
		ORDER BY id`

	if err := repo.db.SelectContext(ctx, &columns, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to load source columns: %w", err)
	}
	return columns, nil
}

// SourceColumn returns a single source column by id.
func (repo *Repository) SourceColumn(ctx context.Context, id int) (*SourceColumn, error) {
	var col SourceColumn
	query := `
		SELECT id, profile_id, source_column, sample_values, inferred_type
		FROM source_columns
		WHERE id = $1`

	if err := repo.db.GetContext(ctx, &col, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to get source column %d: %w", id, err)
	}
	return &col, nil
}
