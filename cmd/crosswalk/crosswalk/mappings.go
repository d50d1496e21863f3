package crosswalk

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// MappingRepository handles profile-scoped crosswalk mappings and their
// regex rules, the inputs of the export surface.
type MappingRepository struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db *sqlx.DB, log zerolog.Logger) *MappingRepository {
	return &MappingRepository{
		db:  db,
		log: log.With().Str("component", "mapping_repository").Logger(),
	}
}

// ListByProfile returns all mappings of a profile.
func (repo *MappingRepository) ListByProfile(ctx context.Context, profileID int) ([]Mapping, error) {
	var mappings []Mapping
	query := `
		SELECT id, profile_id, source_column_id, model_table, model_column,
		       is_custom_field, custom_field_name, transform_expression, notes
		FROM crosswalk_mappings
		WHERE profile_id = $1
		ORDER BY id`

	if err := repo.db.SelectContext(ctx, &mappings, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}

// Replace swaps a profile's mappings for the given set.
func (repo *MappingRepository) Replace(ctx context.Context, profileID int, mappings []Mapping) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM crosswalk_mappings WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to clear mappings: %w", err)
	}

	insert := `
		INSERT INTO crosswalk_mappings
			(profile_id, source_column_id, model_table, model_column,
			 is_custom_field, custom_field_name, transform_expression, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, m := range mappings {
		if _, err := tx.ExecContext(ctx, insert,
			profileID, m.SourceColumnID, m.ModelTable, m.ModelColumn,
			m.IsCustomField, m.CustomFieldName, m.TransformExpression, m.Notes,
		); err != nil {
			return fmt.Errorf("failed to insert mapping for column %d: %w", m.SourceColumnID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mappings: %w", err)
	}

	repo.log.Info().Int("profile_id", profileID).Int("mappings", len(mappings)).Msg("Replaced profile mappings")
	return nil
}

// RulesBySourceColumn returns the regex rules attached to a source column.
func (repo *MappingRepository) RulesBySourceColumn(ctx context.Context, sourceColumnID int) ([]RegexRule, error) {
	var rules []RegexRule
	query := `
		SELECT id, source_column_id, rule_name, pattern, flags, description
		FROM regex_rules
		WHERE source_column_id = $1
		ORDER BY id`

	if err := repo.db.SelectContext(ctx, &rules, query, sourceColumnID); err != nil {
		return nil, fmt.Errorf("failed to list regex rules: %w", err)
	}
	return rules, nil
}

// AddRule attaches a regex rule to a source column.
func (repo *MappingRepository) AddRule(ctx context.Context, rule RegexRule) (int, error) {
	var id int
	query := `
		INSERT INTO regex_rules (source_column_id, rule_name, pattern, flags, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if err := repo.db.GetContext(ctx, &id, query,
		rule.SourceColumnID, rule.RuleName, rule.Pattern, rule.Flags, rule.Description,
	); err != nil {
		return 0, fmt.Errorf("failed to add regex rule: %w", err)
	}
	return id, nil
}
