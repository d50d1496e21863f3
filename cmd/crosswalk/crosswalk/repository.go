package crosswalk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// ErrNotFound is returned when a template row does not exist.
var ErrNotFound = errors.New("mapping not found")

// updatableFields are the template columns a client may change through the API.
var updatableFields = []string{
	"client_id", "source_column_order", "source_column_name", "file_group_name",
	"mcdm_column_name", "in_model", "mcdm_table", "custom_field_type",
	"data_profile_info", "source_column_formatting", "skipped_flag", "notes",
}

// searchableFields are the template columns the search endpoint may scan.
var searchableFields = []string{
	"source_column_name", "mcdm_column_name", "data_profile_info", "source_column_formatting",
}

// TemplateRepository handles crosswalk template persistence.
type TemplateRepository struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *sqlx.DB, log zerolog.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:  db,
		log: log.With().Str("component", "crosswalk_repository").Logger(),
	}
}

// List returns template rows matching the filter, ordered by column order.
func (repo *TemplateRepository) List(ctx context.Context, filter TemplateFilter) ([]TemplateRow, error) {
	query := `
		SELECT id, client_id, source_column_order, source_column_name, file_group_name,
		       mcdm_column_name, in_model, mcdm_table, custom_field_type,
		       data_profile_info, source_column_formatting, skipped_flag, notes,
		       created_at, updated_at
		FROM crosswalk_template
		WHERE 1=1`
	var args []interface{}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.FileGroup != "" {
		args = append(args, filter.FileGroup)
		query += fmt.Sprintf(" AND file_group_name = $%d", len(args))
	}

	query += " ORDER BY source_column_order, source_column_name"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []TemplateRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list crosswalk rows: %w", err)
	}
	return rows, nil
}

// Get returns one template row by id.
func (repo *TemplateRepository) Get(ctx context.Context, id int) (*TemplateRow, error) {
	var row TemplateRow
	query := `
		SELECT id, client_id, source_column_order, source_column_name, file_group_name,
		       mcdm_column_name, in_model, mcdm_table, custom_field_type,
		       data_profile_info, source_column_formatting, skipped_flag, notes,
		       created_at, updated_at
		FROM crosswalk_template
		WHERE id = $1`

	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get crosswalk row %d: %w", id, err)
	}
	return &row, nil
}

// Update applies the allowed subset of the given field changes to a row.
func (repo *TemplateRepository) Update(ctx context.Context, id int, changes map[string]interface{}) error {
	if _, err := repo.Get(ctx, id); err != nil {
		return err
	}

	var sets []string
	var args []interface{}
	for field, value := range changes {
		if !slices.Contains(updatableFields, field) {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}
	if len(sets) == 0 {
		return fmt.Errorf("no valid fields to update")
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE crosswalk_template SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update crosswalk row %d: %w", id, err)
	}

	repo.log.Info().Int("id", id).Int("fields", len(sets)-1).Msg("Updated crosswalk row")
	return nil
}

// Duplicate copies a row, optionally reassigning the target table, and
// returns the new row id.
func (repo *TemplateRepository) Duplicate(ctx context.Context, id int, newTable string) (int, error) {
	original, err := repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if newTable == "" {
		newTable = original.MCDMTable
	}

	var newID int
	query := `
		INSERT INTO crosswalk_template (
			client_id, source_column_order, source_column_name, file_group_name,
			mcdm_column_name, in_model, mcdm_table, custom_field_type,
			data_profile_info, source_column_formatting, skipped_flag, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	if err := repo.db.GetContext(ctx, &newID, query,
		original.ClientID, original.SourceColumnOrder, original.SourceColumnName,
		original.FileGroupName, original.MCDMColumnName, original.InModel,
		newTable, original.CustomFieldType, original.DataProfileInfo,
		original.SourceColumnFormatting, original.SkippedFlag, original.Notes,
	); err != nil {
		return 0, fmt.Errorf("failed to duplicate crosswalk row %d: %w", id, err)
	}

	repo.log.Info().Int("id", id).Int("new_id", newID).Str("table", newTable).Msg("Duplicated crosswalk row")
	return newID, nil
}

// Clients returns the distinct clients with their mapping counts.
func (repo *TemplateRepository) Clients(ctx context.Context) ([]ClientCount, error) {
	var clients []ClientCount
	query := `
		SELECT client_id, COUNT(*) AS mapping_count
		FROM crosswalk_template
		WHERE client_id IS NOT NULL AND client_id != ''
		GROUP BY client_id
		ORDER BY client_id`

	if err := repo.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// FileGroups returns the distinct file groups, optionally per client.
func (repo *TemplateRepository) FileGroups(ctx context.Context, clientID string) ([]FileGroupCount, error) {
	query := `
		SELECT file_group_name, COUNT(*) AS mapping_count
		FROM crosswalk_template
		WHERE file_group_name IS NOT NULL AND file_group_name != ''`
	var args []interface{}

	if clientID != "" {
		args = append(args, clientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	query += " GROUP BY file_group_name ORDER BY file_group_name"

	var groups []FileGroupCount
	if err := repo.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list file groups: %w", err)
	}
	return groups, nil
}

// Summary aggregates crosswalk statistics.
func (repo *TemplateRepository) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM crosswalk_template", &summary.TotalMappings},
		{"SELECT COUNT(DISTINCT client_id) FROM crosswalk_template WHERE client_id IS NOT NULL", &summary.TotalClients},
		{"SELECT COUNT(DISTINCT file_group_name) FROM crosswalk_template WHERE file_group_name IS NOT NULL", &summary.TotalFileGroups},
		{"SELECT COUNT(*) FROM crosswalk_template WHERE skipped_flag = TRUE", &summary.SkippedFields},
	}
	for _, c := range counts {
		if err := repo.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("failed to aggregate crosswalk summary: %w", err)
		}
	}

	inModel, err := repo.distribution(ctx, `
		SELECT in_model AS key, COUNT(*) AS count
		FROM crosswalk_template
		GROUP BY in_model
		ORDER BY count DESC`)
	if err != nil {
		return nil, err
	}
	summary.InModelDistribution = inModel

	fileGroups, err := repo.distribution(ctx, `
		SELECT file_group_name AS key, COUNT(*) AS count
		FROM crosswalk_template
		GROUP BY file_group_name
		ORDER BY count DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	summary.FileGroupDistribution = fileGroups

	return summary, nil
}

func (repo *TemplateRepository) distribution(ctx context.Context, query string) ([]DistributionEntry, error) {
	rows, err := repo.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load distribution: %w", err)
	}
	defer rows.Close()

	var entries []DistributionEntry
	for rows.Next() {
		var entry DistributionEntry
		if err := rows.Scan(&entry.Key, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Search scans the requested fields for a term and returns up to 50 rows.
func (repo *TemplateRepository) Search(ctx context.Context, term string, fields []string) ([]TemplateRow, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		fields = []string{"source_column_name", "mcdm_column_name"}
	}

	var conditions []string
	var args []interface{}
	for _, field := range fields {
		if !slices.Contains(searchableFields, field) {
			continue
		}
		args = append(args, "%"+term+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", field, len(args)))
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, client_id, source_column_order, source_column_name, file_group_name,
		       mcdm_column_name, in_model, mcdm_table, custom_field_type,
		       data_profile_info, source_column_formatting, skipped_flag, notes,
		       created_at, updated_at
		FROM crosswalk_template
		WHERE (%s)
		ORDER BY source_column_order, source_column_name
		LIMIT 50`, strings.Join(conditions, " OR "))

	var results []TemplateRow
	if err := repo.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search crosswalk rows: %w", err)
	}
	return results, nil
}
