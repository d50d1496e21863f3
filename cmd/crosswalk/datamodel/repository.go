package datamodel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// FieldRepository loads and caches the PI20 data model fields.
// The dictionary is read-mostly: it is loaded once at startup and kept
// in memory, with Load callable again after reseeding.
type FieldRepository struct {
	db     *sqlx.DB
	log    zerolog.Logger
	mu     sync.RWMutex
	fields []Field
}

// NewFieldRepository creates a new FieldRepository.
func NewFieldRepository(db *sqlx.DB, log zerolog.Logger) *FieldRepository {
	return &FieldRepository{
		db:  db,
		log: log.With().Str("component", "datamodel_repository").Logger(),
	}
}

// Load reads all data model fields into the in-memory cache.
func (repo *FieldRepository) Load(ctx context.Context) error {
	var fields []Field
	query := `
		SELECT id, schema_layer, table_name, column_name, data_type, column_order,
		       description, is_standard_field, is_case_sensitive, is_mandatory,
		       masking_type, in_crosswalk, key_type
		FROM pi20_data_model
		ORDER BY table_name, column_order`

	if err := repo.db.SelectContext(ctx, &fields, query); err != nil {
		return fmt.Errorf("failed to load data model fields: %w", err)
	}

	repo.mu.Lock()
	repo.fields = fields
	repo.mu.Unlock()

	repo.log.Info().Int("fields", len(fields)).Msg("Loaded data model fields")
	return nil
}

// AllFields returns the cached dictionary.
func (repo *FieldRepository) AllFields() []Field {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	result := make([]Field, len(repo.fields))
	copy(result, repo.fields)
	return result
}

// FindFields returns cached fields matching the filter.
func (repo *FieldRepository) FindFields(filter FieldFilter) []Field {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var result []Field
	search := strings.ToLower(filter.Search)
	for _, f := range repo.fields {
		if filter.SchemaLayer != "" && f.SchemaLayer != filter.SchemaLayer {
			continue
		}
		if filter.TableName != "" && f.TableName != filter.TableName {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(f.ColumnName), search) &&
			!strings.Contains(strings.ToLower(f.Description), search) {
			continue
		}
		result = append(result, f)
	}
	return result
}

// FieldsByColumn returns all dictionary entries with the given column name,
// matched case-insensitively. Column names repeat across schema layers.
func (repo *FieldRepository) FieldsByColumn(columnName string) []Field {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var result []Field
	for _, f := range repo.fields {
		if strings.EqualFold(f.ColumnName, columnName) {
			result = append(result, f)
		}
	}
	return result
}

// Tables returns the distinct table names, optionally limited to one schema layer.
func (repo *FieldRepository) Tables(schemaLayer string) []string {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	seen := make(map[string]bool)
	var tables []string
	for _, f := range repo.fields {
		if schemaLayer != "" && f.SchemaLayer != schemaLayer {
			continue
		}
		if !seen[f.TableName] {
			seen[f.TableName] = true
			tables = append(tables, f.TableName)
		}
	}
	return tables
}

// SchemaLayers returns the distinct schema layers (RAW, CLEANSE, CURATED).
func (repo *FieldRepository) SchemaLayers() []string {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	seen := make(map[string]bool)
	var layers []string
	for _, f := range repo.fields {
		if !seen[f.SchemaLayer] {
			seen[f.SchemaLayer] = true
			layers = append(layers, f.SchemaLayer)
		}
	}
	return layers
}

// SeedFromCSV replaces the pi20_data_model table with the contents of a
// dictionary CSV and reloads the cache. Expected header:
// schema_layer,table_name,column_name,data_type,column_order,description,
// is_standard_field,is_case_sensitive,is_mandatory,masking_type,in_crosswalk,key_type
func (repo *FieldRepository) SeedFromCSV(ctx context.Context, csvPath string) error {
	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open data model CSV %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read data model CSV header: %w", err)
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE pi20_data_model"); err != nil {
		return fmt.Errorf("failed to truncate pi20_data_model: %w", err)
	}

	insert := `
		INSERT INTO pi20_data_model (
			schema_layer, table_name, column_name, data_type, column_order,
			description, is_standard_field, is_case_sensitive, is_mandatory,
			masking_type, in_crosswalk, key_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read data model CSV row: %w", err)
		}
		if len(record) < 12 {
			repo.log.Warn().Int("row", rows+2).Msg("Skipping data model CSV row with insufficient columns")
			continue
		}

		order, _ := strconv.Atoi(strings.TrimSpace(record[4]))
		if _, err := tx.ExecContext(ctx, insert,
			strings.TrimSpace(record[0]),
			strings.TrimSpace(record[1]),
			strings.TrimSpace(record[2]),
			strings.TrimSpace(record[3]),
			order,
			strings.TrimSpace(record[5]),
			parseCSVBool(record[6]),
			parseCSVBool(record[7]),
			parseCSVBool(record[8]),
			strings.TrimSpace(record[9]),
			parseCSVBool(record[10]),
			strings.TrimSpace(record[11]),
		); err != nil {
			return fmt.Errorf("failed to insert data model row: %w", err)
		}
		rows++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit data model seed: %w", err)
	}

	repo.log.Info().Int("rows", rows).Str("file", csvPath).Msg("Seeded data model from CSV")
	return repo.Load(ctx)
}

func parseCSVBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "T", "1":
		return true
	default:
		return false
	}
}
