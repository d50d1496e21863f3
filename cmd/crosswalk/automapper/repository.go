package automapper

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// CorrectionRepository persists user corrections and keeps them cached in
// memory for the scorer. Writes append a row and reload the full list so
// the next scoring call sees the correction immediately.
type CorrectionRepository struct {
	db          *sqlx.DB
	log         zerolog.Logger
	mu          sync.RWMutex
	corrections []Correction
}

// NewCorrectionRepository creates a new CorrectionRepository.
func NewCorrectionRepository(db *sqlx.DB, log zerolog.Logger) *CorrectionRepository {
	return &CorrectionRepository{
		db:  db,
		log: log.With().Str("component", "correction_repository").Logger(),
	}
}

// Load reads all corrections into the in-memory cache.
func (repo *CorrectionRepository) Load(ctx context.Context) error {
	var corrections []Correction
	query := `
		SELECT id, source_column, correct_target_table, correct_target_column,
		       incorrect_suggestion, created_at
		FROM mapping_corrections
		ORDER BY created_at`

	if err := repo.db.SelectContext(ctx, &corrections, query); err != nil {
		return fmt.Errorf("failed to load correction history: %w", err)
	}

	repo.mu.Lock()
	repo.corrections = corrections
	repo.mu.Unlock()

	repo.log.Info().Int("corrections", len(corrections)).Msg("Loaded correction history")
	return nil
}

// All returns the cached correction history.
func (repo *CorrectionRepository) All() []Correction {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	result := make([]Correction, len(repo.corrections))
	copy(result, repo.corrections)
	return result
}

// Record appends a correction and reloads the cache.
func (repo *CorrectionRepository) Record(ctx context.Context, correction Correction) error {
	query := `
		INSERT INTO mapping_corrections
			(source_column, correct_target_table, correct_target_column, incorrect_suggestion)
		VALUES ($1, $2, $3, $4)`

	if _, err := repo.db.ExecContext(ctx, query,
		correction.SourceColumn,
		correction.CorrectTargetTable,
		correction.CorrectTargetColumn,
		correction.IncorrectSuggestion,
	); err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	repo.log.Info().
		Str("source_column", correction.SourceColumn).
		Str("target", correction.CorrectTargetTable+"."+correction.CorrectTargetColumn).
		Msg("Recorded mapping correction")

	return repo.Load(ctx)
}
