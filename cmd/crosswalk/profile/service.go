package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/fileparser"
)

// Service wires file parsing into profile persistence.
type Service struct {
	repo   *Repository
	parser *fileparser.Parser
	log    zerolog.Logger
}

// NewService creates a new profile service.
func NewService(repo *Repository, parser *fileparser.Parser, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		parser: parser,
		log:    log.With().Str("component", "profile_service").Logger(),
	}
}

// IngestFile parses an uploaded CSV/XLSX file and replaces the profile's
// source columns with the parsed schema. Returns the ordered column names.
func (svc *Service) IngestFile(ctx context.Context, profileID int, content []byte, filename string) ([]string, error) {
	if _, err := svc.repo.Get(ctx, profileID); err != nil {
		return nil, err
	}

	columnNames, columnData, err := svc.parser.ParseFile(content, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	columns := make([]SourceColumn, 0, len(columnNames))
	for _, name := range columnNames {
		info := columnData[name]
		samples, err := json.Marshal(info.SampleValues)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sample values for %s: %w", name, err)
		}
		columns = append(columns, SourceColumn{
			ProfileID:    profileID,
			SourceColumn: name,
			SampleValues: string(samples),
			InferredType: info.InferredType,
		})
	}

	if err := svc.repo.ReplaceSourceColumns(ctx, profileID, columns, true); err != nil {
		return nil, err
	}

	svc.log.Info().
		Int("profile_id", profileID).
		Str("file", filename).
		Int("columns", len(columnNames)).
		Msg("Ingested source file")

	return columnNames, nil
}

// IngestSchema replaces the profile's source columns from a plain text list
// of column names, one per line. No sample data is available in this mode.
func (svc *Service) IngestSchema(ctx context.Context, profileID int, schemaText string) ([]string, error) {
	if _, err := svc.repo.Get(ctx, profileID); err != nil {
		return nil, err
	}

	columnNames := fileparser.ParseSchemaList(schemaText)
	if len(columnNames) == 0 {
		return nil, fmt.Errorf("schema list contains no column names")
	}

	columns := make([]SourceColumn, 0, len(columnNames))
	for _, name := range columnNames {
		columns = append(columns, SourceColumn{
			ProfileID:    profileID,
			SourceColumn: name,
			SampleValues: "[]",
			InferredType: "string",
		})
	}

	if err := svc.repo.ReplaceSourceColumns(ctx, profileID, columns, false); err != nil {
		return nil, err
	}
	return columnNames, nil
}

// DecodedSamples decodes the stored sample values of a source column.
func (col SourceColumn) DecodedSamples() []string {
	var samples []string
	if err := json.Unmarshal([]byte(col.SampleValues), &samples); err != nil {
		return nil
	}
	return samples
}
