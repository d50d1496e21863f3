package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

// FieldSource provides the target dictionary.
type FieldSource interface {
	AllFields() []datamodel.Field
}

// SnowflakeService generates Snowflake SQL from the crosswalk template.
type SnowflakeService struct {
	templates *crosswalk.TemplateRepository
	fields    FieldSource
	exports   *SnowflakeExportRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewSnowflakeService creates a new SnowflakeService.
func NewSnowflakeService(
	templates *crosswalk.TemplateRepository,
	fields FieldSource,
	exports *SnowflakeExportRepository,
	log zerolog.Logger,
) *SnowflakeService {
	return &SnowflakeService{
		templates: templates,
		fields:    fields,
		exports:   exports,
		log:       log.With().Str("component", "snowflake_service").Logger(),
		now:       time.Now,
	}
}

// Generate renders the requested SQL artifact from the client's mappings and
// persists it in the export log.
func (svc *SnowflakeService) Generate(ctx context.Context, req SnowflakeRequest) (*SnowflakeExport, error) {
	rows, err := svc.templates.List(ctx, crosswalk.TemplateFilter{
		ClientID:  req.ClientID,
		FileGroup: req.FileGroup,
		Limit:     1000,
	})
	if err != nil {
		return nil, err
	}

	mappings := make([]crosswalk.TemplateRow, 0, len(rows))
	for _, row := range rows {
		if row.SkippedFlag || row.MCDMColumnName == "" {
			continue
		}
		mappings = append(mappings, row)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("no ready mappings found for client %s", req.ClientID)
	}

	var sqlContent string
	switch req.ExportType {
	case ExportCreateTable:
		sqlContent = svc.generateCreateTable(mappings, req.TableName)
	case ExportInsertMapping:
		sqlContent = svc.generateInsertMapping(mappings, req.TableName)
	case ExportFullETL:
		sqlContent = svc.generateFullETL(mappings, req.TableName, req.ClientID)
	default:
		return nil, fmt.Errorf("invalid export type: %s", req.ExportType)
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "SYSTEM"
	}

	record := SnowflakeExport{
		ClientID:   req.ClientID,
		FileGroup:  req.FileGroup,
		ExportType: req.ExportType,
		SQLContent: sqlContent,
		TableName:  req.TableName,
		CreatedBy:  createdBy,
	}
	saved, err := svc.exports.Save(ctx, record)
	if err != nil {
		return nil, err
	}

	svc.log.Info().
		Str("client_id", req.ClientID).
		Str("export_type", req.ExportType).
		Int("mappings", len(mappings)).
		Msg("Generated Snowflake SQL")

	return saved, nil
}

// snowflakeType maps a model or inferred data type onto a Snowflake type.
func snowflakeType(dataType string) string {
	upper := strings.ToUpper(dataType)
	switch {
	case strings.Contains(upper, "VARCHAR"):
		return "STRING"
	case strings.Contains(upper, "NUMBER"):
		if strings.Contains(upper, ",") {
			return upper
		}
		return "NUMBER(38,0)"
	case strings.Contains(upper, "TIMESTAMP"):
		return "TIMESTAMP_NTZ"
	case strings.Contains(upper, "DATE"):
		return "DATE"
	case strings.Contains(upper, "BOOLEAN"):
		return "BOOLEAN"
	default:
		return "STRING"
	}
}

// modelDataType resolves the target column's declared data type, falling
// back to VARCHAR(255) when the dictionary has no entry.
func (svc *SnowflakeService) modelDataType(columnName string) string {
	for _, f := range svc.fields.AllFields() {
		if strings.EqualFold(f.ColumnName, columnName) {
			return f.DataType
		}
	}
	return "VARCHAR(255)"
}

func (svc *SnowflakeService) generateCreateTable(mappings []crosswalk.TemplateRow, tableName string) string {
	lines := []string{
		"-- Snowflake CREATE TABLE generated from crosswalk mappings",
		fmt.Sprintf("-- Generated at: %s", svc.now().Format(time.RFC3339)),
		"",
		fmt.Sprintf("CREATE OR REPLACE TABLE %s (", tableName),
	}

	var columnDefs []string
	for _, m := range mappings {
		def := fmt.Sprintf("    %s %s", m.MCDMColumnName, snowflakeType(svc.modelDataType(m.MCDMColumnName)))
		if m.DataProfileInfo != "" {
			comment := escapeSQL(m.DataProfileInfo)
			if len(comment) > 255 {
				comment = comment[:255]
			}
			def += fmt.Sprintf(" COMMENT '%s'", comment)
		}
		columnDefs = append(columnDefs, def)
	}

	lines = append(lines, strings.Join(columnDefs, ",\n"), ");", "")
	lines = append(lines, fmt.Sprintf(
		"COMMENT ON TABLE %s IS 'Auto-generated from crosswalk mappings - Client: %s';",
		tableName, mappings[0].ClientID), "")

	return strings.Join(lines, "\n")
}

func (svc *SnowflakeService) generateInsertMapping(mappings []crosswalk.TemplateRow, tableName string) string {
	lines := []string{
		"-- Snowflake INSERT SELECT generated from crosswalk mappings",
		fmt.Sprintf("-- Generated at: %s", svc.now().Format(time.RFC3339)),
		"",
		fmt.Sprintf("INSERT INTO %s (", tableName),
	}

	var targetColumns []string
	var sourceExprs []string
	for _, m := range mappings {
		targetColumns = append(targetColumns, "    "+m.MCDMColumnName)

		expr := m.SourceColumnName
		if m.SourceColumnFormatting != "" {
			expr = m.SourceColumnFormatting
		}

		dataType := strings.ToUpper(svc.modelDataType(m.MCDMColumnName))
		switch {
		case strings.Contains(dataType, "TIMESTAMP"):
			expr = fmt.Sprintf("TO_TIMESTAMP(%s)", expr)
		case strings.Contains(dataType, "DATE"):
			expr = fmt.Sprintf("TO_DATE(%s)", expr)
		case strings.Contains(dataType, "NUMBER"):
			expr = fmt.Sprintf("TRY_CAST(%s AS NUMBER)", expr)
		}
		sourceExprs = append(sourceExprs, "    "+expr)
	}

	lines = append(lines,
		strings.Join(targetColumns, ",\n"),
		")",
		"SELECT",
		strings.Join(sourceExprs, ",\n"),
		"FROM source_table -- Replace with actual source table name;",
		"",
	)
	return strings.Join(lines, "\n")
}

func (svc *SnowflakeService) generateFullETL(mappings []crosswalk.TemplateRow, tableName, clientID string) string {
	// Group mappings by file group, preserving first-seen order.
	var groupOrder []string
	groups := make(map[string][]crosswalk.TemplateRow)
	for _, m := range mappings {
		fg := m.FileGroupName
		if fg == "" {
			fg = "DEFAULT"
		}
		if _, seen := groups[fg]; !seen {
			groupOrder = append(groupOrder, fg)
		}
		groups[fg] = append(groups[fg], m)
	}

	lines := []string{
		"-- Complete ETL SQL generated from crosswalk mappings",
		fmt.Sprintf("-- Client: %s", clientID),
		fmt.Sprintf("-- Generated at: %s", svc.now().Format(time.RFC3339)),
		"",
		fmt.Sprintf("CREATE OR REPLACE VIEW %s_ETL AS", tableName),
		"WITH",
	}

	for i, fg := range groupOrder {
		cteName := strings.ToLower(fg) + "_data"
		lines = append(lines, fmt.Sprintf("%s AS (", cteName), "  SELECT")

		var selects []string
		for _, m := range groups[fg] {
			expr := m.SourceColumnName
			if m.SourceColumnFormatting != "" {
				expr = m.SourceColumnFormatting
			}
			selects = append(selects, fmt.Sprintf("    %s AS %s", expr, m.MCDMColumnName))
		}
		lines = append(lines,
			strings.Join(selects, ",\n"),
			fmt.Sprintf("  FROM raw.%s_table", strings.ToLower(fg)),
			")",
		)
		if i < len(groupOrder)-1 {
			lines = append(lines, ",")
		}
	}

	first := strings.ToLower(groupOrder[0]) + "_data"
	lines = append(lines,
		"",
		"SELECT",
		"  *",
		fmt.Sprintf("FROM %s", first),
	)
	for _, fg := range groupOrder[1:] {
		other := strings.ToLower(fg) + "_data"
		lines = append(lines, fmt.Sprintf("LEFT JOIN %s ON %s.some_sid = %s.some_sid", other, first, other))
	}
	lines = append(lines, ";")

	return strings.Join(lines, "\n")
}
