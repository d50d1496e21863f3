package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/dsl"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/profile"
)

var csvHeader = []string{
	"client_id", "source_column", "model_table", "model_column",
	"is_custom_field", "custom_field_name", "transform_expression",
	"regex_rules", "notes",
}

// Service renders a profile's crosswalk into export artifacts.
type Service struct {
	profiles *profile.Repository
	mappings *crosswalk.MappingRepository
	log      zerolog.Logger
}

// NewService creates a new export service.
func NewService(profiles *profile.Repository, mappings *crosswalk.MappingRepository, log zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		mappings: mappings,
		log:      log.With().Str("component", "export_service").Logger(),
	}
}

// exportRow is one flattened mapping with its joined source column and rules.
type exportRow struct {
	mapping      crosswalk.Mapping
	sourceColumn string
	rules        []crosswalk.RegexRule
}

func (svc *Service) collectRows(ctx context.Context, profileID int) (*profile.Profile, []exportRow, error) {
	p, err := svc.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	mappings, err := svc.mappings.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	columns, err := svc.profiles.SourceColumns(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	columnNames := make(map[int]string, len(columns))
	for _, col := range columns {
		columnNames[col.ID] = col.SourceColumn
	}

	rows := make([]exportRow, 0, len(mappings))
	for _, m := range mappings {
		rules, err := svc.mappings.RulesBySourceColumn(ctx, m.SourceColumnID)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, exportRow{
			mapping:      m,
			sourceColumn: columnNames[m.SourceColumnID],
			rules:        rules,
		})
	}
	return p, rows, nil
}

// CrosswalkCSV renders the crosswalk as a CSV document.
func (svc *Service) CrosswalkCSV(ctx context.Context, profileID int) (string, error) {
	p, rows, err := svc.collectRows(ctx, profileID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			p.ClientID,
			row.sourceColumn,
			row.mapping.ModelTable,
			row.mapping.ModelColumn,
			strconv.FormatBool(row.mapping.IsCustomField),
			row.mapping.CustomFieldName,
			row.mapping.TransformExpression,
			encodeRules(row.rules),
			row.mapping.Notes,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

// CrosswalkXLSX renders the crosswalk as an XLSX workbook.
func (svc *Service) CrosswalkXLSX(ctx context.Context, profileID int) ([]byte, error) {
	p, rows, err := svc.collectRows(ctx, profileID)
	if err != nil {
		return nil, err
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "Crosswalk"
	if err := workbook.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			p.ClientID,
			row.sourceColumn,
			row.mapping.ModelTable,
			row.mapping.ModelColumn,
			row.mapping.IsCustomField,
			row.mapping.CustomFieldName,
			row.mapping.TransformExpression,
			encodeRules(row.rules),
			row.mapping.Notes,
		}
		if err := workbook.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONConfig renders the crosswalk as a JSON configuration.
func (svc *Service) JSONConfig(ctx context.Context, profileID int) (*JSONConfig, error) {
	p, rows, err := svc.collectRows(ctx, profileID)
	if err != nil {
		return nil, err
	}

	config := &JSONConfig{
		ClientID: p.ClientID,
		Profile:  p.Name,
		Mappings: make([]JSONMapping, 0, len(rows)),
	}

	for _, row := range rows {
		m := JSONMapping{
			SourceColumn: row.sourceColumn,
			Target: JSONTarget{
				Table:  row.mapping.ModelTable,
				Column: row.mapping.ModelColumn,
			},
			Custom:     row.mapping.IsCustomField,
			Transform:  row.mapping.TransformExpression,
			RegexRules: make([]JSONRegex, 0, len(row.rules)),
		}
		if row.mapping.IsCustomField {
			m.CustomFieldName = row.mapping.CustomFieldName
		}
		for _, rule := range row.rules {
			m.RegexRules = append(m.RegexRules, JSONRegex{
				Name:        rule.RuleName,
				Pattern:     rule.Pattern,
				Flags:       rule.Flags,
				Description: rule.Description,
			})
		}
		config.Mappings = append(config.Mappings, m)
	}
	return config, nil
}

// SQLScript renders the crosswalk as an idempotent SQL script: table DDL,
// upserts and a transformation view with DSL-translated expressions.
func (svc *Service) SQLScript(ctx context.Context, profileID int) (string, error) {
	p, rows, err := svc.collectRows(ctx, profileID)
	if err != nil {
		return "", err
	}

	var lines []string
	lines = append(lines,
		"-- Crosswalk table creation (idempotent)",
		"CREATE TABLE IF NOT EXISTS crosswalk_mappings (",
		"    id INTEGER PRIMARY KEY,",
		"    client_id VARCHAR(50),",
		"    source_column VARCHAR(255),",
		"    model_table VARCHAR(100),",
		"    model_column VARCHAR(100),",
		"    is_custom_field BOOLEAN DEFAULT FALSE,",
		"    custom_field_name VARCHAR(255),",
		"    transform_expression TEXT,",
		"    regex_json TEXT,",
		"    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,",
		"    UNIQUE(client_id, source_column)",
		");",
		"",
		"-- Upsert crosswalk mappings",
	)

	clientID := p.ClientID
	if clientID == "" {
		clientID = "DEFAULT"
	}

	for _, row := range rows {
		lines = append(lines,
			"INSERT OR REPLACE INTO crosswalk_mappings (",
			"    client_id, source_column, model_table, model_column,",
			"    is_custom_field, custom_field_name, transform_expression, regex_json",
			") VALUES (",
			fmt.Sprintf("    '%s',", escapeSQL(clientID)),
			fmt.Sprintf("    '%s',", escapeSQL(row.sourceColumn)),
			fmt.Sprintf("    '%s',", escapeSQL(row.mapping.ModelTable)),
			fmt.Sprintf("    '%s',", escapeSQL(row.mapping.ModelColumn)),
			fmt.Sprintf("    %d,", boolToInt(row.mapping.IsCustomField)),
			fmt.Sprintf("    '%s',", escapeSQL(row.mapping.CustomFieldName)),
			fmt.Sprintf("    '%s',", escapeSQL(row.mapping.TransformExpression)),
			fmt.Sprintf("    '%s'", escapeSQL(encodeRules(row.rules))),
			");",
			"",
		)
	}

	viewClient := p.ClientID
	if viewClient == "" {
		viewClient = "client"
	}
	lines = append(lines,
		"-- Example transformation view",
		fmt.Sprintf("CREATE OR REPLACE VIEW %s_transformed AS", viewClient),
		"SELECT",
	)

	var selects []string
	for _, row := range rows {
		if row.sourceColumn == "" {
			continue
		}
		targetCol := row.mapping.ModelColumn
		if row.mapping.IsCustomField {
			targetCol = row.mapping.CustomFieldName
		}
		if row.mapping.TransformExpression != "" {
			selects = append(selects, fmt.Sprintf("    %s AS %s",
				dsl.TranslateToSQL(row.mapping.TransformExpression, nil), targetCol))
		} else {
			selects = append(selects, fmt.Sprintf("    %s AS %s", row.sourceColumn, targetCol))
		}
	}
	if len(selects) > 0 {
		lines = append(lines, strings.Join(selects, ",\n"))
	} else {
		lines = append(lines, "    *")
	}

	rawTable := p.RawTableName
	if rawTable == "" {
		rawTable = "source_table"
	}
	lines = append(lines, fmt.Sprintf("FROM %s;", rawTable))

	return strings.Join(lines, "\n"), nil
}

func encodeRules(rules []crosswalk.RegexRule) string {
	encoded := make([]JSONRegex, 0, len(rules))
	for _, rule := range rules {
		encoded = append(encoded, JSONRegex{
			Name:        rule.RuleName,
			Pattern:     rule.Pattern,
			Flags:       rule.Flags,
			Description: rule.Description,
		})
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
