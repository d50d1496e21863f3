package fileparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// maxSampleValues limits how many non-empty values are kept per column.
const maxSampleValues = 10

// ColumnInfo holds the sample values and inferred type of one parsed column.
type ColumnInfo struct {
	SampleValues []string `json:"sample_values"`
	InferredType string   `json:"inferred_type"`
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`),
}

var boolValues = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true,
	"1": true, "0": true, "t": true, "f": true, "y": true, "n": true,
}

// Parser extracts column names, sample values and inferred types from
// uploaded source files.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a new Parser.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log.With().Str("component", "file_parser").Logger()}
}

// ParseFile parses an uploaded CSV or XLSX file and returns the ordered
// column names plus per-column sample data.
func (p *Parser) ParseFile(content []byte, filename string) ([]string, map[string]ColumnInfo, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return p.parseCSV(content)
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return p.parseExcel(content)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}

func (p *Parser) parseCSV(content []byte) ([]string, map[string]ColumnInfo, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	values := make([][]string, len(columns))
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		for i := range columns {
			if i < len(row) {
				values[i] = append(values[i], row[i])
			}
		}
	}

	return columns, p.buildColumnData(columns, values), nil
}

func (p *Parser) parseExcel(content []byte) ([]string, map[string]ColumnInfo, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	columns := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		columns[i] = strings.TrimSpace(name)
	}

	values := make([][]string, len(columns))
	for _, row := range rows[1:] {
		for i := range columns {
			if i < len(row) {
				values[i] = append(values[i], row[i])
			}
		}
	}

	return columns, p.buildColumnData(columns, values), nil
}

func (p *Parser) buildColumnData(columns []string, values [][]string) map[string]ColumnInfo {
	data := make(map[string]ColumnInfo, len(columns))
	for i, col := range columns {
		nonEmpty := make([]string, 0, maxSampleValues)
		for _, v := range values[i] {
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				continue
			}
			nonEmpty = append(nonEmpty, trimmed)
		}

		samples := nonEmpty
		if len(samples) > maxSampleValues {
			samples = samples[:maxSampleValues]
		}

		data[col] = ColumnInfo{
			SampleValues: samples,
			InferredType: inferColumnType(nonEmpty),
		}
	}
	return data
}

// inferColumnType classifies a column as boolean, number, date or string
// from its non-empty values.
func inferColumnType(values []string) string {
	if len(values) == 0 {
		return "string"
	}

	checked := values
	if len(checked) > 20 {
		checked = checked[:20]
	}

	allBool := true
	for _, v := range checked {
		if !boolValues[strings.ToLower(v)] {
			allBool = false
			break
		}
	}
	if allBool {
		return "boolean"
	}

	allNumeric := true
	for _, v := range checked {
		cleaned := strings.ReplaceAll(v, ",", "")
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		return "number"
	}

	allDates := true
	for _, v := range checked {
		if !matchesDatePattern(v) {
			allDates = false
			break
		}
	}
	if allDates {
		return "date"
	}

	return "string"
}

func matchesDatePattern(value string) bool {
	for _, pattern := range datePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// ParseSchemaList parses a plain text list of column names, one per line.
func ParseSchemaList(schemaText string) []string {
	var columns []string
	for _, line := range strings.Split(schemaText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}
