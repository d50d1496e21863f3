package export

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

type staticFields struct {
	fields []datamodel.Field
}

func (s staticFields) AllFields() []datamodel.Field { return s.fields }

func newGenerator() *SnowflakeService {
	fields := staticFields{fields: []datamodel.Field{
		{ColumnName: "member_id", DataType: "VARCHAR(50)"},
		{ColumnName: "paid_amount", DataType: "NUMBER"},
		{ColumnName: "service_date", DataType: "DATE"},
		{ColumnName: "loaded_at", DataType: "TIMESTAMP"},
	}}
	return &SnowflakeService{
		fields: fields,
		log:    zerolog.Nop(),
		now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func sampleMappings() []crosswalk.TemplateRow {
	return []crosswalk.TemplateRow{
		{ClientID: "ACME", FileGroupName: "CLAIMS", SourceColumnName: "MBR_ID", MCDMColumnName: "member_id", DataProfileInfo: "member's number"},
		{ClientID: "ACME", FileGroupName: "CLAIMS", SourceColumnName: "AMT", MCDMColumnName: "paid_amount"},
		{ClientID: "ACME", FileGroupName: "ELIGIBILITY", SourceColumnName: "SVC_DT", MCDMColumnName: "service_date", SourceColumnFormatting: "TRIM(SVC_DT)"},
	}
}

func TestSnowflakeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "STRING", snowflakeType("VARCHAR(255)"))
	assert.Equal(t, "NUMBER(38,0)", snowflakeType("NUMBER"))
	assert.Equal(t, "NUMBER(18,2)", snowflakeType("number(18,2)"))
	assert.Equal(t, "TIMESTAMP_NTZ", snowflakeType("TIMESTAMP"))
	assert.Equal(t, "DATE", snowflakeType("DATE"))
	assert.Equal(t, "BOOLEAN", snowflakeType("BOOLEAN"))
	assert.Equal(t, "STRING", snowflakeType("something else"))
}

func TestGenerateCreateTable(t *testing.T) {
	t.Parallel()
	svc := newGenerator()

	sql := svc.generateCreateTable(sampleMappings(), "ACME_CLAIMS")

	assert.Contains(t, sql, "CREATE OR REPLACE TABLE ACME_CLAIMS (")
	assert.Contains(t, sql, "member_id STRING COMMENT 'member''s number'")
	assert.Contains(t, sql, "paid_amount NUMBER(38,0)")
	assert.Contains(t, sql, "service_date DATE")
	assert.Contains(t, sql, "COMMENT ON TABLE ACME_CLAIMS IS 'Auto-generated from crosswalk mappings - Client: ACME';")
	assert.Contains(t, sql, "2026-03-01T12:00:00Z")
}

func TestGenerateInsertMapping(t *testing.T) {
	t.Parallel()
	svc := newGenerator()

	sql := svc.generateInsertMapping(sampleMappings(), "ACME_CLAIMS")

	assert.Contains(t, sql, "INSERT INTO ACME_CLAIMS (")
	assert.Contains(t, sql, "    member_id")
	assert.Contains(t, sql, "TRY_CAST(AMT AS NUMBER)")
	assert.Contains(t, sql, "TO_DATE(TRIM(SVC_DT))", "formatting expression wins over the bare column")
	assert.Contains(t, sql, "FROM source_table")
}

func TestGenerateFullETL(t *testing.T) {
	t.Parallel()
	svc := newGenerator()

	sql := svc.generateFullETL(sampleMappings(), "ACME_TARGET", "ACME")

	assert.Contains(t, sql, "CREATE OR REPLACE VIEW ACME_TARGET_ETL AS")
	assert.Contains(t, sql, "claims_data AS (")
	assert.Contains(t, sql, "eligibility_data AS (")
	assert.Contains(t, sql, "MBR_ID AS member_id")
	assert.Contains(t, sql, "TRIM(SVC_DT) AS service_date")
	assert.Contains(t, sql, "FROM raw.claims_table")
	assert.Contains(t, sql, "LEFT JOIN eligibility_data ON claims_data.some_sid = eligibility_data.some_sid")

	// File groups keep their first-seen order in the CTE list.
	require.Less(t, strings.Index(sql, "claims_data AS ("), strings.Index(sql, "eligibility_data AS ("))
}

func TestEscapeSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "it''s", escapeSQL("it's"))
	assert.Equal(t, "plain", escapeSQL("plain"))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
