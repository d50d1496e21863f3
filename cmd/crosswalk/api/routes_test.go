package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/automapper"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

type staticFields struct {
	fields []datamodel.Field
}

func (s staticFields) AllFields() []datamodel.Field { return s.fields }

type memoryCorrections struct {
	corrections []automapper.Correction
}

func (m *memoryCorrections) All() []automapper.Correction { return m.corrections }

func (m *memoryCorrections) Record(ctx context.Context, c automapper.Correction) error {
	m.corrections = append(m.corrections, c)
	return nil
}

func newTestHandler() http.Handler {
	fields := staticFields{fields: []datamodel.Field{
		{SchemaLayer: "base", TableName: "claims", ColumnName: "member_id", DataType: "VARCHAR", Description: "Identifier of the enrolled member"},
		{SchemaLayer: "base", TableName: "claims", ColumnName: "claim_number", DataType: "VARCHAR", Description: "Unique identifier for the claim"},
	}}
	autoMapper := automapper.NewService(fields, &memoryCorrections{}, nil, zerolog.Nop())

	rt := NewRouter(autoMapper, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, zerolog.Nop())
	return rt.SetupRoutes()
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSuggestSingleEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	t.Run("returns ranked suggestions", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auto-mapping/suggest-single",
			strings.NewReader(`{"column_name": "member_id", "sample_values": ["10000001"]}`))
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			ColumnName  string                  `json:"column_name"`
			Suggestions []automapper.Suggestion `json:"suggestions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "member_id", body.ColumnName)
		require.NotEmpty(t, body.Suggestions)
		assert.Equal(t, "member_id", body.Suggestions[0].TargetColumn)
	})

	t.Run("missing column name is rejected", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auto-mapping/suggest-single",
			strings.NewReader(`{"sample_values": []}`))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auto-mapping/suggest-single", strings.NewReader("{"))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBulkSuggestEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auto-mapping/suggest",
		strings.NewReader(`{"source_columns": [{"column_name": "member_id"}, {"column_name": "clm_num"}]}`))
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Suggestions map[string][]automapper.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Suggestions, "member_id")
	assert.Contains(t, body.Suggestions, "clm_num")
}

func TestCorrectionEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auto-mapping/correct",
		strings.NewReader(`{"source_column": "mbr_no", "correct_target_table": "claims", "correct_target_column": "member_id"}`))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	statsRec := httptest.NewRecorder()
	handler.ServeHTTP(statsRec, httptest.NewRequest("GET", "/api/auto-mapping/stats", nil))
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats automapper.Stats
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.CorrectionsLearned)
	assert.Equal(t, 2, stats.DataModelFields)
}

func TestValidateExpressionEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/dsl/validate",
		strings.NewReader(`{"expression": "upper(col('name')"}`))
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, "Unbalanced parentheses", result.Message)
}

func TestTranslateExpressionEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	t.Run("translates with a column mapping", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/dsl/translate",
			strings.NewReader(`{"expression": "upper(col('member_id'))", "column_mapping": {"member_id": "src.MEMBER_ID"}}`))
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success       bool   `json:"success"`
			SQLExpression string `json:"sql_expression"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "UPPER(src.MEMBER_ID)", body.SQLExpression)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/dsl/translate", strings.NewReader("{"))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateRawTableNameEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/api/profiles/1/raw-table-name", strings.NewReader("{"))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric id does not match the route", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/api/profiles/abc/raw-table-name",
			strings.NewReader(`{"raw_table_name": "RAW.CLAIMS"}`))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRegexTestEndpointRequiresPattern(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/source-columns/1/regex/test?value=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
