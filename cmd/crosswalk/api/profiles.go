package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/profile"
)

const maxUploadBytes = 32 << 20

type createProfileRequest struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
}

func (rt *Router) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := rt.profiles.Create(r.Context(), req.Name, req.ClientID)
	if err != nil {
		rt.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create profile")
		respondWithError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := rt.profiles.List(r.Context())
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to list profiles")
		respondWithError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"profiles": profiles})
}

func (rt *Router) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	found, err := rt.profiles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to fetch profile")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

type rawTableNameRequest struct {
	RawTableName string `json:"raw_table_name"`
}

func (rt *Router) handleUpdateRawTableName(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req rawTableNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawTable := strings.TrimSpace(req.RawTableName)
	if err := rt.profiles.UpdateRawTableName(r.Context(), id, rawTable); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to update raw table name")
		respondWithError(w, http.StatusInternalServerError, "failed to update raw table name")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id":     id,
		"raw_table_name": rawTable,
	})
}

func (rt *Router) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	columns, err := rt.profileService.IngestFile(r.Context(), id, content, header.Filename)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Str("filename", header.Filename).Msg("Failed to ingest file")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id": id,
		"columns":    columns,
		"count":      len(columns),
	})
}

type ingestSchemaRequest struct {
	Schema string `json:"schema"`
}

func (rt *Router) handleIngestSchema(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req ingestSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	columns, err := rt.profileService.IngestSchema(r.Context(), id, req.Schema)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to ingest schema")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id": id,
		"columns":    columns,
		"count":      len(columns),
	})
}

type sourceColumnResponse struct {
	ID           int      `json:"id"`
	SourceColumn string   `json:"source_column"`
	SampleValues []string `json:"sample_values"`
	InferredType string   `json:"inferred_type"`
}

func (rt *Router) handleListSourceColumns(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	columns, err := rt.profiles.SourceColumns(r.Context(), id)
	if err != nil {
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to list source columns")
		respondWithError(w, http.StatusInternalServerError, "failed to list source columns")
		return
	}

	out := make([]sourceColumnResponse, 0, len(columns))
	for _, col := range columns {
		out = append(out, sourceColumnResponse{
			ID:           col.ID,
			SourceColumn: col.SourceColumn,
			SampleValues: col.DecodedSamples(),
			InferredType: col.InferredType,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"columns": out})
}

func (rt *Router) handleListMappings(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	mappings, err := rt.mappings.ListByProfile(r.Context(), id)
	if err != nil {
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to list mappings")
		respondWithError(w, http.StatusInternalServerError, "failed to list mappings")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"mappings": mappings})
}

type replaceMappingsRequest struct {
	Mappings []crosswalk.Mapping `json:"mappings"`
}

func (rt *Router) handleReplaceMappings(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req replaceMappingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := rt.mappings.Replace(r.Context(), id, req.Mappings); err != nil {
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to replace mappings")
		respondWithError(w, http.StatusInternalServerError, "failed to save mappings")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id": id,
		"saved":      len(req.Mappings),
	})
}

type warehouseSampleRequest struct {
	Limit int `json:"limit"`
}

func (rt *Router) handleWarehouseSample(w http.ResponseWriter, r *http.Request) {
	if rt.warehouseClient == nil {
		respondWithError(w, http.StatusServiceUnavailable, "warehouse access is not configured")
		return
	}

	id := pathID(r)
	found, err := rt.profiles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to fetch profile")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	if found.RawTableName == "" {
		respondWithError(w, http.StatusBadRequest, "profile has no raw table configured")
		return
	}

	var req warehouseSampleRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.Limit <= 0 {
		req.Limit = 10
	}

	rows, err := rt.warehouseClient.FetchSampleRows(r.Context(), found.RawTableName, req.Limit)
	if err != nil {
		rt.log.Error().Err(err).Str("rawTable", found.RawTableName).Msg("Failed to fetch warehouse sample")
		respondWithError(w, http.StatusBadGateway, "failed to fetch sample rows from warehouse")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"raw_table": found.RawTableName,
		"rows":      rows,
		"count":     len(rows),
	})
}

func (rt *Router) handleListRules(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	rules, err := rt.mappings.RulesBySourceColumn(r.Context(), id)
	if err != nil {
		rt.log.Error().Err(err).Int("sourceColumnID", id).Msg("Failed to list regex rules")
		respondWithError(w, http.StatusInternalServerError, "failed to list regex rules")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})
}

func (rt *Router) handleAddRule(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var rule crosswalk.RegexRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rule.RuleName == "" || rule.Pattern == "" {
		respondWithError(w, http.StatusBadRequest, "name and pattern are required")
		return
	}
	rule.SourceColumnID = id

	ruleID, err := rt.mappings.AddRule(r.Context(), rule)
	if err != nil {
		rt.log.Error().Err(err).Int("sourceColumnID", id).Msg("Failed to add regex rule")
		respondWithError(w, http.StatusInternalServerError, "failed to add regex rule")
		return
	}
	rule.ID = ruleID
	respondWithJSON(w, http.StatusCreated, rule)
}

func (rt *Router) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := rt.mappings.DeleteRule(r.Context(), id); err != nil {
		if errors.Is(err, crosswalk.ErrRuleNotFound) {
			respondWithError(w, http.StatusNotFound, "regex rule not found")
			return
		}
		rt.log.Error().Err(err).Int("ruleID", id).Msg("Failed to delete regex rule")
		respondWithError(w, http.StatusInternalServerError, "failed to delete regex rule")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

func (rt *Router) handleTestRegex(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	query := r.URL.Query()
	pattern := query.Get("pattern")
	if pattern == "" {
		respondWithError(w, http.StatusBadRequest, "pattern is required")
		return
	}

	if _, err := rt.profiles.SourceColumn(r.Context(), id); err != nil {
		if errors.Is(err, profile.ErrColumnNotFound) {
			respondWithError(w, http.StatusNotFound, "source column not found")
			return
		}
		rt.log.Error().Err(err).Int("sourceColumnID", id).Msg("Failed to fetch source column")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch source column")
		return
	}

	result, err := crosswalk.TryPattern(pattern, query.Get("value"), query.Get("flags"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (rt *Router) handleValidationSummary(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := rt.profiles.Get(r.Context(), id); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not found")
			return
		}
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to fetch profile")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	summary, err := rt.mappings.ValidationSummary(r.Context(), id)
	if err != nil {
		rt.log.Error().Err(err).Int("profileID", id).Msg("Failed to build validation summary")
		respondWithError(w, http.StatusInternalServerError, "failed to build validation summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// pathID extracts the numeric {id} route variable. The route patterns
// guarantee it parses.
func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}
