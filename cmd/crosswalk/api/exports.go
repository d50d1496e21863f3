package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/export"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/profile"
)

func (rt *Router) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	content, err := rt.exports.CrosswalkCSV(r.Context(), id)
	if err != nil {
		rt.exportError(w, id, "csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=crosswalk_profile_%d.csv", id))
	w.Write([]byte(content))
}

func (rt *Router) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	content, err := rt.exports.CrosswalkXLSX(r.Context(), id)
	if err != nil {
		rt.exportError(w, id, "xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=crosswalk_profile_%d.xlsx", id))
	w.Write(content)
}

func (rt *Router) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	config, err := rt.exports.JSONConfig(r.Context(), id)
	if err != nil {
		rt.exportError(w, id, "json", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=crosswalk_profile_%d.json", id))
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(config)
}

func (rt *Router) handleExportSQL(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	content, err := rt.exports.SQLScript(r.Context(), id)
	if err != nil {
		rt.exportError(w, id, "sql", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=crosswalk_profile_%d.sql", id))
	w.Write([]byte(content))
}

func (rt *Router) exportError(w http.ResponseWriter, profileID int, format string, err error) {
	if errors.Is(err, profile.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "profile not found")
		return
	}
	rt.log.Error().Err(err).Int("profileID", profileID).Str("format", format).Msg("Failed to build export")
	respondWithError(w, http.StatusInternalServerError, "failed to build export")
}

func (rt *Router) handleGenerateSnowflakeSQL(w http.ResponseWriter, r *http.Request) {
	var req export.SnowflakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID == "" || req.ExportType == "" || req.TableName == "" {
		respondWithError(w, http.StatusBadRequest, "client_id, export_type and table_name are required")
		return
	}

	generated, err := rt.snowflake.Generate(r.Context(), req)
	if err != nil {
		rt.log.Error().Err(err).Str("clientID", req.ClientID).Str("exportType", req.ExportType).Msg("Failed to generate SQL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"export": generated,
		"sql":    generated.SQLContent,
	})
}

func (rt *Router) handleListSnowflakeExports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	exports, err := rt.snowflakeExports.List(r.Context(), query.Get("client_id"), query.Get("export_type"))
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to list SQL exports")
		respondWithError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"exports": exports})
}

func (rt *Router) handleGetSnowflakeExportSQL(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	content, err := rt.snowflakeExports.SQLContent(r.Context(), id)
	if err != nil {
		if errors.Is(err, export.ErrExportNotFound) {
			respondWithError(w, http.StatusNotFound, "export not found")
			return
		}
		rt.log.Error().Err(err).Str("exportID", id).Msg("Failed to fetch export SQL")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch export")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.sql", id))
	w.Write([]byte(content))
}
