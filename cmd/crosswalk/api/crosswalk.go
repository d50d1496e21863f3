package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/dsl"
)

func (rt *Router) handleListCrosswalk(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := crosswalk.TemplateFilter{
		ClientID:  query.Get("client_id"),
		FileGroup: query.Get("file_group"),
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))

	rows, err := rt.templates.List(r.Context(), filter)
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to list crosswalk rows")
		respondWithError(w, http.StatusInternalServerError, "failed to list crosswalk rows")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rows":  rows,
		"count": len(rows),
	})
}

func (rt *Router) handleUpdateCrosswalk(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(changes) == 0 {
		respondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := rt.templates.Update(r.Context(), id, changes); err != nil {
		rt.log.Error().Err(err).Int("rowID", id).Msg("Failed to update crosswalk row")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := rt.templates.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "crosswalk row not found")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

type duplicateRequest struct {
	NewTable string `json:"new_table"`
}

func (rt *Router) handleDuplicateCrosswalk(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req duplicateRequest
	json.NewDecoder(r.Body).Decode(&req)

	newID, err := rt.templates.Duplicate(r.Context(), id, req.NewTable)
	if err != nil {
		rt.log.Error().Err(err).Int("rowID", id).Msg("Failed to duplicate crosswalk row")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"id": newID})
}

func (rt *Router) handleCrosswalkClients(w http.ResponseWriter, r *http.Request) {
	clients, err := rt.templates.Clients(r.Context())
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to list clients")
		respondWithError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

func (rt *Router) handleCrosswalkFileGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := rt.templates.FileGroups(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to list file groups")
		respondWithError(w, http.StatusInternalServerError, "failed to list file groups")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"file_groups": groups})
}

func (rt *Router) handleCrosswalkSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.templates.Summary(r.Context())
	if err != nil {
		rt.log.Error().Err(err).Msg("Failed to build crosswalk summary")
		respondWithError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

type searchRequest struct {
	Term   string   `json:"term"`
	Fields []string `json:"fields,omitempty"`
}

func (rt *Router) handleCrosswalkSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Term == "" {
		respondWithError(w, http.StatusBadRequest, "term is required")
		return
	}

	rows, err := rt.templates.Search(r.Context(), req.Term, req.Fields)
	if err != nil {
		rt.log.Error().Err(err).Str("term", req.Term).Msg("Failed to search crosswalk")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rows":  rows,
		"count": len(rows),
	})
}

type validateExpressionRequest struct {
	Expression string `json:"expression"`
}

func (rt *Router) handleValidateExpression(w http.ResponseWriter, r *http.Request) {
	var req validateExpressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondWithJSON(w, http.StatusOK, dsl.Validate(req.Expression))
}

type translateExpressionRequest struct {
	Expression    string            `json:"expression"`
	ColumnMapping map[string]string `json:"column_mapping,omitempty"`
}

func (rt *Router) handleTranslateExpression(w http.ResponseWriter, r *http.Request) {
	var req translateExpressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"sql_expression": dsl.TranslateToSQL(req.Expression, req.ColumnMapping),
	})
}
