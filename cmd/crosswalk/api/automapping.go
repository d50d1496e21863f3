package api

import (
	"encoding/json"
	"net/http"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/automapper"
)

type bulkSuggestRequest struct {
	SourceColumns []automapper.SourceColumnInput `json:"source_columns"`
}

func (rt *Router) handleBulkSuggest(w http.ResponseWriter, r *http.Request) {
	var req bulkSuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SourceColumns) == 0 {
		respondWithError(w, http.StatusBadRequest, "source_columns is required")
		return
	}

	suggestions := rt.autoMapper.BulkSuggest(r.Context(), req.SourceColumns)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

func (rt *Router) handleSuggestSingle(w http.ResponseWriter, r *http.Request) {
	var req automapper.SourceColumnInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ColumnName == "" {
		respondWithError(w, http.StatusBadRequest, "column_name is required")
		return
	}

	suggestions := rt.autoMapper.Suggest(r.Context(), req.ColumnName, req.SampleValues)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"column_name": req.ColumnName,
		"suggestions": suggestions,
	})
}

func (rt *Router) handleCorrection(w http.ResponseWriter, r *http.Request) {
	var correction automapper.Correction
	if err := json.NewDecoder(r.Body).Decode(&correction); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if correction.SourceColumn == "" || correction.CorrectTargetColumn == "" {
		respondWithError(w, http.StatusBadRequest, "source_column and correct_target_column are required")
		return
	}

	if err := rt.autoMapper.RecordCorrection(r.Context(), correction); err != nil {
		rt.log.Error().Err(err).Str("sourceColumn", correction.SourceColumn).Msg("Failed to record correction")
		respondWithError(w, http.StatusInternalServerError, "failed to record correction")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, rt.autoMapper.Stats())
}
