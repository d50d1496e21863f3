package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
)

func (rt *Router) handleDataModelFields(w http.ResponseWriter, r *http.Request) {
	filter := datamodel.FieldFilter{
		SchemaLayer: r.URL.Query().Get("schema_layer"),
		TableName:   r.URL.Query().Get("table"),
		Search:      r.URL.Query().Get("search"),
	}
	fields := rt.fields.FindFields(filter)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"fields": fields,
		"count":  len(fields),
	})
}

func (rt *Router) handleDataModelTables(w http.ResponseWriter, r *http.Request) {
	tables := rt.fields.Tables(r.URL.Query().Get("schema_layer"))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

func (rt *Router) handleSchemaLayers(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"schema_layers": rt.fields.SchemaLayers(),
	})
}

func (rt *Router) handleFieldInfo(w http.ResponseWriter, r *http.Request) {
	column := mux.Vars(r)["column"]
	fields := rt.fields.FieldsByColumn(column)
	if len(fields) == 0 {
		respondWithError(w, http.StatusNotFound, "column not found in data model")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"column_name": column,
		"fields":      fields,
	})
}

func (rt *Router) handleValidateMapping(w http.ResponseWriter, r *http.Request) {
	var input datamodel.MappingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondWithJSON(w, http.StatusOK, rt.dataModelService.ValidateMapping(input))
}
