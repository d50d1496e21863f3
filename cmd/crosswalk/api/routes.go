package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/automapper"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/crosswalk"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/datamodel"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/export"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/profile"
	"github.com/dee-ah-nuh/crosswalk-ai/cmd/crosswalk/warehouse"
)

// Router wires the HTTP surface to the domain services.
type Router struct {
	autoMapper       *automapper.Service
	fields           *datamodel.FieldRepository
	dataModelService *datamodel.Service
	profiles         *profile.Repository
	profileService   *profile.Service
	templates        *crosswalk.TemplateRepository
	mappings         *crosswalk.MappingRepository
	exports          *export.Service
	snowflake        *export.SnowflakeService
	snowflakeExports *export.SnowflakeExportRepository
	warehouseClient  *warehouse.Client
	log              zerolog.Logger
}

// NewRouter creates a Router over the given services.
func NewRouter(
	autoMapper *automapper.Service,
	fields *datamodel.FieldRepository,
	dataModelService *datamodel.Service,
	profiles *profile.Repository,
	profileService *profile.Service,
	templates *crosswalk.TemplateRepository,
	mappings *crosswalk.MappingRepository,
	exports *export.Service,
	snowflake *export.SnowflakeService,
	snowflakeExports *export.SnowflakeExportRepository,
	warehouseClient *warehouse.Client,
	log zerolog.Logger,
) *Router {
	return &Router{
		autoMapper:       autoMapper,
		fields:           fields,
		dataModelService: dataModelService,
		profiles:         profiles,
		profileService:   profileService,
		templates:        templates,
		mappings:         mappings,
		exports:          exports,
		snowflake:        snowflake,
		snowflakeExports: snowflakeExports,
		warehouseClient:  warehouseClient,
		log:              log.With().Str("component", "api").Logger(),
	}
}

// SetupRoutes registers all endpoints and returns the handler.
func (rt *Router) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", rt.handleHealth).Methods("GET")

	api.HandleFunc("/auto-mapping/suggest", rt.handleBulkSuggest).Methods("POST")
	api.HandleFunc("/auto-mapping/suggest-single", rt.handleSuggestSingle).Methods("POST")
	api.HandleFunc("/auto-mapping/correct", rt.handleCorrection).Methods("POST")
	api.HandleFunc("/auto-mapping/stats", rt.handleStats).Methods("GET")

	api.HandleFunc("/datamodel/fields", rt.handleDataModelFields).Methods("GET")
	api.HandleFunc("/datamodel/tables", rt.handleDataModelTables).Methods("GET")
	api.HandleFunc("/datamodel/schema-layers", rt.handleSchemaLayers).Methods("GET")
	api.HandleFunc("/datamodel/field-info/{column}", rt.handleFieldInfo).Methods("GET")
	api.HandleFunc("/datamodel/validate-mapping", rt.handleValidateMapping).Methods("POST")

	api.HandleFunc("/profiles", rt.handleCreateProfile).Methods("POST")
	api.HandleFunc("/profiles", rt.handleListProfiles).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}", rt.handleGetProfile).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/raw-table-name", rt.handleUpdateRawTableName).Methods("PUT")
	api.HandleFunc("/profiles/{id:[0-9]+}/validation-summary", rt.handleValidationSummary).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/source/ingest-file", rt.handleIngestFile).Methods("POST")
	api.HandleFunc("/profiles/{id:[0-9]+}/source/ingest-schema", rt.handleIngestSchema).Methods("POST")
	api.HandleFunc("/profiles/{id:[0-9]+}/columns", rt.handleListSourceColumns).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/mappings", rt.handleListMappings).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/mappings", rt.handleReplaceMappings).Methods("PUT")
	api.HandleFunc("/profiles/{id:[0-9]+}/warehouse/sample", rt.handleWarehouseSample).Methods("POST")

	api.HandleFunc("/source-columns/{id:[0-9]+}/rules", rt.handleListRules).Methods("GET")
	api.HandleFunc("/source-columns/{id:[0-9]+}/rules", rt.handleAddRule).Methods("POST")
	api.HandleFunc("/source-columns/{id:[0-9]+}/regex/test", rt.handleTestRegex).Methods("GET")
	api.HandleFunc("/regex-rules/{id:[0-9]+}", rt.handleDeleteRule).Methods("DELETE")
	api.HandleFunc("/dsl/validate", rt.handleValidateExpression).Methods("POST")
	api.HandleFunc("/dsl/translate", rt.handleTranslateExpression).Methods("POST")

	api.HandleFunc("/crosswalk", rt.handleListCrosswalk).Methods("GET")
	api.HandleFunc("/crosswalk/clients", rt.handleCrosswalkClients).Methods("GET")
	api.HandleFunc("/crosswalk/file-groups", rt.handleCrosswalkFileGroups).Methods("GET")
	api.HandleFunc("/crosswalk/summary", rt.handleCrosswalkSummary).Methods("GET")
	api.HandleFunc("/crosswalk/search", rt.handleCrosswalkSearch).Methods("POST")
	api.HandleFunc("/crosswalk/{id:[0-9]+}", rt.handleUpdateCrosswalk).Methods("PUT")
	api.HandleFunc("/crosswalk/{id:[0-9]+}/duplicate", rt.handleDuplicateCrosswalk).Methods("POST")

	api.HandleFunc("/profiles/{id:[0-9]+}/export/csv", rt.handleExportCSV).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/export/xlsx", rt.handleExportXLSX).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/export/json", rt.handleExportJSON).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/export/sql", rt.handleExportSQL).Methods("GET")

	api.HandleFunc("/snowflake/generate-sql", rt.handleGenerateSnowflakeSQL).Methods("POST")
	api.HandleFunc("/snowflake/exports", rt.handleListSnowflakeExports).Methods("GET")
	api.HandleFunc("/snowflake/exports/{id}/sql", rt.handleGetSnowflakeExportSQL).Methods("GET")

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "crosswalk-etl-helper",
	})
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
