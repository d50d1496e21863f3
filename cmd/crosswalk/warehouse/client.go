// Package warehouse fetches sample data from Snowflake through its SQL REST
// API. Connectivity is optional and disabled unless WAREHOUSE_ENABLED is set.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const statementsPath = "/api/v2/statements"

// Config carries the Snowflake connection settings, read from environment.
type Config struct {
	AccountURL string // e.g. https://myorg-myaccount.snowflakecomputing.com
	Token      string
	Role       string
	Warehouse  string
	Database   string
	Schema     string
}

// ConfigFromEnv builds a Config from SNOWFLAKE_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		AccountURL: os.Getenv("SNOWFLAKE_ACCOUNT_URL"),
		Token:      os.Getenv("SNOWFLAKE_TOKEN"),
		Role:       os.Getenv("SNOWFLAKE_ROLE"),
		Warehouse:  os.Getenv("SNOWFLAKE_WAREHOUSE"),
		Database:   os.Getenv("SNOWFLAKE_DATABASE"),
		Schema:     os.Getenv("SNOWFLAKE_SCHEMA"),
	}
}

// Enabled reports whether warehouse connectivity is switched on.
func Enabled() bool {
	return strings.EqualFold(os.Getenv("WAREHOUSE_ENABLED"), "true")
}

// Client calls the Snowflake SQL REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new warehouse client with retrying transport.
func NewClient(config Config, log zerolog.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &Client{
		config:     config,
		httpClient: retryClient.StandardClient(),
		log:        log.With().Str("component", "warehouse_client").Logger(),
	}
}

// statementRequest is the SQL API request body.
type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int    `json:"timeout,omitempty"`
	Role      string `json:"role,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
}

// statementResponse is the subset of the SQL API response we consume.
type statementResponse struct {
	ResultSetMetaData struct {
		RowType []struct {
			Name string `json:"name"`
		} `json:"rowType"`
	} `json:"resultSetMetaData"`
	Data    [][]*string `json:"data"`
	Message string      `json:"message"`
}

// FetchSampleRows runs a bounded SELECT against the raw table and returns
// the rows as column-name keyed maps.
func (c *Client) FetchSampleRows(ctx context.Context, rawTable string, limit int) ([]map[string]interface{}, error) {
	if c.config.AccountURL == "" || c.config.Token == "" {
		return nil, fmt.Errorf("warehouse connection is not configured")
	}
	if rawTable == "" {
		return nil, fmt.Errorf("no raw table name specified")
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	body, err := json.Marshal(statementRequest{
		Statement: fmt.Sprintf("SELECT * FROM %s LIMIT %d", rawTable, limit),
		Timeout:   60,
		Role:      c.config.Role,
		Warehouse: c.config.Warehouse,
		Database:  c.config.Database,
		Schema:    c.config.Schema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.AccountURL+statementsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build statement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "KEYPAIR_JWT")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statement request failed: %w", err)
	}
	defer resp.Body.Close()

	var result statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode statement response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("statement request returned %d: %s", resp.StatusCode, result.Message)
	}

	columns := make([]string, len(result.ResultSetMetaData.RowType))
	for i, col := range result.ResultSetMetaData.RowType {
		columns[i] = col.Name
	}

	rows := make([]map[string]interface{}, 0, len(result.Data))
	for _, record := range result.Data {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i < len(record) && record[i] != nil {
				row[col] = *record[i]
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	c.log.Debug().Str("table", rawTable).Int("rows", len(rows)).Msg("Fetched warehouse sample rows")
	return rows, nil
}
