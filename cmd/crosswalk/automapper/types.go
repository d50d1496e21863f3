package automapper

import "time"

// Suggestion is a confidence-scored candidate mapping for a source column.
type Suggestion struct {
	SourceColumn string  `json:"source_column"`
	TargetColumn string  `json:"target_column"`
	TargetTable  string  `json:"target_table"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	DataType     string  `json:"data_type"`
}

// Correction is a recorded user correction the scorer learns from.
type Correction struct {
	ID                  int       `db:"id" json:"-"`
	SourceColumn        string    `db:"source_column" json:"source_column"`
	CorrectTargetTable  string    `db:"correct_target_table" json:"correct_target_table"`
	CorrectTargetColumn string    `db:"correct_target_column" json:"correct_target_column"`
	IncorrectSuggestion string    `db:"incorrect_suggestion" json:"incorrect_suggestion,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// SourceColumnInput is one column of a bulk suggestion request.
type SourceColumnInput struct {
	ColumnName   string   `json:"column_name"`
	SampleValues []string `json:"sample_values"`
}

// Stats summarizes the state of the suggestion engine.
type Stats struct {
	DataModelFields    int    `json:"data_model_fields"`
	CorrectionsLearned int    `json:"corrections_learned"`
	PatternTypes       int    `json:"pattern_types"`
	Status             string `json:"status"`
}
