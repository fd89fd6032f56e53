package models

import (
	"encoding/json"
	"math"
	"time"
)

// AnswerRecord is one entry of the uploaded answer corpus. The corpus is
// read-only for the lifetime of a batch.
type AnswerRecord struct {
	Query  string `json:"query"`
	Answer string `json:"response"`
}

type IntentType string

const (
	IntentInformational IntentType = "Informational"
	IntentTransactional IntentType = "Transactional"
	IntentNavigational  IntentType = "Navigational"
	IntentMixed         IntentType = "Mixed"
)

// AnalysisResult is the per-URL output record. PageText and GPTAnswer are
// stored truncated; Similarity may be NaN when either embedding had zero
// magnitude.
type AnalysisResult struct {
	URL        string  `json:"url"`
	Prompt     string  `json:"prompt"`
	PageText   string  `json:"pageText"`
	GPTAnswer  string  `json:"gptAnswer"`
	Similarity float64 `json:"similarity"`

	IntentType             IntentType `json:"intentType"`
	MatchFound             bool       `json:"matchFound"`
	IdealPrompt            string     `json:"idealPrompt,omitempty"`
	PriorityScore          int        `json:"priorityScore"`
	KeywordGaps            []string   `json:"keywordGaps,omitempty"`
	EntityMismatch         bool       `json:"entityMismatch"`
	SentenceStructureIssue bool       `json:"sentenceStructureIssue"`

	// Degraded marks results whose similarity was computed from at least one
	// synthetic fallback vector and is therefore noise, not signal.
	Degraded bool `json:"degraded"`
}

// MarshalJSON serializes an undefined (NaN) similarity as null; encoding/json
// rejects NaN outright.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type alias AnalysisResult
	out := struct {
		alias
		Similarity any `json:"similarity"`
	}{alias: alias(r)}
	if !math.IsNaN(r.Similarity) {
		out.Similarity = r.Similarity
	}
	return json.Marshal(out)
}

type StageID string

const (
	StageParse     StageID = "parse"
	StageExtract   StageID = "extract"
	StageScrape    StageID = "scrape"
	StageEmbed     StageID = "embed"
	StageCalculate StageID = "calculate"
)

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageError     StageStatus = "error"
)

type Stage struct {
	ID          StageID     `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      StageStatus `json:"status"`
}

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run records one analysis batch for history and re-export.
type Run struct {
	ID            string           `json:"id"`
	Status        RunStatus        `json:"status"`
	StartedAt     time.Time        `json:"startedAt"`
	FinishedAt    *time.Time       `json:"finishedAt,omitempty"`
	InputCount    int              `json:"inputCount"`
	SkippedCount  int              `json:"skippedCount"`
	DegradedCount int              `json:"degradedCount"`
	Results       []AnalysisResult `json:"results,omitempty"`
}
