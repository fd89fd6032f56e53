package pipeline

import (
	"sync"

	"answergap/internal/models"
)

var stageDefs = []models.Stage{
	{ID: models.StageParse, Title: "Parse Inputs", Description: "Read URL list and answer corpus"},
	{ID: models.StageExtract, Title: "Extract Prompts", Description: "Derive the expected query per URL"},
	{ID: models.StageScrape, Title: "Scrape Pages", Description: "Fetch rendered page text"},
	{ID: models.StageEmbed, Title: "Generate Embeddings", Description: "Embed page text and matched answer"},
	{ID: models.StageCalculate, Title: "Calculate Scores", Description: "Cosine similarity and diagnostics"},
}

// state holds the cross-item shared view: stage statuses, progress and the
// append-only result list. All mutation goes through its methods under mu.
type state struct {
	mu       sync.Mutex
	running  bool
	progress int
	stages   []models.Stage
	results  []models.AnalysisResult
	skipped  int
	degraded int
}

func (s *state) init() {
	s.stages = freshStages()
}

func freshStages() []models.Stage {
	st := make([]models.Stage, len(stageDefs))
	copy(st, stageDefs)
	for i := range st {
		st[i].Status = models.StagePending
	}
	return st
}

// begin claims the single analysis slot and resets per-batch state.
func (s *state) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.progress = 0
	s.stages = freshStages()
	s.results = nil
	s.skipped = 0
	s.degraded = 0
	return true
}

func (s *state) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// fail flips every stage still running to error and discards partial results.
func (s *state) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stages {
		if s.stages[i].Status == models.StageRunning {
			s.stages[i].Status = models.StageError
		}
	}
	s.results = nil
}

func (s *state) stage(id models.StageID, status models.StageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stages {
		if s.stages[i].ID == id {
			s.stages[i].Status = status
			return
		}
	}
}

// setProgress never moves backwards.
func (s *state) setProgress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p > 100 {
		p = 100
	}
	if p > s.progress {
		s.progress = p
	}
}

func (s *state) addResult(r models.AnalysisResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

func (s *state) skip() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

func (s *state) degrade() {
	s.mu.Lock()
	s.degraded++
	s.mu.Unlock()
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Analyzing: s.running,
		Progress:  s.progress,
		Steps:     make([]models.Stage, len(s.stages)),
		Results:   make([]models.AnalysisResult, len(s.results)),
		Skipped:   s.skipped,
		Degraded:  s.degraded,
	}
	copy(snap.Steps, s.stages)
	copy(snap.Results, s.results)
	return snap
}
