package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"answergap/internal/models"
)

// ErrNotFound is returned when a run id has no row.
var ErrNotFound = errors.New("run not found")

// SQLiteStore persists run history so completed batches can be listed and
// re-exported.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultPath resolves the database location from the environment, falling
// back to ~/.answergap/answergap.db.
func DefaultPath() string {
	if p := os.Getenv("ANSWERGAP_SQLITE_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "answergap.db"
	}
	return filepath.Join(home, ".answergap", "answergap.db")
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            status TEXT NOT NULL,
            started_at TEXT NOT NULL,
            finished_at TEXT,
            input_count INTEGER NOT NULL,
            skipped_count INTEGER NOT NULL,
            degraded_count INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS results (
            run_id TEXT NOT NULL,
            ord INTEGER NOT NULL,
            url TEXT NOT NULL,
            prompt TEXT NOT NULL,
            page_text TEXT,
            gpt_answer TEXT,
            similarity REAL,
            intent_type TEXT,
            match_found INTEGER NOT NULL,
            ideal_prompt TEXT,
            priority_score INTEGER,
            keyword_gaps TEXT,
            entity_mismatch INTEGER NOT NULL,
            structure_issue INTEGER NOT NULL,
            degraded INTEGER NOT NULL,
            PRIMARY KEY(run_id, ord),
            FOREIGN KEY(run_id) REFERENCES runs(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun writes the run and its results in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run models.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Format(time.RFC3339)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(id,status,started_at,finished_at,input_count,skipped_count,degraded_count) VALUES(?,?,?,?,?,?,?)`,
		run.ID, string(run.Status), run.StartedAt.Format(time.RFC3339), finished,
		run.InputCount, run.SkippedCount, run.DegradedCount)
	if err != nil {
		return err
	}
	for i, r := range run.Results {
		gaps, _ := json.Marshal(r.KeywordGaps)
		// SQLite REAL has no NaN; store the undefined marker as NULL
		var sim any
		if !math.IsNaN(r.Similarity) {
			sim = r.Similarity
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results(run_id,ord,url,prompt,page_text,gpt_answer,similarity,intent_type,match_found,ideal_prompt,priority_score,keyword_gaps,entity_mismatch,structure_issue,degraded)
             VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, i, r.URL, r.Prompt, r.PageText, r.GPTAnswer, sim, string(r.IntentType),
			boolInt(r.MatchFound), r.IdealPrompt, r.PriorityScore, string(gaps),
			boolInt(r.EntityMismatch), boolInt(r.SentenceStructureIssue), boolInt(r.Degraded))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns recent runs without their results, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,status,started_at,finished_at,input_count,skipped_count,degraded_count
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run with its results.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,status,started_at,finished_at,input_count,skipped_count,degraded_count FROM runs WHERE id=?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, err
	}
	results, err := s.loadResults(ctx, id)
	if err != nil {
		return models.Run{}, err
	}
	run.Results = results
	return run, nil
}

// LatestRun loads the most recently started completed run.
func (s *SQLiteStore) LatestRun(ctx context.Context) (models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,status,started_at,finished_at,input_count,skipped_count,degraded_count
         FROM runs WHERE status=? ORDER BY started_at DESC LIMIT 1`, string(models.RunCompleted))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, err
	}
	results, err := s.loadResults(ctx, run.ID)
	if err != nil {
		return models.Run{}, err
	}
	run.Results = results
	return run, nil
}

func (s *SQLiteStore) loadResults(ctx context.Context, runID string) ([]models.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url,prompt,page_text,gpt_answer,similarity,intent_type,match_found,ideal_prompt,priority_score,keyword_gaps,entity_mismatch,structure_issue,degraded
         FROM results WHERE run_id=? ORDER BY ord`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.AnalysisResult
	for rows.Next() {
		var r models.AnalysisResult
		var sim sql.NullFloat64
		var intent, gaps string
		var matched, entity, structure, degraded int
		if err := rows.Scan(&r.URL, &r.Prompt, &r.PageText, &r.GPTAnswer, &sim, &intent,
			&matched, &r.IdealPrompt, &r.PriorityScore, &gaps, &entity, &structure, &degraded); err != nil {
			return nil, err
		}
		if sim.Valid {
			r.Similarity = sim.Float64
		} else {
			r.Similarity = math.NaN()
		}
		r.IntentType = models.IntentType(intent)
		r.MatchFound = matched != 0
		r.EntityMismatch = entity != 0
		r.SentenceStructureIssue = structure != 0
		r.Degraded = degraded != 0
		if gaps != "" && gaps != "null" {
			_ = json.Unmarshal([]byte(gaps), &r.KeywordGaps)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (models.Run, error) {
	var run models.Run
	var status, started string
	var finished sql.NullString
	if err := row.Scan(&run.ID, &status, &started, &finished,
		&run.InputCount, &run.SkippedCount, &run.DegradedCount); err != nil {
		return models.Run{}, err
	}
	run.Status = models.RunStatus(status)
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
