package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"answergap/internal/export"
	"answergap/internal/ingest"
	mylog "answergap/internal/log"
	"answergap/internal/models"
	"answergap/internal/pipeline"
)

// Runner is the orchestrator surface the API needs.
type Runner interface {
	Run(ctx context.Context, urls []string, corpus []models.AnswerRecord) (models.Run, error)
	Snapshot() pipeline.Snapshot
}

// RunStore persists completed runs; nil disables history.
type RunStore interface {
	SaveRun(ctx context.Context, run models.Run) error
	GetRun(ctx context.Context, id string) (models.Run, error)
	LatestRun(ctx context.Context) (models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
}

// API exposes the progress interface to the presentation layer: a read-only
// status view plus the two operations, start analysis and export results.
type API struct {
	orch  Runner
	store RunStore
	log   *mylog.Logger
	limit int
}

func NewAPI(orch Runner, store RunStore, log *mylog.Logger, batchLimit int) *API {
	if log == nil {
		log = mylog.New()
	}
	return &API{orch: orch, store: store, log: log, limit: batchLimit}
}

func (a *API) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("POST /analyze", a.handleAnalyze)
	mux.HandleFunc("GET /export", a.handleExport)
	mux.HandleFunc("GET /runs", a.handleRuns)
	return mux
}

// Handler returns the API's http handler.
func (a *API) Handler() http.Handler { return a.mux() }

// Run serves the API until the listener fails.
func (a *API) Run(addr string) error {
	a.log.Info("server listening", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: a.mux(), ReadHeaderTimeout: 10 * time.Second}
	return srv.ListenAndServe()
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, map[string]string{"status": "ok"})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, a.orch.Snapshot())
}

type analyzeRequest struct {
	// URLInput is the raw delimited URL list (header row, URL in the first
	// field), exactly as uploaded.
	URLInput string `json:"urlInput"`
	// AnswerInput is the answer corpus.
	AnswerInput []models.AnswerRecord `json:"answerInput"`
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	urls, err := ingest.URLs(strings.NewReader(req.URLInput), a.limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(urls) == 0 {
		http.Error(w, "url list is empty", http.StatusBadRequest)
		return
	}
	if a.orch.Snapshot().Analyzing {
		http.Error(w, "analysis already running", http.StatusConflict)
		return
	}
	go func() {
		run, err := a.orch.Run(context.Background(), urls, req.AnswerInput)
		if err != nil {
			a.log.Error("batch failed", "err", err.Error())
			return
		}
		if a.store != nil {
			if err := a.store.SaveRun(context.Background(), run); err != nil {
				a.log.Error("persist run failed", "run", run.ID, "err", err.Error())
			}
		}
	}()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{"started": true, "urls": len(urls)})
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	var results []models.AnalysisResult
	if id := r.URL.Query().Get("run"); id != "" && a.store != nil {
		run, err := a.store.GetRun(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		results = run.Results
	} else if a.store != nil {
		run, err := a.store.LatestRun(r.Context())
		if err == nil {
			results = run.Results
		}
	}
	if len(results) == 0 {
		// fall back to the in-memory snapshot of the current/last batch
		results = a.orch.Snapshot().Results
	}
	if len(results) == 0 {
		http.Error(w, "no results to export", http.StatusNotFound)
		return
	}
	name := export.Filename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteCSV(w, results); err != nil {
		a.log.Error("export failed", "err", err.Error())
	}
}

func (a *API) handleRuns(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		renderJSON(w, []models.Run{})
		return
	}
	runs, err := a.store.ListRuns(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	renderJSON(w, runs)
}

func renderJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
