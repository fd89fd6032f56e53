package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"answergap/internal/diagnose"
	"answergap/internal/embed"
	mylog "answergap/internal/log"
	"answergap/internal/match"
	"answergap/internal/models"
	"answergap/internal/prompt"
	"answergap/internal/vector"
)

// ErrBusy is returned when a batch is already in flight; there is exactly one
// analysis at a time and no abort control.
var ErrBusy = errors.New("analysis already running")

const storedTextLimit = 200

// PageTexter is the slice of fetch.Fetcher the orchestrator needs.
type PageTexter interface {
	PageText(ctx context.Context, target string) string
}

// Orchestrator drives the analysis batch: derive prompt, match answer, scrape
// page, embed both texts, score and diagnose. Items are processed strictly
// sequentially; the only fan-out is the embedding pair within an item.
type Orchestrator struct {
	fetcher  PageTexter
	provider *embed.Provider
	derive   prompt.Strategy
	lexicon  diagnose.Lexicon
	log      *mylog.Logger

	st state
}

// Snapshot is the read-only view handed to the presentation layer. Slices are
// copies; mutating them does not reach the orchestrator.
type Snapshot struct {
	Analyzing bool                    `json:"isAnalyzing"`
	Progress  int                     `json:"progress"`
	Steps     []models.Stage          `json:"steps"`
	Results   []models.AnalysisResult `json:"results"`
	Skipped   int                     `json:"skipped"`
	Degraded  int                     `json:"degraded"`
}

func New(fetcher PageTexter, provider *embed.Provider, derive prompt.Strategy, lexicon diagnose.Lexicon, log *mylog.Logger) *Orchestrator {
	if derive == nil {
		derive = prompt.TrainTimes
	}
	if log == nil {
		log = mylog.New()
	}
	o := &Orchestrator{fetcher: fetcher, provider: provider, derive: derive, lexicon: lexicon, log: log}
	o.st.init()
	return o
}

// Snapshot returns a copy of the current progress state.
func (o *Orchestrator) Snapshot() Snapshot { return o.st.snapshot() }

// Run processes the batch and returns the completed run. Per-item trouble
// (no derivable prompt, no matching answer) skips the item; scrape and
// embedding failures are degraded inside their components. Anything that
// panics is batch-fatal: running stages flip to error and partial results are
// discarded.
func (o *Orchestrator) Run(ctx context.Context, urls []string, corpus []models.AnswerRecord) (run models.Run, err error) {
	if !o.st.begin() {
		return models.Run{}, ErrBusy
	}
	run = models.Run{
		ID:         uuid.NewString(),
		Status:     models.RunRunning,
		StartedAt:  time.Now(),
		InputCount: len(urls),
	}
	defer func() {
		if r := recover(); r != nil {
			o.st.fail()
			o.log.Error("batch aborted", "run", run.ID, "panic", fmt.Sprint(r))
			run.Results = nil
			run.Status = models.RunFailed
			err = fmt.Errorf("analysis aborted: %v", r)
		}
		now := time.Now()
		run.FinishedAt = &now
		o.st.end()
	}()

	// setup checkpoints
	o.st.stage(models.StageParse, models.StageRunning)
	o.st.setProgress(10)
	o.st.stage(models.StageParse, models.StageCompleted)

	o.st.stage(models.StageExtract, models.StageRunning)
	prompts := make([]string, len(urls))
	for i, u := range urls {
		prompts[i] = o.derive(u)
	}
	o.st.setProgress(20)
	o.st.stage(models.StageExtract, models.StageCompleted)

	o.st.stage(models.StageScrape, models.StageRunning)
	o.st.setProgress(30)
	o.st.stage(models.StageEmbed, models.StageRunning)
	o.st.setProgress(40)
	o.st.stage(models.StageCalculate, models.StageRunning)
	o.st.setProgress(50)

	for i, u := range urls {
		p := prompts[i]
		if p == "" {
			o.log.Info("skipping url, no derivable prompt", "url", u)
			o.st.skip()
			run.SkippedCount++
			o.itemDone(i+1, len(urls))
			continue
		}
		rec, ok := match.Find(p, corpus)
		if !ok {
			o.log.Info("skipping url, no matching answer", "url", u, "prompt", p)
			o.st.skip()
			run.SkippedCount++
			o.itemDone(i+1, len(urls))
			continue
		}

		pageText := o.fetcher.PageText(ctx, u)
		va, vb, degraded := o.provider.EmbedPair(ctx, pageText, rec.Answer)
		sim := vector.Cosine(va, vb)

		res := models.AnalysisResult{
			URL:        u,
			Prompt:     p,
			PageText:   pageText,
			GPTAnswer:  rec.Answer,
			Similarity: sim,
			MatchFound: true,
			Degraded:   degraded,
		}
		o.lexicon.Evaluate(&res)
		res.PageText = truncate(res.PageText, storedTextLimit)
		res.GPTAnswer = truncate(res.GPTAnswer, storedTextLimit)

		if degraded {
			o.st.degrade()
			run.DegradedCount++
		}
		o.st.addResult(res)
		run.Results = append(run.Results, res)
		o.log.Debug("item scored", "url", u, "similarity", sim, "priority", res.PriorityScore)
		o.itemDone(i+1, len(urls))
	}

	o.st.stage(models.StageScrape, models.StageCompleted)
	o.st.stage(models.StageEmbed, models.StageCompleted)
	o.st.stage(models.StageCalculate, models.StageCompleted)
	o.st.setProgress(100)

	run.Status = models.RunCompleted
	o.log.Info("batch completed", "run", run.ID,
		"results", len(run.Results), "skipped", run.SkippedCount, "degraded", run.DegradedCount)
	return run, nil
}

// itemDone advances progress linearly over the 50 points left after setup.
func (o *Orchestrator) itemDone(done, total int) {
	if total <= 0 {
		return
	}
	o.st.setProgress(50 + done*50/total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
