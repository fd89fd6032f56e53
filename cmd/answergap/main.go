package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"answergap/internal/config"
	"answergap/internal/diagnose"
	"answergap/internal/embed"
	"answergap/internal/export"
	"answergap/internal/fetch"
	"answergap/internal/ingest"
	"answergap/internal/llm/openai"
	mylog "answergap/internal/log"
	"answergap/internal/models"
	"answergap/internal/pipeline"
	"answergap/internal/server"
	"answergap/internal/store"
	"answergap/internal/version"
)

func main() {
	_ = config.LoadAndApply()

	rootCmd := &cobra.Command{
		Use:   "answergap",
		Short: "Page vs AI-answer alignment analyzer",
		Long: `answergap compares the text of web pages against a corpus of
AI-generated answers for the queries those pages should rank for,
scoring semantic alignment with embeddings and cosine similarity and
flagging keyword gaps, entity mismatches and vague copy.`,
	}

	rootCmd.AddCommand(analyzeCmd(), serveCmd(), exportCmd(), runsCmd(), versionCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func newOrchestrator(proxyURL string, dim int, log *mylog.Logger) *pipeline.Orchestrator {
	if proxyURL == "" {
		proxyURL = os.Getenv("ANSWERGAP_RENDER_PROXY_URL")
	}
	model := config.String("ANSWERGAP_EMBEDDING_MODEL", "text-embedding-3-small")
	if dim <= 0 {
		dim = config.Int("ANSWERGAP_EMBEDDING_DIM", 1536)
	}
	provider := embed.NewProvider(openai.NewFromEnv(), model, dim, log)
	fetcher := fetch.New(proxyURL, log)
	return pipeline.New(fetcher, provider, nil, diagnose.DefaultLexicon(), log)
}

func openStore(dbPath string) (*store.SQLiteStore, error) {
	if dbPath == "none" {
		return nil, nil
	}
	if dbPath == "" {
		dbPath = store.DefaultPath()
	}
	return store.NewSQLite(dbPath)
}

func analyzeCmd() *cobra.Command {
	var (
		urlsPath    string
		answersPath string
		outPath     string
		dbPath      string
		proxyURL    string
		limit       int
		dim         int
	)
	cmd := &cobra.Command{
		Use:   "analyze --urls urls.csv --answers answers.json",
		Short: "Run an analysis batch and export the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := mylog.New()
			if limit == 0 {
				limit = config.Int("ANSWERGAP_BATCH_LIMIT", 5)
			}

			uf, err := os.Open(urlsPath)
			if err != nil {
				return fmt.Errorf("open url list: %w", err)
			}
			defer uf.Close()
			urls, err := ingest.URLs(uf, limit)
			if err != nil {
				return err
			}

			af, err := os.Open(answersPath)
			if err != nil {
				return fmt.Errorf("open answer corpus: %w", err)
			}
			defer af.Close()
			corpus, err := ingest.Answers(af)
			if err != nil {
				return err
			}

			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			orch := newOrchestrator(proxyURL, dim, log)
			run, err := orch.Run(cmd.Context(), urls, corpus)
			if err != nil {
				return err
			}
			if st != nil {
				if err := st.SaveRun(cmd.Context(), run); err != nil {
					log.Error("persist run failed", "run", run.ID, "err", err.Error())
				}
			}

			if outPath == "" {
				outPath = export.Filename(run.StartedAt)
			}
			if len(run.Results) > 0 {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := export.WriteCSV(f, run.Results); err != nil {
					return err
				}
			}

			fmt.Printf("run %s: %d urls, %d results, %d skipped, %d degraded\n",
				run.ID, run.InputCount, len(run.Results), run.SkippedCount, run.DegradedCount)
			if len(run.Results) > 0 {
				fmt.Printf("exported %s\n", outPath)
			}
			if run.DegradedCount > 0 {
				fmt.Printf("warning: %d result(s) used fallback embeddings; check ANSWERGAP_OPENAI_API_KEY\n", run.DegradedCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&urlsPath, "urls", "", "path to the URL list (CSV, header row skipped)")
	cmd.Flags().StringVar(&answersPath, "answers", "", "path to the answer corpus (JSON array of {query,response})")
	cmd.Flags().StringVar(&outPath, "out", "", "output CSV path (default: dated filename)")
	cmd.Flags().StringVar(&dbPath, "db", "", `run history database path ("none" disables)`)
	cmd.Flags().StringVar(&proxyURL, "proxy", "", "fetch-and-render proxy URL prefix")
	cmd.Flags().IntVar(&limit, "limit", 0, "max URLs per batch (0 = config default, -1 = unlimited)")
	cmd.Flags().IntVar(&dim, "dim", 0, "embedding dimensionality for fallback vectors")
	cmd.MarkFlagRequired("urls")
	cmd.MarkFlagRequired("answers")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		addr     string
		dbPath   string
		proxyURL string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the status/analyze/export HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := mylog.New()
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}
			orch := newOrchestrator(proxyURL, 0, log)
			limit := config.Int("ANSWERGAP_BATCH_LIMIT", 5)
			var rs server.RunStore
			if st != nil {
				rs = st
			}
			return server.NewAPI(orch, rs, log, limit).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8097", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", `run history database path ("none" disables)`)
	cmd.Flags().StringVar(&proxyURL, "proxy", "", "fetch-and-render proxy URL prefix")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		runID   string
		outPath string
		dbPath  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export a persisted run as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("export requires a run history database")
			}
			defer st.Close()
			return exportRun(context.Background(), st, runID, outPath)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id (default: latest completed run)")
	cmd.Flags().StringVar(&outPath, "out", "", "output CSV path (default: dated filename)")
	cmd.Flags().StringVar(&dbPath, "db", "", "run history database path")
	return cmd
}

func exportRun(ctx context.Context, st *store.SQLiteStore, runID, outPath string) error {
	var (
		run models.Run
		err error
	)
	if runID != "" {
		run, err = st.GetRun(ctx, runID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if err != nil {
		return err
	}
	if len(run.Results) == 0 {
		fmt.Println("run has no results, nothing to export")
		return nil
	}
	if outPath == "" {
		outPath = export.Filename(run.StartedAt)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteCSV(f, run.Results); err != nil {
		return err
	}
	fmt.Printf("exported %d result(s) from run %s to %s\n", len(run.Results), run.ID, outPath)
	return nil
}

func runsCmd() *cobra.Command {
	var (
		limit  int
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("runs requires a run history database")
			}
			defer st.Close()
			runs, err := st.ListRuns(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s  %s  %s  urls=%d skipped=%d degraded=%d\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status,
					r.InputCount, r.SkippedCount, r.DegradedCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().StringVar(&dbPath, "db", "", "run history database path")
	return cmd
}
