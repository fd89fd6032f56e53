package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"answergap/internal/models"
)

var header = []string{"URL", "Prompt", "Page Text (truncated)", "GPT Answer (truncated)", "Cosine Similarity"}

// WriteCSV serializes results as quoted CSV with a fixed header row and the
// similarity at four decimal places. An empty result set writes nothing.
func WriteCSV(w io.Writer, results []models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.URL,
			r.Prompt,
			truncate(r.PageText, 200),
			truncate(r.GPTAnswer, 200),
			fmt.Sprintf("%.4f", r.Similarity),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename embeds the export date, e.g. gpt-alignment-results-2026-08-31.csv.
func Filename(now time.Time) string {
	return "gpt-alignment-results-" + now.Format("2006-01-02") + ".csv"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
