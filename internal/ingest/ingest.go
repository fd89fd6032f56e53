package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"answergap/internal/models"
)

// URLs reads the uploaded URL list: a delimited file whose header row is
// skipped and whose first field per row is the URL. limit caps the number of
// data rows consumed; limit <= 0 means unlimited.
func URLs(r io.Reader, limit int) ([]string, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	var urls []string
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read url list: %w", err)
		}
		row++
		if row == 1 {
			continue // header
		}
		if len(rec) == 0 {
			continue
		}
		u := strings.Trim(strings.TrimSpace(rec[0]), `"`)
		if u == "" {
			continue
		}
		urls = append(urls, u)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	return urls, nil
}

// Answers reads the answer corpus: a JSON array of {query, response} records.
func Answers(r io.Reader) ([]models.AnswerRecord, error) {
	var corpus []models.AnswerRecord
	if err := json.NewDecoder(r).Decode(&corpus); err != nil {
		return nil, fmt.Errorf("decode answer corpus: %w", err)
	}
	return corpus, nil
}
