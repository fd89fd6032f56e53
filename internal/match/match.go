package match

import (
	"strings"

	"answergap/internal/models"
)

// Find returns the first corpus entry whose query is a case-insensitive
// substring of prompt, or vice versa. Corpus order wins among multiple
// candidates; an empty prompt never matches.
func Find(prompt string, corpus []models.AnswerRecord) (models.AnswerRecord, bool) {
	p := strings.ToLower(strings.TrimSpace(prompt))
	if p == "" {
		return models.AnswerRecord{}, false
	}
	for _, rec := range corpus {
		q := strings.ToLower(strings.TrimSpace(rec.Query))
		if q == "" {
			continue
		}
		if strings.Contains(p, q) || strings.Contains(q, p) {
			return rec, true
		}
	}
	return models.AnswerRecord{}, false
}
