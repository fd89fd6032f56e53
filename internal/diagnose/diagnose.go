package diagnose

import (
	"math"
	"regexp"

	"answergap/internal/models"
)

// Lexicon is the domain vocabulary driving every heuristic in this package.
// It is plain injectable data so the engine can be reused outside the rail
// domain; DefaultLexicon carries the vocabulary the tool ships with.
type Lexicon struct {
	Transactional []string
	Informational []string
	Navigational  []string
	CriticalTerms []string
	Brands        []string
	PricePattern  *regexp.Regexp
	VaguePattern  *regexp.Regexp
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Transactional: []string{"buy", "book", "booking", "cheap", "cheapest", "price", "prices", "ticket", "tickets", "fare", "fares", "deal", "deals", "discount", "purchase", "order"},
		Informational: []string{"what", "how", "why", "when", "guide", "information", "learn", "explain", "tips", "compare"},
		Navigational:  []string{"login", "contact", "homepage", "official", "website", "directions"},
		CriticalTerms: []string{"book", "booking", "cheap", "price", "ticket", "fare", "discount", "railcard", "refund", "off-peak"},
		Brands:        []string{"trainline", "thetrainline", "omio", "raileasy", "nationalrail", "loco2"},
		PricePattern:  regexp.MustCompile(`(?i)[£$€]\s*\d+|\b(price|prices|fare|fares|cost|costs)\b`),
		VaguePattern:  regexp.MustCompile(`(?i)\b(learn more|find out|discover|explore|great value|everything you need|best way)\b`),
	}
}

func containsWord(text, term string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	return re.MatchString(text)
}

// KeywordGaps returns critical terms present in the answer but absent from
// the page text.
func (lx Lexicon) KeywordGaps(pageText, answer string) []string {
	var gaps []string
	for _, term := range lx.CriticalTerms {
		if containsWord(answer, term) && !containsWord(pageText, term) {
			gaps = append(gaps, term)
		}
	}
	return gaps
}

// EntityMismatch reports whether the answer leans on one brand while the page
// leans on a different one, with no overlap between the two references.
func (lx Lexicon) EntityMismatch(pageText, answer string) bool {
	for _, a := range lx.Brands {
		if !containsWord(answer, a) || containsWord(pageText, a) {
			continue
		}
		for _, b := range lx.Brands {
			if b == a {
				continue
			}
			if containsWord(pageText, b) && !containsWord(answer, b) {
				return true
			}
		}
	}
	return false
}

// StructureMismatch is the "page is vague where the answer is concrete"
// signal: the answer carries pricing language the page lacks, and the page
// falls back on generic phrasing.
func (lx Lexicon) StructureMismatch(pageText, answer string) bool {
	return lx.PricePattern.MatchString(answer) &&
		!lx.PricePattern.MatchString(pageText) &&
		lx.VaguePattern.MatchString(pageText)
}

// ClassifyIntent classifies the concatenation of prompt and page text.
// Both transactional and informational signals present means Mixed; otherwise
// the highest count wins, transactional > informational > navigational on
// ties, Navigational when nothing matches.
func (lx Lexicon) ClassifyIntent(prompt, pageText string) models.IntentType {
	text := prompt + " " + pageText
	t := countPresent(text, lx.Transactional)
	i := countPresent(text, lx.Informational)
	n := countPresent(text, lx.Navigational)
	switch {
	case t > 0 && i > 0:
		return models.IntentMixed
	case t > 0 && t >= i && t >= n:
		return models.IntentTransactional
	case i > 0 && i >= n:
		return models.IntentInformational
	default:
		return models.IntentNavigational
	}
}

func countPresent(text string, terms []string) int {
	c := 0
	for _, term := range terms {
		if containsWord(text, term) {
			c++
		}
	}
	return c
}

// PriorityScore ranks how urgently a page needs revision, 0-100. Lower
// similarity drives the score up; NaN similarity counts as zero alignment.
func PriorityScore(similarity float64, intent models.IntentType, gapCount int, entityMismatch, structureMismatch bool) int {
	if math.IsNaN(similarity) {
		similarity = 0
	}
	score := 50 + (1-similarity)*40
	switch intent {
	case models.IntentTransactional:
		score += 20
	case models.IntentMixed:
		score += 15
	}
	score += 5 * float64(gapCount)
	if entityMismatch {
		score += 15
	}
	if structureMismatch {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// Evaluate fills every derived field of r from its url/prompt/texts/similarity.
func (lx Lexicon) Evaluate(r *models.AnalysisResult) {
	r.KeywordGaps = lx.KeywordGaps(r.PageText, r.GPTAnswer)
	r.EntityMismatch = lx.EntityMismatch(r.PageText, r.GPTAnswer)
	r.SentenceStructureIssue = lx.StructureMismatch(r.PageText, r.GPTAnswer)
	r.IntentType = lx.ClassifyIntent(r.Prompt, r.PageText)
	r.PriorityScore = PriorityScore(r.Similarity, r.IntentType, len(r.KeywordGaps), r.EntityMismatch, r.SentenceStructureIssue)
	if r.MatchFound {
		r.IdealPrompt = r.Prompt
	}
}
