package prompt

import "strings"

// Strategy maps a URL to the canonical query its page is presumed to answer.
// Implementations must be pure and deterministic, returning "" when no query
// can be derived; such records are later dropped for lack of a match.
type Strategy func(rawURL string) string

// TrainTimes derives a booking query from route pages shaped like
// .../train-times/<origin>-to-<destination>/...
func TrainTimes(rawURL string) string {
	const marker = "train-times/"
	i := strings.Index(rawURL, marker)
	if i < 0 {
		return ""
	}
	slug := rawURL[i+len(marker):]
	if j := strings.IndexAny(slug, "/?#"); j >= 0 {
		slug = slug[:j]
	}
	origin, dest, ok := strings.Cut(slug, "-to-")
	if !ok || origin == "" || dest == "" {
		return ""
	}
	origin = strings.ReplaceAll(origin, "-", " ")
	dest = strings.ReplaceAll(dest, "-", " ")
	return "cheapest " + origin + " to " + dest + " train tickets online"
}
