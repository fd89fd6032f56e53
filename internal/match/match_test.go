package match

import (
	"testing"

	"answergap/internal/models"
)

func TestFindExact(t *testing.T) {
	corpus := []models.AnswerRecord{
		{Query: "cheapest london to paris train tickets online", Answer: "X"},
	}
	rec, ok := Find("cheapest london to paris train tickets online", corpus)
	if !ok || rec.Answer != "X" {
		t.Fatalf("expected match X, got %+v ok=%v", rec, ok)
	}
}

func TestFindSymmetricSubstring(t *testing.T) {
	corpus := []models.AnswerRecord{
		{Query: "london to paris train", Answer: "short"},
	}
	// query is a substring of the prompt
	if rec, ok := Find("cheapest london to paris train tickets online", corpus); !ok || rec.Answer != "short" {
		t.Fatalf("query-in-prompt should match, got %+v ok=%v", rec, ok)
	}
	// prompt is a substring of the query
	corpus = []models.AnswerRecord{
		{Query: "the very cheapest london to paris tickets available anywhere", Answer: "long"},
	}
	if rec, ok := Find("cheapest london to paris tickets", corpus); !ok || rec.Answer != "long" {
		t.Fatalf("prompt-in-query should match, got %+v ok=%v", rec, ok)
	}
}

func TestFindCaseInsensitiveAndOrder(t *testing.T) {
	corpus := []models.AnswerRecord{
		{Query: "CHEAPEST LONDON to Paris train tickets online", Answer: "first"},
		{Query: "cheapest london to paris train tickets online", Answer: "second"},
	}
	rec, ok := Find("cheapest london to paris train tickets online", corpus)
	if !ok || rec.Answer != "first" {
		t.Fatalf("first satisfying entry should win, got %+v", rec)
	}
}

func TestFindNoMatch(t *testing.T) {
	corpus := []models.AnswerRecord{{Query: "cheapest york to leeds train tickets online", Answer: "X"}}
	if _, ok := Find("unrelated prompt about ferries", corpus); ok {
		t.Fatalf("unrelated prompt must not match")
	}
	if _, ok := Find("", corpus); ok {
		t.Fatalf("empty prompt must not match")
	}
	if _, ok := Find("anything", nil); ok {
		t.Fatalf("empty corpus must not match")
	}
}
