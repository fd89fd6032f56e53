package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestURLsSkipsHeaderAndCaps(t *testing.T) {
	in := "url,notes\n" +
		"https://a.example/1,x\n" +
		"\"https://a.example/2\",y\n" +
		"https://a.example/3\n" +
		"https://a.example/4\n" +
		"https://a.example/5\n" +
		"https://a.example/6\n"
	got, err := URLs(strings.NewReader(in), 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"https://a.example/1",
		"https://a.example/2",
		"https://a.example/3",
		"https://a.example/4",
		"https://a.example/5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestURLsUnlimitedAndBlankRows(t *testing.T) {
	in := "url\nhttps://a.example/1\n\n ,x\nhttps://a.example/2\n"
	got, err := URLs(strings.NewReader(in), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("blank rows should be dropped, got %v", got)
	}
}

func TestAnswers(t *testing.T) {
	in := `[
		{"query":"cheapest london to paris train tickets online","response":"Take the Eurostar."},
		{"query":"cheapest york to leeds train tickets online","response":"Northern runs frequent services."}
	]`
	corpus, err := Answers(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(corpus) != 2 || corpus[0].Answer != "Take the Eurostar." || corpus[1].Query != "cheapest york to leeds train tickets online" {
		t.Fatalf("unexpected corpus: %+v", corpus)
	}
}

func TestAnswersRejectsMalformed(t *testing.T) {
	if _, err := Answers(strings.NewReader(`{"query":"q"}`)); err == nil {
		t.Fatalf("non-array corpus must error")
	}
}
