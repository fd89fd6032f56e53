package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mylog "answergap/internal/log"
)

const samplePage = `<!doctype html>
<html><head><title>t</title><style>body{color:red}</style></head>
<body>
<nav>site nav links</nav>
<header>big banner</header>
<script>var tracking = 1;</script>
<main><p>Cheap tickets from London to Paris.</p><p>Book online today.</p></main>
<footer>copyright footer</footer>
</body></html>`

func quietLog() *mylog.Logger { return mylog.NewWithWriter(&bytes.Buffer{}, mylog.Error) }

func TestPageTextStripsChrome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") != "https://example.com/train-times/london-to-paris/" {
			t.Errorf("proxy did not receive escaped target, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := New(srv.URL+"/?url=", quietLog())
	got := f.PageText(context.Background(), "https://example.com/train-times/london-to-paris/")
	if !strings.Contains(got, "Cheap tickets from London to Paris.") {
		t.Fatalf("main content missing: %q", got)
	}
	for _, banned := range []string{"tracking", "site nav links", "big banner", "copyright footer", "color:red"} {
		if strings.Contains(got, banned) {
			t.Fatalf("chrome %q leaked into text: %q", banned, got)
		}
	}
}

func TestPageTextDirectWithoutProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()
	f := New("", quietLog())
	got := f.PageText(context.Background(), srv.URL)
	if !strings.Contains(got, "Book online today.") {
		t.Fatalf("direct fetch failed: %q", got)
	}
}

func TestPageTextPlaceholderOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()
	var buf bytes.Buffer
	f := New(srv.URL+"/?url=", mylog.NewWithWriter(&buf, mylog.Debug))
	target := "https://example.com/broken"
	got := f.PageText(context.Background(), target)
	if got != Placeholder(target) {
		t.Fatalf("want placeholder, got %q", got)
	}
	if !strings.Contains(buf.String(), "scrape failed") {
		t.Fatalf("failure not logged: %s", buf.String())
	}
}

func TestPageTextPlaceholderOnUnreachableProxy(t *testing.T) {
	f := New("http://127.0.0.1:1/?url=", quietLog())
	target := "https://example.com/x"
	if got := f.PageText(context.Background(), target); got != Placeholder(target) {
		t.Fatalf("want placeholder, got %q", got)
	}
}

func TestPageTextCapped(t *testing.T) {
	big := "<html><body><p>" + strings.Repeat("word ", 5000) + "</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(big))
	}))
	defer srv.Close()
	f := New("", quietLog())
	got := f.PageText(context.Background(), srv.URL)
	if len(got) > maxPageChars {
		t.Fatalf("text not capped: %d chars", len(got))
	}
}
