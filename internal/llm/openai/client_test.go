package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func TestEmbeddings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != "embed" || len(req.Input) != 1 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"embedding": []float32{0.1, 0.2}}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL+"/v1", "test-key")
	vecs, err := c.Embeddings(context.Background(), "embed", []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 2 {
		t.Fatalf("unexpected embedding size: %v", vecs)
	}
}

func TestEmbeddingsRetriesOn429(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		c := atomic.AddInt32(&calls, 1)
		if c < 3 {
			w.WriteHeader(429)
			w.Write([]byte("rate limit"))
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			t.Errorf("retried request lost its body: %v %v", req, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"embedding": []float32{1, 0}}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	os.Setenv("ANSWERGAP_LLM_MIN_INTERVAL_MS", "1")
	defer os.Unsetenv("ANSWERGAP_LLM_MIN_INTERVAL_MS")

	c := New(srv.URL+"/v1", "")
	vecs, err := c.Embeddings(context.Background(), "m", []string{"hi"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 1 {
		t.Fatalf("unexpected result: %v", vecs)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestEmbeddingsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()
	c := New(srv.URL, "wrong")
	if _, err := c.Embeddings(context.Background(), "m", []string{"x"}); err == nil {
		t.Fatalf("expected error on 401")
	}
}
