package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to an OpenAI-compatible embeddings endpoint. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	minGap  time.Duration

	mu      sync.Mutex
	lastReq time.Time
}

func NewFromEnv() *Client {
	base := os.Getenv("ANSWERGAP_OPENAI_BASE_URL")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	key := os.Getenv("ANSWERGAP_OPENAI_API_KEY")
	gap := time.Duration(0)
	if ms := os.Getenv("ANSWERGAP_LLM_MIN_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			gap = time.Duration(v) * time.Millisecond
		}
	}
	return &Client{baseURL: strings.TrimRight(base, "/"), apiKey: key, http: &http.Client{Timeout: 60 * time.Second}, minGap: gap}
}

// New builds a client with an explicit base URL and key, for callers that do
// not read configuration from the environment.
func New(baseURL, apiKey string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: &http.Client{Timeout: 60 * time.Second}}
}

// Embeddings implements llm.Embedder using the OpenAI-compatible API:
// POST {model, input} -> data[].embedding.
func (c *Client) Embeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if model == "" {
		model = os.Getenv("ANSWERGAP_EMBEDDING_MODEL")
		if model == "" {
			model = "text-embedding-3-small"
		}
	}
	reqBody := map[string]any{
		"model": model,
		"input": inputs,
	}
	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings http %d: %s", resp.StatusCode, string(data))
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	res := make([][]float32, 0, len(out.Data))
	for _, d := range out.Data {
		res = append(res, d.Embedding)
	}
	return res, nil
}

// do performs the HTTP request with optional min interval and retries on 429/5xx.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.minGap > 0 {
		c.mu.Lock()
		since := time.Since(c.lastReq)
		if since < c.minGap {
			time.Sleep(c.minGap - since)
		}
		c.lastReq = time.Now()
		c.mu.Unlock()
	}
	backoff := 200 * time.Millisecond
	for attempt := 0; ; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			// rewind the body before resending
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if attempt >= 2 || (resp.StatusCode != 429 && resp.StatusCode/100 != 5) {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		time.Sleep(backoff + time.Duration(attempt)*100*time.Millisecond)
	}
}
