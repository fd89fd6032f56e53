package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownKeys defines environment variable keys that answergap recognizes.
var KnownKeys = []string{
	"ANSWERGAP_OPENAI_BASE_URL",
	"ANSWERGAP_OPENAI_API_KEY",
	"ANSWERGAP_EMBEDDING_MODEL",
	"ANSWERGAP_EMBEDDING_DIM",
	"ANSWERGAP_LLM_MIN_INTERVAL_MS",
	"ANSWERGAP_RENDER_PROXY_URL",
	"ANSWERGAP_SQLITE_PATH",
	"ANSWERGAP_BATCH_LIMIT",
	"ANSWERGAP_LOG_LEVEL",
	"ANSWERGAP_SERVER_URL",
}

// LoadAndApply loads configuration from ~/.answergap/config.yaml (or
// .yml/.json) and applies values into the process environment for known keys
// if they are not already set. Environment variables take precedence over
// file values.
func LoadAndApply() error {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil // non-fatal
	}
	base := filepath.Join(home, ".answergap")
	paths := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}
	var data map[string]any
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if strings.HasSuffix(p, ".json") {
			if err := json.Unmarshal(b, &data); err == nil && len(data) > 0 {
				break
			}
		} else {
			if err := yaml.Unmarshal(b, &data); err == nil && len(data) > 0 {
				break
			}
		}
		data = nil
	}
	Apply(data)
	return nil
}

// Apply sets known keys from data into the environment unless already set.
func Apply(data map[string]any) {
	if len(data) == 0 {
		return
	}
	for _, key := range KnownKeys {
		if os.Getenv(key) != "" {
			continue
		}
		if v, ok := lookupInsensitive(data, key); ok {
			os.Setenv(key, toString(v))
		}
	}
}

// Int reads an integer env value, falling back to def when unset or invalid.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// String reads an env value, falling back to def when unset.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func lookupInsensitive(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// avoid trailing .0 for integer-like values
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
