package config

import (
	"encoding/json"
	"fmt"
	"time"
)

type Mermaid struct {
	Prerender bool     `json:"prerender"`
	Command   string   `json:"command"`
	Args      []string `json:"args"`
}

type Config struct {
	Port         int     `json:"port"` // 0 picks a free port
	DebounceMs   int     `json:"debounce_ms"`
	Shell        string  `json:"shell"`
	Content      string  `json:"content"`
	RefreshShell bool    `json:"refresh_shell"` // rewrite the shell on every start
	NoCache      bool    `json:"no_cache"`
	FenceTag     string  `json:"fence_tag"`
	Mermaid      Mermaid `json:"mermaid"`
}

var defaultConfig = Config{
	Port:         0,
	DebounceMs:   250,
	Shell:        "index.html",
	Content:      "content.md",
	RefreshShell: true,
	NoCache:      true,
	FenceTag:     "mermaid",
	Mermaid: Mermaid{
		Prerender: false,
		Command:   "mmdc",
		Args:      []string{"--input", "-", "--output", "-", "--outputFormat", "svg"},
	},
}

// Load overlays the client-provided options onto the defaults.
func Load(v any) (Config, error) {
	cfg := defaultConfig

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in src will overwrite.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, nil
}

// Debounce returns the quiet interval as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
