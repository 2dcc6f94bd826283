package config

import (
	"fmt"
	"net/url"
	"strings"

	"flowtap/internal/stream"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	baseURL := strings.TrimSpace(cfg.Engine.BaseURL)
	if baseURL == "" {
		add("engine.base_url", "is required")
	} else if parsed, err := url.Parse(baseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		add("engine.base_url", fmt.Sprintf("invalid URL %q", cfg.Engine.BaseURL))
	}
	if cfg.Engine.TimeoutSeconds < 0 {
		add("engine.timeout_seconds", "must be >= 0")
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		add("database.path", "is required")
	}

	if !stream.GatingPolicy(cfg.Stream.Gating).Valid() {
		add("stream.gating", fmt.Sprintf("unknown policy %q", cfg.Stream.Gating))
	}
	if cfg.Stream.ReadBuffer < 0 {
		add("stream.read_buffer", "must be >= 0")
	}

	if cfg.UI.TickIntervalMs < 0 {
		add("ui.tick_interval_ms", "must be >= 0")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
