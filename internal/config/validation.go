package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	if c.Providers.GeminiModel == "" {
		errs = append(errs, "providers.gemini_model must not be empty")
	}
	if c.Providers.OpenAIModel == "" {
		errs = append(errs, "providers.openai_model must not be empty")
	}
	if c.Providers.OpenAIBaseURL == "" {
		errs = append(errs, "providers.openai_base_url must not be empty")
	}
	if c.Providers.PrimaryTimeoutSeconds < 1 {
		errs = append(errs, "providers.primary_timeout_seconds must be >= 1")
	}
	if c.Providers.FallbackAttempts < 1 {
		errs = append(errs, "providers.fallback_attempts must be >= 1")
	}
	if c.Providers.FallbackBackoffMs < 0 {
		errs = append(errs, "providers.fallback_backoff_ms must be >= 0")
	}

	if c.Exec.TimeoutSeconds < 1 {
		errs = append(errs, "exec.timeout_seconds must be >= 1")
	}
	if c.Exec.MaxOutputSize < 1 {
		errs = append(errs, "exec.max_output_size must be >= 1")
	}
	if c.Exec.GracefulShutdownMs < 0 {
		errs = append(errs, "exec.graceful_shutdown_ms must be >= 0")
	}

	if c.Display.WordWrap < 20 {
		errs = append(errs, "display.word_wrap must be >= 20")
	}
	if c.Display.SpinnerIntervalMs < 1 {
		errs = append(errs, "display.spinner_interval_ms must be >= 1")
	}

	if c.History.ListLimit < 1 {
		errs = append(errs, "history.list_limit must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
