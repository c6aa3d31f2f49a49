package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Providers ProvidersConfig `json:"providers"`
	Exec      ExecConfig      `json:"exec"`
	Display   DisplayConfig   `json:"display"`
	History   HistoryConfig   `json:"history"`
}

type ProvidersConfig struct {
	// GeminiModel is the model used for the primary (low-latency) attempt.
	GeminiModel string `json:"gemini_model"` // Default: "gemini-2.5-flash"

	// OpenAIModel is the model used for the fallback attempts.
	OpenAIModel string `json:"openai_model"` // Default: "gpt-4o"

	// OpenAIBaseURL allows pointing the fallback at a compatible endpoint.
	OpenAIBaseURL string `json:"openai_base_url"` // Default: "https://api.openai.com/v1"

	// PrimaryTimeoutSeconds bounds how long the dispatcher waits for the
	// primary provider before falling back.
	PrimaryTimeoutSeconds int `json:"primary_timeout_seconds"` // Default: 7

	// FallbackAttempts is the total number of fallback calls before giving up.
	FallbackAttempts int `json:"fallback_attempts"` // Default: 3

	// FallbackBackoffMs is the initial backoff, doubled after each failure.
	FallbackBackoffMs int `json:"fallback_backoff_ms"` // Default: 500
}

type ExecConfig struct {
	// TimeoutSeconds is the hard wall-clock limit for executed commands.
	TimeoutSeconds int `json:"timeout_seconds"` // Default: 30

	// MaxOutputSize caps captured stdout/stderr, each. Bytes.
	MaxOutputSize int64 `json:"max_output_size"` // Default: 10 * 1024 * 1024 (10MB)

	// GracefulShutdownMs is how long a timed-out command gets between
	// SIGINT and SIGKILL.
	GracefulShutdownMs int `json:"graceful_shutdown_ms"` // Default: 2000
}

type DisplayConfig struct {
	// WordWrap is the column width passed to the markdown renderer.
	WordWrap int `json:"word_wrap"` // Default: 100

	// SpinnerIntervalMs is the progress indicator tick interval.
	SpinnerIntervalMs int `json:"spinner_interval_ms"` // Default: 500
}

type HistoryConfig struct {
	// Enabled toggles the invocation log. Recording is always best-effort.
	Enabled bool `json:"enabled"` // Default: true

	// Path overrides the database location. Empty means
	// ~/.config/termai/history.db.
	Path string `json:"path"` // Default: ""

	// ListLimit is how many entries `termai history` shows.
	ListLimit int `json:"list_limit"` // Default: 20
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			GeminiModel:           "gemini-2.5-flash",
			OpenAIModel:           "gpt-4o",
			OpenAIBaseURL:         "https://api.openai.com/v1",
			PrimaryTimeoutSeconds: 7,
			FallbackAttempts:      3,
			FallbackBackoffMs:     500,
		},
		Exec: ExecConfig{
			TimeoutSeconds:     30,
			MaxOutputSize:      10 * 1024 * 1024,
			GracefulShutdownMs: 2000,
		},
		Display: DisplayConfig{
			WordWrap:          100,
			SpinnerIntervalMs: 500,
		},
		History: HistoryConfig{
			Enabled:   true,
			ListLimit: 20,
		},
	}
}
