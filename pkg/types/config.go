package types

import "time"

// HTTPConfig holds the outbound HTTP settings shared by every provider.
type HTTPConfig struct {
	// Timeout is the per-request timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the browser User-Agent sent with page requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 and 5xx responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MinDelay and MaxDelay bound the randomized pause before each page
	// request (default 500ms..2s).
	MinDelay time.Duration `json:"min_delay" yaml:"min_delay" mapstructure:"min_delay"`
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`

	// RequestsPerSecond is the per-host request budget (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AggregateConfig holds settings for the fan-out and ranking stage.
type AggregateConfig struct {
	// Limit is the maximum number of articles returned (default 10).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// Workers bounds concurrent provider fetches (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// ProviderTimeout bounds a single provider's fetch (default 20s). A
	// provider that exceeds it contributes no articles.
	ProviderTimeout time.Duration `json:"provider_timeout" yaml:"provider_timeout" mapstructure:"provider_timeout"`
}

// DigestConfig holds settings for the rendered message.
type DigestConfig struct {
	// MaxLength is the message ceiling in characters (default 4000).
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length"`

	// MaxArticles is the number of article entries rendered (default 7).
	MaxArticles int `json:"max_articles" yaml:"max_articles" mapstructure:"max_articles"`
}

// ProvidersConfig selects and configures the source providers.
type ProvidersConfig struct {
	// SourcesFile replaces the built-in site table when set.
	SourcesFile string `json:"sources_file" yaml:"sources_file" mapstructure:"sources_file"`

	// Search enables the Google News search provider (default true).
	Search bool `json:"search" yaml:"search" mapstructure:"search"`

	// Feed enables the Google News RSS provider (default false).
	Feed bool `json:"feed" yaml:"feed" mapstructure:"feed"`
}

// PipelineConfig bounds a whole digest run.
type PipelineConfig struct {
	// Timeout is the caller-level deadline; on expiry the run continues with
	// whatever articles were collected (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// StoreConfig locates the run-history database.
type StoreConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ScheduleConfig drives the watch command.
type ScheduleConfig struct {
	// Time is the daily trigger in HH:MM (default "09:00").
	Time string `json:"time" yaml:"time" mapstructure:"time"`

	// Timezone is an IANA zone name (default "Asia/Kolkata").
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	HTTP      HTTPConfig      `json:"http" yaml:"http" mapstructure:"http"`
	Aggregate AggregateConfig `json:"aggregate" yaml:"aggregate" mapstructure:"aggregate"`
	Digest    DigestConfig    `json:"digest" yaml:"digest" mapstructure:"digest"`
	Providers ProvidersConfig `json:"providers" yaml:"providers" mapstructure:"providers"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Schedule  ScheduleConfig  `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultUserAgent mimics a desktop browser; several sources reject
// non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:           15 * time.Second,
			UserAgent:         DefaultUserAgent,
			MaxRetries:        3,
			MinDelay:          500 * time.Millisecond,
			MaxDelay:          2 * time.Second,
			RequestsPerSecond: 1,
		},
		Aggregate: AggregateConfig{
			Limit:           10,
			Workers:         4,
			ProviderTimeout: 20 * time.Second,
		},
		Digest: DigestConfig{
			MaxLength:   4000,
			MaxArticles: 7,
		},
		Providers: ProvidersConfig{Search: true},
		Pipeline:  PipelineConfig{Timeout: 60 * time.Second},
		Store:     StoreConfig{Path: "data/market-digest.db"},
		Schedule: ScheduleConfig{
			Time:     "09:00",
			Timezone: "Asia/Kolkata",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}
