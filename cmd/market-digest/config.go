package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/market-digest/pkg/types"
)

// setDefaults registers every config key so that environment variables
// reach Unmarshal even without a config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("http.min_delay", d.HTTP.MinDelay)
	v.SetDefault("http.max_delay", d.HTTP.MaxDelay)
	v.SetDefault("http.requests_per_second", d.HTTP.RequestsPerSecond)

	v.SetDefault("aggregate.limit", d.Aggregate.Limit)
	v.SetDefault("aggregate.workers", d.Aggregate.Workers)
	v.SetDefault("aggregate.provider_timeout", d.Aggregate.ProviderTimeout)

	v.SetDefault("digest.max_length", d.Digest.MaxLength)
	v.SetDefault("digest.max_articles", d.Digest.MaxArticles)

	v.SetDefault("providers.sources_file", d.Providers.SourcesFile)
	v.SetDefault("providers.search", d.Providers.Search)
	v.SetDefault("providers.feed", d.Providers.Feed)

	v.SetDefault("pipeline.timeout", d.Pipeline.Timeout)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("schedule.time", d.Schedule.Time)
	v.SetDefault("schedule.timezone", d.Schedule.Timezone)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.HTTP.MaxDelay < cfg.HTTP.MinDelay {
		return types.Config{}, fmt.Errorf("http.max_delay (%v) is below http.min_delay (%v)", cfg.HTTP.MaxDelay, cfg.HTTP.MinDelay)
	}
	if cfg.Aggregate.Limit <= 0 {
		return types.Config{}, fmt.Errorf("aggregate.limit must be positive, got %d", cfg.Aggregate.Limit)
	}
	return cfg, nil
}
