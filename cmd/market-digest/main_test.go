package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/market-digest/internal/store"
	"github.com/pdiddy/market-digest/pkg/types"
)

// --- config ---

func TestDecodeConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestDecodeConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market-digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  timeout: 5s
  requests_per_second: 0.5
aggregate:
  limit: 4
providers:
  feed: true
schedule:
  time: "16:00"
  timezone: America/New_York
`), 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 0.5, cfg.HTTP.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Aggregate.Limit)
	assert.True(t, cfg.Providers.Feed)
	assert.True(t, cfg.Providers.Search, "unset keys keep defaults")
	assert.Equal(t, "16:00", cfg.Schedule.Time)
	assert.Equal(t, "America/New_York", cfg.Schedule.Timezone)
}

func TestDecodeConfig_Invalid(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("http.min_delay", "3s")
	v.Set("http.max_delay", "1s")
	_, err := decodeConfig(v)
	assert.Error(t, err)

	v = viper.New()
	setDefaults(v)
	v.Set("aggregate.limit", 0)
	_, err = decodeConfig(v)
	assert.Error(t, err)
}

// --- table ---

func TestTableRender(t *testing.T) {
	tb := newTable("#", "TITLE")
	tb.add("1", "Sensex up")
	tb.add("10", "日経平均が上昇")

	var buf bytes.Buffer
	require.NoError(t, tb.render(&buf))
	assert.Equal(t, "#   TITLE\n1   Sensex up\n10  日経平均が上昇\n", buf.String())
}

func TestTableRender_TruncatesWideCells(t *testing.T) {
	tb := newTable("TITLE")
	tb.maxWidth = 10
	tb.add("Markets rally on strong earnings")

	var buf bytes.Buffer
	require.NoError(t, tb.render(&buf))
	assert.Equal(t, "TITLE\nMarkets r…\n", buf.String())
}

// --- helpers ---

func TestParseChatID(t *testing.T) {
	id, err := parseChatID("-1001234")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), id)

	for _, bad := range []string{"", "abc", "0", "1.5"} {
		_, err := parseChatID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunScope(t *testing.T) {
	assert.Equal(t, "latest", runScope(store.Run{}))
	assert.Equal(t, `"gold" country=india`, runScope(store.Run{Query: "gold", Country: "india"}))
	assert.Equal(t, "topic=crypto (basic)", runScope(store.Run{Topic: "crypto", Fallback: true}))
}
