package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namesearch/internal/domain"
	"namesearch/internal/eventbus"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	svc := NewConfigService(filepath.Join(t.TempDir(), "absent.toml"), nil)

	cfg, err := svc.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDebounce, cfg.Search.Debounce.Duration)
	assert.Equal(t, DefaultLatency, cfg.Search.Latency.Duration)
	assert.Equal(t, DefaultGrace, cfg.Search.Grace.Duration)
	assert.Equal(t, 10, cfg.BuildCatalog().Len())
}

func TestLoadFromPathParsesDurationsAndCatalog(t *testing.T) {
	path := writeFile(t, `
version = 1

[search]
debounce = "150ms"
latency = "300ms"

[logging]
level = "debug"

[metrics]
addr = "127.0.0.1:9464"

[[catalog]]
first = "Ada"
last = "Lovelace"

[[catalog]]
first = "Alan"
last = "Turing"
`)

	cfg, err := NewConfigService(path, nil).LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce.Duration)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Latency.Duration)
	assert.Equal(t, DefaultGrace, cfg.Search.Grace.Duration, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "namesearch.log", cfg.Logging.File)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)

	catalog := cfg.BuildCatalog()
	require.Equal(t, 2, catalog.Len())
	assert.Equal(t, "Ada Lovelace", catalog.All()[0].FullName())
	assert.Equal(t, "Alan Turing", catalog.All()[1].FullName())
}

func TestLoadFromPathRejectsBadDuration(t *testing.T) {
	path := writeFile(t, "[search]\ndebounce = \"soon\"\n")

	_, err := NewConfigService(path, nil).LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadFromPathRejectsNegativeDuration(t *testing.T) {
	path := writeFile(t, "[search]\nlatency = \"-1s\"\n")

	_, err := NewConfigService(path, nil).LoadFromPath(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromPathRejectsNamelessCatalogEntry(t *testing.T) {
	path := writeFile(t, "[[catalog]]\nfirst = \" \"\nlast = \"\"\n")

	_, err := NewConfigService(path, nil).LoadFromPath(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := NewConfigService("", nil).LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	svc := NewConfigService(path, nil)

	cfg := DefaultConfig()
	cfg.Search.Debounce = Duration{250 * time.Millisecond}
	cfg.Catalog = []PersonEntry{{First: "Grace", Last: "Hopper"}}
	require.NoError(t, svc.Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "250ms")

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, loaded.Search.Debounce.Duration)
	assert.Equal(t, []PersonEntry{{First: "Grace", Last: "Hopper"}}, loaded.Catalog)
}

func TestLoadPublishesConfigLoaded(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	got := make(chan domain.ConfigLoadedEvent, 1)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		got <- e.(domain.ConfigLoadedEvent)
	})

	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := NewConfigService(path, bus).Load()
	require.NoError(t, err)

	select {
	case e := <-got:
		assert.Equal(t, path, e.Path)
		assert.Equal(t, 10, e.CatalogSize)
	case <-time.After(time.Second):
		t.Fatal("ConfigLoaded event not delivered")
	}
}

func TestDefaultPathEndsWithConfigToml(t *testing.T) {
	assert.Equal(t, "config.toml", filepath.Base(DefaultPath()))
	assert.Equal(t, "namesearch", filepath.Base(filepath.Dir(DefaultPath())))
}
