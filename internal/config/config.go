package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"namesearch/internal/domain"
	"namesearch/internal/eventbus"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid config")

// Default pipeline timings
const (
	DefaultDebounce = 1000 * time.Millisecond
	DefaultLatency  = 2000 * time.Millisecond
	DefaultGrace    = 5000 * time.Millisecond
)

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version"`
	Search  SearchSettings  `toml:"search"`
	Logging LoggingSettings `toml:"logging"`
	Metrics MetricsSettings `toml:"metrics"`
	Catalog []PersonEntry   `toml:"catalog,omitempty"`
}

// SearchSettings holds the pipeline timings
type SearchSettings struct {
	Debounce Duration `toml:"debounce"` // quiet period before filtering starts
	Latency  Duration `toml:"latency"`  // simulated cost of a non-blank search
	Grace    Duration `toml:"grace"`    // how long state survives with no observers
}

// LoggingSettings controls the log file
type LoggingSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsSettings controls the Prometheus endpoint
type MetricsSettings struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// PersonEntry is one catalog record in the config file
type PersonEntry struct {
	First string `toml:"first"`
	Last  string `toml:"last"`
}

// Duration wraps time.Duration so it reads and writes as "1s", "250ms", ...
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validate checks the configuration for values the pipeline cannot use
func (c *Config) Validate() error {
	if c.Search.Debounce.Duration < 0 {
		return fmt.Errorf("%w: search.debounce must not be negative", ErrInvalidConfig)
	}
	if c.Search.Latency.Duration < 0 {
		return fmt.Errorf("%w: search.latency must not be negative", ErrInvalidConfig)
	}
	if c.Search.Grace.Duration < 0 {
		return fmt.Errorf("%w: search.grace must not be negative", ErrInvalidConfig)
	}
	for i, p := range c.Catalog {
		if strings.TrimSpace(p.First) == "" && strings.TrimSpace(p.Last) == "" {
			return fmt.Errorf("%w: catalog entry %d has no name", ErrInvalidConfig, i)
		}
	}
	return nil
}

// BuildCatalog returns the configured catalog, or the built-in one when none is set
func (c *Config) BuildCatalog() *domain.Catalog {
	if len(c.Catalog) == 0 {
		return domain.DefaultCatalog()
	}
	people := make([]domain.Person, 0, len(c.Catalog))
	for _, p := range c.Catalog {
		people = append(people, domain.Person{First: p.First, Last: p.Last})
	}
	return domain.NewCatalog(people)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "namesearch", "config.toml")
}

// NewConfigService creates a config service for path.
// An empty path means DefaultPath(). bus may be nil.
func NewConfigService(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{
		bus:      bus,
		filePath: path,
	}
}

// Path returns the file this service reads and writes
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file.
// A missing file yields the default configuration.
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{
			Path:        cs.filePath,
			CatalogSize: cfg.BuildCatalog().Len(),
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchSettings{
			Debounce: Duration{DefaultDebounce},
			Latency:  Duration{DefaultLatency},
			Grace:    Duration{DefaultGrace},
		},
		Logging: LoggingSettings{
			Level: "info",
			File:  "namesearch.log",
		},
	}
}
