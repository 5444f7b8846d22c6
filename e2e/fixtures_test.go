//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigOption tweaks the config file written for a test run
type ConfigOption func(*testConfig)

type testConfig struct {
	debounce string
	latency  string
	grace    string
	people   [][2]string
}

// WithTimings overrides the debounce and latency durations
func WithTimings(debounce, latency string) ConfigOption {
	return func(c *testConfig) {
		c.debounce = debounce
		c.latency = latency
	}
}

// WithPeople replaces the built-in catalog
func WithPeople(people ...[2]string) ConfigOption {
	return func(c *testConfig) {
		c.people = people
	}
}

// CreateTestWorkspace creates a temporary directory that serves as $HOME
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// WriteConfig writes a config file into the workspace and returns its path.
// Timings default to values short enough for the tests to stay quick.
func (tf *TUITestFramework) WriteConfig(options ...ConfigOption) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}

	cfg := &testConfig{debounce: "150ms", latency: "200ms", grace: "1s"}
	for _, opt := range options {
		opt(cfg)
	}

	var b strings.Builder
	b.WriteString("version = 1\n\n")
	b.WriteString("[search]\n")
	fmt.Fprintf(&b, "debounce = %q\nlatency = %q\ngrace = %q\n\n", cfg.debounce, cfg.latency, cfg.grace)
	b.WriteString("[logging]\n")
	fmt.Fprintf(&b, "level = \"debug\"\nfile = %q\n", filepath.Join(tf.workspace, "namesearch.log"))
	for _, p := range cfg.people {
		fmt.Fprintf(&b, "\n[[catalog]]\nfirst = %q\nlast = %q\n", p[0], p[1])
	}

	path := filepath.Join(tf.workspace, "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}
