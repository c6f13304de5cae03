// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"belltower/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AlarmsFile = filepath.Join(base, "alarms.json")
	cfgVal.Paths.AssetDir = filepath.Join(base, "sounds")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Audio.Backend = "off"

	for _, dir := range []string{cfgVal.Paths.AssetDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off the trigger history store.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WriteAlarms marshals the given records to the config's alarms file.
func WriteAlarms(t testing.TB, cfg *config.Config, alarms any) {
	t.Helper()

	data, err := json.Marshal(alarms)
	if err != nil {
		t.Fatalf("marshal alarms: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.AlarmsFile), 0o755); err != nil {
		t.Fatalf("mkdir alarms dir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.AlarmsFile, data, 0o644); err != nil {
		t.Fatalf("write alarms file: %v", err)
	}
}
