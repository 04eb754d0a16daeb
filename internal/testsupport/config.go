// Package testsupport provides shared builders for package tests: temp-dir
// configs, store openers, and stubbed external binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"boostd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Immich.URL = "http://127.0.0.1:0/api"
	cfgVal.Immich.APIKey = "test"
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithImmich points the config at a live test server.
func WithImmich(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Immich.URL = url
		b.cfg.Immich.APIKey = apiKey
	}
}

// WithDeviceFilter sets the device-model filter on the test config.
func WithDeviceFilter(filter string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Immich.DeviceFilter = filter
	}
}

// WithDebug enables debug mode with the given item limit.
func WithDebug(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Debug.Enabled = true
		b.cfg.Debug.ItemLimit = limit
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default boostd external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"vspipe", "ffmpeg", "exiftool"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
