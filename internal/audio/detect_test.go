package audio_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"belltower/internal/audio"
	"belltower/internal/config"
	"belltower/internal/logging"
)

func TestDetectOffBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Backend = "off"

	backend := audio.Detect(&cfg, logging.NewNop())
	if backend.Name() != "unavailable" {
		t.Fatalf("expected unavailable backend, got %q", backend.Name())
	}
}

func TestDetectExtProcWithStubPlayer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub player scripts are not runnable on windows")
	}

	binDir := t.TempDir()
	stub := filepath.Join(binDir, "fakeplay")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub player: %v", err)
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Audio.Backend = "extproc"
	cfg.Audio.PlayerCommand = "fakeplay"

	backend := audio.Detect(&cfg, logging.NewNop())
	if backend.Name() != "extproc" {
		t.Fatalf("expected extproc backend, got %q", backend.Name())
	}
}

func TestDetectExtProcWithoutAnyPlayerDegrades(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	cfg := config.Default()
	cfg.Audio.Backend = "extproc"

	backend := audio.Detect(&cfg, logging.NewNop())
	if backend.Name() != "unavailable" {
		t.Fatalf("expected unavailable backend, got %q", backend.Name())
	}
}
