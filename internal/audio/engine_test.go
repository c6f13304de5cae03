package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"belltower/internal/audio"
	"belltower/internal/logging"
	"belltower/internal/services"
)

type recordingBackend struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) Play(_ context.Context, path string) error {
	b.mu.Lock()
	b.played = append(b.played, path)
	b.mu.Unlock()
	return b.err
}

func (b *recordingBackend) Stop() {}

func (b *recordingBackend) Close() error { return nil }

func TestEnginePlayResolvesAgainstAssetDir(t *testing.T) {
	assetDir := t.TempDir()
	path := filepath.Join(assetDir, "chime.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	backend := &recordingBackend{}
	engine := audio.NewEngine(assetDir, backend, logging.NewNop())

	if err := engine.Play(context.Background(), "chime.wav"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	if len(backend.played) != 1 || backend.played[0] != path {
		t.Fatalf("backend received %v, want %q", backend.played, path)
	}
}

func TestEnginePlayMissingAsset(t *testing.T) {
	engine := audio.NewEngine(t.TempDir(), &recordingBackend{}, logging.NewNop())

	err := engine.Play(context.Background(), "nope.wav")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestEnginePlayEmptySoundName(t *testing.T) {
	backend := &recordingBackend{}
	engine := audio.NewEngine(t.TempDir(), backend, logging.NewNop())

	err := engine.Play(context.Background(), "   ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(backend.played) != 0 {
		t.Fatal("backend must not be invoked for empty sound names")
	}
}

func TestEnginePlayPropagatesBackendError(t *testing.T) {
	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "chime.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	wantErr := errors.New("device busy")
	engine := audio.NewEngine(assetDir, &recordingBackend{err: wantErr}, logging.NewNop())

	if err := engine.Play(context.Background(), "chime.wav"); !errors.Is(err, wantErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestUnavailableBackendAlwaysFails(t *testing.T) {
	backend := audio.NewUnavailable(logging.NewNop())
	if backend.Name() != "unavailable" {
		t.Fatalf("unexpected name %q", backend.Name())
	}
	if err := backend.Play(context.Background(), "chime.wav"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
