package audio

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"belltower/internal/logging"
	"belltower/internal/services"
)

// Engine resolves sound asset names against the asset directory and delegates
// playback to the selected backend.
type Engine struct {
	assetDir string
	backend  Backend
	logger   *slog.Logger
}

// NewEngine constructs a playback engine over the given backend.
func NewEngine(assetDir string, backend Backend, logger *slog.Logger) *Engine {
	return &Engine{
		assetDir: assetDir,
		backend:  backend,
		logger:   logging.NewComponentLogger(logger, "playback"),
	}
}

// BackendName reports the selected backend.
func (e *Engine) BackendName() string {
	return e.backend.Name()
}

// Play resolves sound against the asset directory and plays it, blocking
// until the backend finishes. Path validation of the name belongs to the
// upload path; the engine only requires that the resolved file exists.
func (e *Engine) Play(ctx context.Context, sound string) error {
	name := strings.TrimSpace(sound)
	if name == "" {
		return services.Wrap(services.ErrConfiguration, "playback", "resolve",
			"record has no sound file", nil)
	}

	path := filepath.Join(e.assetDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "playback", "resolve", path, nil)
		}
		return services.Wrap(services.ErrTransient, "playback", "resolve", path, err)
	}

	e.logger.Info("playing sound",
		logging.String(logging.FieldSound, name),
		logging.String(logging.FieldBackend, e.backend.Name()),
	)
	if err := e.backend.Play(ctx, path); err != nil {
		return err
	}
	e.logger.Info("finished sound",
		logging.String(logging.FieldSound, name),
		logging.String(logging.FieldBackend, e.backend.Name()),
	)
	return nil
}

// Stop halts live in-process playback. Called on shutdown.
func (e *Engine) Stop() {
	e.backend.Stop()
}

// Close releases the backend.
func (e *Engine) Close() error {
	return e.backend.Close()
}
