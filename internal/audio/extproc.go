package audio

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"belltower/internal/deps"
	"belltower/internal/logging"
	"belltower/internal/services"
)

// ExtProc plays WAV files through an external player process and transcodes
// compressed assets with an external transcoder first. Unlike the mixer it
// offers no exclusivity: overlapping triggers run overlapping players.
type ExtProc struct {
	player           deps.Player
	transcoder       string
	transcodeTimeout time.Duration
	playbackTimeout  time.Duration
	exec             Executor
	logger           *slog.Logger
}

// ExtProcOption configures optional ExtProc behavior.
type ExtProcOption func(*ExtProc)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) ExtProcOption {
	return func(e *ExtProc) {
		if executor != nil {
			e.exec = executor
		}
	}
}

// NewExtProc constructs the external-process backend.
func NewExtProc(player deps.Player, transcoder string, transcodeTimeout, playbackTimeout time.Duration, logger *slog.Logger, opts ...ExtProcOption) *ExtProc {
	e := &ExtProc{
		player:           player,
		transcoder:       strings.TrimSpace(transcoder),
		transcodeTimeout: transcodeTimeout,
		playbackTimeout:  playbackTimeout,
		exec:             commandExecutor{},
		logger:           logging.NewComponentLogger(logger, "extproc"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ExtProc) Name() string { return "extproc" }

// Play transcodes non-WAV assets into a temporary .wav sibling under a hard
// deadline, then runs the player process against the WAV under its own
// deadline. The sibling is removed on every exit path. Play deliberately
// detaches from the caller's cancellation: shutdown lets in-flight processes
// run to their own timeout.
func (e *ExtProc) Play(ctx context.Context, path string) error {
	base := context.WithoutCancel(ctx)

	wavPath := path
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		if e.transcoder == "" {
			return services.Wrap(services.ErrConfiguration, "extproc", "transcode",
				"no transcoder configured for compressed formats", nil)
		}
		tmpPath := path + ".wav"
		defer e.removeTemp(tmpPath)

		transcodeCtx, cancel := context.WithTimeout(base, e.transcodeTimeout)
		defer cancel()
		args := []string{"-y", "-loglevel", "error", "-i", path, tmpPath}
		if err := e.exec.Run(transcodeCtx, e.transcoder, args); err != nil {
			return services.Wrap(services.ErrExternalTool, "extproc", "transcode",
				filepath.Base(path), services.ClassifyContextError(err))
		}
		wavPath = tmpPath
	}

	playCtx, cancel := context.WithTimeout(base, e.playbackTimeout)
	defer cancel()
	args := append(slices.Clone(e.player.Args), wavPath)
	if err := e.exec.Run(playCtx, e.player.Command, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "extproc", "play",
			filepath.Base(wavPath), services.ClassifyContextError(err))
	}
	return nil
}

// Stop is a no-op: in-flight player processes run to their own deadline.
func (e *ExtProc) Stop() {}

func (e *ExtProc) Close() error { return nil }

func (e *ExtProc) removeTemp(path string) {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	e.logger.Warn("temporary transcode output not removed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldEventType, "transcode_temp_lingering"),
	)
}
