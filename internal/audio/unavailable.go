package audio

import (
	"context"
	"log/slog"

	"belltower/internal/logging"
	"belltower/internal/services"
)

// Unavailable is the soft-degradation backend for hosts with no audio
// capability: the schedule and trigger dedup keep running, playback attempts
// fail with a logged error and no side effect.
type Unavailable struct {
	logger *slog.Logger
}

// NewUnavailable constructs the no-audio backend.
func NewUnavailable(logger *slog.Logger) *Unavailable {
	return &Unavailable{logger: logging.NewComponentLogger(logger, "audio")}
}

func (u *Unavailable) Name() string { return "unavailable" }

func (u *Unavailable) Play(_ context.Context, path string) error {
	return services.Wrap(services.ErrUnavailable, "audio", "play",
		"no audio capability on this host", nil)
}

func (u *Unavailable) Stop() {}

func (u *Unavailable) Close() error { return nil }
