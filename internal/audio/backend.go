package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Backend is one playback strategy, selected once at startup. Play blocks the
// calling goroutine (never the scheduler, which dispatches on its own task)
// until the clip finishes, is preempted, or fails.
type Backend interface {
	Name() string
	Play(ctx context.Context, path string) error
	// Stop halts any live in-process playback. External processes are left
	// to run to their own deadline.
	Stop()
	Close() error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			return fmt.Errorf("%w: %s", err, trimmed)
		}
		return err
	}
	return nil
}
