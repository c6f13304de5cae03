// Package daemonrun wires configuration, logging, storage, audio, and IPC
// into a running belltower daemon process.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"belltower/internal/alarm"
	"belltower/internal/audio"
	"belltower/internal/config"
	"belltower/internal/daemon"
	"belltower/internal/deps"
	"belltower/internal/history"
	"belltower/internal/ipc"
	"belltower/internal/logging"
	"belltower/internal/sched"
	"belltower/internal/schedule"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	SocketPath string
}

// Run starts the belltower daemon runtime loop. It blocks until a shutdown
// signal arrives or a remote stop request lands over IPC.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("belltower-%s.log", runID))

	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            logLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String("run_id", uuid.NewString()))

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update belltower.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "belltower-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "belltower.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg)
		if err != nil {
			logger.Error("open history store", logging.Error(err))
			return err
		}
		defer store.Close()
		pruneHistory(signalCtx, store, cfg.History.RetentionDays, logger)
	}

	backend := audio.Detect(cfg, logger)
	engine := audio.NewEngine(cfg.Paths.AssetDir, backend, logger)

	source := alarm.NewSource(cfg.Paths.AlarmsFile, logger)
	ledger := schedule.NewLedger()

	var recorder sched.Recorder
	if store != nil {
		recorder = store
	}
	scheduler := sched.New(cfg, source, ledger, engine, recorder, logger)

	d, err := daemon.New(cfg, source, scheduler, engine, store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = filepath.Join(cfg.Paths.LogDir, "belltower.sock")
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check the log directory lock and configuration"),
			logging.String(logging.FieldImpact, "alarms will not fire"),
		)
		return err
	}

	select {
	case <-signalCtx.Done():
		logger.Info("belltower daemon shutting down")
	case <-d.Done():
		logger.Info("belltower daemon stopped via IPC")
	}
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "belltower.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func pruneHistory(ctx context.Context, store *history.Store, retentionDays int, logger *slog.Logger) {
	if store == nil || retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(schedule.DateLayout)
	removed, err := store.PruneBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("prune trigger history", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Info("pruned trigger history",
			logging.Int64("removed_count", removed),
			logging.String("cutoff", cutoff))
	}
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	statuses := deps.CheckBinaries(deps.AudioRequirements(cfg.Audio.TranscoderCommand, cfg.Audio.PlayerCommand))
	attrs := []any{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String(logging.FieldBackend, cfg.Audio.Backend),
	}
	for _, status := range statuses {
		attrs = append(attrs, logging.Bool(strings.ToLower(status.Name)+"_available", status.Available))
		if status.Command != "" {
			attrs = append(attrs, logging.String(strings.ToLower(status.Name)+"_binary", status.Command))
		}
	}
	logger.Info("dependency snapshot", attrs...)
}
