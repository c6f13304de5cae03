package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"belltower/internal/alarm"
	"belltower/internal/audio"
	"belltower/internal/config"
	"belltower/internal/history"
	"belltower/internal/logging"
	"belltower/internal/sched"
	"belltower/internal/schedule"
)

// Daemon coordinates the alarm scheduler, playback engine, and trigger
// history, and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	source    *alarm.Source
	scheduler *sched.Scheduler
	engine    *audio.Engine
	store     *history.Store
	logPath   string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	stopOnce sync.Once
	stopped  chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Backend       string
	AlarmsFile    string
	AlarmCount    int
	FiredToday    int
	HistoryDBPath string
	LockFilePath  string
}

// New constructs a daemon with initialized dependencies. The history store
// may be nil when trigger history is disabled.
func New(cfg *config.Config, source *alarm.Source, scheduler *sched.Scheduler, engine *audio.Engine, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || source == nil || scheduler == nil || engine == nil || logger == nil {
		return nil, errors.New("daemon requires config, source, scheduler, engine, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "belltowerd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		scheduler: scheduler,
		engine:    engine,
		store:     store,
		logPath:   filepath.Join(cfg.Paths.LogDir, "belltower.log"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
		stopped:   make(chan struct{}),
	}, nil
}

// Start launches the scheduler and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another belltower daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.scheduler.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start scheduler: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("belltower daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldBackend, d.engine.BackendName()))
	return nil
}

// Stop halts scheduling, interrupts playback, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	d.engine.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("belltower daemon stopped")
	d.stopOnce.Do(func() { close(d.stopped) })
}

// Done is closed once the daemon has stopped. Remote stop requests use it
// to unblock the run loop.
func (d *Daemon) Done() <-chan struct{} {
	return d.stopped
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	errs := make([]error, 0, 2)
	if err := d.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status reports current runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	st := Status{
		Running:      d.running.Load(),
		Backend:      d.engine.BackendName(),
		AlarmsFile:   d.source.Path(),
		AlarmCount:   len(d.source.Load()),
		LockFilePath: d.lockPath,
	}
	if d.store != nil {
		st.HistoryDBPath = d.store.Path()
	}
	today := time.Now().Format(schedule.DateLayout)
	if events, err := d.TriggersOn(ctx, today); err == nil {
		st.FiredToday = len(events)
	}
	return st
}

// Alarms returns the current contents of the alarms file.
func (d *Daemon) Alarms() []alarm.Record {
	return d.source.Load()
}

// TriggersOn returns trigger history for the given date (YYYY-MM-DD).
func (d *Daemon) TriggersOn(ctx context.Context, date string) ([]*history.Event, error) {
	if d.store == nil {
		return nil, errors.New("trigger history is disabled")
	}
	return d.store.ListByDate(ctx, date)
}
