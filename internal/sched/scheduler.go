package sched

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"belltower/internal/alarm"
	"belltower/internal/config"
	"belltower/internal/history"
	"belltower/internal/logging"
	"belltower/internal/schedule"
)

// PlaybackEngine is the playback surface the scheduler dispatches to.
type PlaybackEngine interface {
	Play(ctx context.Context, sound string) error
	BackendName() string
}

// Recorder persists trigger events. A nil Recorder disables history.
type Recorder interface {
	RecordTrigger(ctx context.Context, event history.Event) (*history.Event, error)
	SetOutcome(ctx context.Context, id int64, outcome history.Outcome, detail string) error
}

// Scheduler owns the polling loop. Reloads happen on minute edges only; the
// ledger purge runs every poll so stale dates never survive midnight.
type Scheduler struct {
	source       *alarm.Source
	ledger       *schedule.Ledger
	engine       PlaybackEngine
	recorder     Recorder
	dispatcher   *Dispatcher
	logger       *slog.Logger
	pollInterval time.Duration
	defaultLabel string
	clock        func() time.Time

	lastMinute int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithClock injects a wall-clock source (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a scheduler. recorder may be nil when history is disabled.
func New(cfg *config.Config, source *alarm.Source, ledger *schedule.Ledger, engine PlaybackEngine, recorder Recorder, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:       source,
		ledger:       ledger,
		engine:       engine,
		recorder:     recorder,
		dispatcher:   NewDispatcher(logger),
		logger:       logging.NewComponentLogger(logger, "scheduler"),
		pollInterval: cfg.PollInterval(),
		defaultLabel: cfg.Schedule.DefaultLabel,
		clock:        time.Now,
		lastMinute:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins background polling.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop terminates the polling loop and waits for it to exit. In-flight
// mixer playback is canceled through the run context; external-process
// playback runs to its own deadline.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Running reports whether the polling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Idle blocks until every dispatched playback task has finished. Used by
// tests and one-shot tooling, never by the loop itself.
func (s *Scheduler) Idle() {
	s.dispatcher.WaitIdle()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	s.logger.Info("scheduler started",
		logging.Duration("poll_interval", s.pollInterval),
		logging.String("alarms_file", s.source.Path()),
		logging.String(logging.FieldBackend, s.engine.BackendName()),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		default:
		}

		s.tick(ctx, s.clock())

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-time.After(s.pollInterval):
		}
	}
}

// tick performs one poll iteration: evaluate on a minute edge, then purge.
// Nothing in here is allowed to escape as a failure of the loop.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if now.Minute() != s.lastMinute {
		s.lastMinute = now.Minute()
		s.evaluate(ctx, now)
	}
	s.ledger.Purge(now.Format(schedule.DateLayout))
}

func (s *Scheduler) evaluate(ctx context.Context, now time.Time) {
	records := s.source.Load()
	for _, rec := range records {
		if !schedule.Match(rec, now, s.ledger, s.logger) {
			continue
		}
		s.trigger(ctx, rec, now)
	}
}

func (s *Scheduler) trigger(ctx context.Context, rec alarm.Record, now time.Time) {
	label := rec.DisplayLabel(s.defaultLabel)
	s.logger.Info("alarm triggered",
		logging.String(logging.FieldAlarmID, rec.Key()),
		logging.String(logging.FieldAlarmLabel, label),
		logging.String(logging.FieldScheduledTime, rec.Time),
		logging.String(logging.FieldSound, rec.Sound),
		logging.String(logging.FieldBackend, s.engine.BackendName()),
	)

	eventID := s.recordTrigger(ctx, rec, label, now)

	if strings.TrimSpace(rec.Sound) == "" {
		s.logger.Warn("alarm has no sound file; trigger dropped",
			logging.String(logging.FieldAlarmID, rec.Key()),
			logging.String(logging.FieldAlarmLabel, label),
			logging.String(logging.FieldEventType, "trigger_no_sound"),
		)
		s.setOutcome(ctx, eventID, history.OutcomeFailed, "record has no sound file")
		return
	}

	// The ledger entry is already consumed: a failed playback is not
	// retried until the next day's purge re-arms the alarm.
	sound := rec.Sound
	s.dispatcher.Dispatch(ctx, label, func(taskCtx context.Context) error {
		if err := s.engine.Play(taskCtx, sound); err != nil {
			s.setOutcome(taskCtx, eventID, history.OutcomeFailed, err.Error())
			return err
		}
		s.setOutcome(taskCtx, eventID, history.OutcomeCompleted, "")
		return nil
	})
}

func (s *Scheduler) recordTrigger(ctx context.Context, rec alarm.Record, label string, now time.Time) int64 {
	if s.recorder == nil {
		return 0
	}
	event, err := s.recorder.RecordTrigger(ctx, history.Event{
		AlarmID:       rec.Key(),
		Label:         label,
		Day:           rec.Day,
		ScheduledTime: rec.Time,
		Sound:         rec.Sound,
		Backend:       s.engine.BackendName(),
		Outcome:       history.OutcomeFired,
		FiredOn:       now.Format(schedule.DateLayout),
	})
	if err != nil {
		s.logger.Warn("trigger history write failed",
			logging.String(logging.FieldAlarmID, rec.Key()),
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_write_failed"),
		)
		return 0
	}
	return event.ID
}

func (s *Scheduler) setOutcome(ctx context.Context, eventID int64, outcome history.Outcome, detail string) {
	if s.recorder == nil || eventID == 0 {
		return
	}
	// Outcomes are written even when the run context is already canceled.
	if err := s.recorder.SetOutcome(context.WithoutCancel(ctx), eventID, outcome, detail); err != nil {
		s.logger.Warn("trigger history update failed",
			logging.Int64("event_id", eventID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_write_failed"),
		)
	}
}
