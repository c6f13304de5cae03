package daemon_test

import (
	"context"
	"testing"
	"time"

	"belltower/internal/alarm"
	"belltower/internal/audio"
	"belltower/internal/config"
	"belltower/internal/daemon"
	"belltower/internal/logging"
	"belltower/internal/sched"
	"belltower/internal/schedule"
	"belltower/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	source := alarm.NewSource(cfg.Paths.AlarmsFile, logger)
	engine := audio.NewEngine(cfg.Paths.AssetDir, audio.Detect(cfg, logger), logger)
	scheduler := sched.New(cfg, source, schedule.NewLedger(), engine, nil, logger)
	d, err := daemon.New(cfg, source, scheduler, engine, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start on the same daemon should fail")
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("status should report running")
	}
	if status.LockFilePath == "" {
		t.Fatal("status should report the lock path")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("status should report stopped")
	}
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel should close on stop")
	}
	d.Stop()
}

func TestDaemonLockRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newTestDaemon(t, cfg)
	second := newTestDaemon(t, cfg)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start returned error: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("second instance should fail to acquire the lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("lock should be free after Stop: %v", err)
	}
	second.Stop()
}

func TestDaemonAlarmsReflectFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteAlarms(t, cfg, []alarm.Record{
		{ID: "a1", Day: "Monday", Time: "07:00", Sound: "chime.wav"},
		{ID: "a2", Day: "Friday", Time: "15:30", Sound: "bell.mp3"},
	})
	d := newTestDaemon(t, cfg)

	alarms := d.Alarms()
	if len(alarms) != 2 {
		t.Fatalf("expected 2 alarms, got %d", len(alarms))
	}
	if alarms[1].ID != "a2" {
		t.Fatalf("unexpected alarm order: %+v", alarms)
	}
}
