package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"belltower/internal/alarm"
	"belltower/internal/audio"
	"belltower/internal/config"
	"belltower/internal/daemon"
	"belltower/internal/history"
	"belltower/internal/ipc"
	"belltower/internal/logging"
	"belltower/internal/sched"
	"belltower/internal/schedule"
	"belltower/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config, store *history.Store) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	source := alarm.NewSource(cfg.Paths.AlarmsFile, logger)
	engine := audio.NewEngine(cfg.Paths.AssetDir, audio.Detect(cfg, logger), logger)
	var recorder sched.Recorder
	if store != nil {
		recorder = store
	}
	scheduler := sched.New(cfg, source, schedule.NewLedger(), engine, recorder, logger)
	d, err := daemon.New(cfg, source, scheduler, engine, store, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteAlarms(t, cfg, []alarm.Record{
		{ID: "a1", Day: "Monday", Time: "07:00", Label: "Morning", Sound: "chime.wav"},
	})
	store := testsupport.MustOpenStore(t, cfg)
	d := newTestDaemon(t, cfg, store)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "belltower.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.AlarmCount != 1 {
		t.Fatalf("expected 1 alarm, got %d", status.AlarmCount)
	}
	if status.Backend != "unavailable" {
		t.Fatalf("expected off-config backend, got %q", status.Backend)
	}

	alarms, err := client.Alarms()
	if err != nil {
		t.Fatalf("Alarms RPC failed: %v", err)
	}
	if len(alarms.Alarms) != 1 || alarms.Alarms[0].ID != "a1" {
		t.Fatalf("unexpected alarms payload: %+v", alarms)
	}

	if _, err := store.RecordTrigger(ctx, history.Event{
		AlarmID: "a1",
		Label:   "Morning",
		Outcome: history.OutcomeCompleted,
		FiredOn: "2026-08-31",
	}); err != nil {
		t.Fatalf("seed trigger history: %v", err)
	}
	triggers, err := client.Triggers("2026-08-31")
	if err != nil {
		t.Fatalf("Triggers RPC failed: %v", err)
	}
	if len(triggers.Events) != 1 || triggers.Events[0].AlarmID != "a1" {
		t.Fatalf("unexpected triggers payload: %+v", triggers)
	}
	if _, err := client.Triggers("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}

	stop, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stop.Stopped {
		t.Fatal("expected stop acknowledgement")
	}

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not signal stop")
	}
}

func TestTriggersRPCWithHistoryDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	d := newTestDaemon(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "belltower.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if _, err := client.Triggers(""); err == nil {
		t.Fatal("expected error when history is disabled")
	}
}
