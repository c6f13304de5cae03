package history_test

import (
	"context"
	"testing"

	"belltower/internal/history"
	"belltower/internal/testsupport"
)

func TestStoreRecordAndUpdateTrigger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	event, err := store.RecordTrigger(ctx, history.Event{
		AlarmID:       "a1",
		Label:         "Morning",
		Day:           "Monday",
		ScheduledTime: "07:00",
		Sound:         "chime.wav",
		Backend:       "mixer",
		Outcome:       history.OutcomeFired,
		FiredOn:       "2026-08-31",
	})
	if err != nil {
		t.Fatalf("RecordTrigger returned error: %v", err)
	}
	if event.ID == 0 {
		t.Fatal("expected assigned event id")
	}

	if err := store.SetOutcome(ctx, event.ID, history.OutcomeCompleted, ""); err != nil {
		t.Fatalf("SetOutcome returned error: %v", err)
	}

	loaded, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if loaded.Outcome != history.OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %q", loaded.Outcome)
	}
	if loaded.AlarmID != "a1" || loaded.ScheduledTime != "07:00" || loaded.FiredOn != "2026-08-31" {
		t.Fatalf("unexpected event round trip: %+v", loaded)
	}
}

func TestStoreListByDate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, fired := range []string{"2026-08-30", "2026-08-31", "2026-08-31"} {
		if _, err := store.RecordTrigger(ctx, history.Event{
			AlarmID: "a1",
			Day:     "Monday",
			Outcome: history.OutcomeFired,
			FiredOn: fired,
		}); err != nil {
			t.Fatalf("RecordTrigger returned error: %v", err)
		}
	}

	events, err := store.ListByDate(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("ListByDate returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for the date, got %d", len(events))
	}
	for _, event := range events {
		if event.FiredOn != "2026-08-31" {
			t.Fatalf("event outside requested date: %+v", event)
		}
	}
}

func TestStorePruneBefore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, fired := range []string{"2026-07-01", "2026-08-01", "2026-08-31"} {
		if _, err := store.RecordTrigger(ctx, history.Event{
			AlarmID: "a1",
			Outcome: history.OutcomeFired,
			FiredOn: fired,
		}); err != nil {
			t.Fatalf("RecordTrigger returned error: %v", err)
		}
	}

	removed, err := store.PruneBefore(ctx, "2026-08-15")
	if err != nil {
		t.Fatalf("PruneBefore returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pruned events, got %d", removed)
	}

	remaining, err := store.ListByDate(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("ListByDate returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected the recent event to survive, got %d", len(remaining))
	}
}

func TestStoreReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.RecordTrigger(ctx, history.Event{
		AlarmID: "a1",
		Outcome: history.OutcomeFired,
		FiredOn: "2026-08-31",
	}); err != nil {
		t.Fatalf("RecordTrigger returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	events, err := reopened.ListByDate(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("ListByDate after reopen returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected persisted event after reopen, got %d", len(events))
	}
}
