package history

import "time"

// Outcome represents the lifecycle of a trigger event.
type Outcome string

const (
	// OutcomeFired is recorded when the scheduler dispatches the trigger.
	OutcomeFired Outcome = "fired"
	// OutcomeCompleted is recorded when playback finished.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed is recorded when playback was aborted or never started.
	OutcomeFailed Outcome = "failed"
)

// Event is one row of trigger history.
type Event struct {
	ID            int64
	AlarmID       string
	Label         string
	Day           string
	ScheduledTime string
	Sound         string
	Backend       string
	Outcome       Outcome
	Detail        string
	FiredOn       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
