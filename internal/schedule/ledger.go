package schedule

import "sync"

// DateLayout is the calendar-date form stored in the ledger.
const DateLayout = "2006-01-02"

// Ledger tracks the last calendar date each alarm fired. One mutex covers
// both the check-and-set and the daily purge: a purge running between a
// match's read and write could otherwise erase an entry that was just set.
type Ledger struct {
	mu    sync.Mutex
	fired map[string]string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{fired: make(map[string]string)}
}

// MarkFired atomically records that key fired on date. It returns false when
// the key already fired on that date, in which case the ledger is unchanged.
func (l *Ledger) MarkFired(key, date string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fired[key] == date {
		return false
	}
	l.fired[key] = date
	return true
}

// FiredOn reports the stored date for key, if any.
func (l *Ledger) FiredOn(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	date, ok := l.fired[key]
	return date, ok
}

// Purge drops every entry whose date differs from the given one, resetting
// eligibility for alarms last fired on an earlier day.
func (l *Ledger) Purge(date string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, fired := range l.fired {
		if fired != date {
			delete(l.fired, key)
		}
	}
}

// Len returns the number of tracked entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fired)
}
