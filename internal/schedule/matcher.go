package schedule

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"belltower/internal/alarm"
	"belltower/internal/logging"
)

// Match reports whether the record should fire at the given instant. The
// weekday comparison is exact string equality against Go's English weekday
// names, matching the contract the dashboard writes. On a time match the
// ledger is atomically consulted and updated, so at most one poll cycle per
// calendar date observes a match for a given key.
func Match(rec alarm.Record, now time.Time, ledger *Ledger, logger *slog.Logger) bool {
	if !rec.Schedulable() {
		return false
	}
	if rec.Day != now.Weekday().String() {
		return false
	}

	hour, minute, ok := parseClock(rec.Time)
	if !ok {
		if logger != nil {
			logger.Warn("alarm has malformed time; skipping",
				logging.String(logging.FieldAlarmID, rec.Key()),
				logging.String(logging.FieldScheduledTime, rec.Time),
				logging.String(logging.FieldEventType, "alarm_time_malformed"),
			)
		}
		return false
	}
	if now.Hour() != hour || now.Minute() != minute {
		return false
	}

	return ledger.MarkFired(rec.Key(), now.Format(DateLayout))
}

// parseClock parses a strict zero-padded 24-hour "HH:MM" value. Out-of-range
// components are rejected rather than wrapped.
func parseClock(value string) (hour, minute int, ok bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
