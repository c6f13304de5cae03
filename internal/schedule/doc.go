// Package schedule implements the time matcher and the trigger ledger that
// together guarantee at-most-once-per-day alarm firing.
package schedule
