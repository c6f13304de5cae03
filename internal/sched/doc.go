// Package sched runs the polling scheduler loop: reload the alarm list on
// each minute edge, match every record, and dispatch triggers to playback
// tasks without blocking the polling cadence.
package sched
