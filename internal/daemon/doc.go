// Package daemon coordinates the scheduler, playback engine, and trigger
// history, and enforces single-instance execution.
package daemon
