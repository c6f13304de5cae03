// Package logging provides slog construction, shared field names, and log
// file retention for belltower.
package logging
