// Package history persists trigger events to SQLite so a day's firing
// history can be reconstructed after the fact. The in-memory ledger remains
// authoritative for idempotency; this store is observational.
package history
