package alarm

import "strings"

// Record is one scheduled alarm as authored by the dashboard. The core never
// writes records; the full list is replaced on every reload.
type Record struct {
	ID    string `json:"id"`
	Day   string `json:"day"`
	Time  string `json:"time"`
	Label string `json:"label"`
	Sound string `json:"sound"`
}

// Key returns the trigger-ledger key for the record: the id when present,
// otherwise the raw time string. Two id-less records sharing a time therefore
// collide and fire once between them; the upload path owns assigning ids.
func (r Record) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return r.Time
}

// Schedulable reports whether the record carries both fields the matcher
// needs. Records missing either are kept in the list but never fire.
func (r Record) Schedulable() bool {
	return strings.TrimSpace(r.Day) != "" && strings.TrimSpace(r.Time) != ""
}

// DisplayLabel returns the record label, falling back to the given default.
func (r Record) DisplayLabel(fallback string) string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return fallback
}
