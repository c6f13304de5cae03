package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running       bool   `json:"running"`
	Backend       string `json:"backend"`
	AlarmsFile    string `json:"alarms_file"`
	AlarmCount    int    `json:"alarm_count"`
	FiredToday    int    `json:"fired_today"`
	HistoryDBPath string `json:"history_db_path"`
	LockPath      string `json:"lock_path"`
	PID           int    `json:"pid"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// AlarmsRequest fetches the current alarm definitions.
type AlarmsRequest struct{}

// Alarm is the wire representation of a scheduled alarm.
type Alarm struct {
	ID    string `json:"id"`
	Day   string `json:"day"`
	Time  string `json:"time"`
	Label string `json:"label"`
	Sound string `json:"sound"`
}

// AlarmsResponse contains the alarms currently on disk.
type AlarmsResponse struct {
	Path   string  `json:"path"`
	Alarms []Alarm `json:"alarms"`
}

// TriggersRequest fetches trigger history for a date. An empty date means
// today.
type TriggersRequest struct {
	Date string `json:"date"`
}

// TriggerEvent is the wire representation of a recorded trigger.
type TriggerEvent struct {
	ID            int64  `json:"id"`
	AlarmID       string `json:"alarm_id"`
	Label         string `json:"label"`
	Day           string `json:"day"`
	ScheduledTime string `json:"scheduled_time"`
	Sound         string `json:"sound"`
	Backend       string `json:"backend"`
	Outcome       string `json:"outcome"`
	Detail        string `json:"detail"`
	FiredOn       string `json:"fired_on"`
	CreatedAt     string `json:"created_at"`
}

// TriggersResponse contains trigger history for the requested date.
type TriggersResponse struct {
	Date   string         `json:"date"`
	Events []TriggerEvent `json:"events"`
}
