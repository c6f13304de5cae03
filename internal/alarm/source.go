package alarm

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"belltower/internal/logging"
)

// Source reads the alarm list wholesale from the collaborator-owned JSON
// file. Every failure mode degrades to an empty list; the scheduler must
// never stall because the dashboard is mid-write or the file is absent.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource constructs a source over the given alarms file.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{
		path:   path,
		logger: logging.NewComponentLogger(logger, "alarm-source"),
	}
}

// Path returns the alarms file location.
func (s *Source) Path() string {
	return s.path
}

// Load reads and decodes the full alarm list. A missing file yields an empty
// list silently; malformed content yields an empty list with a warning. The
// previous load is never retained.
func (s *Source) Load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("alarms file absent; treating as empty list",
				logging.String("path", s.path),
			)
			return nil
		}
		s.logger.Warn("alarms file unreadable; treating as empty list",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "alarm_source_unreadable"),
		)
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("alarms file is not a JSON array of records; treating as empty list",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "alarm_source_malformed"),
		)
		return nil
	}

	s.logger.Debug("alarm list loaded",
		logging.Int("count", len(records)),
	)
	return records
}
