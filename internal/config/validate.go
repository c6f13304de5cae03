package config

import (
	"errors"
	"fmt"
)

var validBackends = map[string]struct{}{
	"auto":    {},
	"mixer":   {},
	"extproc": {},
	"off":     {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.PollInterval <= 0 {
		return errors.New("schedule.poll_interval must be positive")
	}
	if c.Schedule.PollInterval > 60 {
		return errors.New("schedule.poll_interval must not exceed 60 seconds; minute-level triggers would be skipped")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if _, ok := validBackends[c.Audio.Backend]; !ok {
		return fmt.Errorf("audio.backend must be one of auto, mixer, extproc, off; got %q", c.Audio.Backend)
	}
	if c.Audio.TranscodeTimeout <= 0 {
		return errors.New("audio.transcode_timeout must be positive")
	}
	if c.Audio.PlaybackTimeout <= 0 {
		return errors.New("audio.playback_timeout must be positive")
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate %d is outside the supported 8000-192000 range", c.Audio.SampleRate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
