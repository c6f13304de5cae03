package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSchedule()
	c.normalizeAudio()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AlarmsFile) == "" {
		c.Paths.AlarmsFile = defaultAlarmsFile
	}
	if c.Paths.AlarmsFile, err = expandPath(c.Paths.AlarmsFile); err != nil {
		return fmt.Errorf("paths.alarms_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.AssetDir) == "" {
		c.Paths.AssetDir = defaultAssetDir
	}
	if c.Paths.AssetDir, err = expandPath(c.Paths.AssetDir); err != nil {
		return fmt.Errorf("paths.asset_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSchedule() {
	if c.Schedule.PollInterval <= 0 {
		c.Schedule.PollInterval = defaultPollInterval
	}
	c.Schedule.DefaultLabel = strings.TrimSpace(c.Schedule.DefaultLabel)
	if c.Schedule.DefaultLabel == "" {
		c.Schedule.DefaultLabel = defaultAlarmLabel
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Backend = strings.ToLower(strings.TrimSpace(c.Audio.Backend))
	if c.Audio.Backend == "" {
		c.Audio.Backend = defaultAudioBackend
	}
	c.Audio.PlayerCommand = strings.TrimSpace(c.Audio.PlayerCommand)
	c.Audio.TranscoderCommand = strings.TrimSpace(c.Audio.TranscoderCommand)
	if c.Audio.TranscoderCommand == "" {
		c.Audio.TranscoderCommand = defaultTranscoder
	}
	if c.Audio.TranscodeTimeout <= 0 {
		c.Audio.TranscodeTimeout = defaultTranscodeTimeout
	}
	if c.Audio.PlaybackTimeout <= 0 {
		c.Audio.PlaybackTimeout = defaultPlaybackTimeout
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = defaultHistoryRetention
	}
}
