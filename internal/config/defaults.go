package config

const (
	defaultAlarmsFile       = "~/.local/share/belltower/alarms.json"
	defaultAssetDir         = "~/.local/share/belltower/sounds"
	defaultLogDir           = "~/.local/share/belltower/logs"
	defaultPollInterval     = 5
	defaultAlarmLabel       = "Alarm"
	defaultAudioBackend     = "auto"
	defaultTranscoder       = "ffmpeg"
	defaultTranscodeTimeout = 10
	defaultPlaybackTimeout  = 30
	defaultSampleRate       = 44100
	defaultHistoryRetention = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AlarmsFile: defaultAlarmsFile,
			AssetDir:   defaultAssetDir,
			LogDir:     defaultLogDir,
		},
		Schedule: Schedule{
			PollInterval: defaultPollInterval,
			DefaultLabel: defaultAlarmLabel,
		},
		Audio: Audio{
			Backend:           defaultAudioBackend,
			TranscoderCommand: defaultTranscoder,
			TranscodeTimeout:  defaultTranscodeTimeout,
			PlaybackTimeout:   defaultPlaybackTimeout,
			SampleRate:        defaultSampleRate,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
