package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	AlarmsFile string `toml:"alarms_file"`
	AssetDir   string `toml:"asset_dir"`
	LogDir     string `toml:"log_dir"`
}

// Schedule contains polling and trigger behavior configuration.
type Schedule struct {
	PollInterval int    `toml:"poll_interval"`
	DefaultLabel string `toml:"default_label"`
}

// Audio contains playback backend configuration.
type Audio struct {
	// Backend selects the playback strategy: auto, mixer, extproc, or off.
	Backend           string   `toml:"backend"`
	PlayerCommand     string   `toml:"player_command"`
	PlayerArgs        []string `toml:"player_args"`
	TranscoderCommand string   `toml:"transcoder_command"`
	TranscodeTimeout  int      `toml:"transcode_timeout"`
	PlaybackTimeout   int      `toml:"playback_timeout"`
	SampleRate        int      `toml:"sample_rate"`
}

// History contains configuration for the trigger history database.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for belltower.
//
// Configuration sections by subsystem:
//   - Paths: alarm list location, sound asset directory, log directory
//   - Schedule: poll cadence and default alarm label
//   - Audio: backend selection, external tool commands, timeouts
//   - History: trigger history database settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Schedule Schedule `toml:"schedule"`
	Audio    Audio    `toml:"audio"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/belltower/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/belltower/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("belltower.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// The asset directory is created on a best-effort basis so the daemon can run
// when the sound store has not been provisioned yet.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if strings.TrimSpace(c.Paths.AssetDir) != "" {
		_ = os.MkdirAll(c.Paths.AssetDir, 0o755)
	}
	return nil
}

// PollInterval returns the scheduler poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Schedule.PollInterval) * time.Second
}

// TranscodeTimeout returns the transcoder process deadline as a duration.
func (c *Config) TranscodeTimeout() time.Duration {
	return time.Duration(c.Audio.TranscodeTimeout) * time.Second
}

// PlaybackTimeout returns the player process deadline as a duration.
func (c *Config) PlaybackTimeout() time.Duration {
	return time.Duration(c.Audio.PlaybackTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
