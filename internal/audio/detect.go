package audio

import (
	"log/slog"
	"os/exec"

	"belltower/internal/config"
	"belltower/internal/deps"
	"belltower/internal/logging"
)

// Detect resolves the playback backend once at startup. The cascade is:
// in-process mixer, then external player process, then unavailable. The
// choice is stored for the lifetime of the daemon and never re-probed.
func Detect(cfg *config.Config, logger *slog.Logger) Backend {
	log := logging.NewComponentLogger(logger, "audio")

	switch cfg.Audio.Backend {
	case "off":
		log.Info("audio disabled by configuration",
			logging.String(logging.FieldBackend, "unavailable"),
		)
		return NewUnavailable(logger)
	case "mixer":
		mixer, err := NewMixer(cfg.Audio.SampleRate, logger)
		if err != nil {
			log.Warn("forced mixer backend unavailable; audio is off",
				logging.Error(err),
				logging.String(logging.FieldEventType, "backend_unavailable"),
				logging.String(logging.FieldImpact, "alarms trigger but emit no sound"),
			)
			return NewUnavailable(logger)
		}
		log.Info("audio backend selected", logging.String(logging.FieldBackend, mixer.Name()))
		return mixer
	case "extproc":
		return detectExtProc(cfg, logger, log)
	default: // auto
		if mixer, err := NewMixer(cfg.Audio.SampleRate, logger); err == nil {
			log.Info("audio backend selected", logging.String(logging.FieldBackend, mixer.Name()))
			return mixer
		} else {
			log.Warn("in-process mixer unavailable; probing external player",
				logging.Error(err),
				logging.String(logging.FieldEventType, "mixer_probe_failed"),
			)
		}
		return detectExtProc(cfg, logger, log)
	}
}

func detectExtProc(cfg *config.Config, logger, log *slog.Logger) Backend {
	player, ok := deps.DetectPlayer(cfg.Audio.PlayerCommand, cfg.Audio.PlayerArgs)
	if !ok {
		log.Warn("no external audio player found; audio is off",
			logging.String(logging.FieldEventType, "backend_unavailable"),
			logging.String(logging.FieldImpact, "alarms trigger but emit no sound"),
			logging.String(logging.FieldErrorHint, "install aplay/paplay/ffplay or set audio.player_command"),
		)
		return NewUnavailable(logger)
	}

	if _, err := exec.LookPath(cfg.Audio.TranscoderCommand); err != nil {
		log.Warn("transcoder not found; only WAV assets will play",
			logging.String("transcoder", cfg.Audio.TranscoderCommand),
			logging.String(logging.FieldEventType, "transcoder_missing"),
		)
	}

	log.Info("audio backend selected",
		logging.String(logging.FieldBackend, "extproc"),
		logging.String("player", player.Command),
	)
	return NewExtProc(player, cfg.Audio.TranscoderCommand,
		cfg.TranscodeTimeout(), cfg.PlaybackTimeout(), logger)
}
