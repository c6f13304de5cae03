package deps

import (
	"os/exec"
	"runtime"
)

// Player describes a resolved external audio player process.
type Player struct {
	Command string
	// Args are placed before the target file path.
	Args []string
}

// playerCandidates lists known WAV-capable players in probe order per
// platform. ffplay needs flags to run headless and exit at end of file.
func playerCandidates() []Player {
	switch runtime.GOOS {
	case "darwin":
		return []Player{
			{Command: "afplay"},
			{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "error"}},
		}
	case "windows":
		return []Player{
			{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "error"}},
		}
	default:
		return []Player{
			{Command: "aplay", Args: []string{"-q"}},
			{Command: "paplay"},
			{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "error"}},
		}
	}
}

// DetectPlayer resolves the external playback process. An override command,
// when given, wins without a PATH probe succeeding being required for the
// candidates. Returns false when no player is available on this host.
func DetectPlayer(override string, overrideArgs []string) (Player, bool) {
	if override != "" {
		if _, err := exec.LookPath(override); err == nil {
			return Player{Command: override, Args: overrideArgs}, true
		}
		return Player{}, false
	}
	for _, candidate := range playerCandidates() {
		if _, err := exec.LookPath(candidate.Command); err == nil {
			return candidate, true
		}
	}
	return Player{}, false
}

// AudioRequirements returns the external tool set for the status snapshot.
func AudioRequirements(transcoder, playerOverride string) []Requirement {
	player := playerOverride
	if player == "" {
		if detected, ok := DetectPlayer("", nil); ok {
			player = detected.Command
		}
	}
	return []Requirement{
		{
			Name:        "Transcoder",
			Command:     transcoder,
			Description: "Converts compressed sound assets to WAV for the external player",
			Optional:    true,
		},
		{
			Name:        "Player",
			Command:     player,
			Description: "External WAV playback process",
			Optional:    true,
		},
	}
}
