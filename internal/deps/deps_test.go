package deps_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"belltower/internal/deps"
)

func stubBinaries(t *testing.T, names ...string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries are not runnable on windows")
	}
	binDir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir)
}

func TestCheckBinariesReportsAvailability(t *testing.T) {
	stubBinaries(t, "ffmpeg")

	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Transcoder", Command: "ffmpeg"},
		{Name: "Player", Command: "definitely-not-here"},
		{Name: "Unset", Command: ""},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("stubbed binary should be available: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("missing binary should carry a detail: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("unset command should be reported: %+v", statuses[2])
	}
}

func TestDetectPlayerHonorsOverride(t *testing.T) {
	stubBinaries(t, "myplayer")

	player, ok := deps.DetectPlayer("myplayer", []string{"-x"})
	if !ok {
		t.Fatal("override player should be detected")
	}
	if player.Command != "myplayer" || len(player.Args) != 1 || player.Args[0] != "-x" {
		t.Fatalf("unexpected player: %+v", player)
	}

	if _, ok := deps.DetectPlayer("missing-player", nil); ok {
		t.Fatal("missing override must not fall back to candidates")
	}
}

func TestDetectPlayerProbesCandidates(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("candidate list is platform specific")
	}
	stubBinaries(t, "paplay")

	player, ok := deps.DetectPlayer("", nil)
	if !ok || player.Command != "paplay" {
		t.Fatalf("expected paplay candidate, got %+v ok=%v", player, ok)
	}

	t.Setenv("PATH", t.TempDir())
	if _, ok := deps.DetectPlayer("", nil); ok {
		t.Fatal("no candidates on PATH should report unavailable")
	}
}
