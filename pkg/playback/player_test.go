package playback

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCommandPlayer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	dir := t.TempDir()
	audio := filepath.Join(dir, "output_audio.mp3")
	if err := os.WriteFile(audio, []byte{0xff, 0xfb}, 0644); err != nil {
		t.Fatal(err)
	}
	played := filepath.Join(dir, "played")

	// the path is appended after the script's $0 placeholder
	p := CommandPlayer{Args: []string{"sh", "-c", `cp "$1" "` + played + `"`, "sh"}}
	if err := p.Play(context.Background(), audio); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(played); err != nil {
		t.Errorf("player did not receive the audio path: %v", err)
	}
}

func TestCommandPlayerErrors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	dir := t.TempDir()
	audio := filepath.Join(dir, "output_audio.mp3")
	if err := os.WriteFile(audio, []byte{0xff}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		player        CommandPlayer
		path          string
		errorContains string
	}{
		{"no player", CommandPlayer{}, audio, "no audio player"},
		{"missing file", CommandPlayer{Args: []string{"true"}}, filepath.Join(dir, "missing.mp3"), "audio file"},
		{"player fails", CommandPlayer{Args: []string{"sh", "-c", "echo cannot decode >&2; exit 3", "sh"}}, audio, "cannot decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.player.Play(context.Background(), tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing %q, got: %v", tt.errorContains, err)
			}
		})
	}
}
