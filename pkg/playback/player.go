// Package playback plays synthesized audio files through an external player.
package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// CommandPlayer runs Args followed by the audio path and waits for it to exit
type CommandPlayer struct {
	Args []string
}

// Play blocks until the file has been played
func (p CommandPlayer) Play(ctx context.Context, path string) error {
	if len(p.Args) == 0 {
		return errors.New("no audio player configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}

	args := append(append([]string{}, p.Args[1:]...), path)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Args[0], args...)
	cmd.Stderr = &stderr

	slog.Debug("Playing audio", "player", p.Args[0], "path", path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio player %s failed: %w: %s", p.Args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
