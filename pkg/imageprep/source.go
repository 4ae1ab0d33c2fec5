// Package imageprep obtains a still frame and prepares it for OCR.
package imageprep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Source produces one encoded image per call
type Source interface {
	Capture(ctx context.Context) ([]byte, error)
}

// FileSource reads a fixed image file, used for testing without a camera
type FileSource struct {
	Path string
}

func (s FileSource) Capture(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test image: %w", err)
	}
	return data, nil
}

// CommandSource runs an external capture command that writes one encoded
// frame to stdout, e.g. ffmpeg reading a v4l2 device
type CommandSource struct {
	Args []string
}

func (s CommandSource) Capture(ctx context.Context) ([]byte, error) {
	if len(s.Args) == 0 {
		return nil, errors.New("no capture command configured")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("capture command %s failed: %w: %s", s.Args[0], err, strings.TrimSpace(stderr.String()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("capture command %s produced no image", s.Args[0])
	}
	return out, nil
}
