package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/consts"
)

// Extractor pulls a transcription-ready audio track out of a video file.
type Extractor interface {
	Extract(ctx context.Context, src, dst string) error
}

// FFmpeg extracts audio by shelling out to the ffmpeg binary.
type FFmpeg struct {
	Bin string
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Bin: "ffmpeg"}
}

// Extract decodes src and writes a mono 16kHz 16-bit PCM WAV to dst,
// overwriting any existing file.
func (f *FFmpeg) Extract(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.Bin,
		"-y", "-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(consts.Channels),
		"-ar", strconv.Itoa(consts.SampleRate),
		"-f", "wav",
		dst,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
