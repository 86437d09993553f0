package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const defaultProbeTimeout = 30 * time.Second

// FFmpeg probes and grabs frames with the ffprobe and ffmpeg binaries on PATH.
type FFmpeg struct {
	logger  *slog.Logger
	timeout time.Duration
}

func NewFFmpeg(logger *slog.Logger) *FFmpeg {
	return &FFmpeg{logger: logger, timeout: defaultProbeTimeout}
}

func (f *FFmpeg) Probe(ctx context.Context, path string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	info, err := ParseProbe([]byte(out))
	if err != nil {
		return nil, err
	}
	if f.logger != nil {
		f.logger.Debug("probed media", "path", path, "filetype", info.Filetype, "duration_ms", info.Duration)
	}
	return info, nil
}

// Thumbnail writes a single JPEG frame taken atMs into the source.
func (f *FFmpeg) Thumbnail(ctx context.Context, path, outPath string, atMs int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.3f", float64(atMs)/1000)}).
		Output(outPath, ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("thumbnail %s at %dms: %w", path, atMs, err)
	}
	return nil
}
