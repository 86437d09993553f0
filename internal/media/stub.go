package media

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// ExtensionProber guesses media info from the file extension. It is used in
// headless runs where ffprobe is not installed, and in tests.
type ExtensionProber struct {
	logger   *slog.Logger
	duration int64
}

func NewExtensionProber(logger *slog.Logger, duration int64) *ExtensionProber {
	if duration <= 0 {
		duration = DefaultStillDuration
	}
	return &ExtensionProber{logger: logger, duration: duration}
}

var extensionTypes = map[string]string{
	".png":  "image",
	".jpg":  "image",
	".jpeg": "image",
	".gif":  "image",
	".mp4":  "video",
	".mov":  "video",
	".mp3":  "audio",
}

func (p *ExtensionProber) Probe(ctx context.Context, path string) (*Info, error) {
	ft, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if p.logger != nil {
		p.logger.Info("probe without ffprobe, guessing from extension", "path", path, "filetype", ft)
	}
	return &Info{Filetype: ft, Duration: p.duration}, nil
}
