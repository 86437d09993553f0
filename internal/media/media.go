// Package media inspects source files so imported elements start with the
// right kind, duration and dimensions.
package media

import (
	"context"
	"errors"
)

var ErrUnsupported = errors.New("unsupported media")

// Info describes a media file as far as the timeline cares.
type Info struct {
	Filetype   string  `json:"filetype"`
	Duration   int64   `json:"duration"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`
}

type Prober interface {
	Probe(ctx context.Context, path string) (*Info, error)
}

type Thumbnailer interface {
	Thumbnail(ctx context.Context, path, outPath string, atMs int64) error
}
