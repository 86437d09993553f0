package media

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultStillDuration is the timeline length given to imported images.
const DefaultStillDuration = 5000

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType   string            `json:"codec_type"`
	CodecName   string            `json:"codec_name"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Duration    string            `json:"duration"`
	RFrameRate  string            `json:"r_frame_rate"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

var stillFormats = map[string]bool{
	"image2":    true,
	"png_pipe":  true,
	"jpeg_pipe": true,
	"gif":       true,
	"webp_pipe": true,
}

// ParseProbe reads ffprobe's JSON output (-show_streams -show_format).
func ParseProbe(data []byte) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := &Info{}
	var video, audio *probeStream
	for i := range out.Streams {
		s := &out.Streams[i]
		switch s.CodecType {
		case "video":
			if s.Disposition["attached_pic"] == 1 || video != nil {
				continue
			}
			video = s
		case "audio":
			if audio == nil {
				audio = s
			}
		}
	}

	if video != nil {
		info.Width, info.Height = video.Width, video.Height
		info.VideoCodec = video.CodecName
		info.FrameRate = parseRate(video.RFrameRate)
	}
	if audio != nil {
		info.AudioCodec = audio.CodecName
	}
	info.Duration = seconds(out.Format.Duration)
	if info.Duration == 0 && video != nil {
		info.Duration = seconds(video.Duration)
	}

	still := false
	for _, name := range strings.Split(out.Format.FormatName, ",") {
		if stillFormats[name] {
			still = true
		}
	}

	switch {
	case video != nil && (still || info.Duration == 0):
		info.Filetype = "image"
		info.Duration = DefaultStillDuration
	case video != nil:
		info.Filetype = "video"
	case audio != nil && info.Duration > 0:
		info.Filetype = "audio"
	default:
		return nil, fmt.Errorf("%w: no usable streams in %q", ErrUnsupported, out.Format.FormatName)
	}
	return info, nil
}

func seconds(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int64(math.Round(f * 1000))
}

func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
