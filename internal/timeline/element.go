// Package timeline holds the clips of one edit, the pointer interactions that
// move and stretch them, and the edge-snapping guide.
//
// All times are integer milliseconds. Positions on screen are derived from
// times through a timecode.Magnification and are never stored.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNotFound            = errors.New("element not found")
	ErrDuplicateID         = errors.New("element id already exists")
	ErrUnknownFiletype     = errors.New("unknown element filetype")
	ErrNegativeStart       = errors.New("start time must not be negative")
	ErrInvalidDuration     = errors.New("duration must be greater than zero")
	ErrInvalidTrim         = errors.New("trim window must satisfy 0 <= start < end <= duration")
	ErrInvalidSpeed        = errors.New("speed must be greater than zero")
	ErrInvalidOpacity      = errors.New("opacity must be between 0 and 1")
	ErrSplitOutOfRange     = errors.New("split time must fall strictly inside the element")
	ErrAnimationNotAllowed = errors.New("keyframe animation is only supported on static elements")
	ErrKeyframeOutOfRange  = errors.New("keyframe time must fall within the element duration")
)

type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
)

var filetypeKinds = map[string]Kind{
	"image": KindStatic,
	"text":  KindStatic,
	"png":   KindStatic,
	"jpg":   KindStatic,
	"jpeg":  KindStatic,
	"gif":   KindStatic,
	"shape": KindStatic,
	"video": KindDynamic,
	"audio": KindDynamic,
	"mp4":   KindDynamic,
	"mp3":   KindDynamic,
	"mov":   KindDynamic,
}

// KindOf classifies a filetype. Matching ignores case and a leading dot, so
// file extensions can be passed directly.
func KindOf(filetype string) (Kind, error) {
	ft := strings.ToLower(strings.TrimPrefix(filetype, "."))
	kind, ok := filetypeKinds[ft]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFiletype, filetype)
	}
	return kind, nil
}

// Trim is the visible window into a dynamic element's source media,
// measured from the start of the source.
type Trim struct {
	StartTime int64 `json:"start_time" yaml:"start_time"`
	EndTime   int64 `json:"end_time" yaml:"end_time"`
}

func (t Trim) Length() int64 { return t.EndTime - t.StartTime }

type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Element struct {
	ID         string   `json:"id" yaml:"id"`
	Filetype   string   `json:"filetype" yaml:"filetype"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	StartTime  int64    `json:"start_time" yaml:"start_time"`
	Duration   int64    `json:"duration" yaml:"duration"`
	Trim       Trim     `json:"trim" yaml:"trim"`
	Speed      float64  `json:"speed" yaml:"speed"`
	Location   Location `json:"location" yaml:"location"`
	Opacity    float64  `json:"opacity" yaml:"opacity"`
	Width      float64  `json:"width" yaml:"width"`
	Height     float64  `json:"height" yaml:"height"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	SourcePath string   `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	StorageKey string   `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`
}

func (e Element) Static() bool { return e.Kind == KindStatic }

// TrimLimit is the largest allowed trim end: the source duration, shortened
// when the media plays faster than real time.
func (e Element) TrimLimit() int64 {
	if e.Speed <= 1 {
		return e.Duration
	}
	return int64(math.Round(float64(e.Duration) / e.Speed))
}

// VisibleStart and VisibleEnd bound the part of the timeline the element
// covers. For dynamic elements this is the trim window placed at StartTime.
func (e Element) VisibleStart() int64 {
	if e.Static() {
		return e.StartTime
	}
	return e.StartTime + e.Trim.StartTime
}

func (e Element) VisibleEnd() int64 {
	if e.Static() {
		return e.StartTime + e.Duration
	}
	return e.StartTime + e.Trim.EndTime
}

// Covers reports whether the timeline time t falls inside the visible range.
func (e Element) Covers(t int64) bool {
	return t >= e.VisibleStart() && t < e.VisibleEnd()
}

func (e Element) Geometry() Geometry {
	return Geometry{StartTime: e.StartTime, Duration: e.Duration, Trim: e.Trim}
}

func (e Element) validate() error {
	if e.StartTime < 0 {
		return ErrNegativeStart
	}
	if e.Duration <= 0 {
		return ErrInvalidDuration
	}
	if e.Opacity < 0 || e.Opacity > 1 || math.IsNaN(e.Opacity) {
		return ErrInvalidOpacity
	}
	if e.Static() {
		return nil
	}
	if e.Speed <= 0 || math.IsNaN(e.Speed) || math.IsInf(e.Speed, 0) {
		return ErrInvalidSpeed
	}
	if e.Trim.StartTime < 0 || e.Trim.StartTime >= e.Trim.EndTime || e.Trim.EndTime > e.TrimLimit() {
		return fmt.Errorf("%w: got [%d, %d] for duration %d", ErrInvalidTrim, e.Trim.StartTime, e.Trim.EndTime, e.TrimLimit())
	}
	return nil
}
