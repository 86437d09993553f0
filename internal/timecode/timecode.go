// Package timecode converts between timeline milliseconds and horizontal
// pixels under the zoom ("time magnification") chosen on the range slider.
package timecode

import (
	"errors"
	"math"
	"sync"
)

// msPerPixelUnit is the number of milliseconds covered by one pixel at
// magnification 1.
const msPerPixelUnit = 5

// rangeDivisor turns the slider value into a magnification.
const rangeDivisor = 4

var ErrInvalidMagnification = errors.New("time magnification must be greater than zero")

// Magnification scales every pixel/millisecond conversion.
type Magnification float64

// FromRange derives the magnification from the zoom slider value.
func FromRange(timelineRange float64) Magnification {
	return Magnification(timelineRange / rangeDivisor)
}

// Valid reports whether conversions under m are defined.
func (m Magnification) Valid() bool {
	f := float64(m)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// MillisecondsToPixels returns round((ms/5) * m). Results at or below zero
// collapse to 0, and an invalid magnification yields 0.
func MillisecondsToPixels(ms int64, m Magnification) int64 {
	if !m.Valid() {
		return 0
	}
	px := math.Round(float64(ms) / msPerPixelUnit * float64(m))
	if px <= 0 {
		return 0
	}
	return int64(px)
}

// PixelsToMilliseconds returns round((px*5) / m). Negative pixel deltas give
// negative durations; an invalid magnification yields 0.
func PixelsToMilliseconds(px int64, m Magnification) int64 {
	if !m.Valid() {
		return 0
	}
	return int64(math.Round(float64(px) * msPerPixelUnit / float64(m)))
}

// CursorAt maps a page-relative pointer x to a timeline time, accounting for
// horizontal scroll and the width of the track header column.
func CursorAt(pageX, scroll, leftOffset float64, m Magnification) int64 {
	ms := PixelsToMilliseconds(int64(math.Round(pageX+scroll-leftOffset)), m)
	if ms < 0 {
		return 0
	}
	return ms
}

// Zoom holds the slider value and hands out the derived magnification.
type Zoom struct {
	mu            sync.RWMutex
	timelineRange float64
}

func NewZoom(timelineRange float64) *Zoom {
	return &Zoom{timelineRange: timelineRange}
}

// SetRange accepts the slider's zero extreme; conversions are no-ops there.
func (z *Zoom) SetRange(timelineRange float64) error {
	if timelineRange < 0 || math.IsNaN(timelineRange) || math.IsInf(timelineRange, 0) {
		return ErrInvalidMagnification
	}
	z.mu.Lock()
	z.timelineRange = timelineRange
	z.mu.Unlock()
	return nil
}

func (z *Zoom) Range() float64 {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.timelineRange
}

func (z *Zoom) Magnification() Magnification {
	return FromRange(z.Range())
}
