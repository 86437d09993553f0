package timecode

import (
	"fmt"
	"math"
	"strconv"
)

// The ruler runs slightly denser than the element canvas.
const rulerScale = 1.1111111111

// tickTerm is the pixel distance between minor ticks at ruler magnification 1.
const tickTerm = 18

type Tick struct {
	X     float64 `json:"x"`
	Major bool    `json:"major"`
	Label string  `json:"label,omitempty"`
}

type tickBucket struct {
	step      int
	unitSplit int
	unit      string
}

func bucketFor(rm float64) tickBucket {
	switch {
	case rm >= 0.5:
		return tickBucket{step: 1, unitSplit: 1, unit: "s"}
	case rm >= 0.1:
		return tickBucket{step: 5, unitSplit: 1, unit: "s"}
	case rm >= 0.01:
		return tickBucket{step: 60, unitSplit: 60, unit: "m"}
	case rm >= 0.001:
		return tickBucket{step: 60 * 5, unitSplit: 60, unit: "m"}
	default:
		return tickBucket{step: 60 * 60, unitSplit: 60 * 60, unit: "h"}
	}
}

// Ticks lays out ruler ticks for a viewport of the given width scrolled by
// scroll pixels. Every tenth visible tick of a bucket is major and labelled.
func Ticks(m Magnification, scroll, width float64) []Tick {
	if !m.Valid() || width <= 0 {
		return nil
	}

	rm := float64(m) * rulerScale
	b := bucketFor(rm)

	span := 180 * rm * float64(b.step)
	startPoint := -math.Mod(scroll, span)
	startNumber := math.Floor(scroll / span)

	term := tickTerm * rm
	maxCount := width/term + term

	var ticks []Tick
	for count := 0; float64(count) < maxCount; count++ {
		if count%b.step > 0 {
			continue
		}

		tick := Tick{X: term*float64(count) + startPoint}
		if count%(10*b.step) == 0 {
			tick.Major = true
			value := (float64(count)/10 + startNumber*float64(b.step)) / float64(b.unitSplit)
			tick.Label = formatTick(value, b.unit)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

func formatTick(value float64, unit string) string {
	switch unit {
	case "s":
		return formatSeconds(int(value))
	case "m":
		return formatMinutes(int(value))
	default:
		return strconv.FormatFloat(value, 'f', -1, 64) + unit
	}
}

func formatSeconds(total int) string {
	if total < 0 {
		return ""
	}
	minutes := total / 60
	seconds := total % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func formatMinutes(total int) string {
	if total < 0 {
		return ""
	}
	if total <= 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
