package timeline

import "github.com/framecut/framecut-agent/internal/timecode"

// SnapResult is the outcome of the guide. When Snapped is false StartTime is
// the target's own start time.
type SnapResult struct {
	Snapped   bool   `json:"snapped"`
	StartTime int64  `json:"start_time"`
	OtherID   string `json:"other_id,omitempty"`
	// GuideX is the pixel position of the edge that was matched, for drawing
	// the guide line.
	GuideX int64 `json:"guide_x"`
}

// edges returns the pixel positions of the visible start and end of e. Each
// edge is converted from its timeline time in one step so rounding matches the
// drawn bar.
func edges(e Element, m timecode.Magnification) (start, end int64) {
	return timecode.MillisecondsToPixels(e.VisibleStart(), m),
		timecode.MillisecondsToPixels(e.VisibleEnd(), m)
}

func within(edge, other int64, checkRange float64) bool {
	d := float64(edge - other)
	return d > -checkRange && d < checkRange
}

// Snap aligns the target with the other elements. Each of the target's
// visible edges is compared with each edge of every other element, and a match
// within checkRange pixels moves the target so the two edges coincide. The
// target's own edges are measured once, so when several edges match the last
// one evaluated decides.
func Snap(target Element, others []Element, m timecode.Magnification, checkRange float64) SnapResult {
	res := SnapResult{StartTime: target.StartTime}
	if !m.Valid() {
		return res
	}

	start, end := edges(target, m)
	// offsets from the bar's left to its visible edges
	startOffset := start - timecode.MillisecondsToPixels(target.StartTime, m)
	endOffset := end - timecode.MillisecondsToPixels(target.StartTime, m)

	var left int64
	match := func(px, guide int64, id string) {
		left = px
		res.Snapped = true
		res.GuideX = guide
		res.OtherID = id
	}

	for _, o := range others {
		if o.ID == target.ID {
			continue
		}
		os, oe := edges(o, m)
		if within(start, os, checkRange) {
			match(os-startOffset, os, o.ID)
		}
		if within(start, oe, checkRange) {
			match(oe-startOffset, oe, o.ID)
		}
		if within(end, os, checkRange) {
			match(os-endOffset, os, o.ID)
		}
		if within(end, oe, checkRange) {
			match(oe-endOffset, oe, o.ID)
		}
	}

	if res.Snapped {
		res.StartTime = max(timecode.PixelsToMilliseconds(left, m), 0)
	}
	return res
}

// snapEdge finds the last edge of another element within checkRange of px.
func snapEdge(px int64, exclude string, others []Element, m timecode.Magnification, checkRange float64) (int64, string, bool) {
	var (
		found int64
		id    string
		ok    bool
	)
	for _, o := range others {
		if o.ID == exclude {
			continue
		}
		os, oe := edges(o, m)
		for _, edge := range []int64{os, oe} {
			if within(px, edge, checkRange) {
				found, id, ok = edge, o.ID, true
			}
		}
	}
	return found, id, ok
}
