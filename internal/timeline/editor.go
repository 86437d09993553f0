package timeline

import (
	"math"

	"github.com/framecut/framecut-agent/internal/timecode"
)

// MinStretchDuration is the shortest duration a static element can be
// stretched to; a stretch that would leave it this short or shorter is
// ignored.
const MinStretchDuration = 10

// MagnificationSource provides the current zoom. *timecode.Zoom satisfies it.
type MagnificationSource interface {
	Magnification() timecode.Magnification
}

// session is the state captured when a pointer goes down on an element.
type session struct {
	target         Target
	originStart    int64
	originDuration int64
	originTrim     Trim
	pointerX       float64
	m              timecode.Magnification
}

// MoveResult describes the effect of one pointer move.
type MoveResult struct {
	Element Element    `json:"element"`
	Changed bool       `json:"changed"`
	Snap    SnapResult `json:"snap"`
}

// Editor turns pointer gestures into element patches. At most one gesture is
// in progress; a new PointerDown replaces it. Editor is not safe for
// concurrent use.
type Editor struct {
	store    *Store
	layout   Layout
	zoom     MagnificationSource
	viewport Viewport
	active   *session
}

func NewEditor(store *Store, layout Layout, zoom MagnificationSource) *Editor {
	return &Editor{store: store, layout: layout, zoom: zoom}
}

func (ed *Editor) Layout() Layout { return ed.layout }

func (ed *Editor) Viewport() Viewport { return ed.viewport }

func (ed *Editor) SetViewport(vp Viewport) { ed.viewport = vp }

// Hover reports what a pointer at x, y would grab, for choosing the cursor.
func (ed *Editor) Hover(x, y float64) Target {
	return FindTarget(ed.store, ed.layout, ed.viewport, ed.zoom.Magnification(), x, y)
}

// Active returns the target of the gesture in progress.
func (ed *Editor) Active() (Target, bool) {
	if ed.active == nil {
		return Target{Zone: ZoneNone}, false
	}
	return ed.active.target, true
}

// PointerDown starts a gesture on whatever is under the pointer. Nothing is
// started when the pointer misses every element or the zoom is invalid.
func (ed *Editor) PointerDown(x, y float64) Target {
	ed.active = nil

	m := ed.zoom.Magnification()
	target := FindTarget(ed.store, ed.layout, ed.viewport, m, x, y)
	if target.Zone == ZoneNone {
		return target
	}
	e, _ := ed.store.Get(target.ID)
	ed.active = &session{
		target:         target,
		originStart:    e.StartTime,
		originDuration: e.Duration,
		originTrim:     e.Trim,
		pointerX:       x,
		m:              m,
	}
	return target
}

// PointerMove updates the element of the gesture in progress. Without a
// gesture it does nothing. A move the element rules reject keeps the previous
// state and reports Changed false.
func (ed *Editor) PointerMove(x, y float64) (MoveResult, error) {
	sess := ed.active
	if sess == nil {
		return MoveResult{}, nil
	}
	cur, ok := ed.store.Get(sess.target.ID)
	if !ok {
		ed.active = nil
		return MoveResult{}, ErrNotFound
	}

	dx := int64(math.Round(x - sess.pointerX))
	delta := timecode.PixelsToMilliseconds(dx, sess.m)

	var (
		patch Patch
		snap  SnapResult
	)
	switch sess.target.Zone {
	case ZoneMove:
		patch, snap = ed.move(cur, delta)
	case ZoneStretchStart:
		if cur.Static() {
			patch, snap = ed.stretchStart(cur, delta)
		} else {
			patch = ed.trimStart(cur, delta)
		}
	case ZoneStretchEnd:
		if cur.Static() {
			patch, snap = ed.stretchEnd(cur, delta)
		} else {
			patch = ed.trimEnd(cur, delta)
		}
	}

	if patch == (Patch{}) {
		return MoveResult{Element: cur}, nil
	}
	next, err := ed.store.Apply(cur.ID, patch)
	if err != nil {
		return MoveResult{Element: cur}, err
	}
	return MoveResult{Element: next, Changed: next != cur, Snap: snap}, nil
}

// PointerUp ends the gesture and returns the final element state.
func (ed *Editor) PointerUp() (Element, bool) {
	sess := ed.active
	ed.active = nil
	if sess == nil {
		return Element{}, false
	}
	return ed.store.Get(sess.target.ID)
}

func (ed *Editor) move(cur Element, delta int64) (Patch, SnapResult) {
	cur.StartTime = max(ed.active.originStart+delta, 0)
	snap := Snap(cur, ed.store.Elements(), ed.active.m, ed.layout.SnapRange)
	return Patch{StartTime: ref(snap.StartTime)}, snap
}

func (ed *Editor) stretchStart(cur Element, delta int64) (Patch, SnapResult) {
	sess := ed.active
	end := sess.originStart + sess.originDuration
	start := max(sess.originStart+delta, 0)

	var snap SnapResult
	px := timecode.MillisecondsToPixels(start, sess.m)
	if edge, id, ok := snapEdge(px, cur.ID, ed.store.Elements(), sess.m, ed.layout.SnapRange); ok {
		start = max(timecode.PixelsToMilliseconds(edge, sess.m), 0)
		snap = SnapResult{Snapped: true, StartTime: start, OtherID: id, GuideX: edge}
	}

	if end-start <= MinStretchDuration {
		return Patch{}, SnapResult{}
	}
	return Patch{StartTime: ref(start), Duration: ref(end - start)}, snap
}

func (ed *Editor) stretchEnd(cur Element, delta int64) (Patch, SnapResult) {
	sess := ed.active
	duration := sess.originDuration + delta

	var snap SnapResult
	px := timecode.MillisecondsToPixels(sess.originStart+duration, sess.m)
	if edge, id, ok := snapEdge(px, cur.ID, ed.store.Elements(), sess.m, ed.layout.SnapRange); ok {
		duration = timecode.PixelsToMilliseconds(edge, sess.m) - sess.originStart
		snap = SnapResult{Snapped: true, StartTime: sess.originStart, OtherID: id, GuideX: edge}
	}

	if duration <= MinStretchDuration {
		return Patch{}, SnapResult{}
	}
	return Patch{Duration: ref(duration)}, snap
}

// trimStart moves the start of a dynamic element's trim window. The window is
// clamped to the source and never inverted.
func (ed *Editor) trimStart(cur Element, delta int64) Patch {
	start := max(ed.active.originTrim.StartTime+delta, 0)
	if start >= cur.Trim.EndTime {
		return Patch{}
	}
	return Patch{Trim: &Trim{StartTime: start, EndTime: cur.Trim.EndTime}}
}

func (ed *Editor) trimEnd(cur Element, delta int64) Patch {
	end := min(ed.active.originTrim.EndTime+delta, cur.TrimLimit())
	if end <= cur.Trim.StartTime {
		return Patch{}
	}
	return Patch{Trim: &Trim{StartTime: cur.Trim.StartTime, EndTime: end}}
}
