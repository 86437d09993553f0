package timeline

import "github.com/framecut/framecut-agent/internal/timecode"

const (
	DefaultRowHeight     = 30
	DefaultRowSpacing    = 1.2
	DefaultStretchMargin = 10
	DefaultSnapRange     = 10
)

// Layout holds the fixed geometry of the track view in pixels.
type Layout struct {
	RowHeight     float64 `json:"row_height"`
	RowSpacing    float64 `json:"row_spacing"`
	StretchMargin float64 `json:"stretch_margin"`
	SnapRange     float64 `json:"snap_range"`
}

func DefaultLayout() Layout {
	return Layout{
		RowHeight:     DefaultRowHeight,
		RowSpacing:    DefaultRowSpacing,
		StretchMargin: DefaultStretchMargin,
		SnapRange:     DefaultSnapRange,
	}
}

// Viewport is the scroll state of the track view.
type Viewport struct {
	Scroll         float64 `json:"scroll"`
	VerticalScroll float64 `json:"vertical_scroll"`
}

type Zone int

const (
	ZoneNone Zone = iota
	ZoneMove
	ZoneStretchStart
	ZoneStretchEnd
)

func (z Zone) String() string {
	switch z {
	case ZoneMove:
		return "move"
	case ZoneStretchStart:
		return "stretchStart"
	case ZoneStretchEnd:
		return "stretchEnd"
	default:
		return "none"
	}
}

func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// Target is what lies under the pointer. ID is empty for ZoneNone.
type Target struct {
	ID   string `json:"id,omitempty"`
	Zone Zone   `json:"zone"`
}

// Bar is the on-screen placement of one element. For dynamic elements
// HandleStart and HandleEnd sit on the trim edges; for static elements they
// are the bar edges.
type Bar struct {
	ID          string  `json:"id"`
	Row         int     `json:"row"`
	Left        float64 `json:"left"`
	Width       float64 `json:"width"`
	Top         float64 `json:"top"`
	Height      float64 `json:"height"`
	HandleStart float64 `json:"handle_start"`
	HandleEnd   float64 `json:"handle_end"`
}

func (l Layout) bar(e Element, row int, vp Viewport, m timecode.Magnification) Bar {
	left := float64(timecode.MillisecondsToPixels(e.StartTime, m)) - vp.Scroll
	width := float64(timecode.MillisecondsToPixels(e.Duration, m))
	b := Bar{
		ID:          e.ID,
		Row:         row,
		Left:        left,
		Width:       width,
		Top:         float64(row)*l.RowHeight*l.RowSpacing - vp.VerticalScroll,
		Height:      l.RowHeight,
		HandleStart: left,
		HandleEnd:   left + width,
	}
	if !e.Static() {
		b.HandleStart = float64(timecode.MillisecondsToPixels(e.VisibleStart(), m)) - vp.Scroll
		b.HandleEnd = float64(timecode.MillisecondsToPixels(e.VisibleEnd(), m)) - vp.Scroll
	}
	return b
}

// Bars places every element, in row order.
func (l Layout) Bars(s *Store, vp Viewport, m timecode.Magnification) []Bar {
	bars := make([]Bar, 0, s.Len())
	row := 0
	s.ForEach(func(e Element) {
		row++
		bars = append(bars, l.bar(e, row, vp, m))
	})
	return bars
}

// zoneAt classifies x, y against one bar. The grab area is the whole bar
// widened by the stretch margin, including the trimmed-out parts of dynamic
// elements. The start handle wins where the two handles overlap.
func (l Layout) zoneAt(b Bar, x, y float64) Zone {
	if !(y > b.Top && y < b.Top+b.Height) {
		return ZoneNone
	}
	margin := l.StretchMargin
	if !(x > b.Left-margin && x < b.Left+b.Width+margin) {
		return ZoneNone
	}
	switch {
	case x > b.HandleStart-margin && x < b.HandleStart+margin:
		return ZoneStretchStart
	case x > b.HandleEnd-margin && x < b.HandleEnd+margin:
		return ZoneStretchEnd
	default:
		return ZoneMove
	}
}

// FindTarget returns the first element in row order whose grab area contains
// the pointer. Rows do not overlap, but the first match wins regardless.
func FindTarget(s *Store, l Layout, vp Viewport, m timecode.Magnification, x, y float64) Target {
	if !m.Valid() {
		return Target{Zone: ZoneNone}
	}
	for _, b := range l.Bars(s, vp, m) {
		if z := l.zoneAt(b, x, y); z != ZoneNone {
			return Target{ID: b.ID, Zone: z}
		}
	}
	return Target{Zone: ZoneNone}
}
