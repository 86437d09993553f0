package timeline

import (
	"testing"

	"github.com/framecut/framecut-agent/internal/timecode"
)

func TestLayout_Bars(t *testing.T) {
	s := newTestStore(t,
		image("a", 1000, 1000),
		video("v", 0, 5000, Trim{1000, 4000}),
	)
	bars := DefaultLayout().Bars(s, Viewport{Scroll: 50, VerticalScroll: 6}, 1)

	want := []Bar{
		{ID: "a", Row: 1, Left: 150, Width: 200, Top: 30, Height: 30, HandleStart: 150, HandleEnd: 350},
		{ID: "v", Row: 2, Left: -50, Width: 1000, Top: 66, Height: 30, HandleStart: 150, HandleEnd: 750},
	}
	if len(bars) != len(want) {
		t.Fatalf("got %d bars, want %d", len(bars), len(want))
	}
	for i := range want {
		if bars[i] != want[i] {
			t.Errorf("bar %d = %+v, want %+v", i, bars[i], want[i])
		}
	}
}

func TestFindTarget(t *testing.T) {
	s := newTestStore(t,
		image("a", 0, 1000),                   // row 1: x 0..200, y 36..66
		video("v", 0, 5000, Trim{1000, 4000}), // row 2: handles 200 and 800, y 72..102
		image("tiny", 0, 50),                  // row 3: x 0..10, y 108..138
	)
	layout := DefaultLayout()

	tests := []struct {
		name string
		x, y float64
		want Target
	}{
		{"static start handle", 5, 50, Target{"a", ZoneStretchStart}},
		{"static left of bar inside margin", -5, 50, Target{"a", ZoneStretchStart}},
		{"static body", 100, 50, Target{"a", ZoneMove}},
		{"static end handle", 195, 50, Target{"a", ZoneStretchEnd}},
		{"static past end margin", 215, 50, Target{Zone: ZoneNone}},
		{"on row boundary", 100, 36, Target{Zone: ZoneNone}},
		{"between rows", 100, 70, Target{Zone: ZoneNone}},
		{"dynamic trim start", 200, 80, Target{"v", ZoneStretchStart}},
		{"dynamic body", 500, 80, Target{"v", ZoneMove}},
		{"dynamic trim end", 795, 80, Target{"v", ZoneStretchEnd}},
		{"dynamic before trim window", 100, 80, Target{"v", ZoneMove}},
		{"dynamic after trim window", 900, 80, Target{"v", ZoneMove}},
		{"dynamic past bar end", 1015, 80, Target{Zone: ZoneNone}},
		{"narrow bar prefers start", 5, 120, Target{"tiny", ZoneStretchStart}},
		{"narrow bar end", 15, 120, Target{"tiny", ZoneStretchEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindTarget(s, layout, Viewport{}, 1, tt.x, tt.y)
			if got != tt.want {
				t.Errorf("FindTarget(%v, %v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestFindTarget_Scrolled(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))
	got := FindTarget(s, DefaultLayout(), Viewport{Scroll: 100}, 1, 95, 50)
	if want := (Target{"a", ZoneStretchEnd}); got != want {
		t.Errorf("FindTarget() = %+v, want %+v", got, want)
	}
}

func TestFindTarget_InvalidZoom(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))
	for _, m := range []timecode.Magnification{0, -1} {
		if got := FindTarget(s, DefaultLayout(), Viewport{}, m, 5, 50); got.Zone != ZoneNone {
			t.Errorf("FindTarget() at m=%v = %+v, want none", m, got)
		}
	}
}

func TestFindTarget_ExactlyOneResult(t *testing.T) {
	s := newTestStore(t,
		image("a", 0, 1000),
		image("b", 900, 100),
		video("v", 200, 3000, Trim{100, 300}),
	)
	layout := DefaultLayout()
	for x := -20.0; x <= 800; x += 3 {
		for y := 0.0; y <= 140; y += 2 {
			got := FindTarget(s, layout, Viewport{}, 1, x, y)
			if (got.Zone == ZoneNone) != (got.ID == "") {
				t.Fatalf("FindTarget(%v, %v) = %+v: zone and id disagree", x, y, got)
			}
		}
	}
}

func TestZone_String(t *testing.T) {
	tests := map[Zone]string{
		ZoneNone:         "none",
		ZoneMove:         "move",
		ZoneStretchStart: "stretchStart",
		ZoneStretchEnd:   "stretchEnd",
	}
	for z, want := range tests {
		if got := z.String(); got != want {
			t.Errorf("Zone(%d).String() = %q, want %q", int(z), got, want)
		}
	}
}
