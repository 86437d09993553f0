package timecode

import (
	"math"
	"testing"
)

func TestFromRange(t *testing.T) {
	if got := FromRange(4); got != 1 {
		t.Fatalf("FromRange(4) = %v, want 1", got)
	}
	if got := FromRange(6); got != 1.5 {
		t.Fatalf("FromRange(6) = %v, want 1.5", got)
	}
	if FromRange(0).Valid() {
		t.Fatal("zero magnification should be invalid")
	}
}

func TestMillisecondsToPixels(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		m    Magnification
		want int64
	}{
		{"one second at 1x", 1000, 1, 200},
		{"one second at quarter", 1000, 0.25, 50},
		{"rounds down", 7, 1, 1},
		{"rounds up", 8, 1, 2},
		{"negative clamps", -10, 1, 0},
		{"zero magnification no-op", 1000, 0, 0},
		{"negative magnification no-op", 1000, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MillisecondsToPixels(tt.ms, tt.m); got != tt.want {
				t.Errorf("MillisecondsToPixels(%d, %v) = %d, want %d", tt.ms, tt.m, got, tt.want)
			}
		})
	}
}

func TestPixelsToMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		px   int64
		m    Magnification
		want int64
	}{
		{"drag 250px at 1x", 250, 1, 1250},
		{"negative delta", -400, 1, -2000},
		{"zoomed out", 50, 0.25, 1000},
		{"zoomed in", 3, 1.5, 10},
		{"zero magnification no-op", 250, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelsToMilliseconds(tt.px, tt.m); got != tt.want {
				t.Errorf("PixelsToMilliseconds(%d, %v) = %d, want %d", tt.px, tt.m, got, tt.want)
			}
		})
	}
}

func TestRoundTripDriftIsBounded(t *testing.T) {
	for _, m := range []Magnification{0.25, 0.5, 0.75, 1, 1.25, 1.5} {
		bound := int64(math.Ceil(5 / float64(m)))
		for ms := int64(0); ms <= 5000; ms++ {
			back := PixelsToMilliseconds(MillisecondsToPixels(ms, m), m)
			drift := back - ms
			if drift < 0 {
				drift = -drift
			}
			if drift > bound {
				t.Fatalf("m=%v ms=%d: round trip gave %d, drift %d > %d", m, ms, back, drift, bound)
			}
		}
	}
}

func TestCursorAt(t *testing.T) {
	if got := CursorAt(300, 100, 100, 1); got != 1500 {
		t.Errorf("CursorAt() = %d, want 1500", got)
	}
	if got := CursorAt(10, 0, 100, 1); got != 0 {
		t.Errorf("CursorAt() left of the tracks = %d, want 0", got)
	}
}

func TestZoom(t *testing.T) {
	z := NewZoom(4)
	if z.Magnification() != 1 {
		t.Fatalf("Magnification() = %v, want 1", z.Magnification())
	}

	if err := z.SetRange(-1); err == nil {
		t.Fatal("SetRange(-1) should fail")
	}
	if z.Range() != 4 {
		t.Fatalf("Range() after rejected update = %v, want 4", z.Range())
	}

	if err := z.SetRange(0); err != nil {
		t.Fatalf("SetRange(0) error = %v", err)
	}
	if z.Magnification().Valid() {
		t.Fatal("slider at zero should give an invalid magnification")
	}
}

func TestTicks_SecondsBucket(t *testing.T) {
	ticks := Ticks(1, 0, 100)
	if len(ticks) < 21 {
		t.Fatalf("got %d ticks, want at least 21", len(ticks))
	}
	if !ticks[0].Major || ticks[0].Label != "0s" {
		t.Errorf("first tick = %+v, want major 0s", ticks[0])
	}
	if ticks[1].Major {
		t.Errorf("second tick should be minor")
	}
	if !ticks[10].Major || ticks[10].Label != "1s" {
		t.Errorf("tick 10 = %+v, want major 1s", ticks[10])
	}
	if math.Abs(ticks[10].X-200) > 0.001 {
		t.Errorf("tick 10 X = %v, want 200", ticks[10].X)
	}
}

func TestTicks_Scrolled(t *testing.T) {
	ticks := Ticks(1, 250, 100)
	if ticks[0].Label != "1s" {
		t.Errorf("first label = %q, want 1s", ticks[0].Label)
	}
	if math.Abs(ticks[0].X+50) > 0.001 {
		t.Errorf("first X = %v, want -50", ticks[0].X)
	}
}

func TestTicks_Invalid(t *testing.T) {
	if Ticks(0, 0, 100) != nil {
		t.Error("zero magnification should produce no ticks")
	}
	if Ticks(1, 0, 0) != nil {
		t.Error("zero width should produce no ticks")
	}
}

func TestFormatLabels(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{formatSeconds(5), "5s"},
		{formatSeconds(75), "1m 15s"},
		{formatMinutes(60), "60m"},
		{formatMinutes(90), "1h 30m"},
		{formatTick(2, "h"), "2h"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}
