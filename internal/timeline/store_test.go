package timeline

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/framecut/framecut-agent/internal/keyframe"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		filetype string
		want     Kind
		wantErr  bool
	}{
		{"image", KindStatic, false},
		{"text", KindStatic, false},
		{".PNG", KindStatic, false},
		{"shape", KindStatic, false},
		{"video", KindDynamic, false},
		{"mp3", KindDynamic, false},
		{"MOV", KindDynamic, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filetype, func(t *testing.T) {
			got, err := KindOf(tt.filetype)
			if (err != nil) != tt.wantErr {
				t.Fatalf("KindOf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_Add(t *testing.T) {
	s := newTestStore(t)

	e, err := s.Add(Element{Filetype: "mp4", Duration: 4000, Trim: Trim{0, 4000}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if e.ID == "" {
		t.Error("Add() should assign an id")
	}
	if e.Kind != KindDynamic {
		t.Errorf("Kind = %q, want dynamic", e.Kind)
	}
	if e.Speed != 1 {
		t.Errorf("Speed = %v, want 1", e.Speed)
	}
	if row, ok := s.Row(e.ID); !ok || row != 1 {
		t.Errorf("Row = %d, %v; want 1", row, ok)
	}
	if _, err := s.Animation(e.ID); err != nil {
		t.Errorf("Animation() error = %v", err)
	}
}

func TestStore_AddRejects(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))

	tests := []struct {
		name string
		elem Element
		want error
	}{
		{"duplicate id", image("a", 0, 1000), ErrDuplicateID},
		{"unknown filetype", Element{Filetype: "pdf", Duration: 10}, ErrUnknownFiletype},
		{"negative start", image("", -1, 1000), ErrNegativeStart},
		{"zero duration", image("", 0, 0), ErrInvalidDuration},
		{"inverted trim", video("", 0, 1000, Trim{500, 400}), ErrInvalidTrim},
		{"trim past duration", video("", 0, 1000, Trim{0, 1001}), ErrInvalidTrim},
		{"opacity above one", Element{Filetype: "text", Duration: 10, Opacity: 2}, ErrInvalidOpacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(tt.elem); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_ApplyRejectsAndKeepsPrevious(t *testing.T) {
	s := newTestStore(t, video("v", 100, 5000, Trim{0, 5000}))

	tests := []struct {
		name  string
		patch Patch
		want  error
	}{
		{"negative start", Patch{StartTime: ref(int64(-5))}, ErrNegativeStart},
		{"zero duration", Patch{Duration: ref(int64(0))}, ErrInvalidDuration},
		{"trim start equals end", Patch{Trim: &Trim{3000, 3000}}, ErrInvalidTrim},
		{"trim inverted", Patch{Trim: &Trim{4000, 3000}}, ErrInvalidTrim},
		{"duration shorter than trim", Patch{Duration: ref(int64(4000))}, ErrInvalidTrim},
		{"zero speed", Patch{Speed: ref(0.0)}, ErrInvalidSpeed},
		{"speed shortens trim limit", Patch{Speed: ref(2.0)}, ErrInvalidTrim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Apply("v", tt.patch)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Apply() error = %v, want %v", err, tt.want)
			}
			if got.StartTime != 100 || got.Duration != 5000 || got.Trim != (Trim{0, 5000}) {
				t.Errorf("Apply() returned %+v, want the unchanged element", got)
			}
		})
	}

	stored, _ := s.Get("v")
	if stored.StartTime != 100 || stored.Duration != 5000 || stored.Trim != (Trim{0, 5000}) {
		t.Errorf("stored element changed: %+v", stored)
	}
}

func TestStore_ApplyNotifies(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))

	var events []Event
	sub := s.Subscribe(func(ev Event) { events = append(events, ev) })
	defer sub.Close()

	if _, err := s.Apply("a", Patch{StartTime: ref(int64(500))}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	// no-op and rejected patches stay silent
	_, _ = s.Apply("a", Patch{StartTime: ref(int64(500))})
	_, _ = s.Apply("a", Patch{Duration: ref(int64(-1))})

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	want := Event{Type: EventGeometryChanged, ElementID: "a", Geometry: Geometry{StartTime: 500, Duration: 1000}}
	if events[0] != want {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}

	if _, err := s.Apply("missing", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Apply(missing) error = %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000), image("b", 0, 1000))

	var got []EventType
	sub := s.Subscribe(func(ev Event) { got = append(got, ev.Type) })
	defer sub.Close()

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := s.Get("a"); ok {
		t.Error("element still present after Remove")
	}
	if _, err := s.Animation("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("animation still present: %v", err)
	}
	if row, _ := s.Row("b"); row != 1 {
		t.Errorf("row of b = %d, want 1", row)
	}
	if len(got) != 1 || got[0] != EventRemoved {
		t.Errorf("events = %v, want [removed]", got)
	}
	if err := s.Remove("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestSubscription_Close(t *testing.T) {
	s := newTestStore(t)

	calls := 0
	sub := s.Subscribe(func(Event) { calls++ })
	if s.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", s.Listeners())
	}

	_, _ = s.Add(image("a", 0, 100))
	sub.Close()
	sub.Close()
	_, _ = s.Add(image("b", 0, 100))

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
	if s.Listeners() != 0 {
		t.Errorf("Listeners() = %d after Close, want 0", s.Listeners())
	}
}

func TestStore_End(t *testing.T) {
	s := newTestStore(t,
		image("a", 0, 1000),
		video("v", 500, 5000, Trim{1000, 2000}),
	)
	if got := s.End(); got != 2500 {
		t.Errorf("End() = %d, want 2500", got)
	}
}

func TestStore_InsertKeyframe(t *testing.T) {
	a := image("a", 0, 1000)
	a.Location = Location{X: 120, Y: 80}
	s := newTestStore(t, a, video("v", 0, 1000, Trim{0, 1000}))

	if err := s.InsertKeyframe("a", keyframe.ChannelPosition, keyframe.TrackY, keyframe.Point{T: 500, V: 10}); err != nil {
		t.Fatalf("InsertKeyframe() error = %v", err)
	}

	anim, _ := s.Animation("a")
	pos, _ := anim.Channel(keyframe.ChannelPosition)
	x, _ := pos.Points(keyframe.TrackX)
	y, _ := pos.Points(keyframe.TrackY)
	if len(x) != 1 || x[0] != (keyframe.Point{T: 0, V: 120}) {
		t.Errorf("x points = %v, want anchor at 120", x)
	}
	if len(y) != 2 || y[0] != (keyframe.Point{T: 0, V: 80}) || y[1] != (keyframe.Point{T: 500, V: 10}) {
		t.Errorf("y points = %v", y)
	}

	tests := []struct {
		name string
		id   string
		ch   string
		p    keyframe.Point
		want error
	}{
		{"dynamic element", "v", keyframe.ChannelOpacity, keyframe.Point{T: 10, V: 0.5}, ErrAnimationNotAllowed},
		{"past duration", "a", keyframe.ChannelOpacity, keyframe.Point{T: 1001, V: 0.5}, ErrKeyframeOutOfRange},
		{"unknown channel", "a", "scale", keyframe.Point{T: 10, V: 2}, keyframe.ErrUnknownChannel},
		{"missing element", "x", keyframe.ChannelOpacity, keyframe.Point{T: 10, V: 1}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.InsertKeyframe(tt.id, tt.ch, 0, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("InsertKeyframe() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_RemoveKeyframe(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))
	_ = s.InsertKeyframe("a", keyframe.ChannelOpacity, keyframe.TrackOpacity, keyframe.Point{T: 400, V: 0})

	var events int
	sub := s.Subscribe(func(Event) { events++ })
	defer sub.Close()

	removed, err := s.RemoveKeyframe("a", keyframe.ChannelOpacity, keyframe.TrackOpacity, 400)
	if err != nil || !removed {
		t.Fatalf("RemoveKeyframe() = %v, %v", removed, err)
	}
	if _, err := s.RemoveKeyframe("a", keyframe.ChannelOpacity, keyframe.TrackOpacity, 0); !errors.Is(err, keyframe.ErrAnchorPoint) {
		t.Errorf("removing anchor error = %v", err)
	}
	if events != 1 {
		t.Errorf("events = %d, want 1", events)
	}
}

func TestStore_RestoreKeyframes(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000), video("v", 0, 1000, Trim{0, 1000}))
	tracks := [][]keyframe.Point{{{T: 0, V: 1}, {T: 500, V: 0}}}

	var events int
	sub := s.Subscribe(func(Event) { events++ })
	defer sub.Close()

	if err := s.RestoreKeyframes("a", keyframe.ChannelOpacity, true, tracks); err != nil {
		t.Fatalf("RestoreKeyframes() on image error = %v", err)
	}
	anim, _ := s.Animation("a")
	if !anim.Active() {
		t.Error("image animation not active after restore")
	}

	if err := s.RestoreKeyframes("v", keyframe.ChannelOpacity, true, tracks); !errors.Is(err, ErrAnimationNotAllowed) {
		t.Errorf("RestoreKeyframes() on video error = %v, want ErrAnimationNotAllowed", err)
	}
	anim, _ = s.Animation("v")
	if anim.Active() {
		t.Error("video animation activated by a rejected restore")
	}
	if err := s.RestoreKeyframes("v", keyframe.ChannelOpacity, false, nil); err != nil {
		t.Errorf("restoring an inactive channel on video error = %v", err)
	}

	if events != 0 {
		t.Errorf("restore published %d events, want 0", events)
	}
}

func TestStore_DurationChangeExtendsSamples(t *testing.T) {
	s := newTestStore(t, image("a", 0, 1000))
	_ = s.InsertKeyframe("a", keyframe.ChannelOpacity, keyframe.TrackOpacity, keyframe.Point{T: 500, V: 0})

	if _, err := s.Apply("a", Patch{Duration: ref(int64(2000))}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	anim, _ := s.Animation("a")
	ch, _ := anim.Channel(keyframe.ChannelOpacity)
	samples, _ := ch.AllPoints(keyframe.TrackOpacity)
	if last := samples[len(samples)-1]; last.T != 2000 {
		t.Errorf("samples end at %v, want 2000", last.T)
	}
}

func TestStore_TrimInvariantHolds(t *testing.T) {
	s := newTestStore(t, video("v", 0, 5000, Trim{0, 5000}))
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		var p Patch
		switch rng.Intn(3) {
		case 0:
			p.Trim = &Trim{StartTime: rng.Int63n(7000) - 1000, EndTime: rng.Int63n(7000) - 1000}
		case 1:
			p.Duration = ref(rng.Int63n(7000) - 1000)
		case 2:
			p.Speed = ref(rng.Float64() * 2)
		}
		_, _ = s.Apply("v", p)

		e, _ := s.Get("v")
		checkTrim(t, e)
	}
}
