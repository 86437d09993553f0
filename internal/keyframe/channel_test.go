package keyframe

import (
	"errors"
	"reflect"
	"testing"
)

func TestChannel_InsertActivatesWithSeed(t *testing.T) {
	ch := NewChannel(2, DefaultSampleOptions())
	if ch.Active() {
		t.Fatal("new channel should be inactive")
	}

	if err := ch.Insert(TrackX, Point{500, 300}, []float64{100, 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !ch.Active() {
		t.Fatal("channel should be active after insert")
	}

	x, _ := ch.Points(TrackX)
	if want := []Point{{0, 100}, {500, 300}}; !reflect.DeepEqual(x, want) {
		t.Errorf("x points = %v, want %v", x, want)
	}
	y, _ := ch.Points(TrackY)
	if want := []Point{{0, 50}}; !reflect.DeepEqual(y, want) {
		t.Errorf("y points = %v, want %v", y, want)
	}
}

func TestChannel_InsertKeepsOrderAndReplacesDuplicates(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	inserts := []Point{{800, 3}, {200, 1}, {500, 2}, {200, 9}}
	for _, p := range inserts {
		if err := ch.Insert(0, p, []float64{0}); err != nil {
			t.Fatalf("Insert(%v): %v", p, err)
		}
	}

	got, _ := ch.Points(0)
	want := []Point{{0, 0}, {200, 9}, {500, 2}, {800, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("points = %v, want %v", got, want)
	}
}

func TestChannel_InsertErrors(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	if err := ch.Insert(3, Point{0, 0}, nil); !errors.Is(err, ErrTrackOutOfRange) {
		t.Errorf("bad track: err = %v", err)
	}
	if err := ch.Insert(0, Point{-1, 0}, nil); !errors.Is(err, ErrNegativeTime) {
		t.Errorf("negative time: err = %v", err)
	}
	if ch.Active() {
		t.Error("failed inserts should not activate the channel")
	}
}

func TestChannel_Remove(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	_ = ch.Insert(0, Point{400, 1}, []float64{0})

	if _, err := ch.Remove(0, 0); !errors.Is(err, ErrAnchorPoint) {
		t.Errorf("removing anchor: err = %v", err)
	}

	removed, err := ch.Remove(0, 123)
	if err != nil || removed {
		t.Errorf("removing missing point = %v, %v", removed, err)
	}

	removed, err = ch.Remove(0, 400)
	if err != nil || !removed {
		t.Fatalf("removing point = %v, %v", removed, err)
	}
	got, _ := ch.Points(0)
	if want := []Point{{0, 0}}; !reflect.DeepEqual(got, want) {
		t.Errorf("points = %v, want %v", got, want)
	}
}

func TestChannel_AllPointsCache(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	_ = ch.Insert(0, Point{8, 8}, []float64{0})

	first, err := ch.AllPoints(0)
	if err != nil {
		t.Fatalf("AllPoints: %v", err)
	}
	again, _ := ch.AllPoints(0)
	if &first[0] != &again[0] {
		t.Error("AllPoints should reuse cached samples")
	}

	_ = ch.Insert(0, Point{16, 0}, nil)
	after, _ := ch.AllPoints(0)
	if last := after[len(after)-1]; last != (Point{16, 0}) {
		t.Errorf("samples not refreshed after insert, last = %v", last)
	}

	ch.SetHorizon(40)
	extended, _ := ch.AllPoints(0)
	if last := extended[len(extended)-1]; last != (Point{40, 0}) {
		t.Errorf("samples not extended to horizon, last = %v", last)
	}
}

func TestChannel_ValueAt(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	if _, ok := ch.ValueAt(0, 0); ok {
		t.Error("inactive channel should not report a value")
	}

	_ = ch.Insert(0, Point{500, 200}, []float64{10})
	_ = ch.Insert(0, Point{1000, 10}, nil)

	if v, ok := ch.ValueAt(0, 500); !ok || v != 200 {
		t.Errorf("ValueAt(500) = %v, %v", v, ok)
	}
	if v, ok := ch.ValueAt(0, 5000); !ok || v != 10 {
		t.Errorf("ValueAt past end = %v, %v", v, ok)
	}
}

func TestChannel_CloneIsIndependent(t *testing.T) {
	ch := NewChannel(1, DefaultSampleOptions())
	_ = ch.Insert(0, Point{100, 1}, []float64{0})

	cp := ch.Clone()
	_ = cp.Insert(0, Point{200, 2}, nil)

	orig, _ := ch.Points(0)
	if len(orig) != 2 {
		t.Errorf("original changed through clone: %v", orig)
	}
	if !cp.Active() {
		t.Error("clone should keep active flag")
	}
}

func TestChannel_Restore(t *testing.T) {
	ch := NewChannel(2, DefaultSampleOptions())
	err := ch.Restore(true, [][]Point{{{300, 3}, {0, 1}}, {{0, 5}}})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	x, _ := ch.Points(TrackX)
	if want := []Point{{0, 1}, {300, 3}}; !reflect.DeepEqual(x, want) {
		t.Errorf("x = %v, want %v", x, want)
	}
	if !ch.Active() {
		t.Error("restored channel should be active")
	}

	if err := ch.Restore(true, make([][]Point, 3)); !errors.Is(err, ErrTrackOutOfRange) {
		t.Errorf("too many tracks: err = %v", err)
	}
}

func TestAnimation_Channels(t *testing.T) {
	a := NewAnimation(DefaultSampleOptions())
	if got := a.Names(); !reflect.DeepEqual(got, []string{ChannelOpacity, ChannelPosition}) {
		t.Errorf("Names = %v", got)
	}

	pos, err := a.Channel(ChannelPosition)
	if err != nil {
		t.Fatalf("Channel(position): %v", err)
	}
	if pos.Tracks() != 2 {
		t.Errorf("position tracks = %d, want 2", pos.Tracks())
	}
	if _, err := a.Channel("scale"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("unknown channel err = %v", err)
	}

	if a.Active() {
		t.Error("fresh animation should be inactive")
	}
	_ = pos.Insert(TrackX, Point{100, 1}, []float64{0, 0})
	if !a.Active() {
		t.Error("animation should be active once a channel is")
	}

	cp := a.Clone()
	cpPos, _ := cp.Channel(ChannelPosition)
	_ = cpPos.Insert(TrackX, Point{200, 2}, nil)
	orig, _ := pos.Points(TrackX)
	if len(orig) != 2 {
		t.Errorf("clone shares state with original: %v", orig)
	}
}
