package playback

import (
	"context"
	"testing"
	"time"
)

func TestClock_StepStopsAtEnd(t *testing.T) {
	c := NewClock(20*time.Millisecond, nil)
	c.SetEnd(50)

	if c.Step() {
		t.Error("paused clock should not move")
	}
	if !c.Play() {
		t.Fatal("Play() = false")
	}

	want := []int64{20, 40, 50}
	for _, w := range want {
		c.Step()
		if got := c.Cursor(); got != w {
			t.Fatalf("Cursor() = %d, want %d", got, w)
		}
	}
	if c.Playing() {
		t.Error("clock still playing at end")
	}

	// playing from the end starts over
	c.Play()
	if got := c.Cursor(); got != 0 {
		t.Errorf("Cursor() after replay = %d, want 0", got)
	}
}

func TestClock_EmptyTimelineDoesNotPlay(t *testing.T) {
	c := NewClock(0, nil)
	if c.Play() {
		t.Error("Play() on empty timeline = true")
	}
	if c.Playing() {
		t.Error("Playing() = true")
	}
}

func TestClock_SeekAndSetEnd(t *testing.T) {
	c := NewClock(DefaultTick, nil)
	c.SetEnd(1000)

	tests := []struct {
		seek int64
		want int64
	}{
		{500, 500},
		{-10, 0},
		{5000, 1000},
	}
	for _, tt := range tests {
		if got := c.Seek(tt.seek); got != tt.want {
			t.Errorf("Seek(%d) = %d, want %d", tt.seek, got, tt.want)
		}
	}

	c.SetEnd(300)
	if got := c.Cursor(); got != 300 {
		t.Errorf("Cursor() after shrinking end = %d, want 300", got)
	}
	if s := c.State(); s != (State{Cursor: 300, End: 300}) {
		t.Errorf("State() = %+v", s)
	}
}

func TestClock_PauseAndStart(t *testing.T) {
	c := NewClock(time.Millisecond, nil)
	c.SetEnd(60_000)
	c.Play()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Cursor() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Cursor() == 0 {
		t.Fatal("cursor did not advance while playing")
	}

	c.Pause()
	at := c.Cursor()
	time.Sleep(20 * time.Millisecond)
	if got := c.Cursor(); got != at {
		t.Errorf("cursor moved while paused: %d -> %d", at, got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
