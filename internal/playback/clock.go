package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultTick = 20 * time.Millisecond

// Clock is the playhead. While playing it advances the cursor by one tick
// every tick and stops at the end marker.
type Clock struct {
	tick   time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	cursor  int64
	end     int64
	playing bool
}

func NewClock(tick time.Duration, logger *slog.Logger) *Clock {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Clock{tick: tick, logger: logger}
}

// Start runs the ticker until ctx is cancelled.
func (c *Clock) Start(ctx context.Context) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Step()
		}
	}
}

// Step advances a playing clock by one tick. It reports whether the cursor
// moved.
func (c *Clock) Step() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return false
	}
	c.cursor += c.tick.Milliseconds()
	if c.cursor >= c.end {
		c.cursor = c.end
		c.playing = false
		if c.logger != nil {
			c.logger.Debug("playback reached end", "cursor", c.cursor)
		}
	}
	return true
}

// Play starts playback. From the end marker it starts over at zero. An empty
// timeline does not play.
func (c *Clock) Play() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.end <= 0 {
		return false
	}
	if c.cursor >= c.end {
		c.cursor = 0
	}
	c.playing = true
	return true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
}

// Seek moves the cursor, clamped to [0, end].
func (c *Clock) Seek(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = min(max(ms, 0), c.end)
	return c.cursor
}

// SetEnd moves the end marker. A cursor past the new end is pulled back.
func (c *Clock) SetEnd(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = max(ms, 0)
	if c.cursor > c.end {
		c.cursor = c.end
	}
}

func (c *Clock) Cursor() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func (c *Clock) End() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.end
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// State is a snapshot of the clock.
type State struct {
	Cursor  int64 `json:"cursor"`
	End     int64 `json:"end"`
	Playing bool  `json:"playing"`
}

func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Cursor: c.cursor, End: c.end, Playing: c.playing}
}
