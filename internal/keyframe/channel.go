package keyframe

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrTrackOutOfRange = errors.New("track index out of range")
	ErrNegativeTime    = errors.New("keyframe time must not be negative")
	ErrAnchorPoint     = errors.New("the first keyframe anchors the channel and cannot be removed")
	ErrUnknownChannel  = errors.New("unknown animation channel")
)

// Channel is one animatable property. Each sub-track (x and y for position)
// holds control points sorted by time with unique times. The dense samples
// are derived from the points on demand and cached until the next write.
type Channel struct {
	active  bool
	tracks  [][]Point
	cache   [][]Point
	opts    SampleOptions
	horizon float64
}

func NewChannel(tracks int, opts SampleOptions) *Channel {
	if tracks < 1 {
		tracks = 1
	}
	return &Channel{
		tracks: make([][]Point, tracks),
		cache:  make([][]Point, tracks),
		opts:   opts,
	}
}

// Active reports whether the channel has authored keyframes. An inactive
// channel leaves the element's static property in charge.
func (c *Channel) Active() bool { return c.active }

func (c *Channel) Tracks() int { return len(c.tracks) }

func (c *Channel) Options() SampleOptions { return c.opts }

func (c *Channel) checkTrack(track int) error {
	if track < 0 || track >= len(c.tracks) {
		return fmt.Errorf("%w: %d of %d", ErrTrackOutOfRange, track, len(c.tracks))
	}
	return nil
}

// Points returns a copy of the control points of one sub-track.
func (c *Channel) Points(track int) ([]Point, error) {
	if err := c.checkTrack(track); err != nil {
		return nil, err
	}
	out := make([]Point, len(c.tracks[track]))
	copy(out, c.tracks[track])
	return out, nil
}

// Insert adds a control point, keeping the track sorted by time. A point at an
// existing time replaces that point's value.
//
// The first insert on an inactive channel activates it and anchors every
// sub-track at t=0 with the matching seed value (the element's current static
// property), so enabling animation does not make the element jump.
func (c *Channel) Insert(track int, p Point, seed []float64) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	if p.T < 0 {
		return ErrNegativeTime
	}

	if !c.active {
		for i := range c.tracks {
			var v float64
			if i < len(seed) {
				v = seed[i]
			}
			c.tracks[i] = []Point{{T: 0, V: v}}
		}
		c.active = true
		c.invalidate()
	}

	pts := c.tracks[track]
	i := sort.Search(len(pts), func(i int) bool { return pts[i].T >= p.T })
	if i < len(pts) && pts[i].T == p.T {
		pts[i].V = p.V
	} else {
		pts = append(pts, Point{})
		copy(pts[i+1:], pts[i:])
		pts[i] = p
	}
	c.tracks[track] = pts
	c.cache[track] = nil
	return nil
}

// Remove deletes the control point at exactly t. It reports whether a point
// was removed.
func (c *Channel) Remove(track int, t float64) (bool, error) {
	if err := c.checkTrack(track); err != nil {
		return false, err
	}

	pts := c.tracks[track]
	i := sort.Search(len(pts), func(i int) bool { return pts[i].T >= t })
	if i == len(pts) || pts[i].T != t {
		return false, nil
	}
	if i == 0 {
		return false, ErrAnchorPoint
	}

	c.tracks[track] = append(pts[:i], pts[i+1:]...)
	c.cache[track] = nil
	return true, nil
}

// Restore replaces the channel state wholesale, for loading persisted points.
func (c *Channel) Restore(active bool, tracks [][]Point) error {
	if len(tracks) > len(c.tracks) {
		return fmt.Errorf("%w: got %d tracks, channel has %d", ErrTrackOutOfRange, len(tracks), len(c.tracks))
	}
	for i := range c.tracks {
		var pts []Point
		if i < len(tracks) {
			pts = make([]Point, len(tracks[i]))
			copy(pts, tracks[i])
			sort.SliceStable(pts, func(a, b int) bool { return pts[a].T < pts[b].T })
		}
		c.tracks[i] = pts
	}
	c.active = active
	c.invalidate()
	return nil
}

// SetHorizon sets how far the dense samples extend, normally the element's
// duration.
func (c *Channel) SetHorizon(ms float64) {
	if ms == c.horizon {
		return
	}
	c.horizon = ms
	c.invalidate()
}

func (c *Channel) invalidate() {
	for i := range c.cache {
		c.cache[i] = nil
	}
}

// AllPoints returns the dense samples of one sub-track, recomputing them only
// after the points or the horizon changed. Callers must not modify the result.
func (c *Channel) AllPoints(track int) ([]Point, error) {
	if err := c.checkTrack(track); err != nil {
		return nil, err
	}
	if c.cache[track] == nil {
		opts := c.opts
		opts.Until = c.horizon
		c.cache[track] = Resample(c.tracks[track], opts)
	}
	return c.cache[track], nil
}

// ValueAt looks up the sampled value nearest to t. It returns false when the
// channel is inactive or the track has no samples.
func (c *Channel) ValueAt(track int, t float64) (float64, bool) {
	if !c.active {
		return 0, false
	}
	samples, err := c.AllPoints(track)
	if err != nil {
		return 0, false
	}
	return Lookup(samples, t)
}

func (c *Channel) Clone() *Channel {
	out := &Channel{
		active:  c.active,
		tracks:  make([][]Point, len(c.tracks)),
		cache:   make([][]Point, len(c.tracks)),
		opts:    c.opts,
		horizon: c.horizon,
	}
	for i, pts := range c.tracks {
		if pts == nil {
			continue
		}
		out.tracks[i] = make([]Point, len(pts))
		copy(out.tracks[i], pts)
	}
	return out
}
