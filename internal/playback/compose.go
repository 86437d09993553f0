// Package playback drives the playhead and works out what the preview shows
// at each cursor position.
package playback

import (
	"math"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// ElementFrame is the resolved state of one element at one cursor position.
type ElementFrame struct {
	ID         string            `json:"id"`
	Filetype   string            `json:"filetype"`
	Kind       timeline.Kind     `json:"kind"`
	Row        int               `json:"row"`
	Location   timeline.Location `json:"location"`
	Opacity    float64           `json:"opacity"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Text       string            `json:"text,omitempty"`
	SourcePath string            `json:"source_path,omitempty"`
	StorageKey string            `json:"storage_key,omitempty"`
	// MediaTime is the position in the source media, for dynamic elements.
	MediaTime int64 `json:"media_time"`
	Animated  bool  `json:"animated"`
}

// Compose lists the elements visible at cursor in row order, with animated
// properties looked up from their sampled keyframe tracks.
func Compose(s *timeline.Store, cursor int64) []ElementFrame {
	frames := []ElementFrame{}
	row := 0
	s.ForEach(func(e timeline.Element) {
		row++
		if !e.Covers(cursor) {
			return
		}
		f := ElementFrame{
			ID:         e.ID,
			Filetype:   e.Filetype,
			Kind:       e.Kind,
			Row:        row,
			Location:   e.Location,
			Opacity:    e.Opacity,
			Width:      e.Width,
			Height:     e.Height,
			Text:       e.Text,
			SourcePath: e.SourcePath,
			StorageKey: e.StorageKey,
		}

		local := cursor - e.StartTime
		if !e.Static() {
			f.MediaTime = int64(math.Round(float64(local) * e.Speed))
			frames = append(frames, f)
			return
		}

		if anim, err := s.Animation(e.ID); err == nil {
			f.Animated = animate(&f, anim, float64(local))
		}
		frames = append(frames, f)
	})
	return frames
}

func animate(f *ElementFrame, anim *keyframe.Animation, t float64) bool {
	animated := false
	if pos, err := anim.Channel(keyframe.ChannelPosition); err == nil && pos.Active() {
		if x, ok := pos.ValueAt(keyframe.TrackX, t); ok {
			f.Location.X = x
		}
		if y, ok := pos.ValueAt(keyframe.TrackY, t); ok {
			f.Location.Y = y
		}
		animated = true
	}
	if op, err := anim.Channel(keyframe.ChannelOpacity); err == nil && op.Active() {
		if v, ok := op.ValueAt(keyframe.TrackOpacity, t); ok {
			// the curve may overshoot its control values
			f.Opacity = min(max(v, 0), 1)
		}
		animated = true
	}
	return animated
}
