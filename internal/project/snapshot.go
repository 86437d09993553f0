package project

import (
	"fmt"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// ChannelState is the persisted form of one animation channel: its control
// points only. Dense samples are rebuilt when the timeline is loaded.
type ChannelState struct {
	ElementID string             `json:"element_id"`
	Channel   string             `json:"channel"`
	Active    bool               `json:"active"`
	Tracks    [][]keyframe.Point `json:"tracks"`
}

// Timeline is a detached copy of a store's contents.
type Timeline struct {
	Elements []timeline.Element `json:"elements"`
	Channels []ChannelState     `json:"channels"`
}

// Capture copies the elements and authored keyframes out of s.
func Capture(s *timeline.Store) Timeline {
	tl := Timeline{Elements: s.Elements()}
	for _, e := range tl.Elements {
		anim, err := s.Animation(e.ID)
		if err != nil {
			continue
		}
		for _, name := range anim.Names() {
			ch, _ := anim.Channel(name)
			if !ch.Active() {
				continue
			}
			state := ChannelState{ElementID: e.ID, Channel: name, Active: true}
			for track := 0; track < ch.Tracks(); track++ {
				pts, _ := ch.Points(track)
				state.Tracks = append(state.Tracks, pts)
			}
			tl.Channels = append(tl.Channels, state)
		}
	}
	return tl
}

// Build loads the timeline into a new store.
func (tl Timeline) Build(sampling keyframe.SampleOptions) (*timeline.Store, error) {
	s := timeline.NewStore(sampling)
	for _, e := range tl.Elements {
		if _, err := s.Add(e); err != nil {
			return nil, fmt.Errorf("element %s: %w", e.ID, err)
		}
	}
	for _, ch := range tl.Channels {
		if err := s.RestoreKeyframes(ch.ElementID, ch.Channel, ch.Active, ch.Tracks); err != nil {
			return nil, fmt.Errorf("keyframes %s/%s: %w", ch.ElementID, ch.Channel, err)
		}
	}
	return s, nil
}
