package keyframe

import (
	"fmt"
	"sort"
)

const (
	ChannelPosition = "position"
	ChannelOpacity  = "opacity"
)

// Sub-track indexes.
const (
	TrackX       = 0
	TrackY       = 1
	TrackOpacity = 0
)

// Animation is the set of channels of one timeline element.
type Animation struct {
	channels map[string]*Channel
}

func NewAnimation(opts SampleOptions) *Animation {
	return &Animation{
		channels: map[string]*Channel{
			ChannelPosition: NewChannel(2, opts),
			ChannelOpacity:  NewChannel(1, opts),
		},
	}
}

func (a *Animation) Channel(name string) (*Channel, error) {
	ch, ok := a.channels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return ch, nil
}

// Names lists the channel names in a stable order.
func (a *Animation) Names() []string {
	names := make([]string, 0, len(a.channels))
	for name := range a.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active reports whether any channel has keyframes.
func (a *Animation) Active() bool {
	for _, ch := range a.channels {
		if ch.Active() {
			return true
		}
	}
	return false
}

func (a *Animation) SetHorizon(ms float64) {
	for _, ch := range a.channels {
		ch.SetHorizon(ms)
	}
}

func (a *Animation) Clone() *Animation {
	out := &Animation{channels: make(map[string]*Channel, len(a.channels))}
	for name, ch := range a.channels {
		out.channels[name] = ch.Clone()
	}
	return out
}
