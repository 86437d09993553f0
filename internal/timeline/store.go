package timeline

import (
	"fmt"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/google/uuid"
)

// Patch lists the fields to change on one element. Nil fields are left as
// they are.
type Patch struct {
	StartTime *int64    `json:"start_time,omitempty"`
	Duration  *int64    `json:"duration,omitempty"`
	Trim      *Trim     `json:"trim,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Opacity   *float64  `json:"opacity,omitempty"`
	Width     *float64  `json:"width,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Text      *string   `json:"text,omitempty"`
}

func (p Patch) apply(e Element) Element {
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}
	if p.Trim != nil {
		e.Trim = *p.Trim
	}
	if p.Speed != nil {
		e.Speed = *p.Speed
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Opacity != nil {
		e.Opacity = *p.Opacity
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Text != nil {
		e.Text = *p.Text
	}
	return e
}

func ref[T any](v T) *T { return &v }

// Store owns the elements of one timeline in insertion order together with
// their animations. Apply is the only way element fields change once added,
// so the start, duration and trim rules hold for every stored element.
//
// Store is not safe for concurrent use; callers serialise access. Subscribe
// and Subscription.Close may be called from any goroutine.
type Store struct {
	order      []string
	elements   map[string]Element
	animations map[string]*keyframe.Animation
	sampling   keyframe.SampleOptions
	events     hub
}

func NewStore(sampling keyframe.SampleOptions) *Store {
	return &Store{
		elements:   make(map[string]Element),
		animations: make(map[string]*keyframe.Animation),
		sampling:   sampling,
	}
}

// Add stores a new element at the end of the row order. An empty ID is
// replaced by a fresh one, the kind is derived from the filetype and a
// dynamic element without speed plays at 1x.
func (s *Store) Add(e Element) (Element, error) {
	return s.add(e, nil)
}

func (s *Store) add(e Element, anim *keyframe.Animation) (Element, error) {
	e, err := s.prepare(e)
	if err != nil {
		return Element{}, err
	}
	s.insert(e, anim)
	return e, nil
}

// prepare fills in the derived fields of a new element and validates it
// without touching the store.
func (s *Store) prepare(e Element) (Element, error) {
	kind, err := KindOf(e.Filetype)
	if err != nil {
		return Element{}, err
	}
	e.Kind = kind
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := s.elements[e.ID]; exists {
		return Element{}, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if e.Kind == KindDynamic && e.Speed == 0 {
		e.Speed = 1
	}
	if err := e.validate(); err != nil {
		return Element{}, err
	}
	return e, nil
}

// insert appends a prepared element.
func (s *Store) insert(e Element, anim *keyframe.Animation) {
	if anim == nil {
		anim = keyframe.NewAnimation(s.sampling)
	}
	anim.SetHorizon(float64(e.Duration))

	s.order = append(s.order, e.ID)
	s.elements[e.ID] = e
	s.animations[e.ID] = anim
	s.events.publish(Event{Type: EventAdded, ElementID: e.ID, Geometry: e.Geometry()})
}

// Get returns a copy of the element. Changes to it have no effect until
// passed back through Apply.
func (s *Store) Get(id string) (Element, bool) {
	e, ok := s.elements[id]
	return e, ok
}

// ForEach calls fn for every element in row order.
func (s *Store) ForEach(fn func(Element)) {
	for _, id := range s.order {
		fn(s.elements[id])
	}
}

func (s *Store) Elements() []Element {
	out := make([]Element, 0, len(s.order))
	s.ForEach(func(e Element) { out = append(out, e) })
	return out
}

func (s *Store) Len() int { return len(s.order) }

// Row returns the 1-based row of the element.
func (s *Store) Row(id string) (int, bool) {
	for i, cur := range s.order {
		if cur == id {
			return i + 1, true
		}
	}
	return 0, false
}

// End is the latest visible end time over all elements.
func (s *Store) End() int64 {
	var end int64
	s.ForEach(func(e Element) {
		if v := e.VisibleEnd(); v > end {
			end = v
		}
	})
	return end
}

// Remove deletes the element and its animation.
func (s *Store) Remove(id string) error {
	e, ok := s.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.elements, id)
	delete(s.animations, id)
	s.events.publish(Event{Type: EventRemoved, ElementID: id, Geometry: e.Geometry()})
	return nil
}

// Apply validates the patched element and commits it. A rejected patch leaves
// the element unchanged and returns the reason. Listeners are notified only
// when something actually changed.
func (s *Store) Apply(id string, p Patch) (Element, error) {
	cur, ok := s.elements[id]
	if !ok {
		return Element{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := p.apply(cur)
	if err := next.validate(); err != nil {
		return cur, err
	}
	if next == cur {
		return cur, nil
	}

	s.elements[id] = next
	if next.Duration != cur.Duration {
		s.animations[id].SetHorizon(float64(next.Duration))
	}
	s.events.publish(Event{Type: EventGeometryChanged, ElementID: id, Geometry: next.Geometry()})
	return next, nil
}

// Animation returns the live animation of an element. Callers read from it;
// keyframes change through InsertKeyframe and RemoveKeyframe.
func (s *Store) Animation(id string) (*keyframe.Animation, error) {
	anim, ok := s.animations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return anim, nil
}

func (s *Store) channel(id, name string) (Element, *keyframe.Channel, error) {
	e, ok := s.elements[id]
	if !ok {
		return Element{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ch, err := s.animations[id].Channel(name)
	if err != nil {
		return Element{}, nil, err
	}
	return e, ch, nil
}

// seed is the current static value of every sub-track of a channel.
func seed(e Element, channel string) []float64 {
	switch channel {
	case keyframe.ChannelPosition:
		return []float64{e.Location.X, e.Location.Y}
	case keyframe.ChannelOpacity:
		return []float64{e.Opacity}
	}
	return nil
}

// InsertKeyframe adds a control point at p.T milliseconds into the element.
// The first point on a channel anchors it at the element's current value.
func (s *Store) InsertKeyframe(id, channel string, track int, p keyframe.Point) error {
	e, ch, err := s.channel(id, channel)
	if err != nil {
		return err
	}
	if !e.Static() {
		return ErrAnimationNotAllowed
	}
	if p.T < 0 || p.T > float64(e.Duration) {
		return fmt.Errorf("%w: %v not in [0, %d]", ErrKeyframeOutOfRange, p.T, e.Duration)
	}
	if err := ch.Insert(track, p, seed(e, channel)); err != nil {
		return err
	}
	s.events.publish(Event{Type: EventKeyframesChanged, ElementID: id, Geometry: e.Geometry()})
	return nil
}

// RemoveKeyframe deletes the control point at exactly t. It reports whether a
// point was removed.
func (s *Store) RemoveKeyframe(id, channel string, track int, t float64) (bool, error) {
	e, ch, err := s.channel(id, channel)
	if err != nil {
		return false, err
	}
	removed, err := ch.Remove(track, t)
	if err != nil || !removed {
		return false, err
	}
	s.events.publish(Event{Type: EventKeyframesChanged, ElementID: id, Geometry: e.Geometry()})
	return true, nil
}

// RestoreKeyframes loads persisted control points into a channel without
// notifying listeners. Like InsertKeyframe it only animates static elements.
func (s *Store) RestoreKeyframes(id, channel string, active bool, tracks [][]keyframe.Point) error {
	e, ch, err := s.channel(id, channel)
	if err != nil {
		return err
	}
	if active && !e.Static() {
		return fmt.Errorf("%w: %s", ErrAnimationNotAllowed, id)
	}
	return ch.Restore(active, tracks)
}

// Subscribe registers l for every committed change.
func (s *Store) Subscribe(l Listener) *Subscription {
	return s.events.add(l)
}

// Listeners is the number of open subscriptions.
func (s *Store) Listeners() int {
	return s.events.count()
}
