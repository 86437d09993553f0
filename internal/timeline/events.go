package timeline

import "sync"

type EventType int

const (
	EventAdded EventType = iota
	EventGeometryChanged
	EventRemoved
	EventKeyframesChanged
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventGeometryChanged:
		return "geometry_changed"
	case EventRemoved:
		return "removed"
	case EventKeyframesChanged:
		return "keyframes_changed"
	default:
		return "unknown"
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Geometry is the temporal state a renderer needs to redraw one bar.
type Geometry struct {
	StartTime int64 `json:"start_time"`
	Duration  int64 `json:"duration"`
	Trim      Trim  `json:"trim"`
}

type Event struct {
	Type      EventType `json:"type"`
	ElementID string    `json:"element_id"`
	Geometry  Geometry  `json:"geometry"`
}

// Listener is called synchronously after every committed change. It may read
// the store but must not mutate it.
type Listener func(Event)

// Subscription is the handle returned by Store.Subscribe.
type Subscription struct {
	hub  *hub
	id   uint64
	once sync.Once
}

// Close stops delivery to the listener. It is safe to call more than once and
// from any goroutine.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s.id) })
}

type hub struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]Listener
}

func (h *hub) add(l Listener) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[uint64]Listener)
	}
	h.next++
	h.listeners[h.next] = l
	return &Subscription{hub: h, id: h.next}
}

func (h *hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, id)
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	ls := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		ls = append(ls, l)
	}
	h.mu.Unlock()

	for _, l := range ls {
		l(ev)
	}
}
