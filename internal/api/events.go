package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/framecut/framecut-agent/internal/logging"
	"github.com/framecut/framecut-agent/internal/timeline"
)

const (
	eventBuffer       = 64
	playbackPollEvery = 100 * time.Millisecond
	heartbeatEvery    = 15 * time.Second
)

// eventsHandler streams store changes and playhead updates as server-sent
// events. Element events are named after their type; playhead updates are
// sent as "playback" whenever the clock state changes.
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}

		logger := logging.WithProjectID(cfg.Logger, ws.ID())
		queue := newEventQueue(eventBuffer)
		sub := ws.Subscribe(func(ev timeline.Event) {
			if !queue.push(ev) {
				logger.Warn("event stream lagging, client must resync", "type", ev.Type.String())
			}
		})
		defer sub.Close()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		last := ws.Clock().State()
		if err := writeEvent(w, "playback", last); err != nil {
			return
		}
		flusher.Flush()

		poll := time.NewTicker(playbackPollEvery)
		defer poll.Stop()
		heartbeat := time.NewTicker(heartbeatEvery)
		defer heartbeat.Stop()

		for {
			var err error
			select {
			case <-r.Context().Done():
				return
			case ev := <-queue.events:
				err = writeEvent(w, ev.Type.String(), ev)
			case <-queue.lagged:
				// queued events are stale once the client refetches the timeline
				queue.drain()
				err = writeEvent(w, "resync", ResyncEvent{ProjectID: ws.ID(), Reason: "lagging"})
			case <-poll.C:
				state := ws.Clock().State()
				if state == last {
					continue
				}
				last = state
				err = writeEvent(w, "playback", state)
			case <-heartbeat.C:
				_, err = fmt.Fprint(w, ": ping\n\n")
			}
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ResyncEvent tells the client it missed element events and must reload
// the timeline.
type ResyncEvent struct {
	ProjectID string `json:"project_id"`
	Reason    string `json:"reason"`
}

// eventQueue buffers store events for one stream. When the buffer is full the
// event is dropped and lagged is signalled once until the next drain.
type eventQueue struct {
	events chan timeline.Event
	lagged chan struct{}
}

func newEventQueue(size int) *eventQueue {
	return &eventQueue{
		events: make(chan timeline.Event, size),
		lagged: make(chan struct{}, 1),
	}
}

func (q *eventQueue) push(ev timeline.Event) bool {
	select {
	case q.events <- ev:
		return true
	default:
	}
	select {
	case q.lagged <- struct{}{}:
	default:
	}
	return false
}

// drain discards the buffered events and returns how many there were.
func (q *eventQueue) drain() int {
	n := 0
	for {
		select {
		case <-q.events:
			n++
		default:
			return n
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
