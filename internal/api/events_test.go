package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// readEvent returns the name and data of the next event on the stream,
// skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsHandler_StreamsStoreChanges(t *testing.T) {
	cfg := newTestConfig(t)
	router := NewRouter(cfg)
	p := createProject(t, router, "Events")

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/projects/"+p.ID+"/events?token="+testToken, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	stream := bufio.NewReader(resp.Body)
	name, data := readEvent(t, stream)
	if name != "playback" || !strings.Contains(data, `"playing":false`) {
		t.Fatalf("first event = %s %s, want idle playback state", name, data)
	}

	e := importElement(t, router, p.ID, project.ImportRequest{Filetype: "text", Text: "live", Duration: 1000, StartTime: at(0)})

	for {
		name, data = readEvent(t, stream)
		if name == "playback" {
			continue
		}
		if name != "added" || !strings.Contains(data, e.ID) {
			t.Fatalf("event = %s %s, want added for %s", name, data, e.ID)
		}
		break
	}
}

func TestEventQueue_SignalsLag(t *testing.T) {
	q := newEventQueue(2)

	for i := 0; i < 2; i++ {
		if !q.push(timeline.Event{Type: timeline.EventAdded, ElementID: "e"}) {
			t.Fatalf("push %d dropped with room in the buffer", i)
		}
	}
	select {
	case <-q.lagged:
		t.Fatal("lag signalled before the buffer filled")
	default:
	}

	if q.push(timeline.Event{Type: timeline.EventRemoved, ElementID: "e"}) {
		t.Fatal("push into a full buffer reported success")
	}
	q.push(timeline.Event{Type: timeline.EventRemoved, ElementID: "f"})

	select {
	case <-q.lagged:
	default:
		t.Fatal("dropped event did not signal lag")
	}
	select {
	case <-q.lagged:
		t.Fatal("lag signalled more than once")
	default:
	}

	if n := q.drain(); n != 2 {
		t.Errorf("drain() = %d, want 2", n)
	}
	if !q.push(timeline.Event{Type: timeline.EventAdded, ElementID: "g"}) {
		t.Error("push after drain dropped")
	}
}
