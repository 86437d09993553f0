package timeline

import (
	"testing"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/timecode"
)

type fixedZoom timecode.Magnification

func (z fixedZoom) Magnification() timecode.Magnification { return timecode.Magnification(z) }

func newTestStore(t *testing.T, elems ...Element) *Store {
	t.Helper()
	s := NewStore(keyframe.DefaultSampleOptions())
	for _, e := range elems {
		if _, err := s.Add(e); err != nil {
			t.Fatalf("Add(%s) error = %v", e.ID, err)
		}
	}
	return s
}

func image(id string, start, duration int64) Element {
	return Element{ID: id, Filetype: "image", StartTime: start, Duration: duration, Opacity: 1}
}

func video(id string, start, duration int64, trim Trim) Element {
	return Element{ID: id, Filetype: "video", StartTime: start, Duration: duration, Trim: trim, Opacity: 1}
}

func checkTrim(t *testing.T, e Element) {
	t.Helper()
	if e.Trim.StartTime < 0 || e.Trim.StartTime >= e.Trim.EndTime || e.Trim.EndTime > e.Duration {
		t.Fatalf("trim invariant broken: %+v with duration %d", e.Trim, e.Duration)
	}
}
