package api

import (
	"net/http"
	"strconv"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timeline"
	"github.com/go-chi/chi/v5"
)

// channelsOf describes every channel of an element. Call inside Workspace.Do.
func channelsOf(store *timeline.Store, id string) (KeyframesResponse, error) {
	anim, err := store.Animation(id)
	if err != nil {
		return KeyframesResponse{}, err
	}
	resp := KeyframesResponse{ElementID: id, Channels: []ChannelResponse{}}
	for _, name := range anim.Names() {
		ch, _ := anim.Channel(name)
		cr := ChannelResponse{Name: name, Active: ch.Active()}
		for track := 0; track < ch.Tracks(); track++ {
			pts, _ := ch.Points(track)
			cr.Tracks = append(cr.Tracks, pts)
			if !ch.Active() {
				continue
			}
			samples, _ := ch.AllPoints(track)
			cr.Samples = append(cr.Samples, samples)
			cr.Paths = append(cr.Paths, keyframe.BuildPath(pts, ch.Options().Tension).SVG())
		}
		resp.Channels = append(resp.Channels, cr)
	}
	return resp, nil
}

func keyframesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var resp KeyframesResponse
		err := ws.Do(func() error {
			var err error
			resp, err = channelsOf(ws.Store(), chi.URLParam(r, "elementID"))
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func insertKeyframeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req KeyframeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := mutateKeyframes(ws, chi.URLParam(r, "elementID"), func(s *timeline.Store, id string) error {
			return s.InsertKeyframe(id, req.Channel, req.Track, keyframe.Point{T: req.T, V: req.V})
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, resp)
	}
}

func removeKeyframeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		track, err := strconv.Atoi(q.Get("track"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "track must be an integer", "BAD_REQUEST")
			return
		}
		t, err := strconv.ParseFloat(q.Get("t"), 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "t must be a number", "BAD_REQUEST")
			return
		}

		var removed bool
		resp, err := mutateKeyframes(ws, chi.URLParam(r, "elementID"), func(s *timeline.Store, id string) error {
			var err error
			removed, err = s.RemoveKeyframe(id, q.Get("channel"), track, t)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !removed {
			WriteError(w, http.StatusNotFound, "no keyframe at that time", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func mutateKeyframes(ws *project.Workspace, id string, fn func(*timeline.Store, string) error) (KeyframesResponse, error) {
	var resp KeyframesResponse
	err := ws.Do(func() error {
		if err := fn(ws.Store(), id); err != nil {
			return err
		}
		var err error
		resp, err = channelsOf(ws.Store(), id)
		return err
	})
	return resp, err
}
