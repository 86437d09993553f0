package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/framecut/framecut-agent/internal/timeline"
	"github.com/go-chi/chi/v5"
)

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var resp TimelineResponse
		ws.Do(func() error {
			m := ws.Zoom().Magnification()
			vp := ws.Editor().Viewport()
			resp = TimelineResponse{
				ProjectID:     ws.ID(),
				TimelineRange: ws.Zoom().Range(),
				Magnification: float64(m),
				Viewport:      vp,
				End:           ws.Store().End(),
				Elements:      ws.Store().Elements(),
				Bars:          ws.Editor().Layout().Bars(ws.Store(), vp, m),
			}
			return nil
		})
		WriteJSON(w, http.StatusOK, resp)
	}
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req ZoomRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := ws.Zoom().SetRange(req.TimelineRange); err != nil {
			writeDomainError(w, err)
			return
		}
		ws.MarkDirty()
		WriteJSON(w, http.StatusOK, ZoomResponse{
			TimelineRange: ws.Zoom().Range(),
			Magnification: float64(ws.Zoom().Magnification()),
		})
	}
}

func viewportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var vp timeline.Viewport
		if !decodeJSON(w, r, &vp) {
			return
		}
		if vp.Scroll < 0 || vp.VerticalScroll < 0 {
			WriteError(w, http.StatusBadRequest, "scroll must not be negative", "BAD_REQUEST")
			return
		}
		ws.Do(func() error {
			ws.Editor().SetViewport(vp)
			return nil
		})
		WriteJSON(w, http.StatusOK, vp)
	}
}

func parseFloatParam(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return f, nil
}

func targetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		x, errX := parseFloatParam(r, "x", 0)
		y, errY := parseFloatParam(r, "y", 0)
		if errX != nil || errY != nil {
			WriteError(w, http.StatusBadRequest, "x and y must be numbers", "BAD_REQUEST")
			return
		}
		var target timeline.Target
		ws.Do(func() error {
			target = ws.Editor().Hover(x, y)
			return nil
		})
		WriteJSON(w, http.StatusOK, target)
	}
}

func pointerDownHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req PointerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var target timeline.Target
		ws.Do(func() error {
			target = ws.Editor().PointerDown(req.X, req.Y)
			return nil
		})
		WriteJSON(w, http.StatusOK, target)
	}
}

// pointerMoveHandler answers rejected moves with the unchanged element, so a
// drag keeps going from the last valid state.
func pointerMoveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req PointerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var res timeline.MoveResult
		err := ws.Do(func() error {
			var err error
			res, err = ws.Editor().PointerMove(req.X, req.Y)
			return err
		})
		if err != nil && !isGeometryError(err) {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func pointerUpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var resp PointerUpResponse
		ws.Do(func() error {
			if e, ok := ws.Editor().PointerUp(); ok {
				resp.Element = &e
			}
			return nil
		})
		WriteJSON(w, http.StatusOK, resp)
	}
}

func rulerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		width, err := parseFloatParam(r, "width", 1000)
		if err != nil || width <= 0 {
			WriteError(w, http.StatusBadRequest, "width must be a positive number", "BAD_REQUEST")
			return
		}
		var resp RulerResponse
		ws.Do(func() error {
			m := ws.Zoom().Magnification()
			resp = RulerResponse{
				Magnification: float64(m),
				Ticks:         timecode.Ticks(m, ws.Editor().Viewport().Scroll, width),
			}
			return nil
		})
		WriteJSON(w, http.StatusOK, resp)
	}
}

func importElementHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req project.ImportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		e, err := cfg.Manager.Import(r.Context(), ws.ID(), req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, e)
	}
}

func getElementHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "elementID")
		var e timeline.Element
		var found bool
		ws.Do(func() error {
			e, found = ws.Store().Get(id)
			return nil
		})
		if !found {
			WriteError(w, http.StatusNotFound, "element not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}

func patchElementHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var patch timeline.Patch
		if !decodeJSON(w, r, &patch) {
			return
		}
		var e timeline.Element
		err := ws.Do(func() error {
			var err error
			e, err = ws.Store().Apply(chi.URLParam(r, "elementID"), patch)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}

func deleteElementHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		err := ws.Do(func() error {
			return ws.Store().Remove(chi.URLParam(r, "elementID"))
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// splitHandler cuts at the given time, or at the playhead when none is sent.
func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req SplitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		at := ws.Clock().Cursor()
		if req.At != nil {
			at = *req.At
		}

		id := chi.URLParam(r, "elementID")
		var resp SplitResponse
		err := ws.Do(func() error {
			right, err := ws.Store().Split(id, at)
			if err != nil {
				return err
			}
			resp.Left, _ = ws.Store().Get(id)
			resp.Right = right
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, resp)
	}
}

func copyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		err := ws.Do(func() error {
			return ws.Clipboard().Copy(ws.Store(), chi.URLParam(r, "elementID"))
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		err := ws.Do(func() error {
			return ws.Clipboard().Cut(ws.Store(), chi.URLParam(r, "elementID"))
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pasteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var e timeline.Element
		err := ws.Do(func() error {
			var err error
			e, err = ws.Clipboard().Paste(ws.Store())
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, e)
	}
}
