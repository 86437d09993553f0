package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/framecut/framecut-agent/internal/export"
	"github.com/framecut/framecut-agent/internal/logging"
	"github.com/framecut/framecut-agent/internal/playback"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/go-chi/chi/v5"
)

func parseIntParam(r *http.Request, name string, def int64) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

// frameHandler composes the preview at ?cursor=, or at the playhead.
func frameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		cursor, err := parseIntParam(r, "cursor", ws.Clock().Cursor())
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		var resp FrameResponse
		ws.Do(func() error {
			resp = FrameResponse{Cursor: cursor, Elements: playback.Compose(ws.Store(), cursor)}
			return nil
		})
		WriteJSON(w, http.StatusOK, resp)
	}
}

func playbackStateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ws.Clock().State())
	}
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		if !ws.Clock().Play() {
			WriteError(w, http.StatusBadRequest, "timeline is empty", "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, ws.Clock().State())
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		ws.Clock().Pause()
		WriteJSON(w, http.StatusOK, ws.Clock().State())
	}
}

// seekHandler moves the playhead to an absolute cursor, or to where a click
// at page_x lands on the ruler.
func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req SeekRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var target int64
		switch {
		case req.Cursor != nil:
			target = *req.Cursor
		case req.PageX != nil:
			ws.Do(func() error {
				target = timecode.CursorAt(*req.PageX, ws.Editor().Viewport().Scroll, req.LeftOffset, ws.Zoom().Magnification())
				return nil
			})
		default:
			WriteError(w, http.StatusBadRequest, "cursor or page_x is required", "BAD_REQUEST")
			return
		}

		ws.Clock().Seek(target)
		ws.MarkDirty()
		WriteJSON(w, http.StatusOK, ws.Clock().State())
	}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// mediaHandler streams an element's local source, or redirects to its
// resolved storage URL.
func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		elementID := chi.URLParam(r, "elementID")
		source, err := cfg.Manager.ResolveMedia(r.Context(), ws.ID(), elementID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if isRemote(source) {
			http.Redirect(w, r, source, http.StatusTemporaryRedirect)
			return
		}
		if cfg.Media == nil {
			WriteError(w, http.StatusServiceUnavailable, "media serving unavailable", "UNAVAILABLE")
			return
		}
		if err := cfg.Media.ServeFile(w, r, source); err != nil {
			logging.WithElementID(logging.WithProjectID(cfg.Logger, ws.ID()), elementID).Error("media error", "error", err)
		}
	}
}

// thumbnailHandler extracts a still at ?at= milliseconds into the source and
// caches it under the thumbnail directory.
func thumbnailHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Thumbnailer == nil || cfg.Media == nil || cfg.ThumbnailDir == "" {
			WriteError(w, http.StatusServiceUnavailable, "thumbnails unavailable", "UNAVAILABLE")
			return
		}
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		at, err := parseIntParam(r, "at", 0)
		if err != nil || at < 0 {
			WriteError(w, http.StatusBadRequest, "at must be a non-negative integer", "BAD_REQUEST")
			return
		}
		elementID := chi.URLParam(r, "elementID")
		source, err := cfg.Manager.ResolveMedia(r.Context(), ws.ID(), elementID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := filepath.Join(cfg.ThumbnailDir, fmt.Sprintf("%s-%d.jpg", export.SanitizeName(elementID, 80), at))
		if _, err := os.Stat(out); errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(cfg.ThumbnailDir, 0755); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to create thumbnail dir", "INTERNAL_ERROR")
				return
			}
			if err := cfg.Thumbnailer.Thumbnail(r.Context(), source, out, at); err != nil {
				cfg.Logger.Error("thumbnail failed", "error", err, "element_id", elementID)
				WriteError(w, http.StatusInternalServerError, "failed to extract thumbnail", "INTERNAL_ERROR")
				return
			}
		}
		if err := cfg.Media.ServeFile(w, r, out); err != nil {
			cfg.Logger.Error("thumbnail serve error", "error", err, "element_id", elementID)
		}
	}
}
