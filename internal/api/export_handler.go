package api

import (
	"net/http"
	"strings"

	"github.com/framecut/framecut-agent/internal/export"
	"github.com/framecut/framecut-agent/internal/timeline"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req export.Request
		if !decodeJSON(w, r, &req) {
			return
		}

		if req.OutputDir == "" && req.UploadKey == "" {
			WriteError(w, http.StatusBadRequest, "output_dir or upload_key is required", "BAD_REQUEST")
			return
		}
		if req.OutputDir != "" {
			if err := export.ValidateOutputDir(req.OutputDir); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
		}
		if req.UploadKey != "" && cfg.Storage == nil {
			WriteError(w, http.StatusBadRequest, "no storage backend configured", "BAD_REQUEST")
			return
		}

		var elems []timeline.Element
		ws.Do(func() error {
			elems = ws.Store().Elements()
			return nil
		})
		events, skipped := export.Events(elems)
		if len(events) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "timeline has no elements with source media", "UNRESOLVABLE_CLIPS")
			return
		}

		title := export.SanitizeName(ws.Project().Name, 120)
		if title == "" {
			title = "framecut_export"
		}
		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = 30.0
		}
		edl := export.GenerateEDL(events, title, frameRate)

		resp := export.Response{
			Status:     "ok",
			Format:     export.FormatEDL,
			EventCount: len(events),
			Skipped:    skipped,
		}
		if req.OutputDir != "" {
			path, err := export.WriteFile(req.OutputDir, title, export.FormatEDL, edl)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
				return
			}
			resp.OutputPath = path
		}
		if req.UploadKey != "" {
			if err := cfg.Storage.Upload(r.Context(), req.UploadKey, strings.NewReader(edl), "text/plain"); err != nil {
				cfg.Logger.Error("export upload failed", "error", err, "key", req.UploadKey, "storage", cfg.Storage.Name())
				WriteError(w, http.StatusBadGateway, "failed to upload export", "UPLOAD_FAILED")
				return
			}
			resp.Uploaded = true
		}

		cfg.Logger.Info("timeline exported",
			"project_id", ws.ID(),
			"events", len(events),
			"skipped", len(skipped),
			"uploaded", resp.Uploaded,
		)
		WriteJSON(w, http.StatusOK, resp)
	}
}
