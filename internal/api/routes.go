package api

import (
	"net/http"
	"time"

	"github.com/framecut/framecut-agent/internal/config"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Post("/projects/import", importDocumentHandler(cfg))

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/", getProjectHandler(cfg))
			r.Patch("/", updateProjectHandler(cfg))
			r.Delete("/", deleteProjectHandler(cfg))
			r.Post("/save", saveProjectHandler(cfg))
			r.Post("/close", closeProjectHandler(cfg))
			r.Get("/document", exportDocumentHandler(cfg))
			r.Get("/events", eventsHandler(cfg))

			r.Get("/timeline", timelineHandler(cfg))
			r.Put("/zoom", zoomHandler(cfg))
			r.Put("/viewport", viewportHandler(cfg))
			r.Get("/target", targetHandler(cfg))
			r.Post("/pointer/down", pointerDownHandler(cfg))
			r.Post("/pointer/move", pointerMoveHandler(cfg))
			r.Post("/pointer/up", pointerUpHandler(cfg))
			r.Get("/ruler", rulerHandler(cfg))

			r.Post("/elements", importElementHandler(cfg))
			r.Post("/paste", pasteHandler(cfg))
			r.Route("/elements/{elementID}", func(r chi.Router) {
				r.Get("/", getElementHandler(cfg))
				r.Patch("/", patchElementHandler(cfg))
				r.Delete("/", deleteElementHandler(cfg))
				r.Post("/split", splitHandler(cfg))
				r.Post("/copy", copyHandler(cfg))
				r.Post("/cut", cutHandler(cfg))
				r.Get("/keyframes", keyframesHandler(cfg))
				r.Post("/keyframes", insertKeyframeHandler(cfg))
				r.Delete("/keyframes", removeKeyframeHandler(cfg))

				r.With(LoopbackGuard()).Get("/media", mediaHandler(cfg))
				r.With(LoopbackGuard()).Head("/media", mediaHandler(cfg))
				r.With(LoopbackGuard()).Get("/thumbnail", thumbnailHandler(cfg))
			})

			r.Get("/frame", frameHandler(cfg))
			r.Get("/playback", playbackStateHandler(cfg))
			r.Post("/playback/play", playHandler(cfg))
			r.Post("/playback/pause", pauseHandler(cfg))
			r.Post("/playback/seek", seekHandler(cfg))

			r.Post("/export/edl", exportEDLHandler(cfg))
		})
	})

	return r
}

// openWorkspace loads the project named in the URL if it is not open yet.
func openWorkspace(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*project.Workspace, bool) {
	ws, err := cfg.Manager.Open(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return ws, true
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := cfg.Manager.Stats()
		resp := StatusResponse{
			State:        "idle",
			OpenProjects: stats.Open,
			Playing:      stats.Playing,
			Unsaved:      stats.Unsaved,
			Storage:      "none",
		}
		if cfg.Storage != nil {
			resp.Storage = cfg.Storage.Name()
		}
		if resp.Playing > 0 {
			resp.State = "playing"
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Manager.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			ws, _ := cfg.Manager.Get(p.ID)
			resp.Projects[i] = ProjectToResponse(*p, ws)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		ws, err := cfg.Manager.Create(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(ws.Project(), ws))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(ws.Project(), ws))
	}
}

func updateProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		var req UpdateProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}
		ws.Rename(req.Name)
		WriteJSON(w, http.StatusOK, ProjectToResponse(ws.Project(), ws))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Manager.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		if err := cfg.Manager.Save(r.Context(), ws.ID()); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(ws.Project(), ws))
	}
}

func closeProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Manager.Close(r.Context(), chi.URLParam(r, "projectID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func importDocumentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := project.DecodeDocument(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		ws, err := cfg.Manager.ImportDocument(r.Context(), doc)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(ws.Project(), ws))
	}
}

func exportDocumentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := openWorkspace(cfg, w, r)
		if !ok {
			return
		}
		doc, err := cfg.Manager.ExportDocument(ws.ID())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		if err := project.EncodeDocument(w, doc); err != nil {
			cfg.Logger.Error("failed to write document", "error", err, "project_id", ws.ID())
		}
	}
}
