package api

import (
	"time"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/playback"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/framecut/framecut-agent/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State        string `json:"state"`
	OpenProjects int    `json:"open_projects"`
	Playing      int    `json:"playing"`
	Unsaved      int    `json:"unsaved"`
	Storage      string `json:"storage"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type UpdateProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TimelineRange float64         `json:"timeline_range"`
	Cursor        int64           `json:"cursor"`
	Duration      int64           `json:"duration"`
	Open          bool            `json:"open"`
	Dirty         bool            `json:"dirty"`
	Playback      *playback.State `json:"playback,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type TimelineResponse struct {
	ProjectID     string             `json:"project_id"`
	TimelineRange float64            `json:"timeline_range"`
	Magnification float64            `json:"magnification"`
	Viewport      timeline.Viewport  `json:"viewport"`
	End           int64              `json:"end"`
	Elements      []timeline.Element `json:"elements"`
	Bars          []timeline.Bar     `json:"bars"`
}

type ZoomRequest struct {
	TimelineRange float64 `json:"timeline_range"`
}

type ZoomResponse struct {
	TimelineRange float64 `json:"timeline_range"`
	Magnification float64 `json:"magnification"`
}

type PointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PointerUpResponse struct {
	Element *timeline.Element `json:"element,omitempty"`
}

type SplitRequest struct {
	At *int64 `json:"at,omitempty"`
}

type SplitResponse struct {
	Left  timeline.Element `json:"left"`
	Right timeline.Element `json:"right"`
}

type KeyframeRequest struct {
	Channel string  `json:"channel"`
	Track   int     `json:"track"`
	T       float64 `json:"t"`
	V       float64 `json:"v"`
}

// ChannelResponse carries the authored control points of a channel and the
// dense samples the preview plays back.
type ChannelResponse struct {
	Name    string             `json:"name"`
	Active  bool               `json:"active"`
	Tracks  [][]keyframe.Point `json:"tracks"`
	Samples [][]keyframe.Point `json:"samples,omitempty"`
	Paths   []string           `json:"paths,omitempty"`
}

type KeyframesResponse struct {
	ElementID string            `json:"element_id"`
	Channels  []ChannelResponse `json:"channels"`
}

type RulerResponse struct {
	Magnification float64         `json:"magnification"`
	Ticks         []timecode.Tick `json:"ticks"`
}

type FrameResponse struct {
	Cursor   int64                   `json:"cursor"`
	Elements []playback.ElementFrame `json:"elements"`
}

type SeekRequest struct {
	Cursor     *int64   `json:"cursor,omitempty"`
	PageX      *float64 `json:"page_x,omitempty"`
	LeftOffset float64  `json:"left_offset,omitempty"`
}

func ProjectToResponse(p project.Project, w *project.Workspace) ProjectResponse {
	resp := ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		TimelineRange: p.TimelineRange,
		Cursor:        p.Cursor,
		Duration:      p.Duration,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
	if w != nil {
		state := w.Clock().State()
		resp.Open = true
		resp.Dirty = w.Dirty()
		resp.Playback = &state
	}
	return resp
}
