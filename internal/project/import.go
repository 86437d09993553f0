package project

import (
	"context"
	"fmt"

	"github.com/framecut/framecut-agent/internal/media"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// ImportRequest describes media to place on a timeline. Path or StorageKey
// locates the source; the other fields override what probing finds.
type ImportRequest struct {
	Path       string  `json:"path,omitempty"`
	StorageKey string  `json:"storage_key,omitempty"`
	Filetype   string  `json:"filetype,omitempty"`
	StartTime  *int64  `json:"start_time,omitempty"`
	Duration   int64   `json:"duration,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Text       string  `json:"text,omitempty"`
}

// Import probes the request's source and appends a new element to the open
// workspace. Elements start at the playhead unless StartTime is set. A request
// with a filetype and no source, such as a text overlay, skips probing.
func (m *Manager) Import(ctx context.Context, id string, req ImportRequest) (timeline.Element, error) {
	w, err := m.Get(id)
	if err != nil {
		return timeline.Element{}, err
	}
	if req.Path == "" && req.StorageKey == "" && req.Filetype == "" {
		return timeline.Element{}, ErrNoSource
	}

	info, err := m.probe(ctx, req)
	if err != nil {
		return timeline.Element{}, err
	}

	e := timeline.Element{
		Filetype:   info.Filetype,
		Duration:   info.Duration,
		Width:      float64(info.Width),
		Height:     float64(info.Height),
		Opacity:    1,
		Speed:      1,
		Text:       req.Text,
		SourcePath: req.Path,
		StorageKey: req.StorageKey,
	}
	if req.Filetype != "" {
		e.Filetype = req.Filetype
	}
	if req.Duration > 0 {
		e.Duration = req.Duration
	}
	if e.Duration <= 0 {
		e.Duration = media.DefaultStillDuration
	}
	if req.Width > 0 {
		e.Width = req.Width
	}
	if req.Height > 0 {
		e.Height = req.Height
	}
	if kind, err := timeline.KindOf(e.Filetype); err == nil && kind == timeline.KindDynamic {
		e.Trim = timeline.Trim{StartTime: 0, EndTime: e.Duration}
	}
	if req.StartTime != nil {
		e.StartTime = *req.StartTime
	} else {
		e.StartTime = w.Clock().Cursor()
	}

	var added timeline.Element
	err = w.Do(func() error {
		var err error
		added, err = w.Store().Add(e)
		return err
	})
	if err != nil {
		return timeline.Element{}, err
	}
	m.logger.Info("element imported",
		"project_id", id,
		"element_id", added.ID,
		"filetype", added.Filetype,
		"duration", added.Duration,
	)
	return added, nil
}

func (m *Manager) probe(ctx context.Context, req ImportRequest) (*media.Info, error) {
	var source string
	switch {
	case req.Path != "":
		source = req.Path
	case req.StorageKey != "":
		url, err := m.storage.Resolve(ctx, req.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", req.StorageKey, err)
		}
		source = url
	default:
		return &media.Info{Filetype: req.Filetype}, nil
	}

	if m.prober == nil {
		return &media.Info{Filetype: req.Filetype}, nil
	}
	info, err := m.prober.Probe(ctx, source)
	if err != nil {
		if req.Filetype == "" {
			return nil, fmt.Errorf("probe: %w", err)
		}
		m.logger.Warn("probe failed, using request values", "source", source, "error", err)
		return &media.Info{Filetype: req.Filetype}, nil
	}
	return info, nil
}

// ResolveMedia returns a local path or fetchable URL for an element's source.
func (m *Manager) ResolveMedia(ctx context.Context, id, elementID string) (string, error) {
	w, err := m.Get(id)
	if err != nil {
		return "", err
	}
	var e timeline.Element
	err = w.Do(func() error {
		var ok bool
		e, ok = w.Store().Get(elementID)
		if !ok {
			return fmt.Errorf("%w: %s", timeline.ErrNotFound, elementID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if e.SourcePath != "" {
		return e.SourcePath, nil
	}
	if e.StorageKey == "" {
		return "", fmt.Errorf("%w: element %s", ErrNoSource, elementID)
	}
	return m.storage.Resolve(ctx, e.StorageKey)
}
