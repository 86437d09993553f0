package project

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/playback"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// Settings are shared by every workspace a Manager opens.
type Settings struct {
	Layout   timeline.Layout
	Sampling keyframe.SampleOptions
	Tick     time.Duration
	// TimelineRange is the zoom slider value new projects start with.
	TimelineRange float64
}

func DefaultSettings() Settings {
	return Settings{
		Layout:        timeline.DefaultLayout(),
		Sampling:      keyframe.DefaultSampleOptions(),
		Tick:          playback.DefaultTick,
		TimelineRange: DefaultTimelineRange,
	}
}

// Workspace is an open project: its store, the gesture editor, zoom,
// clipboard and playhead. Store, Editor, Zoom and Clipboard are not safe for
// concurrent use and must only be touched inside Do. The clock has its own
// lock.
type Workspace struct {
	mu        sync.Mutex
	project   Project
	store     *timeline.Store
	editor    *timeline.Editor
	zoom      *timecode.Zoom
	clipboard timeline.Clipboard
	clock     *playback.Clock

	dirty  atomic.Bool
	sub    *timeline.Subscription
	cancel context.CancelFunc
	logger *slog.Logger
}

func newWorkspace(p Project, store *timeline.Store, settings Settings, logger *slog.Logger) *Workspace {
	if p.TimelineRange <= 0 {
		p.TimelineRange = DefaultTimelineRange
	}
	zoom := timecode.NewZoom(p.TimelineRange)
	w := &Workspace{
		project: p,
		store:   store,
		editor:  timeline.NewEditor(store, settings.Layout, zoom),
		zoom:    zoom,
		clock:   playback.NewClock(settings.Tick, logger),
		logger:  logger,
	}
	w.clock.SetEnd(store.End())
	w.clock.Seek(p.Cursor)

	w.sub = store.Subscribe(func(timeline.Event) {
		w.dirty.Store(true)
		w.clock.SetEnd(store.End())
	})
	return w
}

func (w *Workspace) ID() string { return w.project.ID }

// Do runs fn with exclusive access to the workspace.
func (w *Workspace) Do(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn()
}

func (w *Workspace) Store() *timeline.Store { return w.store }

func (w *Workspace) Editor() *timeline.Editor { return w.editor }

func (w *Workspace) Zoom() *timecode.Zoom { return w.zoom }

func (w *Workspace) Clipboard() *timeline.Clipboard { return &w.clipboard }

func (w *Workspace) Clock() *playback.Clock { return w.clock }

// Subscribe forwards store events to l. Listeners run while the workspace is
// locked.
func (w *Workspace) Subscribe(l timeline.Listener) *timeline.Subscription {
	return w.store.Subscribe(l)
}

// Project returns the project record with the live cursor, duration and
// range filled in.
func (w *Workspace) Project() Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.projectLocked()
}

func (w *Workspace) projectLocked() Project {
	p := w.project
	p.Cursor = w.clock.Cursor()
	p.Duration = w.store.End()
	p.TimelineRange = w.zoom.Range()
	return p
}

// Rename changes the project name and marks the workspace dirty.
func (w *Workspace) Rename(name string) {
	w.mu.Lock()
	w.project.Name = name
	w.mu.Unlock()
	w.dirty.Store(true)
}

// Snapshot copies the project record and timeline for saving.
func (w *Workspace) Snapshot() (Project, Timeline) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.projectLocked(), Capture(w.store)
}

func (w *Workspace) Dirty() bool { return w.dirty.Load() }

// MarkDirty is for changes that do not go through the store, such as zoom or
// cursor moves.
func (w *Workspace) MarkDirty() { w.dirty.Store(true) }

func (w *Workspace) markSaved(at time.Time) {
	w.mu.Lock()
	w.project.UpdatedAt = at
	w.mu.Unlock()
	w.dirty.Store(false)
}

// Start runs the playback clock until Close.
func (w *Workspace) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	go w.clock.Start(ctx)
}

func (w *Workspace) Close() {
	w.clock.Pause()
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.sub.Close()
}
