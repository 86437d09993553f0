package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/framecut/framecut-agent/internal/cloud"
	"github.com/framecut/framecut-agent/internal/media"
	"github.com/framecut/framecut-agent/internal/timeline"
)

// Manager owns the open workspaces and moves them to and from the repository.
type Manager struct {
	repo     Repository
	prober   media.Prober
	storage  cloud.Resolver
	settings Settings
	logger   *slog.Logger

	mu   sync.Mutex
	open map[string]*Workspace
}

func NewManager(repo Repository, prober media.Prober, storage cloud.Resolver, settings Settings, logger *slog.Logger) *Manager {
	if storage == nil {
		storage = cloud.NoStorage{}
	}
	return &Manager{
		repo:     repo,
		prober:   prober,
		storage:  storage,
		settings: settings,
		logger:   logger,
		open:     make(map[string]*Workspace),
	}
}

func (m *Manager) Settings() Settings { return m.settings }

// Create stores a new empty project and opens it.
func (m *Manager) Create(ctx context.Context, name string) (*Workspace, error) {
	timelineRange := m.settings.TimelineRange
	if timelineRange <= 0 {
		timelineRange = DefaultTimelineRange
	}
	now := time.Now().UTC()
	p := Project{
		ID:            NewID(),
		Name:          name,
		TimelineRange: timelineRange,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.repo.CreateProject(ctx, &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	m.logger.Info("project created", "project_id", p.ID, "name", name)
	return m.attach(ctx, p, timeline.NewStore(m.settings.Sampling)), nil
}

func (m *Manager) List(ctx context.Context) ([]*Project, error) {
	projects, err := m.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range projects {
		if w, ok := m.open[p.ID]; ok {
			live := w.Project()
			projects[i] = &live
		}
	}
	return projects, nil
}

// Open returns the workspace for id, loading it from the repository the first
// time.
func (m *Manager) Open(ctx context.Context, id string) (*Workspace, error) {
	if w, err := m.Get(id); err == nil {
		return w, nil
	}

	p, err := m.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tl, err := m.repo.LoadTimeline(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	store, err := tl.Build(m.settings.Sampling)
	if err != nil {
		return nil, fmt.Errorf("rebuild timeline: %w", err)
	}

	m.logger.Info("project opened", "project_id", id, "elements", store.Len())
	return m.attach(ctx, *p, store), nil
}

func (m *Manager) attach(ctx context.Context, p Project, store *timeline.Store) *Workspace {
	m.mu.Lock()
	if w, ok := m.open[p.ID]; ok {
		m.mu.Unlock()
		return w
	}
	w := newWorkspace(p, store, m.settings, m.logger.With("project_id", p.ID))
	m.open[p.ID] = w
	m.mu.Unlock()

	w.Start(context.WithoutCancel(ctx))
	return w
}

// Get returns an already open workspace.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.open[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	return w, nil
}

// OpenWorkspaces lists open workspaces ordered by project name.
func (m *Manager) OpenWorkspaces() []*Workspace {
	m.mu.Lock()
	list := make([]*Workspace, 0, len(m.open))
	for _, w := range m.open {
		list = append(list, w)
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Project().Name < list[j].Project().Name
	})
	return list
}

// Close saves a dirty workspace and drops it from memory.
func (m *Manager) Close(ctx context.Context, id string) error {
	w, err := m.Get(id)
	if err != nil {
		return err
	}
	if w.Dirty() {
		if err := m.save(ctx, w); err != nil {
			return err
		}
	}
	m.mu.Lock()
	delete(m.open, id)
	m.mu.Unlock()
	w.Close()
	m.logger.Info("project closed", "project_id", id)
	return nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	w, ok := m.open[id]
	delete(m.open, id)
	m.mu.Unlock()
	if ok {
		w.Close()
	}
	if err := m.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	m.logger.Info("project deleted", "project_id", id)
	return nil
}

// Save writes an open workspace whether or not it is dirty.
func (m *Manager) Save(ctx context.Context, id string) error {
	w, err := m.Get(id)
	if err != nil {
		return err
	}
	return m.save(ctx, w)
}

func (m *Manager) save(ctx context.Context, w *Workspace) error {
	// Cleared first so edits made while writing leave the workspace dirty.
	w.dirty.Store(false)
	p, tl := w.Snapshot()
	p.UpdatedAt = time.Now().UTC()

	if err := m.repo.SaveTimeline(ctx, p.ID, tl); err != nil {
		w.dirty.Store(true)
		return fmt.Errorf("save timeline: %w", err)
	}
	if err := m.repo.UpdateProject(ctx, &p); err != nil {
		w.dirty.Store(true)
		return fmt.Errorf("save project: %w", err)
	}
	w.markSaved(p.UpdatedAt)
	m.logger.Debug("project saved", "project_id", p.ID, "elements", len(tl.Elements))
	return nil
}

// SaveAll saves every dirty workspace and reports how many were written.
func (m *Manager) SaveAll(ctx context.Context) (int, error) {
	var errs []error
	saved := 0
	for _, w := range m.OpenWorkspaces() {
		if !w.Dirty() {
			continue
		}
		if err := m.save(ctx, w); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.ID(), err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// Stats counts the open workspaces by state.
type Stats struct {
	Open    int
	Playing int
	Unsaved int
}

func (m *Manager) Stats() Stats {
	var s Stats
	for _, w := range m.OpenWorkspaces() {
		s.Open++
		if w.Clock().Playing() {
			s.Playing++
		}
		if w.Dirty() {
			s.Unsaved++
		}
	}
	return s
}

func (m *Manager) PauseAll() {
	for _, w := range m.OpenWorkspaces() {
		w.Clock().Pause()
	}
}

// Shutdown saves dirty workspaces and closes all of them.
func (m *Manager) Shutdown(ctx context.Context) error {
	_, err := m.SaveAll(ctx)

	m.mu.Lock()
	open := m.open
	m.open = make(map[string]*Workspace)
	m.mu.Unlock()
	for _, w := range open {
		w.Close()
	}
	return err
}

// ImportDocument creates a project from a document.
func (m *Manager) ImportDocument(ctx context.Context, doc *Document) (*Workspace, error) {
	store, err := doc.Build(m.settings.Sampling)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := Project{
		ID:            NewID(),
		Name:          doc.Name,
		TimelineRange: doc.TimelineRange,
		Duration:      store.End(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.TimelineRange <= 0 {
		p.TimelineRange = DefaultTimelineRange
	}
	if err := m.repo.CreateProject(ctx, &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := m.repo.SaveTimeline(ctx, p.ID, Capture(store)); err != nil {
		return nil, fmt.Errorf("save timeline: %w", err)
	}
	m.logger.Info("project imported", "project_id", p.ID, "elements", store.Len())
	return m.attach(ctx, p, store), nil
}

func (m *Manager) ExportDocument(id string) (*Document, error) {
	w, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	p, tl := w.Snapshot()
	return NewDocument(p.Name, p.TimelineRange, tl), nil
}
