package project

import (
	"context"
	"errors"
	"testing"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/media"
	"github.com/framecut/framecut-agent/internal/timeline"
)

func TestManager_CreateImportSaveReopen(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	w, err := m.Create(ctx, "Vlog")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := w.ID()
	if w.Dirty() {
		t.Error("new workspace should not be dirty")
	}

	img, err := m.Import(ctx, id, ImportRequest{Path: "/media/cover.png"})
	if err != nil {
		t.Fatalf("Import(png) error = %v", err)
	}
	if img.Kind != timeline.KindStatic || img.Duration != media.DefaultStillDuration || img.Opacity != 1 {
		t.Errorf("image element = %+v", img)
	}

	start := int64(5000)
	vid, err := m.Import(ctx, id, ImportRequest{Path: "/media/clip.mp4", StartTime: &start, Duration: 12000})
	if err != nil {
		t.Fatalf("Import(mp4) error = %v", err)
	}
	if vid.Kind != timeline.KindDynamic || vid.Trim != (timeline.Trim{StartTime: 0, EndTime: 12000}) || vid.StartTime != 5000 {
		t.Errorf("video element = %+v", vid)
	}
	if !w.Dirty() {
		t.Error("workspace should be dirty after import")
	}
	if end := w.Clock().End(); end != 17000 {
		t.Errorf("clock end = %d, want 17000", end)
	}

	err = w.Do(func() error {
		return w.Store().InsertKeyframe(img.ID, keyframe.ChannelPosition, keyframe.TrackY, keyframe.Point{T: 2500, V: 80})
	})
	if err != nil {
		t.Fatalf("InsertKeyframe() error = %v", err)
	}

	if err := m.Close(ctx, id); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := m.Get(id); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Get() after close error = %v, want ErrNotOpen", err)
	}

	w, err = m.Open(ctx, id)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if n := w.Store().Len(); n != 2 {
		t.Fatalf("reopened store has %d elements, want 2", n)
	}
	p := w.Project()
	if p.Duration != 17000 || p.Name != "Vlog" {
		t.Errorf("project = %+v", p)
	}
	anim, _ := w.Store().Animation(img.ID)
	ch, _ := anim.Channel(keyframe.ChannelPosition)
	if v, ok := ch.ValueAt(keyframe.TrackY, 2500); !ok || v != 80 {
		t.Errorf("y at 2500 = %v, %v; want 80", v, ok)
	}
}

func TestManager_OpenMissing(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Open(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestManager_OpenReturnsSameWorkspace(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "One")
	again, err := m.Open(ctx, w.ID())
	if err != nil {
		t.Fatal(err)
	}
	if again != w {
		t.Error("Open() of an open project returned a different workspace")
	}
}

func TestManager_ImportValidation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "V")
	negative := int64(-5)

	tests := []struct {
		name    string
		req     ImportRequest
		wantErr error
	}{
		{name: "no source", req: ImportRequest{}, wantErr: ErrNoSource},
		{name: "unknown extension", req: ImportRequest{Path: "/media/notes.txt"}, wantErr: media.ErrUnsupported},
		{name: "negative start", req: ImportRequest{Filetype: "text", StartTime: &negative}, wantErr: timeline.ErrNegativeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Import(ctx, w.ID(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := w.Store().Len(); n != 0 {
		t.Errorf("store has %d elements after failed imports", n)
	}
}

func TestManager_ImportStartsAtCursor(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "V")

	m.Import(ctx, w.ID(), ImportRequest{Filetype: "text", Text: "Title", Duration: 3000})
	w.Clock().Seek(1200)

	e, err := m.Import(ctx, w.ID(), ImportRequest{Filetype: "shape", Duration: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if e.StartTime != 1200 {
		t.Errorf("StartTime = %d, want 1200", e.StartTime)
	}
}

func TestManager_ImportFromStorageKey(t *testing.T) {
	_, repo := setupTestDB(t)
	resolver := &fakeResolver{urls: map[string]string{"gen/scene.mp4": "https://cdn.example.com/gen/scene.mp4"}}
	m := NewManager(repo, media.NewExtensionProber(nil, 8000), resolver, DefaultSettings(), testLogger())
	t.Cleanup(func() { m.Shutdown(context.Background()) })
	ctx := context.Background()
	w, _ := m.Create(ctx, "Gen")

	e, err := m.Import(ctx, w.ID(), ImportRequest{StorageKey: "gen/scene.mp4"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if e.Filetype != "video" || e.Duration != 8000 || e.StorageKey != "gen/scene.mp4" {
		t.Errorf("element = %+v", e)
	}

	url, err := m.ResolveMedia(ctx, w.ID(), e.ID)
	if err != nil {
		t.Fatalf("ResolveMedia() error = %v", err)
	}
	if url != "https://cdn.example.com/gen/scene.mp4" {
		t.Errorf("ResolveMedia() = %q", url)
	}
	if len(resolver.resolved) != 2 {
		t.Errorf("resolver called %d times, want 2", len(resolver.resolved))
	}

	if _, err := m.Import(ctx, w.ID(), ImportRequest{StorageKey: "missing"}); err == nil {
		t.Error("Import() with an unresolvable key should fail")
	}
}

func TestManager_ResolveMediaLocalAndMissing(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "V")
	local, _ := m.Import(ctx, w.ID(), ImportRequest{Path: "/media/a.mov"})
	text, _ := m.Import(ctx, w.ID(), ImportRequest{Filetype: "text"})

	if got, err := m.ResolveMedia(ctx, w.ID(), local.ID); err != nil || got != "/media/a.mov" {
		t.Errorf("ResolveMedia(local) = %q, %v", got, err)
	}
	if _, err := m.ResolveMedia(ctx, w.ID(), text.ID); !errors.Is(err, ErrNoSource) {
		t.Errorf("ResolveMedia(text) error = %v, want ErrNoSource", err)
	}
	if _, err := m.ResolveMedia(ctx, w.ID(), "ghost"); !errors.Is(err, timeline.ErrNotFound) {
		t.Errorf("ResolveMedia(ghost) error = %v, want timeline.ErrNotFound", err)
	}
}

func TestManager_SaveAll(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()
	a, _ := m.Create(ctx, "A")
	m.Create(ctx, "B")

	m.Import(ctx, a.ID(), ImportRequest{Filetype: "text", Duration: 2000})

	saved, err := m.SaveAll(ctx)
	if err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if saved != 1 {
		t.Errorf("SaveAll() saved %d, want 1", saved)
	}
	if a.Dirty() {
		t.Error("workspace still dirty after save")
	}

	tl, _ := repo.LoadTimeline(ctx, a.ID())
	if len(tl.Elements) != 1 {
		t.Errorf("stored %d elements, want 1", len(tl.Elements))
	}
	if saved, _ := m.SaveAll(ctx); saved != 0 {
		t.Errorf("second SaveAll() saved %d, want 0", saved)
	}
}

func TestManager_ListUsesLiveState(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "Live")
	m.Import(ctx, w.ID(), ImportRequest{Filetype: "image", Duration: 2500})

	list, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Duration != 2500 {
		t.Errorf("List() = %+v", list)
	}
}

func TestManager_Delete(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "Gone")
	id := w.ID()

	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(id); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Get() error = %v, want ErrNotOpen", err)
	}
	if p, _ := repo.GetProject(ctx, id); p != nil {
		t.Error("project still stored")
	}
}

func TestManager_DocumentImportExport(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	w, err := m.ImportDocument(ctx, NewDocument("Imported", 8, sampleTimeline(t)))
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if w.Zoom().Range() != 8 {
		t.Errorf("zoom range = %v, want 8", w.Zoom().Range())
	}
	if w.Store().Len() != 2 {
		t.Errorf("store has %d elements, want 2", w.Store().Len())
	}

	doc, err := m.ExportDocument(w.ID())
	if err != nil {
		t.Fatalf("ExportDocument() error = %v", err)
	}
	if doc.Name != "Imported" || len(doc.Elements) != 2 {
		t.Errorf("exported = %+v", doc)
	}
	if doc.Elements[0].Keyframes[keyframe.ChannelOpacity] == nil {
		t.Error("exported document lost keyframes")
	}
}

func TestManager_PauseAll(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	w, _ := m.Create(ctx, "P")
	m.Import(ctx, w.ID(), ImportRequest{Filetype: "image", Duration: 60000})

	if !w.Clock().Play() {
		t.Fatal("Play() = false")
	}
	m.PauseAll()
	if w.Clock().Playing() {
		t.Error("clock still playing after PauseAll")
	}
}

func TestManager_Stats(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if got := m.Stats(); got != (Stats{}) {
		t.Fatalf("Stats() with nothing open = %+v", got)
	}

	m.Create(ctx, "clean")
	busy, _ := m.Create(ctx, "busy")
	if _, err := m.Import(ctx, busy.ID(), ImportRequest{Filetype: "text", Duration: 2000}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	busy.Clock().Play()

	want := Stats{Open: 2, Playing: 1, Unsaved: 1}
	if got := m.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	m.PauseAll()
	if _, err := m.SaveAll(ctx); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if got := m.Stats(); got != (Stats{Open: 2}) {
		t.Errorf("Stats() after pause and save = %+v, want two idle projects", got)
	}
}
