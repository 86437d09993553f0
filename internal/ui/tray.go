package ui

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/framecut/framecut-agent/internal/project"
	"github.com/getlantern/systray"
)

//go:embed icon.png
var iconBytes []byte

const refreshEvery = 2 * time.Second

func statusTitle(s project.Stats) string {
	switch {
	case s.Playing > 0:
		return "Status: Playing"
	case s.Unsaved > 0:
		return "Status: Unsaved changes"
	default:
		return "Status: Idle"
	}
}

func projectsTitle(s project.Stats) string {
	if s.Open == 1 {
		return "1 open project"
	}
	return fmt.Sprintf("%d open projects", s.Open)
}

type Tray struct {
	manager *project.Manager
	logger  *slog.Logger

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem
	saveItem     *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu   sync.Mutex
	done chan struct{}

	onQuit func()
}

type TrayConfig struct {
	Manager *project.Manager
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		manager: cfg.Manager,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
		done:    make(chan struct{}),
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Framecut")
	systray.SetTooltip("Framecut Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("0 open projects", "Projects loaded in the editor")
	t.projectsItem.Disable()

	systray.AddSeparator()

	t.saveItem = systray.AddMenuItem("Save All", "Save every project with unsaved changes")
	t.pauseItem = systray.AddMenuItem("Pause Playback", "Stop every running playhead")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Framecut Agent")

	go t.refreshLoop()

	go func() {
		for {
			select {
			case <-t.saveItem.ClickedCh:
				t.handleSaveAll()
			case <-t.pauseItem.ClickedCh:
				t.manager.PauseAll()
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.done)
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	s := t.manager.Stats()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle(statusTitle(s))
	t.projectsItem.SetTitle(projectsTitle(s))
	if s.Unsaved > 0 {
		t.saveItem.Enable()
	} else {
		t.saveItem.Disable()
	}
	if s.Playing > 0 {
		t.pauseItem.Enable()
	} else {
		t.pauseItem.Disable()
	}
}

func (t *Tray) handleSaveAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	saved, err := t.manager.SaveAll(ctx)
	if err != nil {
		t.logger.Error("failed to save projects", "error", err)
	}
	t.logger.Info("projects saved from tray", "saved", saved)
	t.refresh()
}

func (t *Tray) Quit() {
	systray.Quit()
}
