package project

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultAutosaveSchedule = "@every 30s"

// Autosaver periodically saves dirty workspaces on a cron schedule.
type Autosaver struct {
	manager *Manager
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running atomic.Bool
}

func NewAutosaver(manager *Manager, logger *slog.Logger) *Autosaver {
	return &Autosaver{
		manager: manager,
		logger:  logger,
		timeout: 30 * time.Second,
		cron:    cron.New(),
	}
}

func (a *Autosaver) Start(schedule string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if schedule == "" {
		schedule = DefaultAutosaveSchedule
	}
	id, err := a.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		a.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("add autosave job: %w", err)
	}
	a.entryID = id
	a.cron.Start()
	a.logger.Info("autosave started", "schedule", schedule)
	return nil
}

// Stop removes the job and waits for a running save to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.entryID != 0 {
		a.cron.Remove(a.entryID)
		a.entryID = 0
	}
	<-a.cron.Stop().Done()
}

// RunOnce saves dirty workspaces unless a save is already running. It returns
// the number of workspaces written.
func (a *Autosaver) RunOnce(ctx context.Context) int {
	if !a.running.CompareAndSwap(false, true) {
		a.logger.Debug("autosave skipped, previous run still active")
		return 0
	}
	defer a.running.Store(false)

	saved, err := a.manager.SaveAll(ctx)
	if err != nil {
		a.logger.Error("autosave failed", "error", err)
	}
	if saved > 0 {
		a.logger.Info("autosave complete", "saved", saved)
	}
	return saved
}
