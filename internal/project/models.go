// Package project persists timelines and keeps the open ones in memory as
// workspaces.
package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const DefaultTimelineRange = 4

var (
	ErrNotFound   = errors.New("project not found")
	ErrNotOpen    = errors.New("project is not open")
	ErrNoSource   = errors.New("import needs a path or a storage key")
	ErrBadVersion = errors.New("unsupported document version")
)

type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TimelineRange float64   `json:"timeline_range"`
	Cursor        int64     `json:"cursor"`
	Duration      int64     `json:"duration"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}
