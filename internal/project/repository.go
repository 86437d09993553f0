package project

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/timeline"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error

	SaveTimeline(ctx context.Context, projectID string, tl Timeline) error
	LoadTimeline(ctx context.Context, projectID string) (Timeline, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, timeline_range, cursor, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.TimelineRange, p.Cursor, p.Duration, p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return err
}

// GetProject returns nil and no error when the project does not exist.
func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, timeline_range, cursor, duration, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, timeline_range, cursor, duration, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.TimelineRange, &p.Cursor, &p.Duration, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p *Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, timeline_range = ?, cursor = ?, duration = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.TimelineRange, p.Cursor, p.Duration, p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// SaveTimeline replaces the stored elements and keyframes of a project.
func (r *SQLiteRepository) SaveTimeline(ctx context.Context, projectID string, tl Timeline) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM elements WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clear elements: %w", err)
	}

	for i, e := range tl.Elements {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO elements (project_id, id, position, filetype, start_time, duration, trim_start, trim_end,
				speed, location_x, location_y, opacity, width, height, text, source_path, storage_key)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, projectID, e.ID, i, e.Filetype, e.StartTime, e.Duration, e.Trim.StartTime, e.Trim.EndTime,
			e.Speed, e.Location.X, e.Location.Y, e.Opacity, e.Width, e.Height,
			nullString(e.Text), nullString(e.SourcePath), nullString(e.StorageKey))
		if err != nil {
			return fmt.Errorf("insert element %s: %w", e.ID, err)
		}
	}

	for _, ch := range tl.Channels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channels (project_id, element_id, channel, active) VALUES (?, ?, ?, ?)
		`, projectID, ch.ElementID, ch.Channel, boolToInt(ch.Active))
		if err != nil {
			return fmt.Errorf("insert channel %s/%s: %w", ch.ElementID, ch.Channel, err)
		}
		for track, pts := range ch.Tracks {
			for _, p := range pts {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO keyframes (project_id, element_id, channel, track, t, v) VALUES (?, ?, ?, ?, ?, ?)
				`, projectID, ch.ElementID, ch.Channel, track, p.T, p.V)
				if err != nil {
					return fmt.Errorf("insert keyframe %s/%s: %w", ch.ElementID, ch.Channel, err)
				}
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) LoadTimeline(ctx context.Context, projectID string) (Timeline, error) {
	var tl Timeline

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filetype, start_time, duration, trim_start, trim_end, speed, location_x, location_y,
			opacity, width, height, text, source_path, storage_key
		FROM elements WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return tl, err
	}
	defer rows.Close()

	for rows.Next() {
		var e timeline.Element
		var text, sourcePath, storageKey sql.NullString
		if err := rows.Scan(&e.ID, &e.Filetype, &e.StartTime, &e.Duration, &e.Trim.StartTime, &e.Trim.EndTime,
			&e.Speed, &e.Location.X, &e.Location.Y, &e.Opacity, &e.Width, &e.Height,
			&text, &sourcePath, &storageKey); err != nil {
			return tl, err
		}
		e.Text = text.String
		e.SourcePath = sourcePath.String
		e.StorageKey = storageKey.String
		tl.Elements = append(tl.Elements, e)
	}
	if err := rows.Err(); err != nil {
		return tl, err
	}

	channels, err := r.loadChannels(ctx, projectID)
	if err != nil {
		return tl, err
	}
	tl.Channels = channels
	return tl, nil
}

func (r *SQLiteRepository) loadChannels(ctx context.Context, projectID string) ([]ChannelState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.element_id, c.channel, c.active, k.track, k.t, k.v
		FROM channels c
		JOIN elements e ON e.project_id = c.project_id AND e.id = c.element_id
		LEFT JOIN keyframes k ON k.project_id = c.project_id AND k.element_id = c.element_id AND k.channel = c.channel
		WHERE c.project_id = ?
		ORDER BY e.position, c.channel, k.track, k.t
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []ChannelState
	for rows.Next() {
		var (
			elementID, channel string
			active             int
			track              sql.NullInt64
			t, v               sql.NullFloat64
		)
		if err := rows.Scan(&elementID, &channel, &active, &track, &t, &v); err != nil {
			return nil, err
		}

		n := len(channels)
		if n == 0 || channels[n-1].ElementID != elementID || channels[n-1].Channel != channel {
			channels = append(channels, ChannelState{ElementID: elementID, Channel: channel, Active: active == 1})
			n++
		}
		if !track.Valid {
			continue
		}
		cur := &channels[n-1]
		for int(track.Int64) >= len(cur.Tracks) {
			cur.Tracks = append(cur.Tracks, nil)
		}
		cur.Tracks[track.Int64] = append(cur.Tracks[track.Int64], keyframe.Point{T: t.Float64, V: v.Float64})
	}
	return channels, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
