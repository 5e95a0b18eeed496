package store

import (
	"context"
	"database/sql"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// Postgres persists tasks, sources and override events through database/sql.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateTask(ctx context.Context, task planner.Task) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, category, mood, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		task.ID, task.Title, string(task.Category), string(task.Mood), task.CreatedAt,
	)
	return err
}

func (p *Postgres) ListTasks(ctx context.Context) ([]planner.Task, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, title, category, mood, created_at
		 FROM tasks
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []planner.Task
	for rows.Next() {
		var t planner.Task
		var category, mood string
		if err := rows.Scan(&t.ID, &t.Title, &category, &mood, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Category = planner.Category(category)
		t.Mood = planner.Mood(mood)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) DeleteTask(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.NewNotFound("unknown task: " + id)
	}
	return nil
}

// SaveSources upserts by id without touching the stored trust flag, so an
// untrust decision survives re-retrieval of the same source.
func (p *Postgres) SaveSources(ctx context.Context, sources []planner.Source) error {
	for _, s := range sources {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO sources (id, title, link, trust)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, link = EXCLUDED.link`,
			s.ID, s.Title, s.Link, s.Trust,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) ListSources(ctx context.Context) ([]planner.Source, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, title, link, trust FROM sources ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []planner.Source
	for rows.Next() {
		var s planner.Source
		if err := rows.Scan(&s.ID, &s.Title, &s.Link, &s.Trust); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (p *Postgres) SetSourceTrust(ctx context.Context, id string, trust bool) error {
	res, err := p.db.ExecContext(ctx, `UPDATE sources SET trust = $2 WHERE id = $1`, id, trust)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.NewNotFound("unknown source: " + id)
	}
	return nil
}

func (p *Postgres) AppendOverride(ctx context.Context, ev planner.OverrideEvent) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO override_events (mood, category, block) VALUES ($1, $2, $3)`,
		string(ev.Mood), string(ev.Category), string(ev.Block),
	)
	return err
}

func (p *Postgres) ListOverrides(ctx context.Context) ([]planner.OverrideEvent, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT mood, category, block FROM override_events ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []planner.OverrideEvent
	for rows.Next() {
		var mood, category, block string
		if err := rows.Scan(&mood, &category, &block); err != nil {
			return nil, err
		}
		events = append(events, planner.OverrideEvent{
			Mood:     planner.Mood(mood),
			Category: planner.Category(category),
			Block:    planner.TimeBlock(block),
		})
	}
	return events, rows.Err()
}
