package store

import (
	"context"
	"sync"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// Memory is the keyed store used in demo mode (no database configured) and
// in tests. Same semantics as the Postgres store.
type Memory struct {
	mu          sync.Mutex
	tasks       map[string]planner.Task
	taskOrder   []string
	sources     map[string]planner.Source
	sourceOrder []string
	overrides   []planner.OverrideEvent
}

func NewMemory() *Memory {
	return &Memory{
		tasks:   make(map[string]planner.Task),
		sources: make(map[string]planner.Source),
	}
}

func (m *Memory) CreateTask(_ context.Context, task planner.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		m.taskOrder = append(m.taskOrder, task.ID)
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *Memory) ListTasks(_ context.Context) ([]planner.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]planner.Task, 0, len(m.taskOrder))
	for _, id := range m.taskOrder {
		out = append(out, m.tasks[id])
	}
	return out, nil
}

func (m *Memory) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return planner.NewNotFound("unknown task: " + id)
	}
	delete(m.tasks, id)
	for i, tid := range m.taskOrder {
		if tid == id {
			m.taskOrder = append(m.taskOrder[:i], m.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SaveSources upserts by id; an existing source keeps its stored trust flag.
func (m *Memory) SaveSources(_ context.Context, sources []planner.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range sources {
		if existing, ok := m.sources[s.ID]; ok {
			existing.Title = s.Title
			existing.Link = s.Link
			m.sources[s.ID] = existing
			continue
		}
		m.sources[s.ID] = s
		m.sourceOrder = append(m.sourceOrder, s.ID)
	}
	return nil
}

func (m *Memory) ListSources(_ context.Context) ([]planner.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]planner.Source, 0, len(m.sourceOrder))
	for _, id := range m.sourceOrder {
		out = append(out, m.sources[id])
	}
	return out, nil
}

func (m *Memory) SetSourceTrust(_ context.Context, id string, trust bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return planner.NewNotFound("unknown source: " + id)
	}
	s.Trust = trust
	m.sources[id] = s
	return nil
}

func (m *Memory) AppendOverride(_ context.Context, ev planner.OverrideEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides = append(m.overrides, ev)
	return nil
}

func (m *Memory) ListOverrides(_ context.Context) ([]planner.OverrideEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]planner.OverrideEvent(nil), m.overrides...), nil
}
