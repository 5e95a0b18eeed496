package planner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is the keyed persistence the session writes through to. Raw record
// storage is plumbing; the session only relies on these operations.
type Store interface {
	CreateTask(ctx context.Context, task Task) error
	ListTasks(ctx context.Context) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error

	SaveSources(ctx context.Context, sources []Source) error
	ListSources(ctx context.Context) ([]Source, error)
	SetSourceTrust(ctx context.Context, id string, trust bool) error

	AppendOverride(ctx context.Context, ev OverrideEvent) error
	ListOverrides(ctx context.Context) ([]OverrideEvent, error)
}

// Retriever fetches sources for a task. It never fails: provider trouble
// degrades to deterministic demo sources.
type Retriever interface {
	Fetch(ctx context.Context, task Task) []Source
}

// defaultOpTimeout bounds a generate/regenerate when the caller supplies no
// deadline of its own.
const defaultOpTimeout = 45 * time.Second

type SessionConfig struct {
	Store     Store
	Retriever Retriever
	Engine    *Engine
	// TieBreak is the block priority used to break profile ties.
	TieBreak []TimeBlock
	// OpTimeout bounds generate/regenerate latency; zero means the default.
	OpTimeout time.Duration
	Logger    *zap.Logger
}

// Session owns the current plan, the override history and the source
// registry. All operations are serialized: one in-flight call at a time.
type Session struct {
	mu        sync.Mutex
	store     Store
	retriever Retriever
	engine    *Engine
	registry  *Registry
	tieBreak  []TimeBlock
	opTimeout time.Duration
	log       *zap.Logger

	history   []OverrideEvent
	plan      *Plan
	planTasks []Task
}

// NewSession loads the override history and source trust state from the
// store so decisions survive restarts.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	s := &Session{
		store:     cfg.Store,
		retriever: cfg.Retriever,
		engine:    cfg.Engine,
		registry:  NewRegistry(),
		tieBreak:  normalizePriority(cfg.TieBreak),
		opTimeout: timeout,
		log:       log,
	}

	sources, err := cfg.Store.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	s.registry.Register(sources)

	s.history, err = cfg.Store.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) AddTask(ctx context.Context, title, category, mood string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := NewTask(title, category, mood)
	if err != nil {
		return Task{}, err
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *Session) Tasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListTasks(ctx)
}

func (s *Session) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteTask(ctx, id)
}

// Generate builds a fresh plan for the given task set, replacing any prior
// plan and its pending overrides. The session state is untouched on error.
func (s *Session) Generate(ctx context.Context, tasks []Task) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate(ctx, tasks)
}

// Regenerate rebuilds the plan for the prior plan's task set, folding every
// override recorded so far into the profile first.
func (s *Session) Regenerate(ctx context.Context) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return Plan{}, NewValidation("plan", "no plan to regenerate; generate one first")
	}
	return s.generate(ctx, s.planTasks)
}

func (s *Session) generate(ctx context.Context, tasks []Task) (Plan, error) {
	if len(tasks) == 0 {
		return Plan{}, NewEmptyTaskSet()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	sourcesByTask := make(map[string][]Source, len(tasks))
	for _, task := range tasks {
		fetched := s.retriever.Fetch(ctx, task)
		s.registry.Register(fetched)

		// Re-read through the registry so earlier trust decisions apply
		// even when the retriever re-returns a source as trusted.
		resolved := make([]Source, 0, len(fetched))
		for _, src := range fetched {
			if cur, ok := s.registry.Get(src.ID); ok {
				resolved = append(resolved, cur)
			}
		}
		sourcesByTask[task.ID] = resolved

		if err := s.store.SaveSources(ctx, resolved); err != nil {
			s.log.Warn("persisting sources failed", zap.Error(err))
		}
	}

	profile := BuildProfile(s.history, s.tieBreak)
	plan, err := s.engine.Generate(ctx, tasks, profile, sourcesByTask)
	if err != nil {
		return Plan{}, err
	}

	s.plan = &plan
	s.planTasks = append([]Task(nil), tasks...)
	return s.snapshot(), nil
}

// ApplyOverride moves one entry to another block, leaving every other entry
// untouched, and records the move as a learning signal. Learning takes
// effect on the next Regenerate.
func (s *Session) ApplyOverride(ctx context.Context, taskID string, block TimeBlock) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return Plan{}, NewNotFound("task is not in the current plan: " + taskID)
	}
	idx := -1
	for i := range s.plan.Entries {
		if s.plan.Entries[i].TaskID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Plan{}, NewNotFound("task is not in the current plan: " + taskID)
	}

	var task Task
	for _, t := range s.planTasks {
		if t.ID == taskID {
			task = t
			break
		}
	}

	ev := OverrideEvent{Mood: task.Mood, Category: task.Category, Block: block}
	if err := s.store.AppendOverride(ctx, ev); err != nil {
		return Plan{}, err
	}
	s.history = append(s.history, ev)
	s.plan.Entries[idx].Block = block
	return s.snapshot(), nil
}

// MarkUntrusted flips a source's trust flag off for good.
func (s *Session) MarkUntrusted(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.MarkUntrusted(id); err != nil {
		return err
	}
	if err := s.store.SetSourceTrust(ctx, id, false); err != nil {
		s.log.Warn("persisting source trust failed", zap.String("source", id), zap.Error(err))
	}
	return nil
}

// Sources returns every registered source with its current trust flag.
func (s *Session) Sources() []Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.All()
}

// Profile returns the chronotype profile derived from the override history.
func (s *Session) Profile() ChronotypeProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildProfile(s.history, s.tieBreak)
}

// CurrentPlan returns the current plan and the task set it was generated
// for; ok is false before the first successful Generate.
func (s *Session) CurrentPlan() (Plan, []Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return Plan{}, nil, false
	}
	return s.snapshot(), append([]Task(nil), s.planTasks...), true
}

// snapshot deep-copies the current plan so callers cannot mutate session
// state through the returned value.
func (s *Session) snapshot() Plan {
	out := Plan{GeneratedAt: s.plan.GeneratedAt, Entries: make([]PlanEntry, len(s.plan.Entries))}
	for i, e := range s.plan.Entries {
		cp := e
		cp.SourceIDs = append([]string(nil), e.SourceIDs...)
		out.Entries[i] = cp
	}
	return out
}
