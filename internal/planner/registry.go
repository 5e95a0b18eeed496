package planner

import "sync"

// Registry holds every source seen so far, in first-registration order, and
// owns the trust flags. Once a source is marked untrusted, re-registering the
// same id never resets it.
type Registry struct {
	mu      sync.Mutex
	order   []string
	sources map[string]*Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// Register is idempotent per source id: a known id gets its title and link
// refreshed but keeps its trust flag.
func (r *Registry) Register(sources []Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range sources {
		if existing, ok := r.sources[s.ID]; ok {
			existing.Title = s.Title
			existing.Link = s.Link
			continue
		}
		cp := s
		r.sources[s.ID] = &cp
		r.order = append(r.order, s.ID)
	}
}

func (r *Registry) Get(id string) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return Source{}, false
	}
	return *s, true
}

func (r *Registry) All() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.sources[id])
	}
	return out
}

func (r *Registry) Trusted() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Source
	for _, id := range r.order {
		if s := r.sources[id]; s.Trust {
			out = append(out, *s)
		}
	}
	return out
}

func (r *Registry) MarkUntrusted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return NewNotFound("unknown source: " + id)
	}
	s.Trust = false
	return nil
}
