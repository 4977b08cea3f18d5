package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository keeps catalog pages in memory.
type MemoryPageRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Page
	byPath map[string]uuid.UUID
}

// NewMemoryPageRepository constructs an empty memory-backed page repository.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		byID:   make(map[uuid.UUID]*Page),
		byPath: make(map[string]uuid.UUID),
	}
}

func (r *MemoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	if page == nil {
		return nil, nil
	}
	cloned := clonePage(page)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byPath[cloned.Path] = cloned.ID
	return clonePage(cloned), nil
}

func (r *MemoryPageRepository) Update(_ context.Context, page *Page) (*Page, error) {
	if page == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[page.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.Path}
	}
	if existing.Path != page.Path {
		delete(r.byPath, existing.Path)
	}
	cloned := clonePage(page)
	r.byID[cloned.ID] = cloned
	r.byPath[cloned.Path] = cloned.ID
	return clonePage(cloned), nil
}

func (r *MemoryPageRepository) GetByPath(_ context.Context, path string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPath[path]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: path}
	}
	return clonePage(r.byID[id]), nil
}

func (r *MemoryPageRepository) List(_ context.Context) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Page, 0, len(r.byID))
	for _, page := range r.byID {
		out = append(out, clonePage(page))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *MemoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	delete(r.byID, id)
	delete(r.byPath, page.Path)
	return nil
}

// MemoryRunRepository keeps check runs in memory.
type MemoryRunRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Run
}

// NewMemoryRunRepository constructs an empty memory-backed run repository.
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{byID: make(map[uuid.UUID]*Run)}
}

func (r *MemoryRunRepository) Create(_ context.Context, run *Run) (*Run, error) {
	if run == nil {
		return nil, nil
	}
	cloned := cloneRun(run)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	return cloneRun(cloned), nil
}

func (r *MemoryRunRepository) GetByID(_ context.Context, id uuid.UUID) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "run", Key: id.String()}
	}
	return cloneRun(run), nil
}

func (r *MemoryRunRepository) ListRecent(_ context.Context, limit int) ([]*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Run, 0, len(r.byID))
	for _, run := range r.byID {
		out = append(out, cloneRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
