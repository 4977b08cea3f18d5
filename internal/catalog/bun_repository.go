package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPageRepository implements PageRepository with optional caching. Point
// lookups go through the cache, listings always hit the database.
type BunPageRepository struct {
	repo repository.Repository[*Page]
	base repository.Repository[*Page]
}

// NewBunPageRepository creates a page repository without caching.
func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache creates a page repository with caching support.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunPageRepository{repo: repo, base: base}
}

func (r *BunPageRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	record, err := r.repo.Create(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return record, nil
}

func (r *BunPageRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	record, err := r.repo.Update(ctx, page)
	if err != nil {
		return nil, mapRepositoryError(err, "page", page.Path)
	}
	return record, nil
}

func (r *BunPageRepository) GetByPath(ctx context.Context, path string) (*Page, error) {
	record, err := r.repo.GetByIdentifier(ctx, path)
	if err != nil {
		return nil, mapRepositoryError(err, "page", path)
	}
	return record, nil
}

func (r *BunPageRepository) List(ctx context.Context) ([]*Page, error) {
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.path ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Page{ID: id}); err != nil {
		return mapRepositoryError(err, "page", id.String())
	}
	return nil
}

// BunRunRepository implements RunRepository with optional caching.
type BunRunRepository struct {
	repo repository.Repository[*Run]
	base repository.Repository[*Run]
}

// NewBunRunRepository creates a run repository without caching.
func NewBunRunRepository(db *bun.DB) *BunRunRepository {
	return NewBunRunRepositoryWithCache(db, nil, nil)
}

// NewBunRunRepositoryWithCache creates a run repository with caching support.
func NewBunRunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRunRepository {
	base := NewRunRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRunRepository{repo: repo, base: base}
}

func (r *BunRunRepository) Create(ctx context.Context, run *Run) (*Run, error) {
	record, err := r.repo.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("run repository error: %w", err)
	}
	return record, nil
}

func (r *BunRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "run", id.String())
	}
	return record, nil
}

func (r *BunRunRepository) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.started_at DESC")
		}),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("run repository error: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
