package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PageRepository persists catalog pages.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	GetByPath(ctx context.Context, path string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunRepository persists check runs.
type RunRepository interface {
	Create(ctx context.Context, run *Run) (*Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRecent returns up to limit runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
}

// NotFoundError is returned when a catalog record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
