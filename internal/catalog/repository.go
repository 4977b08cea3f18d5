package catalog

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPageRepository creates a repository for catalog pages keyed by path.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord:          func() *Page { return &Page{} },
		GetID:              func(page *Page) uuid.UUID { return page.ID },
		SetID:              func(page *Page, id uuid.UUID) { page.ID = id },
		GetIdentifier:      func() string { return "path" },
		GetIdentifierValue: func(page *Page) string { return page.Path },
	})
}

// NewRunRepository creates a repository for check runs.
func NewRunRepository(db *bun.DB) repository.Repository[*Run] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Run]{
		NewRecord:          func() *Run { return &Run{} },
		GetID:              func(run *Run) uuid.UUID { return run.ID },
		SetID:              func(run *Run, id uuid.UUID) { run.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(run *Run) string { return run.ID.String() },
	})
}
