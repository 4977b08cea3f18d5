// Package catalog persists the page set and check history so the table of
// contents and past runs can be inspected without re-reading the tree.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-bookcheck/internal/identity"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// DefaultRunLimit caps Runs when no limit is given.
const DefaultRunLimit = 20

var (
	ErrPageRepositoryRequired = errors.New("catalog: page repository required")
	ErrRunRepositoryRequired  = errors.New("catalog: run repository required")
	ErrReportRequired         = errors.New("catalog: report required")
)

// SyncResult summarises a Sync call. Each slice holds page paths.
type SyncResult struct {
	Created   []string `json:"created,omitempty"`
	Updated   []string `json:"updated,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
	Unchanged int      `json:"unchanged"`
}

// Changed reports whether Sync wrote anything.
func (r SyncResult) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Deleted) > 0
}

// IDGenerator produces the identifier of a new page record from its path.
type IDGenerator func(path string) uuid.UUID

// ServiceOption customises the catalog service.
type ServiceOption func(*Service)

// WithIDGenerator overrides how page IDs are derived.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *Service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service keeps the catalog in step with the content tree.
type Service struct {
	pages  PageRepository
	runs   RunRepository
	id     IDGenerator
	now    func() time.Time
	logger interfaces.Logger
}

// NewService wires the catalog repositories.
func NewService(pages PageRepository, runs RunRepository, opts ...ServiceOption) *Service {
	s := &Service{
		pages:  pages,
		runs:   runs,
		id:     identity.PageUUID,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Sync makes the catalog mirror pages: new paths are created, paths whose
// checksum changed are updated and paths no longer present are deleted.
func (s *Service) Sync(ctx context.Context, pages []*interfaces.ChapterPage) (SyncResult, error) {
	var result SyncResult
	if s.pages == nil {
		return result, ErrPageRepositoryRequired
	}

	existing, err := s.pages.List(ctx)
	if err != nil {
		return result, err
	}
	byPath := make(map[string]*Page, len(existing))
	for _, record := range existing {
		byPath[record.Path] = record
	}

	now := s.now().UTC()
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		record := FromChapterPage(page)
		if record == nil || seen[record.Path] {
			continue
		}
		seen[record.Path] = true

		current, ok := byPath[record.Path]
		if !ok {
			record.ID = s.id(record.Path)
			record.CreatedAt = now
			record.UpdatedAt = now
			if _, err := s.pages.Create(ctx, record); err != nil {
				return result, err
			}
			result.Created = append(result.Created, record.Path)
			continue
		}
		if current.Checksum == record.Checksum {
			result.Unchanged++
			continue
		}
		record.ID = current.ID
		record.CreatedAt = current.CreatedAt
		record.UpdatedAt = now
		if _, err := s.pages.Update(ctx, record); err != nil {
			return result, err
		}
		result.Updated = append(result.Updated, record.Path)
	}

	for _, record := range existing {
		if seen[record.Path] {
			continue
		}
		if err := s.pages.Delete(ctx, record.ID); err != nil {
			return result, err
		}
		result.Deleted = append(result.Deleted, record.Path)
	}

	s.logger.Info("catalog.sync.completed",
		"created", len(result.Created),
		"updated", len(result.Updated),
		"deleted", len(result.Deleted),
		"unchanged", result.Unchanged,
	)
	return result, nil
}

// Pages lists the catalog ordered by path.
func (s *Service) Pages(ctx context.Context) ([]*Page, error) {
	if s.pages == nil {
		return nil, ErrPageRepositoryRequired
	}
	return s.pages.List(ctx)
}

// Page returns the catalog entry for path.
func (s *Service) Page(ctx context.Context, path string) (*Page, error) {
	if s.pages == nil {
		return nil, ErrPageRepositoryRequired
	}
	return s.pages.GetByPath(ctx, path)
}

// TOC builds the table of contents from the stored pages.
func (s *Service) TOC(ctx context.Context) ([]TOCBook, error) {
	pages, err := s.Pages(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTOC(pages), nil
}

// RecordRun stores report as a check run. failOn decides the Failed flag.
func (s *Service) RecordRun(ctx context.Context, report *lint.Report, failOn interfaces.Severity) (*Run, error) {
	if s.runs == nil {
		return nil, ErrRunRepositoryRequired
	}
	if report == nil {
		return nil, ErrReportRequired
	}

	id, err := uuid.Parse(report.RunID)
	if err != nil {
		id = uuid.New()
	}
	counts := report.Counts()
	run := &Run{
		ID:         id,
		Root:       report.Root,
		StartedAt:  report.StartedAt.UTC(),
		DurationMS: report.Duration.Milliseconds(),
		Pages:      report.Pages,
		Errors:     counts.Errors,
		Warnings:   counts.Warnings,
		Infos:      counts.Infos,
		Failed:     report.Failed(failOn),
		Issues:     append([]interfaces.Issue(nil), report.Issues...),
		CreatedAt:  s.now().UTC(),
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.CreatedAt
	}

	stored, err := s.runs.Create(ctx, run)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.run.recorded", "run_id", stored.ID, "issues", len(stored.Issues))
	return stored, nil
}

// Runs returns the most recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]*Run, error) {
	if s.runs == nil {
		return nil, ErrRunRepositoryRequired
	}
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return s.runs.ListRecent(ctx, limit)
}

// Run returns a single stored run.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*Run, error) {
	if s.runs == nil {
		return nil, ErrRunRepositoryRequired
	}
	return s.runs.GetByID(ctx, id)
}
