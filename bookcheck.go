// Package bookcheck lints the chapter pages of a Hugo book: front matter,
// path conventions, quiz blocks and fenced code. The optional catalog keeps
// an index of pages and a history of check runs in SQLite.
package bookcheck

import (
	"context"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	checkcmd "github.com/goliatone/go-bookcheck/internal/commands/check"
	"github.com/goliatone/go-bookcheck/internal/di"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// ErrCatalogDisabled is returned by catalog operations when storage is off.
var ErrCatalogDisabled = checkcmd.ErrCatalogDisabled

type (
	Report      = lint.Report
	Counts      = lint.Counts
	RuleInfo    = lint.RuleInfo
	Issue       = interfaces.Issue
	Severity    = interfaces.Severity
	ChapterPage = interfaces.ChapterPage
	CheckResult = checkcmd.CheckResult
	IndexResult = checkcmd.IndexResult
	CatalogPage = catalog.Page
	Run         = catalog.Run
	TOCBook     = catalog.TOCBook
	SyncResult  = catalog.SyncResult
)

// CheckOptions tunes a single check.
type CheckOptions struct {
	// FailOn overrides Check.FailOn from the configuration.
	FailOn string
	// Record stores the report in the run history.
	Record bool
}

// Module is the programmatic entry point.
type Module struct {
	container *di.Container
}

// New builds a module from cfg. Call Close when done.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases storage.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}

// CatalogEnabled reports whether catalog operations are available.
func (m *Module) CatalogEnabled() bool {
	return m.container.CatalogService() != nil
}

// Check lints every page below dir, relative to the content root.
func (m *Module) Check(ctx context.Context, dir string, opts CheckOptions) (CheckResult, error) {
	failOn := opts.FailOn
	if failOn == "" {
		failOn = m.container.Config.Check.FailOn
	}
	var result CheckResult
	err := m.container.CommandHandlers().Check.Execute(ctx, checkcmd.CheckDirectoryCommand{
		Directory:      dir,
		FailOn:         failOn,
		Record:         opts.Record,
		ResultCallback: func(r CheckResult) { result = r },
	})
	return result, err
}

// Index mirrors the pages below dir into the catalog.
func (m *Module) Index(ctx context.Context, dir string) (IndexResult, error) {
	handler := m.container.CommandHandlers().Index
	if handler == nil {
		return IndexResult{}, ErrCatalogDisabled
	}
	var result IndexResult
	err := handler.Execute(ctx, checkcmd.IndexDirectoryCommand{
		Directory:      dir,
		ResultCallback: func(r IndexResult) { result = r },
	})
	return result, err
}

// TOC builds the table of contents. With the catalog enabled it reads the
// indexed pages, otherwise it loads dir from disk.
func (m *Module) TOC(ctx context.Context, dir string, fromCatalog bool) ([]TOCBook, error) {
	if fromCatalog {
		svc := m.container.CatalogService()
		if svc == nil {
			return nil, ErrCatalogDisabled
		}
		return svc.TOC(ctx)
	}
	pages, err := m.container.MarkdownService().LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]*CatalogPage, 0, len(pages))
	for _, page := range pages {
		entries = append(entries, catalog.FromChapterPage(page))
	}
	return catalog.BuildTOC(entries), nil
}

// History returns the most recent recorded runs, newest first.
func (m *Module) History(ctx context.Context, limit int) ([]*Run, error) {
	svc := m.container.CatalogService()
	if svc == nil {
		return nil, ErrCatalogDisabled
	}
	return svc.Runs(ctx, limit)
}

// Rules lists the registered rules with their default severities.
func (m *Module) Rules() []RuleInfo {
	return lint.Rules()
}

// RuleSeverity returns the severity rule reports at under the current
// configuration.
func (m *Module) RuleSeverity(rule string) Severity {
	return m.container.Checker().Severity(rule)
}

// RuleEnabled reports whether rule runs under the current configuration.
func (m *Module) RuleEnabled(rule string) bool {
	return m.container.Checker().Enabled(rule)
}
