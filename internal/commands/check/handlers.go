package checkcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	"github.com/goliatone/go-bookcheck/internal/commands"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

const (
	checkOperation = "check.directory"
	indexOperation = "catalog.index_directory"
)

var (
	ErrLoaderRequired  = errors.New("check command: page loader required")
	ErrLinterRequired  = errors.New("check command: linter required")
	ErrCatalogDisabled = errors.New("check command: catalog storage is disabled")
)

var (
	_ command.Commander[CheckDirectoryCommand] = (*CheckDirectoryHandler)(nil)
	_ command.Commander[IndexDirectoryCommand] = (*IndexDirectoryHandler)(nil)
)

// Linter runs the rule set over loaded pages.
type Linter interface {
	Check(ctx context.Context, pages []*interfaces.ChapterPage) (*lint.Report, error)
}

// RunRecorder stores check reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, report *lint.Report, failOn interfaces.Severity) (*catalog.Run, error)
}

// Indexer mirrors pages into the catalog.
type Indexer interface {
	Sync(ctx context.Context, pages []*interfaces.ChapterPage) (catalog.SyncResult, error)
}

// CheckDirectoryHandler loads, lints and optionally records a directory.
type CheckDirectoryHandler struct {
	inner *commands.Handler[CheckDirectoryCommand]
}

// NewCheckDirectoryHandler wires the handler. recorder may be nil when the
// catalog is disabled; commands asking to record then fail.
func NewCheckDirectoryHandler(loader interfaces.PageLoader, linter Linter, recorder RunRecorder, logger interfaces.Logger, opts ...commands.HandlerOption[CheckDirectoryCommand]) *CheckDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CheckDirectoryCommand) error {
		if loader == nil {
			return ErrLoaderRequired
		}
		if linter == nil {
			return ErrLinterRequired
		}
		if msg.Record && recorder == nil {
			return ErrCatalogDisabled
		}
		threshold, err := lint.ParseFailOn(msg.FailOn)
		if err != nil {
			return err
		}

		pages, err := loader.LoadDirectory(ctx, msg.Directory)
		if err != nil {
			return err
		}
		report, err := linter.Check(ctx, pages)
		if err != nil {
			return err
		}
		report.Root = msg.Directory

		result := CheckResult{
			Report: report,
			Failed: report.Failed(threshold),
		}
		if msg.Record {
			run, err := recorder.RecordRun(ctx, report, threshold)
			if err != nil {
				return err
			}
			result.Run = run
		}

		counts := report.Counts()
		logging.WithFields(baseLogger, map[string]any{
			"pages":    report.Pages,
			"errors":   counts.Errors,
			"warnings": counts.Warnings,
			"infos":    counts.Infos,
			"failed":   result.Failed,
		}).Info("check.command.directory.completed")

		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckDirectoryCommand]{
		commands.WithLogger[CheckDirectoryCommand](baseLogger),
		commands.WithOperation[CheckDirectoryCommand](checkOperation),
		commands.WithMessageFields(func(msg CheckDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.FailOn != "" {
				fields["fail_on"] = msg.FailOn
			}
			if msg.Record {
				fields["record"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckDirectoryCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckDirectoryCommand].
func (h *CheckDirectoryHandler) Execute(ctx context.Context, msg CheckDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// IndexDirectoryHandler loads a directory and syncs it into the catalog.
type IndexDirectoryHandler struct {
	inner *commands.Handler[IndexDirectoryCommand]
}

// NewIndexDirectoryHandler wires the handler.
func NewIndexDirectoryHandler(loader interfaces.PageLoader, indexer Indexer, logger interfaces.Logger, opts ...commands.HandlerOption[IndexDirectoryCommand]) *IndexDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg IndexDirectoryCommand) error {
		if loader == nil {
			return ErrLoaderRequired
		}
		if indexer == nil {
			return ErrCatalogDisabled
		}

		pages, err := loader.LoadDirectory(ctx, msg.Directory)
		if err != nil {
			return err
		}
		synced, err := indexer.Sync(ctx, pages)
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"pages":         len(pages),
			"created_count": len(synced.Created),
			"updated_count": len(synced.Updated),
			"deleted_count": len(synced.Deleted),
		}).Info("check.command.index_directory.completed")

		if msg.ResultCallback != nil {
			msg.ResultCallback(IndexResult{Pages: len(pages), Sync: synced})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[IndexDirectoryCommand]{
		commands.WithLogger[IndexDirectoryCommand](baseLogger),
		commands.WithOperation[IndexDirectoryCommand](indexOperation),
		commands.WithMessageFields(func(msg IndexDirectoryCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[IndexDirectoryCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &IndexDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[IndexDirectoryCommand].
func (h *IndexDirectoryHandler) Execute(ctx context.Context, msg IndexDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
