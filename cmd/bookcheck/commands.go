package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-bookcheck"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/internal/report"
	"github.com/goliatone/go-bookcheck/internal/watch"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newCheckCommand(a *app) *cobra.Command {
	var (
		format string
		failOn string
		record bool
	)
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Lint the pages below dir (default: the whole content root)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			module, err := a.module(ctx, func(cfg *bookcheck.Config) {
				if record {
					cfg.Storage.Enabled = true
				}
			})
			if err != nil {
				return err
			}
			defer module.Close()

			return checkOnce(ctx, a, module, renderer, directoryArg(args), bookcheck.CheckOptions{FailOn: failOn, Record: record})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "lowest severity that fails the run (error, warning, info, never)")
	cmd.Flags().BoolVar(&record, "record", false, "store the report in the run history (enables the catalog)")
	return cmd
}

// checkOnce runs one check and prints it. A run crossing the threshold
// returns errCheckFailed.
func checkOnce(ctx context.Context, a *app, module *bookcheck.Module, renderer *report.Renderer, dir string, opts bookcheck.CheckOptions) error {
	result, err := module.Check(ctx, dir, opts)
	if err != nil {
		return err
	}
	threshold, err := lint.ParseFailOn(effectiveFailOn(module, opts.FailOn))
	if err != nil {
		return err
	}
	if err := renderer.Report(a.stdout, result.Report, threshold); err != nil {
		return err
	}
	if result.Failed {
		return errCheckFailed
	}
	return nil
}

func effectiveFailOn(module *bookcheck.Module, failOn string) string {
	if failOn != "" {
		return failOn
	}
	return module.Container().Config.Check.FailOn
}

func newTOCCommand(a *app) *cobra.Command {
	var (
		format string
		fromDB bool
	)
	cmd := &cobra.Command{
		Use:   "toc [dir]",
		Short: "Print the table of contents in nav_weight order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			module, err := a.module(ctx, func(cfg *bookcheck.Config) {
				if fromDB {
					cfg.Storage.Enabled = true
				}
			})
			if err != nil {
				return err
			}
			defer module.Close()

			toc, err := module.TOC(ctx, directoryArg(args), fromDB)
			if err != nil {
				return err
			}
			return renderer.TOC(a.stdout, toc)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read the indexed catalog instead of the files")
	return cmd
}

func newIndexCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index [dir]",
		Short: "Mirror the pages below dir into the SQLite catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.module(ctx, func(cfg *bookcheck.Config) {
				cfg.Storage.Enabled = true
			})
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.Index(ctx, directoryArg(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "indexed %d pages: %d created, %d updated, %d deleted, %d unchanged\n",
				result.Pages, len(result.Sync.Created), len(result.Sync.Updated), len(result.Sync.Deleted), result.Sync.Unchanged)
			return nil
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		format string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			module, err := a.module(ctx, func(cfg *bookcheck.Config) {
				cfg.Storage.Enabled = true
			})
			if err != nil {
				return err
			}
			defer module.Close()

			runs, err := module.History(ctx, limit)
			if err != nil {
				return err
			}
			return renderer.Runs(a.stdout, runs)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	var (
		format string
		failOn string
	)
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check pages whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			module, err := a.module(ctx, nil)
			if err != nil {
				return err
			}
			defer module.Close()

			dir := directoryArg(args)
			container := module.Container()
			opts := bookcheck.CheckOptions{FailOn: failOn}

			recheck := func(ctx context.Context) error {
				if module.CatalogEnabled() {
					if _, err := module.Index(ctx, dir); err != nil {
						return err
					}
				}
				err := checkOnce(ctx, a, module, renderer, dir, opts)
				if errors.Is(err, errCheckFailed) {
					return nil
				}
				return err
			}
			if err := recheck(ctx); err != nil {
				return err
			}

			watcher, err := watch.New(filepath.Join(container.Config.Content.Dir, dir),
				watch.WithDebounce(container.Config.Watch.Debounce),
				watch.WithFilter(container.MarkdownService().Matches),
				watch.WithLogger(logging.WatchLogger(container.LoggerProvider())),
			)
			if err != nil {
				return err
			}
			return watcher.Run(ctx, func(ctx context.Context, changes []watch.Change) error {
				for _, change := range changes {
					fmt.Fprintf(a.stdout, "%s %s\n", change.Op, change.Path)
				}
				return recheck(ctx)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "lowest severity reported as failing (error, warning, info, never)")
	return cmd
}

func newRulesCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules with their effective severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			module, err := a.module(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer module.Close()

			return renderer.Rules(a.stdout, module.Rules(), module.RuleSeverity, module.RuleEnabled)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no config
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(a.stdout, "bookcheck %s\n", buildVersion())
			return nil
		},
	}
}

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
