// Package lint runs the chapter page rule set. Page rules run concurrently,
// site rules run once over the whole page set afterwards.
package lint

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/internal/shortcode"
	"github.com/goliatone/go-bookcheck/internal/snippet"
	"github.com/goliatone/go-bookcheck/internal/validation"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Config tunes the rule set.
type Config struct {
	RequiredKeys    []string
	RecommendedKeys []string
	QuizHeading     string
	NavWeightScheme bool
	RequireQuiz     bool
	PageTypes       []string
	BaseURL         string

	Snippets         bool
	SnippetLanguages []string

	// Shortcodes names site-specific shortcodes accepted with any parameters.
	Shortcodes []string

	Severity map[string]interfaces.Severity
	Disabled map[string]bool

	// Workers bounds concurrent page checks; zero means GOMAXPROCS.
	Workers int
}

// Option customises the checker.
type Option func(*Checker)

// WithLogger sets the checker logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides how run IDs are generated.
func WithIDGenerator(next func() string) Option {
	return func(c *Checker) {
		if next != nil {
			c.newID = next
		}
	}
}

// Checker evaluates rules over chapter pages.
type Checker struct {
	cfg       Config
	validator *validation.Validator
	snippets  *snippet.Checker
	registry  *shortcode.Registry
	params    *shortcode.Validator
	logger    interfaces.Logger
	now       func() time.Time
	newID     func() string
}

// NewChecker compiles the front matter schema and prepares the snippet checker.
func NewChecker(cfg Config, opts ...Option) (*Checker, error) {
	validator, err := validation.NewFrontMatterValidator(validation.SchemaOptions{PageTypes: cfg.PageTypes})
	if err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}

	shortcodes, err := shortcode.NewBookRegistry(cfg.Shortcodes...)
	if err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}

	c := &Checker{
		cfg:       cfg,
		validator: validator,
		registry:  shortcodes,
		params:    shortcode.NewValidator(),
		logger:    logging.NoOp(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if cfg.Snippets {
		c.snippets = snippet.NewChecker(cfg.SnippetLanguages)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Enabled reports whether rule runs under the current configuration.
func (c *Checker) Enabled(rule string) bool {
	return !c.cfg.Disabled[rule]
}

// Severity returns the effective severity of rule.
func (c *Checker) Severity(rule string) interfaces.Severity {
	if severity, ok := c.cfg.Severity[rule]; ok {
		return severity
	}
	if info, ok := LookupRule(rule); ok {
		return info.Severity
	}
	return interfaces.SeverityError
}

// Check runs every enabled rule over pages and returns a sorted report.
func (c *Checker) Check(ctx context.Context, pages []*interfaces.ChapterPage) (*Report, error) {
	started := c.now()
	report := &Report{
		RunID:     c.newID(),
		StartedAt: started.UTC(),
		Pages:     len(pages),
	}

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perPage := make([][]interfaces.Issue, len(pages))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, page := range pages {
		if page == nil {
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			perPage[i] = c.CheckPage(page)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("lint check: %w", err)
	}

	for _, issues := range perPage {
		report.Issues = append(report.Issues, issues...)
	}
	report.Issues = append(report.Issues, c.checkSite(pages)...)
	report.Sort()
	report.Duration = c.now().Sub(started)

	counts := report.Counts()
	c.logger.Info("lint.check.completed",
		"run_id", report.RunID,
		"pages", report.Pages,
		"errors", counts.Errors,
		"warnings", counts.Warnings,
		"infos", counts.Infos,
		"duration", report.Duration,
	)
	return report, nil
}

// CheckPage runs the page scoped rules on a single page.
func (c *Checker) CheckPage(page *interfaces.ChapterPage) []interfaces.Issue {
	if page == nil {
		return nil
	}
	run := c.newPageRun(page)
	for _, rule := range pageRules {
		rule(c, run)
	}
	if len(run.issues) > 0 {
		c.logger.Debug("lint.page.checked", "page_path", page.Path, "issues", len(run.issues))
	}
	return run.issues
}

// pageRun collects the findings for one page and applies suppressions.
type pageRun struct {
	checker *Checker
	page    *interfaces.ChapterPage
	ignore  map[string]bool
	issues  []interfaces.Issue
}

func (c *Checker) newPageRun(page *interfaces.ChapterPage) *pageRun {
	return &pageRun{
		checker: c,
		page:    page,
		ignore:  ignoredRules(page),
	}
}

func ignoredRules(page *interfaces.ChapterPage) map[string]bool {
	ignore := map[string]bool{}
	for _, rule := range page.FrontMatter.LintIgnore {
		ignore[strings.TrimSpace(rule)] = true
	}
	return ignore
}

func (r *pageRun) active(rule string) bool {
	return r.checker.Enabled(rule) && !r.ignore[rule]
}

func (r *pageRun) report(rule string, line int, format string, args ...any) {
	if !r.active(rule) {
		return
	}
	r.issues = append(r.issues, interfaces.Issue{
		Rule:     rule,
		Severity: r.checker.Severity(rule),
		Path:     r.page.Path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}
