package di

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	"github.com/goliatone/go-bookcheck/internal/commands"
	checkcmd "github.com/goliatone/go-bookcheck/internal/commands/check"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/internal/logging/console"
	"github.com/goliatone/go-bookcheck/internal/logging/gologger"
	"github.com/goliatone/go-bookcheck/internal/markdown"
	"github.com/goliatone/go-bookcheck/internal/runtimeconfig"
	"github.com/goliatone/go-bookcheck/internal/storage"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Container wires module dependencies. The catalog and its storage are only
// built when Storage.Enabled is set or a database is injected.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	filesystem     fs.FS

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	pageRepo catalog.PageRepository
	runRepo  catalog.RunRepository

	markdownSvc *markdown.Service
	checker     *lint.Checker
	catalogSvc  *catalog.Service
	handlers    *checkcmd.HandlerSet
	registry    checkcmd.CommandRegistry
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter redirects console logging, which defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithFS reads pages from filesystem instead of Content.Dir on disk.
func WithFS(filesystem fs.FS) Option {
	return func(c *Container) {
		c.filesystem = filesystem
	}
}

// WithBunDB injects an open database for the catalog. The container does not
// close injected databases.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used for catalog lookups.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCatalogRepositories swaps the catalog repositories, typically for the
// in-memory implementations.
func WithCatalogRepositories(pages catalog.PageRepository, runs catalog.RunRepository) Option {
	return func(c *Container) {
		c.pageRepo = pages
		c.runRepo = runs
	}
}

// WithCommandRegistry registers the check handlers with reg, e.g. a
// go-command dispatcher adapter.
func WithCommandRegistry(reg checkcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service it enables.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Storage.CacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	if err := c.configureChecker(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureCatalog()
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		options := console.Options{Writer: c.logWriter, Color: logCfg.Color}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			options.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(options)
	}
	return nil
}

func (c *Container) configureMarkdown() error {
	content := c.Config.Content
	opts := []markdown.ServiceOption{
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	}
	if c.filesystem != nil {
		opts = append(opts, markdown.WithFS(c.filesystem))
	}
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  content.Dir,
		Pattern:   content.Pattern,
		Recursive: content.Recursive,
		Parser:    interfaces.ParseOptions{Extensions: c.Config.Markdown.Extensions},
	}, opts...)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureChecker() error {
	checker, err := lint.NewChecker(LintConfig(c.Config), lint.WithLogger(logging.LintLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.checker = checker
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil || c.pageRepo != nil || !c.Config.Storage.Enabled {
		return nil
	}
	db, err := storage.Open(ctx, storage.Config{
		DSN:   c.Config.Storage.DSN,
		Debug: c.Config.Storage.Debug,
	},
		storage.WithLogger(logging.CatalogLogger(c.loggerProvider)),
		storage.WithModels(catalog.Models()...),
	)
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Storage.Cache || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.pageRepo != nil && c.runRepo != nil {
		return
	}
	if c.bunDB == nil {
		return
	}
	if c.cacheService != nil && c.keySerializer != nil {
		c.pageRepo = catalog.NewBunPageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.runRepo = catalog.NewBunRunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.pageRepo = catalog.NewBunPageRepository(c.bunDB)
	c.runRepo = catalog.NewBunRunRepository(c.bunDB)
}

func (c *Container) configureCatalog() {
	if c.pageRepo == nil || c.runRepo == nil {
		return
	}
	c.catalogSvc = catalog.NewService(c.pageRepo, c.runRepo,
		catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)),
	)
}

func (c *Container) configureCommands() error {
	deps := checkcmd.Dependencies{
		Loader: c.markdownSvc,
		Linter: c.checker,
	}
	// a nil *catalog.Service must not reach the interface fields
	if c.catalogSvc != nil {
		deps.Recorder = c.catalogSvc
		deps.Indexer = c.catalogSvc
	}

	var opts []checkcmd.Option
	if timeout := c.Config.Check.Timeout; timeout > 0 {
		opts = append(opts,
			checkcmd.WithCheckHandlerOptions(commands.WithTimeout[checkcmd.CheckDirectoryCommand](timeout)),
			checkcmd.WithIndexHandlerOptions(commands.WithTimeout[checkcmd.IndexDirectoryCommand](timeout)),
		)
	}

	set, err := checkcmd.RegisterCheckCommands(c.registry, deps, c.loggerProvider, opts...)
	if err != nil {
		return err
	}
	c.handlers = set
	return nil
}

// LintConfig maps the runtime configuration onto the rule set options.
func LintConfig(cfg runtimeconfig.Config) lint.Config {
	severity, disabled := cfg.SeverityOverrides()
	return lint.Config{
		RequiredKeys:     cfg.Rules.RequiredKeys,
		RecommendedKeys:  cfg.Rules.RecommendedKeys,
		QuizHeading:      cfg.Rules.QuizHeading,
		NavWeightScheme:  cfg.Rules.NavWeightScheme,
		RequireQuiz:      cfg.Rules.RequireQuiz,
		PageTypes:        cfg.Rules.PageTypes,
		BaseURL:          cfg.Content.BaseURL,
		Snippets:         cfg.Snippets.Enabled,
		SnippetLanguages: cfg.Snippets.Languages,
		Shortcodes:       cfg.Shortcodes.Known,
		Severity:         severity,
		Disabled:         disabled,
		Workers:          cfg.Check.Workers,
	}
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	c.ownsDB = false
	if err != nil {
		return fmt.Errorf("close catalog database: %w", err)
	}
	return nil
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// MarkdownService returns the page loader.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// Checker returns the rule engine.
func (c *Container) Checker() *lint.Checker {
	return c.checker
}

// CatalogService returns the catalog, nil when storage is disabled.
func (c *Container) CatalogService() *catalog.Service {
	return c.catalogSvc
}

// CommandHandlers returns the check and index handlers.
func (c *Container) CommandHandlers() *checkcmd.HandlerSet {
	return c.handlers
}
