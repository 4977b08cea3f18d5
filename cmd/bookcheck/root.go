package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-bookcheck"
	"github.com/goliatone/go-bookcheck/internal/di"
	"github.com/goliatone/go-bookcheck/internal/report"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitError  = 2

	envPrefix    = "BOOKCHECK"
	configName   = ".bookcheck"
	configEnvVar = "BOOKCHECK_CONFIG_FILE"
	keyDelimiter = "::"
)

// errCheckFailed marks a run whose findings crossed the fail-on threshold.
// The report has already been printed.
var errCheckFailed = errors.New("check failed")

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	noColor bool
	stdout  io.Writer
	stderr  io.Writer

	// moduleOptions are appended when building the module; tests inject
	// an in-memory filesystem here.
	moduleOptions []di.Option
}

func newApp(stdout, stderr io.Writer) *app {
	// rule IDs contain dots, so nested keys use "::" instead
	return &app{
		v:      viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter)),
		stdout: stdout,
		stderr: stderr,
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bookcheck",
		Short:         "Lint the chapter pages of a Hugo book",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	defaults := bookcheck.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .bookcheck.yaml, or "+configEnvVar+")")
	flags.String("content-dir", defaults.Content.Dir, "content root holding <book>/<chapter>/<section>/index.md pages")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-provider", "console", "logging provider (console, gologger)")
	flags.Bool("db", false, "enable the SQLite catalog")
	flags.String("dsn", defaults.Storage.DSN, "SQLite DSN for the catalog")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	a.bindFlag(flags, "content::dir", "content-dir")
	a.bindFlag(flags, "logging::level", "log-level")
	a.bindFlag(flags, "logging::provider", "log-provider")
	a.bindFlag(flags, "storage::enabled", "db")
	a.bindFlag(flags, "storage::dsn", "dsn")

	root.AddCommand(
		newCheckCommand(a),
		newTOCCommand(a),
		newIndexCommand(a),
		newHistoryCommand(a),
		newWatchCommand(a),
		newRulesCommand(a),
		newVersionCommand(a),
	)
	return root
}

func (a *app) bindFlag(flags *pflag.FlagSet, key, name string) {
	if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// initConfig resolves the config file: --config, then BOOKCHECK_CONFIG_FILE,
// then .bookcheck.yaml in the working directory. Env vars follow
// BOOKCHECK_<SECTION>_<KEY>.
func (a *app) initConfig(_ *cobra.Command) error {
	switch {
	case a.cfgFile != "":
		a.v.SetConfigFile(a.cfgFile)
	case os.Getenv(configEnvVar) != "":
		a.v.SetConfigFile(os.Getenv(configEnvVar))
	default:
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(configName)
	}

	registerEnvDefaults(a.v, bookcheck.DefaultConfig())
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if a.noColor {
		color.NoColor = true
	}
	return nil
}

// registerEnvDefaults makes scalar keys visible to AutomaticEnv, which only
// resolves keys viper already knows.
func registerEnvDefaults(v *viper.Viper, cfg bookcheck.Config) {
	defaults := map[string]any{
		"content::pattern":   cfg.Content.Pattern,
		"content::recursive": cfg.Content.Recursive,
		"content::baseurl":   cfg.Content.BaseURL,
		"rules::requirequiz": cfg.Rules.RequireQuiz,
		"rules::quizheading": cfg.Rules.QuizHeading,
		"snippets::enabled":  cfg.Snippets.Enabled,
		"check::workers":     cfg.Check.Workers,
		"check::timeout":     cfg.Check.Timeout,
		"check::failon":      cfg.Check.FailOn,
		"storage::debug":     cfg.Storage.Debug,
		"storage::cache":     cfg.Storage.Cache,
		"storage::cachettl":  cfg.Storage.CacheTTL,
		"watch::debounce":    cfg.Watch.Debounce,
		"logging::format":    cfg.Logging.Format,
		"logging::color":     cfg.Logging.Color,
		"logging::addsource": cfg.Logging.AddSource,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// config merges the defaults with the config file, env and flags.
func (a *app) config() (bookcheck.Config, error) {
	cfg := bookcheck.DefaultConfig()
	if err := a.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// module builds a module from the merged configuration. Callers close it.
func (a *app) module(ctx context.Context, mutate func(*bookcheck.Config)) (*bookcheck.Module, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	opts := append([]di.Option{di.WithLogWriter(a.stderr)}, a.moduleOptions...)
	return bookcheck.New(ctx, cfg, opts...)
}

func (a *app) renderer(format string) (*report.Renderer, error) {
	parsed, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return report.New(parsed, report.Options{Color: !a.noColor && !color.NoColor}), nil
}

// run executes the CLI and maps the outcome to an exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errCheckFailed) {
			return exitFailed
		}
		fmt.Fprintf(a.stderr, "bookcheck: %v\n", err)
		return exitError
	}
	return exitOK
}

func directoryArg(args []string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "."
	}
	return args[0]
}
