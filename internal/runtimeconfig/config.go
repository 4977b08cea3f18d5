package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

var ErrContentDirRequired = errors.New("bookcheck config: content directory is required")
var ErrContentPatternInvalid = errors.New("bookcheck config: content pattern is invalid")
var ErrStorageDSNRequired = errors.New("bookcheck config: storage dsn is required when storage is enabled")
var ErrCheckWorkersInvalid = errors.New("bookcheck config: check workers must be zero or positive")
var ErrCheckFailOnInvalid = errors.New("bookcheck config: fail-on severity is invalid")
var ErrRuleSeverityInvalid = errors.New("bookcheck config: rule severity override is invalid")
var ErrWatchDebounceInvalid = errors.New("bookcheck config: watch debounce must be positive")
var ErrLoggingProviderRequired = errors.New("bookcheck config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("bookcheck config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("bookcheck config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("bookcheck config: logging format is invalid")

// Config is the full runtime configuration. Field names double as viper keys
// (case-insensitive), e.g. content.dir or rules.disabled.
type Config struct {
	Content    ContentConfig
	Markdown   MarkdownConfig
	Rules      RulesConfig
	Snippets   SnippetConfig
	Shortcodes ShortcodeConfig
	Check      CheckConfig
	Storage    StorageConfig
	Watch      WatchConfig
	Logging    LoggingConfig
}

// ContentConfig controls page discovery.
type ContentConfig struct {
	Dir       string
	Pattern   string
	Recursive bool
	// BaseURL, when set, must prefix every canonical URL.
	BaseURL string
}

// MarkdownConfig selects goldmark extensions used while scanning bodies.
type MarkdownConfig struct {
	Extensions []string
}

// RulesConfig tunes the rule set.
type RulesConfig struct {
	Disabled        []string
	Severity        map[string]string
	RequiredKeys    []string
	RecommendedKeys []string
	// QuizHeading is the heading text expected before the quiz block.
	QuizHeading string
	// NavWeightScheme enables the chapter*1000+section*100 check.
	NavWeightScheme bool
	// RequireQuiz turns a missing quiz into a finding.
	RequireQuiz bool
	// PageTypes lists accepted values of the "type" key.
	PageTypes []string
}

// SnippetConfig controls fenced code checks.
type SnippetConfig struct {
	Enabled bool
	// Languages restricts syntax checks to these fence labels. Empty means
	// every supported label.
	Languages []string
}

// CheckConfig tunes a check run.
// ShortcodeConfig lists site-specific shortcodes on top of the built-in
// catalogue. Their parameters are not checked.
type ShortcodeConfig struct {
	Known []string
}

type CheckConfig struct {
	Workers int
	Timeout time.Duration
	FailOn  string
}

// StorageConfig configures the optional SQLite catalog.
type StorageConfig struct {
	Enabled bool
	DSN     string
	Debug   bool
	// Cache fronts catalog lookups with go-repository-cache.
	Cache    bool
	CacheTTL time.Duration
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration
}

// LoggingConfig selects the logging provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
	Color     bool
}

// DefaultConfig returns defaults matching the book repository layout.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "index.md",
			Recursive: true,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "tasklist"},
		},
		Rules: RulesConfig{
			Disabled:        []string{},
			Severity:        map[string]string{},
			RequiredKeys:    []string{"title", "canonical", "type", "license"},
			RecommendedKeys: []string{"description", "linkTitle", "categories", "tags", "date", "nav_weight"},
			QuizHeading:     "Quiz Time!",
			NavWeightScheme: true,
			RequireQuiz:     true,
			PageTypes:       []string{"docs"},
		},
		Snippets: SnippetConfig{
			Enabled: true,
		},
		Shortcodes: ShortcodeConfig{
			Known: []string{},
		},
		Check: CheckConfig{
			Workers: 0,
			Timeout: 2 * time.Minute,
			FailOn:  "error",
		},
		Storage: StorageConfig{
			Enabled:  false,
			DSN:      "file:bookcheck.db?cache=shared&_fk=1",
			Cache:    true,
			CacheTTL: time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if pattern := strings.TrimSpace(cfg.Content.Pattern); pattern != "" && strings.ContainsAny(pattern, "\\") {
		return fmt.Errorf("%w: %s", ErrContentPatternInvalid, pattern)
	}
	if cfg.Storage.Enabled && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Check.Workers < 0 {
		return ErrCheckWorkersInvalid
	}
	if failOn := strings.TrimSpace(cfg.Check.FailOn); failOn != "" && !strings.EqualFold(failOn, "never") {
		if _, err := interfaces.ParseSeverity(failOn); err != nil {
			return fmt.Errorf("%w: %s", ErrCheckFailOnInvalid, failOn)
		}
	}
	for rule, severity := range cfg.Rules.Severity {
		if strings.EqualFold(strings.TrimSpace(severity), "off") {
			continue
		}
		if _, err := interfaces.ParseSeverity(severity); err != nil {
			return fmt.Errorf("%w: %s=%s", ErrRuleSeverityInvalid, rule, severity)
		}
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// SeverityOverrides parses Rules.Severity. Rules mapped to "off" are
// returned in the disabled set instead.
func (cfg Config) SeverityOverrides() (map[string]interfaces.Severity, map[string]bool) {
	overrides := make(map[string]interfaces.Severity, len(cfg.Rules.Severity))
	disabled := make(map[string]bool, len(cfg.Rules.Disabled))
	for _, rule := range cfg.Rules.Disabled {
		if trimmed := strings.TrimSpace(rule); trimmed != "" {
			disabled[trimmed] = true
		}
	}
	for rule, value := range cfg.Rules.Severity {
		rule = strings.TrimSpace(rule)
		if strings.EqualFold(strings.TrimSpace(value), "off") {
			disabled[rule] = true
			continue
		}
		if severity, err := interfaces.ParseSeverity(value); err == nil {
			overrides[rule] = severity
		}
	}
	return overrides, disabled
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "auto", "json", "console", "pretty":
		return true
	default:
		return false
	}
}
