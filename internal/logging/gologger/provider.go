package gologger

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mattn/go-isatty"

	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Namespace prefixes every logger handed out by the provider.
const Namespace = "bookcheck"

// Config mirrors runtimeconfig.LoggingConfig for the go-logger backend.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the listed modules. Short names such as
	// "lint" expand to "bookcheck.lint".
	Focus []string
	// Terminal reports whether log output is attached to a terminal.
	// Defaults to checking stderr.
	Terminal func() bool
}

// Provider hands out go-logger backed loggers keyed by bookcheck module.
type Provider struct {
	root   *glog.BaseLogger
	format string

	mu      sync.Mutex
	modules map[string]interfaces.Logger
}

// NewProvider builds the go-logger backend. An empty or "auto" format
// resolves to pretty output on a terminal and json everywhere else.
func NewProvider(cfg Config) (*Provider, error) {
	format, err := resolveFormat(cfg)
	if err != nil {
		return nil, err
	}

	options := []glog.Option{}
	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}
	switch format {
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := qualifyModules(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}

	return &Provider{
		root:    root,
		format:  format,
		modules: map[string]interfaces.Logger{},
	}, nil
}

// Format returns the output format chosen at construction.
func (p *Provider) Format() string {
	if p == nil {
		return ""
	}
	return p.format
}

// GetLogger returns the logger for a module, creating it on first use.
// Names outside the bookcheck namespace are moved into it.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	module := qualifyModule(name)
	if module == "" {
		return wrap(p.root)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if logger, ok := p.modules[module]; ok {
		return logger
	}
	logger := wrap(p.root.GetLogger(module))
	p.modules[module] = logger
	return logger
}

func resolveFormat(cfg Config) (string, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case "", "auto":
		terminal := cfg.Terminal
		if terminal == nil {
			terminal = stderrIsTerminal
		}
		if terminal() {
			return "pretty", nil
		}
		return "json", nil
	case "json", "console", "pretty":
		return format, nil
	default:
		return "", fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func qualifyModule(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case name == Namespace, strings.HasPrefix(name, Namespace+"."):
		return name
	default:
		return Namespace + "." + name
	}
}

func qualifyModules(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		module := qualifyModule(name)
		if module == "" || seen[module] {
			continue
		}
		seen[module] = true
		out = append(out, module)
	}
	return out
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields copies fields before handing them to go-logger so callers can
// reuse their maps.
func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return l
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return wrap(with.WithFields(copied))
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}
