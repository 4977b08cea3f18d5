package checkcmd

import (
	"errors"

	"github.com/goliatone/go-bookcheck/internal/commands"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterCheckCommands.
type HandlerSet struct {
	Check *CheckDirectoryHandler
	// Index is nil when no indexer was supplied.
	Index *IndexDirectoryHandler
}

// Dependencies are the services the handlers drive. Recorder and Indexer
// stay nil when the catalog is disabled.
type Dependencies struct {
	Loader   interfaces.PageLoader
	Linter   Linter
	Recorder RunRecorder
	Indexer  Indexer
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	checkHandlerOpts []commands.HandlerOption[CheckDirectoryCommand]
	indexHandlerOpts []commands.HandlerOption[IndexDirectoryCommand]
}

// WithCheckHandlerOptions forwards options to the CheckDirectoryHandler constructor.
func WithCheckHandlerOptions(opts ...commands.HandlerOption[CheckDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.checkHandlerOpts = append(cfg.checkHandlerOpts, opts...)
	}
}

// WithIndexHandlerOptions forwards options to the IndexDirectoryHandler constructor.
func WithIndexHandlerOptions(opts ...commands.HandlerOption[IndexDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.indexHandlerOpts = append(cfg.indexHandlerOpts, opts...)
	}
}

// RegisterCheckCommands builds the handlers and registers them with reg when
// it is not nil.
func RegisterCheckCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Loader == nil {
		return nil, errors.New("check command registration: loader is nil")
	}
	if deps.Linter == nil {
		return nil, errors.New("check command registration: linter is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "check")
	set := &HandlerSet{
		Check: NewCheckDirectoryHandler(deps.Loader, deps.Linter, deps.Recorder, logger, cfg.checkHandlerOpts...),
	}
	if deps.Indexer != nil {
		set.Index = NewIndexDirectoryHandler(deps.Loader, deps.Indexer, logger, cfg.indexHandlerOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Check); err != nil {
			return nil, err
		}
		if set.Index != nil {
			if err := reg.RegisterCommand(set.Index); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
