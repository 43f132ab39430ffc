package generatecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-compage/internal/commands"
	"github.com/goliatone/go-compage/internal/generator"
	"github.com/goliatone/go-compage/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command
// registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the generation command handlers produced by
// RegisterGenerateCommands.
type HandlerSet struct {
	Build *BuildSiteHandler
	Clean *CleanSiteHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	buildHandlerOpts []commands.HandlerOption[BuildSiteCommand]
	cleanHandlerOpts []commands.HandlerOption[CleanSiteCommand]
}

// WithBuildHandlerOptions forwards options to the BuildSiteHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildHandlerOpts = append(cfg.buildHandlerOpts, opts...)
	}
}

// WithCleanHandlerOptions forwards options to the CleanSiteHandler constructor.
func WithCleanHandlerOptions(opts ...commands.HandlerOption[CleanSiteCommand]) Option {
	return func(cfg *options) {
		cfg.cleanHandlerOpts = append(cfg.cleanHandlerOpts, opts...)
	}
}

// RegisterGenerateCommands builds the generation command handlers and
// registers them with the provided registry. The returned HandlerSet lets
// callers wire additional integrations (dispatcher, cron) as needed.
func RegisterGenerateCommands(reg CommandRegistry, service generator.Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("generate command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "generate")

	buildHandler := NewBuildSiteHandler(service, logger, cfg.buildHandlerOpts...)
	cleanHandler := NewCleanSiteHandler(service, logger, cfg.cleanHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(buildHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(cleanHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Build: buildHandler,
		Clean: cleanHandler,
	}, nil
}

// RegisterRebuildCron wires the provided build handler into a cron
// registrar, typically for scheduled full rebuilds. The handler executes
// with a background context.
func RegisterRebuildCron(reg CronRegistrar, handler *BuildSiteHandler, cfg command.HandlerConfig, msg BuildSiteCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
