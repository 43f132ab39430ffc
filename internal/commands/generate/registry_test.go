package generatecmd

import (
	"errors"
	"testing"

	"github.com/goliatone/go-compage/internal/commands"
	"github.com/goliatone/go-compage/internal/commands/fixtures"
	"github.com/goliatone/go-compage/internal/logging"
	command "github.com/goliatone/go-command"
)

func TestRegisterGenerateCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	service := &stubGeneratorService{}

	set, err := RegisterGenerateCommands(reg, service, nil)
	if err != nil {
		t.Fatalf("register generate commands: %v", err)
	}
	if set == nil {
		t.Fatal("expected handler set returned")
	}
	if set.Build == nil || set.Clean == nil {
		t.Fatalf("expected build and clean handlers, got %#v", set)
	}
	if len(reg.Handlers) != 2 {
		t.Fatalf("expected two handlers registered, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.Build {
		t.Fatalf("expected build handler registered first, got %#v", reg.Handlers[0])
	}
	if reg.Handlers[1] != set.Clean {
		t.Fatalf("expected clean handler registered second, got %#v", reg.Handlers[1])
	}
}

func TestRegisterGenerateCommandsHandlerOptionsApplied(t *testing.T) {
	service := &stubGeneratorService{}
	buildApplied := false
	cleanApplied := false

	_, err := RegisterGenerateCommands(nil, service, nil,
		WithBuildHandlerOptions(func(h *commands.Handler[BuildSiteCommand]) {
			buildApplied = true
		}),
		WithCleanHandlerOptions(func(h *commands.Handler[CleanSiteCommand]) {
			cleanApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register generate commands: %v", err)
	}
	if !buildApplied {
		t.Fatal("expected build handler options applied")
	}
	if !cleanApplied {
		t.Fatal("expected clean handler options applied")
	}
}

func TestRegisterGenerateCommandsNilRegistrySkipsRegistration(t *testing.T) {
	service := &stubGeneratorService{}
	set, err := RegisterGenerateCommands(nil, service, nil)
	if err != nil {
		t.Fatalf("register generate commands: %v", err)
	}
	if set == nil || set.Build == nil || set.Clean == nil {
		t.Fatalf("expected handlers built when registry nil, got %#v", set)
	}
}

func TestRegisterGenerateCommandsNilServiceError(t *testing.T) {
	if _, err := RegisterGenerateCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error when service nil")
	}
}

func TestRegisterRebuildCronRegistersHandler(t *testing.T) {
	service := &stubGeneratorService{}
	handler := NewBuildSiteHandler(service, logging.NoOp())
	recorder := fixtures.NewCronRecorder()

	cfg := command.HandlerConfig{Expression: "@daily"}
	msg := BuildSiteCommand{Force: true}

	if err := RegisterRebuildCron(recorder.Registrar(), handler, cfg, msg); err != nil {
		t.Fatalf("register rebuild cron: %v", err)
	}

	if len(recorder.Registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(recorder.Registrations))
	}
	reg := recorder.Registrations[0]
	if reg.Config.Expression != cfg.Expression {
		t.Fatalf("expected cron expression %q, got %q", cfg.Expression, reg.Config.Expression)
	}
	if reg.Handler == nil {
		t.Fatal("expected cron handler function recorded")
	}
	if err := reg.Handler(); err != nil {
		t.Fatalf("executing cron handler: %v", err)
	}
	if len(service.buildCalls) != 1 {
		t.Fatalf("expected a build call from the cron handler, got %d", len(service.buildCalls))
	}
	if !service.buildCalls[0].Force {
		t.Fatal("expected the cron message forwarded to the service")
	}
}

func TestRegisterRebuildCronPropagatesRegistrarError(t *testing.T) {
	service := &stubGeneratorService{}
	handler := NewBuildSiteHandler(service, logging.NoOp())
	recorder := fixtures.NewCronRecorder()
	recorder.Fail(errors.New("cron backend unavailable"))

	err := RegisterRebuildCron(recorder.Registrar(), handler, command.HandlerConfig{Expression: "@hourly"}, BuildSiteCommand{})
	if err == nil {
		t.Fatal("expected registrar error to propagate")
	}
	if len(recorder.Registrations) != 0 {
		t.Fatalf("expected no registrations on failure, got %d", len(recorder.Registrations))
	}
}

func TestRegisterRebuildCronNoOpWhenRegistrarNil(t *testing.T) {
	service := &stubGeneratorService{}
	handler := NewBuildSiteHandler(service, logging.NoOp())
	if err := RegisterRebuildCron(nil, handler, command.HandlerConfig{}, BuildSiteCommand{}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	if len(service.buildCalls) != 0 {
		t.Fatalf("expected no build calls when registrar nil, got %d", len(service.buildCalls))
	}
}

func TestRegisterRebuildCronNoOpWhenHandlerNil(t *testing.T) {
	recorder := fixtures.NewCronRecorder()
	if err := RegisterRebuildCron(recorder.Registrar(), nil, command.HandlerConfig{}, BuildSiteCommand{}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if len(recorder.Registrations) != 0 {
		t.Fatalf("expected no registrations when handler nil, got %d", len(recorder.Registrations))
	}
}
