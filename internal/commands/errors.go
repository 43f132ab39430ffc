package commands

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
	commandGenerationFailed = "COMMAND_GENERATION_FAILED"
)

// wrapCommand tags an unwrapped error with the command category. Errors that
// already carry go-errors metadata pass through untouched.
func wrapCommand(err error, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return wrapCommand(err, "command execution cancelled", commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapCommand(err, "command execution deadline exceeded", commandContextTimeout)
	default:
		return wrapCommand(err, "command context error", commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	return wrapCommand(err, "command execution failed", commandExecuteFailed)
}

// GenerationError tags a build that completed with failed documents so
// dispatcher and cron consumers can tell author errors from infrastructure
// failures.
func GenerationError(failed int) error {
	err := fmt.Errorf("generation completed with %d failed document(s)", failed)
	return wrapCommand(err, "command generation failed", commandGenerationFailed)
}
