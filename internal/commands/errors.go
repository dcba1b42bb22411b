package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached at the command boundary so hosts can key UI behavior
// off a stable identifier instead of parsing messages.
const (
	codeOperationRejected = "EDIT_OPERATION_REJECTED"
	codeOperationCanceled = "EDIT_OPERATION_CANCELED"
	codeOperationTimedOut = "EDIT_OPERATION_TIMED_OUT"
	codeOperationHalted   = "EDIT_OPERATION_HALTED"
	codeOperationFailed   = "EDIT_OPERATION_FAILED"
)

// wrapValidationError tags a message-validation failure. Already-wrapped
// errors pass through so inner operations keep their own category.
func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "edit operation rejected by validation").
		WithTextCode(codeOperationRejected)
}

// wrapContextError distinguishes a user-cancelled operation from one that
// ran out of its deadline; prompts held open past the ceiling surface here.
func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "edit operation cancelled").
			WithTextCode(codeOperationCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "edit operation deadline exceeded").
			WithTextCode(codeOperationTimedOut)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "edit operation halted").
			WithTextCode(codeOperationHalted)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "edit operation failed").
		WithTextCode(codeOperationFailed)
}
