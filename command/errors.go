package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guestboot/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.BootstrapErrorInternal)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.BootstrapErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func commandPolicyError(err error) error {
	if err == nil {
		return nil
	}
	rich := goerrors.New("command: isolation policy check failed", goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.BootstrapErrorIsolationPolicyInvalid)
	rich.Source = err
	return rich
}
