package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	BootstrapErrorNativeLibraryUnavailable = "BOOTSTRAP_NATIVE_LIBRARY_UNAVAILABLE"
	BootstrapErrorNoUsableTransport        = "BOOTSTRAP_NO_USABLE_TRANSPORT"
	BootstrapErrorCoreInitializationFailed = "BOOTSTRAP_CORE_INITIALIZATION_FAILED"
	BootstrapErrorIsolationPolicyInvalid   = "BOOTSTRAP_ISOLATION_POLICY_INVALID"
	BootstrapErrorCatalogInvalid           = "BOOTSTRAP_CATALOG_INVALID"
	BootstrapErrorHookFailed               = "BOOTSTRAP_HOOK_FAILED"
	BootstrapErrorAlreadyStarted           = "BOOTSTRAP_ALREADY_STARTED"
	BootstrapErrorBadInput                 = "BOOTSTRAP_BAD_INPUT"
	BootstrapErrorInternal                 = "BOOTSTRAP_INTERNAL_ERROR"
)

const (
	StageConfig    = "config"
	StageCatalog   = "catalog"
	StageIsolation = "isolation"
	StageProbe     = "probe"
	StageSelect    = "select"
	StageHooks     = "hooks"
	StageCore      = "core"
)

var (
	ErrNativeLibraryUnavailable = errors.New("core: native library unavailable")
	ErrNoUsableTransport        = errors.New("core: no usable transport")
	ErrCoreInitializationFailed = errors.New("core: core initialization failed")
	ErrIsolationPolicyInvalid   = errors.New("core: isolation policy invalid")
	ErrCatalogInvalid           = errors.New("core: transport catalog invalid")
	ErrHookFailed               = errors.New("core: bootstrap hook failed")
	ErrAlreadyStarted           = errors.New("core: bootstrap already started")
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

// NativeUnavailable wraps a provider failure so callers can match it with
// errors.Is(err, ErrNativeLibraryUnavailable).
func NativeUnavailable(transportID string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrNativeLibraryUnavailable, transportID)
	}
	return fmt.Errorf("%w: %s: %w", ErrNativeLibraryUnavailable, transportID, cause)
}

// probeReason renders err for ProbeResult.Reason: the message of the first go-errors
// envelope in the chain, or err's text without the NativeUnavailable prefix.
func probeReason(transportID string, err error) string {
	if err == nil {
		return "unavailable"
	}
	prefix := fmt.Sprintf("%s: %s", ErrNativeLibraryUnavailable, transportID)
	msg := causeMessage(err)
	if msg == prefix {
		return "unavailable"
	}
	return strings.TrimPrefix(msg, prefix+": ")
}

// StageError builds the fatal envelope returned to the host. The message names
// the failing stage and the cause stays reachable through Unwrap.
func StageError(stage string, cause error) *goerrors.Error {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		stage = "bootstrap"
	}
	category, textCode := classifyBootstrapError(cause)
	message := fmt.Sprintf("bootstrap: %s stage failed", stage)
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, causeMessage(cause))
	}
	err := goerrors.New(message, category).
		WithCode(statusForCategory(category)).
		WithTextCode(textCode).
		WithSeverity(goerrors.SeverityFatal).
		WithMetadata(map[string]any{"stage": stage})
	err.Source = cause
	return err
}

func classifyBootstrapError(err error) (goerrors.Category, string) {
	switch {
	case errors.Is(err, ErrNoUsableTransport):
		return goerrors.CategoryInternal, BootstrapErrorNoUsableTransport
	case errors.Is(err, ErrCoreInitializationFailed):
		return goerrors.CategoryExternal, BootstrapErrorCoreInitializationFailed
	case errors.Is(err, ErrIsolationPolicyInvalid):
		return goerrors.CategoryValidation, BootstrapErrorIsolationPolicyInvalid
	case errors.Is(err, ErrCatalogInvalid):
		return goerrors.CategoryValidation, BootstrapErrorCatalogInvalid
	case errors.Is(err, ErrHookFailed):
		return goerrors.CategoryOperation, BootstrapErrorHookFailed
	case errors.Is(err, ErrAlreadyStarted):
		return goerrors.CategoryConflict, BootstrapErrorAlreadyStarted
	case errors.Is(err, ErrNativeLibraryUnavailable):
		return goerrors.CategoryExternal, BootstrapErrorNativeLibraryUnavailable
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.TextCode) != "" {
		return rich.Category, rich.TextCode
	}
	msg := strings.ToLower(strings.TrimSpace(fmt.Sprint(err)))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		return goerrors.CategoryBadInput, BootstrapErrorBadInput
	}
	return goerrors.CategoryInternal, BootstrapErrorInternal
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func causeMessage(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.Message) != "" {
		return rich.Message
	}
	return err.Error()
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.TextCode) != "" {
		return rich
	}
	return StageError(StageConfig, err)
}

// IsStage reports whether err is a fatal bootstrap error raised by stage.
func IsStage(err error, stage string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Metadata == nil {
		return false
	}
	got, _ := rich.Metadata["stage"].(string)
	return got == strings.TrimSpace(stage)
}
