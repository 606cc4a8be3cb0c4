package transport

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guestboot/core"
)

var (
	ErrUnsupportedPlatform = errors.New("transport: not supported on this platform")
	ErrKernelTooOld        = errors.New("transport: kernel too old")
	ErrLoopClosed          = errors.New("transport: event loop closed")
)

// unavailable builds the error a provider returns when its facility cannot
// be used. The message is the cause alone; the chain still reaches
// core.ErrNativeLibraryUnavailable and cause.
func unavailable(transportID string, cause error, metadata map[string]any) error {
	wrapped := core.NativeUnavailable(transportID, cause)
	err := goerrors.New(cause.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(core.BootstrapErrorNativeLibraryUnavailable)
	fields := map[string]any{"transport": transportID}
	for key, value := range metadata {
		fields[key] = value
	}
	err.WithMetadata(fields)
	err.Source = wrapped
	return err
}

func unsupported(transportID string, goos string) error {
	return unavailable(transportID, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos), map[string]any{"goos": goos})
}
