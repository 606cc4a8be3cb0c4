package transport

import (
	"errors"
	"runtime"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guestboot/core"
)

func nativeProviders() []core.NativeTransportProvider {
	return []core.NativeTransportProvider{
		NewEpollProvider(),
		NewKqueueProvider(),
		NewIOUringProvider(IOUringOptions{}),
	}
}

func nativeOn(id string, goos string) bool {
	switch id {
	case core.TransportEpoll:
		return goos == "linux"
	case core.TransportKqueue:
		switch goos {
		case "darwin", "dragonfly", "freebsd", "netbsd", "openbsd":
			return true
		}
	}
	return false
}

func TestNativeProviders_FailuresAreNativeUnavailable(t *testing.T) {
	for _, provider := range nativeProviders() {
		t.Run(provider.ID(), func(t *testing.T) {
			err := provider.Load()
			if err == nil {
				return
			}
			if !errors.Is(err, core.ErrNativeLibraryUnavailable) {
				t.Fatalf("expected native unavailable, got %v", err)
			}
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) || rich.TextCode != core.BootstrapErrorNativeLibraryUnavailable {
				t.Fatalf("expected go-errors envelope, got %T", err)
			}
		})
	}
}

func TestNativeProviders_UnsupportedPlatform(t *testing.T) {
	for _, provider := range nativeProviders() {
		if provider.ID() == core.TransportIOUring && runtime.GOOS == "linux" {
			continue
		}
		if nativeOn(provider.ID(), runtime.GOOS) {
			continue
		}
		if err := provider.Load(); !errors.Is(err, ErrUnsupportedPlatform) {
			t.Fatalf("%s: expected unsupported platform, got %v", provider.ID(), err)
		}
		if _, err := provider.OpenEventLoop(); !errors.Is(err, ErrUnsupportedPlatform) {
			t.Fatalf("%s: expected unsupported platform on open, got %v", provider.ID(), err)
		}
	}
}

func TestNativeProviders_LoopLifecycle(t *testing.T) {
	for _, provider := range nativeProviders() {
		if !nativeOn(provider.ID(), runtime.GOOS) {
			continue
		}
		t.Run(provider.ID(), func(t *testing.T) {
			if err := provider.Load(); err != nil {
				t.Fatalf("load: %v", err)
			}
			handle, err := provider.OpenEventLoop()
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			for i := 0; i < 3; i++ {
				if err := handle.Check(); err != nil {
					t.Fatalf("check %d: %v", i, err)
				}
			}
			if err := handle.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if err := handle.Close(); err != nil {
				t.Fatalf("second close: %v", err)
			}
			if err := handle.Check(); !errors.Is(err, ErrLoopClosed) {
				t.Fatalf("expected closed loop check to fail, got %v", err)
			}
		})
	}
}

func TestIOUringProvider_RejectsOldKernel(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("io_uring is linux only")
	}
	provider := NewIOUringProvider(IOUringOptions{MinKernel: KernelVersion{Major: 99, Minor: 0}})
	err := provider.Load()
	if !errors.Is(err, ErrKernelTooOld) || !errors.Is(err, core.ErrNativeLibraryUnavailable) {
		t.Fatalf("expected kernel too old, got %v", err)
	}
}
