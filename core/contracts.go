package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// NativeTransportProvider is implemented once per platform transport.
type NativeTransportProvider interface {
	ID() string
	// Load makes sure the backing native facility is present: the library, the
	// syscall, or the minimum kernel version.
	Load() error
	// OpenEventLoop acquires a native event loop instance. The caller must
	// close the handle.
	OpenEventLoop() (EventLoopHandle, error)
}

type EventLoopHandle interface {
	// Check performs a trivial non-blocking operation on the loop.
	Check() error
	Close() error
}

type Registry interface {
	Register(provider NativeTransportProvider) error
	Get(id string) (NativeTransportProvider, bool)
	List() []NativeTransportProvider
}

// RunningCore is the handle returned by the external core once started.
type RunningCore interface {
	Shutdown(ctx context.Context) error
}

// CoreFactory builds and starts the external core with the selected transport.
type CoreFactory func(ctx context.Context, transport SelectedTransport) (RunningCore, error)

type BootstrapHook interface {
	Name() string
	OnEvent(ctx context.Context, event BootstrapEvent) error
}

type BootstrapEvent struct {
	RunID     string
	Transport SelectedTransport
	Report    BootstrapReport
	Core      RunningCore
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
