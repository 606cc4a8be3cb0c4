package guestboot

import (
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/transport"
)

func EpollProvider() core.NativeTransportProvider {
	return transport.NewEpollProvider()
}

func KqueueProvider() core.NativeTransportProvider {
	return transport.NewKqueueProvider()
}

func IOUringProvider(options transport.IOUringOptions) core.NativeTransportProvider {
	return transport.NewIOUringProvider(options)
}

func PortableProvider() core.NativeTransportProvider {
	return core.PortableProvider{}
}

// DefaultRegistry holds every built-in provider plus the io_uring factory.
func DefaultRegistry() *transport.Registry {
	return transport.NewDefaultRegistry()
}
