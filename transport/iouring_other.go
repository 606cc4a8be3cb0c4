//go:build !linux

package transport

import (
	"runtime"

	"github.com/goliatone/go-guestboot/core"
)

type IOUringProvider struct {
	options IOUringOptions
}

func NewIOUringProvider(options IOUringOptions) *IOUringProvider {
	return &IOUringProvider{options: options.withDefaults()}
}

func (*IOUringProvider) ID() string { return core.TransportIOUring }

func (*IOUringProvider) Load() error {
	return unsupported(core.TransportIOUring, runtime.GOOS)
}

func (*IOUringProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	return nil, unsupported(core.TransportIOUring, runtime.GOOS)
}
