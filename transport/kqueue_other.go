//go:build !(darwin || dragonfly || freebsd || netbsd || openbsd)

package transport

import (
	"runtime"

	"github.com/goliatone/go-guestboot/core"
)

type KqueueProvider struct{}

func NewKqueueProvider() *KqueueProvider {
	return &KqueueProvider{}
}

func (*KqueueProvider) ID() string { return core.TransportKqueue }

func (*KqueueProvider) Load() error {
	return unsupported(core.TransportKqueue, runtime.GOOS)
}

func (*KqueueProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	return nil, unsupported(core.TransportKqueue, runtime.GOOS)
}
