//go:build !linux

package transport

import (
	"runtime"

	"github.com/goliatone/go-guestboot/core"
)

type EpollProvider struct{}

func NewEpollProvider() *EpollProvider {
	return &EpollProvider{}
}

func (*EpollProvider) ID() string { return core.TransportEpoll }

func (*EpollProvider) Load() error {
	return unsupported(core.TransportEpoll, runtime.GOOS)
}

func (*EpollProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	return nil, unsupported(core.TransportEpoll, runtime.GOOS)
}
