//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package transport

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/goliatone/go-guestboot/core"
)

// KqueueProvider backs the kqueue transport with kqueue(2).
type KqueueProvider struct{}

func NewKqueueProvider() *KqueueProvider {
	return &KqueueProvider{}
}

func (*KqueueProvider) ID() string { return core.TransportKqueue }

func (*KqueueProvider) Load() error {
	fd, err := unix.Kqueue()
	if err != nil {
		return unavailable(core.TransportKqueue, fmt.Errorf("kqueue: %w", err), nil)
	}
	return unix.Close(fd)
}

func (*KqueueProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, unavailable(core.TransportKqueue, fmt.Errorf("kqueue: %w", err), nil)
	}
	unix.CloseOnExec(fd)
	return &kqueueLoop{fd: fd}, nil
}

type kqueueLoop struct {
	mu     sync.Mutex
	fd     int
	closed bool
}

// Check polls the queue with a zero timeout.
func (l *kqueueLoop) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLoopClosed
	}
	events := make([]unix.Kevent_t, 1)
	timeout := unix.Timespec{}
	_, err := unix.Kevent(l.fd, nil, events, &timeout)
	for errors.Is(err, unix.EINTR) {
		_, err = unix.Kevent(l.fd, nil, events, &timeout)
	}
	if err != nil {
		return fmt.Errorf("kevent: %w", err)
	}
	return nil
}

func (l *kqueueLoop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return unix.Close(l.fd)
}
