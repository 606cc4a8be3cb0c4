//go:build linux

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/goliatone/go-guestboot/core"
)

// EpollProvider backs the epoll transport with epoll(7).
type EpollProvider struct{}

func NewEpollProvider() *EpollProvider {
	return &EpollProvider{}
}

func (*EpollProvider) ID() string { return core.TransportEpoll }

func (*EpollProvider) Load() error {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return unavailable(core.TransportEpoll, fmt.Errorf("epoll_create1: %w", err), nil)
	}
	return unix.Close(fd)
}

func (*EpollProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, unavailable(core.TransportEpoll, fmt.Errorf("epoll_create1: %w", err), nil)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, unavailable(core.TransportEpoll, fmt.Errorf("eventfd: %w", err), nil)
	}
	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &event); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, unavailable(core.TransportEpoll, fmt.Errorf("epoll_ctl: %w", err), nil)
	}
	return &epollLoop{epfd: epfd, wakefd: wakefd}, nil
}

type epollLoop struct {
	mu     sync.Mutex
	epfd   int
	wakefd int
	closed bool
}

// Check signals the wake eventfd and expects epoll to report it without
// blocking.
func (l *epollLoop) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLoopClosed
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(l.wakefd, buf[:]); err != nil {
		return fmt.Errorf("eventfd write: %w", err)
	}
	events := make([]unix.EpollEvent, 1)
	n, err := unix.EpollWait(l.epfd, events, 0)
	for errors.Is(err, unix.EINTR) {
		n, err = unix.EpollWait(l.epfd, events, 0)
	}
	if err != nil {
		return fmt.Errorf("epoll_wait: %w", err)
	}
	if n != 1 || events[0].Fd != int32(l.wakefd) {
		return fmt.Errorf("epoll_wait: expected wake event, got %d events", n)
	}
	if _, err := unix.Read(l.wakefd, buf[:]); err != nil {
		return fmt.Errorf("eventfd read: %w", err)
	}
	return nil
}

func (l *epollLoop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return errors.Join(unix.Close(l.wakefd), unix.Close(l.epfd))
}
