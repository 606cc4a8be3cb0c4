//go:build linux

package transport

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/goliatone/go-guestboot/core"
)

// ioUringParams mirrors struct io_uring_params.
type ioUringParams struct {
	sqEntries    uint32
	cqEntries    uint32
	flags        uint32
	sqThreadCPU  uint32
	sqThreadIdle uint32
	features     uint32
	wqFd         uint32
	resv         [3]uint32
	sqOff        [10]uint32
	cqOff        [10]uint32
}

// IOUringProvider backs the io_uring transport with io_uring_setup(2).
type IOUringProvider struct {
	options IOUringOptions
}

func NewIOUringProvider(options IOUringOptions) *IOUringProvider {
	return &IOUringProvider{options: options.withDefaults()}
}

func (*IOUringProvider) ID() string { return core.TransportIOUring }

// Load checks the kernel release, then sets up and tears down a ring so
// seccomp filters and disabled sysctls surface here.
func (p *IOUringProvider) Load() error {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return unavailable(core.TransportIOUring, fmt.Errorf("uname: %w", err), nil)
	}
	release := unix.ByteSliceToString(uts.Release[:])
	version, err := ParseKernelVersion(release)
	if err != nil {
		return unavailable(core.TransportIOUring, err, map[string]any{"kernel": release})
	}
	if !version.AtLeast(p.options.MinKernel) {
		return unavailable(core.TransportIOUring,
			fmt.Errorf("%w: %s, need %s", ErrKernelTooOld, version, p.options.MinKernel),
			map[string]any{"kernel": release})
	}

	fd, _, err := setupRing(p.options.Entries)
	if err != nil {
		return unavailable(core.TransportIOUring, err, map[string]any{"kernel": release})
	}
	return unix.Close(fd)
}

func (p *IOUringProvider) OpenEventLoop() (core.EventLoopHandle, error) {
	fd, params, err := setupRing(p.options.Entries)
	if err != nil {
		return nil, unavailable(core.TransportIOUring, err, nil)
	}
	return &ioUringLoop{fd: fd, features: params.features}, nil
}

func setupRing(entries uint32) (int, ioUringParams, error) {
	var params ioUringParams
	r1, _, errno := unix.Syscall(unix.SYS_IO_URING_SETUP, uintptr(entries), uintptr(unsafe.Pointer(&params)), 0)
	if errno != 0 {
		return -1, params, fmt.Errorf("io_uring_setup: %w", errno)
	}
	return int(r1), params, nil
}

type ioUringLoop struct {
	mu       sync.Mutex
	fd       int
	features uint32
	closed   bool
}

// Check enters the ring with nothing to submit or wait for.
func (l *ioUringLoop) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLoopClosed
	}
	for {
		_, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER, uintptr(l.fd), 0, 0, 0, 0, 0)
		if errno == 0 {
			return nil
		}
		if !errors.Is(errno, unix.EINTR) {
			return fmt.Errorf("io_uring_enter: %w", errno)
		}
	}
}

func (l *ioUringLoop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return unix.Close(l.fd)
}
