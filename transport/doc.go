// Package transport holds the native event-loop providers probed at
// bootstrap: epoll and io_uring on Linux, kqueue on the BSDs and macOS.
// Providers for a facility the build target lacks still exist and report
// ErrUnsupportedPlatform, so one registry serves every platform.
package transport
