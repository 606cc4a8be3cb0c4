package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// KernelVersion is the major.minor part of a kernel release string.
type KernelVersion struct {
	Major int
	Minor int
}

// ioUringMinKernel is the first release shipping io_uring_setup(2).
var ioUringMinKernel = KernelVersion{Major: 5, Minor: 1}

func (v KernelVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v KernelVersion) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

func (v KernelVersion) AtLeast(other KernelVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// ParseKernelVersion reads the leading major.minor of a release such as
// "6.8.0-45-generic" or "5.10.102.1-microsoft-standard-WSL2".
func ParseKernelVersion(release string) (KernelVersion, error) {
	release = strings.TrimSpace(release)
	end := strings.IndexFunc(release, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end >= 0 {
		release = release[:end]
	}
	parts := strings.Split(release, ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return KernelVersion{}, fmt.Errorf("transport: kernel release %q is not major.minor", release)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return KernelVersion{}, fmt.Errorf("transport: kernel major %q: %w", parts[0], err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return KernelVersion{}, fmt.Errorf("transport: kernel minor %q: %w", parts[1], err)
	}
	return KernelVersion{Major: major, Minor: minor}, nil
}
