package transport

const defaultIOUringEntries = 8

// IOUringOptions tunes the rings opened by the io_uring provider.
type IOUringOptions struct {
	// Entries is the submission queue depth; zero means 8.
	Entries uint32
	// MinKernel overrides the minimum kernel release accepted by Load.
	MinKernel KernelVersion
}

func (o IOUringOptions) withDefaults() IOUringOptions {
	if o.Entries == 0 {
		o.Entries = defaultIOUringEntries
	}
	if o.MinKernel.IsZero() {
		o.MinKernel = ioUringMinKernel
	}
	return o
}
