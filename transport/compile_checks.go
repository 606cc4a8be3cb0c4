package transport

import "github.com/goliatone/go-guestboot/core"

var (
	_ core.Registry                = (*Registry)(nil)
	_ core.NativeTransportProvider = (*EpollProvider)(nil)
	_ core.NativeTransportProvider = (*KqueueProvider)(nil)
	_ core.NativeTransportProvider = (*IOUringProvider)(nil)
)
