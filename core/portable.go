package core

// PortableProvider backs the fallback transport with the Go runtime network
// poller. It needs no native library and is available on every platform.
type PortableProvider struct{}

func (PortableProvider) ID() string { return TransportPortable }

func (PortableProvider) Load() error { return nil }

func (PortableProvider) OpenEventLoop() (EventLoopHandle, error) {
	return portableLoop{}, nil
}

type portableLoop struct{}

func (portableLoop) Check() error { return nil }

func (portableLoop) Close() error { return nil }
