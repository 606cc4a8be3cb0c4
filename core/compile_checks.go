package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Registry                = (*ProviderRegistry)(nil)
	_ NativeTransportProvider = PortableProvider{}
	_ MetricsRecorder         = NopMetricsRecorder{}
	_ TransportProber         = (*Prober)(nil)
	_ BootstrapHook           = BootstrapHookFunc{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
