package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

var (
	_ gocmd.Querier[ProbeTransportsMessage, core.BootstrapReport] = (*ProbeTransportsQuery)(nil)
	_ gocmd.Querier[IsolationManifestMessage, isolation.Document] = (*IsolationManifestQuery)(nil)
	_ gocmd.Querier[MatchIsolationMessage, MatchResult]           = (*MatchIsolationQuery)(nil)
	_ TransportProbeReader                                        = (*core.Orchestrator)(nil)
	_ IsolationPolicyReader                                       = (*core.Orchestrator)(nil)
)
