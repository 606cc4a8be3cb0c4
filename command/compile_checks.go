package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[StartBootstrapMessage]       = (*StartBootstrapCommand)(nil)
	_ gocmd.Commander[CheckIsolationPolicyMessage] = (*CheckIsolationPolicyCommand)(nil)
)
