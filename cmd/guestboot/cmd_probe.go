package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-guestboot"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/query"
)

type probeFlags struct {
	all      bool
	platform string
	priority []string
	disabled []string
}

func newProbeCmd(global *globalFlags) *cobra.Command {
	flags := &probeFlags{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run the transport probes and report which transport would be selected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, global, flags)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&flags.all, "all", false, "Probe every candidate instead of stopping at the first available one")
	f.StringVar(&flags.platform, "platform", "", "Probe as if running on os/arch")
	f.StringSliceVar(&flags.priority, "priority", nil, "Transport ids tried before rank order")
	f.StringSliceVar(&flags.disabled, "disable", nil, "Transport ids to skip")
	return cmd
}

func runProbe(cmd *cobra.Command, global *globalFlags, flags *probeFlags) error {
	cfg := core.Config{
		Transport: core.TransportConfig{
			Priority: flags.priority,
			Disabled: flags.disabled,
		},
	}
	var opts []core.Option
	if flags.platform != "" {
		platform, err := core.ParsePlatform(flags.platform)
		if err != nil {
			return err
		}
		opts = append(opts, guestboot.WithPlatform(platform))
	}

	orchestrator, err := setup(cmd, global, cfg, opts...)
	if err != nil {
		return err
	}
	report, probeErr := query.NewProbeTransportsQuery(orchestrator).
		Query(cmd.Context(), query.ProbeTransportsMessage{All: flags.all})

	out := cmd.OutOrStdout()
	if ok, err := structured(out, global.output, report); ok {
		if err != nil {
			return err
		}
		return probeErr
	}
	if err := writeReport(out, report); err != nil {
		return err
	}
	return probeErr
}
