package main

import (
	"context"
	"fmt"

	gocmd "github.com/goliatone/go-command"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-guestboot/command"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
	"github.com/goliatone/go-guestboot/query"
)

func newPolicyCmd(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the dependency isolation policy",
	}
	cmd.AddCommand(newPolicyExportCmd(global))
	cmd.AddCommand(newPolicyCheckCmd(global))
	cmd.AddCommand(newPolicyMatchCmd(global))
	return cmd
}

func newPolicyExportCmd(global *globalFlags) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the relocation and exclusion manifest used for packaging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orchestrator, err := setup(cmd, global, core.Config{})
			if err != nil {
				return err
			}
			doc, err := query.NewIsolationManifestQuery(orchestrator).
				Query(cmd.Context(), query.IsolationManifestMessage{DestinationRoot: root})
			if err != nil {
				return err
			}
			format := global.output
			if format == outputText {
				format = outputYAML
			}
			_, err = structured(cmd.OutOrStdout(), format, doc)
			return err
		},
	}
	cmd.Flags().StringVar(&root, "destination-root", "", "Rebase relocations under this package")
	return cmd
}

func newPolicyCheckCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a policy document against the built-in transport bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bus, err := newCommandBus(cmd, global)
			if err != nil {
				return err
			}
			defer bus.Close()

			doc, err := checkPolicy(cmd.Context(), bus.Run, args[0])
			if err != nil {
				return err
			}
			if ok, err := structured(cmd.OutOrStdout(), global.output, doc); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d relocations, %d exclusions, root %s)\n",
				args[0], len(doc.Relocations), len(doc.Exclusions), doc.DestinationRoot)
			return nil
		},
	}
}

// checkPolicy runs the policy check command and returns the manifest it
// stored in the result collector.
func checkPolicy(ctx context.Context, run func(context.Context, gocmd.Message) error, path string) (isolation.Document, error) {
	collector := gocmd.NewResult[isolation.Document]()
	ctx = gocmd.ContextWithResult(ctx, collector)
	err := run(ctx, command.CheckIsolationPolicyMessage{
		Path:     path,
		Bindings: core.DefaultCandidates(),
	})
	if err != nil {
		return isolation.Document{}, err
	}
	doc, ok := collector.Load()
	if !ok {
		return isolation.Document{}, fmt.Errorf("policy check: %s produced no manifest", path)
	}
	return doc, nil
}

func newPolicyMatchCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "match <package|group:artifact>",
		Short: "Show which relocation or exclusion applies to a package or coordinate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := setup(cmd, global, core.Config{})
			if err != nil {
				return err
			}
			result, err := query.NewMatchIsolationQuery(orchestrator).
				Query(cmd.Context(), query.MatchIsolationMessage{Subject: args[0]})
			if err != nil {
				return err
			}
			if ok, err := structured(cmd.OutOrStdout(), global.output, result); ok {
				return err
			}
			writeMatch(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
