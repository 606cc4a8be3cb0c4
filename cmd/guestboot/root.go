package main

import (
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-guestboot"
	"github.com/goliatone/go-guestboot/adapters/gologger"
	"github.com/goliatone/go-guestboot/core"
)

type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	output     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "guestboot",
		Short: "Inspect transport selection and dependency isolation for the guest bootstrap",
		Long: "guestboot runs the bootstrap probes without starting a core and inspects\n" +
			"the dependency isolation policy used to package the guest.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch strings.ToLower(flags.output) {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q", flags.output)
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", gologger.FormatConsole, "Log format: console, json or pretty")
	pf.StringVarP(&flags.output, "output", "o", outputText, "Output format: text, json or yaml")

	root.AddCommand(newProbeCmd(flags))
	root.AddCommand(newPolicyCmd(flags))
	root.Version = version
	return root
}

// newLogger builds the glog logger every subcommand logs through. Records go
// to the command's stderr so structured output on stdout stays clean.
func newLogger(cmd *cobra.Command, flags *globalFlags) (*glog.BaseLogger, error) {
	return gologger.New(gologger.Config{
		Name:   "guestboot",
		Level:  flags.logLevel,
		Format: flags.logFormat,
		Writer: cmd.ErrOrStderr(),
	})
}

// setup builds an orchestrator from the config file, the runtime overrides in
// cfg and the command's logger.
func setup(cmd *cobra.Command, flags *globalFlags, cfg core.Config, opts ...core.Option) (*guestboot.Orchestrator, error) {
	logger, err := newLogger(cmd, flags)
	if err != nil {
		return nil, err
	}
	return setupWithLogger(logger, flags, cfg, opts...)
}

func setupWithLogger(logger glog.LoggerProvider, flags *globalFlags, cfg core.Config, opts ...core.Option) (*guestboot.Orchestrator, error) {
	all := []core.Option{guestboot.WithLoggerProvider(logger)}
	if path := strings.TrimSpace(flags.configFile); path != "" {
		all = append(all, guestboot.WithConfigProvider(
			core.NewCfgxConfigProvider(core.YAMLFileLoader{Path: path}),
		))
	}
	all = append(all, opts...)
	return guestboot.Setup(cfg, all...)
}
