// Package cmd implements the arbor CLI commands.
//
// The root command loads arbor.yaml and the ARBOR_* environment through
// viper, builds the zerolog logger, and dispatches to replay, tree, and
// version.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/arbor/cmd/arbor/internal/config"
	"github.com/go-drift/arbor/cmd/arbor/internal/render"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// app is the state shared by subcommands once the root has run.
type app struct {
	configPath string
	viper      *viper.Viper
	cfg        *config.Config
	log        zerolog.Logger
	printer    *render.Printer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "arbor",
		Short: "Replay widget scenes against the arbor dispatch engine",
		Long: `arbor mounts scripted widget trees described in YAML scene files,
feeds them platform input events, and prints every callback each
widget received.

Configuration is read from arbor.yaml in the project root or the
current directory, then from ARBOR_* environment variables, then
from flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: arbor.yaml)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.String("color", "", "color output: auto, always, or never")

	root.AddCommand(newReplayCommand(a), newTreeCommand(a), newVersionCommand(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.viper = config.NewViper(a.configPath)
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"log.format":   "log-format",
		"output.color": "color",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			a.viper.Set(key, f.Value.String())
		}
	}

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level, logCfg.Level)
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cmd.ErrOrStderr()
	a.log = logging.New(logCfg).With().Str("component", "cli").Logger()
	errors.SetHandler(&errors.LogHandler{
		Logger:  a.log,
		Verbose: a.log.GetLevel() <= zerolog.DebugLevel,
	})

	a.printer = render.NewPrinter(cmd.OutOrStdout(), render.UseColor(cfg.Output.Color))
	cmd.SetContext(logging.WithContext(cmd.Context(), a.log))

	a.log.Debug().Str("config", cfg.File).Str("project", cfg.Project.Name).Msg("configuration loaded")
	return nil
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
