package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/go-drift/arbor/pkg/scene"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version := Version
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "arbor %s (built %s)\n", version, BuildTime)
			fmt.Fprintf(out, "scene format %s\n", scene.SupportedMajor)
			if a.cfg.Project.ModulePath != "" {
				fmt.Fprintf(out, "project %s (%s)\n", a.cfg.Project.Name, a.cfg.Project.ModulePath)
			}
			return nil
		},
	}
}
