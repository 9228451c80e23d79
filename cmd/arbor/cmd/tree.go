package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-drift/arbor/pkg/logging"
	"github.com/go-drift/arbor/pkg/scene"
)

func newTreeCommand(a *app) *cobra.Command {
	var (
		initial bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "tree scene.yaml",
		Short: "Print a scene's mounted widget tree",
		Long: `Tree replays a scene and prints the mounted widgets with their
layout rectangles and hover, focus, and active state.

Use --initial to print the tree before any event is replayed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scene.LoadFile(args[0])
			if err != nil {
				return err
			}
			if initial {
				f.Events = nil
			}
			ctx := logging.WithComponent(cmd.Context(), "tree")
			trace, err := scene.Replay(ctx, f, scene.WithDefaultSize(a.cfg.Replay.Width, a.cfg.Replay.Height))
			if err != nil {
				return err
			}
			if asJSON || (a.cfg.Output.JSON && !cmd.Flags().Changed("json")) {
				return a.printer.JSON(trace.Final)
			}
			a.printer.Tree(trace.Final)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initial, "initial", false, "print the tree before replaying events")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	return cmd
}
