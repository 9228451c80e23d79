package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/arbor/cmd/arbor/internal/watch"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/logging"
	"github.com/go-drift/arbor/pkg/scene"
)

type replayOptions struct {
	json     bool
	watch    bool
	parallel int
	width    int
	height   int
}

type replayResult struct {
	path  string
	trace *scene.Trace
	err   error
}

func newReplayCommand(a *app) *cobra.Command {
	o := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay [scene.yaml | dir]...",
		Short: "Replay scenes and print their callback traces",
		Long: `Replay mounts each scene, feeds it the scripted events, and prints
the callbacks every widget received after each event.

Directories are expanded to the .yaml and .yml files they contain.
With no arguments the replay.dir setting is used.`,
		Example: `  arbor replay scenes/click.yaml
  arbor replay scenes --parallel 8
  arbor replay scenes/focus.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyReplayFlags(cmd, o)
			if len(args) == 0 {
				args = []string{a.cfg.Replay.Dir}
			}
			paths, err := expandScenes(args)
			if err != nil {
				return err
			}
			ctx := logging.WithComponent(cmd.Context(), "replay")
			if err := a.replayAndPrint(ctx, paths, o); err != nil && !o.watch {
				return err
			}
			if o.watch {
				return a.watchScenes(ctx, paths, o)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&o.json, "json", false, "print traces as JSON")
	flags.BoolVarP(&o.watch, "watch", "w", false, "replay scenes again when they change")
	flags.IntVarP(&o.parallel, "parallel", "p", 0, "scenes replayed concurrently (default: replay.parallel)")
	flags.IntVar(&o.width, "width", 0, "surface width for scenes without one (default: replay.width)")
	flags.IntVar(&o.height, "height", 0, "surface height for scenes without one (default: replay.height)")
	return cmd
}

func (a *app) applyReplayFlags(cmd *cobra.Command, o *replayOptions) {
	if !cmd.Flags().Changed("json") {
		o.json = a.cfg.Output.JSON
	}
	if o.parallel <= 0 {
		o.parallel = a.cfg.Replay.Parallel
	}
	if o.width <= 0 {
		o.width = a.cfg.Replay.Width
	}
	if o.height <= 0 {
		o.height = a.cfg.Replay.Height
	}
}

// expandScenes turns files and directories into a sorted, de-duplicated
// list of scene files.
func expandScenes(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("scene dir %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		slices.Sort(found)
		for _, p := range found {
			add(p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scene files found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

// replayAll replays paths concurrently and returns results in input
// order. A failing scene does not stop the others.
func replayAll(ctx context.Context, paths []string, o *replayOptions) ([]replayResult, error) {
	results := make([]replayResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.parallel, 1))

	for i, path := range paths {
		g.Go(func() error {
			results[i] = replayOne(ctx, path, o)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func replayOne(ctx context.Context, path string, o *replayOptions) replayResult {
	log := logging.FromContext(ctx)
	f, err := scene.LoadFile(path)
	if err != nil {
		return replayResult{path: path, err: err}
	}
	trace, err := scene.Replay(ctx, f, scene.WithDefaultSize(o.width, o.height))
	if err != nil {
		log.Debug().Err(err).Str("scene", path).Msg("replay failed")
	}
	return replayResult{path: path, trace: trace, err: err}
}

func (a *app) replayAndPrint(ctx context.Context, paths []string, o *replayOptions) error {
	results, err := replayAll(ctx, paths, o)
	if err != nil {
		return err
	}

	failed := 0
	var traces []*scene.Trace
	for _, r := range results {
		if r.err != nil {
			failed++
			if o.json {
				errors.Report(&errors.ArborError{Op: "arbor.replay", Kind: errors.KindScene, Err: r.err, Widget: r.path})
			} else {
				a.printer.Error(r.path, r.err)
			}
			continue
		}
		if o.json {
			traces = append(traces, r.trace)
			continue
		}
		a.printer.Trace(r.trace)
	}
	if o.json {
		if err := a.printer.JSON(traces); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed", failed, len(results))
	}
	return nil
}

func (a *app) watchScenes(ctx context.Context, paths []string, o *replayOptions) error {
	log := logging.FromContext(ctx)
	w, err := watch.New(paths, watch.DefaultDelay, *log)
	if err != nil {
		return err
	}
	changes, err := w.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("scenes", len(paths)).Msg("watching for changes")

	for changed := range changes {
		if err := a.replayAndPrint(ctx, changed, o); err != nil {
			log.Warn().Err(err).Msg("replay failed")
		}
	}
	return nil
}
