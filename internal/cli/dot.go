package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
	"github.com/matzehuels/tempomaze/pkg/render/dot"
)

type dotOpts struct {
	output   string
	format   string
	rankDir  string
	detailed bool
	noCache  bool
	refresh  bool
}

func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts
	cmd := &cobra.Command{
		Use:   "dot <problem.pddl>",
		Short: "Draw a problem's maze graph as DOT or SVG",
		Long: `Draw a problem's maze graph.

Open corridors are gray, doors red, stairs brown and elevators blue. SVG
output is cached by problem content and drawing options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&opts.format, "format", "f", string(dot.FormatDOT), "output format: dot or svg")
	f.StringVar(&opts.rankDir, "rankdir", "", "Graphviz rank direction: LR, TB, RL or BT (default from config)")
	f.BoolVar(&opts.detailed, "detailed", false, "label cells with coordinates and roles")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, in string, opts dotOpts) error {
	ctx := cmd.Context()
	format, err := dot.ParseFormat(opts.format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "--format")
	}
	if err := pipeline.ValidateRankDir(opts.rankDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "--rankdir")
	}
	src, err := readInput(in)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	po := c.pipelineOptions()
	po.Format = format
	po.RankDir = orDefault(opts.rankDir, po.RankDir)
	po.Detailed = opts.detailed
	po.Refresh = opts.refresh

	var spin *Spinner
	if format == dot.FormatSVG && opts.output != "" {
		spin = newSpinnerWithContext(ctx, "Rendering SVG...")
		spin.Start()
	}
	out, hit, err := runner.RenderWithCacheInfo(ctx, src, po)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
		return err
	}
	if opts.output != "" {
		printDetail("%s · %s", format, cacheStatus(hit))
	}
	return nil
}

func cacheStatus(hit bool) string {
	if hit {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}
