package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/errors"
)

type sceneOpts struct {
	output  string
	plan    string
	agent   string
	agents  []string
	noCache bool
}

func (c *CLI) sceneCommand() *cobra.Command {
	var opts sceneOpts
	cmd := &cobra.Command{
		Use:   "scene <problem.pddl>",
		Short: "Build the JSON scene payload for a 3D viewer",
		Long: `Build the JSON scene payload for a 3D viewer: cell positions, the
agents' paths with start and goal markers, buttons and door cells.

One agent produces a single "path"; several (--agents a1,a2) produce a
"paths" list with a colour per agent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScene(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&opts.plan, "plan", "", "planner output or plan file to trace paths from")
	f.StringVar(&opts.agent, "agent", "", "single agent to show")
	f.StringSliceVar(&opts.agents, "agents", nil, "comma-separated agents to show")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.MarkFlagsMutuallyExclusive("agent", "agents")
	return cmd
}

func (c *CLI) runScene(cmd *cobra.Command, in string, opts sceneOpts) error {
	ctx := cmd.Context()
	agents := opts.agents
	if opts.agent != "" {
		agents = []string{opts.agent}
	}
	if err := errors.ValidateTokens("agent", agents); err != nil {
		return err
	}
	problem, err := readInput(in)
	if err != nil {
		return err
	}
	var plan []byte
	if opts.plan != "" {
		if plan, err = readInput(opts.plan); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	po := c.pipelineOptions()
	po.Agents = agents
	out, hit, err := runner.SceneWithCacheInfo(ctx, problem, plan, po)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
		return err
	}
	if opts.output != "" {
		printDetail("scene · %s", cacheStatus(hit))
	}
	return nil
}
