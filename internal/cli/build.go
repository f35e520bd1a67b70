package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/build"
	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/maze"
	"github.com/matzehuels/tempomaze/pkg/pddl"
)

type gridOpts struct {
	stairs bool
	name   string
	domain string
	agent  string
}

func (c *CLI) gridCommand() *cobra.Command {
	var opts gridOpts
	cmd := &cobra.Command{
		Use:   "grid <grid-file> <out.pddl>",
		Short: "Convert an ASCII maze into a planning problem",
		Long: `Convert an ASCII maze into a planning problem.

Tiles: S start, G goal, # wall, a-z door, A-Z button opening the matching
door, anything else open floor. Layers are separated by a line of "---".
Use "-" to read the grid from stdin or write the problem to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGrid(cmd, args[0], args[1], opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.stairs, "stairs", false, "link aligned open cells on adjacent layers")
	f.StringVar(&opts.name, "name", "", "problem name (default "+build.DefaultGridName+")")
	f.StringVar(&opts.domain, "domain", "", "domain name (default from config)")
	f.StringVar(&opts.agent, "agent", "", "agent identifier (default from config)")
	return cmd
}

func (c *CLI) runGrid(cmd *cobra.Command, in, out string, opts gridOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	agent := orDefault(opts.agent, c.Config.AgentOr())
	if err := errors.ValidateToken("agent", agent); err != nil {
		return err
	}
	src, err := readInput(in)
	if err != nil {
		return err
	}
	p, err := build.ParseGrid(bytes.NewReader(src), build.GridOptions{
		Agent:  agent,
		Name:   orDefault(opts.name, c.Config.Problem.Name),
		Domain: orDefault(opts.domain, c.Config.Problem.Domain),
		Stairs: opts.stairs || c.Config.Problem.Stairs,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGrid, err, "parse grid %s", in)
	}
	if err := c.writeProblem(cmd, out, p); err != nil {
		return err
	}
	prog.done("wrote problem " + p.Name)
	return nil
}

func (c *CLI) stressCommand() *cobra.Command {
	var agent, domain string
	cmd := &cobra.Command{
		Use:   "stress <out.pddl>",
		Short: "Write the fixed 10x10x10 stress-test problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := orDefault(agent, c.Config.AgentOr())
			if err := errors.ValidateToken("agent", a); err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			p, err := build.Stress(build.StressOptions{
				Agent:  a,
				Domain: orDefault(domain, c.Config.Problem.Domain),
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "build stress problem")
			}
			if err := c.writeProblem(cmd, args[0], p); err != nil {
				return err
			}
			prog.done("wrote problem " + p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "agent identifier (default from config)")
	cmd.Flags().StringVar(&domain, "domain", "", "domain name (default from config)")
	return cmd
}

func (c *CLI) writeProblem(cmd *cobra.Command, out string, p *maze.Problem) error {
	data, err := pddl.Marshal(p)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProblem, err, "serialize problem")
	}
	if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
		return err
	}
	if out != "-" {
		printStats(p.Graph.CellCount(), p.Graph.EdgeCount(), false)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
