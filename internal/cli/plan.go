package cli

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/maze"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
	"github.com/matzehuels/tempomaze/pkg/render/gridview"
	"github.com/matzehuels/tempomaze/pkg/render/scene"
	"github.com/matzehuels/tempomaze/pkg/route"
	"github.com/matzehuels/tempomaze/pkg/trace"
)

type planOpts struct {
	planOut  string
	statsOut string
	grid     string
	agent    string
	raw      bool
}

func (c *CLI) planCommand() *cobra.Command {
	var opts planOpts
	cmd := &cobra.Command{
		Use:   "plan <planner-output>",
		Short: "Summarise planner output",
		Long: `Summarise planner output: the extracted plan with start, duration and
end of every action, then the search statistics.

With --grid the agent's path is drawn over the problem's maze, one grid per
layer: S start, G goal, * path, . other cells.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.planOut, "plan-out", "", "write the extracted plan to this file")
	f.StringVar(&opts.statsOut, "stats-out", "", "write a JSON run report to this file")
	f.StringVar(&opts.grid, "grid", "", "problem file to draw the path over")
	f.StringVar(&opts.agent, "agent", "", "agent whose path --grid draws")
	f.BoolVar(&opts.raw, "raw", false, "also print the planner output without colour codes")
	return cmd
}

func (c *CLI) runPlan(cmd *cobra.Command, in string, opts planOpts) error {
	w := cmd.OutOrStdout()
	data, err := readInput(in)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cmd.Context(), true, nil)
	if err != nil {
		return err
	}
	po := c.pipelineOptions()
	plan := runner.LoadPlan(data, po)

	if opts.raw {
		fmt.Fprintln(w, StyleTitle.Render("Planner output"))
		fmt.Fprintln(w, trace.StripANSI(string(data)))
	}
	if err := writePlanSummary(w, plan); err != nil {
		return err
	}
	fmt.Fprintln(w)
	writeStats(w, plan.Stats)

	if opts.grid != "" {
		fmt.Fprintln(w)
		if err := c.writeGrid(w, runner, opts.grid, opts.agent, plan, po); err != nil {
			return err
		}
	}

	if opts.planOut != "" {
		var buf bytes.Buffer
		if err := trace.WritePlan(&buf, plan.Actions); err != nil {
			return err
		}
		if err := writeOutput(w, opts.planOut, buf.Bytes()); err != nil {
			return err
		}
	}
	if opts.statsOut != "" {
		report := trace.NewReport(plan, in)
		report.Problem = opts.grid
		report.PlanFile = opts.planOut
		var buf bytes.Buffer
		if err := report.WriteJSON(&buf); err != nil {
			return err
		}
		if err := writeOutput(w, opts.statsOut, buf.Bytes()); err != nil {
			return err
		}
	}

	if plan.Outcome() == trace.OutcomeNoOutput {
		return errors.New(errors.ErrCodeInvalidPlan, "%s: no planner output", in)
	}
	return nil
}

// writePlanSummary prints the action table, or why there is no plan.
func writePlanSummary(w io.Writer, plan *trace.Plan) error {
	switch plan.Outcome() {
	case trace.OutcomeNoOutput:
		fmt.Fprintln(w, StyleWarning.Render("No planner output."))
		return nil
	case trace.OutcomeNoPlan:
		fmt.Fprintln(w, StyleWarning.Render("No plan found in output."))
		return nil
	case trace.OutcomeEmptySolution:
		fmt.Fprintln(w, StyleSuccess.Render("Solution found with no actions (goal already holds)."))
		return nil
	}

	fmt.Fprintf(w, "%s (actions=%d, makespan=%.3f)\n",
		StyleTitle.Render("Plan"), len(plan.Actions), plan.Makespan())
	rows := make([][]string, len(plan.Actions))
	for i, a := range plan.Actions {
		rows[i] = []string{
			strconv.FormatFloat(a.Start, 'f', 3, 64),
			strconv.FormatFloat(a.Duration, 'f', 3, 64),
			strconv.FormatFloat(a.End(), 'f', 3, 64),
			a.Text(),
		}
	}
	return writeTable(w, []string{"Start", "Dur", "End", "Action"}, rows)
}

func writeStats(w io.Writer, s trace.Stats) {
	if !s.Found() {
		fmt.Fprintln(w, StyleDim.Render("Stats not found in output."))
		return
	}
	fmt.Fprintln(w, StyleTitle.Render("Stats"))
	line := func(key, value string) {
		fmt.Fprintf(w, "  %-18s %s\n", key, StyleValue.Render(value))
	}
	num := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	if s.Cost != nil {
		line("Cost", num(*s.Cost))
	}
	if s.Metric != nil {
		line("Metric", num(*s.Metric))
	}
	if s.TimeSeconds != nil {
		line("Time", num(*s.TimeSeconds)+"s")
	}
	if s.StatesEvaluated != nil {
		line("States evaluated", strconv.Itoa(*s.StatesEvaluated))
	}
}

func (c *CLI) writeGrid(w io.Writer, runner *pipeline.Runner, problemPath, agent string, plan *trace.Plan, po pipeline.Options) error {
	src, err := readInput(problemPath)
	if err != nil {
		return err
	}
	p, err := runner.LoadProblem(src, po)
	if err != nil {
		return err
	}
	agent = pickAgent(p, agent, po.DefaultAgent)
	path := route.Reconstruct(plan.Actions, agent, pipeline.SnifferFor(p, po.DefaultAgent, runner.Logger))

	layers := gridview.Layers(p)
	if len(layers) == 0 {
		fmt.Fprintln(w, StyleDim.Render("Grid view not available (no cell coordinates found)."))
		return nil
	}
	for _, l := range layers {
		title := fmt.Sprintf("Grid for %s (row, col)", agent)
		if len(layers) > 1 {
			title = fmt.Sprintf("Layer %d for %s (row, col)", l, agent)
		}
		g, err := gridview.Render(p, gridview.Options{Layer: l, Agent: agent, Path: path})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, StyleTitle.Render(title))
		fmt.Fprintln(w, g)
	}
	return nil
}

// pickAgent returns the requested agent or the one a scene would show.
func pickAgent(p *maze.Problem, requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return scene.SelectAgents(p, nil, fallback)[0]
}
