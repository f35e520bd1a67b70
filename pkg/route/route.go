// Package route reconstructs per-agent cell paths from a parsed plan.
//
// Each action is decoded into a [Step] through a fixed name table; unknown
// action names are skipped. Two trace grammars are supported: the
// multi-agent one, whose actions carry the agent as first argument, and the
// legacy single-agent one, which omits it. In a plan that only uses the
// legacy encoding, its actions belong to [Options.DefaultAgent]. Once any
// action names its agent, legacy actions belong to no agent and are only
// kept when every action is selected.
package route

import (
	"github.com/matzehuels/tempomaze/pkg/trace"
)

// Options configures reconstruction.
type Options struct {
	// DefaultAgent owns legacy single-agent actions and is the assumed
	// agent when none can be inferred.
	DefaultAgent string
	// Sniffer classifies agent and cell tokens.
	Sniffer Sniffer
	// Logger receives notes about skipped actions (optional).
	Logger func(string, ...any)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	return o
}

// Path is the ordered cell sequence one agent visits.
type Path struct {
	Agent string
	Cells []string
}

// Reconstruct returns the cells visited by agent, in plan order, with
// consecutive duplicates collapsed. An empty agent selects every action.
// Multi-agent actions of other agents are skipped. Legacy actions are kept
// when agent is empty, or when agent equals opts.DefaultAgent and the plan
// has no multi-agent actions.
func Reconstruct(actions []trace.Action, agent string, opts Options) []string {
	return Cells(Steps(actions, agent, opts))
}

// Steps returns the decoded actions that belong to agent, under the same
// ownership rules as [Reconstruct].
func Steps(actions []trace.Action, agent string, opts Options) []Step {
	opts = opts.WithDefaults()
	var (
		decoded []Step
		mixed   bool
	)
	for _, a := range actions {
		step, ok := Decode(a, opts.Sniffer)
		if !ok {
			opts.Logger("line %d: skipping action %s", a.Line, a.Text())
			continue
		}
		decoded = append(decoded, step)
		mixed = mixed || step.Owner() != ""
	}
	legacyOwner := opts.DefaultAgent
	if mixed {
		legacyOwner = ""
	}
	var steps []Step
	for _, step := range decoded {
		if owns(step, agent, legacyOwner) {
			steps = append(steps, step)
		}
	}
	return steps
}

// Cells flattens steps into the cells they touch, collapsing consecutive
// duplicates.
func Cells(steps []Step) []string {
	var cells []string
	for _, s := range steps {
		for _, c := range s.Cells() {
			if len(cells) == 0 || cells[len(cells)-1] != c {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// owns reports whether s belongs to agent. legacyOwner is the agent that
// owns steps without one, or empty when they have no owner.
func owns(s Step, agent, legacyOwner string) bool {
	if agent == "" {
		return true
	}
	if s.Owner() == "" {
		return legacyOwner != "" && agent == legacyOwner
	}
	return s.Owner() == agent
}

// InferAgents returns the distinct agents named by multi-agent actions in
// order of first appearance. It returns nil when the plan only uses the
// legacy encoding.
func InferAgents(actions []trace.Action, opts Options) []string {
	var (
		agents []string
		seen   = map[string]bool{}
	)
	for _, a := range actions {
		step, ok := Decode(a, opts.Sniffer)
		if !ok || step.Owner() == "" || seen[step.Owner()] {
			continue
		}
		seen[step.Owner()] = true
		agents = append(agents, step.Owner())
	}
	return agents
}

// ReconstructAll returns one path per agent. With no agents given they are
// inferred from the plan; if none can be inferred a single path for
// opts.DefaultAgent covering every action is returned.
func ReconstructAll(actions []trace.Action, agents []string, opts Options) []Path {
	if len(agents) == 0 {
		agents = InferAgents(actions, opts)
	}
	if len(agents) == 0 {
		return []Path{{Agent: opts.DefaultAgent, Cells: Reconstruct(actions, "", opts)}}
	}
	paths := make([]Path, len(agents))
	for i, ag := range agents {
		paths[i] = Path{Agent: ag, Cells: Reconstruct(actions, ag, opts)}
	}
	return paths
}
