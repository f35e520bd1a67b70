package route

import (
	"strings"

	"github.com/matzehuels/tempomaze/pkg/coord"
	"github.com/matzehuels/tempomaze/pkg/trace"
)

// Kind is the closed set of actions the reconstructor understands.
type Kind int

const (
	Move Kind = iota + 1
	MoveThroughDoor
	TakeStairs
	TakeElevator
	PressButton
	ActivateElevator
)

// kinds is the only place action names are matched.
var kinds = map[string]Kind{
	"move":              Move,
	"move-through-door": MoveThroughDoor,
	"take-stairs":       TakeStairs,
	"take-elevator":     TakeElevator,
	"press-button":      PressButton,
	"activate-elevator": ActivateElevator,
}

// LookupKind maps an action name to its kind. Names are case-insensitive.
func LookupKind(name string) (Kind, bool) {
	k, ok := kinds[strings.ToLower(name)]
	return k, ok
}

func (k Kind) String() string {
	for name, v := range kinds {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// Moves reports whether the kind changes the agent's cell.
func (k Kind) Moves() bool { return k >= Move && k <= TakeElevator }

// Step is a decoded action: a [Traversal] or an [Interaction].
type Step interface {
	// Owner returns the agent the step belongs to, or "" for legacy
	// single-agent actions.
	Owner() string
	// Cells returns the cells the step contributes to a path.
	Cells() []string
	Kind() Kind
	// Source returns the plan action the step was decoded from.
	Source() trace.Action
}

// Traversal moves an agent from one cell to another.
type Traversal struct {
	Action trace.Action
	kind   Kind
	Agent  string
	From   string
	To     string
}

func (t Traversal) Owner() string        { return t.Agent }
func (t Traversal) Cells() []string      { return []string{t.From, t.To} }
func (t Traversal) Kind() Kind           { return t.kind }
func (t Traversal) Source() trace.Action { return t.Action }

// Interaction is a stationary action performed on a cell.
type Interaction struct {
	Action trace.Action
	kind   Kind
	Agent  string
	Cell   string
}

func (i Interaction) Owner() string        { return i.Agent }
func (i Interaction) Cells() []string      { return []string{i.Cell} }
func (i Interaction) Kind() Kind           { return i.kind }
func (i Interaction) Source() trace.Action { return i.Action }

// Sniffer decides whether an argument names an agent or a cell.
//
// Declared agents take precedence, then declared cells. Undeclared tokens
// are cells when they match the cell-token grammar (see
// [coord.IsCellToken]) and agents otherwise. An agent literally named like
// a cell is only recognised when it is declared.
type Sniffer struct {
	Agents map[string]bool
	Cells  map[string]bool
}

// NewSniffer builds a sniffer from declared agent and cell identifiers.
func NewSniffer(agents, cells []string) Sniffer {
	s := Sniffer{Agents: make(map[string]bool, len(agents)), Cells: make(map[string]bool, len(cells))}
	for _, a := range agents {
		s.Agents[a] = true
	}
	for _, c := range cells {
		s.Cells[c] = true
	}
	return s
}

// IsAgent reports whether token names an agent.
func (s Sniffer) IsAgent(token string) bool {
	if s.Agents[token] {
		return true
	}
	if s.Cells[token] {
		return false
	}
	return !coord.IsCellToken(token)
}

// Decode turns a parsed action into a step. It returns false for unknown
// action names and for actions with too few arguments.
//
// Movement actions use (name agent from to ...) in the multi-agent
// encoding and (name from to ...) in the legacy one. Stationary actions use
// (name agent object target cell ...) and (name object target cell ...).
// The encoding is chosen by sniffing the first argument; for stationary
// actions the argument count also has to fit.
func Decode(a trace.Action, s Sniffer) (Step, bool) {
	k, ok := LookupKind(a.Name)
	if !ok {
		return nil, false
	}
	args := a.Args
	multi := len(args) > 0 && s.IsAgent(args[0])
	if k.Moves() {
		switch {
		case multi && len(args) >= 3:
			return Traversal{Action: a, kind: k, Agent: args[0], From: args[1], To: args[2]}, true
		case !multi && len(args) >= 2:
			return Traversal{Action: a, kind: k, From: args[0], To: args[1]}, true
		}
		return nil, false
	}
	// The legacy form starts with a button, which is not cell-shaped either,
	// so arity decides unless the first argument is a declared agent.
	switch {
	case multi && len(args) >= 4:
		return Interaction{Action: a, kind: k, Agent: args[0], Cell: args[3]}, true
	case len(args) >= 3 && !s.Agents[args[0]]:
		return Interaction{Action: a, kind: k, Cell: args[2]}, true
	}
	return nil, false
}
