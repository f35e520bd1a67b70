package maze

import (
	"fmt"
)

// DefaultDomain is the planning domain that generated problems target.
const DefaultDomain = "temporal-maze"

// Agent is a navigator with its own start and goal cells.
type Agent struct {
	ID    string
	Start string
	Goal  string
}

// TimedPredicate opens or closes a door at an absolute time.
type TimedPredicate struct {
	Time float64
	Door string
	Open bool
}

// Problem is a complete planning instance: the maze, its agents and the
// timed door schedule.
type Problem struct {
	Name   string
	Domain string
	Graph  *Graph
	Agents []Agent
	Timed  []TimedPredicate
}

// Agent returns the agent with the given ID.
func (p *Problem) Agent(id string) (Agent, bool) {
	for _, a := range p.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// AgentIDs returns agent identifiers in declaration order.
func (p *Problem) AgentIDs() []string {
	ids := make([]string, len(p.Agents))
	for i, a := range p.Agents {
		ids[i] = a.ID
	}
	return ids
}

// Validate checks that every agent and timed predicate references objects
// that exist in the graph. An agent may omit its goal; its start is
// required.
func (p *Problem) Validate() error {
	if p.Graph == nil {
		return fmt.Errorf("problem %s: no graph: %w", p.Name, ErrDanglingReference)
	}
	seen := make(map[string]bool, len(p.Agents))
	for _, a := range p.Agents {
		if a.ID == "" {
			return fmt.Errorf("agent: %w", ErrInvalidID)
		}
		if seen[a.ID] {
			return fmt.Errorf("agent %s: %w", a.ID, ErrDuplicateObject)
		}
		if _, clash := p.Graph.objects[a.ID]; clash {
			return fmt.Errorf("agent %s (already a %s): %w", a.ID, p.Graph.objects[a.ID], ErrDuplicateObject)
		}
		seen[a.ID] = true
		if !p.Graph.HasCell(a.Start) {
			return fmt.Errorf("agent %s: start %q: %w", a.ID, a.Start, ErrDanglingReference)
		}
		if a.Goal != "" && !p.Graph.HasCell(a.Goal) {
			return fmt.Errorf("agent %s: goal %q: %w", a.ID, a.Goal, ErrDanglingReference)
		}
	}
	for _, t := range p.Timed {
		if p.Graph.objects[t.Door] != "door" {
			return fmt.Errorf("timed predicate at %g: door %q: %w", t.Time, t.Door, ErrDanglingReference)
		}
	}
	return nil
}
