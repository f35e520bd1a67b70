package pddl

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/maze"
)

// Section headers in the init block.
const (
	headerAdjacency = ";; Adjacency for open corridors"
	headerDoors     = ";; Door edges (closed initially)"
	headerStairs    = ";; Stairs between layers"
	headerElevators = ";; Elevator connections"
	headerButtons   = ";; Buttons open doors"
	headerLocations = ";; Button locations"
	headerTimed     = ";; Timed doors"
)

// Marshal serializes the problem to text. See [Write].
func Marshal(p *maze.Problem) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the problem as a planning problem description.
//
// Sections are emitted in a fixed order: typed objects, agent state,
// adjacency, door edges, stairs, elevator connections, button targets,
// button locations, timed door predicates, the zero cost term, the goal
// conjunction and the cost metric. Edges are emitted in [maze.SortEdges]
// order, so writing an unchanged problem twice yields identical bytes.
func Write(w io.Writer, p *maze.Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := validateNames(p); err != nil {
		return err
	}
	g := p.Graph

	var sb strings.Builder
	line := func(indent int, format string, args ...any) {
		sb.WriteString(strings.Repeat("  ", indent))
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}
	objects := func(typ string, ids []string) {
		if len(ids) > 0 {
			line(2, "%s - %s", strings.Join(ids, " "), typ)
		}
	}

	line(0, "(define (problem %s)", p.Name)
	line(1, "(:domain %s)", p.Domain)
	line(1, "(:objects")
	objects("cell", cellIDs(g))
	objects("button", buttonIDs(g))
	objects("door", doorIDs(g))
	objects("elevator", elevatorIDs(g))
	objects("agent", p.AgentIDs())
	line(1, ")")
	line(0, "")

	line(1, "(:init")
	for _, a := range p.Agents {
		line(2, "(agent-at %s %s)", a.ID, a.Start)
		line(2, "(agent-free %s)", a.ID)
	}
	line(0, "")

	byKind := map[maze.EdgeKind][]maze.Edge{}
	edges := g.Edges()
	maze.SortEdges(edges)
	for _, e := range edges {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	line(2, headerAdjacency)
	for _, e := range byKind[maze.KindOpen] {
		line(2, "(adjacent %s %s)", e.From, e.To)
	}
	line(0, "")
	if es := byKind[maze.KindDoor]; len(es) > 0 {
		line(2, headerDoors)
		for _, e := range es {
			line(2, "(connects %s %s %s)", e.Via, e.From, e.To)
		}
		line(0, "")
	}
	if es := byKind[maze.KindStairs]; len(es) > 0 {
		line(2, headerStairs)
		for _, e := range es {
			line(2, "(stairs %s %s)", e.From, e.To)
		}
		line(0, "")
	}
	if es := byKind[maze.KindElevator]; len(es) > 0 {
		line(2, headerElevators)
		for _, e := range es {
			line(2, "(elevator-connects %s %s %s)", e.Via, e.From, e.To)
		}
		line(0, "")
	}

	if buttons := g.Buttons(); len(buttons) > 0 {
		line(2, headerButtons)
		for _, b := range buttons {
			if b.Target == maze.TargetDoor {
				line(2, "(up %s %s)", b.ID, b.Opens)
			}
		}
		for _, b := range buttons {
			if b.Target == maze.TargetElevator {
				line(2, "(up-elevator %s %s)", b.ID, b.Opens)
			}
		}
		line(0, "")
		line(2, headerLocations)
		for _, b := range buttons {
			line(2, "(button-at %s %s)", b.ID, b.Cell)
		}
		line(0, "")
	}

	if len(p.Timed) > 0 {
		line(2, headerTimed)
		for _, t := range p.Timed {
			if t.Open {
				line(2, "(at %s (door-open %s))", FormatTime(t.Time), t.Door)
			} else {
				line(2, "(at %s (not (door-open %s)))", FormatTime(t.Time), t.Door)
			}
		}
		line(0, "")
	}

	line(2, "(= (total-cost) 0)")
	line(1, ")")
	line(0, "")
	line(1, "(:goal (and")
	for _, a := range p.Agents {
		if a.Goal != "" {
			line(2, "(agent-at %s %s)", a.ID, a.Goal)
		}
	}
	line(1, "))")
	line(0, "")
	line(1, "(:metric minimize (total-cost))")
	line(0, ")")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatTime prints a timed-predicate time in its shortest form: 30, 12.5.
func FormatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func validateNames(p *maze.Problem) error {
	g := p.Graph
	checks := []struct {
		what string
		ids  []string
	}{
		{"problem", []string{p.Name}},
		{"domain", []string{p.Domain}},
		{"cell", cellIDs(g)},
		{"button", buttonIDs(g)},
		{"door", doorIDs(g)},
		{"elevator", elevatorIDs(g)},
		{"agent", p.AgentIDs()},
	}
	for _, c := range checks {
		if err := errors.ValidateTokens(c.what, c.ids); err != nil {
			return err
		}
	}
	return nil
}

func cellIDs(g *maze.Graph) []string {
	cells := g.Cells()
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	return ids
}

func buttonIDs(g *maze.Graph) []string {
	var ids []string
	for _, b := range g.Buttons() {
		ids = append(ids, b.ID)
	}
	return ids
}

func doorIDs(g *maze.Graph) []string {
	var ids []string
	for _, d := range g.Doors() {
		ids = append(ids, d.ID)
	}
	return ids
}

func elevatorIDs(g *maze.Graph) []string {
	var ids []string
	for _, e := range g.Elevators() {
		ids = append(ids, e.ID)
	}
	return ids
}
