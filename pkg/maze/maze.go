package maze

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/tempomaze/pkg/coord"
)

var (
	// ErrInvalidID is returned when a cell or object identifier is empty.
	ErrInvalidID = errors.New("identifier must not be empty")

	// ErrDuplicateCell is returned by [Graph.AddCell] when the cell ID is
	// already present.
	ErrDuplicateCell = errors.New("duplicate cell")

	// ErrDuplicateObject is returned when a door, button or elevator ID is
	// declared twice.
	ErrDuplicateObject = errors.New("duplicate object")

	// ErrDanglingReference is returned when an edge, button, agent or timed
	// predicate references a cell or object that is not in the model.
	ErrDanglingReference = errors.New("dangling reference")
)

// EdgeKind classifies an edge.
type EdgeKind int

const (
	// KindOpen is an unconditional corridor step.
	KindOpen EdgeKind = iota
	// KindDoor is traversable only while its door is open.
	KindDoor
	// KindStairs joins the same (row, col) on adjacent layers.
	KindStairs
	// KindElevator is traversable once its elevator has been enabled.
	KindElevator
)

func (k EdgeKind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindDoor:
		return "door"
	case KindStairs:
		return "stairs"
	case KindElevator:
		return "elevator"
	default:
		return fmt.Sprintf("edgekind(%d)", int(k))
	}
}

// Symmetric reports whether edges of this kind are generated in pairs.
func (k EdgeKind) Symmetric() bool { return k != KindDoor }

// Cell is a traversable location. HasCoord is false for opaque names that
// do not decode under any coordinate scheme.
type Cell struct {
	ID       string
	Coord    coord.Coordinate
	HasCoord bool
}

// NewCell builds a cell from its identifier, decoding the coordinate when
// the identifier follows one of the naming schemes.
func NewCell(id string) Cell {
	c, _, ok := coord.Decode(id)
	return Cell{ID: id, Coord: c, HasCoord: ok}
}

// Edge is a directed step between two cells. Via names the door for KindDoor
// edges and the elevator for KindElevator edges; it is empty otherwise.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
	Via  string
}

// Reverse returns the edge with its endpoints swapped.
func (e Edge) Reverse() Edge {
	return Edge{From: e.To, To: e.From, Kind: e.Kind, Via: e.Via}
}

// Door declares a door. Cell is the door tile for grid mazes and is
// empty for doors that only exist as gated edges.
type Door struct {
	ID   string
	Cell string
}

// TargetKind says what a button activates.
type TargetKind int

const (
	TargetDoor TargetKind = iota
	TargetElevator
)

// Button sits on a cell and activates exactly one door or elevator.
type Button struct {
	ID     string
	Cell   string
	Target TargetKind
	Opens  string
}

// Elevator declares an elevator; its connections are KindElevator edges.
type Elevator struct {
	ID string
}

// Graph is the maze model: cells, typed edges and the objects that gate
// them. All accessors return items in insertion order.
//
// The zero value is not usable; create graphs with [New].
// Graph is not safe for concurrent mutation.
type Graph struct {
	cells     map[string]int
	cellList  []Cell
	edges     []Edge
	edgeSet   map[Edge]struct{}
	outgoing  map[string][]int
	incident  map[string]int
	doors     []Door
	buttons   []Button
	elevators []Elevator
	objects   map[string]string // object ID -> type
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		cells:    make(map[string]int),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]int),
		incident: make(map[string]int),
		objects:  make(map[string]string),
	}
}

// AddCell adds a cell. It returns ErrInvalidID for an empty ID and
// ErrDuplicateCell if the ID is already present.
func (g *Graph) AddCell(c Cell) error {
	if c.ID == "" {
		return ErrInvalidID
	}
	if _, ok := g.cells[c.ID]; ok {
		return fmt.Errorf("cell %s: %w", c.ID, ErrDuplicateCell)
	}
	g.cells[c.ID] = len(g.cellList)
	g.cellList = append(g.cellList, c)
	return nil
}

// HasCell reports whether the cell exists.
func (g *Graph) HasCell(id string) bool {
	_, ok := g.cells[id]
	return ok
}

// Cell returns the cell with the given ID.
func (g *Graph) Cell(id string) (Cell, bool) {
	i, ok := g.cells[id]
	if !ok {
		return Cell{}, false
	}
	return g.cellList[i], true
}

// AddEdge inserts a directed edge. Both endpoints must already be cells and
// Via must name a declared door or elevator for gated kinds; otherwise it
// returns ErrDanglingReference. Inserting an identical edge twice is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if !g.HasCell(e.From) {
		return fmt.Errorf("edge %s->%s: source %s: %w", e.From, e.To, e.From, ErrDanglingReference)
	}
	if !g.HasCell(e.To) {
		return fmt.Errorf("edge %s->%s: target %s: %w", e.From, e.To, e.To, ErrDanglingReference)
	}
	switch e.Kind {
	case KindDoor:
		if g.objects[e.Via] != "door" {
			return fmt.Errorf("edge %s->%s: door %q: %w", e.From, e.To, e.Via, ErrDanglingReference)
		}
	case KindElevator:
		if g.objects[e.Via] != "elevator" {
			return fmt.Errorf("edge %s->%s: elevator %q: %w", e.From, e.To, e.Via, ErrDanglingReference)
		}
	default:
		e.Via = ""
	}
	if _, dup := g.edgeSet[e]; dup {
		return nil
	}
	g.edgeSet[e] = struct{}{}
	g.outgoing[e.From] = append(g.outgoing[e.From], len(g.edges))
	g.edges = append(g.edges, e)
	g.incident[e.From]++
	g.incident[e.To]++
	return nil
}

// Connect inserts the edge a->b and its reverse b->a.
func (g *Graph) Connect(a, b string, kind EdgeKind, via string) error {
	e := Edge{From: a, To: b, Kind: kind, Via: via}
	if err := g.AddEdge(e); err != nil {
		return err
	}
	return g.AddEdge(e.Reverse())
}

func (g *Graph) declare(id, typ string) error {
	if id == "" {
		return ErrInvalidID
	}
	if prev, ok := g.objects[id]; ok {
		return fmt.Errorf("%s %s (already a %s): %w", typ, id, prev, ErrDuplicateObject)
	}
	g.objects[id] = typ
	return nil
}

// AddDoor declares a door. A non-empty Cell must exist.
func (g *Graph) AddDoor(d Door) error {
	if d.Cell != "" && !g.HasCell(d.Cell) {
		return fmt.Errorf("door %s: cell %s: %w", d.ID, d.Cell, ErrDanglingReference)
	}
	if err := g.declare(d.ID, "door"); err != nil {
		return err
	}
	g.doors = append(g.doors, d)
	return nil
}

// AddElevator declares an elevator.
func (g *Graph) AddElevator(e Elevator) error {
	if err := g.declare(e.ID, "elevator"); err != nil {
		return err
	}
	g.elevators = append(g.elevators, e)
	return nil
}

// AddButton declares a button. Its cell and its target door or elevator
// must already be present.
func (g *Graph) AddButton(b Button) error {
	if !g.HasCell(b.Cell) {
		return fmt.Errorf("button %s: cell %s: %w", b.ID, b.Cell, ErrDanglingReference)
	}
	want := "door"
	if b.Target == TargetElevator {
		want = "elevator"
	}
	if g.objects[b.Opens] != want {
		return fmt.Errorf("button %s: %s %q: %w", b.ID, want, b.Opens, ErrDanglingReference)
	}
	if err := g.declare(b.ID, "button"); err != nil {
		return err
	}
	g.buttons = append(g.buttons, b)
	return nil
}

// Cells returns all cells in insertion order.
func (g *Graph) Cells() []Cell { return slices.Clone(g.cellList) }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Doors returns declared doors in insertion order.
func (g *Graph) Doors() []Door { return slices.Clone(g.doors) }

// Buttons returns declared buttons in insertion order.
func (g *Graph) Buttons() []Button { return slices.Clone(g.buttons) }

// Elevators returns declared elevators in insertion order.
func (g *Graph) Elevators() []Elevator { return slices.Clone(g.elevators) }

// CellCount returns the number of cells.
func (g *Graph) CellCount() int { return len(g.cellList) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the outgoing edges of a cell in insertion order.
func (g *Graph) Neighbors(id string) []Edge {
	idx := g.outgoing[id]
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// Incident reports whether at least one edge starts or ends at the cell.
func (g *Graph) Incident(id string) bool { return g.incident[id] > 0 }

// HasEdge reports whether the exact edge is present.
func (g *Graph) HasEdge(e Edge) bool {
	if !e.Kind.gated() {
		e.Via = ""
	}
	_, ok := g.edgeSet[e]
	return ok
}

// DoorCells returns the endpoints of KindDoor edges in cell insertion order.
func (g *Graph) DoorCells() []string {
	set := make(map[string]bool)
	for _, e := range g.edges {
		if e.Kind == KindDoor {
			set[e.From] = true
			set[e.To] = true
		}
	}
	var out []string
	for _, c := range g.cellList {
		if set[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// Asymmetric returns edges of symmetric kinds whose reverse is missing.
func (g *Graph) Asymmetric() []Edge {
	var out []Edge
	for _, e := range g.edges {
		if !e.Kind.Symmetric() {
			continue
		}
		if _, ok := g.edgeSet[e.Reverse()]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func (k EdgeKind) gated() bool { return k == KindDoor || k == KindElevator }

// SortEdges orders edges by kind, then Via, then From, then To. This is the
// canonical emission order for serializers and renderers.
func SortEdges(edges []Edge) {
	slices.SortFunc(edges, func(a, b Edge) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		if c := strings.Compare(a.Via, b.Via); c != 0 {
			return c
		}
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
}
