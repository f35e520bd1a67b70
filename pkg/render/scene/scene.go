// Package scene builds the JSON payload consumed by the 3D maze viewer.
//
// A payload lists the renderable cells with (x, y, z) = (col, row, layer)
// positions, the path of each rendered agent with its start and goal
// markers, the button locations and the cells that are door endpoints. Only
// cells that touch an edge or carry a role (start, goal, button) are kept,
// and cells whose names do not decode to a coordinate are left out.
//
// With exactly one agent the payload has top-level path, start and goal
// keys; with several agents it has a paths list instead.
package scene

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/matzehuels/tempomaze/pkg/coord"
	"github.com/matzehuels/tempomaze/pkg/maze"
	"github.com/matzehuels/tempomaze/pkg/route"
)

// DefaultPalette colours agents' paths in order, wrapping around.
var DefaultPalette = []string{"#ff3030", "#8a5cff", "#2dd4bf", "#f97316", "#22c55e"}

// Options configures [Build].
type Options struct {
	// Palette overrides DefaultPalette.
	Palette []string
}

// CellRef is a named object at a scene position.
type CellRef struct {
	Name string `json:"name"`
	Pos  [3]int `json:"pos"`
}

// AgentScene is one agent's path and markers.
type AgentScene struct {
	Agent string    `json:"agent"`
	Color string    `json:"color"`
	Path  []CellRef `json:"path"`
	Start *CellRef  `json:"start"`
	Goal  *CellRef  `json:"goal"`
}

// Scene is the viewer payload.
type Scene struct {
	Cells     []CellRef
	Agents    []AgentScene
	Buttons   []CellRef
	DoorCells []string
}

type singlePayload struct {
	Cells     []CellRef `json:"cells"`
	Path      []CellRef `json:"path"`
	Start     *CellRef  `json:"start"`
	Goal      *CellRef  `json:"goal"`
	Buttons   []CellRef `json:"buttons"`
	DoorCells []string  `json:"doorCells"`
}

type multiPayload struct {
	Cells     []CellRef    `json:"cells"`
	Paths     []AgentScene `json:"paths"`
	Buttons   []CellRef    `json:"buttons"`
	DoorCells []string     `json:"doorCells"`
}

// MarshalJSON emits the single-agent shape for zero or one agents and the
// multi-agent shape otherwise.
func (s *Scene) MarshalJSON() ([]byte, error) {
	if len(s.Agents) > 1 {
		return json.Marshal(multiPayload{
			Cells:     nonNil(s.Cells),
			Paths:     s.Agents,
			Buttons:   nonNil(s.Buttons),
			DoorCells: nonNil(s.DoorCells),
		})
	}
	single := singlePayload{
		Cells:     nonNil(s.Cells),
		Path:      []CellRef{},
		Buttons:   nonNil(s.Buttons),
		DoorCells: nonNil(s.DoorCells),
	}
	if len(s.Agents) == 1 {
		a := s.Agents[0]
		single.Path, single.Start, single.Goal = nonNil(a.Path), a.Start, a.Goal
	}
	return json.Marshal(single)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Build assembles the payload for the given agent paths. Start and goal
// markers come from the problem's agent declarations.
func Build(p *maze.Problem, paths []route.Path, opts Options) *Scene {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	g := p.Graph

	roles := map[string]bool{}
	for _, path := range paths {
		if a, ok := p.Agent(path.Agent); ok {
			roles[a.Start] = true
			roles[a.Goal] = true
		}
	}
	for _, b := range g.Buttons() {
		roles[b.Cell] = true
	}

	s := &Scene{}
	kept := map[string]CellRef{}
	for _, c := range g.Cells() {
		if !c.HasCoord || !(g.Incident(c.ID) || roles[c.ID]) {
			continue
		}
		ref := CellRef{Name: c.ID, Pos: coord.Position(c.Coord)}
		kept[c.ID] = ref
		s.Cells = append(s.Cells, ref)
	}
	marker := func(id string) *CellRef {
		if ref, ok := kept[id]; ok && id != "" {
			return &ref
		}
		return nil
	}

	for i, path := range paths {
		as := AgentScene{Agent: path.Agent, Color: palette[i%len(palette)], Path: []CellRef{}}
		for _, id := range path.Cells {
			if ref, ok := kept[id]; ok {
				as.Path = append(as.Path, ref)
			}
		}
		if a, ok := p.Agent(path.Agent); ok {
			as.Start, as.Goal = marker(a.Start), marker(a.Goal)
		}
		s.Agents = append(s.Agents, as)
	}
	for _, b := range g.Buttons() {
		if ref, ok := kept[b.Cell]; ok {
			s.Buttons = append(s.Buttons, CellRef{Name: b.ID, Pos: ref.Pos})
		}
	}
	for _, id := range g.DoorCells() {
		if _, ok := kept[id]; ok {
			s.DoorCells = append(s.DoorCells, id)
		}
	}
	return s
}

// SelectAgents decides which agents to render. An explicit request wins.
// Otherwise fallback is used when it is declared, then the first declared
// agent, then fallback itself.
func SelectAgents(p *maze.Problem, requested []string, fallback string) []string {
	if len(requested) > 0 {
		return requested
	}
	ids := p.AgentIDs()
	switch {
	case slices.Contains(ids, fallback):
		return []string{fallback}
	case len(ids) > 0:
		return ids[:1]
	default:
		return []string{fallback}
	}
}

// RenderJSON writes the payload as indented JSON.
func RenderJSON(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
