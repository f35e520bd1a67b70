package build

import (
	"slices"

	"github.com/matzehuels/tempomaze/pkg/coord"
	"github.com/matzehuels/tempomaze/pkg/maze"
)

// StressName is the problem name of the procedural reference maze.
const StressName = "maze-3d-10x10x10"

const (
	stressSize   = 10
	stressLevels = 10
	// No stairs join this level and the next; elevator e1 bridges them.
	stressGapLevel = 2
)

// StressOptions configures [Stress].
type StressOptions struct {
	// Agent is the identifier of the single agent. Required.
	Agent string
	// Domain is the planning domain. Defaults to maze.DefaultDomain.
	Domain string
}

type pos struct{ z, r, c int }

func (p pos) name() string {
	return coord.SchemeDelimited.MustEncode(coord.Coordinate{Layer: p.z, Row: p.r, Col: p.c})
}

var stressDoors = []struct {
	id   string
	a, b pos
}{
	{"d1", pos{0, 0, 3}, pos{0, 0, 4}},
	{"d2", pos{3, 0, 5}, pos{3, 0, 6}},
	{"d3", pos{6, 0, 4}, pos{6, 0, 5}},
	{"d4", pos{8, 0, 7}, pos{8, 0, 8}},
	{"d5", pos{4, 0, 7}, pos{4, 0, 8}},
	{"d6", pos{7, 0, 2}, pos{7, 0, 3}},
}

var stressButtons = []struct {
	id     string
	at     pos
	target maze.TargetKind
	opens  string
}{
	{"b1", pos{0, 2, 2}, maze.TargetDoor, "d1"},
	{"b2", pos{3, 2, 5}, maze.TargetDoor, "d2"},
	{"b3", pos{6, 2, 4}, maze.TargetDoor, "d3"},
	{"b4", pos{8, 2, 7}, maze.TargetDoor, "d4"},
	{"b5", pos{1, 2, 5}, maze.TargetElevator, "e1"},
}

// Alternate corridors on row r from column c0 to c1, joined to row 0 at
// both ends.
var stressAlternates = []struct{ z, r, c0, c1 int }{
	{0, 1, 1, 3},
	{1, 1, 4, 6},
	{5, 1, 2, 4},
	{6, 1, 6, 8},
}

var stressTimed = []maze.TimedPredicate{
	{Time: 30, Door: "d5", Open: true},
	{Time: 200, Door: "d5", Open: false},
	{Time: 120, Door: "d6", Open: true},
	{Time: 300, Door: "d6", Open: false},
}

var (
	stressStart = pos{0, 0, 0}
	stressGoal  = pos{9, 0, 9}
)

// Stress generates the fixed 10-level reference maze used to exercise a
// planner's temporal and multi-modal reasoning. Row 0 of every level is the
// primary corridor. Doors d1..d4 are opened by buttons at the end of short
// branches, d5 and d6 follow a fixed schedule, and button b5 enables the
// elevator that bridges the one level pair without stairs.
func Stress(opts StressOptions) (*maze.Problem, error) {
	if opts.Agent == "" {
		return nil, ErrNoAgent
	}

	type link struct {
		a, b pos
		kind maze.EdgeKind
		via  string
	}
	var (
		cells = map[pos]bool{}
		links []link
	)
	open := func(a, b pos) {
		cells[a], cells[b] = true, true
		links = append(links, link{a, b, maze.KindOpen, ""})
	}

	gated := map[[2]pos]string{}
	for _, d := range stressDoors {
		gated[[2]pos{d.a, d.b}] = d.id
		gated[[2]pos{d.b, d.a}] = d.id
	}
	for z := range stressLevels {
		for c := range stressSize {
			cells[pos{z, 0, c}] = true
		}
		for c := 0; c+1 < stressSize; c++ {
			a, b := pos{z, 0, c}, pos{z, 0, c + 1}
			if _, ok := gated[[2]pos{a, b}]; ok {
				continue
			}
			open(a, b)
		}
	}
	for _, b := range stressButtons {
		open(pos{b.at.z, 0, b.at.c}, pos{b.at.z, 1, b.at.c})
		open(pos{b.at.z, 1, b.at.c}, pos{b.at.z, 2, b.at.c})
	}
	for _, s := range stressAlternates {
		for c := s.c0; c < s.c1; c++ {
			open(pos{s.z, s.r, c}, pos{s.z, s.r, c + 1})
		}
		open(pos{s.z, 0, s.c0}, pos{s.z, s.r, s.c0})
		open(pos{s.z, 0, s.c1}, pos{s.z, s.r, s.c1})
	}
	for z := 0; z+1 < stressLevels; z++ {
		if z == stressGapLevel {
			continue
		}
		links = append(links, link{pos{z, 0, stressSize - 1}, pos{z + 1, 0, stressSize - 1}, maze.KindStairs, ""})
	}
	links = append(links, link{pos{stressGapLevel, 0, 5}, pos{stressGapLevel + 1, 0, 5}, maze.KindElevator, "e1"})
	for _, d := range stressDoors {
		links = append(links, link{d.a, d.b, maze.KindDoor, d.id})
	}

	names := make([]string, 0, len(cells))
	for p := range cells {
		names = append(names, p.name())
	}
	slices.Sort(names)

	g := maze.New()
	for _, n := range names {
		if err := g.AddCell(maze.NewCell(n)); err != nil {
			return nil, err
		}
	}
	for _, d := range stressDoors {
		if err := g.AddDoor(maze.Door{ID: d.id}); err != nil {
			return nil, err
		}
	}
	if err := g.AddElevator(maze.Elevator{ID: "e1"}); err != nil {
		return nil, err
	}
	for _, b := range stressButtons {
		if err := g.AddButton(maze.Button{ID: b.id, Cell: b.at.name(), Target: b.target, Opens: b.opens}); err != nil {
			return nil, err
		}
	}
	for _, l := range links {
		if err := g.Connect(l.a.name(), l.b.name(), l.kind, l.via); err != nil {
			return nil, err
		}
	}

	p := &maze.Problem{
		Name:   StressName,
		Domain: orDefault(opts.Domain, maze.DefaultDomain),
		Graph:  g,
		Agents: []maze.Agent{{ID: opts.Agent, Start: stressStart.name(), Goal: stressGoal.name()}},
		Timed:  slices.Clone(stressTimed),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
