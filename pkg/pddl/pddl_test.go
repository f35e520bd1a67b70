package pddl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/tempomaze/pkg/build"
	tmerrors "github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/maze"
)

func tiny(t *testing.T) *maze.Problem {
	t.Helper()
	g := maze.New()
	_ = g.AddCell(maze.NewCell("c00"))
	_ = g.AddCell(maze.NewCell("c01"))
	if err := g.AddEdge(maze.Edge{From: "c00", To: "c01"}); err != nil {
		t.Fatal(err)
	}
	return &maze.Problem{
		Name:   "tiny",
		Domain: maze.DefaultDomain,
		Graph:  g,
		Agents: []maze.Agent{{ID: "a1", Start: "c00", Goal: "c01"}},
	}
}

const tinyText = `(define (problem tiny)
  (:domain temporal-maze)
  (:objects
    c00 c01 - cell
    a1 - agent
  )

  (:init
    (agent-at a1 c00)
    (agent-free a1)

    ;; Adjacency for open corridors
    (adjacent c00 c01)

    (= (total-cost) 0)
  )

  (:goal (and
    (agent-at a1 c01)
  ))

  (:metric minimize (total-cost))
)
`

func TestMarshalGolden(t *testing.T) {
	got, err := Marshal(tiny(t))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(got) != tinyText {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, tinyText)
	}
}

func TestMarshalStable(t *testing.T) {
	p := tiny(t)
	a, _ := Marshal(p)
	b, _ := Marshal(p)
	if !bytes.Equal(a, b) {
		t.Error("serializing the same problem twice differs")
	}
}

func TestMarshalSortsEdges(t *testing.T) {
	g := maze.New()
	for _, id := range []string{"c02", "c01", "c00"} {
		_ = g.AddCell(maze.NewCell(id))
	}
	_ = g.Connect("c02", "c01", maze.KindOpen, "")
	_ = g.Connect("c01", "c00", maze.KindOpen, "")
	p := &maze.Problem{Name: "p", Domain: "d", Graph: g, Agents: []maze.Agent{{ID: "a1", Start: "c00"}}}

	out, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	order := []string{"(adjacent c00 c01)", "(adjacent c01 c00)", "(adjacent c01 c02)", "(adjacent c02 c01)"}
	last := -1
	for _, want := range order {
		i := strings.Index(s, want)
		if i < 0 || i < last {
			t.Fatalf("%s missing or out of order in\n%s", want, s)
		}
		last = i
	}
	// Cells keep declaration order.
	if !strings.Contains(s, "c02 c01 c00 - cell") {
		t.Errorf("cell declaration order lost:\n%s", s)
	}
}

func TestMarshalSections(t *testing.T) {
	p, err := build.Stress(build.StressOptions{Agent: "a1"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	sections := []string{
		"b1 b2 b3 b4 b5 - button",
		"d1 d2 d3 d4 d5 d6 - door",
		"e1 - elevator",
		"a1 - agent",
		"(agent-at a1 c0_0_0)",
		headerAdjacency,
		headerDoors,
		"(connects d1 c0_0_3 c0_0_4)",
		headerStairs,
		"(stairs c0_0_9 c1_0_9)",
		headerElevators,
		"(elevator-connects e1 c2_0_5 c3_0_5)",
		headerButtons,
		"(up b1 d1)",
		"(up-elevator b5 e1)",
		headerLocations,
		"(button-at b5 c1_2_5)",
		headerTimed,
		"(at 30 (door-open d5))",
		"(at 200 (not (door-open d5)))",
		"(= (total-cost) 0)",
		"(:goal (and",
		"(agent-at a1 c9_0_9)",
		"(:metric minimize (total-cost))",
	}
	last := -1
	for _, want := range sections {
		i := strings.Index(s, want)
		if i < 0 {
			t.Fatalf("missing %q", want)
		}
		if i < last {
			t.Errorf("%q out of order", want)
		}
		last = i
	}
}

func TestMarshalRejectsBadTokens(t *testing.T) {
	p := tiny(t)
	p.Agents[0].ID = "robot one"
	_, err := Marshal(p)
	if !tmerrors.Is(err, tmerrors.ErrCodeInvalidToken) {
		t.Errorf("Marshal() error = %v, want INVALID_TOKEN", err)
	}
}

func TestFormatTime(t *testing.T) {
	for in, want := range map[float64]string{30: "30", 12.5: "12.5", 0: "0", 0.125: "0.125"} {
		if got := FormatTime(in); got != want {
			t.Errorf("FormatTime(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	grid, err := build.ParseGrid(strings.NewReader("S.Aa\n.#.G\n---\n....\n.bB.\n"), build.GridOptions{Agent: "a1", Stairs: true})
	if err != nil {
		t.Fatal(err)
	}
	stress, err := build.Stress(build.StressOptions{Agent: "robot"})
	if err != nil {
		t.Fatal(err)
	}
	for name, p := range map[string]*maze.Problem{"tiny": tiny(t), "grid": grid, "stress": stress} {
		t.Run(name, func(t *testing.T) {
			first, err := Marshal(p)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			back, err := Parse(bytes.NewReader(first), ReadOptions{})
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			second, err := Marshal(back)
			if err != nil {
				t.Fatalf("Marshal(Parse()) error: %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Errorf("round trip differs:\n%s\n---\n%s", first, second)
			}
		})
	}
}

func TestParseProblem(t *testing.T) {
	p, err := Parse(strings.NewReader(tinyText), ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "tiny" || p.Domain != "temporal-maze" {
		t.Errorf("name/domain = %s/%s", p.Name, p.Domain)
	}
	if len(p.Agents) != 1 || p.Agents[0] != (maze.Agent{ID: "a1", Start: "c00", Goal: "c01"}) {
		t.Errorf("agents = %+v", p.Agents)
	}
	if !p.Graph.HasEdge(maze.Edge{From: "c00", To: "c01", Kind: maze.KindOpen}) {
		t.Error("adjacency missing")
	}
}

const legacyText = `; old single-agent format
(define (problem legacy)
  (:domain temporal-maze)
  (:objects c00 c01 hall - cell d1 - door)
  (:init
    (at c00)
    (connects d1 c01 hall)
    (at 12.5 (door-open d1))
    (glows c01)
  )
  (:goal (at hall))
)
`

func TestParseLegacy(t *testing.T) {
	var notes []string
	opts := ReadOptions{
		DefaultAgent: "a1",
		Logger:       func(f string, args ...any) { notes = append(notes, f) },
	}
	p, err := Parse(strings.NewReader(legacyText), opts)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(p.Agents) != 1 || p.Agents[0] != (maze.Agent{ID: "a1", Start: "c00", Goal: "hall"}) {
		t.Errorf("agents = %+v", p.Agents)
	}
	if len(p.Timed) != 1 || p.Timed[0] != (maze.TimedPredicate{Time: 12.5, Door: "d1", Open: true}) {
		t.Errorf("timed = %+v", p.Timed)
	}
	if c, _ := p.Graph.Cell("hall"); c.HasCoord {
		t.Error("hall should be opaque")
	}
	// One note for the opaque cell, one for the unknown fact.
	if len(notes) != 2 {
		t.Errorf("notes = %v, want 2", notes)
	}
}

func TestParseLegacyWithoutDefaultAgent(t *testing.T) {
	p, err := Parse(strings.NewReader(legacyText), ReadOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(p.Agents) != 0 {
		t.Errorf("agents = %+v, want none", p.Agents)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"Unbalanced", "(define (problem x)", ErrSyntax},
		{"StrayClose", "(define (problem x)))", ErrSyntax},
		{"NotProblem", "(define (domain temporal-maze))", ErrNotProblem},
		{"Empty", "", ErrNotProblem},
		{"DanglingEdge", "(define (problem x) (:objects c00 - cell) (:init (adjacent c00 c01)))", maze.ErrDanglingReference},
		{"UnknownAgent", "(define (problem x) (:objects c00 - cell) (:init (agent-at a9 c00)))", maze.ErrDanglingReference},
		{"UnknownDoor", "(define (problem x) (:objects c00 c01 - cell) (:init (connects d1 c00 c01)))", maze.ErrDanglingReference},
		{"DuplicateCell", "(define (problem x) (:objects c00 c00 - cell))", maze.ErrDuplicateCell},
		{"TimedUnknownDoor", "(define (problem x) (:init (at 5 (door-open d3))))", maze.ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.text), ReadOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}
