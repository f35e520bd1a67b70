package build

import (
	"errors"
	"testing"

	"github.com/matzehuels/tempomaze/pkg/maze"
)

func TestStress(t *testing.T) {
	p, err := Stress(StressOptions{Agent: "a1"})
	if err != nil {
		t.Fatalf("Stress() error: %v", err)
	}
	g := p.Graph

	if got := g.CellCount(); got != 120 {
		t.Errorf("CellCount() = %d, want 120", got)
	}
	if got := g.EdgeCount(); got != 250 {
		t.Errorf("EdgeCount() = %d, want 250", got)
	}
	if asym := g.Asymmetric(); len(asym) != 0 {
		t.Errorf("Asymmetric() = %v", asym)
	}
	if got := p.Agents[0]; got.Start != "c0_0_0" || got.Goal != "c9_0_9" {
		t.Errorf("agent = %+v", got)
	}

	kinds := map[maze.EdgeKind]int{}
	for _, e := range g.Edges() {
		kinds[e.Kind]++
	}
	want := map[maze.EdgeKind]int{maze.KindOpen: 220, maze.KindDoor: 12, maze.KindStairs: 16, maze.KindElevator: 2}
	for k, n := range want {
		if kinds[k] != n {
			t.Errorf("%s edges = %d, want %d", k, kinds[k], n)
		}
	}

	if g.HasEdge(maze.Edge{From: "c2_0_9", To: "c3_0_9", Kind: maze.KindStairs}) {
		t.Error("stairs between levels 2 and 3 should be omitted")
	}
	if !g.HasEdge(maze.Edge{From: "c3_0_5", To: "c2_0_5", Kind: maze.KindElevator, Via: "e1"}) {
		t.Error("elevator e1 missing")
	}
	if g.HasEdge(maze.Edge{From: "c0_0_3", To: "c0_0_4", Kind: maze.KindOpen}) {
		t.Error("door segment d1 also open")
	}

	var timed []string
	for _, tp := range p.Timed {
		timed = append(timed, tp.Door)
	}
	if len(p.Timed) != 4 || timed[0] != "d5" || timed[2] != "d6" {
		t.Errorf("timed = %+v", p.Timed)
	}

	buttons := g.Buttons()
	if b := buttons[len(buttons)-1]; b.ID != "b5" || b.Target != maze.TargetElevator || b.Opens != "e1" {
		t.Errorf("b5 = %+v", b)
	}
}

func TestStressDeterministic(t *testing.T) {
	a, _ := Stress(StressOptions{Agent: "a1"})
	b, _ := Stress(StressOptions{Agent: "a1"})
	ea, eb := a.Graph.Edges(), b.Graph.Edges()
	if len(ea) != len(eb) {
		t.Fatalf("edge counts differ: %d vs %d", len(ea), len(eb))
	}
	for i := range ea {
		if ea[i] != eb[i] {
			t.Fatalf("edge %d differs: %+v vs %+v", i, ea[i], eb[i])
		}
	}
}

func TestStressRequiresAgent(t *testing.T) {
	if _, err := Stress(StressOptions{}); !errors.Is(err, ErrNoAgent) {
		t.Errorf("Stress() error = %v, want ErrNoAgent", err)
	}
}
