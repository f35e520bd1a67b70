package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/tempomaze/pkg/maze"
)

func sample(t *testing.T) *maze.Graph {
	t.Helper()
	g := maze.New()
	for _, id := range []string{"c000", "c001", "c002", "c100"} {
		if err := g.AddCell(maze.NewCell(id)); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.AddDoor(maze.Door{ID: "d1", Cell: "c002"})
	_ = g.AddElevator(maze.Elevator{ID: "e1"})
	_ = g.AddButton(maze.Button{ID: "b1", Cell: "c000", Opens: "d1"})
	_ = g.Connect("c000", "c001", maze.KindOpen, "")
	_ = g.Connect("c001", "c002", maze.KindDoor, "d1")
	_ = g.Connect("c000", "c100", maze.KindStairs, "")
	_ = g.Connect("c002", "c100", maze.KindElevator, "e1")
	return g
}

func TestToDOT_EdgeStyles(t *testing.T) {
	out := ToDOT(sample(t), Options{})

	for _, want := range []string{
		"digraph maze {",
		"rankdir=LR;",
		`"c000" -> "c001" [label="adjacent", color="gray"];`,
		`"c001" -> "c002" [label="door:d1", color="red"];`,
		`"c100" -> "c000" [label="stairs", color="brown"];`,
		`"c002" -> "c100" [label="elevator:e1", color="blue"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %s\n%s", want, out)
		}
	}
	if got := strings.Count(out, "->"); got != 8 {
		t.Errorf("edge statements = %d, want 8", got)
	}
	if strings.Contains(out, "lightyellow") {
		t.Error("plain output should not declare cells")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	out := ToDOT(sample(t), Options{Detailed: true, RankDir: "TB"})
	if !strings.Contains(out, "rankdir=TB;") {
		t.Error("RankDir ignored")
	}
	if !strings.Contains(out, `"c002" [label="c002\n(0,0,2)\ndoor d1", style=filled, fillcolor=lightyellow];`) {
		t.Errorf("door tile declaration missing:\n%s", out)
	}
	if !strings.Contains(out, `"c000" [label="c000\n(0,0,0)\nbutton b1"`) {
		t.Errorf("button cell declaration missing:\n%s", out)
	}
}

func TestEdgesToDOT_Dedupes(t *testing.T) {
	e := maze.Edge{From: "c00", To: "c01", Kind: maze.KindDoor, Via: "d1"}
	other := maze.Edge{From: "c00", To: "c01", Kind: maze.KindDoor, Via: "d2"}
	out := EdgesToDOT([]maze.Edge{e, e, other, e}, Options{})
	if got := strings.Count(out, "->"); got != 2 {
		t.Errorf("edge statements = %d, want 2\n%s", got, out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "root resized",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<svg viewBox="0 0 100.00 50.00" width="100" height="50" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
		},
		{
			name: "xlink kept",
			in:   `<?xml version="1.0"?><svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><a xlink:href="#c00"/></svg>`,
			want: `<?xml version="1.0"?><svg viewBox="0 0 10.00 20.00" width="10" height="20" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><a xlink:href="#c00"/></svg>`,
		},
		{
			name: "nested svg untouched",
			in:   `<svg viewBox="0 0 8 4"><g><svg width="2" height="2" viewBox="0 0 2 2"/></g></svg>`,
			want: `<svg viewBox="0 0 8.00 4.00" width="8" height="4"><g><svg width="2" height="2" viewBox="0 0 2 2"/></g></svg>`,
		},
		{name: "no viewBox", in: "<svg/>", want: "<svg/>"},
		{name: "svgz prefix is not root", in: `<svgz viewBox="0 0 1 1">`, want: `<svgz viewBox="0 0 1 1">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("SVG"); err != nil || f != FormatSVG {
		t.Errorf("ParseFormat(SVG) = %v, %v", f, err)
	}
	if _, err := ParseFormat("png"); err == nil {
		t.Error("ParseFormat(png) should fail")
	}
}
