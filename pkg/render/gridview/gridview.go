// Package gridview draws one layer of a maze as a character grid:
//
//	S * * .
//	. . * G
//
// S and G mark the agent's start and goal, * marks cells on its path, @
// marks the cursor and . any other cell. Positions with no cell are blank.
package gridview

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/tempomaze/pkg/coord"
	"github.com/matzehuels/tempomaze/pkg/maze"
)

// ErrNoCoordinates is returned when no cell on the layer has a coordinate.
var ErrNoCoordinates = errors.New("no cell coordinates on layer")

// Marks used in the grid.
const (
	MarkStart  = 'S'
	MarkGoal   = 'G'
	MarkPath   = '*'
	MarkCursor = '@'
	MarkCell   = '.'
	MarkEmpty  = ' '
)

// Options selects what is drawn.
type Options struct {
	Layer int
	// Agent selects the start and goal markers. Empty draws none.
	Agent string
	Path  []string
	// Cursor, when set, is drawn with MarkCursor over any other mark.
	Cursor string
}

// Render draws the grid with rows top to bottom and columns separated by
// single spaces.
func Render(p *maze.Problem, opts Options) (string, error) {
	rows, err := Grid(p, opts)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		cols := make([]string, len(row))
		for j, r := range row {
			cols[j] = string(r)
		}
		lines[i] = strings.TrimRight(strings.Join(cols, " "), " ")
	}
	return strings.Join(lines, "\n"), nil
}

// Grid returns the marks as a rectangle spanning the layer's occupied
// rows and columns.
func Grid(p *maze.Problem, opts Options) ([][]rune, error) {
	cells := map[[2]int]string{}
	minR, minC, maxR, maxC := 0, 0, -1, -1
	for _, c := range p.Graph.Cells() {
		if !c.HasCoord || c.Coord.Layer != opts.Layer {
			continue
		}
		r, col := c.Coord.Row, c.Coord.Col
		if maxR < 0 {
			minR, maxR, minC, maxC = r, r, col, col
		}
		minR, maxR = min(minR, r), max(maxR, r)
		minC, maxC = min(minC, col), max(maxC, col)
		cells[[2]int{r, col}] = c.ID
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w %d", ErrNoCoordinates, opts.Layer)
	}

	var start, goal string
	if a, ok := p.Agent(opts.Agent); ok {
		start, goal = a.Start, a.Goal
	}
	onPath := make(map[string]bool, len(opts.Path))
	for _, id := range opts.Path {
		onPath[id] = true
	}

	grid := make([][]rune, maxR-minR+1)
	for r := range grid {
		grid[r] = make([]rune, maxC-minC+1)
		for c := range grid[r] {
			id, ok := cells[[2]int{r + minR, c + minC}]
			switch {
			case !ok:
				grid[r][c] = MarkEmpty
			case opts.Cursor != "" && id == opts.Cursor:
				grid[r][c] = MarkCursor
			case id == start:
				grid[r][c] = MarkStart
			case id == goal:
				grid[r][c] = MarkGoal
			case onPath[id]:
				grid[r][c] = MarkPath
			default:
				grid[r][c] = MarkCell
			}
		}
	}
	return grid, nil
}

// Layers returns the distinct layers holding cells with coordinates, in
// ascending order.
func Layers(p *maze.Problem) []int {
	seen := map[int]bool{}
	var out []int
	for _, c := range p.Graph.Cells() {
		if c.HasCoord && !seen[c.Coord.Layer] {
			seen[c.Coord.Layer] = true
			out = append(out, c.Coord.Layer)
		}
	}
	slices.Sort(out)
	return out
}

// LayerOf returns the layer of cell id, or false if it has no coordinate.
func LayerOf(p *maze.Problem, id string) (int, bool) {
	c, ok := p.Graph.Cell(id)
	if !ok || !c.HasCoord {
		if co, _, ok := coord.Decode(id); ok {
			return co.Layer, true
		}
		return 0, false
	}
	return c.Coord.Layer, true
}
