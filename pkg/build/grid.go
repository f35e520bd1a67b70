package build

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/tempomaze/pkg/coord"
	"github.com/matzehuels/tempomaze/pkg/maze"
)

// LayerSeparator is the line that separates layers in a grid file.
const LayerSeparator = "---"

// DefaultGridName is the problem name used when GridOptions.Name is empty.
const DefaultGridName = "maze-2d-generated"

var (
	ErrEmptyGrid       = errors.New("grid is empty")
	ErrLayerDimensions = errors.New("all layers must have the same dimensions")
	ErrMultipleStart   = errors.New("multiple start cells")
	ErrMissingStart    = errors.New("grid has no start cell (S)")
	ErrMultipleGoal    = errors.New("multiple goal cells")
	ErrMissingGoal     = errors.New("grid has no goal cell (G)")
	ErrDuplicateMarker = errors.New("door or button letter appears at more than one cell")
	ErrLetterRange     = errors.New("letter outside A-Z")
	ErrUnmatchedButton = errors.New("button has no matching door")
	ErrNoAgent         = errors.New("agent identifier is required")
)

// GridOptions configures [ParseGrid].
type GridOptions struct {
	// Agent is the identifier of the single agent placed on S with goal G.
	Agent string
	// Name is the problem name. Defaults to DefaultGridName.
	Name string
	// Domain is the planning domain. Defaults to maze.DefaultDomain.
	Domain string
	// Stairs links vertically aligned open cells on adjacent layers.
	Stairs bool
	// Scheme overrides the cell naming scheme. The zero value picks
	// coord.SchemeFor the grid dimensions.
	Scheme coord.Scheme
}

// LetterIndex maps A-Z and a-z to 1..26.
func LetterIndex(ch rune) (int, error) {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 1, nil
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 1, nil
	default:
		return 0, fmt.Errorf("%q: %w", ch, ErrLetterRange)
	}
}

type layer [][]rune

func isWall(ch rune) bool { return ch == '#' || ch == ' ' }

func isButton(ch rune) bool { return unicode.IsUpper(ch) && ch != 'S' && ch != 'G' }

func isDoor(ch rune) bool { return unicode.IsLower(ch) }

// readLayers splits grid text into layers. Blank lines and lines starting
// with ";" are skipped, and each row is right-padded with spaces to the
// widest row of its layer.
func readLayers(r io.Reader) ([]layer, error) {
	var (
		layers  []layer
		current []string
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		width := 0
		for _, row := range current {
			width = max(width, len([]rune(row)))
		}
		l := make(layer, len(current))
		for i, row := range current {
			runes := []rune(row)
			for len(runes) < width {
				runes = append(runes, ' ')
			}
			l[i] = runes
		}
		layers = append(layers, l)
		current = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if trimmed == LayerSeparator {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	flush()
	if len(layers) == 0 {
		return nil, ErrEmptyGrid
	}
	return layers, nil
}

type gridMarkers struct {
	start, goal string
	doors       map[rune]string
	buttons     map[rune]string
}

// ParseGrid builds a single-agent problem from a layered ASCII grid.
//
// '#' and ' ' are walls; 'S' and 'G' mark the unique start and goal; other
// upper-case letters are buttons b1..b26 and lower-case letters are doors
// d1..d26 sitting on their own tile. Every other character is an open cell.
// Button X opens door x. Adjacency is derived from right and down
// neighbours; an edge touching a door tile becomes a door edge for that door.
func ParseGrid(r io.Reader, opts GridOptions) (*maze.Problem, error) {
	if opts.Agent == "" {
		return nil, ErrNoAgent
	}
	layers, err := readLayers(r)
	if err != nil {
		return nil, err
	}
	rows, cols := len(layers[0]), len(layers[0][0])
	for z, l := range layers {
		if len(l) != rows || len(l[0]) != cols {
			return nil, fmt.Errorf("layer %d is %dx%d, layer 0 is %dx%d: %w",
				z, len(l), len(l[0]), rows, cols, ErrLayerDimensions)
		}
	}

	scheme := opts.Scheme
	if scheme == 0 {
		scheme = coord.SchemeFor(len(layers), rows, cols)
	}
	names := make([][][]string, len(layers))
	for z := range layers {
		names[z] = make([][]string, rows)
		for r := range rows {
			names[z][r] = make([]string, cols)
			for c := range cols {
				if isWall(layers[z][r][c]) {
					continue
				}
				name, err := scheme.Encode(coord.Coordinate{Layer: z, Row: r, Col: c})
				if err != nil {
					return nil, fmt.Errorf("grid cell: %w", err)
				}
				names[z][r][c] = name
			}
		}
	}

	g := maze.New()
	m := gridMarkers{doors: map[rune]string{}, buttons: map[rune]string{}}
	for z, l := range layers {
		for r, row := range l {
			for c, ch := range row {
				name := names[z][r][c]
				if name == "" {
					continue
				}
				if err := g.AddCell(maze.NewCell(name)); err != nil {
					return nil, err
				}
				if err := m.record(ch, name); err != nil {
					return nil, err
				}
			}
		}
	}
	if m.start == "" {
		return nil, ErrMissingStart
	}
	if m.goal == "" {
		return nil, ErrMissingGoal
	}
	if err := declareObjects(g, m); err != nil {
		return nil, err
	}

	for z, l := range layers {
		for r := range rows {
			for c := range cols {
				a := names[z][r][c]
				if a == "" {
					continue
				}
				for _, d := range [][2]int{{1, 0}, {0, 1}} {
					rr, cc := r+d[0], c+d[1]
					if rr >= rows || cc >= cols || names[z][rr][cc] == "" {
						continue
					}
					if err := connectTiles(g, a, names[z][rr][cc], l[r][c], l[rr][cc]); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if opts.Stairs {
		for z := 0; z+1 < len(layers); z++ {
			for r := range rows {
				for c := range cols {
					a, b := names[z][r][c], names[z+1][r][c]
					if a == "" || b == "" {
						continue
					}
					if err := g.Connect(a, b, maze.KindStairs, ""); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	p := &maze.Problem{
		Name:   orDefault(opts.Name, DefaultGridName),
		Domain: orDefault(opts.Domain, maze.DefaultDomain),
		Graph:  g,
		Agents: []maze.Agent{{ID: opts.Agent, Start: m.start, Goal: m.goal}},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *gridMarkers) record(ch rune, name string) error {
	switch {
	case ch == 'S':
		if m.start != "" {
			return fmt.Errorf("%s and %s: %w", m.start, name, ErrMultipleStart)
		}
		m.start = name
	case ch == 'G':
		if m.goal != "" {
			return fmt.Errorf("%s and %s: %w", m.goal, name, ErrMultipleGoal)
		}
		m.goal = name
	case isButton(ch), isDoor(ch):
		if _, err := LetterIndex(ch); err != nil {
			return fmt.Errorf("cell %s: %w", name, err)
		}
		set := m.doors
		if isButton(ch) {
			set = m.buttons
		}
		if prev, ok := set[ch]; ok && prev != name {
			return fmt.Errorf("letter %q at %s and %s: %w", ch, prev, name, ErrDuplicateMarker)
		}
		set[ch] = name
	}
	return nil
}

func doorID(ch rune) string {
	i, _ := LetterIndex(ch)
	return fmt.Sprintf("d%d", i)
}

func buttonID(ch rune) string {
	i, _ := LetterIndex(ch)
	return fmt.Sprintf("b%d", i)
}

func declareObjects(g *maze.Graph, m gridMarkers) error {
	doors := sortedKeys(m.doors)
	for _, ch := range doors {
		if err := g.AddDoor(maze.Door{ID: doorID(ch), Cell: m.doors[ch]}); err != nil {
			return err
		}
	}
	for _, ch := range sortedKeys(m.buttons) {
		door := unicode.ToLower(ch)
		if _, ok := m.doors[door]; !ok {
			return fmt.Errorf("button %q at %s: door %q: %w", ch, m.buttons[ch], door, ErrUnmatchedButton)
		}
		b := maze.Button{ID: buttonID(ch), Cell: m.buttons[ch], Target: maze.TargetDoor, Opens: doorID(door)}
		if err := g.AddButton(b); err != nil {
			return err
		}
	}
	return nil
}

// connectTiles links two neighbouring tiles. When both are doors, one door
// edge is recorded per door.
func connectTiles(g *maze.Graph, a, b string, cha, chb rune) error {
	if !isDoor(cha) && !isDoor(chb) {
		return g.Connect(a, b, maze.KindOpen, "")
	}
	if isDoor(cha) {
		if err := g.Connect(a, b, maze.KindDoor, doorID(cha)); err != nil {
			return err
		}
	}
	if isDoor(chb) {
		if err := g.Connect(a, b, maze.KindDoor, doorID(chb)); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[rune]string) []rune {
	keys := make([]rune, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
