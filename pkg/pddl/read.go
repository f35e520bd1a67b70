package pddl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/tempomaze/pkg/maze"
)

// ErrNotProblem is returned when the input has no (define (problem ...)).
var ErrNotProblem = errors.New("not a problem definition")

// ReadOptions configures [Parse].
type ReadOptions struct {
	// DefaultAgent receives legacy single-agent (at <cell>) facts. When it
	// is empty such facts are skipped with a note.
	DefaultAgent string
	// Logger receives notes about skipped content (optional).
	Logger func(string, ...any)
}

// WithDefaults returns a copy of ReadOptions with zero values replaced by defaults.
func (o ReadOptions) WithDefaults() ReadOptions {
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	return o
}

type reader struct {
	opts    ReadOptions
	p       *maze.Problem
	agents  map[string]int // index into p.Agents
	buttons map[string]*maze.Button
	order   []string // button declaration order
}

// Parse reads a problem description back into the model.
//
// Unknown predicates, untyped objects and cell names that do not follow a
// coordinate scheme are accepted and reported through opts.Logger. Facts
// that reference undeclared objects are errors.
func Parse(r io.Reader, opts ReadOptions) (*maze.Problem, error) {
	opts = opts.WithDefaults()
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}
	exprs, err := parseSexprs(string(src))
	if err != nil {
		return nil, err
	}

	var def *node
	for i := range exprs {
		if exprs[i].head() == "define" {
			def = &exprs[i]
			break
		}
	}
	if def == nil {
		return nil, ErrNotProblem
	}

	rd := &reader{
		opts:    opts,
		p:       &maze.Problem{Graph: maze.New()},
		agents:  map[string]int{},
		buttons: map[string]*maze.Button{},
	}
	var init, goal []node
	for _, sec := range def.list[1:] {
		switch sec.head() {
		case "problem":
			if args, ok := sec.atoms(); ok && len(args) == 1 {
				rd.p.Name = args[0]
			}
		case ":domain":
			if args, ok := sec.atoms(); ok && len(args) == 1 {
				rd.p.Domain = args[0]
			}
		case ":objects":
			if err := rd.objects(sec); err != nil {
				return nil, err
			}
		case ":init":
			init = sec.list[1:]
		case ":goal":
			goal = sec.list[1:]
		case ":metric":
		default:
			opts.Logger("line %d: skipping section %s", sec.line, sec)
		}
	}
	if rd.p.Name == "" {
		return nil, ErrNotProblem
	}

	for _, f := range init {
		if err := rd.fact(f); err != nil {
			return nil, err
		}
	}
	if err := rd.finishButtons(); err != nil {
		return nil, err
	}
	for _, f := range goal {
		if err := rd.goal(f); err != nil {
			return nil, err
		}
	}
	if err := rd.p.Validate(); err != nil {
		return nil, err
	}
	return rd.p, nil
}

func (rd *reader) objects(sec node) error {
	var pending []string
	items := sec.list[1:]
	for i := 0; i < len(items); i++ {
		it := items[i]
		if !it.leaf {
			return fmt.Errorf("line %d: unexpected list in objects: %w", it.line, ErrSyntax)
		}
		if it.atom != "-" {
			pending = append(pending, it.atom)
			continue
		}
		if i+1 >= len(items) || !items[i+1].leaf {
			return fmt.Errorf("line %d: '-' without a type: %w", it.line, ErrSyntax)
		}
		i++
		typ := strings.ToLower(items[i].atom)
		for _, id := range pending {
			if err := rd.declare(id, typ, it.line); err != nil {
				return err
			}
		}
		pending = nil
	}
	for _, id := range pending {
		rd.opts.Logger("object %s has no type, ignoring it", id)
	}
	return nil
}

func (rd *reader) declare(id, typ string, line int) error {
	g := rd.p.Graph
	var err error
	switch typ {
	case "cell":
		c := maze.NewCell(id)
		if !c.HasCoord {
			rd.opts.Logger("cell %s has no coordinate", id)
		}
		err = g.AddCell(c)
	case "door":
		err = g.AddDoor(maze.Door{ID: id})
	case "elevator":
		err = g.AddElevator(maze.Elevator{ID: id})
	case "button":
		if _, dup := rd.buttons[id]; dup {
			err = fmt.Errorf("button %s: %w", id, maze.ErrDuplicateObject)
			break
		}
		rd.buttons[id] = &maze.Button{ID: id}
		rd.order = append(rd.order, id)
	case "agent":
		if _, dup := rd.agents[id]; dup {
			err = fmt.Errorf("agent %s: %w", id, maze.ErrDuplicateObject)
			break
		}
		rd.agents[id] = len(rd.p.Agents)
		rd.p.Agents = append(rd.p.Agents, maze.Agent{ID: id})
	default:
		rd.opts.Logger("line %d: object %s has unknown type %s, ignoring it", line, id, typ)
		return nil
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	return nil
}

// agent returns the agent with the given id, which must be declared.
func (rd *reader) agent(id string, line int) (*maze.Agent, error) {
	i, ok := rd.agents[id]
	if !ok {
		return nil, fmt.Errorf("line %d: agent %s: %w", line, id, maze.ErrDanglingReference)
	}
	return &rd.p.Agents[i], nil
}

// legacyAgent returns the default agent, declaring it if needed.
func (rd *reader) legacyAgent() *maze.Agent {
	id := rd.opts.DefaultAgent
	if id == "" {
		return nil
	}
	i, ok := rd.agents[id]
	if !ok {
		i = len(rd.p.Agents)
		rd.agents[id] = i
		rd.p.Agents = append(rd.p.Agents, maze.Agent{ID: id})
	}
	return &rd.p.Agents[i]
}

func (rd *reader) fact(f node) error {
	g := rd.p.Graph
	args, flat := f.atoms()
	arity := func(n int) bool {
		if flat && len(args) == n {
			return true
		}
		rd.opts.Logger("line %d: malformed fact %s", f.line, f)
		return false
	}
	edge := func(e maze.Edge) error {
		if err := g.AddEdge(e); err != nil {
			return fmt.Errorf("line %d: %w", f.line, err)
		}
		return nil
	}

	switch f.head() {
	case "agent-at":
		if !arity(2) {
			return nil
		}
		a, err := rd.agent(args[0], f.line)
		if err != nil {
			return err
		}
		a.Start = args[1]
	case "agent-free", "=":
	case "adjacent":
		if arity(2) {
			return edge(maze.Edge{From: args[0], To: args[1], Kind: maze.KindOpen})
		}
	case "connects":
		if arity(3) {
			return edge(maze.Edge{From: args[1], To: args[2], Kind: maze.KindDoor, Via: args[0]})
		}
	case "stairs":
		if arity(2) {
			return edge(maze.Edge{From: args[0], To: args[1], Kind: maze.KindStairs})
		}
	case "elevator-connects":
		if arity(3) {
			return edge(maze.Edge{From: args[1], To: args[2], Kind: maze.KindElevator, Via: args[0]})
		}
	case "up", "up-elevator":
		if !arity(2) {
			return nil
		}
		b, ok := rd.buttons[args[0]]
		if !ok {
			return fmt.Errorf("line %d: button %s: %w", f.line, args[0], maze.ErrDanglingReference)
		}
		b.Target, b.Opens = maze.TargetDoor, args[1]
		if f.head() == "up-elevator" {
			b.Target = maze.TargetElevator
		}
	case "button-at":
		if !arity(2) {
			return nil
		}
		b, ok := rd.buttons[args[0]]
		if !ok {
			return fmt.Errorf("line %d: button %s: %w", f.line, args[0], maze.ErrDanglingReference)
		}
		b.Cell = args[1]
	case "at":
		return rd.at(f)
	default:
		rd.opts.Logger("line %d: skipping unknown fact %s", f.line, f)
	}
	return nil
}

// at handles both the legacy (at <cell>) fact and timed door predicates.
func (rd *reader) at(f node) error {
	if args, ok := f.atoms(); ok && len(args) == 1 {
		a := rd.legacyAgent()
		if a == nil {
			rd.opts.Logger("line %d: no default agent for %s", f.line, f)
			return nil
		}
		a.Start = args[0]
		return nil
	}
	if len(f.list) != 3 || !f.list[1].leaf {
		rd.opts.Logger("line %d: skipping %s", f.line, f)
		return nil
	}
	t, err := strconv.ParseFloat(f.list[1].atom, 64)
	if err != nil {
		rd.opts.Logger("line %d: bad time in %s", f.line, f)
		return nil
	}
	eff, open := f.list[2], true
	if eff.head() == "not" && len(eff.list) == 2 {
		eff, open = eff.list[1], false
	}
	args, ok := eff.atoms()
	if eff.head() != "door-open" || !ok || len(args) != 1 {
		rd.opts.Logger("line %d: skipping timed effect %s", f.line, f)
		return nil
	}
	rd.p.Timed = append(rd.p.Timed, maze.TimedPredicate{Time: t, Door: args[0], Open: open})
	return nil
}

func (rd *reader) finishButtons() error {
	for _, id := range rd.order {
		b := rd.buttons[id]
		if b.Cell == "" || b.Opens == "" {
			rd.opts.Logger("button %s has no location or target, ignoring it", id)
			continue
		}
		if err := rd.p.Graph.AddButton(*b); err != nil {
			return err
		}
	}
	return nil
}

func (rd *reader) goal(f node) error {
	switch f.head() {
	case "and":
		for _, c := range f.list[1:] {
			if err := rd.goal(c); err != nil {
				return err
			}
		}
	case "agent-at":
		args, ok := f.atoms()
		if !ok || len(args) != 2 {
			rd.opts.Logger("line %d: malformed goal %s", f.line, f)
			return nil
		}
		a, err := rd.agent(args[0], f.line)
		if err != nil {
			return err
		}
		a.Goal = args[1]
	case "at":
		args, ok := f.atoms()
		if !ok || len(args) != 1 {
			rd.opts.Logger("line %d: malformed goal %s", f.line, f)
			return nil
		}
		if a := rd.legacyAgent(); a != nil {
			a.Goal = args[0]
		}
	default:
		rd.opts.Logger("line %d: skipping goal %s", f.line, f)
	}
	return nil
}
