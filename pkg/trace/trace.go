// Package trace parses the textual output of a temporal planner into an
// ordered list of timed actions.
//
// Planner output is noisy: colour codes, search progress, statistics and
// often several improving solutions. [Parse] strips ANSI escapes, keeps the
// text after the last solution marker and reads every line of the form
//
//	<start>: (<name> <arg>...) [<duration>]
//
// Other lines are ignored. Statistics lines anywhere in the output are
// collected into [Stats].
package trace

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// SolutionMarker precedes each solution in planner output.
const SolutionMarker = ";;;; Solution Found"

var (
	ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	planRe = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?):\s+\(([^)]+)\)\s+\[([0-9]+(?:\.[0-9]+)?)\]`)
)

// Action is one timed step of a plan.
type Action struct {
	Start    float64
	Duration float64
	Name     string
	Args     []string
	// Line is the 1-based line number within the solution segment.
	Line int
}

// End returns Start + Duration.
func (a Action) End() float64 { return a.Start + a.Duration }

// Text returns the action body as written between the parentheses.
func (a Action) Text() string {
	return strings.Join(append([]string{a.Name}, a.Args...), " ")
}

// Outcome classifies a parsed planner run.
type Outcome int

const (
	// OutcomeSolved means at least one action was found.
	OutcomeSolved Outcome = iota
	// OutcomeEmptySolution means a solution marker was present but the
	// plan has no actions: the initial state already satisfies the goal.
	OutcomeEmptySolution
	// OutcomeNoPlan means the planner produced output but no solution.
	OutcomeNoPlan
	// OutcomeNoOutput means the input was empty or whitespace.
	OutcomeNoOutput
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSolved:
		return "solved"
	case OutcomeEmptySolution:
		return "empty-solution"
	case OutcomeNoPlan:
		return "no-plan"
	case OutcomeNoOutput:
		return "no-output"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Plan is the parsed planner output.
type Plan struct {
	// Actions are ordered by start time, ties in source order.
	Actions []Action
	// MarkerFound reports whether a solution marker was present.
	MarkerFound bool
	// HasOutput reports whether the input had any non-blank content.
	HasOutput bool
	Stats     Stats
}

// Outcome classifies the plan.
func (p *Plan) Outcome() Outcome {
	switch {
	case len(p.Actions) > 0:
		return OutcomeSolved
	case p.MarkerFound:
		return OutcomeEmptySolution
	case p.HasOutput:
		return OutcomeNoPlan
	default:
		return OutcomeNoOutput
	}
}

// Makespan returns the latest action end time, or 0 for an empty plan.
func (p *Plan) Makespan() float64 {
	var m float64
	for _, a := range p.Actions {
		m = max(m, a.End())
	}
	return m
}

// StripANSI removes terminal colour escape sequences.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// Parse parses raw planner output. It never fails: unrecognised lines are
// skipped.
func Parse(text string) *Plan {
	text = StripANSI(text)
	p := &Plan{
		HasOutput: strings.TrimSpace(text) != "",
		Stats:     parseStats(text),
	}

	segment := text
	if i := strings.LastIndex(text, SolutionMarker); i >= 0 {
		p.MarkerFound = true
		segment = text[i+len(SolutionMarker):]
	}
	for n, line := range strings.Split(segment, "\n") {
		if a, ok := parseLine(line); ok {
			a.Line = n + 1
			p.Actions = append(p.Actions, a)
		}
	}
	slices.SortStableFunc(p.Actions, func(a, b Action) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return p
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader) (*Plan, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read planner output: %w", err)
	}
	return Parse(string(b)), nil
}

func parseLine(line string) (Action, bool) {
	m := planRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return Action{}, false
	}
	fields := strings.Fields(m[2])
	if len(fields) == 0 {
		return Action{}, false
	}
	start, err1 := strconv.ParseFloat(m[1], 64)
	dur, err2 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil {
		return Action{}, false
	}
	return Action{
		Start:    start,
		Duration: dur,
		Name:     fields[0],
		Args:     fields[1:],
	}, true
}

// WritePlan writes actions in the canonical plan file format, one per line:
//
//	0.000: (move a1 c00 c01) [1.000]
func WritePlan(w io.Writer, actions []Action) error {
	var sb strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&sb, "%.3f: (%s) [%.3f]\n", a.Start, a.Text(), a.Duration)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
