// Package pddl reads and writes the planning-problem text consumed by the
// external temporal planner.
//
// [Write] renders a [maze.Problem] as a problem definition with typed
// objects, an init block grouped into commented sections, a goal
// conjunction of agent-at facts and a total-cost metric. Output is stable:
// edges are sorted, so an unchanged problem always serializes to the same
// bytes.
//
// [Parse] reads such text back through a small s-expression reader. It
// understands the predicate families [Write] emits, timed door predicates
// and the legacy single-agent (at <cell>) form. Content it does not
// recognise is reported through [ReadOptions.Logger] and skipped.
package pddl
