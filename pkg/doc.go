// Package pkg holds the libraries behind tempomaze, a toolchain for
// temporal maze planning problems.
//
// # Overview
//
// A maze is a directed graph of cells. Some cells carry buttons that
// toggle traversability of other cells, and agents move between adjacent
// cells under a temporal planner. The packages split the work like this:
//
//  1. [coord] - encode and decode cell coordinates in identifiers
//  2. [maze] - the graph model: cells, edges, buttons, agents
//  3. [build] - procedural grid and stress-test problem builders
//  4. [pddl] - write and read problem files in the planning language
//  5. [trace] - parse planner output into actions, stats and reports
//  6. [route] - reconstruct per-agent cell paths from a plan
//  7. [render] - DOT, SVG, terminal grid and 3D scene output
//  8. [pipeline] - cached orchestration of parse, route and render
//
// Supporting packages: [cache], [config], [errors], [observability],
// [server] and [buildinfo].
//
// # Data Flow
//
//	grid/stress builder  or  problem file
//	         ↓
//	    [pddl] (problem text <-> maze.Problem)
//	         ↓
//	    planner (external)  ->  [trace] (plan actions)
//	         ↓
//	    [route] (cell path per agent)
//	         ↓
//	    [render] (DOT, SVG, grid, scene JSON)
//
// # Quick Start
//
//	p, err := build.ParseGrid(strings.NewReader("S.\n.G\n"), build.GridOptions{Agent: "a1"})
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := pddl.Write(&buf, p); err != nil {
//	    return err
//	}
//
// The command-line front end lives in cmd/tempomaze.
package pkg
