// Package render groups the output formats for maze problems.
//
//   - [dot]: Graphviz digraph of cells and edges, with SVG through go-graphviz
//   - [gridview]: terminal grid of one layer with an optional agent path
//   - [scene]: JSON payload for the 3D viewer, including agent paths
//
// Each subpackage reads a maze.Problem and never mutates it.
package render
