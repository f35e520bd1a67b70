// Package dot renders a maze graph as a Graphviz digraph and, through
// Graphviz, as SVG.
//
// Every unique (kind, from, to, via) edge becomes one statement, labelled
// and coloured by kind:
//
//	open      gray   "adjacent"
//	door      red    "door:<id>"
//	stairs    brown  "stairs"
//	elevator  blue   "elevator:<id>"
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tempomaze/pkg/maze"
)

// Options configures DOT output.
type Options struct {
	// RankDir is the Graphviz layout direction. Defaults to "LR".
	RankDir string
	// Detailed declares every cell with its coordinate and role in the
	// label. When false only edge statements are emitted.
	Detailed bool
}

// Style is the label and colour of an edge kind.
type Style struct {
	Label string
	Color string
}

// EdgeStyle returns how e is drawn.
func EdgeStyle(e maze.Edge) Style {
	switch e.Kind {
	case maze.KindDoor:
		return Style{Label: "door:" + e.Via, Color: "red"}
	case maze.KindStairs:
		return Style{Label: "stairs", Color: "brown"}
	case maze.KindElevator:
		return Style{Label: "elevator:" + e.Via, Color: "blue"}
	default:
		return Style{Label: "adjacent", Color: "gray"}
	}
}

// ToDOT converts the graph to DOT, edges in insertion order.
func ToDOT(g *maze.Graph, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf, opts)
	if opts.Detailed {
		writeCells(&buf, g)
	}
	writeEdges(&buf, g.Edges())
	buf.WriteString("}\n")
	return buf.String()
}

// EdgesToDOT converts a bare edge list to DOT, dropping repeated edges.
func EdgesToDOT(edges []maze.Edge, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf, opts)
	writeEdges(&buf, edges)
	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer, opts Options) {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}
	buf.WriteString("digraph maze {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", rankdir)
}

func writeCells(buf *bytes.Buffer, g *maze.Graph) {
	roles := map[string][]string{}
	for _, d := range g.Doors() {
		if d.Cell != "" {
			roles[d.Cell] = append(roles[d.Cell], "door "+d.ID)
		}
	}
	for _, b := range g.Buttons() {
		roles[b.Cell] = append(roles[b.Cell], "button "+b.ID)
	}
	for _, c := range g.Cells() {
		label := c.ID
		if c.HasCoord {
			label += "\n" + c.Coord.String()
		}
		for _, r := range roles[c.ID] {
			label += "\n" + r
		}
		attrs := fmt.Sprintf("label=%q", label)
		if len(roles[c.ID]) > 0 {
			attrs += ", style=filled, fillcolor=lightyellow"
		}
		fmt.Fprintf(buf, "  %q [%s];\n", c.ID, attrs)
	}
	buf.WriteString("\n")
}

func writeEdges(buf *bytes.Buffer, edges []maze.Edge) {
	seen := make(map[maze.Edge]bool, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		s := EdgeStyle(e)
		fmt.Fprintf(buf, "  %q -> %q [label=%q, color=%q];\n", e.From, e.To, s.Label, s.Color)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe   = regexp.MustCompile(`<svg\b[^>]*>`)
	viewBoxRe  = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
	sizeAttrRe = regexp.MustCompile(`\s+(?:width|height|viewBox)="[^"]*"`)
)

// normalizeViewBox rewrites the size of the root element so the drawing
// scales from a zero origin. Other root attributes and any nested svg
// elements are left alone.
func normalizeViewBox(svg []byte) []byte {
	loc := svgTagRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	match := viewBoxRe.FindSubmatch(tag)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	rest := sizeAttrRe.ReplaceAll(tag[len("<svg"):len(tag)-1], nil)

	var out bytes.Buffer
	out.Grow(len(svg))
	out.Write(svg[:loc[0]])
	fmt.Fprintf(&out, `<svg viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f"%s>`, w, h, w, h, rest)
	out.Write(svg[loc[1]:])
	return out.Bytes()
}

// Format is an output format of the dot command and API.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want dot or svg)", s)
	}
}
