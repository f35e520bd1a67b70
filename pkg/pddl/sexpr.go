package pddl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is returned for unbalanced parentheses.
var ErrSyntax = errors.New("syntax error")

// node is an atom or a parenthesised list.
type node struct {
	atom string
	list []node
	leaf bool
	line int
}

func (n node) String() string {
	if n.leaf {
		return n.atom
	}
	parts := make([]string, len(n.list))
	for i, c := range n.list {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// head returns the lower-cased first atom of a list, or "".
func (n node) head() string {
	if n.leaf || len(n.list) == 0 || !n.list[0].leaf {
		return ""
	}
	return strings.ToLower(n.list[0].atom)
}

// atoms returns the list's elements after the head if all are atoms.
func (n node) atoms() ([]string, bool) {
	if n.leaf || len(n.list) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(n.list)-1)
	for _, c := range n.list[1:] {
		if !c.leaf {
			return nil, false
		}
		out = append(out, c.atom)
	}
	return out, true
}

type token struct {
	text string
	line int
}

func tokenize(src string) []token {
	var (
		toks []token
		line = 1
		atom strings.Builder
	)
	flush := func() {
		if atom.Len() > 0 {
			toks = append(toks, token{atom.String(), line})
			atom.Reset()
		}
	}
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == ';':
			flush()
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i--
		case ch == '(' || ch == ')':
			flush()
			toks = append(toks, token{string(ch), line})
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			flush()
			if ch == '\n' {
				line++
			}
		default:
			atom.WriteByte(ch)
		}
	}
	flush()
	return toks
}

// parseSexprs reads every top-level expression in src.
func parseSexprs(src string) ([]node, error) {
	toks := tokenize(src)
	var (
		stack [][]node
		lines []int
		top   []node
	)
	for _, t := range toks {
		switch t.text {
		case "(":
			stack = append(stack, nil)
			lines = append(lines, t.line)
		case ")":
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: unexpected ')': %w", t.line, ErrSyntax)
			}
			n := node{list: stack[len(stack)-1], line: lines[len(lines)-1]}
			stack, lines = stack[:len(stack)-1], lines[:len(lines)-1]
			if len(stack) == 0 {
				top = append(top, n)
			} else {
				stack[len(stack)-1] = append(stack[len(stack)-1], n)
			}
		default:
			n := node{atom: t.text, leaf: true, line: t.line}
			if len(stack) == 0 {
				top = append(top, n)
			} else {
				stack[len(stack)-1] = append(stack[len(stack)-1], n)
			}
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("line %d: unclosed '(': %w", lines[len(lines)-1], ErrSyntax)
	}
	return top, nil
}
