// Package coord converts between maze coordinates and cell identifiers.
//
// Three naming schemes are in circulation:
//
//	SchemeFlat2D     c<row><col>            (single digits)
//	SchemeFlat3D     c<layer><row><col>     (single digits)
//	SchemeDelimited  c<layer>_<row>_<col>   (any width, "_", "," or "-")
//
// [Decode] tries the delimited form first because it is the only one that is
// unambiguous for multi-digit components. Fixed-width tokens are accepted
// only when every component is exactly one digit; anything else decodes to
// "not a coordinate" and the caller keeps it as an opaque cell name.
package coord

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrOutOfRange is returned by [Scheme.Encode] when a coordinate cannot be
// represented by the scheme.
var ErrOutOfRange = errors.New("coordinate out of range for scheme")

// Coordinate locates a cell. Layer is zero for 2D mazes.
type Coordinate struct {
	Layer int
	Row   int
	Col   int
}

// String returns the coordinate as (layer,row,col).
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Layer, c.Row, c.Col)
}

// Position maps a coordinate onto scene axes: x=col, y=row, z=layer.
func Position(c Coordinate) [3]int {
	return [3]int{c.Col, c.Row, c.Layer}
}

// Scheme selects how coordinates are spelled as cell identifiers.
type Scheme int

const (
	SchemeFlat2D Scheme = iota + 1
	SchemeFlat3D
	SchemeDelimited
)

func (s Scheme) String() string {
	switch s {
	case SchemeFlat2D:
		return "flat2d"
	case SchemeFlat3D:
		return "flat3d"
	case SchemeDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// Encode spells c under the scheme.
func (s Scheme) Encode(c Coordinate) (string, error) {
	if c.Layer < 0 || c.Row < 0 || c.Col < 0 {
		return "", fmt.Errorf("%s %s: %w", s, c, ErrOutOfRange)
	}
	switch s {
	case SchemeFlat2D:
		if c.Layer != 0 || c.Row > 9 || c.Col > 9 {
			return "", fmt.Errorf("%s %s: %w", s, c, ErrOutOfRange)
		}
		return fmt.Sprintf("c%d%d", c.Row, c.Col), nil
	case SchemeFlat3D:
		if c.Layer > 9 || c.Row > 9 || c.Col > 9 {
			return "", fmt.Errorf("%s %s: %w", s, c, ErrOutOfRange)
		}
		return fmt.Sprintf("c%d%d%d", c.Layer, c.Row, c.Col), nil
	case SchemeDelimited:
		return fmt.Sprintf("c%d_%d_%d", c.Layer, c.Row, c.Col), nil
	default:
		return "", fmt.Errorf("unknown scheme %d", int(s))
	}
}

// MustEncode is like Encode but panics on error. It is meant for fixed
// topologies whose coordinates are known to be in range.
func (s Scheme) MustEncode(c Coordinate) string {
	tok, err := s.Encode(c)
	if err != nil {
		panic(err)
	}
	return tok
}

// SchemeFor returns the narrowest scheme that is a bijection over a maze of
// the given dimensions.
func SchemeFor(layers, rows, cols int) Scheme {
	if rows > 10 || cols > 10 || layers > 10 {
		return SchemeDelimited
	}
	if layers > 1 {
		return SchemeFlat3D
	}
	return SchemeFlat2D
}

var (
	delimitedRe = regexp.MustCompile(`^c(\d+)[,_-](\d+)[,_-](\d+)$`)
	flat3DRe    = regexp.MustCompile(`^c(\d)(\d)(\d)$`)
	flat2DRe    = regexp.MustCompile(`^c(\d)(\d)$`)
	cellTokenRe = regexp.MustCompile(`^c[A-Za-z0-9_,-]+$`)
)

// Decode parses a cell identifier. The boolean is false when the token does
// not follow any scheme; such names remain valid opaque cells.
func Decode(token string) (Coordinate, Scheme, bool) {
	if m := delimitedRe.FindStringSubmatch(token); m != nil {
		l, errL := strconv.Atoi(m[1])
		r, errR := strconv.Atoi(m[2])
		c, errC := strconv.Atoi(m[3])
		if errL != nil || errR != nil || errC != nil {
			return Coordinate{}, 0, false
		}
		return Coordinate{Layer: l, Row: r, Col: c}, SchemeDelimited, true
	}
	if m := flat3DRe.FindStringSubmatch(token); m != nil {
		return Coordinate{Layer: digit(m[1]), Row: digit(m[2]), Col: digit(m[3])}, SchemeFlat3D, true
	}
	if m := flat2DRe.FindStringSubmatch(token); m != nil {
		return Coordinate{Row: digit(m[1]), Col: digit(m[2])}, SchemeFlat2D, true
	}
	return Coordinate{}, 0, false
}

// IsCellToken reports whether token is shaped like a cell identifier:
// a leading "c" followed by letters, digits, "_", "," or "-". It is looser
// than Decode so that opaque cell names also count as cells.
func IsCellToken(token string) bool {
	return cellTokenRe.MatchString(token)
}

func digit(s string) int { return int(s[0] - '0') }
