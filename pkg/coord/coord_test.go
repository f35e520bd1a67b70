package coord

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		scheme Scheme
		c      Coordinate
		want   string
	}{
		{SchemeFlat2D, Coordinate{Row: 1, Col: 2}, "c12"},
		{SchemeFlat3D, Coordinate{Layer: 3, Row: 0, Col: 9}, "c309"},
		{SchemeDelimited, Coordinate{Layer: 12, Row: 0, Col: 105}, "c12_0_105"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := tt.scheme.Encode(tt.c)
			if err != nil {
				t.Fatalf("Encode(%v) error: %v", tt.c, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.c, got, tt.want)
			}
		})
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		scheme Scheme
		c      Coordinate
	}{
		{"flat2d wide column", SchemeFlat2D, Coordinate{Row: 0, Col: 10}},
		{"flat2d with layer", SchemeFlat2D, Coordinate{Layer: 1}},
		{"flat3d tall layer", SchemeFlat3D, Coordinate{Layer: 10}},
		{"negative", SchemeDelimited, Coordinate{Row: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.scheme.Encode(tt.c)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Encode(%v) error = %v, want ErrOutOfRange", tt.c, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []Scheme{SchemeFlat2D, SchemeFlat3D, SchemeDelimited} {
		layers := 10
		if s == SchemeFlat2D {
			layers = 1
		}
		for l := 0; l < layers; l++ {
			for r := 0; r < 10; r++ {
				for c := 0; c < 10; c++ {
					want := Coordinate{Layer: l, Row: r, Col: c}
					tok := s.MustEncode(want)
					got, _, ok := Decode(tok)
					if !ok || got != want {
						t.Fatalf("%s: Decode(%q) = %v, %v; want %v", s, tok, got, ok, want)
					}
				}
			}
		}
	}

	wide := Coordinate{Layer: 11, Row: 250, Col: 3}
	got, scheme, ok := Decode(SchemeDelimited.MustEncode(wide))
	if !ok || got != wide || scheme != SchemeDelimited {
		t.Errorf("wide round trip = %v, %v, %v", got, scheme, ok)
	}
}

func TestDecodeSeparators(t *testing.T) {
	for _, tok := range []string{"c1_2_3", "c1,2,3", "c1-2-3"} {
		got, scheme, ok := Decode(tok)
		if !ok || scheme != SchemeDelimited || got != (Coordinate{Layer: 1, Row: 2, Col: 3}) {
			t.Errorf("Decode(%q) = %v, %v, %v", tok, got, scheme, ok)
		}
	}
}

func TestDecodeFailsClosed(t *testing.T) {
	for _, tok := range []string{
		"",
		"c",
		"c1",
		"c1234",     // fixed width cannot be segmented
		"c10_2",     // two components
		"hall",      // opaque
		"c_start",   // opaque but cell shaped
		"x12",       // wrong prefix
		"c1_2_3_4",  // too many components
		"c99999999999999999999_0_0",
	} {
		if c, _, ok := Decode(tok); ok {
			t.Errorf("Decode(%q) = %v, want not a coordinate", tok, c)
		}
	}
}

func TestSchemeFor(t *testing.T) {
	tests := []struct {
		layers, rows, cols int
		want               Scheme
	}{
		{1, 5, 5, SchemeFlat2D},
		{1, 10, 10, SchemeFlat2D},
		{2, 10, 10, SchemeFlat3D},
		{1, 11, 3, SchemeDelimited},
		{11, 2, 2, SchemeDelimited},
	}
	for _, tt := range tests {
		if got := SchemeFor(tt.layers, tt.rows, tt.cols); got != tt.want {
			t.Errorf("SchemeFor(%d,%d,%d) = %s, want %s", tt.layers, tt.rows, tt.cols, got, tt.want)
		}
	}
}

func TestIsCellToken(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"c00", true},
		{"c0_1_2", true},
		{"c_start", true},
		{"a1", false},
		{"robot", false},
		{"c", false},
		{"b1", false},
	}
	for _, tt := range tests {
		if got := IsCellToken(tt.tok); got != tt.want {
			t.Errorf("IsCellToken(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestPosition(t *testing.T) {
	if got := Position(Coordinate{Layer: 3, Row: 1, Col: 7}); got != [3]int{7, 1, 3} {
		t.Errorf("Position = %v, want [7 1 3]", got)
	}
}
