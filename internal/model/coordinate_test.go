package model_test

import (
	"testing"

	m "github.com/sawtelle/boatsinker/internal/model"
)

func TestCoordinateStringRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    m.Coordinate
	}{
		{"letter form", m.Coordinate{X: 1, Y: 1}},
		{"letter form z", m.Coordinate{X: 26, Y: 99}},
		{"numeric form", m.Coordinate{X: 27, Y: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := tt.c.String()
			got, err := m.ParseCoordinate(s)
			if err != nil {
				t.Fatalf("ParseCoordinate(%q) error: %v", s, err)
			}
			if got != tt.c {
				t.Errorf("round trip = %v, want %v", got, tt.c)
			}
		})
	}
}

func TestCoordinateInvalid(t *testing.T) {
	t.Parallel()

	if m.Invalid.IsValid() {
		t.Error("zero Coordinate should be invalid")
	}
	if (m.Coordinate{X: 1, Y: 0}).Shift(m.North).IsValid() {
		t.Error("shifting off the north edge should be invalid")
	}
	if (m.Coordinate{X: 0, Y: 1}).Shift(m.West).IsValid() {
		t.Error("shifting off the west edge should be invalid")
	}
}

func TestCoordinateParity(t *testing.T) {
	t.Parallel()

	a := m.Coordinate{X: 1, Y: 1}
	b := m.Coordinate{X: 2, Y: 2}
	c := m.Coordinate{X: 1, Y: 2}

	if a.Parity() != b.Parity() {
		t.Error("(1,1) and (2,2) should share parity")
	}
	if a.Parity() == c.Parity() {
		t.Error("(1,1) and (1,2) should differ in parity")
	}
}

func TestParseCoordinateRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "1", "zz", "a", "1,2,3"} {
		if _, err := m.ParseCoordinate(s); err == nil {
			t.Errorf("ParseCoordinate(%q) expected error, got nil", s)
		}
	}
}
