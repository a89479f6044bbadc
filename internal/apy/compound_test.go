package apy

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestCompound(t *testing.T) {
	tests := []struct {
		name    string
		returns []*float64
		want    float64
	}{
		{"empty series", nil, 0.0},
		{"single return", []*float64{f(10)}, 10.0},
		{"two positive returns compound", []*float64{f(10), f(10)}, 21.0},
		{"negative returns multiply not add", []*float64{f(-10), f(-5)}, -14.5},
		{"all nil entries", []*float64{nil, nil}, 0.0},
		{"nil skipped not zeroed", []*float64{nil, f(10)}, 10.0},
		{"zero return is real data", []*float64{f(0), f(0)}, 0.0},
		{"mixed signs", []*float64{f(100), f(-50)}, 0.0},
		{"total loss", []*float64{f(-100)}, -100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compound(tt.returns)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Compound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompoundOrderInsensitiveValue(t *testing.T) {
	// Mathematically the product commutes; the contract still requires
	// callers to feed oldest-first, this just pins the arithmetic.
	a := Compound([]*float64{f(3), f(7), f(-2)})
	b := Compound([]*float64{f(-2), f(7), f(3)})
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("products differ: %v vs %v", a, b)
	}
}
