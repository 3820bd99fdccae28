package chart

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Linear maps a continuous domain onto a continuous range
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns the identity scale over [0, 1]
func NewLinear() Linear {
	return Linear{d0: 0, d1: 1, r0: 0, r1: 1}
}

func (s Linear) Domain(a, b float64) Linear {
	s.d0, s.d1 = a, b
	return s
}

func (s Linear) Range(a, b float64) Linear {
	s.r0, s.r1 = a, b
	return s
}

// Map converts a domain value to the range. A zero-width domain maps
// everything to the middle of the range.
func (s Linear) Map(v float64) float64 {
	span := s.d1 - s.d0
	t := 0.5
	if span != 0 {
		t = (v - s.d0) / span
	}
	return s.r0 + t*(s.r1-s.r0)
}

// Ticks returns about n round values inside the domain (steps of 1, 2 or 5
// times a power of ten)
func (s Linear) Ticks(n int) []float64 {
	lo, hi := math.Min(s.d0, s.d1), math.Max(s.d0, s.d1)
	if n <= 0 || hi == lo {
		if hi == lo {
			return []float64{lo}
		}
		return nil
	}

	step := tickStep(lo, hi, n)
	var ticks []float64
	if step >= 1 {
		for i := math.Ceil(lo / step); i <= math.Floor(hi/step); i++ {
			ticks = append(ticks, i*step)
		}
		return ticks
	}
	// divide by the inverse step so ticks like 0.6 stay exact
	inc := math.Round(1 / step)
	for i := math.Ceil(lo * inc); i <= math.Floor(hi*inc); i++ {
		ticks = append(ticks, i/inc)
	}
	return ticks
}

func tickStep(lo, hi float64, n int) float64 {
	raw := (hi - lo) / float64(n)
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	switch err := raw / power; {
	case err >= math.Sqrt(50):
		return power * 10
	case err >= math.Sqrt(10):
		return power * 5
	case err >= math.Sqrt(2):
		return power * 2
	}
	return power
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
