package data

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MinMax rescales a numeric column so the minimum maps to 0 and the
// maximum to 1. Must be fitted and applied identically at training time
// and whenever new values are normalized against the same bounds.
type MinMax struct {
	Min float64
	Max float64
}

// FitMinMax computes the bounds of a column.
func FitMinMax(vals []float64) (*MinMax, error) {
	if len(vals) == 0 {
		return nil, errors.New("cannot fit scaler on empty column")
	}
	s := &MinMax{Min: vals[0], Max: vals[0]}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrap(ErrDataIntegrity, "non-finite value in column")
		}
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	if s.Max == s.Min {
		// Degenerate (constant) column. Transform maps everything to 0
		// instead of dividing by zero.
		log.Warnf("constant column (min=max=%v), normalizing to 0", s.Min)
	}
	return s, nil
}

// Transform rescales a single value to [0,1]. Constant columns map to 0.
func (s *MinMax) Transform(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// TransformAll rescales a whole column.
func (s *MinMax) TransformAll(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = s.Transform(v)
	}
	return out
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
