package model

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Tree is one decision tree in flattened node-array form, the layout the
// training pipeline exports. A leaf has left child -1. Values holds one
// scalar per node for regression trees and a class distribution for
// classification trees.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Values        [][]float64 `json:"values"`
}

// Forest is an ensemble of trees exported by the offline training
// pipeline. Regression forests average leaf values; classification
// forests average leaf class distributions.
type Forest struct {
	Trees    []Tree `json:"trees"`
	NClasses int    `json:"n_classes,omitempty"`
}

// LoadForest reads a forest artifact and validates its structure.
func LoadForest(path string) (*Forest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrNotLoaded, "reading forest file %s: %v", path, err)
	}
	var f Forest
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(ErrNotLoaded, "unmarshalling forest file %s: %v", path, err)
	}
	if len(f.Trees) == 0 {
		return nil, errors.Wrapf(ErrNotLoaded, "forest file %s has no trees", path)
	}
	for i, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if n == 0 || len(t.ChildrenRight) != n || len(t.Feature) != n ||
			len(t.Threshold) != n || len(t.Values) != n {
			return nil, errors.Wrapf(ErrNotLoaded, "forest file %s: tree %d has inconsistent node arrays", path, i)
		}
	}
	return &f, nil
}

// Predict returns the forest regression output: the mean of the tree leaf
// values.
func (f *Forest) Predict(features []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, ErrNotLoaded
	}
	sum := 0.0
	for i := range f.Trees {
		leaf, err := f.Trees[i].walk(features)
		if err != nil {
			return 0, err
		}
		sum += leaf[0]
	}
	return sum / float64(len(f.Trees)), nil
}

// PredictProbabilities returns the mean of the per-tree class
// distributions, renormalized to sum to 1.
func (f *Forest) PredictProbabilities(features []float64) ([]float64, error) {
	if len(f.Trees) == 0 || f.NClasses == 0 {
		return nil, ErrNotLoaded
	}
	probs := make([]float64, f.NClasses)
	for i := range f.Trees {
		leaf, err := f.Trees[i].walk(features)
		if err != nil {
			return nil, err
		}
		if len(leaf) != f.NClasses {
			return nil, errors.Wrapf(ErrNotLoaded, "tree %d leaf has %d classes, expected %d", i, len(leaf), f.NClasses)
		}
		total := 0.0
		for _, v := range leaf {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range leaf {
			probs[c] += v / total
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.Trees))
	}
	return probs, nil
}

func (t *Tree) walk(features []float64) ([]float64, error) {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		fi := t.Feature[node]
		if fi < 0 || fi >= len(features) {
			return nil, errors.Errorf("tree references feature %d, vector has %d", fi, len(features))
		}
		if features[fi] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
		if node < 0 || node >= len(t.ChildrenLeft) {
			return nil, errors.Errorf("tree walk escaped node array at %d", node)
		}
	}
	return t.Values[node], nil
}
