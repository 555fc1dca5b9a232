package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stumpTree splits on feature 0 at the threshold and returns the given
// leaf values left (<=) and right (>).
func stumpTree(threshold float64, left, right []float64) Tree {
	return Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{threshold, -2, -2},
		Values:        [][]float64{{0}, left, right},
	}
}

func TestForest_Predict(t *testing.T) {
	f := &Forest{Trees: []Tree{
		stumpTree(5, []float64{10}, []float64{20}),
		stumpTree(5, []float64{12}, []float64{30}),
	}}

	got, err := f.Predict([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, 11.0, got)

	got, err = f.Predict([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 25.0, got)
}

func TestForest_Predict_ThresholdBoundary(t *testing.T) {
	f := &Forest{Trees: []Tree{stumpTree(5, []float64{1}, []float64{2})}}

	// <= goes left, matching the exported traversal rule.
	got, err := f.Predict([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestForest_Predict_LeafOnly(t *testing.T) {
	f := &Forest{Trees: []Tree{{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1},
		Feature:       []int{-2},
		Threshold:     []float64{-2},
		Values:        [][]float64{{42}},
	}}}
	got, err := f.Predict([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestForest_Predict_BadFeatureIndex(t *testing.T) {
	f := &Forest{Trees: []Tree{stumpTree(5, []float64{1}, []float64{2})}}
	_, err := f.Predict([]float64{})
	assert.Error(t, err)
}

func TestForest_Predict_Empty(t *testing.T) {
	f := &Forest{}
	_, err := f.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestForest_PredictProbabilities(t *testing.T) {
	// Leaf counts are unnormalized, each tree normalizes before the
	// ensemble average.
	f := &Forest{
		NClasses: 2,
		Trees: []Tree{
			stumpTree(5, []float64{3, 1}, []float64{0, 4}),
			stumpTree(5, []float64{1, 1}, []float64{2, 2}),
		},
	}

	probs, err := f.PredictProbabilities([]float64{2})
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.625, probs[0], 1e-9)
	assert.InDelta(t, 0.375, probs[1], 1e-9)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)

	probs, err = f.PredictProbabilities([]float64{9})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, probs[0], 1e-9)
	assert.InDelta(t, 0.75, probs[1], 1e-9)
}

func TestForest_PredictProbabilities_NoClasses(t *testing.T) {
	f := &Forest{Trees: []Tree{stumpTree(5, []float64{1}, []float64{2})}}
	_, err := f.PredictProbabilities([]float64{1})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestForest_PredictProbabilities_ClassMismatch(t *testing.T) {
	f := &Forest{
		NClasses: 3,
		Trees:    []Tree{stumpTree(5, []float64{1, 2}, []float64{3, 4})},
	}
	_, err := f.PredictProbabilities([]float64{1})
	assert.Error(t, err)
}

func TestLoadForest(t *testing.T) {
	f := &Forest{NClasses: 2, Trees: []Tree{stumpTree(5, []float64{1, 2}, []float64{3, 4})}}
	path := writeForest(t, f)

	got, err := LoadForest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NClasses)
	require.Len(t, got.Trees, 1)
	assert.Equal(t, f.Trees[0].Threshold, got.Trees[0].Threshold)
}

func TestLoadForest_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadForest(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotLoaded)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0600))
	_, err = LoadForest(bad)
	assert.ErrorIs(t, err, ErrNotLoaded)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"trees":[]}`), 0600))
	_, err = LoadForest(empty)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadForest_InconsistentArrays(t *testing.T) {
	f := &Forest{Trees: []Tree{{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1, -1},
		Feature:       []int{-2},
		Threshold:     []float64{-2},
		Values:        [][]float64{{1}},
	}}}
	_, err := LoadForest(writeForest(t, f))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func writeForest(t *testing.T, f *Forest) string {
	t.Helper()
	b, err := json.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "forest.json")
	require.NoError(t, os.WriteFile(path, b, 0600))
	return path
}
