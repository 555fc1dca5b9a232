// Package model loads the trained model artifacts and exposes them to the
// scoring core behind narrow capability interfaces. Training and tuning
// happen offline in the modeling pipeline; this package only evaluates.
package model

import "github.com/pkg/errors"

// Regressor predicts a single scalar from an ordered feature vector.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

// Classifier predicts a class-probability vector from an ordered feature
// vector. Index i corresponds to training-time class index i.
type Classifier interface {
	PredictProbabilities(features []float64) ([]float64, error)
}

var (
	// ErrNotLoaded indicates the model artifacts are missing or invalid.
	ErrNotLoaded = errors.New("model artifacts not loaded")
)
