package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	MetricsFileName    = "metrics.json"
	CostForestFileName = "forest_cost.json"
	CO2ForestFileName  = "forest_co2.json"
	PkgForestFileName  = "forest_pkg.json"
)

// RegressionScore holds the offline evaluation of one regressor.
type RegressionScore struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// ClassifierScore holds the offline evaluation of the classifier.
type ClassifierScore struct {
	Accuracy float64 `json:"accuracy"`
}

// Metrics is the model metadata object written by the training pipeline.
// The feature-name and class-list orderings are load-bearing: encoding
// index i at serving time must match training-time index i.
type Metrics struct {
	CostModel        RegressionScore `json:"cost_model"`
	CO2Model         RegressionScore `json:"co2_model"`
	PkgClassifier    ClassifierScore `json:"pkg_classifier"`
	Features         []string        `json:"features"`
	PackagingClasses []string        `json:"packaging_classes"`
	CategoryClasses  []string        `json:"category_classes"`
	ShippingClasses  []string        `json:"shipping_classes"`
}

// LoadMetrics reads and validates the model metadata file.
func LoadMetrics(path string) (*Metrics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrNotLoaded, "reading metrics file %s: %v", path, err)
	}
	var m Metrics
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(ErrNotLoaded, "unmarshalling metrics file %s: %v", path, err)
	}
	if len(m.Features) == 0 {
		return nil, errors.Wrap(ErrNotLoaded, "metrics file has no feature list")
	}
	if len(m.PackagingClasses) == 0 || len(m.CategoryClasses) == 0 || len(m.ShippingClasses) == 0 {
		return nil, errors.Wrap(ErrNotLoaded, "metrics file has empty class lists")
	}
	return &m, nil
}

// Artifacts bundles everything the serving path loads at startup.
type Artifacts struct {
	Metrics *Metrics
	Cost    Regressor
	CO2     Regressor
	Pkg     Classifier
}

// LoadArtifacts loads the metadata and the three forests from a directory.
func LoadArtifacts(dir string) (*Artifacts, error) {
	if dir == "" {
		return nil, errors.New("artifact directory required")
	}

	meta, err := LoadMetrics(filepath.Join(dir, MetricsFileName))
	if err != nil {
		return nil, err
	}
	cost, err := LoadForest(filepath.Join(dir, CostForestFileName))
	if err != nil {
		return nil, err
	}
	co2, err := LoadForest(filepath.Join(dir, CO2ForestFileName))
	if err != nil {
		return nil, err
	}
	pkg, err := LoadForest(filepath.Join(dir, PkgForestFileName))
	if err != nil {
		return nil, err
	}
	if pkg.NClasses != len(meta.PackagingClasses) {
		return nil, errors.Wrapf(ErrNotLoaded,
			"classifier has %d classes, metadata lists %d packaging classes",
			pkg.NClasses, len(meta.PackagingClasses))
	}

	return &Artifacts{Metrics: meta, Cost: cost, CO2: co2, Pkg: pkg}, nil
}
