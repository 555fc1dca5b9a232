// Package engine holds the per-request scoring context: the immutable
// material catalog, trained model artifacts and label encodings loaded
// once at startup. Engines never mutate shared state after construction,
// so concurrent requests are safe; pipeline re-runs build a fresh store
// offline and a fresh engine is constructed from it.
package engine

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ecopackai/ecopack/pkg/data"
	"github.com/ecopackai/ecopack/pkg/model"
)

const catalogLoadLimit = 1 << 20

// Engine answers packaging recommendation requests against a loaded
// catalog and model set.
type Engine struct {
	meta    *model.Metrics
	catalog []*data.Material
	catEnc  *data.LabelEncoder
	shipEnc *data.LabelEncoder

	cost model.Regressor
	co2  model.Regressor
	pkg  model.Classifier

	co2P90 float64
	now    func() time.Time
}

// Option overrides an engine default.
type Option func(*Engine)

// WithClock replaces the request-time clock. The feature vector includes
// the current calendar month, so tests pin this.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New builds an engine from already-loaded components.
func New(meta *model.Metrics, catalog []*data.Material,
	cost, co2 model.Regressor, pkg model.Classifier,
	co2P90 float64, opts ...Option) (*Engine, error) {

	if meta == nil {
		return nil, errors.New("model metadata required")
	}
	if cost == nil || co2 == nil || pkg == nil {
		return nil, errors.New("cost, co2 and packaging predictors required")
	}

	e := &Engine{
		meta:    meta,
		catalog: catalog,
		catEnc:  data.EncoderFromClasses(meta.CategoryClasses),
		shipEnc: data.EncoderFromClasses(meta.ShippingClasses),
		cost:    cost,
		co2:     co2,
		pkg:     pkg,
		co2P90:  co2P90,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Load builds an engine from the feature store and the artifact directory.
func Load(db *sql.DB, modelDir string, opts ...Option) (*Engine, error) {
	arts, err := model.LoadArtifacts(modelDir)
	if err != nil {
		return nil, err
	}

	catalog, err := data.GetMaterials(db, &data.MaterialQuery{Limit: catalogLoadLimit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load material catalog")
	}

	p90, err := data.GetCO2Percentile90(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load co2 percentile")
	}

	return New(arts.Metrics, catalog, arts.Cost, arts.CO2, arts.Pkg, p90, opts...)
}

// Metrics exposes the loaded model metadata.
func (e *Engine) Metrics() *model.Metrics {
	return e.meta
}

// CatalogSize returns the number of loaded materials.
func (e *Engine) CatalogSize() int {
	return len(e.catalog)
}

// co2SavingPct computes the saving relative to the historical 90th
// percentile, clamped at zero.
func (e *Engine) co2SavingPct(predicted float64) float64 {
	pct := data.Round((1-predicted/math.Max(e.co2P90, 1))*100, 1)
	return math.Max(0, pct)
}

// findRepresentativeMaterial joins a packaging class name to the catalog
// by a lowercase prefix substring match (first 10 characters before any
// parenthetical qualifier), picking the best sustainability rank. This is
// a heuristic join; swap for a key join if the two catalogs are unified.
func (e *Engine) findRepresentativeMaterial(packaging string) (*data.Material, bool) {
	kw := strings.ToLower(strings.TrimSpace(strings.SplitN(packaging, "(", 2)[0]))
	if len(kw) > 10 {
		kw = kw[:10]
	}
	if kw == "" {
		return nil, false
	}

	var best *data.Material
	for _, m := range e.catalog {
		if !strings.Contains(strings.ToLower(m.Name), kw) {
			continue
		}
		if best == nil || m.SustainabilityRank < best.SustainabilityRank {
			best = m
		}
	}
	return best, best != nil
}
