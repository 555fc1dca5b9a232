package engine

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ecopackai/ecopack/pkg/data"
)

const topRecommendations = 5

// Neutral defaults substituted when no catalog material matches a
// packaging class. Graceful degradation, not an error.
const (
	neutralGrade          = "B"
	neutralSuitability    = 0.5
	neutralCO2Impact      = 0.6
	neutralCostEfficiency = 0.5
)

// PackagingOption is one ranked recommendation.
type PackagingOption struct {
	Rank                int     `json:"rank"`
	Packaging           string  `json:"packaging"`
	Confidence          float64 `json:"confidence"`
	EcoGrade            string  `json:"eco_grade"`
	SuitabilityScore    float64 `json:"suitability_score"`
	CO2ImpactIndex      float64 `json:"co2_impact_index"`
	CostEfficiencyIndex float64 `json:"cost_efficiency_index"`
}

// Recommendation is the full answer to one prediction request.
type Recommendation struct {
	PredictedCostUSD float64            `json:"predicted_cost_usd"`
	PredictedCO2Kg   float64            `json:"predicted_co2_kg"`
	CO2SavingPct     float64            `json:"co2_saving_pct"`
	Options          []*PackagingOption `json:"recommendations"`
}

// Recommend scores one request: builds the feature vector, runs the cost
// and CO2 regressors and the packaging classifier, and assembles the
// top-5 packaging options annotated from the material catalog.
func (e *Engine) Recommend(r *Request) (*Recommendation, error) {
	features, err := e.BuildFeatures(r)
	if err != nil {
		return nil, err
	}

	cost, err := e.cost.Predict(features)
	if err != nil {
		return nil, errors.Wrap(err, "cost prediction failed")
	}
	co2, err := e.co2.Predict(features)
	if err != nil {
		return nil, errors.Wrap(err, "co2 prediction failed")
	}
	probs, err := e.pkg.PredictProbabilities(features)
	if err != nil {
		return nil, errors.Wrap(err, "packaging prediction failed")
	}

	return &Recommendation{
		PredictedCostUSD: data.Round(cost, 2),
		PredictedCO2Kg:   data.Round(co2, 3),
		CO2SavingPct:     e.co2SavingPct(co2),
		Options:          e.assembleOptions(probs),
	}, nil
}

// assembleOptions picks the top probability classes (stable sort, ties go
// to the lower class index) and annotates each with its representative
// material or the neutral defaults.
func (e *Engine) assembleOptions(probs []float64) []*PackagingOption {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})

	n := topRecommendations
	if len(idx) < n {
		n = len(idx)
	}

	options := make([]*PackagingOption, 0, n)
	for rank := 1; rank <= n; rank++ {
		class := idx[rank-1]
		opt := &PackagingOption{
			Rank:       rank,
			Packaging:  e.packagingName(class),
			Confidence: data.Round(probs[class]*100, 1),
		}
		if m, ok := e.findRepresentativeMaterial(opt.Packaging); ok {
			opt.EcoGrade = m.EcoGrade
			opt.SuitabilityScore = data.Round(m.SuitabilityScore, 3)
			opt.CO2ImpactIndex = data.Round(m.CO2ImpactIndex, 3)
			opt.CostEfficiencyIndex = data.Round(m.CostEfficiencyIndex, 3)
		} else {
			opt.EcoGrade = neutralGrade
			opt.SuitabilityScore = neutralSuitability
			opt.CO2ImpactIndex = neutralCO2Impact
			opt.CostEfficiencyIndex = neutralCostEfficiency
		}
		options = append(options, opt)
	}
	return options
}

func (e *Engine) packagingName(class int) string {
	if class < len(e.meta.PackagingClasses) {
		return e.meta.PackagingClasses[class]
	}
	return ""
}
