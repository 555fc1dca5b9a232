package data

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Composite score weights. They sum to 1.0 so the suitability score stays
// in [0,1] given bounded inputs.
const (
	co2InversionWeight = 0.65
	co2BioWeight       = 0.35

	suitabilityCO2Weight     = 0.35
	suitabilityCostWeight    = 0.25
	suitabilityTensileWeight = 0.20
	suitabilityDensityWeight = 0.10
	suitabilityBioWeight     = 0.10
)

// Eco grade thresholds applied to the suitability score, never to the rank.
const (
	gradeAThreshold = 0.70
	gradeBThreshold = 0.50
	gradeCThreshold = 0.30
)

// ScoreCatalog runs the full batch scoring pass over the material catalog:
// min-max normalization of the four numeric columns, CO2 impact index,
// catalog-wide cost efficiency index, composite suitability score, dense
// rank (1 = best, ties broken by first-seen order) and eco grade.
// Any non-finite required value fails the whole pass.
func ScoreCatalog(list []*Material) error {
	if len(list) == 0 {
		return errors.New("cannot score an empty catalog")
	}

	density := make([]float64, len(list))
	tensile := make([]float64, len(list))
	co2 := make([]float64, len(list))
	cost := make([]float64, len(list))
	for i, m := range list {
		if err := validateMaterial(m); err != nil {
			return err
		}
		density[i] = m.DensityKgM3
		tensile[i] = m.TensileMPa
		co2[i] = m.CO2EmissionKg
		cost[i] = m.CostPerKg
	}

	densityScaler, err := FitMinMax(density)
	if err != nil {
		return err
	}
	tensileScaler, err := FitMinMax(tensile)
	if err != nil {
		return err
	}
	co2Scaler, err := FitMinMax(co2)
	if err != nil {
		return err
	}
	costScaler, err := FitMinMax(cost)
	if err != nil {
		return err
	}

	categories := NewLabelEncoder()

	// First pass: norms, CO2 impact index, and the raw cost efficiency
	// values that still need a catalog-wide rescale.
	raw := make([]float64, len(list))
	for i, m := range list {
		m.DensityNorm = densityScaler.Transform(m.DensityKgM3)
		m.TensileNorm = tensileScaler.Transform(m.TensileMPa)
		m.CO2Norm = co2Scaler.Transform(m.CO2EmissionKg)
		m.CostNorm = costScaler.Transform(m.CostPerKg)
		m.CategoryEncoded = categories.Fit(m.Category)

		bio := 0.0
		if m.Biodegradable {
			bio = 1.0
		}
		m.CO2ImpactIndex = Round(co2InversionWeight*(1-m.CO2Norm)+co2BioWeight*bio, 4)

		perf := (m.TensileNorm + (1 - m.DensityNorm)) / 2
		raw[i] = perf / (m.CostNorm + Epsilon)
	}

	// Second pass: rescale raw cost efficiency to [0,1] across the catalog.
	rawScaler, err := FitMinMax(raw)
	if err != nil {
		return err
	}
	for i, m := range list {
		m.CostEfficiencyIndex = Round(rawScaler.Transform(raw[i]), 4)

		bio := 0.0
		if m.Biodegradable {
			bio = 1.0
		}
		m.SuitabilityScore = Round(
			suitabilityCO2Weight*m.CO2ImpactIndex+
				suitabilityCostWeight*m.CostEfficiencyIndex+
				suitabilityTensileWeight*m.TensileNorm+
				suitabilityDensityWeight*(1-m.DensityNorm)+
				suitabilityBioWeight*bio, 4)
		m.EcoGrade = GradeForScore(m.SuitabilityScore)
	}

	rankCatalog(list)
	return nil
}

// GradeForScore buckets a suitability score into an eco grade.
func GradeForScore(score float64) string {
	switch {
	case score >= gradeAThreshold:
		return "A"
	case score >= gradeBThreshold:
		return "B"
	case score >= gradeCThreshold:
		return "C"
	default:
		return "D"
	}
}

// rankCatalog assigns sustainability ranks 1..N by descending score.
// The sort is stable so ties keep their first-seen order.
func rankCatalog(list []*Material) {
	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return list[idx[a]].SuitabilityScore > list[idx[b]].SuitabilityScore
	})
	for rank, i := range idx {
		list[i].SustainabilityRank = rank + 1
	}
}

func validateMaterial(m *Material) error {
	checks := []struct {
		name string
		val  float64
	}{
		{"density_kg_m3", m.DensityKgM3},
		{"tensile_strength_mpa", m.TensileMPa},
		{"co2_emission_kg", m.CO2EmissionKg},
		{"cost_per_kg", m.CostPerKg},
	}
	for _, c := range checks {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return errors.Wrapf(ErrDataIntegrity, "material %d: %s is not numeric", m.ID, c.name)
		}
	}
	return nil
}
