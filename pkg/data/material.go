package data

import (
	"database/sql"

	"github.com/pkg/errors"
)

const (
	insertMaterialSQL = `INSERT INTO material (
			id, name, category, density_kg_m3, tensile_strength_mpa,
			co2_emission_kg, cost_per_kg, biodegradable, category_encoded,
			density_norm, tensile_norm, co2_norm, cost_norm,
			co2_impact_index, cost_efficiency_index,
			material_suitability_score, sustainability_rank, eco_grade
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectMaterialSQL = `SELECT
			id, name, category, density_kg_m3, tensile_strength_mpa,
			co2_emission_kg, cost_per_kg, biodegradable, category_encoded,
			density_norm, tensile_norm, co2_norm, cost_norm,
			co2_impact_index, cost_efficiency_index,
			material_suitability_score, sustainability_rank, eco_grade
		FROM material
		WHERE category = COALESCE(?, category)
		  AND eco_grade = COALESCE(?, eco_grade)
		ORDER BY sustainability_rank
		LIMIT ?`
)

// Material is one packaging material with the derived fields added by the
// catalog scoring pass. Rows are computed once per pipeline run and
// immutable thereafter.
type Material struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	DensityKgM3   float64 `json:"density_kg_m3"`
	TensileMPa    float64 `json:"tensile_strength_mpa"`
	CO2EmissionKg float64 `json:"co2_emission_kg"`
	CostPerKg     float64 `json:"cost_per_kg"`
	Biodegradable bool    `json:"biodegradable"`

	CategoryEncoded int     `json:"category_encoded"`
	DensityNorm     float64 `json:"density_norm"`
	TensileNorm     float64 `json:"tensile_norm"`
	CO2Norm         float64 `json:"co2_norm"`
	CostNorm        float64 `json:"cost_norm"`

	CO2ImpactIndex      float64 `json:"co2_impact_index"`
	CostEfficiencyIndex float64 `json:"cost_efficiency_index"`
	SuitabilityScore    float64 `json:"material_suitability_score"`
	SustainabilityRank  int     `json:"sustainability_rank"`
	EcoGrade            string  `json:"eco_grade"`
}

// MaterialQuery filters the catalog. Nil fields match everything.
type MaterialQuery struct {
	Category *string
	Grade    *string
	Limit    int
}

// SaveMaterials writes a scored catalog in a single transaction.
func SaveMaterials(db *sql.DB, list []*Material) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertMaterialSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare material statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for _, m := range list {
		_, err = tx.Stmt(stmt).Exec(
			m.ID, m.Name, m.Category, m.DensityKgM3, m.TensileMPa,
			m.CO2EmissionKg, m.CostPerKg, boolToInt(m.Biodegradable), m.CategoryEncoded,
			m.DensityNorm, m.TensileNorm, m.CO2Norm, m.CostNorm,
			m.CO2ImpactIndex, m.CostEfficiencyIndex,
			m.SuitabilityScore, m.SustainabilityRank, m.EcoGrade,
		)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return errors.Wrap(rbErr, "failed to rollback transaction")
			}
			return errors.Wrapf(err, "failed to insert material: %d", m.ID)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// GetMaterials returns catalog rows ordered by sustainability rank.
func GetMaterials(db *sql.DB, q *MaterialQuery) ([]*Material, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if q == nil {
		q = &MaterialQuery{}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = materialQueryLimitDefault
	}

	rows, err := db.Query(selectMaterialSQL, q.Category, q.Grade, limit)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to query materials")
	}
	defer rows.Close()

	list := make([]*Material, 0)
	for rows.Next() {
		m := &Material{}
		var bio int
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.DensityKgM3, &m.TensileMPa,
			&m.CO2EmissionKg, &m.CostPerKg, &bio, &m.CategoryEncoded,
			&m.DensityNorm, &m.TensileNorm, &m.CO2Norm, &m.CostNorm,
			&m.CO2ImpactIndex, &m.CostEfficiencyIndex,
			&m.SuitabilityScore, &m.SustainabilityRank, &m.EcoGrade,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan material row")
		}
		m.Biodegradable = bio != 0
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetTopMaterials returns the n best-ranked materials.
func GetTopMaterials(db *sql.DB, n int) ([]*Material, error) {
	return GetMaterials(db, &MaterialQuery{Limit: n})
}

// CountMaterials returns the number of catalog rows.
func CountMaterials(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM material").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count materials")
	}
	return n, nil
}

const materialQueryLimitDefault = 50

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
