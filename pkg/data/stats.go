package data

import (
	"database/sql"
	"math"

	"github.com/pkg/errors"
)

const (
	selectSummarySQL = `SELECT
			(SELECT COUNT(*) FROM shipment),
			(SELECT COALESCE(SUM(co2_emission_kg), 0) FROM shipment),
			(SELECT COALESCE(AVG(cost_usd), 0) FROM shipment),
			(SELECT COUNT(*) FROM material),
			(SELECT COUNT(*) FROM material WHERE biodegradable = 1),
			(SELECT COUNT(*) FROM material WHERE eco_grade = 'A')
	`

	// Potential CO2 saving: spread between the dirtiest and cleanest
	// packaging type as a share of the dirtiest.
	selectPackagingSpreadSQL = `SELECT
			COALESCE(MAX(avg_co2), 0), COALESCE(MIN(avg_co2), 0)
		FROM (
			SELECT AVG(co2_emission_kg) AS avg_co2
			FROM shipment
			GROUP BY packaging_used
		)
	`

	selectPackagingUsageSQL = `SELECT
			packaging_used,
			COUNT(*) AS order_count,
			AVG(co2_emission_kg) AS avg_co2,
			AVG(cost_usd) AS avg_cost,
			SUM(co2_emission_kg) AS total_co2
		FROM shipment
		GROUP BY packaging_used
		ORDER BY order_count DESC
	`

	// Monthly buckets exclude rows whose order date was coerced to NULL.
	selectCO2TrendSQL = `SELECT
			substr(order_date, 1, 7) AS month_year,
			SUM(co2_emission_kg) AS total_co2,
			AVG(co2_emission_kg) AS avg_co2,
			COUNT(*) AS order_count
		FROM shipment
		WHERE order_date IS NOT NULL
		GROUP BY month_year
		ORDER BY month_year
	`

	selectCostTrendSQL = `SELECT
			substr(order_date, 1, 7) AS month_year,
			SUM(cost_usd) AS total_cost,
			AVG(cost_usd) AS avg_cost,
			COUNT(*) AS order_count
		FROM shipment
		WHERE order_date IS NOT NULL
		GROUP BY month_year
		ORDER BY month_year
	`

	selectCategoryStatsSQL = `SELECT
			category,
			COUNT(*) AS total_orders,
			AVG(co2_emission_kg) AS avg_co2,
			AVG(cost_usd) AS avg_cost,
			SUM(co2_emission_kg) AS total_co2,
			AVG(weight_kg) AS avg_weight,
			AVG(distance_km) AS avg_distance
		FROM shipment
		GROUP BY category
		ORDER BY total_co2 DESC
	`

	selectShippingStatsSQL = `SELECT
			shipping_mode,
			COUNT(*) AS total_orders,
			AVG(co2_emission_kg) AS avg_co2,
			AVG(cost_usd) AS avg_cost,
			SUM(co2_emission_kg) AS total_co2
		FROM shipment
		GROUP BY shipping_mode
		ORDER BY shipping_mode
	`

	selectCO2OrderedSQL = `SELECT co2_emission_kg
		FROM shipment
		ORDER BY co2_emission_kg
		LIMIT 2 OFFSET ?
	`

	// Fallback when there is no history to take a percentile over.
	co2PercentileDefault = 100.0
)

// SummaryStats are the KPI metrics for the dashboard.
type SummaryStats struct {
	TotalOrders           int     `json:"total_orders"`
	TotalCO2Kg            float64 `json:"total_co2_kg"`
	AvgCostUSD            float64 `json:"avg_cost_usd"`
	TotalMaterials        int     `json:"total_materials"`
	BiodegradableCount    int     `json:"biodegradable_count"`
	BiodegradablePct      float64 `json:"biodegradable_pct"`
	GradeAMaterials       int     `json:"grade_a_materials"`
	PotentialCO2SavingPct float64 `json:"potential_co2_saving_pct"`
}

type PackagingUsage struct {
	PackagingUsed string  `json:"packaging_used"`
	OrderCount    int     `json:"order_count"`
	AvgCO2        float64 `json:"avg_co2"`
	AvgCost       float64 `json:"avg_cost"`
	TotalCO2      float64 `json:"total_co2"`
}

type TrendPoint struct {
	MonthYear  string  `json:"month_year"`
	Total      float64 `json:"total"`
	Avg        float64 `json:"avg"`
	OrderCount int     `json:"order_count"`
}

type CategoryStats struct {
	Category    string  `json:"category"`
	TotalOrders int     `json:"total_orders"`
	AvgCO2      float64 `json:"avg_co2"`
	AvgCost     float64 `json:"avg_cost"`
	TotalCO2    float64 `json:"total_co2"`
	AvgWeight   float64 `json:"avg_weight"`
	AvgDistance float64 `json:"avg_distance"`
}

type ShippingStats struct {
	ShippingMode string  `json:"shipping_mode"`
	TotalOrders  int     `json:"total_orders"`
	AvgCO2       float64 `json:"avg_co2"`
	AvgCost      float64 `json:"avg_cost"`
	TotalCO2     float64 `json:"total_co2"`
}

// GetSummaryStats returns the headline KPIs over both feature tables.
func GetSummaryStats(db *sql.DB) (*SummaryStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &SummaryStats{}
	if err := db.QueryRow(selectSummarySQL).Scan(
		&s.TotalOrders, &s.TotalCO2Kg, &s.AvgCostUSD,
		&s.TotalMaterials, &s.BiodegradableCount, &s.GradeAMaterials,
	); err != nil {
		return nil, errors.Wrap(err, "failed to query summary stats")
	}

	s.TotalCO2Kg = Round(s.TotalCO2Kg, 1)
	s.AvgCostUSD = Round(s.AvgCostUSD, 2)
	if s.TotalMaterials > 0 {
		s.BiodegradablePct = Round(float64(s.BiodegradableCount)/float64(s.TotalMaterials)*100, 1)
	}

	var maxCO2, minCO2 float64
	if err := db.QueryRow(selectPackagingSpreadSQL).Scan(&maxCO2, &minCO2); err != nil {
		return nil, errors.Wrap(err, "failed to query packaging spread")
	}
	s.PotentialCO2SavingPct = Round((maxCO2-minCO2)/math.Max(maxCO2, 1)*100, 1)

	return s, nil
}

// GetPackagingUsage returns per-packaging-type usage, busiest first.
func GetPackagingUsage(db *sql.DB) ([]*PackagingUsage, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectPackagingUsageSQL)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to query packaging usage")
	}
	defer rows.Close()

	list := make([]*PackagingUsage, 0)
	for rows.Next() {
		u := &PackagingUsage{}
		if err := rows.Scan(&u.PackagingUsed, &u.OrderCount, &u.AvgCO2, &u.AvgCost, &u.TotalCO2); err != nil {
			return nil, errors.Wrap(err, "failed to scan packaging usage row")
		}
		u.AvgCO2 = Round(u.AvgCO2, 3)
		u.AvgCost = Round(u.AvgCost, 3)
		u.TotalCO2 = Round(u.TotalCO2, 3)
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetCO2Trend returns the monthly CO2 time series.
func GetCO2Trend(db *sql.DB) ([]*TrendPoint, error) {
	return getTrend(db, selectCO2TrendSQL)
}

// GetCostTrend returns the monthly cost time series.
func GetCostTrend(db *sql.DB) ([]*TrendPoint, error) {
	return getTrend(db, selectCostTrendSQL)
}

func getTrend(db *sql.DB, query string) ([]*TrendPoint, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(query)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to query trend")
	}
	defer rows.Close()

	list := make([]*TrendPoint, 0)
	for rows.Next() {
		p := &TrendPoint{}
		if err := rows.Scan(&p.MonthYear, &p.Total, &p.Avg, &p.OrderCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan trend row")
		}
		p.Total = Round(p.Total, 3)
		p.Avg = Round(p.Avg, 3)
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetCategoryStats returns per-product-category sustainability stats.
func GetCategoryStats(db *sql.DB) ([]*CategoryStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectCategoryStatsSQL)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to query category stats")
	}
	defer rows.Close()

	list := make([]*CategoryStats, 0)
	for rows.Next() {
		c := &CategoryStats{}
		if err := rows.Scan(&c.Category, &c.TotalOrders, &c.AvgCO2, &c.AvgCost,
			&c.TotalCO2, &c.AvgWeight, &c.AvgDistance); err != nil {
			return nil, errors.Wrap(err, "failed to scan category stats row")
		}
		c.AvgCO2 = Round(c.AvgCO2, 3)
		c.AvgCost = Round(c.AvgCost, 3)
		c.TotalCO2 = Round(c.TotalCO2, 3)
		c.AvgWeight = Round(c.AvgWeight, 3)
		c.AvgDistance = Round(c.AvgDistance, 3)
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetShippingStats returns the air-vs-road comparison.
func GetShippingStats(db *sql.DB) ([]*ShippingStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectShippingStatsSQL)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to query shipping stats")
	}
	defer rows.Close()

	list := make([]*ShippingStats, 0)
	for rows.Next() {
		s := &ShippingStats{}
		if err := rows.Scan(&s.ShippingMode, &s.TotalOrders, &s.AvgCO2, &s.AvgCost, &s.TotalCO2); err != nil {
			return nil, errors.Wrap(err, "failed to scan shipping stats row")
		}
		s.AvgCO2 = Round(s.AvgCO2, 3)
		s.AvgCost = Round(s.AvgCost, 3)
		s.TotalCO2 = Round(s.TotalCO2, 3)
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetCO2Percentile90 returns the 90th percentile of per-order CO2 with
// linear interpolation between the two straddling observations. Returns a
// fixed default when the history table is empty.
func GetCO2Percentile90(db *sql.DB) (float64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	n, err := CountShipments(db)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return co2PercentileDefault, nil
	}

	pos := 0.9 * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)

	rows, err := db.Query(selectCO2OrderedSQL, lo)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query co2 percentile")
	}
	defer rows.Close()

	vals := make([]float64, 0, 2)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return 0, errors.Wrap(err, "failed to scan co2 percentile row")
		}
		vals = append(vals, v)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return co2PercentileDefault, nil
	}
	if len(vals) == 1 || frac == 0 {
		return vals[0], nil
	}
	return vals[0] + frac*(vals[1]-vals[0]), nil
}
