package data

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	pgMaterialsDDL = `CREATE TABLE materials (
			id                          BIGINT PRIMARY KEY,
			name                        TEXT NOT NULL,
			category                    TEXT NOT NULL,
			density_kg_m3               DOUBLE PRECISION NOT NULL,
			tensile_strength_mpa        DOUBLE PRECISION NOT NULL,
			co2_emission_kg             DOUBLE PRECISION NOT NULL,
			cost_per_kg                 DOUBLE PRECISION NOT NULL,
			biodegradable               BOOLEAN NOT NULL,
			co2_impact_index            DOUBLE PRECISION,
			cost_efficiency_index       DOUBLE PRECISION,
			material_suitability_score  DOUBLE PRECISION,
			sustainability_rank         INTEGER,
			eco_grade                   TEXT
		)`

	pgHistoryDDL = `CREATE TABLE packaging_history (
			id                          BIGINT PRIMARY KEY,
			order_date                  DATE,
			category                    TEXT NOT NULL,
			weight_kg                   DOUBLE PRECISION NOT NULL,
			shipping_mode               TEXT NOT NULL,
			distance_km                 DOUBLE PRECISION NOT NULL,
			packaging_used              TEXT NOT NULL,
			cost_usd                    DOUBLE PRECISION NOT NULL,
			co2_emission_kg             DOUBLE PRECISION NOT NULL,
			volume_cm3                  DOUBLE PRECISION,
			dimensional_weight_ratio    DOUBLE PRECISION,
			cost_per_km                 DOUBLE PRECISION,
			co2_per_kg                  DOUBLE PRECISION,
			month                       INTEGER,
			day_of_week                 INTEGER
		)`

	pgInsertMaterialSQL = `INSERT INTO materials VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	pgInsertHistorySQL = `INSERT INTO packaging_history VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	selectShipmentExportSQL = `SELECT
			id, order_date, category, weight_kg, shipping_mode, distance_km,
			packaging_used, cost_usd, co2_emission_kg, volume_cm3,
			dimensional_weight_ratio, cost_per_km, co2_per_kg, month, day_of_week
		FROM shipment`
)

// ExportToPostgres copies both feature tables into a Postgres database
// with replace semantics: tables are dropped and rebuilt in one
// transaction so readers never observe a partial export.
func ExportToPostgres(db *sql.DB, dsn string) error {
	if db == nil {
		return errDBNotInitialized
	}
	if dsn == "" {
		return errors.New("postgres dsn required")
	}

	pg, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Wrap(err, "failed to open postgres connection")
	}
	defer pg.Close()

	if err := pg.Ping(); err != nil {
		return errors.Wrap(err, "failed to ping postgres")
	}

	tx, err := pg.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin postgres transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	matCount, err := exportMaterials(db, tx)
	if err != nil {
		return err
	}
	histCount, err := exportHistory(db, tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit postgres transaction")
	}

	log.Infof("exported %d materials and %d history rows to postgres", matCount, histCount)
	return nil
}

func exportMaterials(db *sql.DB, tx *sql.Tx) (int, error) {
	if _, err := tx.Exec("DROP TABLE IF EXISTS materials"); err != nil {
		return 0, errors.Wrap(err, "failed to drop materials table")
	}
	if _, err := tx.Exec(pgMaterialsDDL); err != nil {
		return 0, errors.Wrap(err, "failed to create materials table")
	}

	list, err := GetMaterials(db, &MaterialQuery{Limit: 1 << 20})
	if err != nil {
		return 0, err
	}

	for _, m := range list {
		if _, err := tx.Exec(pgInsertMaterialSQL,
			m.ID, m.Name, m.Category, m.DensityKgM3, m.TensileMPa,
			m.CO2EmissionKg, m.CostPerKg, m.Biodegradable,
			m.CO2ImpactIndex, m.CostEfficiencyIndex,
			m.SuitabilityScore, m.SustainabilityRank, m.EcoGrade,
		); err != nil {
			return 0, errors.Wrapf(err, "failed to export material: %d", m.ID)
		}
	}
	return len(list), nil
}

func exportHistory(db *sql.DB, tx *sql.Tx) (int, error) {
	if _, err := tx.Exec("DROP TABLE IF EXISTS packaging_history"); err != nil {
		return 0, errors.Wrap(err, "failed to drop history table")
	}
	if _, err := tx.Exec(pgHistoryDDL); err != nil {
		return 0, errors.Wrap(err, "failed to create history table")
	}

	rows, err := db.Query(selectShipmentExportSQL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query shipments for export")
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id                                 int64
			orderDate                          sql.NullString
			category, mode, packaging          string
			weight, distance, cost, co2        float64
			volume, ratio, costPerKm, co2PerKg sql.NullFloat64
			month, dow                         sql.NullInt64
		)
		if err := rows.Scan(&id, &orderDate, &category, &weight, &mode, &distance,
			&packaging, &cost, &co2, &volume, &ratio, &costPerKm, &co2PerKg,
			&month, &dow); err != nil {
			return 0, errors.Wrap(err, "failed to scan shipment for export")
		}
		if _, err := tx.Exec(pgInsertHistorySQL,
			id, orderDate, category, weight, mode, distance,
			packaging, cost, co2, volume, ratio, costPerKm, co2PerKg,
			month, dow,
		); err != nil {
			return 0, errors.Wrapf(err, "failed to export shipment: %d", id)
		}
		count++
	}
	return count, rows.Err()
}
