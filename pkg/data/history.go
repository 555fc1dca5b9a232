package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	insertShipmentSQL = `INSERT INTO shipment (
			id, order_date, item_name, category, weight_kg, volumetric_weight_kg,
			l_cm, w_cm, h_cm, fragility, moisture_sens, shipping_mode,
			distance_km, packaging_used, cost_usd, co2_emission_kg,
			volume_cm3, dimensional_weight_ratio, cost_per_km, co2_per_kg,
			month, day_of_week, category_encoded, shipping_mode_encoded,
			packaging_used_encoded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	orderDateFormat = "2006-01-02"
)

// Shipment is one historical order with the derived features added by the
// enrichment pass. A zero OrderDate means the source date was unparseable;
// such rows carry NULL date fields and are excluded from date-bucketed
// stats.
type Shipment struct {
	OrderID            int64     `json:"id"`
	OrderDate          time.Time `json:"order_date"`
	ItemName           string    `json:"item_name"`
	Category           string    `json:"category"`
	WeightKg           float64   `json:"weight_kg"`
	VolumetricWeightKg float64   `json:"volumetric_weight_kg"`
	LengthCm           float64   `json:"l_cm"`
	WidthCm            float64   `json:"w_cm"`
	HeightCm           float64   `json:"h_cm"`
	Fragility          int       `json:"fragility"`
	MoistureSens       bool      `json:"moisture_sensitive"`
	ShippingMode       string    `json:"shipping_mode"`
	DistanceKm         float64   `json:"distance_km"`
	PackagingUsed      string    `json:"packaging_used"`
	CostUSD            float64   `json:"cost_usd"`
	CO2EmissionKg      float64   `json:"co2_emission_kg"`

	VolumeCm3              float64 `json:"volume_cm3"`
	DimensionalWeightRatio float64 `json:"dimensional_weight_ratio"`
	CostPerKm              float64 `json:"cost_per_km"`
	CO2PerKg               float64 `json:"co2_per_kg"`
	Month                  int     `json:"month"`
	DayOfWeek              int     `json:"day_of_week"`
	CategoryEncoded        int     `json:"category_encoded"`
	ShippingModeEncoded    int     `json:"shipping_mode_encoded"`
	PackagingUsedEncoded   int     `json:"packaging_used_encoded"`
}

// SaveShipments writes the enriched history in a single transaction.
func SaveShipments(db *sql.DB, list []*Shipment) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertShipmentSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare shipment statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for _, s := range list {
		var date, month, dow interface{}
		if !s.OrderDate.IsZero() {
			date = s.OrderDate.Format(orderDateFormat)
			month = s.Month
			dow = s.DayOfWeek
		}
		_, err = tx.Stmt(stmt).Exec(
			s.OrderID, date, s.ItemName, s.Category, s.WeightKg, s.VolumetricWeightKg,
			s.LengthCm, s.WidthCm, s.HeightCm, s.Fragility, boolToInt(s.MoistureSens),
			s.ShippingMode, s.DistanceKm, s.PackagingUsed, s.CostUSD, s.CO2EmissionKg,
			s.VolumeCm3, s.DimensionalWeightRatio, s.CostPerKm, s.CO2PerKg,
			month, dow, s.CategoryEncoded, s.ShippingModeEncoded, s.PackagingUsedEncoded,
		)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return errors.Wrap(rbErr, "failed to rollback transaction")
			}
			return errors.Wrapf(err, "failed to insert shipment: %d", s.OrderID)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// CountShipments returns the number of history rows.
func CountShipments(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM shipment").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count shipments")
	}
	return n, nil
}
