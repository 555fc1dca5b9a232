package data

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
)

// EncodingsFileName is written next to the feature tables so the training
// pipeline and the serving path share the exact same class index order.
const EncodingsFileName = "encodings.json"

// HistoryEncoders holds the first-seen label encoders fitted over the full
// history table. Index order is load-bearing: encoding index i at serving
// time must match training-time index i.
type HistoryEncoders struct {
	Category      *LabelEncoder
	ShippingMode  *LabelEncoder
	PackagingUsed *LabelEncoder
}

type encodingsFile struct {
	CategoryClasses  []string `json:"category_classes"`
	ShippingClasses  []string `json:"shipping_classes"`
	PackagingClasses []string `json:"packaging_classes"`
}

// EnrichShipments runs the history enrichment pass: per-row derived
// measures plus the table-wide categorical encodings. Returns the fitted
// encoders for persistence.
func EnrichShipments(list []*Shipment) (*HistoryEncoders, error) {
	enc := &HistoryEncoders{
		Category:      NewLabelEncoder(),
		ShippingMode:  NewLabelEncoder(),
		PackagingUsed: NewLabelEncoder(),
	}

	for _, s := range list {
		if err := EnrichShipment(s); err != nil {
			return nil, err
		}
		s.CategoryEncoded = enc.Category.Fit(s.Category)
		s.ShippingModeEncoded = enc.ShippingMode.Fit(s.ShippingMode)
		s.PackagingUsedEncoded = enc.PackagingUsed.Fit(s.PackagingUsed)
	}
	return enc, nil
}

// EnrichShipment computes the per-row derived features: volume, epsilon
// guarded ratios, and the date fields. Rows with a zero (coerced) date
// keep Month and DayOfWeek at zero value and are stored as NULL.
func EnrichShipment(s *Shipment) error {
	if err := validateShipment(s); err != nil {
		return err
	}

	s.VolumeCm3 = s.LengthCm * s.WidthCm * s.HeightCm
	s.DimensionalWeightRatio = Round(s.VolumetricWeightKg/(s.WeightKg+Epsilon), 4)
	s.CostPerKm = Round(s.CostUSD/(s.DistanceKm+Epsilon), 6)
	s.CO2PerKg = Round(s.CO2EmissionKg/(s.WeightKg+Epsilon), 4)

	if !s.OrderDate.IsZero() {
		s.Month = int(s.OrderDate.Month())
		// 0 = Monday .. 6 = Sunday
		s.DayOfWeek = (int(s.OrderDate.Weekday()) + 6) % 7
	}
	return nil
}

func validateShipment(s *Shipment) error {
	checks := []struct {
		name string
		val  float64
	}{
		{"weight_kg", s.WeightKg},
		{"volumetric_weight_kg", s.VolumetricWeightKg},
		{"l_cm", s.LengthCm},
		{"w_cm", s.WidthCm},
		{"h_cm", s.HeightCm},
		{"distance_km", s.DistanceKm},
		{"cost_usd", s.CostUSD},
		{"co2_emission_kg", s.CO2EmissionKg},
	}
	for _, c := range checks {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return errors.Wrapf(ErrDataIntegrity, "shipment %d: %s is not numeric", s.OrderID, c.name)
		}
	}
	return nil
}

// Save persists the three class lists in index order.
func (e *HistoryEncoders) Save(path string) error {
	if e == nil {
		return errors.New("encoders required")
	}
	b, err := json.MarshalIndent(&encodingsFile{
		CategoryClasses:  e.Category.Classes(),
		ShippingClasses:  e.ShippingMode.Classes(),
		PackagingClasses: e.PackagingUsed.Classes(),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal encodings")
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return errors.Wrapf(err, "failed to write encodings file: %s", path)
	}
	return nil
}

// LoadEncoders restores persisted encoders.
func LoadEncoders(path string) (*HistoryEncoders, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read encodings file: %s", path)
	}
	var ef encodingsFile
	if err := json.Unmarshal(b, &ef); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encodings file: %s", path)
	}
	return &HistoryEncoders{
		Category:      EncoderFromClasses(ef.CategoryClasses),
		ShippingMode:  EncoderFromClasses(ef.ShippingClasses),
		PackagingUsed: EncoderFromClasses(ef.PackagingClasses),
	}, nil
}
