package engine

import (
	"github.com/pkg/errors"

	"github.com/ecopackai/ecopack/pkg/data"
)

// Request defaults for the optional fields.
const (
	defaultLengthCm  = 30.0
	defaultWidthCm   = 20.0
	defaultHeightCm  = 15.0
	defaultFragility = 5

	volumetricDivisor = 5000.0
)

var (
	// ErrMissingField rejects a request missing a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownCategory rejects a category the models were not trained
	// on. Never silently defaulted.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownShippingMode rejects a shipping mode the models were not
	// trained on.
	ErrUnknownShippingMode = errors.New("unknown shipping mode")
)

// Request is one prediction request. Pointer fields distinguish absent
// from zero; optional fields get typed defaults.
type Request struct {
	Category          string   `json:"category"`
	ShippingMode      string   `json:"shipping_mode"`
	WeightKg          *float64 `json:"weight_kg"`
	DistanceKm        *float64 `json:"distance_km"`
	LengthCm          *float64 `json:"length_cm"`
	WidthCm           *float64 `json:"width_cm"`
	HeightCm          *float64 `json:"height_cm"`
	Fragility         *int     `json:"fragility"`
	MoistureSensitive *int     `json:"moisture_sensitive"`
}

// Validate checks the required fields are present.
func (r *Request) Validate() error {
	if r.Category == "" {
		return errors.Wrap(ErrMissingField, "category")
	}
	if r.ShippingMode == "" {
		return errors.Wrap(ErrMissingField, "shipping_mode")
	}
	if r.WeightKg == nil {
		return errors.Wrap(ErrMissingField, "weight_kg")
	}
	if r.DistanceKm == nil {
		return errors.Wrap(ErrMissingField, "distance_km")
	}
	return nil
}

// BuildFeatures maps a validated request into the exact ordered feature
// vector the models expect:
//
//	[weight, volumetric_weight, distance, fragility, moisture_sensitive,
//	 volume, dimensional_weight_ratio, category_encoded,
//	 shipping_mode_encoded, month]
//
// The month is the calendar month at request time, so the same request
// produces a different vector in a different month.
func (e *Engine) BuildFeatures(r *Request) ([]float64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	catEnc, ok := e.catEnc.Encode(r.Category)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCategory, "%q", r.Category)
	}
	shipEnc, ok := e.shipEnc.Encode(r.ShippingMode)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownShippingMode, "%q", r.ShippingMode)
	}

	weight := *r.WeightKg
	length := floatOrDefault(r.LengthCm, defaultLengthCm)
	width := floatOrDefault(r.WidthCm, defaultWidthCm)
	height := floatOrDefault(r.HeightCm, defaultHeightCm)
	fragility := intOrDefault(r.Fragility, defaultFragility)
	moisture := intOrDefault(r.MoistureSensitive, 0)

	volume := length * width * height
	volumetricWeight := data.Round(volume/volumetricDivisor, 3)
	ratio := data.Round(volumetricWeight/(weight+data.Epsilon), 4)

	return []float64{
		weight,
		volumetricWeight,
		*r.DistanceKm,
		float64(fragility),
		float64(moisture),
		volume,
		ratio,
		float64(catEnc),
		float64(shipEnc),
		float64(e.now().Month()),
	}, nil
}

func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
