package data

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichShipment(t *testing.T) {
	s := &Shipment{
		OrderID:            1,
		OrderDate:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), // a Monday
		WeightKg:           1.5,
		VolumetricWeightKg: 2.0,
		LengthCm:           30,
		WidthCm:            20,
		HeightCm:           10,
		DistanceKm:         1200,
		CostUSD:            12.5,
		CO2EmissionKg:      4.2,
	}
	require.NoError(t, EnrichShipment(s))

	assert.Equal(t, 6000.0, s.VolumeCm3)
	assert.InDelta(t, 1.3333, s.DimensionalWeightRatio, 1e-9)
	assert.InDelta(t, 0.010417, s.CostPerKm, 1e-9)
	assert.InDelta(t, 2.8, s.CO2PerKg, 1e-9)
	assert.Equal(t, 1, s.Month)
	assert.Equal(t, 0, s.DayOfWeek)
}

func TestEnrichShipment_DayOfWeek(t *testing.T) {
	tests := map[string]int{
		"2024-01-15": 0, // Monday
		"2024-01-17": 2, // Wednesday
		"2024-01-20": 5, // Saturday
		"2024-01-21": 6, // Sunday
	}
	for date, want := range tests {
		d, err := ParseOrderDate(date)
		require.NoError(t, err)
		s := &Shipment{OrderID: 1, OrderDate: d, WeightKg: 1}
		require.NoError(t, EnrichShipment(s))
		assert.Equal(t, want, s.DayOfWeek, date)
	}
}

func TestEnrichShipment_ZeroDenominators(t *testing.T) {
	s := &Shipment{
		OrderID:            1,
		WeightKg:           0,
		VolumetricWeightKg: 2.0,
		DistanceKm:         0,
		CostUSD:            5,
		CO2EmissionKg:      1,
	}
	require.NoError(t, EnrichShipment(s))

	assert.False(t, math.IsNaN(s.DimensionalWeightRatio))
	assert.False(t, math.IsInf(s.DimensionalWeightRatio, 0))
	assert.False(t, math.IsInf(s.CostPerKm, 0))
	assert.False(t, math.IsInf(s.CO2PerKg, 0))
}

func TestEnrichShipment_ZeroDate(t *testing.T) {
	s := &Shipment{OrderID: 1, WeightKg: 1}
	require.NoError(t, EnrichShipment(s))
	assert.Equal(t, 0, s.Month)
	assert.Equal(t, 0, s.DayOfWeek)
}

func TestEnrichShipment_NonNumeric(t *testing.T) {
	s := &Shipment{OrderID: 1, WeightKg: math.NaN()}
	err := EnrichShipment(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestEnrichShipments_Encoders(t *testing.T) {
	hist := testHistory()
	enc, err := EnrichShipments(hist)
	require.NoError(t, err)

	// First-seen order over the table.
	assert.Equal(t, []string{"Electronics", "Media", "Home"}, enc.Category.Classes())
	assert.Equal(t, []string{"Air", "Road"}, enc.ShippingMode.Classes())
	assert.Equal(t, []string{"Bubble Wrap", "Corrugated", "Molded Pulp"}, enc.PackagingUsed.Classes())

	assert.Equal(t, 0, hist[0].CategoryEncoded)
	assert.Equal(t, 1, hist[1].CategoryEncoded)
	assert.Equal(t, 0, hist[3].CategoryEncoded)
	assert.Equal(t, 1, hist[2].ShippingModeEncoded)
}

func TestHistoryEncoders_SaveLoad(t *testing.T) {
	hist := testHistory()
	enc, err := EnrichShipments(hist)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), EncodingsFileName)
	require.NoError(t, enc.Save(path))

	loaded, err := LoadEncoders(path)
	require.NoError(t, err)
	assert.Equal(t, enc.Category.Classes(), loaded.Category.Classes())
	assert.Equal(t, enc.ShippingMode.Classes(), loaded.ShippingMode.Classes())
	assert.Equal(t, enc.PackagingUsed.Classes(), loaded.PackagingUsed.Classes())

	i, ok := loaded.ShippingMode.Encode("Road")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestLoadEncoders_Missing(t *testing.T) {
	_, err := LoadEncoders(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
