package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummaryStats(t *testing.T) {
	db := setupTestDB(t)
	mats, _ := seedTestData(t, db)

	s, err := GetSummaryStats(db)
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalOrders)
	assert.Equal(t, 15.1, s.TotalCO2Kg)
	assert.Equal(t, 11.45, s.AvgCostUSD)
	assert.Equal(t, len(mats), s.TotalMaterials)
	assert.Equal(t, 2, s.BiodegradableCount)
	assert.Equal(t, 50.0, s.BiodegradablePct)

	gradeA := 0
	for _, m := range mats {
		if m.EcoGrade == "A" {
			gradeA++
		}
	}
	assert.Equal(t, gradeA, s.GradeAMaterials)

	assert.GreaterOrEqual(t, s.PotentialCO2SavingPct, 0.0)
	assert.LessOrEqual(t, s.PotentialCO2SavingPct, 100.0)
}

func TestGetSummaryStats_Empty(t *testing.T) {
	db := setupTestDB(t)

	s, err := GetSummaryStats(db)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalOrders)
	assert.Equal(t, 0.0, s.TotalCO2Kg)
	assert.Equal(t, 0.0, s.BiodegradablePct)
}

func TestGetPackagingUsage(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	list, err := GetPackagingUsage(db)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Busiest packaging type first.
	assert.Equal(t, "Bubble Wrap", list[0].PackagingUsed)
	assert.Equal(t, 2, list[0].OrderCount)
	assert.Equal(t, 6.9, list[0].AvgCO2)
	assert.Equal(t, 13.8, list[0].TotalCO2)
}

func TestGetCO2Trend_ExcludesNullDates(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	trend, err := GetCO2Trend(db)
	require.NoError(t, err)
	require.Len(t, trend, 2)

	assert.Equal(t, "2024-01", trend[0].MonthYear)
	assert.Equal(t, 4.2, trend[0].Total)
	assert.Equal(t, 1, trend[0].OrderCount)

	assert.Equal(t, "2024-02", trend[1].MonthYear)
	assert.Equal(t, 10.5, trend[1].Total)
	assert.Equal(t, 2, trend[1].OrderCount)
}

func TestGetCostTrend(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	trend, err := GetCostTrend(db)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, 12.5, trend[0].Total)
	assert.Equal(t, 31.2, trend[1].Total)
}

func TestGetCategoryStats(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	list, err := GetCategoryStats(db)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Ordered by total CO2, dirtiest first.
	assert.Equal(t, "Electronics", list[0].Category)
	assert.Equal(t, 2, list[0].TotalOrders)
	assert.Equal(t, 13.8, list[0].TotalCO2)
	assert.Equal(t, 6.9, list[0].AvgCO2)
	assert.Equal(t, 1.95, list[0].AvgWeight)
	assert.Equal(t, 1850.0, list[0].AvgDistance)
}

func TestGetShippingStats(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	list, err := GetShippingStats(db)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Air", list[0].ShippingMode)
	assert.Equal(t, 2, list[0].TotalOrders)
	assert.Equal(t, 13.8, list[0].TotalCO2)
	assert.Equal(t, "Road", list[1].ShippingMode)
	assert.Equal(t, 2, list[1].TotalOrders)
	assert.Equal(t, 1.3, list[1].TotalCO2)
}

func TestGetCO2Percentile90(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)

	// Sorted CO2: 0.4, 0.9, 4.2, 9.6. pos = 0.9*3 = 2.7, so the value
	// interpolates between 4.2 and 9.6.
	p, err := GetCO2Percentile90(db)
	require.NoError(t, err)
	assert.InDelta(t, 7.98, p, 1e-9)
}

func TestGetCO2Percentile90_Empty(t *testing.T) {
	db := setupTestDB(t)
	p, err := GetCO2Percentile90(db)
	require.NoError(t, err)
	assert.Equal(t, co2PercentileDefault, p)
}

func TestGetCO2Percentile90_SingleRow(t *testing.T) {
	db := setupTestDB(t)
	hist := testHistory()[:1]
	_, err := EnrichShipments(hist)
	require.NoError(t, err)
	require.NoError(t, SaveShipments(db, hist))

	p, err := GetCO2Percentile90(db)
	require.NoError(t, err)
	assert.Equal(t, 4.2, p)
}

func TestStats_NilDB(t *testing.T) {
	_, err := GetSummaryStats(nil)
	assert.Error(t, err)
	_, err = GetPackagingUsage(nil)
	assert.Error(t, err)
	_, err = GetCO2Trend(nil)
	assert.Error(t, err)
	_, err = GetCategoryStats(nil)
	assert.Error(t, err)
	_, err = GetShippingStats(nil)
	assert.Error(t, err)
	_, err = GetCO2Percentile90(nil)
	assert.Error(t, err)
}
