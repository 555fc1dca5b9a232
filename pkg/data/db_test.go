package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCatalog() []*Material {
	return []*Material{
		{ID: 1, Name: "Corrugated Cardboard (Single Wall)", Category: "Paper", DensityKgM3: 150, TensileMPa: 20, CO2EmissionKg: 0.8, CostPerKg: 0.5, Biodegradable: true},
		{ID: 2, Name: "Bubble Wrap (Standard)", Category: "Plastic", DensityKgM3: 25, TensileMPa: 5, CO2EmissionKg: 2.5, CostPerKg: 1.2, Biodegradable: false},
		{ID: 3, Name: "Molded Pulp Tray", Category: "Paper", DensityKgM3: 300, TensileMPa: 12, CO2EmissionKg: 0.5, CostPerKg: 0.8, Biodegradable: true},
		{ID: 4, Name: "EPS Foam Block", Category: "Foam", DensityKgM3: 20, TensileMPa: 2, CO2EmissionKg: 3.1, CostPerKg: 1.5, Biodegradable: false},
	}
}

func testHistory() []*Shipment {
	return []*Shipment{
		{OrderID: 1, OrderDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ItemName: "Phone", Category: "Electronics", WeightKg: 1.5, VolumetricWeightKg: 2.0, LengthCm: 30, WidthCm: 20, HeightCm: 10, Fragility: 8, MoistureSens: true, ShippingMode: "Air", DistanceKm: 1200, PackagingUsed: "Bubble Wrap", CostUSD: 12.5, CO2EmissionKg: 4.2},
		{OrderID: 2, OrderDate: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), ItemName: "Book", Category: "Media", WeightKg: 0.7, VolumetricWeightKg: 0.5, LengthCm: 25, WidthCm: 18, HeightCm: 4, Fragility: 2, MoistureSens: false, ShippingMode: "Road", DistanceKm: 300, PackagingUsed: "Corrugated", CostUSD: 3.2, CO2EmissionKg: 0.9},
		{OrderID: 3, ItemName: "Mug", Category: "Home", WeightKg: 0.4, VolumetricWeightKg: 0.6, LengthCm: 12, WidthCm: 12, HeightCm: 12, Fragility: 9, MoistureSens: false, ShippingMode: "Road", DistanceKm: 150, PackagingUsed: "Molded Pulp", CostUSD: 2.1, CO2EmissionKg: 0.4},
		{OrderID: 4, OrderDate: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), ItemName: "Laptop", Category: "Electronics", WeightKg: 2.4, VolumetricWeightKg: 3.1, LengthCm: 40, WidthCm: 30, HeightCm: 8, Fragility: 9, MoistureSens: true, ShippingMode: "Air", DistanceKm: 2500, PackagingUsed: "Bubble Wrap", CostUSD: 28.0, CO2EmissionKg: 9.6},
	}
}

// seedTestData scores and enriches the fixtures and writes both tables.
func seedTestData(t *testing.T, db *sql.DB) ([]*Material, []*Shipment) {
	t.Helper()
	mats := testCatalog()
	require.NoError(t, ScoreCatalog(mats))
	hist := testHistory()
	_, err := EnrichShipments(hist)
	require.NoError(t, err)
	require.NoError(t, SaveMaterials(db, mats))
	require.NoError(t, SaveShipments(db, hist))
	return mats, hist
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	err := Init("")
	assert.Error(t, err)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, Init(dbPath))
	assert.NoError(t, Init(dbPath))
}

func TestInit_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	for _, table := range []string{"material", "shipment"} {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b", "c"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "d"))
	assert.False(t, Contains[string](nil, "a"))
}
