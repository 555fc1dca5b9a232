package engine

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopackai/ecopack/pkg/data"
	"github.com/ecopackai/ecopack/pkg/model"
)

func writeModelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	meta := testEngineMetrics()

	reg := &model.Forest{Trees: []model.Tree{{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1},
		Feature:       []int{-2},
		Threshold:     []float64{-2},
		Values:        [][]float64{{7.5}},
	}}}
	cls := &model.Forest{
		NClasses: len(meta.PackagingClasses),
		Trees: []model.Tree{{
			ChildrenLeft:  []int{-1},
			ChildrenRight: []int{-1},
			Feature:       []int{-2},
			Threshold:     []float64{-2},
			Values:        [][]float64{{6, 5, 4, 3, 2, 1}},
		}},
	}

	for name, v := range map[string]interface{}{
		model.MetricsFileName:    meta,
		model.CostForestFileName: reg,
		model.CO2ForestFileName:  reg,
		model.PkgForestFileName:  cls,
	} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0600))
	}
	return dir
}

func setupEngineDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, data.Init(dbPath))
	db, err := data.GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mats := testScoredCatalog(t)
	require.NoError(t, data.SaveMaterials(db, mats))
	return db
}

func TestLoad(t *testing.T) {
	db := setupEngineDB(t)
	e, err := Load(db, writeModelDir(t), WithClock(fixedClock()))
	require.NoError(t, err)

	assert.Equal(t, 4, e.CatalogSize())
	assert.Equal(t, 0.91, e.Metrics().CostModel.R2)

	rec, err := e.Recommend(testRequest())
	require.NoError(t, err)
	assert.Equal(t, 7.5, rec.PredictedCostUSD)
	require.Len(t, rec.Options, 5)
	// Leaf counts 6..1 make class 0 the most probable.
	assert.Equal(t, "Bubble Wrap (Standard)", rec.Options[0].Packaging)
}

func TestLoad_MissingArtifacts(t *testing.T) {
	db := setupEngineDB(t)
	_, err := Load(db, t.TempDir())
	assert.ErrorIs(t, err, model.ErrNotLoaded)
}

func TestLoad_EmptyHistoryUsesDefaultPercentile(t *testing.T) {
	db := setupEngineDB(t)
	e, err := Load(db, writeModelDir(t), WithClock(fixedClock()))
	require.NoError(t, err)

	// With no history the percentile floor keeps the saving at zero for
	// any realistic prediction above the default.
	assert.Equal(t, 0.0, e.co2SavingPct(150))
	assert.Equal(t, 25.0, e.co2SavingPct(75))
}
