package main

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ecopackai/ecopack/pkg/data"
	"github.com/ecopackai/ecopack/pkg/engine"
)

type handler struct {
	db  *sql.DB
	eng *engine.Engine
}

func newHandler(db *sql.DB, eng *engine.Engine) *handler {
	return &handler{db: db, eng: eng}
}

func (h *handler) register(r *gin.Engine) {
	r.GET("/health", h.healthHandler)

	api := r.Group("/api")
	api.POST("/recommend", h.recommendHandler)
	api.GET("/materials", h.materialsHandler)
	api.GET("/top_materials", h.topMaterialsHandler)
	api.GET("/stats", h.statsHandler)
	api.GET("/packaging_usage", h.packagingUsageHandler)
	api.GET("/co2_trend", h.co2TrendHandler)
	api.GET("/cost_trend", h.costTrendHandler)
	api.GET("/category_stats", h.categoryStatsHandler)
	api.GET("/shipping_stats", h.shippingStatsHandler)
}

func (h *handler) healthHandler(c *gin.Context) {
	materials, err := data.CountMaterials(h.db)
	if err != nil {
		log.Errorf("error counting materials: %v", err)
	}
	history, err := data.CountShipments(h.db)
	if err != nil {
		log.Errorf("error counting shipments: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"models_loaded":   h.eng != nil,
		"materials_count": materials,
		"history_count":   history,
	})
}

func (h *handler) recommendHandler(c *gin.Context) {
	if h.eng == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Models not loaded",
		})
		return
	}

	var req engine.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	rec, err := h.eng.Recommend(&req)
	if err != nil {
		if errors.Is(err, engine.ErrMissingField) ||
			errors.Is(err, engine.ErrUnknownCategory) ||
			errors.Is(err, engine.ErrUnknownShippingMode) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		log.Errorf("error building recommendation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	m := h.eng.Metrics()
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"predicted_cost_usd": rec.PredictedCostUSD,
		"predicted_co2_kg":   rec.PredictedCO2Kg,
		"co2_saving_pct":     rec.CO2SavingPct,
		"recommendations":    rec.Options,
		"model_metrics": gin.H{
			"cost_r2":      data.Round(m.CostModel.R2, 4),
			"co2_r2":       data.Round(m.CO2Model.R2, 4),
			"pkg_accuracy": data.Round(m.PkgClassifier.Accuracy, 4),
		},
	})
}

func (h *handler) materialsHandler(c *gin.Context) {
	q := &data.MaterialQuery{}
	if v := c.Query("category"); v != "" {
		q.Category = &v
	}
	if v := c.Query("grade"); v != "" {
		q.Grade = &v
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		q.Limit = n
	}

	list, err := data.GetMaterials(h.db, q)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": list, "count": len(list)})
}

func (h *handler) topMaterialsHandler(c *gin.Context) {
	n := 15
	if v := c.Query("n"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil || i < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid n"})
			return
		}
		n = i
	}

	list, err := data.GetTopMaterials(h.db, n)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": list, "count": len(list)})
}

func (h *handler) statsHandler(c *gin.Context) {
	count, err := data.CountShipments(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Data not loaded"})
		return
	}

	summary, err := data.GetSummaryStats(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := gin.H{
		"total_orders":             summary.TotalOrders,
		"total_co2_kg":             summary.TotalCO2Kg,
		"avg_cost_usd":             summary.AvgCostUSD,
		"total_materials":          summary.TotalMaterials,
		"biodegradable_count":      summary.BiodegradableCount,
		"biodegradable_pct":        summary.BiodegradablePct,
		"grade_a_materials":        summary.GradeAMaterials,
		"potential_co2_saving_pct": summary.PotentialCO2SavingPct,
	}
	if h.eng != nil {
		resp["model_accuracy_pct"] = data.Round(h.eng.Metrics().PkgClassifier.Accuracy*100, 1)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) packagingUsageHandler(c *gin.Context) {
	list, err := data.GetPackagingUsage(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packaging_usage": list})
}

func (h *handler) co2TrendHandler(c *gin.Context) {
	list, err := data.GetCO2Trend(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"co2_trend": list})
}

func (h *handler) costTrendHandler(c *gin.Context) {
	list, err := data.GetCostTrend(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cost_trend": list})
}

func (h *handler) categoryStatsHandler(c *gin.Context) {
	list, err := data.GetCategoryStats(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_stats": list})
}

func (h *handler) shippingStatsHandler(c *gin.Context) {
	list, err := data.GetShippingStats(h.db)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_stats": list})
}

func (h *handler) serverError(c *gin.Context, err error) {
	log.Errorf("handler error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
