package main

import (
	"database/sql"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ecopackai/ecopack/pkg/data"
)

var (
	categoryFlag = &cli.StringFlag{
		Name:  "category",
		Usage: "Filter by material category (optional)",
	}

	gradeFlag = &cli.StringFlag{
		Name:  "grade",
		Usage: "Filter by eco grade [A, B, C, D] (optional)",
	}

	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Max number of rows returned (optional)",
	}

	topNFlag = &cli.IntFlag{
		Name:  "n",
		Usage: "Number of materials to return (optional, default: 15)",
		Value: 15,
	}

	materialsCmd = &cli.Command{
		Name:      "materials",
		Aliases:   []string{"m"},
		Usage:     "List scored materials from the feature store",
		UsageText: "ecopack materials --category Plastic --grade A --limit 10",
		Action:    cmdQueryMaterials,
		Flags: []cli.Flag{
			categoryFlag,
			gradeFlag,
			limitFlag,
		},
	}

	topMaterialsQueryCmd = &cli.Command{
		Name:      "top",
		Aliases:   []string{"t"},
		Usage:     "List the best ranked materials",
		UsageText: "ecopack top --n 5",
		Action:    cmdQueryTopMaterials,
		Flags: []cli.Flag{
			topNFlag,
		},
	}

	statsCmd = &cli.Command{
		Name:      "stats",
		Aliases:   []string{"s"},
		Usage:     "Print aggregate shipment and material stats",
		UsageText: "ecopack stats",
		Action:    cmdQueryStats,
	}
)

// StatsResult bundles the aggregate views served by the stats command.
type StatsResult struct {
	Summary   *data.SummaryStats     `json:"summary"`
	Packaging []*data.PackagingUsage `json:"packaging_usage"`
	CO2Trend  []*data.TrendPoint     `json:"co2_trend"`
	CostTrend []*data.TrendPoint     `json:"cost_trend"`
	Category  []*data.CategoryStats  `json:"category_stats"`
	Shipping  []*data.ShippingStats  `json:"shipping_stats"`
}

func cmdQueryMaterials(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	q := &data.MaterialQuery{Limit: c.Int(limitFlag.Name)}
	if v := c.String(categoryFlag.Name); v != "" {
		q.Category = &v
	}
	if v := c.String(gradeFlag.Name); v != "" {
		q.Grade = &v
	}

	list, err := data.GetMaterials(db, q)
	if err != nil {
		return err
	}
	return writeOutput(list)
}

func cmdQueryTopMaterials(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	list, err := data.GetTopMaterials(db, c.Int(topNFlag.Name))
	if err != nil {
		return err
	}
	return writeOutput(list)
}

func cmdQueryStats(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	r, err := getStats(db)
	if err != nil {
		return err
	}
	return writeOutput(r)
}

func getStats(db *sql.DB) (*StatsResult, error) {
	summary, err := data.GetSummaryStats(db)
	if err != nil {
		return nil, err
	}
	usage, err := data.GetPackagingUsage(db)
	if err != nil {
		return nil, err
	}
	co2Trend, err := data.GetCO2Trend(db)
	if err != nil {
		return nil, err
	}
	costTrend, err := data.GetCostTrend(db)
	if err != nil {
		return nil, err
	}
	category, err := data.GetCategoryStats(db)
	if err != nil {
		return nil, err
	}
	shipping, err := data.GetShippingStats(db)
	if err != nil {
		return nil, err
	}

	return &StatsResult{
		Summary:   summary,
		Packaging: usage,
		CO2Trend:  co2Trend,
		CostTrend: costTrend,
		Category:  category,
		Shipping:  shipping,
	}, nil
}

func writeOutput(v interface{}) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode output")
		}
	case formatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode output")
		}
	default:
		return errors.Errorf("unsupported output format: %s", outputFormat)
	}
	return nil
}
