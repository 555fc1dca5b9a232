package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ecopackai/ecopack/pkg/charts"
	"github.com/ecopackai/ecopack/pkg/data"
)

var (
	chartDirFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory for rendered PNG charts (optional, default: current dir)",
		Value: ".",
	}

	chartsCmd = &cli.Command{
		Name:      "charts",
		Aliases:   []string{"c"},
		Usage:     "Render summary charts from the feature store",
		UsageText: "ecopack charts --out ./charts",
		Action:    cmdRenderCharts,
		Flags: []cli.Flag{
			chartDirFlag,
		},
	}
)

func cmdRenderCharts(c *cli.Context) error {
	dir := c.String(chartDirFlag.Name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "failed to create chart dir: %s", dir)
	}

	db := getDBOrFail()
	defer db.Close()

	trend, err := data.GetCO2Trend(db)
	if err != nil {
		return err
	}
	if len(trend) > 0 {
		s := &charts.Series{}
		for _, p := range trend {
			s.Labels = append(s.Labels, p.MonthYear)
			s.Values = append(s.Values, p.Total)
		}
		if err := renderChart(dir, "co2_trend.png", func(path string) error {
			return charts.RenderLine(s, "Monthly CO2 Emissions (kg)", path)
		}); err != nil {
			return err
		}
	}

	cats, err := data.GetCategoryStats(db)
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		s := &charts.Series{}
		for _, p := range cats {
			s.Labels = append(s.Labels, p.Category)
			s.Values = append(s.Values, p.AvgCO2)
		}
		if err := renderChart(dir, "category_co2.png", func(path string) error {
			return charts.RenderBars(s, "Avg CO2 by Category (kg)", path)
		}); err != nil {
			return err
		}
	}

	usage, err := data.GetPackagingUsage(db)
	if err != nil {
		return err
	}
	if len(usage) > 0 {
		s := &charts.Series{}
		for _, p := range usage {
			s.Labels = append(s.Labels, p.PackagingUsed)
			s.Values = append(s.Values, float64(p.OrderCount))
		}
		if err := renderChart(dir, "packaging_usage.png", func(path string) error {
			return charts.RenderBars(s, "Packaging Usage", path)
		}); err != nil {
			return err
		}
	}

	return nil
}

func renderChart(dir, file string, render func(path string) error) error {
	path := filepath.Join(dir, file)
	if err := render(path); err != nil {
		return err
	}
	log.Infof("chart written: %s", path)
	return nil
}
