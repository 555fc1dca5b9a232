// Package charts renders the static BI charts (monthly trends, category
// and packaging breakdowns) from the feature store. Presentation only; no
// scoring logic lives here.
package charts

import (
	"strconv"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

const (
	chartWidth  = 1200
	chartHeight = 500

	marginLeft   = 80.0
	marginRight  = 40.0
	marginTop    = 60.0
	marginBottom = 70.0
)

// Series is one labeled numeric series to plot.
type Series struct {
	Labels []string
	Values []float64
}

func (s *Series) validate() error {
	if len(s.Labels) == 0 || len(s.Labels) != len(s.Values) {
		return errors.New("series labels and values must be non-empty and equal length")
	}
	return nil
}

func (s *Series) max() float64 {
	m := 0.0
	for _, v := range s.Values {
		if v > m {
			m = v
		}
	}
	if m == 0 {
		m = 1
	}
	return m
}

// RenderLine draws a line chart of the series and writes it as a PNG.
func RenderLine(s *Series, title, path string) error {
	if err := s.validate(); err != nil {
		return err
	}

	dc := newCanvas(title)
	plotW := float64(chartWidth) - marginLeft - marginRight
	plotH := float64(chartHeight) - marginTop - marginBottom
	max := s.max()

	step := plotW
	if len(s.Values) > 1 {
		step = plotW / float64(len(s.Values)-1)
	}

	dc.SetRGB(0.06, 0.30, 0.21)
	dc.SetLineWidth(2.5)
	for i, v := range s.Values {
		x := marginLeft + float64(i)*step
		y := marginTop + plotH*(1-v/max)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	drawAxes(dc, s, max)
	return savePNG(dc, path)
}

// RenderBars draws a bar chart of the series and writes it as a PNG.
func RenderBars(s *Series, title, path string) error {
	if err := s.validate(); err != nil {
		return err
	}

	dc := newCanvas(title)
	plotW := float64(chartWidth) - marginLeft - marginRight
	plotH := float64(chartHeight) - marginTop - marginBottom
	max := s.max()

	slot := plotW / float64(len(s.Values))
	barW := slot * 0.7

	dc.SetRGB(0.10, 0.48, 0.33)
	for i, v := range s.Values {
		h := plotH * v / max
		x := marginLeft + float64(i)*slot + (slot-barW)/2
		y := marginTop + plotH - h
		dc.DrawRectangle(x, y, barW, h)
		dc.Fill()
	}

	drawAxes(dc, s, max)
	return savePNG(dc, path)
}

func newCanvas(title string) *gg.Context {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.06, 0.30, 0.21)
	dc.DrawStringAnchored(title, float64(chartWidth)/2, marginTop/2, 0.5, 0.5)
	return dc
}

func drawAxes(dc *gg.Context, s *Series, max float64) {
	plotW := float64(chartWidth) - marginLeft - marginRight
	plotH := float64(chartHeight) - marginTop - marginBottom

	dc.SetRGB(0.4, 0.4, 0.4)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	// Value ticks on the y axis.
	for i := 0; i <= 4; i++ {
		v := max * float64(i) / 4
		y := marginTop + plotH*(1-float64(i)/4)
		dc.DrawStringAnchored(formatTick(v), marginLeft-8, y, 1, 0.5)
	}

	// Thin the x labels so they stay readable.
	every := len(s.Labels)/12 + 1
	slot := plotW / float64(len(s.Labels))
	for i, label := range s.Labels {
		if i%every != 0 {
			continue
		}
		x := marginLeft + float64(i)*slot + slot/2
		dc.DrawStringAnchored(label, x, marginTop+plotH+20, 0.5, 0.5)
	}
}

func formatTick(v float64) string {
	if v >= 1000 {
		return strconv.FormatFloat(v/1000, 'f', 1, 64) + "k"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func savePNG(dc *gg.Context, path string) error {
	if err := dc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "failed to save chart: %s", path)
	}
	return nil
}
