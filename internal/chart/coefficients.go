// Package chart renders regression coefficients as PNG bar charts.
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/guttosm/assetbeta/internal/regression"
)

const (
	barWidth   = 60
	barSpacing = 40
	minWidth   = 800
	height     = 400
)

var barColor = drawing.ColorFromHex("87ceeb") // skyblue

// Title is the default chart title for a regression of dependent in year.
func Title(year int, dependent string) string {
	return fmt.Sprintf("Regression coefficients for %s (%d)", dependent, year)
}

// RenderCoefficients renders one bar per coefficient, in the given order,
// measured from zero on a "Beta" axis. Returns raw PNG bytes.
func RenderCoefficients(title string, coefs []regression.Coefficient) ([]byte, error) {
	if len(coefs) == 0 {
		return nil, fmt.Errorf("need at least 1 coefficient")
	}

	bars := make([]chart.Value, len(coefs))
	lo, hi := 0.0, 0.0
	for i, c := range coefs {
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return nil, fmt.Errorf("coefficient %q is not finite", c.Asset)
		}
		bars[i] = chart.Value{
			Label: c.Asset,
			Value: c.Value,
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barColor,
				StrokeWidth: 1,
			},
		}
		lo = math.Min(lo, c.Value)
		hi = math.Max(hi, c.Value)
	}
	if hi == lo {
		lo, hi = -1, 1
	}
	pad := (hi - lo) * 0.1

	width := len(coefs)*(barWidth+barSpacing) + 150
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Name:  "Beta",
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
