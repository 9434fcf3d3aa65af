package answer

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/finsight/internal/models"
)

var seriesPalette = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"dc2626", // red-600
	"9333ea", // purple-600
	"ea580c", // orange-600
	"0891b2", // cyan-600
}

// RenderChartPNG renders a ChartSpec to raw PNG bytes.
func RenderChartPNG(spec *models.ChartSpec) ([]byte, error) {
	if spec == nil || !spec.Valid() {
		return nil, fmt.Errorf("chart spec is not renderable")
	}

	switch spec.Type {
	case models.ChartTypePie:
		return renderPie(spec)
	case models.ChartTypeLine:
		return renderLine(spec)
	default:
		return renderBar(spec)
	}
}

func renderBar(spec *models.ChartSpec) ([]byte, error) {
	bars := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		bars[i] = chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(seriesPalette[i%len(seriesPalette)]),
				StrokeColor: drawing.ColorFromHex(seriesPalette[i%len(seriesPalette)]),
			},
		}
	}

	graph := chart.BarChart{
		Title:    spec.Title,
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPie(spec *models.ChartSpec) ([]byte, error) {
	slices := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		slices[i] = chart.Value{Label: spec.Labels[i], Value: v}
	}

	graph := chart.PieChart{
		Title:  spec.Title,
		Width:  600,
		Height: 600,
		Values: slices,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func renderLine(spec *models.ChartSpec) ([]byte, error) {
	xValues := make([]float64, len(spec.Values))
	for i := range spec.Values {
		xValues[i] = float64(i)
	}

	ticks := make([]chart.Tick, len(spec.Labels))
	for i, label := range spec.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: spec.YAxis,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2.5,
				},
				XValues: xValues,
				YValues: spec.Values,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
