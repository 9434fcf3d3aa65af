package answer

import (
	"errors"
	"math"
	"testing"

	"github.com/bobmcallan/finsight/internal/models"
)

func TestBuildChartDropsUnusablePoints(t *testing.T) {
	series := &models.ExtractedSeries{
		Name: "Revenue",
		Points: []models.SeriesPoint{
			{Label: "2022", Value: 100},
			{Label: "", Value: 55},
			{Label: "2023", Value: math.NaN()},
			{Label: "2024", Value: 180},
		},
	}

	chart, err := BuildChart(series, "chart revenue over time")
	if err != nil {
		t.Fatalf("BuildChart() error = %v", err)
	}
	if len(chart.Labels) != 2 || len(chart.Values) != 2 {
		t.Fatalf("chart has %d labels / %d values, want 2 / 2", len(chart.Labels), len(chart.Values))
	}
	if chart.Labels[0] != "2022" || chart.Labels[1] != "2024" {
		t.Errorf("labels = %v, want [2022 2024]", chart.Labels)
	}
	if !chart.Valid() {
		t.Error("built chart should be valid")
	}
}

func TestBuildChartInsufficientData(t *testing.T) {
	series := &models.ExtractedSeries{
		Name:   "Revenue",
		Points: []models.SeriesPoint{{Label: "2024", Value: 180}},
	}

	if _, err := BuildChart(series, "chart revenue"); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("BuildChart() error = %v, want ErrInsufficientData", err)
	}

	if _, err := BuildChart(nil, "chart revenue"); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("BuildChart(nil) error = %v, want ErrInsufficientData", err)
	}
}

func TestSelectChartType(t *testing.T) {
	years := []string{"2021", "2022", "2023"}
	categories := []string{"Cash", "Debt", "Equity"}

	tests := []struct {
		question string
		labels   []string
		want     string
	}{
		{"show a pie of asset mix", categories, models.ChartTypePie},
		{"stacked view of expenses", categories, models.ChartTypeStackedBar},
		{"line of revenue", categories, models.ChartTypeLine},
		{"bar of revenue by year", years, models.ChartTypeBar},
		{"revenue over time", years, models.ChartTypeLine},
		{"compare balances", categories, models.ChartTypeBar},
	}

	for _, tt := range tests {
		if got := selectChartType(tt.question, tt.labels); got != tt.want {
			t.Errorf("selectChartType(%q, %v) = %q, want %q", tt.question, tt.labels, got, tt.want)
		}
	}
}

func TestIsTimePeriodSequence(t *testing.T) {
	tests := []struct {
		labels []string
		want   bool
	}{
		{[]string{"2021", "2022", "2023"}, true},
		{[]string{"FY2022", "FY2023"}, true},
		{[]string{"Q1 2024", "Q2 2024", "Q3 2024"}, true},
		{[]string{"Jan", "Feb", "Mar"}, true},
		{[]string{"2023", "2021"}, false},
		{[]string{"2022", "2022"}, false},
		{[]string{"Cash", "Debt"}, false},
		{[]string{"2024"}, false},
	}

	for _, tt := range tests {
		if got := isTimePeriodSequence(tt.labels); got != tt.want {
			t.Errorf("isTimePeriodSequence(%v) = %v, want %v", tt.labels, got, tt.want)
		}
	}
}

func TestBuildTableNormalizesRowWidth(t *testing.T) {
	table := &models.ExtractedTable{
		Headers: []string{"Account", "Debit", "Credit"},
		Rows: [][]string{
			{"Cash", "100"},
			{"Revenue", "", "100", "extra"},
		},
	}

	spec := BuildTable(table)
	if spec == nil {
		t.Fatal("BuildTable() returned nil")
	}
	for i, row := range spec.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row))
		}
	}
	if spec.Rows[0][2] != "" {
		t.Errorf("short row should be padded with empty string, got %q", spec.Rows[0][2])
	}
	if spec.Markdown == "" {
		t.Error("markdown should be rendered")
	}
}

func TestBuildTableNil(t *testing.T) {
	if BuildTable(nil) != nil {
		t.Error("BuildTable(nil) should return nil")
	}
	if BuildTable(&models.ExtractedTable{}) != nil {
		t.Error("BuildTable with no headers should return nil")
	}
}
