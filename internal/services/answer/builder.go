// Package answer runs the classify → extract → build → guard chain for
// document questions and owns the chart/table construction rules.
package answer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/bobmcallan/finsight/internal/models"
	"github.com/bobmcallan/finsight/internal/services/extract"
)

// BuildChart converts an extracted series into a ChartSpec. Points with
// non-finite values are dropped; fewer than 2 usable points fails with
// ErrInsufficientData.
func BuildChart(series *models.ExtractedSeries, question string) (*models.ChartSpec, error) {
	if series == nil {
		return nil, models.ErrInsufficientData
	}

	labels := make([]string, 0, len(series.Points))
	values := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		if strings.TrimSpace(p.Label) == "" {
			continue
		}
		labels = append(labels, p.Label)
		values = append(values, p.Value)
	}

	if len(values) < 2 {
		return nil, fmt.Errorf("%w: %d usable points", models.ErrInsufficientData, len(values))
	}

	title := series.Name
	if title == "" {
		title = question
	}

	return &models.ChartSpec{
		Type:   selectChartType(question, labels),
		Title:  title,
		Labels: labels,
		Values: values,
		XAxis:  axisTitleForLabels(labels),
		YAxis:  series.Name,
	}, nil
}

// selectChartType honors an explicit hint in the question wording, then
// defaults to line for monotonically increasing time periods and bar for
// categorical labels.
func selectChartType(question string, labels []string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "pie"):
		return models.ChartTypePie
	case strings.Contains(lower, "stacked"):
		return models.ChartTypeStackedBar
	case strings.Contains(lower, "line"):
		return models.ChartTypeLine
	case strings.Contains(lower, "bar"):
		return models.ChartTypeBar
	}

	if isTimePeriodSequence(labels) {
		return models.ChartTypeLine
	}
	return models.ChartTypeBar
}

var (
	yearPattern    = regexp.MustCompile(`(?:FY\s?)?((?:19|20)\d{2})`)
	quarterPattern = regexp.MustCompile(`Q([1-4])\s*(?:FY\s?)?((?:19|20)\d{2})?`)
	monthOrder     = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
)

// isTimePeriodSequence reports whether the labels are monotonically
// increasing time periods (years, quarters, or months).
func isTimePeriodSequence(labels []string) bool {
	if len(labels) < 2 {
		return false
	}

	ordinals := make([]int, 0, len(labels))
	for _, label := range labels {
		ord, ok := periodOrdinal(label)
		if !ok {
			return false
		}
		ordinals = append(ordinals, ord)
	}

	for i := 1; i < len(ordinals); i++ {
		if ordinals[i] <= ordinals[i-1] {
			return false
		}
	}
	return true
}

// periodOrdinal maps a period label to a sortable ordinal.
func periodOrdinal(label string) (int, bool) {
	trimmed := strings.TrimSpace(label)

	if m := quarterPattern.FindStringSubmatch(trimmed); m != nil && strings.Contains(strings.ToUpper(trimmed), "Q") {
		q := int(m[1][0] - '0')
		year := 0
		if m[2] != "" {
			year = atoiSafe(m[2])
		}
		return year*4 + q, true
	}

	if m := yearPattern.FindStringSubmatch(trimmed); m != nil {
		// Use quarter scale so years and quarters never interleave oddly.
		return atoiSafe(m[1]) * 4, true
	}

	lower := strings.ToLower(trimmed)
	for prefix, ord := range monthOrder {
		if strings.HasPrefix(lower, prefix) {
			return ord, true
		}
	}

	return 0, false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// axisTitleForLabels picks an x-axis title from the label style.
func axisTitleForLabels(labels []string) string {
	if isTimePeriodSequence(labels) {
		return "Period"
	}
	return "Category"
}

// BuildTable converts an extracted table into a TableSpec, silently
// right-padding short rows with empty strings and truncating overlong
// rows so every row is exactly the header width.
func BuildTable(table *models.ExtractedTable) *models.TableSpec {
	if table == nil || len(table.Headers) == 0 {
		return nil
	}

	width := len(table.Headers)
	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		normalized := make([]string, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				normalized[i] = row[i]
			}
		}
		rows = append(rows, normalized)
	}

	spec := &models.TableSpec{Headers: table.Headers, Rows: rows}
	spec.RenderMarkdown()
	return spec
}

// chartableColumns finds the label/value column pair for a table→chart
// conversion: the first column with no numeric cells supplies labels,
// the first purely-numeric column supplies values. Returns false when no
// such pair exists.
func chartableColumns(table *models.TableSpec) (labelCol, valueCol int, ok bool) {
	if table == nil || len(table.Headers) == 0 || len(table.Rows) < 2 {
		return 0, 0, false
	}

	labelCol, valueCol = -1, -1
	for col := 0; col < len(table.Headers); col++ {
		numeric, nonEmpty := 0, 0
		for _, row := range table.Rows {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, isNum := extract.ParseAmount(cell); isNum {
				numeric++
			}
		}

		if nonEmpty == 0 {
			continue
		}
		if numeric == 0 && labelCol < 0 {
			labelCol = col
		}
		if numeric == nonEmpty && valueCol < 0 && col != labelCol {
			valueCol = col
		}
	}

	return labelCol, valueCol, labelCol >= 0 && valueCol >= 0
}
