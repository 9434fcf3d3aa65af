package answer

import (
	"strconv"

	"github.com/bobmcallan/finsight/internal/models"
	"github.com/bobmcallan/finsight/internal/services/extract"
)

// Guarded is the output shape after intent enforcement. At most one of
// Chart and Table is set; Blocked carries the fixed message when a chart
// was requested but no usable structured data exists.
type Guarded struct {
	Chart   *models.ChartSpec
	Table   *models.TableSpec
	Blocked bool
	Message string
}

// Enforce reconciles a candidate output with the classified intent. It is
// pure and idempotent: Enforce(i, Enforce(i, g)) == Enforce(i, g).
func Enforce(intent models.Intent, g Guarded) Guarded {
	if g.Blocked {
		return Guarded{Blocked: true, Message: g.Message}
	}

	switch intent {
	case models.IntentChart:
		return enforceChart(g)
	case models.IntentTable:
		return enforceTable(g)
	default:
		return Guarded{}
	}
}

func enforceChart(g Guarded) Guarded {
	if g.Chart != nil && g.Chart.Valid() {
		return Guarded{Chart: g.Chart}
	}

	if converted := tableToChart(g.Table); converted != nil {
		return Guarded{Chart: converted}
	}

	return Guarded{Blocked: true, Message: models.BlockedChartMessage}
}

func enforceTable(g Guarded) Guarded {
	if g.Table != nil && len(g.Table.Headers) > 0 {
		return Guarded{Table: g.Table}
	}

	if converted := chartToTable(g.Chart); converted != nil {
		return Guarded{Table: converted}
	}

	// A missing table downgrades to plain text, never a block.
	return Guarded{}
}

// tableToChart converts a table to a bar chart using the first
// string-typed column as labels and the first purely-numeric column as
// values. Returns nil when no such column pair exists or fewer than two
// rows survive.
func tableToChart(table *models.TableSpec) *models.ChartSpec {
	labelCol, valueCol, ok := chartableColumns(table)
	if !ok {
		return nil
	}

	labels := make([]string, 0, len(table.Rows))
	values := make([]float64, 0, len(table.Rows))
	for _, row := range table.Rows {
		value, isNum := extract.ParseAmount(row[valueCol])
		if !isNum || row[labelCol] == "" {
			continue
		}
		labels = append(labels, row[labelCol])
		values = append(values, value)
	}
	if len(values) < 2 {
		return nil
	}

	return &models.ChartSpec{
		Type:   models.ChartTypeBar,
		Title:  table.Headers[valueCol] + " by " + table.Headers[labelCol],
		Labels: labels,
		Values: values,
		XAxis:  table.Headers[labelCol],
		YAxis:  table.Headers[valueCol],
	}
}

// chartToTable flattens a chart into a two-column table.
func chartToTable(chart *models.ChartSpec) *models.TableSpec {
	if chart == nil || !chart.Valid() {
		return nil
	}

	labelHeader := chart.XAxis
	if labelHeader == "" {
		labelHeader = "Label"
	}
	valueHeader := chart.YAxis
	if valueHeader == "" {
		valueHeader = "Value"
	}

	rows := make([][]string, 0, len(chart.Labels))
	for i, label := range chart.Labels {
		rows = append(rows, []string{label, strconv.FormatFloat(chart.Values[i], 'f', -1, 64)})
	}

	spec := &models.TableSpec{Headers: []string{labelHeader, valueHeader}, Rows: rows}
	spec.RenderMarkdown()
	return spec
}
