package answer

import (
	"reflect"
	"testing"

	"github.com/bobmcallan/finsight/internal/models"
)

func validChart() *models.ChartSpec {
	return &models.ChartSpec{
		Type:   models.ChartTypeBar,
		Title:  "Revenue",
		Labels: []string{"2023", "2024"},
		Values: []float64{100, 180},
		XAxis:  "Year",
		YAxis:  "Revenue",
	}
}

func TestEnforceChartPassesValidChart(t *testing.T) {
	g := Enforce(models.IntentChart, Guarded{Chart: validChart()})
	if g.Chart == nil || g.Table != nil || g.Blocked {
		t.Fatalf("Enforce(chart, valid chart) = %+v, want chart only", g)
	}
}

func TestEnforceChartConvertsTable(t *testing.T) {
	table := &models.TableSpec{
		Headers: []string{"Account", "Amount"},
		Rows: [][]string{
			{"Cash", "100"},
			{"Debt", "50"},
		},
	}

	g := Enforce(models.IntentChart, Guarded{Table: table})
	if g.Blocked {
		t.Fatalf("conversion should succeed, got blocked: %q", g.Message)
	}
	if g.Table != nil {
		t.Error("table should be dropped after conversion")
	}
	if g.Chart == nil {
		t.Fatal("expected a converted chart")
	}
	if g.Chart.Type != models.ChartTypeBar {
		t.Errorf("converted chart type = %q, want bar", g.Chart.Type)
	}
	if !reflect.DeepEqual(g.Chart.Labels, []string{"Cash", "Debt"}) {
		t.Errorf("labels = %v, want [Cash Debt]", g.Chart.Labels)
	}
	if !reflect.DeepEqual(g.Chart.Values, []float64{100, 50}) {
		t.Errorf("values = %v, want [100 50]", g.Chart.Values)
	}
}

func TestEnforceChartConversionSkipsBadRows(t *testing.T) {
	table := &models.TableSpec{
		Headers: []string{"Account", "Amount"},
		Rows: [][]string{
			{"Cash", "$1,200,000"},
			{"Payables", "(50,000)"},
			{"", "75"},
		},
	}

	g := Enforce(models.IntentChart, Guarded{Table: table})
	if g.Chart == nil {
		t.Fatal("expected a converted chart")
	}
	if !reflect.DeepEqual(g.Chart.Values, []float64{1200000, -50000}) {
		t.Errorf("values = %v, want [1.2e+06 -50000]", g.Chart.Values)
	}
}

func TestEnforceChartBlocksWhenNoCandidate(t *testing.T) {
	cases := []Guarded{
		{},
		{Chart: &models.ChartSpec{Type: models.ChartTypeBar, Labels: []string{"a"}, Values: []float64{1}}},
		{Table: &models.TableSpec{Headers: []string{"Note"}, Rows: [][]string{{"prose"}, {"more prose"}}}},
	}

	for i, candidate := range cases {
		g := Enforce(models.IntentChart, candidate)
		if !g.Blocked {
			t.Errorf("case %d: expected blocked result, got %+v", i, g)
			continue
		}
		if g.Message != models.BlockedChartMessage {
			t.Errorf("case %d: message = %q, want %q", i, g.Message, models.BlockedChartMessage)
		}
		if g.Chart != nil || g.Table != nil {
			t.Errorf("case %d: blocked result must carry no chart or table", i)
		}
	}
}

func TestEnforceTableConvertsChart(t *testing.T) {
	g := Enforce(models.IntentTable, Guarded{Chart: validChart()})
	if g.Chart != nil {
		t.Error("chart should be dropped after conversion")
	}
	if g.Table == nil {
		t.Fatal("expected a converted table")
	}
	if !reflect.DeepEqual(g.Table.Headers, []string{"Year", "Revenue"}) {
		t.Errorf("headers = %v, want [Year Revenue]", g.Table.Headers)
	}
	want := [][]string{{"2023", "100"}, {"2024", "180"}}
	if !reflect.DeepEqual(g.Table.Rows, want) {
		t.Errorf("rows = %v, want %v", g.Table.Rows, want)
	}
}

func TestEnforceTableDowngradesWithoutCandidate(t *testing.T) {
	g := Enforce(models.IntentTable, Guarded{})
	if g.Blocked || g.Chart != nil || g.Table != nil {
		t.Errorf("Enforce(table, empty) = %+v, want empty non-blocked result", g)
	}
}

func TestEnforceNoneStripsStructuredOutput(t *testing.T) {
	g := Enforce(models.IntentNone, Guarded{
		Chart: validChart(),
		Table: &models.TableSpec{Headers: []string{"A"}, Rows: [][]string{{"1"}, {"2"}}},
	})
	if g.Chart != nil || g.Table != nil || g.Blocked {
		t.Errorf("Enforce(none, ...) = %+v, want empty result", g)
	}
}

func TestEnforceIdempotent(t *testing.T) {
	candidates := []Guarded{
		{},
		{Chart: validChart()},
		{Table: &models.TableSpec{Headers: []string{"Account", "Amount"}, Rows: [][]string{{"Cash", "100"}, {"Debt", "50"}}}},
		{Table: &models.TableSpec{Headers: []string{"Note"}, Rows: [][]string{{"prose"}, {"more"}}}},
	}
	intents := []models.Intent{models.IntentNone, models.IntentChart, models.IntentTable}

	for _, intent := range intents {
		for i, candidate := range candidates {
			once := Enforce(intent, candidate)
			twice := Enforce(intent, once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("intent %v candidate %d: Enforce not idempotent\nonce:  %+v\ntwice: %+v", intent, i, once, twice)
			}
		}
	}
}
