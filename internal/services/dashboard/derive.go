package dashboard

import (
	"sync"

	"github.com/bobmcallan/finsight/internal/models"
)

// resultSet holds sections as they complete so the derive stage can read
// sibling data. Sections finish in pool order, so a derivation only sees
// whatever has completed by the time its section falls through.
type resultSet struct {
	mu       sync.Mutex
	sections map[string]models.SectionResult
}

func newResultSet() *resultSet {
	return &resultSet{sections: make(map[string]models.SectionResult)}
}

func (rs *resultSet) put(result models.SectionResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.sections[result.Section] = result
}

// metric returns the period map for a metric in a completed section.
// Placeholder sections never feed derivations.
func (rs *resultSet) metric(section, metric string) (map[string]float64, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	result, ok := rs.sections[section]
	if !ok || result.Provenance == models.ProvenancePlaceholder {
		return nil, false
	}
	periods, ok := result.Data[metric]
	if !ok || len(periods) == 0 {
		return nil, false
	}

	out := make(map[string]float64, len(periods))
	for k, v := range periods {
		out[k] = v
	}
	return out, true
}

// metricSource resolves a section metric during derivation. The derive
// stage layers the in-progress section over the completed set so a
// derivation can read figures its own earlier stages extracted.
type metricSource interface {
	metric(section, metric string) (map[string]float64, bool)
}

// deriveView exposes the in-progress result ahead of the completed set.
type deriveView struct {
	current *models.SectionResult
	rs      *resultSet
}

func (v deriveView) metric(section, metric string) (map[string]float64, bool) {
	if v.current != nil && v.current.Section == section {
		if periods, ok := v.current.Data[metric]; ok && len(periods) > 0 {
			return periods, true
		}
		return nil, false
	}
	return v.rs.metric(section, metric)
}

// derivation computes one metric from sibling section data. An entry
// returns false when its dependencies are absent.
type derivation struct {
	Section string
	Metric  string
	Compute func(src metricSource) (map[string]float64, bool)
}

// derivations is the fixed registry of computable metrics. Derivation is
// arithmetic over extracted figures only — no LLM involvement.
var derivations = []derivation{
	{
		Section: models.SectionCashFlow,
		Metric:  "free_cash_flow",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return combine(src, models.SectionCashFlow, "operating_cash_flow",
				models.SectionCashFlow, "investing_cash_flow",
				func(a, b float64) float64 { return a + b })
		},
	},
	{
		Section: models.SectionRatios,
		Metric:  "net_margin",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return combine(src, models.SectionProfitLoss, "net_income",
				models.SectionProfitLoss, "revenue", safeDivide)
		},
	},
	{
		Section: models.SectionRatios,
		Metric:  "debt_to_equity",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return combine(src, models.SectionBalanceSheet, "total_debt",
				models.SectionBalanceSheet, "total_equity", safeDivide)
		},
	},
	{
		Section: models.SectionRatios,
		Metric:  "return_on_equity",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return combine(src, models.SectionProfitLoss, "net_income",
				models.SectionBalanceSheet, "total_equity", safeDivide)
		},
	},
	{
		Section: models.SectionTrends,
		Metric:  "revenue",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return src.metric(models.SectionProfitLoss, "revenue")
		},
	},
	{
		Section: models.SectionTrends,
		Metric:  "net_income",
		Compute: func(src metricSource) (map[string]float64, bool) {
			return src.metric(models.SectionProfitLoss, "net_income")
		},
	},
}

// deriveSection fills the section's missing required metrics from the
// registry. Returns true when the section ends up with at least one
// populated metric.
func deriveSection(def sectionDef, result *models.SectionResult, completed *resultSet) bool {
	view := deriveView{current: result, rs: completed}
	for _, d := range derivations {
		if d.Section != def.Name {
			continue
		}
		if periods, ok := result.Data[d.Metric]; ok && len(periods) > 0 {
			continue
		}
		if periods, ok := d.Compute(view); ok {
			result.Data[d.Metric] = periods
		}
	}
	return result.MetricCount() > 0
}

// combine joins two metrics period-by-period, keeping only periods
// present in both.
func combine(src metricSource, sectionA, metricA, sectionB, metricB string, op func(a, b float64) float64) (map[string]float64, bool) {
	a, ok := src.metric(sectionA, metricA)
	if !ok {
		return nil, false
	}
	b, ok := src.metric(sectionB, metricB)
	if !ok {
		return nil, false
	}

	out := make(map[string]float64)
	for period, va := range a {
		if vb, ok := b[period]; ok {
			out[period] = op(va, vb)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
