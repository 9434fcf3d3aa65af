package models

import "time"

// Provenance records where a section's data came from. Placeholder data
// is never presented as document-sourced — downstream consumers rely on
// this tag to distinguish real from synthetic values.
const (
	ProvenanceDocument    = "document"
	ProvenanceWebSearch   = "web_search"
	ProvenanceDerived     = "derived"
	ProvenancePlaceholder = "placeholder"
)

// Dashboard section names, in generation order. Financial statement
// sections come first so derived sections can read their data.
const (
	SectionProfitLoss          = "profit_loss"
	SectionBalanceSheet        = "balance_sheet"
	SectionCashFlow            = "cash_flow"
	SectionRatios              = "ratios"
	SectionTrends              = "trends"
	SectionInvestorPerspective = "investor_perspective"
	SectionNews                = "news"
	SectionCompetitors         = "competitors"
)

// SectionResult holds one generated dashboard section.
// Data maps metric name → period (e.g. "FY2024") → value.
type SectionResult struct {
	Section     string                        `json:"section"`
	Data        map[string]map[string]float64 `json:"data"`
	Charts      []ChartSpec                   `json:"charts"`
	Narrative   string                        `json:"narrative,omitempty"`
	Provenance  string                        `json:"provenance"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

// MetricCount returns the number of populated metrics in the section.
func (s *SectionResult) MetricCount() int {
	n := 0
	for _, periods := range s.Data {
		if len(periods) > 0 {
			n++
		}
	}
	return n
}

// DashboardRecord is a complete generated dashboard, cached by the
// fingerprint of the document set it was built from. Records are replaced
// whole on fingerprint change, never mutated section-by-section.
type DashboardRecord struct {
	Fingerprint       string          `json:"fingerprint" badgerhold:"key"`
	Sections          []SectionResult `json:"sections"`
	CompletenessScore float64         `json:"completeness_score"`
	LowSections       []string        `json:"low_sections,omitempty"`
	GeneratedAt       time.Time       `json:"generated_at" badgerhold:"index"`
}

// Section returns the named section result, or nil when absent.
func (d *DashboardRecord) Section(name string) *SectionResult {
	for i := range d.Sections {
		if d.Sections[i].Section == name {
			return &d.Sections[i]
		}
	}
	return nil
}
