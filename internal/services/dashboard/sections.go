// Package dashboard generates the eight-section financial dashboard
// through a per-section fallback pipeline and caches the result by
// document-set fingerprint.
package dashboard

import "github.com/bobmcallan/finsight/internal/models"

// sectionDef describes one dashboard section: the metrics it must
// populate, the retrieval query that targets it, and whether it sources
// from web search instead of documents.
type sectionDef struct {
	Name     string
	Title    string
	Required []string
	Query    string
	WebOnly  bool
}

// sectionDefs lists all sections in generation order. Financial
// statement sections come first so the derive stage can read their
// results; investor_perspective is scheduled after them.
var sectionDefs = []sectionDef{
	{
		Name:  models.SectionProfitLoss,
		Title: "Profit & Loss",
		Required: []string{
			"revenue", "cost_of_sales", "gross_profit",
			"operating_expenses", "net_income",
		},
		Query: "revenue sales cost of sales gross profit operating expenses net income profit loss statement",
	},
	{
		Name:  models.SectionBalanceSheet,
		Title: "Balance Sheet",
		Required: []string{
			"total_assets", "total_liabilities", "total_equity",
			"cash", "total_debt",
		},
		Query: "total assets liabilities equity cash debt balance sheet financial position",
	},
	{
		Name:  models.SectionCashFlow,
		Title: "Cash Flow",
		Required: []string{
			"operating_cash_flow", "investing_cash_flow",
			"financing_cash_flow", "net_change_in_cash",
		},
		Query: "cash flow operating investing financing activities net change in cash",
	},
	{
		Name:  models.SectionRatios,
		Title: "Key Ratios",
		Required: []string{
			"net_margin", "debt_to_equity", "return_on_equity",
		},
		Query: "financial ratios margin return on equity debt to equity current ratio",
	},
	{
		Name:  models.SectionTrends,
		Title: "Trends",
		Required: []string{
			"revenue", "net_income",
		},
		Query: "revenue net income year over year growth trend comparative prior period",
	},
	{
		Name:  models.SectionInvestorPerspective,
		Title: "Investor Perspective",
		Required: []string{
			"earnings_per_share", "dividend_per_share",
		},
		Query: "earnings per share dividends shareholder returns investor highlights",
	},
	{
		Name:    models.SectionNews,
		Title:   "Recent News",
		Query:   "latest financial news",
		WebOnly: true,
	},
	{
		Name:    models.SectionCompetitors,
		Title:   "Competitors",
		Query:   "main competitors industry rivals",
		WebOnly: true,
	},
}

// sectionDefByName returns the definition for a section name.
func sectionDefByName(name string) (sectionDef, bool) {
	for _, def := range sectionDefs {
		if def.Name == name {
			return def, true
		}
	}
	return sectionDef{}, false
}

// SectionNames returns all section names in canonical order.
func SectionNames() []string {
	names := make([]string, len(sectionDefs))
	for i, def := range sectionDefs {
		names[i] = def.Name
	}
	return names
}
