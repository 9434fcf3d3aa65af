package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/finsight/internal/models"
)

// ParseAmount coerces a financial figure string to a float64. Currency
// symbols, thousands separators, and percent signs are stripped;
// parenthesized numbers are treated as negative. Returns false for
// anything non-numeric.
func ParseAmount(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "%", "", " ", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	if negative {
		v = -v
	}
	return v, true
}

// listMarkers are stray prefixes that extraction sometimes leaves on the
// first cell of a row when the source text was a bulleted list.
var listMarkers = []string{"- ", "* ", "• ", "– ", "— "}

// cleanCell strips stray list markers and surrounding whitespace.
func cleanCell(cell string) string {
	s := strings.TrimSpace(cell)
	for _, marker := range listMarkers {
		s = strings.TrimPrefix(s, marker)
	}
	return strings.TrimSpace(s)
}

// NormalizeTable repairs a freshly-parsed table: cells are cleaned of
// list markers and blank rows dropped. Row widths are left untouched;
// establishing the row-width invariant by padding or truncating is the
// table builder's job.
func NormalizeTable(table *models.ExtractedTable) (*models.ExtractedTable, error) {
	if table == nil {
		return nil, fmt.Errorf("nil table")
	}

	headers := make([]string, 0, len(table.Headers))
	for _, h := range table.Headers {
		h = cleanCell(h)
		if h != "" {
			headers = append(headers, h)
		}
	}

	var rows [][]string
	for _, row := range table.Rows {
		cleaned := make([]string, 0, len(row))
		empty := true
		for _, cell := range row {
			c := cleanCell(cell)
			if c != "" {
				empty = false
			}
			cleaned = append(cleaned, c)
		}
		if empty {
			continue
		}
		rows = append(rows, cleaned)
	}

	return &models.ExtractedTable{Headers: headers, Rows: rows}, nil
}

// stringPoint mirrors SeriesPoint with a string value, for the repair
// parse of responses that quote their numbers.
type stringPoint struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type stringSeries struct {
	Name   string        `json:"name"`
	Points []stringPoint `json:"points"`
}

// repairSeriesJSON re-parses a series response whose values came back as
// strings ("$1,200" etc), coercing each through ParseAmount. Points that
// still fail coercion are dropped.
func repairSeriesJSON(cleaned string) (*models.ExtractedSeries, error) {
	var raw stringSeries
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, err
	}

	series := &models.ExtractedSeries{Name: raw.Name}
	for _, p := range raw.Points {
		v, ok := ParseAmount(p.Value)
		if !ok {
			continue
		}
		series.Points = append(series.Points, models.SeriesPoint{
			Label: cleanCell(p.Label),
			Value: v,
		})
	}

	return series, nil
}
