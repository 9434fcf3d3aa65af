package models

// SeriesPoint is one labeled numeric value in an extracted series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ExtractedSeries is the intermediate representation produced by series
// extraction: an ordered sequence of labeled values. Labels need not be
// unique; the first occurrence defines canonical axis order. A series
// shorter than 2 points is insufficient for a chart but still valid as a
// single-value table cell.
type ExtractedSeries struct {
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

// ExtractedTable is the intermediate representation produced by table
// extraction. Headers define column order; all rows must end up the same
// width as headers after normalization.
type ExtractedTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has no usable content.
func (t *ExtractedTable) Empty() bool {
	return t == nil || len(t.Headers) == 0 || len(t.Rows) == 0
}

// Empty reports whether the series has no points.
func (s *ExtractedSeries) Empty() bool {
	return s == nil || len(s.Points) == 0
}
