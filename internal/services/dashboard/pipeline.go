package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/finsight/internal/models"
	"github.com/bobmcallan/finsight/internal/services/extract"
)

// Pipeline stages, in fallback order. A stage that yields sparse context
// or zero metrics advances to the next; the section never regresses.
type stage int

const (
	stageRawExtract stage = iota
	stageOCRFallback
	stageFreshQuery
	stageDerive
	stagePlaceholder
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageRawExtract:
		return "raw_extract"
	case stageOCRFallback:
		return "ocr_fallback"
	case stageFreshQuery:
		return "fresh_query"
	case stageDerive:
		return "derive"
	case stagePlaceholder:
		return "placeholder"
	default:
		return "done"
	}
}

// sectionMetrics is the JSON shape Gemini returns for a section
// extraction request.
type sectionMetrics struct {
	Metrics   map[string]map[string]float64 `json:"metrics"`
	Narrative string                        `json:"narrative"`
}

// runSection executes the fallback pipeline for one section and always
// returns a populated result. ctx carries the per-section timeout; on
// expiry the pipeline jumps straight to the local stages (derive, then
// placeholder) with whatever partial data it holds.
func (s *Service) runSection(ctx context.Context, def sectionDef, completed *resultSet) models.SectionResult {
	if def.WebOnly {
		return s.runWebSection(ctx, def)
	}

	result := models.SectionResult{
		Section:     def.Name,
		Data:        make(map[string]map[string]float64),
		Provenance:  models.ProvenanceDocument,
		GeneratedAt: time.Now().UTC(),
	}

	for st := stageRawExtract; st != stageDone; {
		if ctx.Err() != nil && st < stageDerive {
			s.logger.Warn().
				Str("section", def.Name).
				Str("stage", st.String()).
				Msg("Section timed out, falling through to local stages")
			st = stageDerive
			continue
		}

		switch st {
		case stageRawExtract:
			contextText, err := s.retriever.Retrieve(ctx, def.Query)
			if err == nil && len(contextText) >= s.sparseChars {
				if s.extractSectionMetrics(ctx, def, contextText, &result) {
					st = stageDone
					continue
				}
			}
			st = stageOCRFallback

		case stageOCRFallback:
			if s.deepExtractAll(ctx) {
				contextText, err := s.retriever.Retrieve(ctx, def.Query)
				if err == nil && len(contextText) >= s.sparseChars {
					if s.extractSectionMetrics(ctx, def, contextText, &result) {
						st = stageDone
						continue
					}
				}
			}
			st = stageFreshQuery

		case stageFreshQuery:
			contextText, err := s.retriever.RetrieveFresh(ctx, def.Query)
			if err == nil && contextText != "" {
				if s.extractSectionMetrics(ctx, def, contextText, &result) {
					st = stageDone
					continue
				}
			}
			st = stageDerive

		case stageDerive:
			if deriveSection(def, &result, completed) {
				result.Provenance = models.ProvenanceDerived
				st = stageDone
				continue
			}
			st = stagePlaceholder

		case stagePlaceholder:
			fillPlaceholder(def, &result)
			st = stageDone
		}
	}

	attachSectionChart(def, &result)
	return result
}

// extractSectionMetrics asks Gemini for the section's metrics from the
// given context. Returns true when at least one metric came back.
func (s *Service) extractSectionMetrics(ctx context.Context, def sectionDef, contextText string, result *models.SectionResult) bool {
	if s.gemini == nil {
		return false
	}
	response, err := s.gemini.GenerateJSON(ctx, buildSectionPrompt(def, contextText))
	if err != nil {
		s.logger.Warn().Err(err).Str("section", def.Name).Msg("Section extraction failed")
		return false
	}

	var parsed sectionMetrics
	if err := json.Unmarshal([]byte(extract.StripFences(response)), &parsed); err != nil {
		s.logger.Warn().Err(err).Str("section", def.Name).Msg("Section response was not valid JSON")
		return false
	}

	populated := 0
	for metric, periods := range parsed.Metrics {
		if len(periods) == 0 {
			continue
		}
		result.Data[metric] = periods
		populated++
	}
	if parsed.Narrative != "" {
		result.Narrative = parsed.Narrative
	}

	return populated > 0
}

func buildSectionPrompt(def sectionDef, contextText string) string {
	var sb strings.Builder

	sb.WriteString("You are a financial data extractor building the \"")
	sb.WriteString(def.Title)
	sb.WriteString("\" section of a company dashboard. From the document context below, extract every metric you can find.\n\n")
	sb.WriteString("## Metrics Wanted\n")
	sb.WriteString(strings.Join(def.Required, ", "))
	sb.WriteString("\n\n## Document Context\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n")
	sb.WriteString(`Return ONLY valid JSON with this exact shape:
{
  "metrics": {"revenue": {"FY2023": 1200000, "FY2024": 1350000}},
  "narrative": "one short paragraph summarizing the section"
}

Rules:
- Metric keys use snake_case exactly as listed in Metrics Wanted
- Period keys are as they appear in the document (e.g. "FY2024", "2023", "Q2 2024")
- Values are plain numbers with no currency symbols or thousand separators
- Omit any metric the context does not support; never invent values
- Return ONLY the JSON object, no markdown code fences`)

	return sb.String()
}

// deepExtractAll re-extracts every ingested document page by page.
// Returns true when at least one document was re-read. Results persist
// through the document store, so the follow-up retrieval sees them.
func (s *Service) deepExtractAll(ctx context.Context) bool {
	docs, err := s.documents.List(ctx)
	if err != nil || len(docs) == 0 {
		return false
	}

	any := false
	for _, doc := range docs {
		if _, err := s.documents.DeepExtract(ctx, doc.ID); err == nil {
			any = true
		}
	}
	return any
}

// runWebSection builds the news or competitors section from web search
// results only. A missing or failing search client degrades to a
// placeholder; documents are never consulted.
func (s *Service) runWebSection(ctx context.Context, def sectionDef) models.SectionResult {
	result := models.SectionResult{
		Section:     def.Name,
		Data:        make(map[string]map[string]float64),
		Provenance:  models.ProvenanceWebSearch,
		GeneratedAt: time.Now().UTC(),
	}

	if s.search == nil {
		fillPlaceholder(def, &result)
		return result
	}

	query := strings.TrimSpace(s.companyName(ctx) + " " + def.Query)
	results, err := s.search.Search(ctx, query)
	if err != nil || len(results) == 0 {
		s.logger.Warn().Err(err).Str("section", def.Name).Msg("Web search unavailable, using placeholder")
		fillPlaceholder(def, &result)
		return result
	}

	var sb strings.Builder
	for i, r := range results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", r.Title, r.Snippet, r.URL)
	}
	result.Narrative = sb.String()
	result.Data["results"] = map[string]float64{"count": float64(len(results))}

	return result
}

// companyName guesses the company from the first uploaded document's
// file name. Good enough to seed a web search query.
func (s *Service) companyName(ctx context.Context) string {
	docs, err := s.documents.List(ctx)
	if err != nil || len(docs) == 0 {
		return ""
	}

	name := docs[0].Name
	name = strings.TrimSuffix(name, ".pdf")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// attachSectionChart builds one chart from the first metric holding at
// least two periods. When every metric carries a single period, it falls
// back to a cross-metric bar chart of latest-period values so a section
// with data is never chartless. Web-sourced sections are narrative and
// stay chartless (their single results counter cannot satisfy the chart
// shape).
func attachSectionChart(def sectionDef, result *models.SectionResult) {
	if len(result.Charts) > 0 {
		return
	}

	metrics := make([]string, 0, len(result.Data))
	for metric := range result.Data {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	for _, metric := range metrics {
		periods := result.Data[metric]
		if len(periods) < 2 {
			continue
		}

		labels := make([]string, 0, len(periods))
		for period := range periods {
			labels = append(labels, period)
		}
		sort.Strings(labels)

		values := make([]float64, len(labels))
		for i, label := range labels {
			values[i] = periods[label]
		}

		result.Charts = append(result.Charts, models.ChartSpec{
			Type:   models.ChartTypeBar,
			Title:  def.Title + ": " + strings.ReplaceAll(metric, "_", " "),
			Labels: labels,
			Values: values,
			XAxis:  "Period",
			YAxis:  strings.ReplaceAll(metric, "_", " "),
		})
		return
	}

	attachCrossMetricChart(def, result, metrics)
}

// attachCrossMetricChart charts the latest-period value of each metric
// against the others. Needs at least two populated metrics.
func attachCrossMetricChart(def sectionDef, result *models.SectionResult, metrics []string) {
	if def.WebOnly {
		return
	}

	labels := make([]string, 0, len(metrics))
	values := make([]float64, 0, len(metrics))
	for _, metric := range metrics {
		periods := result.Data[metric]
		if len(periods) == 0 {
			continue
		}

		keys := make([]string, 0, len(periods))
		for period := range periods {
			keys = append(keys, period)
		}
		sort.Strings(keys)
		latest := keys[len(keys)-1]

		labels = append(labels, strings.ReplaceAll(metric, "_", " "))
		values = append(values, periods[latest])
	}

	if len(values) < 2 {
		return
	}

	result.Charts = append(result.Charts, models.ChartSpec{
		Type:   models.ChartTypeBar,
		Title:  def.Title + " overview",
		Labels: labels,
		Values: values,
		XAxis:  "Metric",
		YAxis:  "Latest value",
	})
}
