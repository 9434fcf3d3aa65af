package dashboard

import "github.com/bobmcallan/finsight/internal/models"

// Score computes the completeness of a dashboard as the mean per-section
// fraction of populated required metrics, so every section carries equal
// weight regardless of how many metrics it requires. Five fully
// populated sections out of eight score 0.625. The web-sourced sections
// carry no numeric requirements; they count as fully populated when
// their provenance is not placeholder. Placeholder data never counts.
func Score(record *models.DashboardRecord) (float64, []string) {
	if record == nil {
		return 0, nil
	}

	var sum float64
	var low []string

	for _, def := range sectionDefs {
		result := record.Section(def.Name)

		if len(def.Required) == 0 {
			if result != nil && result.Provenance != models.ProvenancePlaceholder {
				sum++
			} else {
				low = append(low, def.Name)
			}
			continue
		}

		populated := 0
		for _, metric := range def.Required {
			if result == nil || result.Provenance == models.ProvenancePlaceholder {
				continue
			}
			if periods, ok := result.Data[metric]; ok && len(periods) > 0 {
				populated++
			}
		}
		sum += float64(populated) / float64(len(def.Required))
		if populated < len(def.Required) {
			low = append(low, def.Name)
		}
	}

	return sum / float64(len(sectionDefs)), low
}
