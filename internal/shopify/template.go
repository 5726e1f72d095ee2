package shopify

import (
	"strings"
)

// TemplateReport compares a template header with the generated columns.
// Missing lists columns we emit that the template lacks; Extra lists template
// columns that stay unfilled.
type TemplateReport struct {
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
}

func (r TemplateReport) OK() bool {
	return len(r.Missing) == 0
}

// CheckTemplate only checks column presence; order and values are not validated.
func CheckTemplate(columns []string) TemplateReport {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[normalizeColumn(c)] = true
	}

	known := make(map[string]bool, len(Columns))
	var report TemplateReport
	for _, c := range Columns {
		known[normalizeColumn(c)] = true
		if !seen[normalizeColumn(c)] {
			report.Missing = append(report.Missing, c)
		}
	}

	for _, c := range columns {
		name := strings.TrimSpace(c)
		if name != "" && !known[normalizeColumn(name)] {
			report.Extra = append(report.Extra, name)
		}
	}

	return report
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}
