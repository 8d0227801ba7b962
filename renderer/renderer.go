// Package renderer turns simulation results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderSummary renders the run summary to a markdown string.
func RenderSummary(s *Summary) string {
	partials := map[string]string{
		"summary_metrics":  "summary_metrics.md",
		"summary_holdings": "summary_holdings.md",
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// RenderLedger renders the full ledger table to a markdown string.
func RenderLedger(l *LedgerTable) string {
	return renderTemplate("ledger", "ledger.md", nil, l)
}

// RenderTrend renders the trend audit trail to a markdown string.
func RenderTrend(tr *TrendTable) string {
	return renderTemplate("trend", "trend.md", nil, tr)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
