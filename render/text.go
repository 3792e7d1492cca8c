// Package render turns report entries into the documents handed out at the
// end of a visit: the plain text report, the paginated PDF report and the
// hygiene instructions sheet.
package render

import (
	"strings"

	"github.com/giygas/fiche-dentaire/report"
)

// ReportTitle heads both the text and the PDF report
const ReportTitle = "Rapport Patient"

// Text renders entries as a header line, a blank line and one
// "label: value" line per entry, in order.
func Text(entries []report.Entry) string {
	var b strings.Builder
	b.WriteString(ReportTitle)
	b.WriteString("\n\n")
	for _, e := range entries {
		b.WriteString(e.Label)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteString("\n")
	}
	return b.String()
}
