package wizard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/render"
	"github.com/giygas/fiche-dentaire/report"
)

var (
	reportPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2)

	reportTitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")).
		Bold(true).
		MarginBottom(1)

	reportLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	reportValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Bold(true)

	advisoryStyles = map[registry.Level]lipgloss.Style{
		registry.LevelOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		registry.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		registry.LevelSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}

	pathStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("33"))
)

// renderReport draws the report entries in a bordered panel
func renderReport(entries []report.Entry) string {
	var sb strings.Builder
	sb.WriteString(reportTitleStyle.Render(render.ReportTitle))
	sb.WriteString("\n")

	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(reportLabelStyle.Render(e.Label + ":"))
		sb.WriteString(" ")
		sb.WriteString(reportValueStyle.Render(e.Value))
	}

	return reportPanelStyle.Render(sb.String())
}

// renderAdvisory prints a registry advisory on one line
func renderAdvisory(a registry.Advisory) string {
	style, ok := advisoryStyles[a.Level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	prefix := "•"
	if a.Level == registry.LevelWarning {
		prefix = "!"
	}
	return style.Render(prefix + " " + a.Message)
}

// renderWritten lists the files written by the exports
func renderWritten(paths []string) string {
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, "  "+pathStyle.Render(p))
	}
	return strings.Join(lines, "\n")
}
