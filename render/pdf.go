package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/fiche-dentaire/report"
)

// HygieneTitle heads the hygiene instructions sheet
const HygieneTitle = "Conseils d'hygiène bucco-dentaire"

// A4 portrait, millimetres
const (
	pageMargin = 20.0
	pageHeight = 297.0
	pageWidth  = 210.0
)

type font struct {
	style  string
	size   float64
	height float64
}

var fonts = map[Style]font{
	StyleBody:    {style: "", size: 10, height: 5.5},
	StyleHeading: {style: "B", size: 12, height: 8},
	StyleTitle:   {style: "B", size: 16, height: 10},
}

// document wraps an fpdf document using the Helvetica core font. Core fonts
// only know Windows-1252, so every string is transcoded before it reaches
// fpdf.
type document struct {
	pdf   *fpdf.Fpdf
	width float64
}

func newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("fiche-dentaire", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	return &document{pdf: pdf, width: pageWidth - 2*pageMargin}
}

// encode maps s to Windows-1252, replacing what the code page lacks with '?'
func encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (d *document) setStyle(s Style) {
	f := fonts[s]
	d.pdf.SetFont("Helvetica", f.style, f.size)
}

func (d *document) measure(s Style) func(string) float64 {
	return func(text string) float64 {
		d.setStyle(s)
		return d.pdf.GetStringWidth(encode(text))
	}
}

// block normalizes and wraps text into lines of one style. Only the first
// line carries the gap.
func (d *document) block(text string, style Style, gap float64) []Line {
	var out []Line
	for _, forced := range Normalize(text) {
		for _, wrapped := range Wrap(forced, d.width, d.measure(style)) {
			out = append(out, Line{Text: wrapped, Style: style})
		}
	}
	if len(out) > 0 {
		out[0].Gap = gap
	}
	return out
}

// write lays the lines out on as many pages as needed and outputs the PDF
func (d *document) write(w io.Writer, lines []Line) error {
	pager := Pager{
		Top:        pageMargin,
		Bottom:     pageHeight - pageMargin,
		LineHeight: func(s Style) float64 { return fonts[s].height },
	}

	for _, page := range pager.Paginate(lines) {
		d.pdf.AddPage()
		for _, l := range page {
			d.setStyle(l.Style)
			d.pdf.Text(pageMargin, l.Y, encode(l.Text))
		}
	}
	if d.pdf.PageCount() == 0 {
		d.pdf.AddPage()
	}

	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (d *document) reportLines(entries []report.Entry) []Line {
	lines := d.block(ReportTitle, StyleTitle, 0)
	for i, e := range entries {
		gap := 1.0
		if i == 0 {
			gap = 4
		}
		lines = append(lines, d.block(e.Label+": "+e.Value, StyleBody, gap)...)
	}
	return lines
}

// RenderPDF writes the report as a paginated A4 document. Entries keep the
// order and content of the text report; long values are wrapped.
func RenderPDF(w io.Writer, entries []report.Entry) error {
	d := newDocument(ReportTitle)
	return d.write(w, d.reportLines(entries))
}

func (d *document) hygieneLines(h report.Hygiene) []Line {
	lines := d.block(HygieneTitle, StyleTitle, 0)

	header := nonEmptyPairs(
		"Patient", h.Patient,
		"Date", h.Date,
	)
	for i, l := range header {
		gap := 0.0
		if i == 0 {
			gap = 4
		}
		lines = append(lines, d.block(l, StyleBody, gap)...)
	}

	if h.Technique != "" || h.Description != "" {
		title := "Technique de brossage"
		if h.Technique != "" {
			title += ": " + h.Technique
		}
		lines = append(lines, d.block(title, StyleHeading, 6)...)
		for _, p := range TechniqueInstructions(h.Technique, h.Description) {
			lines = append(lines, d.block(p, StyleBody, 1)...)
		}
	}

	advice := nonEmptyPairs(
		"Type de brosse conseillé", h.BrushType,
		"Bain de bouche", h.Mouthwash,
		"Dentifrice", h.Toothpaste,
	)
	if len(advice) > 0 {
		lines = append(lines, d.block("Conseils", StyleHeading, 6)...)
		for _, l := range advice {
			lines = append(lines, d.block(l, StyleBody, 1)...)
		}
	}

	spaces := h.Interdental()
	if len(spaces) > 0 {
		lines = append(lines, d.block("Espaces interdentaires", StyleHeading, 6)...)
		for _, l := range spaces {
			lines = append(lines, d.block(l, StyleBody, 0)...)
		}
		for _, m := range DetectMethods(spaces) {
			lines = append(lines, d.block(m.Name, StyleHeading, 4)...)
			for _, p := range m.Instructions {
				lines = append(lines, d.block(p, StyleBody, 1)...)
			}
		}
	}
	return lines
}

// RenderHygienePDF writes the hygiene instructions sheet
func RenderHygienePDF(w io.Writer, h report.Hygiene) error {
	d := newDocument(HygieneTitle)
	return d.write(w, d.hygieneLines(h))
}

func nonEmptyPairs(kv ...string) []string {
	var out []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out = append(out, kv[i]+": "+kv[i+1])
		}
	}
	return out
}
