package render

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/giygas/fiche-dentaire/report"
)

func sampleEntries() []report.Entry {
	return []report.Entry{
		{Label: "Nom et Prénom", Value: "Jean Dupont"},
		{Label: "Cigarette", Value: "1 paquet/jour"},
		{Label: "DHD", Value: "Gingivite"},
		{Label: "Espaces Interdentaires Maxillaire", Value: "18-17: Soft pick: Small\n11-21: Fil dentaire"},
	}
}

func TestText(t *testing.T) {
	got := Text(sampleEntries())
	want := "Rapport Patient\n\n" +
		"Nom et Prénom: Jean Dupont\n" +
		"Cigarette: 1 paquet/jour\n" +
		"DHD: Gingivite\n" +
		"Espaces Interdentaires Maxillaire: 18-17: Soft pick: Small\n11-21: Fil dentaire\n"
	if got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}

	if got := Text(nil); got != "Rapport Patient\n\n" {
		t.Errorf("Text(nil) = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "Jean Dupont", []string{"Jean Dupont"}},
		{"newlines", "a\n\n b \r\nc", []string{"a", "b", "c"}},
		{"leading item", "- brosse souple", []string{"- brosse souple"}},
		{"items after colon", "Conseils: - brosse souple - fil", []string{"Conseils:", "- brosse souple - fil"}},
		{"items after sentences", "Brossage matin. - CHX; - Fluor", []string{"Brossage matin.", "- CHX;", "- Fluor"}},
		{"dash inside text", "Parodontite - Stade: III", []string{"Parodontite - Stade: III"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// runeWidth measures one unit per rune
func runeWidth(s string) float64 {
	return float64(len([]rune(s)))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width float64
		want  []string
	}{
		{"fits", "un deux", 10, []string{"un deux"}},
		{"breaks between words", "un deux trois", 8, []string{"un deux", "trois"}},
		{"long word is split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"accents count as one", "éééé ààà", 4, []string{"éééé", "ààà"}},
		{"empty", "   ", 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.line, tt.width, runeWidth); !slices.Equal(got, tt.want) {
				t.Errorf("Wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	p := Pager{Top: 10, Bottom: 40, LineHeight: func(Style) float64 { return 10 }}

	lines := make([]Line, 7)
	for i := range lines {
		lines[i] = Line{Text: fmt.Sprint(i)}
	}
	lines[3].Gap = 5

	pages := p.Paginate(lines)
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}

	// 10+10, 10+20, 10+30 fill the first page; line 3 with its gap would end at 55.
	var ys []float64
	for _, l := range pages[0] {
		ys = append(ys, l.Y)
	}
	if !slices.Equal(ys, []float64{20, 30, 40}) {
		t.Errorf("first page positions = %v", ys)
	}
	if pages[1][0].Text != "3" || pages[1][0].Y != 20 {
		t.Errorf("second page starts with %q at %v, want line 3 at the top", pages[1][0].Text, pages[1][0].Y)
	}

	if got := p.Paginate(nil); got != nil {
		t.Errorf("Paginate(nil) = %v", got)
	}
}

func TestReportLinesMatchText(t *testing.T) {
	entries := append(sampleEntries(), report.Entry{
		Label: "PF",
		Value: strings.Repeat("contrôle de plaque et motivation ", 12),
	})

	d := newDocument(ReportTitle)
	lines := d.reportLines(entries)

	var pdfWords []string
	for _, l := range lines {
		pdfWords = append(pdfWords, strings.Fields(l.Text)...)
	}
	textWords := strings.Fields(Text(entries))

	if !slices.Equal(pdfWords, textWords) {
		t.Errorf("PDF content differs from text report:\n%v\n%v", pdfWords, textWords)
	}

	measure := d.measure(StyleBody)
	for _, l := range lines {
		if l.Style == StyleBody && measure(l.Text) > d.width {
			t.Errorf("line wider than the page: %q", l.Text)
		}
	}
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPDF(&buf, sampleEntries()); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestRenderPDFPaginates(t *testing.T) {
	entries := make([]report.Entry, 120)
	for i := range entries {
		entries[i] = report.Entry{Label: fmt.Sprintf("Ligne %d", i), Value: "valeur"}
	}

	d := newDocument(ReportTitle)
	pager := Pager{
		Top:        pageMargin,
		Bottom:     pageHeight - pageMargin,
		LineHeight: func(s Style) float64 { return fonts[s].height },
	}
	pages := pager.Paginate(d.reportLines(entries))
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}
	for _, page := range pages {
		for _, l := range page {
			if l.Y > pageHeight-pageMargin {
				t.Errorf("line %q placed at %v below the bottom margin", l.Text, l.Y)
			}
		}
	}

	var buf bytes.Buffer
	if err := RenderPDF(&buf, entries); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderPDFPropagatesWriteErrors(t *testing.T) {
	if err := RenderPDF(failingWriter{}, sampleEntries()); err == nil {
		t.Error("expected the write error to propagate")
	}
}

func TestRenderHygienePDF(t *testing.T) {
	h := report.Hygiene{
		Patient:    "Jean Dupont",
		Technique:  "Bass modifié",
		BrushType:  "Electrique",
		Maxillary:  []string{"11-21: Brossettes: Curaprox, 0.6 mm"},
		Mandibular: []string{"41-31: Fil dentaire"},
	}

	d := newDocument(HygieneTitle)
	var texts []string
	for _, l := range d.hygieneLines(h) {
		texts = append(texts, l.Text)
	}
	joined := strings.Join(texts, "\n")

	for _, want := range []string{
		"Technique de brossage: Bass modifié",
		"Patient: Jean Dupont",
		"Type de brosse conseillé: Electrique",
		"Brossettes interdentaires",
		"Fil dentaire",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("hygiene sheet misses %q", want)
		}
	}
	if strings.Contains(joined, "Soft pick") {
		t.Error("soft pick instructions included without soft pick")
	}

	var buf bytes.Buffer
	if err := RenderHygienePDF(&buf, h); err != nil {
		t.Fatalf("RenderHygienePDF() error = %v", err)
	}
}
