// Package export writes reports to the output directory. Every file is
// written to a temporary file first and renamed into place, so a failed
// export never leaves a partial report behind.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/metrics"
	"github.com/giygas/fiche-dentaire/render"
	"github.com/giygas/fiche-dentaire/report"
)

// Compile-time check to ensure Exporter implements Exporter interface
var _ interfaces.Exporter = (*Exporter)(nil)

// File name prefixes
const (
	PrefixReport  = "Rapport"
	PrefixHygiene = "Conseils_Hygiene"
	PrefixEdited  = "Rapport_Modifié"
)

// Formats, as counted by reports_generated_total
const (
	FormatText    = "text"
	FormatPDF     = "pdf"
	FormatHygiene = "hygiene"
	FormatEdited  = "edited"
)

// Formats lists the formats Write accepts, in export order
var Formats = []string{FormatText, FormatPDF, FormatHygiene}

// ErrUnknownFormat is returned by Write for a format outside Formats
var ErrUnknownFormat = errors.New("unknown export format")

const timestampLayout = "20060102_150405"

// Exporter writes report files into a single directory
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter writing into dir. The directory is
// created on first write if missing.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the output directory
func (e *Exporter) Dir() string {
	return e.dir
}

// FileName builds <prefix>_<Nom_Prénom>_<YYYYMMDD_HHMMSS>.<ext>. The name
// segment is left out when the sanitized patient name is empty.
func FileName(prefix, patient string, at time.Time, ext string) string {
	parts := []string{prefix}
	if name := SanitizeName(patient); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, at.Format(timestampLayout))
	return strings.Join(parts, "_") + "." + ext
}

// SanitizeName turns a patient name into a file name segment: whitespace
// runs become a single underscore; anything but letters, digits, '-' and
// '_' is dropped.
func SanitizeName(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		fields[i] = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				return r
			}
			return -1
		}, f)
	}

	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "_")
}

// Write exports the report of answers in format through e. entries are the
// assembled report of the same answers.
func Write(e interfaces.Exporter, format string, answers form.Answers, entries []report.Entry) (string, error) {
	patient := answers.Text("nom_prenom")
	switch format {
	case FormatText:
		return e.WriteText(patient, entries)
	case FormatPDF:
		return e.WritePDF(patient, entries)
	case FormatHygiene:
		return e.WriteHygiene(report.BuildHygiene(answers))
	}
	return "", fmt.Errorf("%w %q, expected %s", ErrUnknownFormat, format, strings.Join(Formats, ", "))
}

// WriteText writes the plain text report
func (e *Exporter) WriteText(patient string, entries []report.Entry) (string, error) {
	return e.write(PrefixReport, patient, "txt", FormatText, func(w io.Writer) error {
		_, err := io.WriteString(w, render.Text(entries))
		return err
	})
}

// WritePDF writes the report document
func (e *Exporter) WritePDF(patient string, entries []report.Entry) (string, error) {
	return e.write(PrefixReport, patient, "pdf", FormatPDF, func(w io.Writer) error {
		return render.RenderPDF(w, entries)
	})
}

// WriteHygiene writes the hygiene instructions document
func (e *Exporter) WriteHygiene(h report.Hygiene) (string, error) {
	return e.write(PrefixHygiene, h.Patient, "pdf", FormatHygiene, func(w io.Writer) error {
		return render.RenderHygienePDF(w, h)
	})
}

// WriteEdited writes a text report edited by the practitioner, as is
func (e *Exporter) WriteEdited(patient, text string) (string, error) {
	return e.write(PrefixEdited, patient, "txt", FormatEdited, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

func (e *Exporter) write(prefix, patient, ext, format string, fill func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.dir, FileName(prefix, patient, e.now(), ext))
	if err := writeFile(path, fill); err != nil {
		logging.Error("Export failed", "format", format, "path", path, "error", err)
		return "", err
	}

	metrics.ReportsGenerated.WithLabelValues(format).Inc()
	logging.Info("Report exported", "format", format, "path", path)
	return path, nil
}

// writeFile fills a temporary file next to path and renames it into place
func writeFile(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}
