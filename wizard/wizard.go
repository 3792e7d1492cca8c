// Package wizard runs the intake form in the terminal with huh: one page per
// tab with conditional questions hidden by the resolver, a second pass for
// the teeth and interdental spaces that were selected, then the report, the
// medication advisory and the exports.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/giygas/fiche-dentaire/export"
	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/report"
)

// ErrAborted is returned when the practitioner quits the form
var ErrAborted = errors.New("wizard aborted")

// Options configures a wizard run
type Options struct {
	// From is an answers file to start from; empty starts a fresh form
	From string
	// Save is where the answers are written after the form; empty skips it
	Save string

	Exporter interfaces.Exporter
	// Drugs may be nil when no registry is configured
	Drugs interfaces.DrugValidator

	Accessible bool
	Out        io.Writer
	Now        func() time.Time
}

// Wizard holds the state of one terminal intake
type Wizard struct {
	opts     Options
	bindings *bindings
	formats  []string
}

// New prepares a wizard, loading opts.From when set. A fresh form starts
// with the catalog defaults, today's date and the arrival time.
func New(opts Options) (*Wizard, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	answers, err := initialAnswers(opts)
	if err != nil {
		return nil, err
	}

	return &Wizard{
		opts:     opts,
		bindings: newBindings(answers),
		formats:  []string{export.FormatText, export.FormatPDF},
	}, nil
}

func initialAnswers(opts Options) (form.Answers, error) {
	if opts.From != "" {
		a, err := form.LoadYAML(opts.From)
		if err != nil {
			return form.Answers{}, err
		}
		logging.Info("Answers loaded", "path", opts.From, "fields", a.Len())
		return a, nil
	}

	now := opts.Now()
	return form.Defaults().
		With("date_aujourdhui", form.DateAnswer(now)).
		With("hdd", form.ClockAnswer(now)), nil
}

// Run asks the questions, then shows the report and writes the exports
func (w *Wizard) Run(ctx context.Context) error {
	if err := w.ask(ctx, w.bindings.mainGroups()); err != nil {
		return err
	}
	if groups := w.bindings.detailGroups(); len(groups) > 0 {
		if err := w.ask(ctx, groups); err != nil {
			return err
		}
	}

	answers := w.Answers()
	if w.opts.Save != "" {
		if err := form.SaveYAML(w.opts.Save, answers); err != nil {
			return err
		}
		logging.Info("Answers saved", "path", w.opts.Save)
	}

	entries := report.Assemble(answers)
	fmt.Fprintln(w.opts.Out, renderReport(entries))

	if name := answers.Text("medicament"); name != "" {
		fmt.Fprintln(w.opts.Out, renderAdvisory(registry.Advise(ctx, w.opts.Drugs, name)))
	}

	if err := w.ask(ctx, []*huh.Group{w.exportGroup()}); err != nil {
		return err
	}

	paths, err := w.export(answers, entries)
	if len(paths) > 0 {
		fmt.Fprintln(w.opts.Out, "Fichiers enregistrés :")
		fmt.Fprintln(w.opts.Out, renderWritten(paths))
	}
	return err
}

// Answers returns the collected answers, hidden ones pruned
func (w *Wizard) Answers() form.Answers {
	return form.Prune(w.bindings.answers())
}

func (w *Wizard) ask(ctx context.Context, groups []*huh.Group) error {
	f := huh.NewForm(groups...).
		WithTheme(huh.ThemeCharm()).
		WithAccessible(w.opts.Accessible).
		WithShowHelp(true)

	if err := f.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("form failed: %w", err)
	}
	return nil
}

func (w *Wizard) exportGroup() *huh.Group {
	return huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Exports").
			Description("Dossier " + w.opts.Exporter.Dir()).
			Options(
				huh.NewOption("Rapport texte", export.FormatText),
				huh.NewOption("Rapport PDF", export.FormatPDF),
				huh.NewOption("Conseils d'hygiène PDF", export.FormatHygiene),
			).
			Value(&w.formats),
	)
}

// export writes every chosen format, stopping at the first failure
func (w *Wizard) export(answers form.Answers, entries []report.Entry) ([]string, error) {
	var paths []string
	for _, format := range w.formats {
		path, err := export.Write(w.opts.Exporter, format, answers, entries)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
