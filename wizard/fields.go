package wizard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/giygas/fiche-dentaire/form"
)

// noAnswer is the label of the empty option of every select
const noAnswer = "—"

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(form.DateLayout, s); err != nil {
		return fmt.Errorf("format attendu AAAA-MM-JJ")
	}
	return nil
}

func validateClock(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(form.TimeLayout, s); err != nil {
		return fmt.Errorf("format attendu HH:MM")
	}
	return nil
}

// choiceOptions lists the options of a single choice, led by an empty one
// so every field stays optional
func choiceOptions(options []string) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(options)+1)
	out = append(out, huh.NewOption(noAnswer, ""))
	for _, o := range options {
		out = append(out, huh.NewOption(o, o))
	}
	return out
}

// flatField builds the huh field of a text, date, time, choice or multi field
func (b *bindings) flatField(f form.FieldSpec) huh.Field {
	switch f.Kind {
	case form.KindDate:
		return huh.NewInput().Title(f.Label).Placeholder("AAAA-MM-JJ").
			Value(b.text[f.Name]).Validate(validateDate)
	case form.KindTime:
		return huh.NewInput().Title(f.Label).Placeholder("HH:MM").
			Value(b.text[f.Name]).Validate(validateClock)
	case form.KindChoice:
		return huh.NewSelect[string]().Title(f.Label).
			Options(choiceOptions(f.Options)...).Value(b.text[f.Name])
	case form.KindMulti:
		return huh.NewMultiSelect[string]().Title(f.Label).
			Options(huh.NewOptions(f.Options...)...).Value(b.choices[f.Name])
	default:
		return huh.NewInput().Title(f.Label).Value(b.text[f.Name])
	}
}

// hidden reports whether a catalog field is hidden by the current answers
func (b *bindings) hidden(name string) func() bool {
	return func() bool {
		return !form.IsVisible(name, b.answers())
	}
}

// mainGroups builds the first pass: one titled group per tab, split so every
// conditional field sits in its own group hidden with the resolver
func (b *bindings) mainGroups() []*huh.Group {
	var groups []*huh.Group

	for _, tab := range form.Tabs {
		var run []huh.Field
		flush := func() {
			if len(run) > 0 {
				groups = append(groups, huh.NewGroup(run...).Title(string(tab)))
				run = nil
			}
		}

		for _, f := range form.Fields(tab) {
			switch f.Kind {
			case form.KindDeposit:
				flush()
				groups = append(groups, b.depositGroups(tab, f)...)
			case form.KindQuadrant:
				flush()
				groups = append(groups, b.quadrantGroup(tab, f))
			case form.KindSpace:
				// collected by spacesGroup and the detail pass
			default:
				if f.Parent == "" {
					run = append(run, b.flatField(f))
					continue
				}
				flush()
				groups = append(groups,
					huh.NewGroup(b.flatField(f)).Title(string(tab)).WithHideFunc(b.hidden(f.Name)))
			}
		}
		flush()

		if tab == form.TabInstruction {
			groups = append(groups, b.spacesGroup(tab))
		}
	}
	return groups
}

func (b *bindings) depositGroups(tab form.Tab, f form.FieldSpec) []*huh.Group {
	d := b.deposits[f.Name]
	located := func() bool {
		return form.DepositEntry{Severities: d.severities}.LocationVisible()
	}
	title := string(tab) + " · " + f.Label

	return []*huh.Group{
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title(f.Label).
				Options(huh.NewOptions(form.DepositSeverities...)...).Value(&d.severities),
		).Title(title),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Localisation").
				Options(huh.NewOptions(form.DepositLocations...)...).Value(&d.locations),
		).Title(title).WithHideFunc(func() bool { return !located() }),
		huh.NewGroup(
			huh.NewInput().Title("Préciser").Value(&d.specify),
		).Title(title).WithHideFunc(func() bool {
			return !located() || !slices.Contains(d.locations, form.LocationSpecify)
		}),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Sextants").
				Options(huh.NewOptions(form.Sextants...)...).Value(&d.sextants),
		).Title(title).WithHideFunc(func() bool {
			return !located() || !slices.Contains(d.locations, form.LocationSextant)
		}),
	}
}

func (b *bindings) quadrantGroup(tab form.Tab, f form.FieldSpec) *huh.Group {
	qb := b.quads[f.Name]

	fields := make([]huh.Field, 0, len(form.Categories)+1)
	for _, cat := range form.Categories {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title(cat.Name).
			Options(huh.NewOptions(qb.spec.Teeth...)...).
			Value(qb.teeth[cat.Name]))
	}
	fields = append(fields, huh.NewInput().Title("Note "+f.Label).Value(&qb.note))

	return huh.NewGroup(fields...).Title(string(tab) + " · " + f.Label)
}

func (b *bindings) spacesGroup(tab form.Tab) *huh.Group {
	var options []huh.Option[string]
	for _, space := range slices.Concat(form.MaxillarySpaces, form.MandibularSpaces) {
		options = append(options, huh.NewOption(space, form.SpaceField(space)))
	}

	return huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Espaces interdentaires").
			Description("Espaces à renseigner, le détail est demandé ensuite").
			Options(options...).
			Filterable(true).
			Height(12).
			Value(&b.spaces),
	).Title(string(tab))
}

// detailGroups builds the second pass for the teeth and spaces selected in
// the first one. It is empty when nothing was selected.
func (b *bindings) detailGroups() []*huh.Group {
	var groups []*huh.Group

	for _, k := range b.selectedTeeth() {
		spec, _ := form.LookupQuadrant(k.quadrant)
		cat, _ := form.LookupCategory(k.category)
		tb := b.tooth(k)
		title := fmt.Sprintf("%s · %s · %s", spec.Label, cat.Name, k.tooth)

		if cat.Surfaced {
			groups = append(groups, huh.NewGroup(
				huh.NewMultiSelect[string]().Title("Surfaces").
					Options(huh.NewOptions(spec.Surfaces...)...).Value(&tb.surfaces),
			).Title(title))
			continue
		}
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Note").Value(&tb.note),
		).Title(title))
	}

	for _, field := range b.selectedSpaces() {
		sb := b.spaceDetail(field)
		title := "Espace " + strings.TrimPrefix(field, "espace_")

		groups = append(groups,
			huh.NewGroup(
				huh.NewMultiSelect[string]().Title("Moyens").
					Options(huh.NewOptions(form.CleaningMethods...)...).Value(&sb.methods),
			).Title(title),
			huh.NewGroup(
				huh.NewSelect[string]().Title("Marque").
					Options(choiceOptions(form.BrushBrands)...).Value(&sb.brushBrand),
				huh.NewSelect[string]().Title("Taille").
					Options(choiceOptions(form.BrushSizes)...).Value(&sb.brushSize),
			).Title(title).WithHideFunc(func() bool {
				return !slices.Contains(sb.methods, form.MethodBrushes)
			}),
			huh.NewGroup(
				huh.NewSelect[string]().Title("Taille Soft pick").
					Options(choiceOptions(form.SoftPickSizes)...).Value(&sb.softPickSize),
			).Title(title).WithHideFunc(func() bool {
				return !slices.Contains(sb.methods, form.MethodSoftPick)
			}),
		)
	}
	return groups
}
