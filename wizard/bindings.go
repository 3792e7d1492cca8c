package wizard

import (
	"maps"
	"slices"

	"github.com/giygas/fiche-dentaire/form"
)

// depositBinding holds the values of one deposit field while the form runs
type depositBinding struct {
	severities []string
	locations  []string
	specify    string
	sextants   []string
}

// quadrantBinding holds the affected teeth per category of one quadrant
type quadrantBinding struct {
	spec  form.QuadrantSpec
	teeth map[string]*[]string
	note  string
}

// spaceBinding holds the cleaning detail of one interdental space
type spaceBinding struct {
	methods      []string
	brushBrand   string
	brushSize    string
	softPickSize string
}

// toothBinding holds the detail of one affected tooth
type toothBinding struct {
	surfaces []string
	note     string
	// marks loaded from a file, kept so a Préciser text survives the wizard
	loaded map[string]form.SurfaceMark
}

// bindings are the variables huh fields write to. answers rebuilds a
// form.Answers from them at any time, so visibility can be evaluated live.
type bindings struct {
	text     map[string]*string
	choices  map[string]*[]string
	deposits map[string]*depositBinding
	quads    map[string]*quadrantBinding
	spaces   []string
	space    map[string]*spaceBinding
	teeth    map[toothKey]*toothBinding
}

// toothKey identifies one tooth under one category of one quadrant
type toothKey struct {
	quadrant string
	category string
	tooth    string
}

// newBindings seeds the bindings from a
func newBindings(a form.Answers) *bindings {
	b := &bindings{
		text:     make(map[string]*string),
		choices:  make(map[string]*[]string),
		deposits: make(map[string]*depositBinding),
		quads:    make(map[string]*quadrantBinding),
		space:    make(map[string]*spaceBinding),
		teeth:    make(map[toothKey]*toothBinding),
	}

	for _, f := range form.Catalog() {
		switch f.Kind {
		case form.KindText, form.KindDate, form.KindTime, form.KindChoice:
			v := a.Text(f.Name)
			b.text[f.Name] = &v
		case form.KindMulti:
			v := slices.Clone(a.Multi(f.Name))
			b.choices[f.Name] = &v
		case form.KindDeposit:
			d := a.Deposit(f.Name)
			b.deposits[f.Name] = &depositBinding{
				severities: slices.Clone(d.Severities),
				locations:  slices.Clone(d.Locations),
				specify:    d.Specify,
				sextants:   slices.Clone(d.Sextants),
			}
		case form.KindQuadrant:
			b.seedQuadrant(f.Name, a.Quadrant(f.Name))
		case form.KindSpace:
			if _, ok := a.Get(f.Name); !ok {
				continue
			}
			s := a.Space(f.Name)
			b.spaces = append(b.spaces, f.Name)
			b.space[f.Name] = &spaceBinding{
				methods:      slices.Clone(s.Methods),
				brushBrand:   s.BrushBrand,
				brushSize:    s.BrushSize,
				softPickSize: s.SoftPickSize,
			}
		}
	}
	return b
}

func (b *bindings) seedQuadrant(field string, q form.QuadrantFinding) {
	spec, _ := form.LookupQuadrant(field)
	qb := &quadrantBinding{spec: spec, teeth: make(map[string]*[]string), note: q.Note}

	for _, cat := range form.Categories {
		var teeth []string
		if f := q.Findings[cat.Name]; f != nil {
			teeth = slices.Clone(f.Teeth)
			for _, tooth := range f.Teeth {
				tb := b.tooth(toothKey{field, cat.Name, tooth})
				if d := f.Details[tooth]; d != nil {
					tb.note = d.Note
					tb.loaded = maps.Clone(d.Surfaces)
					tb.surfaces = slices.Sorted(maps.Keys(d.Surfaces))
				}
			}
		}
		qb.teeth[cat.Name] = &teeth
	}
	b.quads[field] = qb
}

// tooth returns the binding for k, creating it on first use
func (b *bindings) tooth(k toothKey) *toothBinding {
	tb, ok := b.teeth[k]
	if !ok {
		tb = &toothBinding{}
		b.teeth[k] = tb
	}
	return tb
}

// spaceDetail returns the binding for a space field, creating it on first use
func (b *bindings) spaceDetail(field string) *spaceBinding {
	sb, ok := b.space[field]
	if !ok {
		sb = &spaceBinding{}
		b.space[field] = sb
	}
	return sb
}

// answers rebuilds the answers from the current binding values
func (b *bindings) answers() form.Answers {
	values := make(map[string]form.Answer)

	for name, v := range b.text {
		values[name] = form.TextAnswer(*v)
	}
	for name, v := range b.choices {
		values[name] = form.MultiAnswer(*v...)
	}
	for name, d := range b.deposits {
		values[name] = form.Answer{Deposit: &form.DepositEntry{
			Severities: slices.Clone(d.severities),
			Locations:  slices.Clone(d.locations),
			Specify:    d.specify,
			Sextants:   slices.Clone(d.sextants),
		}}
	}
	for name, qb := range b.quads {
		q := b.quadrant(name, qb)
		values[name] = form.Answer{Quadrant: &q}
	}
	for _, name := range b.spaces {
		sb := b.spaceDetail(name)
		values[name] = form.Answer{Space: &form.SpaceCleaning{
			Methods:      slices.Clone(sb.methods),
			BrushBrand:   sb.brushBrand,
			BrushSize:    sb.brushSize,
			SoftPickSize: sb.softPickSize,
		}}
	}

	return form.NewAnswers(values)
}

func (b *bindings) quadrant(field string, qb *quadrantBinding) form.QuadrantFinding {
	q := form.QuadrantFinding{Findings: make(map[string]*form.CategoryFinding), Note: qb.note}

	for _, cat := range form.Categories {
		teeth := *qb.teeth[cat.Name]
		if len(teeth) == 0 {
			continue
		}
		cf := &form.CategoryFinding{Teeth: slices.Clone(teeth)}
		for _, tooth := range teeth {
			tb, ok := b.teeth[toothKey{field, cat.Name, tooth}]
			if !ok {
				continue
			}
			if d := tb.detail(cat); d != nil {
				if cf.Details == nil {
					cf.Details = make(map[string]*form.ToothDetail)
				}
				cf.Details[tooth] = d
			}
		}
		q.Findings[cat.Name] = cf
	}
	return q
}

// detail converts the binding to a tooth detail, nil when nothing was entered
func (tb *toothBinding) detail(cat form.Category) *form.ToothDetail {
	d := &form.ToothDetail{Note: tb.note}
	if cat.Surfaced && len(tb.surfaces) > 0 {
		d.Surfaces = make(map[string]form.SurfaceMark, len(tb.surfaces))
		for _, s := range tb.surfaces {
			mark, ok := tb.loaded[s]
			if !ok {
				mark = form.SurfaceMark{Choice: form.MarkPresent}
			}
			d.Surfaces[s] = mark
		}
	}
	if d.Note == "" && len(d.Surfaces) == 0 {
		return nil
	}
	return d
}

// selectedTeeth lists the affected teeth in quadrant, category and tooth order
func (b *bindings) selectedTeeth() []toothKey {
	var keys []toothKey
	for _, q := range form.Quadrants {
		qb, ok := b.quads[q.Field]
		if !ok {
			continue
		}
		for _, cat := range form.Categories {
			for _, tooth := range q.Teeth {
				if slices.Contains(*qb.teeth[cat.Name], tooth) {
					keys = append(keys, toothKey{q.Field, cat.Name, tooth})
				}
			}
		}
	}
	return keys
}

// selectedSpaces lists the chosen space fields in report order
func (b *bindings) selectedSpaces() []string {
	var out []string
	for _, space := range slices.Concat(form.MaxillarySpaces, form.MandibularSpaces) {
		if field := form.SpaceField(space); slices.Contains(b.spaces, field) {
			out = append(out, field)
		}
	}
	return out
}
