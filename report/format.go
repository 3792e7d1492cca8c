package report

import (
	"slices"
	"strings"

	"github.com/giygas/fiche-dentaire/form"
)

// FormatDeposit renders a deposit entry. No severity, or Inexistant among
// the severities, gives exactly "Inexistant" whatever the location detail.
func FormatDeposit(d form.DepositEntry) string {
	if d.IsNone() {
		return form.DepositNone
	}

	out := strings.Join(d.Severities, ", ")

	var locations []string
	for _, tag := range []string{form.LocationGeneral, form.LocationCollar} {
		if slices.Contains(d.Locations, tag) {
			locations = append(locations, tag)
		}
	}
	if slices.Contains(d.Locations, form.LocationSpecify) && strings.TrimSpace(d.Specify) != "" {
		locations = append(locations, form.LocationSpecify+": "+strings.TrimSpace(d.Specify))
	}
	if slices.Contains(d.Locations, form.LocationSextant) && len(d.Sextants) > 0 {
		locations = append(locations, form.LocationSextant+": "+strings.Join(d.Sextants, ", "))
	}

	if len(locations) > 0 {
		out += " (" + strings.Join(locations, ", ") + ")"
	}
	return out
}

// FormatSpace renders the cleaning methods of one interdental space:
// brushes with their brand and size first, then soft pick with its size,
// then the remaining methods in option order.
func FormatSpace(s form.SpaceCleaning) string {
	var parts []string

	if s.BrushVisible() {
		detail := nonEmpty(s.BrushBrand, s.BrushSize)
		if len(detail) == 0 {
			parts = append(parts, form.MethodBrushes)
		} else {
			parts = append(parts, "Brossettes: "+strings.Join(detail, ", "))
		}
	}
	if s.SoftPickVisible() {
		if s.SoftPickSize == "" {
			parts = append(parts, form.MethodSoftPick)
		} else {
			parts = append(parts, form.MethodSoftPick+": "+s.SoftPickSize)
		}
	}
	for _, m := range form.CleaningMethods {
		if m == form.MethodBrushes || m == form.MethodSoftPick {
			continue
		}
		if slices.Contains(s.Methods, m) {
			parts = append(parts, m)
		}
	}

	return strings.Join(parts, ", ")
}

// InterdentalLines renders one "space: methods" line per space in the given
// order. Spaces without a method give no line.
func InterdentalLines(a form.Answers, spaces []string) []string {
	var lines []string
	for _, space := range spaces {
		v := FormatSpace(a.Space(form.SpaceField(space)))
		if v == "" {
			continue
		}
		lines = append(lines, space+": "+v)
	}
	return lines
}

// node is one level of a finding tree. A node renders as its head alone,
// "head: kids" or, when wrapped, "head (kids)".
type node struct {
	head string
	wrap bool
	sep  string
	kids []node
}

func (n node) String() string {
	if len(n.kids) == 0 {
		return n.head
	}
	parts := make([]string, 0, len(n.kids))
	for _, k := range n.kids {
		parts = append(parts, k.String())
	}
	body := strings.Join(parts, n.sep)

	switch {
	case n.head == "":
		return body
	case n.wrap:
		return n.head + " (" + body + ")"
	default:
		return n.head + ": " + body
	}
}

func leaf(s string) node {
	return node{head: s}
}

// FormatQuadrant renders the finding tree of one quadrant, for example
// "Carie: 16 (O, M: profonde), 17; Absente: 18; Note: sensibilité".
func FormatQuadrant(spec form.QuadrantSpec, q form.QuadrantFinding) string {
	root := node{sep: "; "}

	for _, cat := range form.Categories {
		f := q.Findings[cat.Name]
		if f == nil || len(f.Teeth) == 0 {
			continue
		}
		catNode := node{head: cat.Name, sep: ", "}
		for _, tooth := range spec.Teeth {
			if !slices.Contains(f.Teeth, tooth) {
				continue
			}
			catNode.kids = append(catNode.kids, toothNode(spec, cat, tooth, f.Details[tooth]))
		}
		if len(catNode.kids) > 0 {
			root.kids = append(root.kids, catNode)
		}
	}

	if note := strings.TrimSpace(q.Note); note != "" {
		root.kids = append(root.kids, node{head: "Note", kids: []node{leaf(note)}})
	}

	return root.String()
}

func toothNode(spec form.QuadrantSpec, cat form.Category, tooth string, d *form.ToothDetail) node {
	n := node{head: tooth, wrap: true, sep: ", "}
	if d == nil {
		return n
	}

	if !cat.Surfaced {
		if note := strings.TrimSpace(d.Note); note != "" {
			n.kids = append(n.kids, leaf(note))
		}
		return n
	}

	for _, surface := range spec.Surfaces {
		mark, ok := d.Surfaces[surface]
		if !ok {
			continue
		}
		switch {
		case mark.Choice == form.MarkPresent:
			n.kids = append(n.kids, leaf(surface))
		case mark.TextVisible() && strings.TrimSpace(mark.Text) != "":
			n.kids = append(n.kids, node{head: surface, kids: []node{leaf(strings.TrimSpace(mark.Text))}})
		case mark.TextVisible():
			n.kids = append(n.kids, leaf(surface))
		}
	}
	return n
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
