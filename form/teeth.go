package form

import (
	"maps"
	"slices"
	"strconv"
)

// Surface mark choices
const (
	MarkPresent = "X"
	MarkSpecify = "Préciser"
)

// Category is one kind of tooth finding. Surfaced categories are annotated
// per tooth surface, the others only record a state with an optional note.
type Category struct {
	Name     string
	Surfaced bool
}

// Categories lists finding categories in report order
var Categories = []Category{
	{Name: "Carie", Surfaced: true},
	{Name: "Obturation", Surfaced: true},
	{Name: "Absente"},
	{Name: "Implant"},
	{Name: "Couronne"},
	{Name: "Bridge"},
}

// LookupCategory finds a category by name
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// QuadrantSpec configures one quadrant: its field, tooth numbers and surface vocabulary
type QuadrantSpec struct {
	Field    string
	Label    string
	Teeth    []string
	Surfaces []string
}

// newQuadrant builds the QuadrantSpec of quadrant n (1..4). Upper quadrants use the
// palatal surface P, lower ones the lingual surface L.
func newQuadrant(n int) QuadrantSpec {
	inner := "P"
	if n > 2 {
		inner = "L"
	}
	teeth := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		teeth = append(teeth, strconv.Itoa(n*10+i))
	}
	return QuadrantSpec{
		Field:    "q" + strconv.Itoa(n),
		Label:    "Q" + strconv.Itoa(n),
		Teeth:    teeth,
		Surfaces: []string{"M", "D", "O", "V", inner},
	}
}

// Quadrants Q1 to Q4
var Quadrants = []QuadrantSpec{newQuadrant(1), newQuadrant(2), newQuadrant(3), newQuadrant(4)}

// LookupQuadrant finds the QuadrantSpec of a quadrant field
func LookupQuadrant(field string) (QuadrantSpec, bool) {
	for _, q := range Quadrants {
		if q.Field == field {
			return q, true
		}
	}
	return QuadrantSpec{}, false
}

// QuadrantFinding is the finding tree of one quadrant: category, then tooth, then surface.
type QuadrantFinding struct {
	Findings map[string]*CategoryFinding `json:"findings,omitempty" yaml:"findings,omitempty"`
	Note     string                      `json:"note,omitempty" yaml:"note,omitempty"`
}

// CategoryFinding lists the affected teeth and their details for one category
type CategoryFinding struct {
	Teeth   []string                `json:"teeth,omitempty" yaml:"teeth,omitempty"`
	Details map[string]*ToothDetail `json:"details,omitempty" yaml:"details,omitempty"`
}

// ToothDetail holds the surface marks of a tooth, or a note for state categories
type ToothDetail struct {
	Surfaces map[string]SurfaceMark `json:"surfaces,omitempty" yaml:"surfaces,omitempty"`
	Note     string                 `json:"note,omitempty" yaml:"note,omitempty"`
}

// SurfaceMark is either a plain marker or Préciser with free text
type SurfaceMark struct {
	Choice string `json:"choice" yaml:"choice"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// TextVisible reports whether the free text applies to the mark
func (m SurfaceMark) TextVisible() bool {
	return m.Choice == MarkSpecify
}

// DetailVisible reports whether per-tooth detail applies: the tooth must be
// listed among the category's affected teeth.
func (q QuadrantFinding) DetailVisible(category, tooth string) bool {
	f, ok := q.Findings[category]
	if !ok || f == nil {
		return false
	}
	return slices.Contains(f.Teeth, tooth)
}

func (q QuadrantFinding) isEmpty() bool {
	if q.Note != "" {
		return false
	}
	for _, f := range q.Findings {
		if f != nil && len(f.Teeth) > 0 {
			return false
		}
	}
	return true
}

func (q QuadrantFinding) clone() QuadrantFinding {
	out := QuadrantFinding{Note: q.Note}
	if q.Findings == nil {
		return out
	}
	out.Findings = make(map[string]*CategoryFinding, len(q.Findings))
	for name, f := range q.Findings {
		if f == nil {
			continue
		}
		c := CategoryFinding{Teeth: slices.Clone(f.Teeth)}
		if f.Details != nil {
			c.Details = make(map[string]*ToothDetail, len(f.Details))
			for tooth, d := range f.Details {
				if d == nil {
					continue
				}
				c.Details[tooth] = &ToothDetail{Surfaces: maps.Clone(d.Surfaces), Note: d.Note}
			}
		}
		out.Findings[name] = &c
	}
	return out
}

// Prune keeps only what is visible for this quadrant: known categories,
// teeth of the quadrant, details of affected teeth, surfaces of the
// vocabulary and surface text when Préciser was chosen.
func (s QuadrantSpec) Prune(q QuadrantFinding) QuadrantFinding {
	out := QuadrantFinding{Note: q.Note}
	for _, cat := range Categories {
		f := q.Findings[cat.Name]
		if f == nil {
			continue
		}
		pruned := s.pruneCategory(cat, f)
		if len(pruned.Teeth) == 0 {
			continue
		}
		if out.Findings == nil {
			out.Findings = make(map[string]*CategoryFinding)
		}
		out.Findings[cat.Name] = &pruned
	}
	return out
}

func (s QuadrantSpec) pruneCategory(cat Category, f *CategoryFinding) CategoryFinding {
	var out CategoryFinding
	for _, tooth := range s.Teeth {
		if !slices.Contains(f.Teeth, tooth) {
			continue
		}
		out.Teeth = append(out.Teeth, tooth)

		d := f.Details[tooth]
		if d == nil {
			continue
		}
		detail := ToothDetail{Note: d.Note}
		if cat.Surfaced {
			detail.Note = ""
			for _, surface := range s.Surfaces {
				mark, ok := d.Surfaces[surface]
				if !ok || (mark.Choice != MarkPresent && mark.Choice != MarkSpecify) {
					continue
				}
				if !mark.TextVisible() {
					mark.Text = ""
				}
				if detail.Surfaces == nil {
					detail.Surfaces = make(map[string]SurfaceMark)
				}
				detail.Surfaces[surface] = mark
			}
		}
		if len(detail.Surfaces) == 0 && detail.Note == "" {
			continue
		}
		if out.Details == nil {
			out.Details = make(map[string]*ToothDetail)
		}
		out.Details[tooth] = &detail
	}
	return out
}
