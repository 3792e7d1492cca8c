package form

// IsVisible reports whether a field should be collected given the answers so
// far. A field is visible when its own predicate holds and its parent is
// visible. Unknown names are never visible.
func IsVisible(name string, a Answers) bool {
	f, ok := index[name]
	if !ok {
		return false
	}
	// The catalog is acyclic, so the chain always ends at a root field.
	for f != nil {
		if f.shown != nil && !f.shown(a) {
			return false
		}
		if f.Parent == "" {
			return true
		}
		f = index[f.Parent]
	}
	return true
}

// Visible lists the visible fields in questionnaire order
func Visible(a Answers) []string {
	var names []string
	for _, f := range catalog {
		if IsVisible(f.Name, a) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Prune drops every hidden answer and every hidden nested detail, leaving a
// consistent sparse set. Answers for unknown names are dropped too.
func Prune(a Answers) Answers {
	out := Answers{values: make(map[string]Answer, len(a.values))}
	for _, f := range catalog {
		v, ok := a.values[f.Name]
		if !ok || !IsVisible(f.Name, a) {
			continue
		}
		v = pruneNested(*f, v.clone())
		if v.IsEmpty() {
			continue
		}
		out.values[f.Name] = v
	}
	return out
}

func pruneNested(f FieldSpec, v Answer) Answer {
	switch f.Kind {
	case KindDeposit:
		if v.Deposit != nil {
			d := v.Deposit.prune()
			v.Deposit = &d
		}
	case KindSpace:
		if v.Space != nil {
			s := v.Space.prune()
			v.Space = &s
		}
	case KindQuadrant:
		if v.Quadrant != nil {
			spec, _ := LookupQuadrant(f.Name)
			q := spec.Prune(*v.Quadrant)
			v.Quadrant = &q
		}
	}
	return v
}
