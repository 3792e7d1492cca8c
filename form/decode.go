package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// ErrUnknownField is returned for answers naming a field outside the catalog
var ErrUnknownField = errors.New("unknown field")

// DecodeError reports an answer that does not fit its field
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks one answer against the catalog: the field must exist, the
// value must have the field's shape and every option must be declared.
// Empty answers are always valid; they clear the field.
func Validate(name string, v Answer) error {
	f, ok := index[name]
	if !ok {
		return &DecodeError{Field: name, Reason: "unknown field", Err: ErrUnknownField}
	}
	if v.IsEmpty() {
		return nil
	}

	structuredSet := v.Deposit != nil || v.Space != nil || v.Quadrant != nil
	switch f.Kind {
	case KindText, KindDate, KindTime, KindChoice:
		if v.Choices != nil || structuredSet {
			return invalid(name, "expected a %s value", f.Kind)
		}
	case KindMulti:
		if v.Text != "" || structuredSet {
			return invalid(name, "expected a list of options")
		}
	case KindDeposit:
		if v.Deposit == nil || v.Space != nil || v.Quadrant != nil || v.Text != "" || v.Choices != nil {
			return invalid(name, "expected a deposit entry")
		}
	case KindSpace:
		if v.Space == nil || v.Deposit != nil || v.Quadrant != nil || v.Text != "" || v.Choices != nil {
			return invalid(name, "expected an interdental cleaning entry")
		}
	case KindQuadrant:
		if v.Quadrant == nil || v.Deposit != nil || v.Space != nil || v.Text != "" || v.Choices != nil {
			return invalid(name, "expected a quadrant finding")
		}
	}

	switch f.Kind {
	case KindDate:
		if _, err := time.Parse(DateLayout, v.Text); err != nil {
			return &DecodeError{Field: name, Reason: "date must use YYYY-MM-DD", Err: err}
		}
	case KindTime:
		if _, err := time.Parse(TimeLayout, v.Text); err != nil {
			return &DecodeError{Field: name, Reason: "time must use HH:MM", Err: err}
		}
	case KindChoice:
		if !f.Accepts(v.Text) {
			return invalid(name, "option %q is not allowed", v.Text)
		}
	case KindMulti:
		for _, c := range v.Choices {
			if !f.Accepts(c) {
				return invalid(name, "option %q is not allowed", c)
			}
		}
	case KindDeposit:
		return validateDeposit(name, *v.Deposit)
	case KindSpace:
		return validateSpace(name, *v.Space)
	case KindQuadrant:
		return validateQuadrant(name, *v.Quadrant)
	}
	return nil
}

func checkAll(field, what string, values, allowed []string) error {
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			return invalid(field, "%s %q is not allowed", what, v)
		}
	}
	return nil
}

func checkOne(field, what, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	return checkAll(field, what, []string{value}, allowed)
}

func validateDeposit(field string, d DepositEntry) error {
	if err := checkAll(field, "severity", d.Severities, DepositSeverities); err != nil {
		return err
	}
	if err := checkAll(field, "location", d.Locations, DepositLocations); err != nil {
		return err
	}
	return checkAll(field, "sextant", d.Sextants, Sextants)
}

func validateSpace(field string, s SpaceCleaning) error {
	if err := checkAll(field, "method", s.Methods, CleaningMethods); err != nil {
		return err
	}
	if err := checkOne(field, "brush brand", s.BrushBrand, BrushBrands); err != nil {
		return err
	}
	if err := checkOne(field, "brush size", s.BrushSize, BrushSizes); err != nil {
		return err
	}
	return checkOne(field, "soft pick size", s.SoftPickSize, SoftPickSizes)
}

func validateQuadrant(field string, q QuadrantFinding) error {
	spec, _ := LookupQuadrant(field)

	categories := make([]string, 0, len(q.Findings))
	for name := range q.Findings {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, name := range categories {
		if _, ok := LookupCategory(name); !ok {
			return invalid(field, "category %q is not allowed", name)
		}
		f := q.Findings[name]
		if f == nil {
			continue
		}
		if err := checkAll(field, "tooth", f.Teeth, spec.Teeth); err != nil {
			return err
		}
		for tooth, d := range f.Details {
			if !slices.Contains(spec.Teeth, tooth) {
				return invalid(field, "tooth %q is not allowed", tooth)
			}
			if d == nil {
				continue
			}
			for surface, mark := range d.Surfaces {
				if !slices.Contains(spec.Surfaces, surface) {
					return invalid(field, "surface %q is not allowed on tooth %s", surface, tooth)
				}
				if mark.Choice != "" && mark.Choice != MarkPresent && mark.Choice != MarkSpecify {
					return invalid(field, "surface mark %q is not allowed", mark.Choice)
				}
			}
		}
	}
	return nil
}

// Decode validates raw answers and returns them as a snapshot. The first
// invalid answer, in field name order, is reported.
func Decode(values map[string]Answer) (Answers, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := Validate(name, values[name]); err != nil {
			return Answers{}, err
		}
	}
	return NewAnswers(values), nil
}

// DecodeJSON parses a flat JSON object of answers and validates it
func DecodeJSON(data []byte) (Answers, error) {
	var values map[string]Answer
	if err := json.Unmarshal(data, &values); err != nil {
		return Answers{}, fmt.Errorf("failed to parse answers: %w", err)
	}
	return Decode(values)
}

// Defaults returns the catalog default values, as a fresh form starts with
func Defaults() Answers {
	values := make(map[string]Answer)
	for _, f := range catalog {
		if f.Default != "" {
			values[f.Name] = TextAnswer(f.Default)
		}
	}
	return NewAnswers(values)
}
