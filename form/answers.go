// Package form holds the intake questionnaire: the field catalog, the answers
// collected for a session and the visibility rules linking them together.
package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Wire layouts for date and time answers
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Answer is one collected value. Only the member matching the field kind is set.
type Answer struct {
	Text     string
	Choices  []string
	Deposit  *DepositEntry
	Space    *SpaceCleaning
	Quadrant *QuadrantFinding
}

// TextAnswer wraps a free text, choice, date or time value
func TextAnswer(v string) Answer {
	return Answer{Text: v}
}

// MultiAnswer wraps a multi-choice selection
func MultiAnswer(choices ...string) Answer {
	return Answer{Choices: slices.Clone(choices)}
}

// DateAnswer formats t as a date answer
func DateAnswer(t time.Time) Answer {
	return Answer{Text: t.Format(DateLayout)}
}

// ClockAnswer formats t as a time-of-day answer
func ClockAnswer(t time.Time) Answer {
	return Answer{Text: t.Format(TimeLayout)}
}

// IsEmpty reports whether the answer carries no value at all
func (a Answer) IsEmpty() bool {
	switch {
	case strings.TrimSpace(a.Text) != "":
		return false
	case len(a.Choices) > 0:
		return false
	case a.Deposit != nil && !a.Deposit.isEmpty():
		return false
	case a.Space != nil && !a.Space.isEmpty():
		return false
	case a.Quadrant != nil && !a.Quadrant.isEmpty():
		return false
	}
	return true
}

func (a Answer) clone() Answer {
	out := Answer{Text: a.Text, Choices: slices.Clone(a.Choices)}
	if a.Deposit != nil {
		d := a.Deposit.clone()
		out.Deposit = &d
	}
	if a.Space != nil {
		s := a.Space.clone()
		out.Space = &s
	}
	if a.Quadrant != nil {
		q := a.Quadrant.clone()
		out.Quadrant = &q
	}
	return out
}

// structured is the union of every object-shaped answer, used while decoding
// before the catalog tells which kind the field expects.
type structured struct {
	DepositEntry    `yaml:",inline"`
	SpaceCleaning   `yaml:",inline"`
	QuadrantFinding `yaml:",inline"`
}

func (s structured) answer() Answer {
	var a Answer
	if !s.DepositEntry.isEmpty() {
		d := s.DepositEntry
		a.Deposit = &d
	}
	if !s.SpaceCleaning.isEmpty() {
		sp := s.SpaceCleaning
		a.Space = &sp
	}
	if !s.QuadrantFinding.isEmpty() {
		q := s.QuadrantFinding
		a.Quadrant = &q
	}
	return a
}

func (a Answer) wireValue() any {
	switch {
	case a.Deposit != nil:
		return a.Deposit
	case a.Space != nil:
		return a.Space
	case a.Quadrant != nil:
		return a.Quadrant
	case a.Choices != nil:
		return a.Choices
	}
	return a.Text
}

// MarshalJSON writes a string, a list or an object depending on the kind
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wireValue())
}

// UnmarshalJSON accepts a string, a list of strings, an object or null
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Answer{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &a.Text)
	case '[':
		a.Choices = []string{}
		return json.Unmarshal(data, &a.Choices)
	case '{':
		var s structured
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = s.answer()
		return nil
	}

	return fmt.Errorf("unsupported answer value %s", string(data))
}

// MarshalYAML mirrors MarshalJSON
func (a Answer) MarshalYAML() (any, error) {
	return a.wireValue(), nil
}

// UnmarshalYAML mirrors UnmarshalJSON
func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	*a = Answer{}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		a.Text = node.Value
		return nil
	case yaml.SequenceNode:
		a.Choices = []string{}
		return node.Decode(&a.Choices)
	case yaml.MappingNode:
		var s structured
		if err := node.Decode(&s); err != nil {
			return err
		}
		*a = s.answer()
		return nil
	}
	return fmt.Errorf("unsupported answer node at line %d", node.Line)
}

// Answers is an immutable snapshot of the answers collected for one request.
// Every getter is total: a field that was never set yields its zero value.
type Answers struct {
	values map[string]Answer
}

// NewAnswers copies values into a new snapshot, dropping empty answers
func NewAnswers(values map[string]Answer) Answers {
	out := Answers{values: make(map[string]Answer, len(values))}
	for name, v := range values {
		if v.IsEmpty() {
			continue
		}
		out.values[name] = v.clone()
	}
	return out
}

// Get returns the raw answer for name
func (a Answers) Get(name string) (Answer, bool) {
	v, ok := a.values[name]
	if !ok {
		return Answer{}, false
	}
	return v.clone(), true
}

// Text returns the trimmed text of a text, choice, date or time answer
func (a Answers) Text(name string) string {
	return strings.TrimSpace(a.values[name].Text)
}

// Choice is Text for single-choice fields
func (a Answers) Choice(name string) string {
	return a.Text(name)
}

// Multi returns the selected options of a multi-choice field
func (a Answers) Multi(name string) []string {
	return slices.Clone(a.values[name].Choices)
}

// Has reports whether option is selected in a multi-choice field
func (a Answers) Has(name, option string) bool {
	return slices.Contains(a.values[name].Choices, option)
}

// Date parses a date answer
func (a Answers) Date(name string) (time.Time, bool) {
	return parseAnswerTime(a.Text(name), DateLayout)
}

// Clock parses a time-of-day answer
func (a Answers) Clock(name string) (time.Time, bool) {
	return parseAnswerTime(a.Text(name), TimeLayout)
}

func parseAnswerTime(v, layout string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Deposit returns the deposit entry of name, zero when absent
func (a Answers) Deposit(name string) DepositEntry {
	if d := a.values[name].Deposit; d != nil {
		return d.clone()
	}
	return DepositEntry{}
}

// Space returns the cleaning methods recorded for an interdental space field
func (a Answers) Space(name string) SpaceCleaning {
	if s := a.values[name].Space; s != nil {
		return s.clone()
	}
	return SpaceCleaning{}
}

// Quadrant returns the tooth findings recorded for a quadrant field
func (a Answers) Quadrant(name string) QuadrantFinding {
	if q := a.values[name].Quadrant; q != nil {
		return q.clone()
	}
	return QuadrantFinding{}
}

// With returns a copy with name set to v. An empty v removes the answer.
func (a Answers) With(name string, v Answer) Answers {
	out := a.copy()
	if v.IsEmpty() {
		delete(out.values, name)
		return out
	}
	out.values[name] = v.clone()
	return out
}

// Without returns a copy without name
func (a Answers) Without(name string) Answers {
	out := a.copy()
	delete(out.values, name)
	return out
}

// Names lists the answered fields in lexical order
func (a Answers) Names() []string {
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of answered fields
func (a Answers) Len() int {
	return len(a.values)
}

// Map returns a deep copy of the underlying values
func (a Answers) Map() map[string]Answer {
	return a.copy().values
}

func (a Answers) copy() Answers {
	out := Answers{values: make(map[string]Answer, len(a.values))}
	for name, v := range a.values {
		out.values[name] = v.clone()
	}
	return out
}

// MarshalJSON writes the answers as a flat object keyed by field name
func (a Answers) MarshalJSON() ([]byte, error) {
	if a.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.values)
}

// MarshalYAML writes the answers as a flat mapping keyed by field name
func (a Answers) MarshalYAML() (any, error) {
	if a.values == nil {
		return map[string]Answer{}, nil
	}
	return a.values, nil
}
