package render

import (
	"slices"
	"testing"

	"github.com/giygas/fiche-dentaire/form"
)

func TestTechniqueInstructions(t *testing.T) {
	for _, name := range form.Techniques {
		if name == form.Other {
			continue
		}
		if len(TechniqueInstructions(name, "")) == 0 {
			t.Errorf("no instructions for technique %q", name)
		}
	}

	if got := TechniqueInstructions("stillman's", ""); len(got) == 0 {
		t.Error("lookup should ignore case and apostrophe style")
	}

	got := TechniqueInstructions("Fones", "Grands cercles. - dents serrées")
	want := []string{"Grands cercles.", "- dents serrées"}
	if !slices.Equal(got, want) {
		t.Errorf("fallback = %q, want %q", got, want)
	}

	if got := TechniqueInstructions("Fones", ""); got != nil {
		t.Errorf("expected no instructions, got %q", got)
	}
}

func TestDetectMethods(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"none", nil, nil},
		{"brushes", []string{"11-21: Brossettes: Curaprox, 0.6 mm"}, []string{"Brossettes interdentaires"}},
		{
			"several spaces",
			[]string{"18-17: Soft pick: Small", "48-47: Porte fil, Fil dentaire"},
			[]string{"Fil dentaire", "Porte fil", "Soft pick"},
		},
		{"accents and case", []string{"BROSSETTES INTERDENTAIRES"}, []string{"Brossettes interdentaires"}},
		{"holder alone is not floss", []string{"11-21: Porte fil"}, []string{"Porte fil"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range DetectMethods(tt.lines) {
				got = append(got, m.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("DetectMethods() = %v, want %v", got, tt.want)
			}
		})
	}
}
