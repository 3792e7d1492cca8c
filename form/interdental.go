package form

import "slices"

// Interdental cleaning methods
const (
	MethodBrushes  = "Brossettes interdentaires"
	MethodFloss    = "Fil dentaire"
	MethodHolder   = "Porte fil"
	MethodSoftPick = "Soft pick"
	MethodNone     = "Aucun"
)

var (
	CleaningMethods = []string{MethodBrushes, MethodFloss, MethodHolder, MethodSoftPick, MethodNone}
	BrushBrands     = []string{"Curaprox", "Interprox", "TeePee", "Gum"}
	BrushSizes      = []string{"0.6 mm", "0.7 mm", "0.8mm", "1.1mm", "1.3mm", "1.5mm", "1.9mm", "2.2mm", "2.7mm"}
	SoftPickSizes   = []string{"Small", "Medium", "Large"}

	// MaxillarySpaces and MandibularSpaces are in report order
	MaxillarySpaces = []string{
		"18-17", "17-16", "16-15", "15-14", "14-13", "13-12", "12-11", "11-21",
		"21-22", "22-23", "23-24", "24-25", "25-26", "26-27", "27-28",
	}
	MandibularSpaces = []string{
		"48-47", "47-46", "46-45", "45-44", "44-43", "43-42", "42-41", "41-31",
		"31-32", "32-33", "33-34", "34-35", "35-36", "36-37", "37-38",
	}
)

// SpaceField is the field name holding the cleaning methods of one interdental space
func SpaceField(space string) string {
	return "espace_" + space
}

// SpaceCleaning records how one interdental space is cleaned
type SpaceCleaning struct {
	Methods      []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	BrushBrand   string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	BrushSize    string   `json:"size,omitempty" yaml:"size,omitempty"`
	SoftPickSize string   `json:"soft_pick_size,omitempty" yaml:"soft_pick_size,omitempty"`
}

// BrushVisible reports whether brand and size apply
func (s SpaceCleaning) BrushVisible() bool {
	return slices.Contains(s.Methods, MethodBrushes)
}

// SoftPickVisible reports whether the soft pick size applies
func (s SpaceCleaning) SoftPickVisible() bool {
	return slices.Contains(s.Methods, MethodSoftPick)
}

func (s SpaceCleaning) isEmpty() bool {
	return len(s.Methods) == 0 && s.BrushBrand == "" && s.BrushSize == "" && s.SoftPickSize == ""
}

func (s SpaceCleaning) clone() SpaceCleaning {
	out := s
	out.Methods = slices.Clone(s.Methods)
	return out
}

func (s SpaceCleaning) prune() SpaceCleaning {
	out := SpaceCleaning{Methods: slices.Clone(s.Methods)}
	if s.BrushVisible() {
		out.BrushBrand = s.BrushBrand
		out.BrushSize = s.BrushSize
	}
	if s.SoftPickVisible() {
		out.SoftPickSize = s.SoftPickSize
	}
	return out
}
