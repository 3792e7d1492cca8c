package form

import "slices"

// Deposit severities and location tags
const (
	DepositNone     = "Inexistant"
	LocationGeneral = "Gen."
	LocationCollar  = "Collet"
	LocationSpecify = "Préciser"
	LocationSextant = "Sext"
)

var (
	DepositSeverities = []string{DepositNone, "+", "++", "+++", "++++"}
	DepositLocations  = []string{LocationGeneral, LocationCollar, LocationSpecify, LocationSextant}
	Sextants          = []string{"1", "2", "3", "4", "5", "6"}
)

// DepositEntry records plaque or tartar deposits for one deposit field (BF, TR, ...)
type DepositEntry struct {
	Severities []string `json:"severities,omitempty" yaml:"severities,omitempty"`
	Locations  []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Specify    string   `json:"preciser,omitempty" yaml:"preciser,omitempty"`
	Sextants   []string `json:"sext,omitempty" yaml:"sext,omitempty"`
}

// IsNone reports whether no deposit was found: nothing chosen or Inexistant among the choices
func (d DepositEntry) IsNone() bool {
	return len(d.Severities) == 0 || slices.Contains(d.Severities, DepositNone)
}

// LocationVisible reports whether location detail applies to this entry
func (d DepositEntry) LocationVisible() bool {
	for _, s := range d.Severities {
		if s != DepositNone {
			return true
		}
	}
	return false
}

func (d DepositEntry) isEmpty() bool {
	return len(d.Severities) == 0 && len(d.Locations) == 0 && d.Specify == "" && len(d.Sextants) == 0
}

func (d DepositEntry) clone() DepositEntry {
	return DepositEntry{
		Severities: slices.Clone(d.Severities),
		Locations:  slices.Clone(d.Locations),
		Specify:    d.Specify,
		Sextants:   slices.Clone(d.Sextants),
	}
}

// prune drops location detail that does not apply
func (d DepositEntry) prune() DepositEntry {
	out := DepositEntry{Severities: slices.Clone(d.Severities)}
	if !d.LocationVisible() {
		return out
	}
	out.Locations = slices.Clone(d.Locations)
	if slices.Contains(d.Locations, LocationSpecify) {
		out.Specify = d.Specify
	}
	if slices.Contains(d.Locations, LocationSextant) {
		out.Sextants = slices.Clone(d.Sextants)
	}
	return out
}
