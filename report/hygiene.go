package report

import "github.com/giygas/fiche-dentaire/form"

// Hygiene is the content of the hygiene instructions handed to the patient
type Hygiene struct {
	Patient     string
	Date        string
	Technique   string
	Description string
	BrushType   string
	Mouthwash   string
	Toothpaste  string
	Maxillary   []string
	Mandibular  []string
}

// Interdental returns the maxillary then mandibular space lines
func (h Hygiene) Interdental() []string {
	out := make([]string, 0, len(h.Maxillary)+len(h.Mandibular))
	out = append(out, h.Maxillary...)
	return append(out, h.Mandibular...)
}

// BuildHygiene extracts the hygiene instructions from a. For a custom
// technique the name given by the practitioner is used and its description
// is carried along for the document.
func BuildHygiene(a form.Answers) Hygiene {
	a = form.Prune(a)

	h := Hygiene{
		Patient:    a.Text("nom_prenom"),
		Date:       date("date_aujourdhui")(a),
		Technique:  a.Choice("technique"),
		BrushType:  a.Choice("type_brosse"),
		Mouthwash:  a.Text("bain_bouche"),
		Toothpaste: a.Text("conseil_dentifrice"),
		Maxillary:  InterdentalLines(a, form.MaxillarySpaces),
		Mandibular: InterdentalLines(a, form.MandibularSpaces),
	}
	if h.Technique == form.Other {
		h.Technique = a.Text("technique_autre")
		h.Description = a.Text("technique_description")
	}
	return h
}
