// Package report turns a set of answers into the ordered label/value entries
// of the patient report.
package report

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/fiche-dentaire/form"
)

// Report date layouts
const (
	DateLayout     = "02.01.2006"
	DateTimeLayout = "02.01.2006 15:04"
	TimeLayout     = "15:04"
)

// Entry is one line of the report
type Entry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type rule struct {
	label string
	value func(form.Answers) string
}

// Assemble builds the report entries for a. Hidden answers are pruned first,
// then every declared label is computed in declaration order and the empty
// ones are dropped. Assemble never fails: a missing answer only removes the
// labels that depend on it.
func Assemble(a form.Answers) []Entry {
	a = form.Prune(a)

	entries := make([]Entry, 0, len(rules))
	for _, r := range rules {
		v := strings.TrimSpace(r.value(a))
		if v == "" {
			continue
		}
		entries = append(entries, Entry{Label: r.label, Value: v})
	}
	return entries
}

// Labels lists every label the report can carry, in report order
func Labels() []string {
	labels := make([]string, 0, len(rules))
	for _, r := range rules {
		labels = append(labels, r.label)
	}
	return labels
}

// Value returns the value for label, if present
func Value(entries []Entry, label string) (string, bool) {
	for _, e := range entries {
		if e.Label == label {
			return e.Value, true
		}
	}
	return "", false
}

var rules = buildRules()

func buildRules() []rule {
	r := []rule{
		{"Nom et Prénom", text("nom_prenom")},
		{"Prochain Rendez-vous", nextAppointment},
		{"Date d'aujourd'hui", date("date_aujourdhui")},
		{"Numéro du Patient", text("num_patient")},
		{"Date de Naissance", date("date_naissance")},
		{"Âge", age},
		{"Praticien", withOther("praticien", "praticien_autre")},
		{"HDD", clock("hdd")},
		{"RP-P", detailWhen("rpp", "Oui", "rpp_details")},
		{"ANM", anamnesis},
		{"Allergies", text("allergies")},
		{"Opérations", text("operations")},
		{"Cigarette", guarded("cigarette")},
		{"Drogue", guarded("drogue")},
		{"Biphosphonate", guarded("biphosphonate")},
		{"Douleur quelconque", text("douleur")},
		{"PDP", text("pdp")},
		{"Dernière visite", text("derniere_visite")},
		{"Sexe", text("sexe")},
		{"Enceinte", text("enceinte")},
		{"Contraception", detailWhen("contraception", "Oui", "contraception_details")},
		{"Activité", text("activite")},
		{"ALIM", perDay("alim")},
		{"Boissons", joined("boissons")},
		{"Thé", drink("Thé", "the_frequence")},
		{"Café", drink("Café", "cafe_frequence")},
		{"Soda", drink("Soda", "soda_frequence")},
		{"Sucre", perDay("sucre")},
		{"HOD", text("hod")},
		{"Fréquence de brossage", text("frequence_brossage")},
		{"Moyens aux", hygieneAids},
		{"Fréquence Moyens Aux", text("frequence_moyens_aux")},
		{"BdB", detailWhen("bdb", "Oui", "bdb_details")},
		{"BdB Produits", mouthwashProducts},
		{"Dentifrice", text("dentifrice")},
		{"Type de poils", text("type_poils")},
		{"Temps de brossage", text("temps_brossage")},
		{"CVE", text("cve")},
		{"DCO", detailWhen("dco", "Suspicion", "dco_details")},
		{"EO", detailWhen("eo", "Suspicion", "eo_details")},
		{"IO", detailWhen("io", "Suspicion", "io_details")},
		{"Overbite", occlusion("overbite")},
		{"Overjet", occlusion("overjet")},
		{"Classe d'angle", text("classe_angle")},
		{"DPSI", dpsi},
	}

	for _, d := range []string{"BF", "TR", "COL", "BOI", "BOP"} {
		r = append(r, rule{d, deposit(strings.ToLower(d))})
	}

	r = append(r, rule{"ED", text("ed")})
	for _, q := range form.Quadrants {
		r = append(r, rule{q.Label, quadrant(q)})
	}

	r = append(r,
		rule{"RX", joined("rx")},
		rule{"Rétro-alvéolaire", text("rx_retro")},
		rule{"DHD", diagnosis},
		rule{"IHO Technique de brossage", technique},
		rule{"IHO Conseillé de changé de méthode de brossage", text("type_brosse")},
		rule{"IHO Bain de bouche", text("bain_bouche")},
		rule{"IHO Conseil de dentifrice", text("conseil_dentifrice")},
		rule{"ACJ", joined("acj")},
		rule{"Detartrage Options", joined("detartrage_options")},
		rule{"Surfaçage Options", joined("surfacage_options")},
		rule{"Espaces Interdentaires Maxillaire", interdental(form.MaxillarySpaces)},
		rule{"Espaces Interdentaires Mandibulaire", interdental(form.MandibularSpaces)},
		rule{"PF", text("pf")},
		rule{"PF dentiste", text("pf_dentiste")},
		rule{"Facturé", text("facture")},
	)
	return r
}

func text(name string) func(form.Answers) string {
	return func(a form.Answers) string { return a.Text(name) }
}

func date(name string) func(form.Answers) string {
	return func(a form.Answers) string {
		t, ok := a.Date(name)
		if !ok {
			return ""
		}
		return t.Format(DateLayout)
	}
}

func clock(name string) func(form.Answers) string {
	return func(a form.Answers) string {
		t, ok := a.Clock(name)
		if !ok {
			return ""
		}
		return t.Format(TimeLayout)
	}
}

func joined(name string) func(form.Answers) string {
	return func(a form.Answers) string { return strings.Join(a.Multi(name), ", ") }
}

func perDay(name string) func(form.Answers) string {
	return func(a form.Answers) string {
		if v := a.Text(name); v != "" {
			return v + " x/j"
		}
		return ""
	}
}

// detailWhen emits the detail text only when guard equals trigger
func detailWhen(guard, trigger, detail string) func(form.Answers) string {
	return func(a form.Answers) string {
		if a.Choice(guard) != trigger {
			return ""
		}
		return a.Text(detail)
	}
}

// guarded reports Non as is and any other guard through its detail text
func guarded(name string) func(form.Answers) string {
	return func(a form.Answers) string {
		switch a.Choice(name) {
		case "":
			return ""
		case "Non":
			return "Non"
		}
		return a.Text(name + "_details")
	}
}

func withOther(choice, other string) func(form.Answers) string {
	return func(a form.Answers) string {
		if v := a.Choice(choice); v != form.Other {
			return v
		}
		return a.Text(other)
	}
}

func drink(option, frequency string) func(form.Answers) string {
	return func(a form.Answers) string {
		if !a.Has("boissons", option) {
			return ""
		}
		return perDay(frequency)(a)
	}
}

func occlusion(name string) func(form.Answers) string {
	return func(a form.Answers) string {
		grade := a.Choice(name)
		value := a.Text(name + "_value")
		if grade == "" || grade == "Normal" || value == "" {
			return ""
		}
		return grade + " - " + value + " mm"
	}
}

func deposit(name string) func(form.Answers) string {
	return func(a form.Answers) string { return FormatDeposit(a.Deposit(name)) }
}

func quadrant(spec form.QuadrantSpec) func(form.Answers) string {
	return func(a form.Answers) string { return FormatQuadrant(spec, a.Quadrant(spec.Field)) }
}

func interdental(spaces []string) func(form.Answers) string {
	return func(a form.Answers) string { return strings.Join(InterdentalLines(a, spaces), "\n") }
}

func nextAppointment(a form.Answers) string {
	d, ok := a.Date("prochain_rdv_date")
	if !ok {
		return ""
	}
	if t, ok := a.Clock("prochain_rdv_heure"); ok {
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC).Format(DateTimeLayout)
	}
	return d.Format(DateLayout)
}

// age counts whole years between the birth date and the visit date
func age(a form.Answers) string {
	born, ok := a.Date("date_naissance")
	if !ok {
		return ""
	}
	today, ok := a.Date("date_aujourdhui")
	if !ok || today.Before(born) {
		return ""
	}

	years := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		years--
	}
	return strconv.Itoa(years)
}

func anamnesis(a form.Answers) string {
	kind, drug, pathology := a.Choice("anm_type"), a.Text("medicament"), a.Text("pathologie")
	if kind == "" || drug == "" || pathology == "" {
		return ""
	}
	return kind + ": " + drug + " - " + pathology
}

func hygieneAids(a form.Answers) string {
	aids := a.Multi("moyens_aux")
	other := a.Text("moyens_aux_autre")
	for i, aid := range aids {
		if aid == form.Other && other != "" {
			aids[i] = form.Other + ": " + other
		}
	}
	return strings.Join(aids, ", ")
}

func mouthwashProducts(a form.Answers) string {
	products := a.Multi("bdb_produits")
	if d := a.Text("bdb_chx_duree"); d != "" {
		if i := slices.Index(products, "CHX"); i >= 0 {
			products[i] = "CHX (" + d + ")"
		}
	}
	return strings.Join(products, ", ")
}

func dpsi(a form.Answers) string {
	s := make([]string, 6)
	for i := range s {
		s[i] = a.Choice("sext" + strconv.Itoa(i+1))
		if s[i] == "" {
			return ""
		}
	}
	return s[0] + "/" + s[1] + "/" + s[2] + " | " + s[5] + "/" + s[4] + "/" + s[3]
}

func diagnosis(a form.Answers) string {
	dhd := a.Choice("dhd")
	if dhd != "Parodontite" {
		return dhd
	}
	stage, grade := a.Choice("stade"), a.Choice("grade")
	if stage == "" || grade == "" {
		return dhd
	}
	return dhd + " - Stade: " + stage + ", Grade: " + grade
}

func technique(a form.Answers) string {
	return withOther("technique", "technique_autre")(a)
}
