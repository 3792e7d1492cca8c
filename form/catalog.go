package form

import (
	"slices"
	"strconv"
	"strings"
)

// Kind is the type of value a field collects
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindTime
	KindChoice
	KindMulti
	KindDeposit
	KindSpace
	KindQuadrant
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindDate:     "date",
	KindTime:     "time",
	KindChoice:   "choice",
	KindMulti:    "multi",
	KindDeposit:  "deposit",
	KindSpace:    "space",
	KindQuadrant: "quadrant",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets kinds appear by name in JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Tab is one page of the questionnaire
type Tab string

const (
	TabPatient     Tab = "Informations Patient"
	TabPractioner  Tab = "Praticien"
	TabAnamnesis   Tab = "Anamnèse"
	TabDiet        Tab = "Habitudes Alimentaires"
	TabHomeCare    Tab = "Hygiène à Domicile"
	TabExamination Tab = "Examens"
	TabInstruction Tab = "IHO"
)

// Tabs in questionnaire order
var Tabs = []Tab{TabPatient, TabPractioner, TabAnamnesis, TabDiet, TabHomeCare, TabExamination, TabInstruction}

// Shared option lists
var (
	YesNo            = []string{"Oui", "Non"}
	NoYesHistory     = []string{"Non", "Oui", "Antécédent"}
	ClearSuspicion   = []string{"RAS", "Suspicion"}
	DailyFrequencies = []string{"0", "0 à 1", "1 à 2", "2 à 3", "3 à 4"}
	OcclusionGrades  = []string{"Normal", "Léger", "Moyen", "Important"}
	DPSIScores       = []string{"1", "2", "3-", "3+", "4"}
	QuadrantGroups   = []string{"4Q", "Q1 et Q4", "Q2 et Q3", "Q1", "Q2", "Q3", "Q4"}
	Techniques       = []string{
		"Bass", "Bass modifié", "45° Circulaire", "45° Circulaire chassé", "Rolling stroke ou Roll",
		"Stillman’s", "Charter’s", "90° Circulaire", "Appareil orthodontique 3 phases", "Brossage électrique",
		Other,
	}
)

// Other is the option that opens a free-text companion
const Other = "Autre"

// FieldSpec declares one field of the questionnaire
type FieldSpec struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Tab     Tab      `json:"tab"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
	Default string   `json:"default,omitempty"`
	Parent  string   `json:"parent,omitempty"`

	shown func(Answers) bool
}

func newField(name, label string, tab Tab, kind Kind, options ...string) *FieldSpec {
	return &FieldSpec{Name: name, Label: label, Tab: tab, Kind: kind, Options: options}
}

// when makes the field depend on parent: it is shown only if the parent is
// shown and pred holds.
func (f *FieldSpec) when(parent string, pred func(Answers) bool) *FieldSpec {
	f.Parent = parent
	f.shown = pred
	return f
}

func (f *FieldSpec) withDefault(v string) *FieldSpec {
	f.Default = v
	return f
}

// Accepts reports whether option is one of the declared options
func (f FieldSpec) Accepts(option string) bool {
	return slices.Contains(f.Options, option)
}

// Predicates over a parent answer

func equals(parent, value string) func(Answers) bool {
	return func(a Answers) bool { return a.Choice(parent) == value }
}

// notNegative holds when the parent is answered with something else than its negative value
func notNegative(parent, negative string) func(Answers) bool {
	return func(a Answers) bool {
		v := a.Choice(parent)
		return v != "" && v != negative
	}
}

func answered(parent string) func(Answers) bool {
	return func(a Answers) bool { return a.Text(parent) != "" }
}

func selected(parent, option string) func(Answers) bool {
	return func(a Answers) bool { return a.Has(parent, option) }
}

func anySelected(parent string) func(Answers) bool {
	return func(a Answers) bool { return len(a.Multi(parent)) > 0 }
}

var (
	catalog []*FieldSpec
	index   map[string]*FieldSpec
)

func init() {
	catalog = buildCatalog()
	index = make(map[string]*FieldSpec, len(catalog))
	for _, f := range catalog {
		index[f.Name] = f
	}
}

func buildCatalog() []*FieldSpec {
	fields := []*FieldSpec{
		// Informations Patient
		newField("nom_prenom", "Nom et Prénom", TabPatient, KindText),
		newField("prochain_rdv_date", "Prochain rendez-vous", TabPatient, KindDate),
		newField("prochain_rdv_heure", "Heure du prochain rendez-vous", TabPatient, KindTime),
		newField("date_aujourdhui", "Date d'aujourd'hui", TabPatient, KindDate),
		newField("num_patient", "Numéro du Patient", TabPatient, KindText),
		newField("date_naissance", "Date de Naissance", TabPatient, KindDate),
		newField("hdd", "Heure d'arrivée", TabPatient, KindTime),

		// Praticien
		newField("praticien", "Praticien", TabPractioner, KindChoice, "Claessens Sasha", Other),
		newField("praticien_autre", "Nom du praticien", TabPractioner, KindText).
			when("praticien", equals("praticien", Other)),

		// Anamnèse
		newField("anm_type", "Type", TabAnamnesis, KindChoice, "ANM", "ANM-R", "PRP"),
		newField("medicament", "Nom du médicament", TabAnamnesis, KindText).
			when("anm_type", answered("anm_type")),
		newField("pathologie", "Pathologie associée", TabAnamnesis, KindText).
			when("anm_type", answered("anm_type")),
		newField("allergies", "Allergies", TabAnamnesis, KindText),
		newField("operations", "Opérations", TabAnamnesis, KindText),
		newField("cigarette", "Cigarette", TabAnamnesis, KindChoice, NoYesHistory...),
		newField("cigarette_details", "Précisez (Cigarette)", TabAnamnesis, KindText).
			when("cigarette", notNegative("cigarette", "Non")),
		newField("drogue", "Drogue", TabAnamnesis, KindChoice, NoYesHistory...),
		newField("drogue_details", "Précisez (Drogue)", TabAnamnesis, KindText).
			when("drogue", notNegative("drogue", "Non")),
		newField("biphosphonate", "Biphosphonate", TabAnamnesis, KindChoice, NoYesHistory...),
		newField("biphosphonate_details", "Précisez (Biphosphonate)", TabAnamnesis, KindText).
			when("biphosphonate", notNegative("biphosphonate", "Non")),
		newField("douleur", "Douleur quelconque", TabAnamnesis, KindText),
		newField("pdp", "PDP", TabAnamnesis, KindText),
		newField("derniere_visite", "Dernière visite", TabAnamnesis, KindChoice,
			"1 mois", "2 mois", "3 mois", "6 mois", "1 an", "+ d'un an"),
		newField("sexe", "Sexe", TabAnamnesis, KindChoice, "Homme", "Femme"),
		newField("enceinte", "Enceinte", TabAnamnesis, KindChoice, YesNo...).
			when("sexe", equals("sexe", "Femme")),
		newField("contraception", "Moyen de contraception", TabAnamnesis, KindChoice, YesNo...).
			when("sexe", equals("sexe", "Femme")),
		newField("contraception_details", "Précisez le moyen de contraception", TabAnamnesis, KindText).
			when("contraception", equals("contraception", "Oui")),
		newField("activite", "Activité", TabAnamnesis, KindText),
		newField("rpp", "RP-P", TabAnamnesis, KindChoice, YesNo...),
		newField("rpp_details", "Détails RP-P", TabAnamnesis, KindText).
			when("rpp", equals("rpp", "Oui")).withDefault("0.12% CHX"),

		// Habitudes Alimentaires
		newField("alim", "ALIM", TabDiet, KindChoice, DailyFrequencies...),
		newField("boissons", "Boissons", TabDiet, KindMulti, "Eau", "Thé", "Café", "Soda"),
		newField("the_frequence", "Fréquence de Thé", TabDiet, KindChoice, DailyFrequencies...).
			when("boissons", selected("boissons", "Thé")),
		newField("cafe_frequence", "Fréquence de Café", TabDiet, KindChoice, DailyFrequencies...).
			when("boissons", selected("boissons", "Café")),
		newField("soda_frequence", "Fréquence de Soda", TabDiet, KindChoice, DailyFrequencies...).
			when("boissons", selected("boissons", "Soda")),
		newField("sucre", "Sucre", TabDiet, KindChoice, DailyFrequencies...),

		// Hygiène à Domicile
		newField("hod", "HOD", TabHomeCare, KindChoice, "BàD-e", "BàD-m"),
		newField("frequence_brossage", "Fréquence de brossage", TabHomeCare, KindChoice, "0 à 1", "1 à 2", "2", "2 à 3"),
		newField("moyens_aux", "Moyens aux", TabHomeCare, KindMulti,
			"Aucun", "Brossettes", "Fil dentaire", "Porte fil", "Soft pick", Other),
		newField("frequence_moyens_aux", "Fréquence d'utilisation des moyens aux", TabHomeCare, KindText).
			when("moyens_aux", anySelected("moyens_aux")),
		newField("moyens_aux_autre", "Précisez l'autre moyen", TabHomeCare, KindText).
			when("moyens_aux", selected("moyens_aux", Other)),
		newField("bdb", "BdB", TabHomeCare, KindChoice, YesNo...),
		newField("bdb_details", "Détails BdB", TabHomeCare, KindText).
			when("bdb", equals("bdb", "Oui")),
		newField("bdb_produits", "Produits BdB", TabHomeCare, KindMulti, "CHX", "Fluor", "Huiles essentielles", "Cétylpyridinium").
			when("bdb", equals("bdb", "Oui")),
		newField("bdb_chx_duree", "Durée CHX", TabHomeCare, KindText).
			when("bdb_produits", selected("bdb_produits", "CHX")),
		newField("dentifrice", "Dentifrice", TabHomeCare, KindText),
		newField("type_poils", "Type de poils", TabHomeCare, KindChoice, "Soft", "Medium", "Hard"),
		newField("temps_brossage", "Temps", TabHomeCare, KindChoice, "1min", "2min", "3min"),

		// Examens
		newField("cve", "CVE", TabExamination, KindChoice, "Oui", "RVE"),
		newField("dco", "DCO", TabExamination, KindChoice, ClearSuspicion...),
		newField("dco_details", "Détails DCO", TabExamination, KindText).
			when("dco", equals("dco", "Suspicion")),
		newField("eo", "EO", TabExamination, KindChoice, ClearSuspicion...),
		newField("eo_details", "Détails EO", TabExamination, KindText).
			when("eo", equals("eo", "Suspicion")),
		newField("io", "IO", TabExamination, KindChoice, ClearSuspicion...),
		newField("io_details", "Détails IO", TabExamination, KindText).
			when("io", equals("io", "Suspicion")),
		newField("overbite", "Overbite", TabExamination, KindChoice, OcclusionGrades...),
		newField("overbite_value", "Valeur Overbite (mm)", TabExamination, KindText).
			when("overbite", notNegative("overbite", "Normal")),
		newField("overjet", "Overjet", TabExamination, KindChoice, OcclusionGrades...),
		newField("overjet_value", "Valeur Overjet (mm)", TabExamination, KindText).
			when("overjet", notNegative("overjet", "Normal")),
		newField("classe_angle", "Classe d'angle", TabExamination, KindChoice,
			"Classe I", "Classe II", "Classe II div. I", "Classe II div. II", "Classe III"),
		newField("rx", "Choix RX", TabExamination, KindMulti, "2 BW", "Pan", "Rétro-alvéolaire"),
		newField("rx_retro", "Précisez les rétro-alvéolaires", TabExamination, KindText).
			when("rx", selected("rx", "Rétro-alvéolaire")),
	}

	for i := 1; i <= 6; i++ {
		n := strconv.Itoa(i)
		fields = append(fields, newField("sext"+n, "Sext "+n, TabExamination, KindChoice, DPSIScores...))
	}

	for _, d := range []string{"BF", "TR", "COL", "BOI", "BOP"} {
		fields = append(fields, newField(strings.ToLower(d), d, TabExamination, KindDeposit, DepositSeverities...))
	}

	fields = append(fields, newField("ed", "ED", TabExamination, KindText))
	for _, q := range Quadrants {
		fields = append(fields, newField(q.Field, q.Label, TabExamination, KindQuadrant))
	}

	fields = append(fields,
		newField("dhd", "Diagnostic", TabExamination, KindChoice, "Sain", "Gingivite", "Parodontite"),
		newField("stade", "Stade", TabExamination, KindChoice, "I", "II", "III", "IV").
			when("dhd", equals("dhd", "Parodontite")),
		newField("grade", "Grade", TabExamination, KindChoice, "A", "B", "C").
			when("dhd", equals("dhd", "Parodontite")),
		newField("acj", "ACJ Options", TabExamination, KindMulti,
			"ANM", "RX", "EO", "IO", "ED", "IHO", "AirFlow", "Detartrage", "Surfaçage"),
		newField("detartrage_options", "Detartrage Options", TabExamination, KindMulti, QuadrantGroups...).
			when("acj", selected("acj", "Detartrage")),
		newField("surfacage_options", "Surfaçage Options", TabExamination, KindMulti, QuadrantGroups...).
			when("acj", selected("acj", "Surfaçage")),
		newField("pf", "PF", TabExamination, KindText),
		newField("pf_dentiste", "PF dentiste", TabExamination, KindText),
		newField("facture", "Facturé", TabExamination, KindText),

		// IHO
		newField("technique", "Technique de brossage", TabInstruction, KindChoice, Techniques...),
		newField("technique_autre", "Nom de la technique", TabInstruction, KindText).
			when("technique", equals("technique", Other)),
		newField("technique_description", "Description de la technique", TabInstruction, KindText).
			when("technique", equals("technique", Other)),
		newField("type_brosse", "Conseillé de changé de méthode de brossage", TabInstruction, KindChoice,
			"Manuel", "Electrique", "Non conseillé"),
		newField("bain_bouche", "Bain de bouche", TabInstruction, KindText),
		newField("conseil_dentifrice", "Conseil de dentifrice", TabInstruction, KindText),
	)

	for _, space := range slices.Concat(MaxillarySpaces, MandibularSpaces) {
		fields = append(fields, newField(SpaceField(space), "Espace "+space, TabInstruction, KindSpace, CleaningMethods...))
	}

	return fields
}

// Catalog returns every field in questionnaire order
func Catalog() []FieldSpec {
	out := make([]FieldSpec, 0, len(catalog))
	for _, f := range catalog {
		out = append(out, *f)
	}
	return out
}

// Fields returns the fields of one tab in questionnaire order
func Fields(tab Tab) []FieldSpec {
	var out []FieldSpec
	for _, f := range catalog {
		if f.Tab == tab {
			out = append(out, *f)
		}
	}
	return out
}

// Lookup finds a field by name
func Lookup(name string) (FieldSpec, bool) {
	f, ok := index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return *f, true
}
