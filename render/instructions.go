package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// techniqueInstructions maps a brushing technique to the instructions given
// to the patient, one paragraph per entry.
var techniqueInstructions = map[string][]string{
	"Bass": {
		"Placez les poils de la brosse à 45° vers la gencive, à cheval entre la dent et le bord de la gencive.",
		"Effectuez de petits mouvements vibratoires horizontaux sur place, sans déplacer la brosse, pendant une dizaine de secondes.",
		"Avancez ensuite de deux dents et recommencez, face externe puis face interne, en terminant par les faces de mastication.",
	},
	"Bass modifié": {
		"Placez les poils de la brosse à 45° vers la gencive, à cheval entre la dent et le bord de la gencive.",
		"Effectuez de petits mouvements vibratoires sur place, puis terminez chaque zone par un mouvement de rotation de la gencive vers la dent.",
		"Procédez groupe de dents par groupe de dents, sans oublier les faces internes et les faces de mastication.",
	},
	"45° Circulaire": {
		"Inclinez la brosse à 45° vers la gencive.",
		"Réalisez de petits cercles en douceur sur deux dents à la fois, en couvrant la gencive et la dent.",
		"Parcourez toutes les faces externes, internes et de mastication en suivant toujours le même ordre.",
	},
	"45° Circulaire chassé": {
		"Inclinez la brosse à 45° vers la gencive.",
		"Réalisez quelques petits cercles sur place puis chassez vers le bord de la dent, de la gencive vers la dent.",
		"Répétez sur chaque groupe de deux dents, faces externes puis faces internes, et terminez par les faces de mastication.",
	},
	"Rolling stroke ou Roll": {
		"Posez les poils de la brosse sur la gencive, parallèles à la dent et dirigés vers la racine.",
		"Faites rouler la brosse de la gencive vers la dent en tournant le poignet, comme pour balayer.",
		"Répétez le mouvement cinq à dix fois par zone, sur toutes les faces.",
	},
	"Stillman’s": {
		"Placez les poils en partie sur la gencive et en partie sur le collet de la dent, inclinés vers la racine.",
		"Exercez une légère pression pour faire blanchir la gencive, puis effectuez de petits mouvements vibratoires.",
		"Relâchez et recommencez sur la zone suivante, faces externes et internes.",
	},
	"Charter’s": {
		"Placez les poils à 45° dirigés vers les bords des dents, à l'opposé de la gencive.",
		"Appuyez légèrement pour faire pénétrer les poils entre les dents et effectuez de petits mouvements vibratoires.",
		"Cette technique convient aux espaces interdentaires ouverts et aux appareils orthodontiques.",
	},
	"90° Circulaire": {
		"Tenez la brosse perpendiculaire à la dent, à 90°.",
		"Réalisez de petits cercles sur chaque dent en englobant le bord de la gencive.",
		"Suivez un ordre fixe pour ne pas oublier de zone, puis brossez les faces de mastication en va-et-vient.",
	},
	"Appareil orthodontique 3 phases": {
		"Phase 1: brosse inclinée vers la gencive, nettoyez au-dessus des attaches par de petits mouvements vibratoires.",
		"Phase 2: brosse inclinée vers le bord des dents, nettoyez sous les attaches de la même façon.",
		"Phase 3: brosse perpendiculaire, nettoyez les attaches et le fil par de petits mouvements circulaires, puis les faces internes et de mastication.",
	},
	"Brossage électrique": {
		"Posez la tête de la brosse sur chaque dent sans appuyer, la brosse fait le mouvement.",
		"Inclinez légèrement vers la gencive et restez quelques secondes par dent avant de passer à la suivante.",
		"Respectez les deux minutes de brossage indiquées par le minuteur de la brosse.",
	},
}

// TechniqueInstructions returns the instructions for technique. An unknown
// or custom technique falls back to the description written by the
// practitioner, split into its own lines.
func TechniqueInstructions(technique, fallback string) []string {
	if p, ok := techniqueInstructions[technique]; ok {
		return p
	}
	key := fold(technique)
	for name, p := range techniqueInstructions {
		if fold(name) == key {
			return p
		}
	}
	return Normalize(fallback)
}

// Method is an interdental cleaning method with its instructions
type Method struct {
	Name         string
	Keywords     []string
	Instructions []string
}

// Methods in the order their instructions appear in the hygiene sheet
var Methods = []Method{
	{
		Name:     "Brossettes interdentaires",
		Keywords: []string{"brossette"},
		Instructions: []string{
			"Introduisez la brossette sans forcer dans l'espace entre les dents, perpendiculairement à la gencive.",
			"Faites quelques va-et-vient, puis rincez la brossette. Utilisez la taille conseillée pour chaque espace.",
		},
	},
	{
		Name:     "Fil dentaire",
		Keywords: []string{"fil dentaire"},
		Instructions: []string{
			"Enroulez le fil autour des majeurs en gardant quelques centimètres entre les doigts.",
			"Glissez le fil entre les dents, plaquez-le en forme de C contre chaque dent et descendez doucement sous la gencive.",
		},
	},
	{
		Name:     "Porte fil",
		Keywords: []string{"porte fil", "porte-fil"},
		Instructions: []string{
			"Passez le fil tendu du porte fil entre les dents par un mouvement de va-et-vient.",
			"Frottez chaque face de la dent de haut en bas avant de passer à l'espace suivant.",
		},
	},
	{
		Name:     "Soft pick",
		Keywords: []string{"soft pick", "softpick"},
		Instructions: []string{
			"Insérez le soft pick dans l'espace entre les dents et effectuez des mouvements de va-et-vient.",
			"Remplacez-le dès que les picots en caoutchouc sont abîmés.",
		},
	},
}

// DetectMethods finds the cleaning methods named in the formatted
// interdental lines. Matching ignores case and accents.
func DetectMethods(lines []string) []Method {
	text := fold(strings.Join(lines, "\n"))

	var found []Method
	for _, m := range Methods {
		for _, k := range m.Keywords {
			if strings.Contains(text, fold(k)) {
				found = append(found, m)
				break
			}
		}
	}
	return found
}

// fold lowercases s and strips diacritics and typographic apostrophes
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "’", "'")
	return strings.ToLower(out)
}
