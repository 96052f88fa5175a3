package validate

// Built-in stop word sets per language. These cover function words and
// generic document vocabulary that must never become glossary entries on
// their own. Deployments extend them via ValidationConfig.ExtraStopWords.
var stopWords = map[string][]string{
	"en": {
		"the", "a", "an", "and", "or", "but", "of", "in", "on", "at", "to",
		"for", "with", "by", "from", "as", "is", "are", "was", "were", "be",
		"been", "being", "this", "that", "these", "those", "it", "its",
		"which", "who", "whom", "what", "where", "when", "how", "why",
		"all", "each", "every", "both", "few", "more", "most", "other",
		"some", "such", "only", "own", "same", "than", "then", "there",
		"here", "also", "very", "can", "will", "shall", "may", "must",
		"not", "no", "nor", "so", "too", "during", "before", "after",
		"above", "below", "between", "into", "through", "about", "against",
		"figure", "table", "page", "section", "chapter", "results",
		"value", "values", "data", "number", "example",
	},
	"de": {
		"der", "die", "das", "den", "dem", "des", "ein", "eine", "einen",
		"einem", "einer", "eines", "und", "oder", "aber", "von", "in",
		"auf", "an", "zu", "für", "mit", "bei", "aus", "als", "ist",
		"sind", "war", "waren", "sein", "wird", "werden", "wurde",
		"wurden", "dieser", "diese", "dieses", "es", "welche", "welcher",
		"wer", "was", "wo", "wann", "wie", "warum", "alle", "jede",
		"jeder", "jedes", "beide", "mehr", "andere", "einige", "solche",
		"nur", "auch", "sehr", "kann", "muss", "soll", "nicht", "kein",
		"keine", "so", "während", "vor", "nach", "über", "unter",
		"zwischen", "durch", "gegen", "abbildung", "tabelle", "seite",
		"kapitel", "ergebnisse", "wert", "werte", "daten", "beispiel",
	},
}

// fragments are suffix/prefix remnants that column-break extraction leaves
// behind. They are provenance artifacts of the layout, not stop words.
var fragments = map[string][]string{
	"en": {
		"tion", "sion", "ment", "ing", "ity", "ness", "ous", "ical",
		"ted", "ble", "pre", "pro", "con", "dis",
	},
	"de": {
		"ung", "keit", "heit", "lich", "isch", "chen", "ver", "ent",
		"vor", "nach",
	},
}

func buildSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, list := range lists {
		for _, w := range list {
			set[w] = true
		}
	}
	return set
}
