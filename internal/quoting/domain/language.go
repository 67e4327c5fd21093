package domain

import "strings"

// Language is a supported reply language.
type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

// Valid reports whether l is a supported language code.
func (l Language) Valid() bool {
	return l == LanguageES || l == LanguageEN
}

func (l Language) String() string { return string(l) }

var (
	englishKeywords = []string{"quote", "price", "cost", "freight", "shipping", "quotation", "shrimp", "product"}
	spanishKeywords = []string{"proforma", "cotizacion", "precio", "flete", "envio", "camaron", "producto", "glaseo"}
)

// DetectLanguage scores the message against the two keyword sets and
// returns English only on a strict majority. Ties and keyword-free
// messages default to Spanish, the house language.
func DetectLanguage(text string) Language {
	lowered := strings.ToLower(text)
	lowered = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u").Replace(lowered)

	var english, spanish int
	for _, keyword := range englishKeywords {
		if strings.Contains(lowered, keyword) {
			english++
		}
	}
	for _, keyword := range spanishKeywords {
		if strings.Contains(lowered, keyword) {
			spanish++
		}
	}

	if english > spanish {
		return LanguageEN
	}
	return LanguageES
}

// ParseLanguage interprets an explicit language choice from a reply,
// accepting codes, names and the menu numbers offered to the user.
func ParseLanguage(reply string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "es", "español", "espanol", "spanish", "castellano", "1":
		return LanguageES, true
	case "en", "ingles", "inglés", "english", "2":
		return LanguageEN, true
	}
	return "", false
}
