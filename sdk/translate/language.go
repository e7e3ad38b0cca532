// Package translate is the public surface of the translation gateway core:
// the language catalog, the request/result/error model, and the Translator
// trait every provider implements. Callers outside this module only ever
// import this package.
package translate

import (
	"sort"
	"strings"
)

// Language is the closed enumeration of languages the gateway understands.
// Providers translate to/from their own dialect via LangCode.
type Language int

const (
	Auto Language = iota
	ChineseSimplified
	ChineseTraditional
	ChineseClassical
	English
	Japanese
	Korean
	French
	German
	Spanish
	Portuguese
	Italian
	Russian
	Dutch
	Polish
	Turkish
	Vietnamese
	Thai
	Indonesian
	Malay
	Arabic
	Hebrew
	Hindi
	Bengali
	Urdu
	Persian
	Greek
	Czech
	Slovak
	Romanian
	Hungarian
	Bulgarian
	Ukrainian
	Swedish
	Norwegian
	Danish
	Finnish
	Croatian
	Slovenian
	Serbian
	Lithuanian
	Latvian
	Estonian
	Filipino
	Burmese
	Khmer

	numLanguages
)

type langInfo struct {
	iso         string
	displayName string
}

var catalog = [numLanguages]langInfo{
	Auto:                {"auto", "Detect Language"},
	ChineseSimplified:   {"zh-CN", "Chinese (Simplified)"},
	ChineseTraditional:  {"zh-TW", "Chinese (Traditional)"},
	ChineseClassical:    {"lzh", "Classical Chinese"},
	English:             {"en", "English"},
	Japanese:            {"ja", "Japanese"},
	Korean:              {"ko", "Korean"},
	French:              {"fr", "French"},
	German:              {"de", "German"},
	Spanish:             {"es", "Spanish"},
	Portuguese:          {"pt", "Portuguese"},
	Italian:             {"it", "Italian"},
	Russian:             {"ru", "Russian"},
	Dutch:               {"nl", "Dutch"},
	Polish:              {"pl", "Polish"},
	Turkish:             {"tr", "Turkish"},
	Vietnamese:          {"vi", "Vietnamese"},
	Thai:                {"th", "Thai"},
	Indonesian:          {"id", "Indonesian"},
	Malay:               {"ms", "Malay"},
	Arabic:              {"ar", "Arabic"},
	Hebrew:              {"he", "Hebrew"},
	Hindi:               {"hi", "Hindi"},
	Bengali:             {"bn", "Bengali"},
	Urdu:                {"ur", "Urdu"},
	Persian:             {"fa", "Persian"},
	Greek:               {"el", "Greek"},
	Czech:               {"cs", "Czech"},
	Slovak:              {"sk", "Slovak"},
	Romanian:            {"ro", "Romanian"},
	Hungarian:           {"hu", "Hungarian"},
	Bulgarian:           {"bg", "Bulgarian"},
	Ukrainian:           {"uk", "Ukrainian"},
	Swedish:             {"sv", "Swedish"},
	Norwegian:           {"nb", "Norwegian"},
	Danish:              {"da", "Danish"},
	Finnish:             {"fi", "Finnish"},
	Croatian:            {"hr", "Croatian"},
	Slovenian:           {"sl", "Slovenian"},
	Serbian:             {"sr", "Serbian"},
	Lithuanian:          {"lt", "Lithuanian"},
	Latvian:             {"lv", "Latvian"},
	Estonian:            {"et", "Estonian"},
	Filipino:            {"tl", "Filipino"},
	Burmese:             {"my", "Burmese"},
	Khmer:               {"km", "Khmer"},
}

// isoIndex maps a lower-cased canonical ISO code straight back to its Language.
var isoIndex = func() map[string]Language {
	m := make(map[string]Language, len(catalog))
	for lang, info := range catalog {
		m[strings.ToLower(info.iso)] = Language(lang)
	}
	return m
}()

// aliasIndex maps additional dialect spellings (prefixes, legacy codes)
// that providers report for detected languages back to the enumeration.
// Case-insensitive prefix matching is applied on top of this table by
// FromDialect.
var aliasIndex = map[string]Language{
	"zh-hans": ChineseSimplified,
	"zh-chs":  ChineseSimplified,
	"zh":      ChineseSimplified,
	"chinese": ChineseSimplified,
	"zh-hant": ChineseTraditional,
	"zh-cht":  ChineseTraditional,
	"zh-hk":   ChineseTraditional,
	"zh-mo":   ChineseTraditional,
	"en-us":   English,
	"en-gb":   English,
	"pt-br":   Portuguese,
	"pt-pt":   Portuguese,
	"nb":      Norwegian,
	"no":      Norwegian,
}

// aliasPrefixOrder lists aliasIndex's keys longest-first, so FromDialect's
// prefix fallback always prefers the more specific alias (e.g. "zh-hant"
// over "zh" for "zh-hant-tw") instead of whichever one ranging the map
// happens to visit first.
var aliasPrefixOrder = func() []string {
	keys := make([]string, 0, len(aliasIndex))
	for alias := range aliasIndex {
		keys = append(keys, alias)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return keys
}()

// Valid reports whether l is a known member of the enumeration.
func (l Language) Valid() bool { return l >= 0 && l < numLanguages }

// All returns every member of the enumeration except Auto, in declaration
// order. Providers use it to build their SupportedLanguages set by
// subtracting the handful they don't cover.
func All() []Language {
	out := make([]Language, 0, int(numLanguages)-1)
	for l := Auto + 1; l < numLanguages; l++ {
		out = append(out, l)
	}
	return out
}

// ToISO returns the canonical ISO 639 / BCP-47 code for l.
func ToISO(l Language) string {
	if !l.Valid() {
		return catalog[Auto].iso
	}
	return catalog[l].iso
}

// DisplayName returns the human-readable name for l.
func DisplayName(l Language) string {
	if !l.Valid() {
		return catalog[Auto].displayName
	}
	return catalog[l].displayName
}

// FromISO looks up the Language whose canonical code exactly matches code
// (case-insensitive). Unknown codes map to Auto.
func FromISO(code string) Language {
	if lang, ok := isoIndex[strings.ToLower(strings.TrimSpace(code))]; ok {
		return lang
	}
	return Auto
}

// FromDialect resolves a provider-reported language code to the enumeration
// using exact match, alias lookup, and finally case-insensitive prefix
// matching (so "zh-Hans-CN" still resolves to ChineseSimplified). Unknown
// codes map to Auto, per spec invariant (iii).
func FromDialect(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Auto
	}
	if lang, ok := isoIndex[code]; ok {
		return lang
	}
	if lang, ok := aliasIndex[code]; ok {
		return lang
	}
	for _, alias := range aliasPrefixOrder {
		if strings.HasPrefix(code, alias) {
			return aliasIndex[alias]
		}
	}
	for lang, info := range catalog {
		if strings.HasPrefix(code, strings.ToLower(info.iso)) {
			return Language(lang)
		}
	}
	return Auto
}

// LangCodeTable is a per-provider override of the canonical ISO code,
// looked up first by LangCode before falling back to ToISO.
type LangCodeTable map[Language]string

// LangCode resolves the wire code a given provider expects for l: table
// lookup first, canonical ISO code otherwise.
func LangCode(table LangCodeTable, l Language) string {
	if table != nil {
		if code, ok := table[l]; ok {
			return code
		}
	}
	return ToISO(l)
}
