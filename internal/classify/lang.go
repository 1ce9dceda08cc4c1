package classify

import (
	"strings"

	"golang.org/x/text/language"
)

// legacyLangAliases maps tokens x/text does not parse (mostly ISO 639-2/B
// bibliographic codes, plus the chs/cht scene convention) to base codes.
var legacyLangAliases = map[string]string{
	"fre": "fr",
	"ger": "de",
	"chi": "zh",
	"chs": "zh",
	"cht": "zh",
	"dut": "nl",
	"gre": "el",
	"cze": "cs",
	"rum": "ro",
	"per": "fa",
	"alb": "sq",
	"arm": "hy",
	"may": "ms",
	"slo": "sk",
}

// languageNames maps full language names to ISO 639-1 codes, mirroring
// the language selector of the desktop front end.
var languageNames = map[string]string{
	"polish":     "pl",
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"swedish":    "sv",
	"norwegian":  "no",
	"danish":     "da",
	"finnish":    "fi",
	"turkish":    "tr",
	"hebrew":     "he",
	"greek":      "el",
	"czech":      "cs",
	"hungarian":  "hu",
	"romanian":   "ro",
	"bulgarian":  "bg",
	"croatian":   "hr",
	"slovak":     "sk",
	"slovenian":  "sl",
	"estonian":   "et",
	"latvian":    "lv",
	"lithuanian": "lt",
}

// NormalizeLangCode validates a filename token as a language code and
// returns its ISO 639-1 base code (e.g. "eng"→"en", "fre"→"fr").
// Returns "" when the token is not a recognized language code.
func NormalizeLangCode(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	if alias, ok := legacyLangAliases[token]; ok {
		return alias
	}
	if code, ok := languageNames[token]; ok {
		return code
	}
	// Language tokens in filenames are short alphabetic codes. Longer
	// tokens are title words even when x/text would parse them.
	if len(token) > 3 {
		return ""
	}
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	tag, err := language.Parse(token)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// CodeForLanguage resolves a language given either as a full name
// ("Polish") or as a code ("pl"), falling back to the first two letters.
func CodeForLanguage(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "en"
	}
	if code, ok := languageNames[lower]; ok {
		return code
	}
	if len(lower) == 2 && isAlpha(lower) {
		return lower
	}
	for langName, code := range languageNames {
		if strings.HasPrefix(langName, lower) || strings.HasPrefix(lower, langName) {
			return code
		}
	}
	if len(lower) >= 2 {
		return lower[:2]
	}
	return lower
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
