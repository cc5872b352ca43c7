// Package translit converts Chinese place names to pinyin slugs.
//
// Transcription is per character with no word-boundary disambiguation: each
// Han rune maps to its most common reading and the syllables are concatenated
// without separators. Non-Chinese runes pass through unchanged.
package translit

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// citySuffix is the administrative-unit marker stripped from city names
// before transliteration (深圳市 → 深圳).
const citySuffix = "市"

var args = newArgs()

func newArgs() pinyin.Args {
	a := pinyin.NewArgs()
	// Keep non-Chinese runes as-is instead of dropping them.
	a.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}
	return a
}

// StripCitySuffix removes every occurrence of 市 from s.
func StripCitySuffix(s string) string {
	return strings.ReplaceAll(s, citySuffix, "")
}

// Romanize transliterates s rune by rune into concatenated pinyin syllables,
// e.g. 深圳 → "shenzhen".
func Romanize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(pinyin.LazyPinyin(s, args), "")
}

// CitySlug derives the URL path segment the weather site uses for a city:
// the suffix-stripped, romanized name. ASCII input comes back unchanged, so
// already-romanized city keys are safe to pass through.
func CitySlug(name string) string {
	return Romanize(StripCitySuffix(name))
}
