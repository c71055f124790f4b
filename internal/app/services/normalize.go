package services

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/terratensor/geolocale/internal/core/domain"
)

// normalizeNames strips diacritics from the canonical triple when
// NORMALIZE_NAMES is set. Localized names are never passed here.
func normalizeNames(n domain.LocalizedNames) domain.LocalizedNames {
	return domain.LocalizedNames{
		CityName:    normalizeDiacritics(n.CityName),
		Admin1Name:  normalizeDiacritics(n.Admin1Name),
		CountryName: normalizeDiacritics(n.CountryName),
	}
}

// normalizeDiacritics: "São Paulo" -> "Sao Paulo". ASCII input is returned
// as is. The chain is built per call since transformers keep state and the
// assembler may run on several workers.
func normalizeDiacritics(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
