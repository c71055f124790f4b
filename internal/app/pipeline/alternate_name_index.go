package pipeline

import "github.com/terratensor/geolocale/internal/core/domain"

// AlternateNameIndex maps geonameId -> language -> best known name.
// It is filled by AlternateNameParser and read-only afterwards.
type AlternateNameIndex struct {
	names map[int64]map[string]domain.AlternateNameEntry
}

func NewAlternateNameIndex() *AlternateNameIndex {
	return &AlternateNameIndex{
		names: make(map[int64]map[string]domain.AlternateNameEntry),
	}
}

// Upsert stores the alternate name following the preference rule and reports
// whether the index changed.
func (ix *AlternateNameIndex) Upsert(alt *domain.AlternateName) bool {
	byLang, ok := ix.names[alt.GeonameID]
	if !ok {
		byLang = make(map[string]domain.AlternateNameEntry, 1)
		ix.names[alt.GeonameID] = byLang
	}

	incoming := alt.Entry()
	existing, ok := byLang[alt.ISOLanguage]
	if !ok {
		byLang[alt.ISOLanguage] = incoming
		return true
	}

	merged := existing.Merge(incoming)
	if merged == existing {
		return false
	}
	byLang[alt.ISOLanguage] = merged
	return true
}

func (ix *AlternateNameIndex) Lookup(geonameID int64, language string) (domain.AlternateNameEntry, bool) {
	entry, ok := ix.names[geonameID][language]
	return entry, ok
}

// Len returns the number of features with at least one name.
func (ix *AlternateNameIndex) Len() int {
	return len(ix.names)
}

// Names returns every language known for a feature. The map must not be
// modified.
func (ix *AlternateNameIndex) Names(geonameID int64) map[string]domain.AlternateNameEntry {
	return ix.names[geonameID]
}
