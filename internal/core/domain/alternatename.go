package domain

// AlternateName is one parsed row of alternateNames.txt.
type AlternateName struct {
	GeonameID       int64
	ISOLanguage     string
	AlternateName   string
	IsPreferredName bool
}

// AlternateNameEntry is the name kept for a (geonameId, language) pair.
type AlternateNameEntry struct {
	Name        string
	IsPreferred bool
}

// Entry converts the parsed row into an index entry.
func (a *AlternateName) Entry() AlternateNameEntry {
	return AlternateNameEntry{Name: a.AlternateName, IsPreferred: a.IsPreferredName}
}

// Merge applies the preference rule to a stored entry and an incoming one:
// a preferred name replaces a non-preferred one, otherwise the stored entry stays.
func (e AlternateNameEntry) Merge(incoming AlternateNameEntry) AlternateNameEntry {
	if !e.IsPreferred && incoming.IsPreferred {
		return AlternateNameEntry{Name: incoming.Name, IsPreferred: true}
	}
	return e
}
