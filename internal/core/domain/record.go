package domain

import "sort"

// LocalizedNames is a city/region/country name triple for one language.
// Any field may be empty while a record is being assembled.
type LocalizedNames struct {
	CityName    string
	Admin1Name  string
	CountryName string
}

// IsZero reports whether no field is set.
func (n LocalizedNames) IsZero() bool {
	return n.CityName == "" && n.Admin1Name == "" && n.CountryName == ""
}

// Location holds the verbatim geographic columns of a city.
type Location struct {
	Timezone  string
	Latitude  string
	Longitude string
}

// Record is the output unit: one city with its canonical and localized names.
type Record struct {
	GeonameID      int64
	CountryCode    string
	Location       Location
	LatinizedName  LocalizedNames
	LocalizedNames map[string]LocalizedNames
}

// NewRecord starts a record for the given city.
func NewRecord(c *City) Record {
	return Record{
		GeonameID:   c.ID,
		CountryCode: c.CountryCode,
		Location: Location{
			Timezone:  c.Timezone,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		},
		LocalizedNames: make(map[string]LocalizedNames),
	}
}

// Languages returns the localized languages in increasing order.
func (r *Record) Languages() []string {
	langs := make([]string, 0, len(r.LocalizedNames))
	for lang := range r.LocalizedNames {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
