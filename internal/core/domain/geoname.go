package domain

import "strings"

// City is a row of the GeoNames cities dump reduced to the columns the
// generator consumes. Coordinates are kept as the source text so they are
// written back byte for byte.
type City struct {
	ID          int64
	Name        string
	Latitude    string
	Longitude   string
	CountryCode string
	Admin1Code  string // region identifier only, without the country prefix
	Timezone    string
}

// Admin1Key returns the composite admin1 code ("US.CA") of the city's region.
func (c *City) Admin1Key() string {
	return Admin1Key(c.CountryCode, c.Admin1Code)
}

// HasValidCountry reports whether the country code has exactly two characters.
func (c *City) HasValidCountry() bool {
	return len(c.CountryCode) == 2
}

// Admin1Key joins a country code and a region identifier into an admin1 code.
func Admin1Key(countryCode, regionID string) string {
	var b strings.Builder
	b.Grow(len(countryCode) + len(regionID) + 1)
	b.WriteString(countryCode)
	b.WriteByte('.')
	b.WriteString(regionID)
	return b.String()
}
