package ports

import "github.com/terratensor/geolocale/internal/core/domain"

// AlternateNameLookup resolves the alternate name of a feature in one language.
type AlternateNameLookup interface {
	Lookup(geonameID int64, language string) (domain.AlternateNameEntry, bool)
}

// AdminCodeLookup resolves an admin1 code ("US.CA") to its region.
type AdminCodeLookup interface {
	Lookup(code string) (domain.AdminCode, bool)
}

// CountryNameLookup resolves the localized name of a country.
type CountryNameLookup interface {
	Lookup(language, countryCode string) (string, bool)
}
