package services

import (
	"log/slog"

	"github.com/terratensor/geolocale/internal/app/pipeline"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/core/ports"
)

// CountryFilter decides which cities are kept by country code. An empty
// filter keeps everything.
type CountryFilter struct {
	mode      config.FilterMode
	countries map[string]struct{}
}

func NewCountryFilter(mode config.FilterMode, countries []string) CountryFilter {
	set := make(map[string]struct{}, len(countries))
	for _, cc := range countries {
		set[cc] = struct{}{}
	}
	return CountryFilter{mode: mode, countries: set}
}

// Allows reports whether a city of the given country passes the filter.
func (f CountryFilter) Allows(countryCode string) bool {
	if len(f.countries) == 0 {
		return true
	}
	_, selected := f.countries[countryCode]
	if f.mode == config.FilterExclude {
		return !selected
	}
	return selected
}

// AssemblerOptions configures a RecordAssembler.
type AssemblerOptions struct {
	Languages       []string
	Filter          CountryFilter
	DefaultLanguage string // language of the canonical country name
	NormalizeNames  bool
}

// RecordAssembler joins a city with the prebuilt indexes and the country
// name cache into an output record. Lookups are read-only, so one assembler
// may be shared by several goroutines.
type RecordAssembler struct {
	opts      AssemblerOptions
	altNames  ports.AlternateNameLookup
	admins    ports.AdminCodeLookup
	countries ports.CountryNameLookup
	logger    *slog.Logger
}

func NewRecordAssembler(opts AssemblerOptions, altNames ports.AlternateNameLookup, admins ports.AdminCodeLookup, countries ports.CountryNameLookup) *RecordAssembler {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	return &RecordAssembler{
		opts:      opts,
		altNames:  altNames,
		admins:    admins,
		countries: countries,
		logger:    slog.Default(),
	}
}

// assembleLine parses a cities row and assembles it.
func (a *RecordAssembler) assembleLine(line string) (domain.Record, bool) {
	city, err := pipeline.ParseCity(line)
	if err != nil {
		a.logger.Debug("Skipping city line", "error", err)
		return domain.Record{}, false
	}
	return a.Assemble(city)
}

// Assemble builds the record of a city. It returns false when the city is
// filtered out or its country code is malformed.
func (a *RecordAssembler) Assemble(city *domain.City) (domain.Record, bool) {
	if !a.opts.Filter.Allows(city.CountryCode) {
		return domain.Record{}, false
	}
	if !city.HasValidCountry() {
		a.logger.Debug("Skipping city with invalid country code", "geonameid", city.ID, "country", city.CountryCode)
		return domain.Record{}, false
	}

	rec := domain.NewRecord(city)
	rec = a.resolveAdmin1(rec, city)
	rec = a.resolveCity(rec, city)
	rec = a.resolveCountry(rec)

	if a.opts.NormalizeNames {
		rec.LatinizedName = normalizeNames(rec.LatinizedName)
	}
	return rec, true
}

func (a *RecordAssembler) resolveAdmin1(rec domain.Record, city *domain.City) domain.Record {
	code := city.Admin1Key()
	admin, ok := a.admins.Lookup(code)
	if !ok {
		a.logger.Debug("Admin1 region not found", "geonameid", city.ID, "admin1", code)
		return rec
	}

	rec.LatinizedName.Admin1Name = admin.Name
	return a.mergeAlternateNames(rec, admin.GeonameID, setAdmin1Name)
}

func (a *RecordAssembler) resolveCity(rec domain.Record, city *domain.City) domain.Record {
	rec.LatinizedName.CityName = city.Name
	return a.mergeAlternateNames(rec, city.ID, setCityName)
}

func (a *RecordAssembler) resolveCountry(rec domain.Record) domain.Record {
	if name, ok := a.countries.Lookup(a.opts.DefaultLanguage, rec.CountryCode); ok {
		rec.LatinizedName.CountryName = name
	}
	for _, lang := range a.opts.Languages {
		if name, ok := a.countries.Lookup(lang, rec.CountryCode); ok {
			rec.LocalizedNames = mergeFragment(rec.LocalizedNames, lang, setCountryName, name)
		}
	}
	return rec
}

func (a *RecordAssembler) mergeAlternateNames(rec domain.Record, geonameID int64, set fragmentSetter) domain.Record {
	for _, lang := range a.opts.Languages {
		if entry, ok := a.altNames.Lookup(geonameID, lang); ok {
			rec.LocalizedNames = mergeFragment(rec.LocalizedNames, lang, set, entry.Name)
		}
	}
	return rec
}

// fragmentSetter writes one field of a language fragment.
type fragmentSetter func(*domain.LocalizedNames, string)

func setCityName(n *domain.LocalizedNames, v string)    { n.CityName = v }
func setAdmin1Name(n *domain.LocalizedNames, v string)  { n.Admin1Name = v }
func setCountryName(n *domain.LocalizedNames, v string) { n.CountryName = v }

// mergeFragment sets one field of the language's fragment, creating the
// fragment if needed. Other fields are left as they are. An empty value is
// ignored so it never creates or clears a fragment.
func mergeFragment(names map[string]domain.LocalizedNames, language string, set fragmentSetter, value string) map[string]domain.LocalizedNames {
	if value == "" {
		return names
	}
	if names == nil {
		names = make(map[string]domain.LocalizedNames)
	}
	fragment := names[language]
	set(&fragment, value)
	names[language] = fragment
	return names
}
