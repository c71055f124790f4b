package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlternateNameEntryMerge(t *testing.T) {
	plain := func(name string) AlternateNameEntry { return AlternateNameEntry{Name: name} }
	preferred := func(name string) AlternateNameEntry { return AlternateNameEntry{Name: name, IsPreferred: true} }

	tests := []struct {
		name     string
		stored   AlternateNameEntry
		incoming AlternateNameEntry
		want     AlternateNameEntry
	}{
		{"preferred replaces plain", plain("A"), preferred("B"), preferred("B")},
		{"plain keeps preferred", preferred("A"), plain("B"), preferred("A")},
		{"plain keeps plain", plain("A"), plain("B"), plain("A")},
		{"preferred keeps preferred", preferred("A"), preferred("B"), preferred("A")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stored.Merge(tt.incoming))
		})
	}
}

func TestRecordLanguages(t *testing.T) {
	city := &City{ID: 1, CountryCode: "US", Admin1Code: "CA", Timezone: "America/Los_Angeles", Latitude: "34", Longitude: "-118"}
	rec := NewRecord(city)
	assert.Empty(t, rec.Languages())

	rec.LocalizedNames["ru"] = LocalizedNames{CityName: "Лос-Анджелес"}
	rec.LocalizedNames["de"] = LocalizedNames{}
	rec.LocalizedNames["fr"] = LocalizedNames{CountryName: "États-Unis"}

	assert.Equal(t, []string{"de", "fr", "ru"}, rec.Languages())
	assert.Equal(t, Location{Timezone: "America/Los_Angeles", Latitude: "34", Longitude: "-118"}, rec.Location)
	assert.True(t, rec.LocalizedNames["de"].IsZero())
	assert.False(t, rec.LocalizedNames["fr"].IsZero())
}

func TestAdminCodes(t *testing.T) {
	city := &City{CountryCode: "US", Admin1Code: "CA"}
	assert.Equal(t, "US.CA", city.Admin1Key())
	assert.True(t, city.HasValidCountry())
	assert.False(t, (&City{CountryCode: "USA"}).HasValidCountry())
	assert.Equal(t, "FR.11", Admin1Key("FR", "11"))
}
