package exporters

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/core/ports"
)

func losAngeles() *domain.Record {
	return &domain.Record{
		GeonameID:   5368361,
		CountryCode: "US",
		Location: domain.Location{
			Timezone:  "America/Los_Angeles",
			Latitude:  "34.05223",
			Longitude: "-118.24368",
		},
		LatinizedName: domain.LocalizedNames{CityName: "Los Angeles", Admin1Name: "California", CountryName: "United States"},
		LocalizedNames: map[string]domain.LocalizedNames{
			"ru": {CityName: "Лос-Анджелес", CountryName: "США"},
			"fr": {CityName: "Los Angeles", Admin1Name: "Californie", CountryName: "États-Unis"},
		},
	}
}

const laTSV = "US\tAmerica/Los_Angeles\t34.05223\t-118.24368\tLos Angeles\tCalifornia\tUnited States\t2" +
	"\tfr\tLos Angeles\tCalifornie\tÉtats-Unis" +
	"\tru\tЛос-Анджелес\t\tСША\n"

func TestTSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf)

	require.NoError(t, w.WriteRecord(losAngeles()))
	require.NoError(t, w.WriteRecord(&domain.Record{CountryCode: "AD", LatinizedName: domain.LocalizedNames{CityName: "Tab\tCity"}}))
	require.NoError(t, w.Close())

	assert.Equal(t, laTSV+"AD\t\t\t\tTab City\t\t\t0\n", buf.String())
}

func TestReadTSVRecord(t *testing.T) {
	rec, err := ReadTSVRecord(laTSV)
	require.NoError(t, err)

	want := *losAngeles()
	want.GeonameID = 0
	assert.Equal(t, want, rec)

	// trailing tab after the localized entries is accepted
	rec, err = ReadTSVRecord(strings.TrimSuffix(laTSV, "\n") + "\t")
	require.NoError(t, err)
	assert.Len(t, rec.LocalizedNames, 2)

	tests := []struct {
		name string
		line string
	}{
		{"too short", "US\tAmerica/Los_Angeles"},
		{"bad count", "US\ttz\t1\t2\ta\tb\tc\tx"},
		{"count mismatch", "US\ttz\t1\t2\ta\tb\tc\t1\tfr\tx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTSVRecord(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.WriteRecord(losAngeles()))
	require.NoError(t, w.WriteRecord(&domain.Record{CountryCode: "AD", Location: domain.Location{Latitude: "x", Longitude: "1.5"}}))
	require.NoError(t, w.Close())

	assert.True(t, strings.HasPrefix(buf.String(),
		`[
["US","America/Los_Angeles",["Los Angeles","California","United States"],[["fr","Los Angeles","Californie","États-Unis"],["ru","Лос-Анджелес","","США"]],34.05223,-118.24368],
["AD","",["","",""],[],null,1.5]`), buf.String())

	var got []domain.Record
	err := ReadJSONRecords(&buf, func(r domain.Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := *losAngeles()
	want.GeonameID = 0
	assert.Equal(t, want, got[0])
	assert.Equal(t, "", got[1].Location.Latitude)
	assert.Equal(t, "1.5", got[1].Location.Longitude)
}

func TestJSONWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.Close())
	assert.Equal(t, "[\n]\n", buf.String())

	err := ReadJSONRecords(&buf, func(domain.Record) error {
		t.Fatal("unexpected record")
		return nil
	})
	assert.NoError(t, err)
}

func TestReadJSONRecordsRejectsObjects(t *testing.T) {
	err := ReadJSONRecords(strings.NewReader(`{"US": 1}`), func(domain.Record) error { return nil })
	assert.Error(t, err)

	err = ReadJSONRecords(strings.NewReader(`[["US"]]`), func(domain.Record) error { return nil })
	assert.Error(t, err)
}

func TestWriterFactory(t *testing.T) {
	f := NewWriterFactory()

	_, err := f.CreateWriter(&bytes.Buffer{}, "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	path := filepath.Join(t.TempDir(), "out.tsv")
	w, err := f.CreateFileWriter(path, ports.FormatTSV)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(losAngeles()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, laTSV, string(data))

	_, err = f.CreateFileWriter(filepath.Join(t.TempDir(), "out.xml"), "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
