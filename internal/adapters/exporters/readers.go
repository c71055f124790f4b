package exporters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/terratensor/geolocale/internal/core/domain"
)

// tsvHeadFields is the number of columns before the localized entries.
const tsvHeadFields = 8

// ReadTSVRecord parses a line written by TSVWriter. The geoname id is not
// part of the format and stays zero.
func ReadTSVRecord(line string) (domain.Record, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	if len(fields) < tsvHeadFields {
		return domain.Record{}, fmt.Errorf("expected at least %d fields, got %d", tsvHeadFields, len(fields))
	}

	count, err := strconv.Atoi(fields[7])
	if err != nil || count < 0 {
		return domain.Record{}, fmt.Errorf("invalid language count %q", fields[7])
	}

	want := tsvHeadFields + 4*count
	// older files end localized entries with an extra tab
	if len(fields) == want+1 && fields[want] == "" {
		fields = fields[:want]
	}
	if len(fields) != want {
		return domain.Record{}, fmt.Errorf("expected %d fields for %d languages, got %d", want, count, len(fields))
	}

	rec := domain.Record{
		CountryCode: fields[0],
		Location: domain.Location{
			Timezone:  fields[1],
			Latitude:  fields[2],
			Longitude: fields[3],
		},
		LatinizedName: domain.LocalizedNames{
			CityName:    fields[4],
			Admin1Name:  fields[5],
			CountryName: fields[6],
		},
		LocalizedNames: make(map[string]domain.LocalizedNames, count),
	}
	for i := tsvHeadFields; i < len(fields); i += 4 {
		rec.LocalizedNames[fields[i]] = domain.LocalizedNames{
			CityName:    fields[i+1],
			Admin1Name:  fields[i+2],
			CountryName: fields[i+3],
		}
	}
	return rec, nil
}

// ReadJSONRecords decodes the array written by JSONWriter, calling fn for
// every element in order.
func ReadJSONRecords(r io.Reader, fn func(domain.Record) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read array start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return errors.New("expected a JSON array")
	}

	for i := 0; dec.More(); i++ {
		var row []json.RawMessage
		if err := dec.Decode(&row); err != nil {
			return fmt.Errorf("failed to decode element %d: %w", i, err)
		}
		rec, err := decodeJSONRow(row)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read array end: %w", err)
	}
	return nil
}

func decodeJSONRow(row []json.RawMessage) (domain.Record, error) {
	if len(row) != 6 {
		return domain.Record{}, fmt.Errorf("expected 6 values, got %d", len(row))
	}

	var (
		rec       domain.Record
		canonical [3]string
		localized [][4]string
		lat, lon  *float64
	)
	targets := []any{&rec.CountryCode, &rec.Location.Timezone, &canonical, &localized, &lat, &lon}
	for i, target := range targets {
		if err := json.Unmarshal(row[i], target); err != nil {
			return domain.Record{}, fmt.Errorf("value %d: %w", i, err)
		}
	}

	rec.LatinizedName = domain.LocalizedNames{CityName: canonical[0], Admin1Name: canonical[1], CountryName: canonical[2]}
	rec.LocalizedNames = make(map[string]domain.LocalizedNames, len(localized))
	for _, l := range localized {
		rec.LocalizedNames[l[0]] = domain.LocalizedNames{CityName: l[1], Admin1Name: l[2], CountryName: l[3]}
	}
	if lat != nil {
		rec.Location.Latitude = strconv.FormatFloat(*lat, 'f', -1, 64)
	}
	if lon != nil {
		rec.Location.Longitude = strconv.FormatFloat(*lon, 'f', -1, 64)
	}
	return rec, nil
}
