package exporters

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/terratensor/geolocale/internal/core/domain"
)

// JSONWriter writes all records as a single JSON array, one element per line:
//
//	[countryCode, timezone, [city, admin1, country],
//	 [[language, city, admin1, country], ...], latitude, longitude]
//
// Coordinates are numbers; a coordinate that does not parse is written as null.
type JSONWriter struct {
	w       *bufio.Writer
	written int
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriterSize(w, 64*1024)}
}

func (w *JSONWriter) WriteRecord(r *domain.Record) error {
	data, err := json.Marshal(jsonRow(r))
	if err != nil {
		return fmt.Errorf("failed to marshal record %d: %w", r.GeonameID, err)
	}

	if w.written == 0 {
		w.w.WriteString("[\n")
	} else {
		w.w.WriteString(",\n")
	}
	w.written++

	_, err = w.w.Write(data)
	return err
}

// Close terminates the array and flushes. The underlying writer is not closed.
func (w *JSONWriter) Close() error {
	if w.written == 0 {
		w.w.WriteString("[")
	}
	w.w.WriteString("\n]\n")
	return w.w.Flush()
}

func jsonRow(r *domain.Record) []any {
	langs := r.Languages()
	localized := make([][4]string, 0, len(langs))
	for _, lang := range langs {
		n := r.LocalizedNames[lang]
		localized = append(localized, [4]string{lang, n.CityName, n.Admin1Name, n.CountryName})
	}

	return []any{
		r.CountryCode,
		r.Location.Timezone,
		[3]string{r.LatinizedName.CityName, r.LatinizedName.Admin1Name, r.LatinizedName.CountryName},
		localized,
		coordinate(r.Location.Latitude),
		coordinate(r.Location.Longitude),
	}
}

func coordinate(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
