package exporters

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/terratensor/geolocale/internal/core/domain"
)

// TSVWriter writes one tab-separated line per record:
//
//	countryCode, timezone, latitude, longitude, city, admin1, country, N,
//	then N times: language, city, admin1, country
//
// Languages are written in increasing order. There is no header and no
// trailing tab.
type TSVWriter struct {
	w *bufio.Writer
}

func NewTSVWriter(w io.Writer) *TSVWriter {
	return &TSVWriter{w: bufio.NewWriterSize(w, 64*1024)}
}

func (w *TSVWriter) WriteRecord(r *domain.Record) error {
	langs := r.Languages()

	w.field(r.CountryCode)
	w.sep()
	w.field(r.Location.Timezone)
	w.sep()
	w.field(r.Location.Latitude)
	w.sep()
	w.field(r.Location.Longitude)
	w.sep()
	w.names(r.LatinizedName)
	w.sep()
	w.w.WriteString(strconv.Itoa(len(langs)))

	for _, lang := range langs {
		w.sep()
		w.field(lang)
		w.sep()
		w.names(r.LocalizedNames[lang])
	}

	return w.w.WriteByte('\n')
}

func (w *TSVWriter) names(n domain.LocalizedNames) {
	w.field(n.CityName)
	w.sep()
	w.field(n.Admin1Name)
	w.sep()
	w.field(n.CountryName)
}

func (w *TSVWriter) sep() {
	w.w.WriteByte('\t')
}

// field writes s with tabs and line breaks replaced by spaces so the column
// layout survives values coming from the JSON tables.
func (w *TSVWriter) field(s string) {
	if strings.ContainsAny(s, "\t\r\n") {
		s = fieldReplacer.Replace(s)
	}
	w.w.WriteString(s)
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// Close flushes buffered output. The underlying writer is not closed.
func (w *TSVWriter) Close() error {
	return w.w.Flush()
}
