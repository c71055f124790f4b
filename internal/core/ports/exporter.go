package ports

import (
	"io"

	"github.com/terratensor/geolocale/internal/core/domain"
)

type ExportFormat string

const (
	FormatTSV  ExportFormat = "tsv"
	FormatJSON ExportFormat = "json"
)

// RecordWriter serializes assembled records to an output stream
type RecordWriter interface {
	WriteRecord(record *domain.Record) error
	Close() error
}

// WriterFactory creates writers for the supported formats
type WriterFactory interface {
	CreateWriter(w io.Writer, format ExportFormat) (RecordWriter, error)
	// CreateFileWriter creates path; closing the writer closes the file.
	CreateFileWriter(path string, format ExportFormat) (RecordWriter, error)
}
