package exporters

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terratensor/geolocale/internal/core/ports"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

type WriterFactory struct{}

func NewWriterFactory() *WriterFactory {
	return &WriterFactory{}
}

func (f *WriterFactory) CreateWriter(w io.Writer, format ports.ExportFormat) (ports.RecordWriter, error) {
	switch format {
	case ports.FormatTSV:
		return NewTSVWriter(w), nil
	case ports.FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// CreateFileWriter создает writer для файла
func (f *WriterFactory) CreateFileWriter(filePath string, format ports.ExportFormat) (ports.RecordWriter, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer, err := f.CreateWriter(file, format)
	if err != nil {
		file.Close()
		os.Remove(filePath)
		return nil, err
	}

	// Возвращаем composit writer который закроет и файл
	return &fileWriter{
		RecordWriter: writer,
		file:         file,
	}, nil
}

type fileWriter struct {
	ports.RecordWriter
	file *os.File
}

func (w *fileWriter) Close() error {
	if err := w.RecordWriter.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
