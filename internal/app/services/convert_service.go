package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terratensor/geolocale/internal/app/pipeline"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/core/ports"
	"github.com/terratensor/geolocale/internal/metrics"
)

// ConvertService rewrites a generated TSV file in another output format.
type ConvertService struct {
	cfg     *config.Config
	factory ports.WriterFactory
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewConvertService(cfg *config.Config, factory ports.WriterFactory, collector *metrics.Collector) *ConvertService {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &ConvertService{
		cfg:     cfg,
		factory: factory,
		metrics: collector,
		logger:  slog.Default(),
	}
}

// Convert reads inputPath and writes every valid record to outputPath.
func (s *ConvertService) Convert(ctx context.Context, inputPath, outputPath string, format ports.ExportFormat) (count int64, err error) {
	start := time.Now()

	writer, err := s.factory.CreateFileWriter(outputPath, format)
	if err != nil {
		return 0, fmt.Errorf("failed to create writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", closeErr)
		}
	}()

	parser := pipeline.NewRecordParser(s.cfg, s.metrics)
	count, err = parser.ProcessFile(ctx, inputPath, func(rec domain.Record) error {
		if err := writer.WriteRecord(&rec); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		s.metrics.RecordWritten()
		return nil
	})
	if err != nil {
		return count, err
	}

	s.logger.Info("Conversion completed", "records", count, "output", outputPath,
		"format", format, "duration", time.Since(start).Round(time.Millisecond))
	return count, nil
}
