package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/terratensor/geolocale/internal/adapters/exporters"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/metrics"
)

const SourceRecords = "records"

// RecordConsumer receives records read back from a generated file.
type RecordConsumer func(rec domain.Record) error

// RecordParser reads the TSV output of a previous run.
type RecordParser struct {
	*BaseParser
	stats *metrics.SourceStats
}

func NewRecordParser(cfg *config.Config, collector *metrics.Collector) *RecordParser {
	base := NewBaseParser(cfg, collector)
	return &RecordParser{
		BaseParser: base,
		stats:      base.metrics.Source(SourceRecords),
	}
}

func (p *RecordParser) ProcessFile(ctx context.Context, filePath string, consume RecordConsumer) (int64, error) {
	p.logger.Info("Reading records", "file", filepath.Base(filePath))

	var accepted int64
	err := p.scanFile(ctx, filePath, fmt.Sprintf("Reading %s", filepath.Base(filePath)), p.lineHandler(ctx, &accepted, consume))
	return accepted, err
}

func (p *RecordParser) Parse(ctx context.Context, r io.Reader, consume RecordConsumer) (int64, error) {
	var accepted int64
	err := p.scan(ctx, r, nil, p.lineHandler(ctx, &accepted, consume))
	return accepted, err
}

func (p *RecordParser) lineHandler(ctx context.Context, accepted *int64, consume RecordConsumer) lineHandler {
	debug := p.debugEnabled(ctx)

	return func(line string, lineNum int64) error {
		p.stats.LineRead()

		rec, err := exporters.ReadTSVRecord(line)
		if err != nil {
			p.stats.LineSkipped()
			if debug {
				p.logger.Debug("Skipping record line", "line", lineNum, "error", err)
			}
			return nil
		}

		if err := consume(rec); err != nil {
			return err
		}
		p.stats.LineAccepted()
		*accepted++
		return nil
	}
}
