package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/metrics"
)

const SourceCities = "cities"

// cityFields is the number of columns a cities row is split into. The 19th
// column (modification date) is optional and never read.
const (
	cityFields    = 19
	cityMinFields = 18
)

// GeonameParser handles parsing of the cities dump (cities15000.txt and
// friends). Rows are handed to the consumer in batches.
type GeonameParser struct {
	*BaseParser
	batchSize int
	stats     *metrics.SourceStats
}

func NewGeonameParser(cfg *config.Config, collector *metrics.Collector) *GeonameParser {
	base := NewBaseParser(cfg, collector)
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &GeonameParser{
		BaseParser: base,
		batchSize:  batchSize,
		stats:      base.metrics.Source(SourceCities),
	}
}

// BatchConsumer receives parsed cities in input order. Returning an error
// stops the parser.
type BatchConsumer func(batch []*domain.City) error

// ProcessFile processes the cities file
func (p *GeonameParser) ProcessFile(ctx context.Context, filePath string, consume BatchConsumer) (int64, error) {
	p.logger.Info("Processing cities file", "file", filepath.Base(filePath))

	var parsed int64
	batch := make([]*domain.City, 0, p.batchSize)
	handle := p.lineHandler(ctx, &parsed, &batch, consume)

	if err := p.scanFile(ctx, filePath, fmt.Sprintf("Processing %s", filepath.Base(filePath)), handle); err != nil {
		return parsed, err
	}

	// Send final batch
	if len(batch) > 0 {
		if err := consume(batch); err != nil {
			return parsed, err
		}
	}
	return parsed, nil
}

func (p *GeonameParser) Parse(ctx context.Context, r io.Reader, consume BatchConsumer) (int64, error) {
	var parsed int64
	batch := make([]*domain.City, 0, p.batchSize)
	if err := p.scan(ctx, r, nil, p.lineHandler(ctx, &parsed, &batch, consume)); err != nil {
		return parsed, err
	}
	if len(batch) > 0 {
		if err := consume(batch); err != nil {
			return parsed, err
		}
	}
	return parsed, nil
}

func (p *GeonameParser) lineHandler(ctx context.Context, parsed *int64, batch *[]*domain.City, consume BatchConsumer) lineHandler {
	debug := p.debugEnabled(ctx)

	return func(line string, lineNum int64) error {
		p.stats.LineRead()

		city, err := ParseCity(line)
		if err != nil {
			p.stats.LineSkipped()
			if debug {
				p.logger.Debug("Skipping city line", "line", lineNum, "error", err)
			}
			return nil
		}

		*parsed++
		*batch = append(*batch, city)

		// Send batch if full
		if len(*batch) >= p.batchSize {
			if err := consume(*batch); err != nil {
				return err
			}
			*batch = make([]*domain.City, 0, p.batchSize)
		}
		return nil
	}
}

// ParseCity parses one row of the cities dump.
//
//	 0 geonameid, 1 name, 4 latitude, 5 longitude, 8 country code,
//	10 admin1 code, 17 timezone
func ParseCity(line string) (*domain.City, error) {
	fields := strings.SplitN(line, "\t", cityFields)
	if len(fields) < cityMinFields {
		return nil, fmt.Errorf("record too short: %d fields", len(fields))
	}

	id, err := ParseGeonameID(fields[0])
	if err != nil {
		return nil, err
	}

	return &domain.City{
		ID:          id,
		Name:        fields[1],
		Latitude:    fields[4],
		Longitude:   fields[5],
		CountryCode: fields[8],
		Admin1Code:  fields[10],
		Timezone:    firstField(fields[17]),
	}, nil
}
