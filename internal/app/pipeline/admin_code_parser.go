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

const SourceAdmin1Codes = "admin1_codes"

// AdminCodeIndex maps admin1 codes to their regions. The first row seen for
// a code wins.
type AdminCodeIndex struct {
	codes map[string]domain.AdminCode
}

func NewAdminCodeIndex() *AdminCodeIndex {
	return &AdminCodeIndex{codes: make(map[string]domain.AdminCode)}
}

// Insert adds the region unless its code is already present.
func (ix *AdminCodeIndex) Insert(code domain.AdminCode) bool {
	if _, ok := ix.codes[code.Code]; ok {
		return false
	}
	ix.codes[code.Code] = code
	return true
}

func (ix *AdminCodeIndex) Lookup(code string) (domain.AdminCode, bool) {
	ac, ok := ix.codes[code]
	return ac, ok
}

func (ix *AdminCodeIndex) Len() int {
	return len(ix.codes)
}

// AdminCodeParser парсит admin1CodesASCII.txt
type AdminCodeParser struct {
	*BaseParser
	index *AdminCodeIndex
	stats *metrics.SourceStats
}

func NewAdminCode1Parser(cfg *config.Config, collector *metrics.Collector) *AdminCodeParser {
	base := NewBaseParser(cfg, collector)
	return &AdminCodeParser{
		BaseParser: base,
		index:      NewAdminCodeIndex(),
		stats:      base.metrics.Source(SourceAdmin1Codes),
	}
}

func (p *AdminCodeParser) Index() *AdminCodeIndex {
	return p.index
}

// ProcessFile обрабатывает файл с admin кодами
func (p *AdminCodeParser) ProcessFile(ctx context.Context, filePath string) (int64, error) {
	p.logger.Info("Processing admin1 codes", "file", filepath.Base(filePath))

	var inserted int64
	if err := p.scanFile(ctx, filePath, "Processing admin1", p.lineHandler(ctx, &inserted)); err != nil {
		return inserted, err
	}

	p.logger.Info("Completed admin1 codes", "regions", p.index.Len(), "skipped", p.stats.Skipped())
	return inserted, nil
}

func (p *AdminCodeParser) Parse(ctx context.Context, r io.Reader) (int64, error) {
	var inserted int64
	err := p.scan(ctx, r, nil, p.lineHandler(ctx, &inserted))
	return inserted, err
}

func (p *AdminCodeParser) lineHandler(ctx context.Context, inserted *int64) lineHandler {
	debug := p.debugEnabled(ctx)

	return func(line string, lineNum int64) error {
		p.stats.LineRead()

		code, err := parseAdmin1(line)
		if err != nil {
			p.stats.LineSkipped()
			if debug {
				p.logger.Debug("Skipping admin1 line", "line", lineNum, "error", err)
			}
			return nil
		}

		if !p.index.Insert(code) {
			p.stats.LineSkipped()
			if debug {
				p.logger.Debug("Skipping admin1 code since it already exists", "line", lineNum, "code", code.Code)
			}
			return nil
		}

		p.stats.LineAccepted()
		*inserted++
		return nil
	}
}

// parseAdmin1 парсит строку из admin1CodesASCII.txt
// Формат: code, name, asciiname, geonameId
// Пример: AD.02	Canillo	Canillo	3041203
func parseAdmin1(line string) (domain.AdminCode, error) {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 4 {
		return domain.AdminCode{}, fmt.Errorf("invalid format: %d fields", len(fields))
	}

	geonameID, err := ParseGeonameID(firstField(fields[3]))
	if err != nil {
		return domain.AdminCode{}, err
	}

	return domain.AdminCode{
		Code:      fields[0],
		Name:      fields[1],
		ASCIIName: fields[2],
		GeonameID: geonameID,
	}, nil
}
