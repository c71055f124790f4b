package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/metrics"
)

const SourceAlternateNames = "alternate_names"

// alternateNameFields is the number of columns a row is split into; columns
// after isPreferredName are never consulted.
const alternateNameFields = 5

// AlternateNameParser handles parsing of alternateNames.txt into an index
// restricted to the selected languages.
type AlternateNameParser struct {
	*BaseParser
	languages map[string]struct{}
	index     *AlternateNameIndex
	stats     *metrics.SourceStats
}

func NewAlternateNameParser(cfg *config.Config, collector *metrics.Collector, languages []string) *AlternateNameParser {
	base := NewBaseParser(cfg, collector)

	selected := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		selected[lang] = struct{}{}
	}

	return &AlternateNameParser{
		BaseParser: base,
		languages:  selected,
		index:      NewAlternateNameIndex(),
		stats:      base.metrics.Source(SourceAlternateNames),
	}
}

// Index returns the index built so far
func (p *AlternateNameParser) Index() *AlternateNameIndex {
	return p.index
}

// ProcessFile processes the alternate names file
func (p *AlternateNameParser) ProcessFile(ctx context.Context, filePath string) (int64, error) {
	p.logger.Info("Processing alternate names file", "file", filepath.Base(filePath), "languages", len(p.languages))

	var accepted int64
	handle := p.lineHandler(ctx, &accepted)
	if err := p.scanFile(ctx, filePath, fmt.Sprintf("Processing %s", filepath.Base(filePath)), handle); err != nil {
		return accepted, err
	}

	p.logSummary(accepted)
	return accepted, nil
}

// Parse reads alternate names from r. Used for already-open sources.
func (p *AlternateNameParser) Parse(ctx context.Context, r io.Reader) (int64, error) {
	var accepted int64
	if err := p.scan(ctx, r, nil, p.lineHandler(ctx, &accepted)); err != nil {
		return accepted, err
	}
	return accepted, nil
}

func (p *AlternateNameParser) lineHandler(ctx context.Context, accepted *int64) lineHandler {
	debug := p.debugEnabled(ctx)

	return func(line string, lineNum int64) error {
		p.stats.LineRead()

		altName, reason := p.parseLine(line)
		if altName == nil {
			p.stats.LineSkipped()
			if debug {
				p.logger.Debug("Skipping alternate name", "line", lineNum, "reason", reason)
			}
			return nil
		}

		p.stats.LineAccepted()
		*accepted++
		if changed := p.index.Upsert(altName); !changed && debug {
			p.logger.Debug("Alternate name already present", "line", lineNum,
				"geonameid", altName.GeonameID, "language", altName.ISOLanguage)
		}
		return nil
	}
}

// parseLine returns the alternate name of a row, or nil with the reason the
// row was rejected.
func (p *AlternateNameParser) parseLine(line string) (*domain.AlternateName, string) {
	fields := strings.SplitN(line, "\t", alternateNameFields)
	if len(fields) < 4 {
		return nil, fmt.Sprintf("expected at least 4 fields, got %d", len(fields))
	}

	// Теги вроде "link", "post", "abbr" не являются языками
	isoLang := fields[2]
	if len(isoLang) > 2 {
		return nil, fmt.Sprintf("not an ISO language: %q", isoLang)
	}
	if _, ok := p.languages[isoLang]; !ok {
		return nil, fmt.Sprintf("language not selected: %q", isoLang)
	}

	geonameID, err := ParseGeonameID(fields[1])
	if err != nil {
		return nil, err.Error()
	}

	isPreferred := false
	if len(fields) > 4 && firstField(fields[4]) == "1" {
		isPreferred = true
	}

	return &domain.AlternateName{
		GeonameID:       geonameID,
		ISOLanguage:     isoLang,
		AlternateName:   fields[3],
		IsPreferredName: isPreferred,
	}, ""
}

func (p *AlternateNameParser) logSummary(accepted int64) {
	p.logger.Info("Completed alternate names",
		slog.Int64("accepted", accepted),
		slog.Int64("skipped", p.stats.Skipped()),
		slog.Int("features", p.index.Len()))
}
