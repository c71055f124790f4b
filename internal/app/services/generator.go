package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terratensor/geolocale/internal/adapters/archive"
	"github.com/terratensor/geolocale/internal/adapters/localization"
	"github.com/terratensor/geolocale/internal/app/pipeline"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/core/ports"
	"github.com/terratensor/geolocale/internal/metrics"
)

// Generator runs one full pass: alternate names, then admin1 codes, then
// the cities stream written to the output.
type Generator struct {
	cfg       *config.Config
	opts      *config.RunOptions
	factory   ports.WriterFactory
	extractor *archive.Extractor
	metrics   *metrics.Collector
	logger    *slog.Logger
}

func NewGenerator(cfg *config.Config, opts *config.RunOptions, factory ports.WriterFactory, collector *metrics.Collector) *Generator {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Generator{
		cfg:       cfg,
		opts:      opts,
		factory:   factory,
		extractor: archive.NewExtractor(cfg),
		metrics:   collector,
		logger:    slog.Default(),
	}
}

func (g *Generator) Run(ctx context.Context) error {
	start := time.Now()

	altNames, err := g.buildAlternateNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to build alternate names: %w", err)
	}

	admins, err := g.buildAdminCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to build admin1 codes: %w", err)
	}

	countries := localization.NewCountryNames(os.DirFS(g.opts.LocalizedCountriesPath(g.cfg)))
	assembler := NewRecordAssembler(AssemblerOptions{
		Languages:       g.opts.Languages,
		Filter:          NewCountryFilter(g.cfg.CountryFilterMode, g.opts.Countries),
		DefaultLanguage: g.cfg.DefaultLanguage,
		NormalizeNames:  g.cfg.NormalizeNames,
	}, altNames, admins, countries)

	if err := g.writeCities(ctx, assembler); err != nil {
		return err
	}

	g.logger.Info("Generation completed", "output", g.opts.OutputPath,
		"languages_loaded", countries.Loaded(), "duration", time.Since(start).Round(time.Millisecond))
	g.metrics.LogSummary(g.logger)
	return nil
}

func (g *Generator) buildAlternateNames(ctx context.Context) (*pipeline.AlternateNameIndex, error) {
	path, err := g.extractor.Resolve(ctx, g.opts.AlternateNamesPath(g.cfg))
	if err != nil {
		return nil, err
	}

	parser := pipeline.NewAlternateNameParser(g.cfg, g.metrics, g.opts.Languages)
	if _, err := parser.ProcessFile(ctx, path); err != nil {
		return nil, err
	}
	return parser.Index(), nil
}

func (g *Generator) buildAdminCodes(ctx context.Context) (*pipeline.AdminCodeIndex, error) {
	parser := pipeline.NewAdminCode1Parser(g.cfg, g.metrics)
	if _, err := parser.ProcessFile(ctx, g.opts.Admin1CodesPath(g.cfg)); err != nil {
		return nil, err
	}
	return parser.Index(), nil
}

// writeCities streams the cities into OutputPath + ".part" and renames it
// over OutputPath only after every record was written, so a failed or
// cancelled run leaves any previous output untouched.
func (g *Generator) writeCities(ctx context.Context, assembler *RecordAssembler) error {
	citiesPath, err := g.extractor.Resolve(ctx, g.opts.CitiesPath)
	if err != nil {
		return fmt.Errorf("failed to resolve cities file: %w", err)
	}

	tmpPath := g.opts.OutputPath + ".part"
	writer, err := g.factory.CreateFileWriter(tmpPath, ports.ExportFormat(g.opts.Format))
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	parser := pipeline.NewGeonameParser(g.cfg, g.metrics)
	consume := g.batchConsumer(ctx, assembler, writer)
	if _, err := parser.ProcessFile(ctx, citiesPath, consume); err != nil {
		writer.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to process cities: %w", err)
	}

	if err := writer.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, g.opts.OutputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}

// batchConsumer assembles each batch and writes the records in input order.
// With more than one worker a batch is split into chunks assembled
// concurrently; writing still happens on the calling goroutine.
func (g *Generator) batchConsumer(ctx context.Context, assembler *RecordAssembler, writer ports.RecordWriter) pipeline.BatchConsumer {
	stats := g.metrics.Source(pipeline.SourceCities)
	workers := g.cfg.WorkersCount

	return func(batch []*domain.City) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		records := make([]domain.Record, len(batch))
		kept := make([]bool, len(batch))

		if workers <= 1 {
			for i, city := range batch {
				records[i], kept[i] = assembler.Assemble(city)
			}
		} else if err := assembleParallel(ctx, assembler, batch, records, kept, workers); err != nil {
			return err
		}

		for i := range batch {
			if !kept[i] {
				stats.LineSkipped()
				continue
			}
			if err := writer.WriteRecord(&records[i]); err != nil {
				return fmt.Errorf("failed to write record %d: %w", records[i].GeonameID, err)
			}
			stats.LineAccepted()
			g.metrics.RecordWritten()
		}
		return nil
	}
}

func assembleParallel(ctx context.Context, assembler *RecordAssembler, batch []*domain.City, records []domain.Record, kept []bool, workers int) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	chunk := (len(batch) + workers - 1) / workers
	for lo := 0; lo < len(batch); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(batch))
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1000 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				records[i], kept[i] = assembler.Assemble(batch[i])
			}
			return nil
		})
	}
	return eg.Wait()
}
