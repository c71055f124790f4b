// Command geolocale joins a GeoNames cities dump with alternate names,
// admin1 codes and localized country tables into one record per city.
//
// Usage: geolocale -o cities.tsv -c cities15000.txt [-i input] [-l fr,de] [-C US,FR]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/terratensor/geolocale/internal/adapters/exporters"
	"github.com/terratensor/geolocale/internal/app/services"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/logging"
	"github.com/terratensor/geolocale/internal/metrics"
)

func main() {
	var opts config.RunOptions
	pflag.StringVarP(&opts.OutputPath, "output", "o", "", "Output file")
	pflag.StringVarP(&opts.CitiesPath, "cities", "c", "", "GeoNames cities file (.txt or .zip)")
	pflag.StringVarP(&opts.InputDir, "input", "i", "", "Folder with alternate names, admin1 codes and localized-countries (default DATA_DIR)")
	languages := pflag.StringP("languages", "l", "", "Comma-separated ISO 639-1 languages, e.g. fr,de")
	countries := pflag.StringP("countries", "C", "", "Comma-separated ISO 3166-1 alpha-2 countries, e.g. US,FR")
	pflag.StringVarP(&opts.Format, "format", "f", "tsv", "Output format: tsv or json")
	verbose := pflag.BoolP("verbose", "v", false, "Log per-line diagnostics")
	pflag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	logging.Setup(cfg.LogLevel, *verbose)

	if opts.Languages, err = config.ParseLanguages(*languages); err != nil {
		fail(err)
	}
	if opts.Countries, err = config.ParseCountries(*countries); err != nil {
		fail(err)
	}
	if err := opts.Validate(cfg); err != nil {
		fail(err)
	}

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("Starting generation",
		"cities", opts.CitiesPath,
		"input", opts.InputDir,
		"languages", opts.Languages,
		"countries", opts.Countries,
		"filter_mode", cfg.CountryFilterMode,
		"workers", cfg.WorkersCount)

	collector := metrics.NewCollector()
	generator := services.NewGenerator(cfg, &opts, exporters.NewWriterFactory(), collector)
	if err := generator.Run(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Warn("Generation cancelled")
		}
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}

	if *verbose {
		stats, err := collector.JSON()
		if err != nil {
			slog.Error("Failed to encode run statistics", "error", err)
			return
		}
		fmt.Fprintln(os.Stderr, string(stats))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Usage: geolocale -o <output> -c <cities> [-i <input>] [-l <languages>] [-C <countries>]")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	os.Exit(1)
}
