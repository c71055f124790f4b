// Command export_json converts a generated TSV file into the JSON array format.
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
	"github.com/terratensor/geolocale/internal/core/ports"
	"github.com/terratensor/geolocale/internal/logging"
	"github.com/terratensor/geolocale/internal/metrics"
)

func main() {
	inputPath := pflag.StringP("input", "i", "", "Generated TSV file")
	outputPath := pflag.StringP("output", "o", "", "JSON output file")
	verbose := pflag.BoolP("verbose", "v", false, "Log per-line diagnostics")
	pflag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: export_json -i <cities.tsv> -o <cities.json>")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, *verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector()
	svc := services.NewConvertService(cfg, exporters.NewWriterFactory(), collector)
	if _, err := svc.Convert(ctx, *inputPath, *outputPath, ports.FormatJSON); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
	collector.LogSummary(slog.Default())
}
