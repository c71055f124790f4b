// Command reverse_geocode prints the nearest generated city for coordinates
// given as arguments or read as "lat,lon" lines from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/terratensor/geolocale/internal/app/services"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/logging"
)

type result struct {
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	CountryCode string            `json:"country_code,omitempty"`
	Timezone    string            `json:"timezone,omitempty"`
	City        string            `json:"city,omitempty"`
	Admin1      string            `json:"admin1,omitempty"`
	Country     string            `json:"country,omitempty"`
	Localized   map[string]string `json:"localized,omitempty"`
	DistanceKm  float64           `json:"distance_km,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func main() {
	dataPath := pflag.StringP("data", "d", "", "Generated file (.tsv or .json)")
	maxKm := pflag.Float64P("max-distance", "m", 0, "Max distance in km (default MAX_DISTANCE_KM)")
	verbose := pflag.BoolP("verbose", "v", false, "Log per-line diagnostics")
	pflag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: reverse_geocode -d <cities.tsv> [--] [lat,lon ...]")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, *verbose)
	if *maxKm > 0 {
		cfg.MaxDistanceKm = *maxKm
	}

	geocoder, err := services.LoadReverseGeocoder(context.Background(), cfg, *dataPath, nil)
	if err != nil {
		slog.Error("Failed to load cities", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	emit := func(query string) {
		if err := enc.Encode(lookup(geocoder, query)); err != nil {
			slog.Error("Failed to write result", "error", err)
			os.Exit(1)
		}
	}

	if pflag.NArg() > 0 {
		for _, arg := range pflag.Args() {
			emit(arg)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			emit(line)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Failed to read stdin", "error", err)
		os.Exit(1)
	}
}

func lookup(g *services.ReverseGeocoder, query string) result {
	lat, lon, err := parseCoordinates(query)
	if err != nil {
		return result{Error: err.Error()}
	}

	res := result{Lat: lat, Lon: lon}
	rec, dist, err := g.Nearest(lat, lon)
	if err != nil {
		if !errors.Is(err, services.ErrNoCityNearby) {
			slog.Debug("Lookup failed", "query", query, "error", err)
		}
		res.Error = err.Error()
		return res
	}

	res.CountryCode = rec.CountryCode
	res.Timezone = rec.Location.Timezone
	res.City = rec.LatinizedName.CityName
	res.Admin1 = rec.LatinizedName.Admin1Name
	res.Country = rec.LatinizedName.CountryName
	res.DistanceKm = dist
	if len(rec.LocalizedNames) > 0 {
		res.Localized = make(map[string]string, len(rec.LocalizedNames))
		for lang, names := range rec.LocalizedNames {
			res.Localized[lang] = names.CityName
		}
	}
	return res
}

func parseCoordinates(s string) (float64, float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonStr)
	}
	return lat, lon, nil
}
