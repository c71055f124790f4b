package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/terratensor/geolocale/internal/adapters/exporters"
	"github.com/terratensor/geolocale/internal/app/pipeline"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/core/domain"
	"github.com/terratensor/geolocale/internal/metrics"
)

const earthRadiusKm = 6371.0

var (
	ErrNoCityNearby       = errors.New("no city within max distance")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

type cityPoint struct {
	cell  s2.CellID
	ll    s2.LatLng
	index int
}

type coordKey struct {
	lat, lon float64
}

type nearestResult struct {
	index    int
	distance float64
}

// ReverseGeocoder finds the closest generated city to a coordinate. Points
// are kept sorted by S2 leaf cell so a cap covering turns into a handful of
// range scans.
type ReverseGeocoder struct {
	records       []domain.Record
	points        []cityPoint
	maxDistanceKm float64
	coverer       *s2.RegionCoverer
	cache         *lru.Cache[coordKey, nearestResult]
}

func NewReverseGeocoder(records []domain.Record, maxDistanceKm float64, cacheSize int) (*ReverseGeocoder, error) {
	if maxDistanceKm <= 0 {
		return nil, fmt.Errorf("max distance must be positive, got %v", maxDistanceKm)
	}
	cache, err := lru.New[coordKey, nearestResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	points := make([]cityPoint, 0, len(records))
	var invalid int
	for i := range records {
		ll, ok := recordLatLng(&records[i])
		if !ok {
			invalid++
			continue
		}
		points = append(points, cityPoint{cell: s2.CellIDFromLatLng(ll), ll: ll, index: i})
	}
	if invalid > 0 {
		slog.Warn("Records without usable coordinates were not indexed", "count", invalid)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].cell != points[j].cell {
			return points[i].cell < points[j].cell
		}
		return points[i].index < points[j].index
	})

	return &ReverseGeocoder{
		records:       records,
		points:        points,
		maxDistanceKm: maxDistanceKm,
		coverer:       &s2.RegionCoverer{MinLevel: 0, MaxLevel: 30, LevelMod: 1, MaxCells: 8},
		cache:         cache,
	}, nil
}

// LoadReverseGeocoder reads a generated file, JSON when the name ends in
// .json and TSV otherwise.
func LoadReverseGeocoder(ctx context.Context, cfg *config.Config, path string, collector *metrics.Collector) (*ReverseGeocoder, error) {
	var records []domain.Record
	collect := func(rec domain.Record) error {
		records = append(records, rec)
		return nil
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := readJSONFile(path, collect); err != nil {
			return nil, err
		}
	} else {
		parser := pipeline.NewRecordParser(cfg, collector)
		if _, err := parser.ProcessFile(ctx, path, collect); err != nil {
			return nil, fmt.Errorf("failed to read records: %w", err)
		}
	}

	slog.Info("Loaded cities for reverse geocoding", "count", len(records))
	return NewReverseGeocoder(records, cfg.MaxDistanceKm, cfg.QueryCacheSize)
}

// Len returns the number of indexed cities.
func (g *ReverseGeocoder) Len() int {
	return len(g.points)
}

// Nearest returns the closest city and its distance in kilometers. Equal
// distances resolve to the city that came first in the input.
func (g *ReverseGeocoder) Nearest(lat, lon float64) (domain.Record, float64, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Record{}, 0, fmt.Errorf("%w: %v, %v", ErrInvalidCoordinates, lat, lon)
	}

	key := coordKey{lat: lat, lon: lon}
	res, ok := g.cache.Get(key)
	if !ok {
		res = g.search(s2.LatLngFromDegrees(lat, lon))
		g.cache.Add(key, res)
	}

	if res.index < 0 {
		return domain.Record{}, 0, ErrNoCityNearby
	}
	return g.records[res.index], res.distance, nil
}

func (g *ReverseGeocoder) search(query s2.LatLng) nearestResult {
	best := nearestResult{index: -1, distance: math.Inf(1)}

	region := s2.CapFromCenterAngle(s2.PointFromLatLng(query), s1.Angle(g.maxDistanceKm/earthRadiusKm))
	for _, cell := range g.coverer.Covering(region) {
		lo, hi := cell.RangeMin(), cell.RangeMax()
		start := sort.Search(len(g.points), func(i int) bool { return g.points[i].cell >= lo })

		for i := start; i < len(g.points) && g.points[i].cell <= hi; i++ {
			p := g.points[i]
			dist := query.Distance(p.ll).Radians() * earthRadiusKm
			if dist > g.maxDistanceKm {
				continue
			}
			if dist < best.distance || (dist == best.distance && p.index < best.index) {
				best = nearestResult{index: p.index, distance: dist}
			}
		}
	}
	return best
}

func recordLatLng(rec *domain.Record) (s2.LatLng, bool) {
	lat, err := strconv.ParseFloat(rec.Location.Latitude, 64)
	if err != nil {
		return s2.LatLng{}, false
	}
	lon, err := strconv.ParseFloat(rec.Location.Longitude, 64)
	if err != nil {
		return s2.LatLng{}, false
	}
	ll := s2.LatLngFromDegrees(lat, lon)
	return ll, ll.IsValid()
}

func readJSONFile(path string, fn func(domain.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if err := exporters.ReadJSONRecords(f, fn); err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return nil
}
