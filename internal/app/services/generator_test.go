package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terratensor/geolocale/internal/adapters/exporters"
	"github.com/terratensor/geolocale/internal/app/pipeline"
	"github.com/terratensor/geolocale/internal/config"
	"github.com/terratensor/geolocale/internal/metrics"
)

// writeInput lays out an input directory with the given cities rows.
func writeInput(t *testing.T, cities []string) (*config.Config, *config.RunOptions) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		AlternateNamesFile:    "alternateNames.txt",
		Admin1CodesFile:       "admin1CodesASCII.txt",
		LocalizedCountriesDir: "localized-countries",
		BatchSize:             3,
		WorkersCount:          1,
		CountryFilterMode:     config.FilterInclude,
		DefaultLanguage:       "en",
		MaxDistanceKm:         100,
		QueryCacheSize:        16,
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.AlternateNamesFile), []byte(alternateNamesTxt), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.Admin1CodesFile), []byte(admin1CodesTxt), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, cfg.LocalizedCountriesDir), 0o755))
	for name, file := range countryTables() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.LocalizedCountriesDir, name), file.Data, 0o644))
	}

	citiesPath := filepath.Join(dir, "cities.txt")
	require.NoError(t, os.WriteFile(citiesPath, []byte(strings.Join(cities, "\n")+"\n"), 0o644))

	opts := &config.RunOptions{
		OutputPath: filepath.Join(dir, "out.tsv"),
		CitiesPath: citiesPath,
		InputDir:   dir,
		Languages:  []string{"de", "fr"},
	}
	require.NoError(t, opts.Validate(cfg))
	return cfg, opts
}

// cityRows returns n copies of the Los Angeles row with ids 1..n and
// alternating countries.
func cityRows(n int) []string {
	rows := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		row := strings.Replace(cityLine, "100\t", fmt.Sprintf("%d\t", i), 1)
		if i%2 == 0 {
			row = strings.Replace(row, "\tUS\t", "\tFR\t", 1)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestGeneratorRun(t *testing.T) {
	cfg, opts := writeInput(t, []string{cityLine, "broken"})
	collector := metrics.NewCollector()

	err := NewGenerator(cfg, opts, exporters.NewWriterFactory(), collector).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"US\tAmerica/Los_Angeles\t34.05223\t-118.24368\tLos Angeles\tCalifornia\tUnited States\t1\tfr\tLos Angeles\tCalifornie\tÉtats-Unis\n",
		string(data))

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.RecordsWritten)
	assert.Equal(t, int64(2), snap.Sources[pipeline.SourceCities].Read)
	assert.Equal(t, int64(1), snap.Sources[pipeline.SourceCities].Skipped)
	assert.Equal(t, int64(1), snap.Sources[pipeline.SourceAdmin1Codes].Skipped)
}

func TestGeneratorParallelKeepsOrder(t *testing.T) {
	rows := cityRows(25)

	cfg, opts := writeInput(t, rows)
	require.NoError(t, NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background()))
	sequential, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	cfg, opts = writeInput(t, rows)
	cfg.WorkersCount = 4
	require.NoError(t, NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background()))
	parallel, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, string(sequential), string(parallel))
	assert.Equal(t, 25, strings.Count(string(parallel), "\n"))
}

func TestGeneratorCountryFilter(t *testing.T) {
	cfg, opts := writeInput(t, cityRows(4))
	opts.Countries = []string{"FR"}

	require.NoError(t, NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background()))
	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "FR\t"), line)
	}
}

func TestGeneratorJSONOutput(t *testing.T) {
	cfg, opts := writeInput(t, []string{cityLine})
	opts.Format = "json"
	opts.OutputPath = strings.TrimSuffix(opts.OutputPath, ".tsv") + ".json"

	require.NoError(t, NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background()))
	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[\n[\"US\",\"America/Los_Angeles\",[\"Los Angeles\",\"California\",\"United States\"],[[\"fr\",\"Los Angeles\",\"Californie\",\"États-Unis\"]],34.05223,-118.24368]\n]\n",
		string(data))
}

func TestGeneratorMissingAlternateNames(t *testing.T) {
	cfg, opts := writeInput(t, []string{cityLine})
	require.NoError(t, os.Remove(opts.AlternateNamesPath(cfg)))

	err := NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background())
	assert.Error(t, err)
}

func TestGeneratorCancelled(t *testing.T) {
	cfg, opts := writeInput(t, cityRows(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratorFailureKeepsPreviousOutput(t *testing.T) {
	cfg, opts := writeInput(t, []string{cityLine})
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("previous run\n"), 0o644))

	// reading a directory fails after the output has been opened
	opts.CitiesPath = t.TempDir()

	err := NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background())
	require.Error(t, err)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(data))
	assert.NoFileExists(t, opts.OutputPath+".part")
}

func TestGeneratorLeavesNoPartialFile(t *testing.T) {
	cfg, opts := writeInput(t, []string{cityLine})

	require.NoError(t, NewGenerator(cfg, opts, exporters.NewWriterFactory(), nil).Run(context.Background()))
	assert.FileExists(t, opts.OutputPath)
	assert.NoFileExists(t, opts.OutputPath+".part")
}
