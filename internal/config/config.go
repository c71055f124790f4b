package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FilterMode decides how the selected-country list is applied to cities.
type FilterMode string

const (
	// FilterInclude keeps only cities whose country is selected.
	FilterInclude FilterMode = "include"
	// FilterExclude drops cities whose country is selected.
	FilterExclude FilterMode = "exclude"
)

type Config struct {
	// Input layout
	DataDir               string `env:"DATA_DIR" envDefault:"./input"`
	AlternateNamesFile    string `env:"ALTERNATE_NAMES_FILE" envDefault:"alternateNames.txt"`
	Admin1CodesFile       string `env:"ADMIN1_CODES_FILE" envDefault:"admin1CodesASCII.txt"`
	LocalizedCountriesDir string `env:"LOCALIZED_COUNTRIES_DIR" envDefault:"localized-countries"`

	// Pipeline
	BatchSize    int  `env:"BATCH_SIZE" envDefault:"1000"`
	WorkersCount int  `env:"WORKERS_COUNT" envDefault:"1"`
	ShowProgress bool `env:"SHOW_PROGRESS" envDefault:"true"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Names
	NormalizeNames    bool       `env:"NORMALIZE_NAMES" envDefault:"false"` // strip diacritics from canonical names
	CountryFilterMode FilterMode `env:"COUNTRY_FILTER_MODE" envDefault:"include"`
	DefaultLanguage   string     `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	// Reverse geocoding
	MaxDistanceKm  float64 `env:"MAX_DISTANCE_KM" envDefault:"100"`
	QueryCacheSize int     `env:"QUERY_CACHE_SIZE" envDefault:"1024"`
}

func Load() (*Config, error) {
	// Загружаем .env файл если существует
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CountryFilterMode {
	case FilterInclude, FilterExclude:
	default:
		return fmt.Errorf("COUNTRY_FILTER_MODE must be %q or %q, got %q", FilterInclude, FilterExclude, c.CountryFilterMode)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.WorkersCount <= 0 {
		c.WorkersCount = 1
	}
	if c.QueryCacheSize <= 0 {
		c.QueryCacheSize = 1024
	}
	if c.MaxDistanceKm <= 0 {
		return fmt.Errorf("MAX_DISTANCE_KM must be positive, got %v", c.MaxDistanceKm)
	}
	if len(c.DefaultLanguage) != 2 {
		return fmt.Errorf("DEFAULT_LANGUAGE must be a 2-letter code, got %q", c.DefaultLanguage)
	}
	return nil
}
