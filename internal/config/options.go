package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

var (
	ErrInvalidLanguage = errors.New("language is not an ISO 639-1 code")
	ErrInvalidCountry  = errors.New("country is not an ISO 3166-1 alpha-2 code")
)

// RunOptions are the per-invocation settings supplied on the command line.
type RunOptions struct {
	OutputPath string
	CitiesPath string
	InputDir   string
	Format     string
	Languages  []string
	Countries  []string
}

// Validate checks the paths and fills defaults from cfg.
func (o *RunOptions) Validate(cfg *Config) error {
	if o.OutputPath == "" {
		return errors.New("--output is required")
	}
	if o.CitiesPath == "" {
		return errors.New("--cities is required")
	}
	info, err := os.Stat(o.CitiesPath)
	if err != nil {
		return fmt.Errorf("--cities was not an existing file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("--cities was a directory: %s", o.CitiesPath)
	}

	if o.InputDir == "" {
		o.InputDir = cfg.DataDir
	}
	info, err = os.Stat(o.InputDir)
	if err != nil {
		return fmt.Errorf("--input could not be found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--input was not a folder: %s", o.InputDir)
	}

	switch o.Format {
	case "":
		o.Format = "tsv"
	case "tsv", "json":
	default:
		return fmt.Errorf("--format must be tsv or json, got %q", o.Format)
	}
	return nil
}

// AlternateNamesPath returns the alternate-names file inside the input dir.
func (o *RunOptions) AlternateNamesPath(cfg *Config) string {
	return filepath.Join(o.InputDir, cfg.AlternateNamesFile)
}

// Admin1CodesPath returns the admin1 codes file inside the input dir.
func (o *RunOptions) Admin1CodesPath(cfg *Config) string {
	return filepath.Join(o.InputDir, cfg.Admin1CodesFile)
}

// LocalizedCountriesPath returns the directory holding {language}.json tables.
func (o *RunOptions) LocalizedCountriesPath(cfg *Config) string {
	return filepath.Join(o.InputDir, cfg.LocalizedCountriesDir)
}

// ParseLanguages parses a comma-separated list of ISO 639-1 codes.
// Every entry must be two lowercase ASCII letters.
func ParseLanguages(list string) ([]string, error) {
	codes, err := parseCodeList(list, 'a', 'z', ErrInvalidLanguage)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		if _, err := language.ParseBase(code); err != nil {
			slog.Warn("Unknown ISO 639-1 language, keeping it anyway", "language", code)
		}
	}
	return codes, nil
}

// ParseCountries parses a comma-separated list of ISO 3166-1 alpha-2 codes.
// Every entry must be two uppercase ASCII letters.
func ParseCountries(list string) ([]string, error) {
	codes, err := parseCodeList(list, 'A', 'Z', ErrInvalidCountry)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		if region, err := language.ParseRegion(code); err != nil || !region.IsCountry() {
			slog.Warn("Unknown ISO 3166-1 country, keeping it anyway", "country", code)
		}
	}
	return codes, nil
}

func parseCodeList(list string, lo, hi byte, errInvalid error) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	codes := make([]string, 0, 4)
	for _, part := range strings.Split(list, ",") {
		code := strings.TrimSpace(part)
		if len(code) != 2 {
			return nil, fmt.Errorf("%w: %q must have 2 characters", errInvalid, code)
		}
		for i := 0; i < len(code); i++ {
			if code[i] < lo || code[i] > hi {
				return nil, fmt.Errorf("%w: %q must be in %c-%c", errInvalid, code, lo, hi)
			}
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}
