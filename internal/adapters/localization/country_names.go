// Package localization loads per-language country name tables.
package localization

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
)

// CountryNames is a lazily filled cache of {language}.json tables mapping
// ISO 3166-1 alpha-2 codes to country names. A language is loaded at most
// once; a table that is missing or unreadable is remembered as empty.
// CountryNames is safe for concurrent use.
type CountryNames struct {
	fsys   fs.FS
	logger *slog.Logger

	mu     sync.Mutex
	tables map[string]*countryTable
}

type countryTable struct {
	once  sync.Once
	names map[string]string
}

// NewCountryNames returns a cache reading tables from fsys, usually
// os.DirFS of the localized-countries directory.
func NewCountryNames(fsys fs.FS) *CountryNames {
	return &CountryNames{
		fsys:   fsys,
		logger: slog.Default(),
		tables: make(map[string]*countryTable),
	}
}

// Lookup returns the name of countryCode in language.
func (c *CountryNames) Lookup(language, countryCode string) (string, bool) {
	name, ok := c.table(language)[countryCode]
	return name, ok
}

// Loaded returns the number of languages attempted so far.
func (c *CountryNames) Loaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tables)
}

func (c *CountryNames) table(language string) map[string]string {
	c.mu.Lock()
	t, ok := c.tables[language]
	if !ok {
		t = &countryTable{}
		c.tables[language] = t
	}
	c.mu.Unlock()

	t.once.Do(func() {
		t.names = c.load(language)
	})
	return t.names
}

func (c *CountryNames) load(language string) map[string]string {
	file := language + ".json"

	data, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("No country names for language", "language", language)
		} else {
			c.logger.Warn("Failed to read country names", "file", file, "error", err)
		}
		return map[string]string{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("Country names table is not a JSON object", "file", file, "error", err)
		return map[string]string{}
	}

	names := make(map[string]string, len(raw))
	for code, value := range raw {
		if len(code) != 2 {
			c.logger.Debug("Skipping country key", "file", file, "key", code)
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			c.logger.Debug("Skipping unreadable country name", "file", file, "key", code, "error", err)
			continue
		}
		name, ok := decoded.(string)
		if !ok {
			c.logger.Debug("Skipping non-string country name", "file", file, "key", code)
			continue
		}
		names[code] = name
	}

	c.logger.Debug("Loaded country names", "language", language, "countries", len(names))
	return names
}
