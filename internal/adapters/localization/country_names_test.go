package localization

import (
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFS records how often each file is opened. It only exposes Open so
// fs.ReadFile cannot bypass the counter.
type countingFS struct {
	files fstest.MapFS
	mu    sync.Mutex
	opens map[string]int
}

func (f *countingFS) Open(name string) (fs.File, error) {
	f.mu.Lock()
	f.opens[name]++
	f.mu.Unlock()
	return f.files.Open(name)
}

func TestCountryNamesLookup(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"US": "United States", "FR": "France"}`)},
		"fr.json": {Data: []byte(`{"US": "États-Unis", "USA": "bad key", "DE": 42, "IT": null, "ES": {"name": "Espagne"}, "FR": "France"}`)},
		"de.json": {Data: []byte(`{"US": `)},
		"ru.json": {Data: []byte(`["US", "США"]`)},
	}
	names := NewCountryNames(fsys)

	tests := []struct {
		name     string
		language string
		country  string
		want     string
		found    bool
	}{
		{"english", "en", "US", "United States", true},
		{"french", "fr", "US", "États-Unis", true},
		{"bad key skipped", "fr", "USA", "", false},
		{"non-string value skipped", "fr", "DE", "", false},
		{"null value skipped", "fr", "IT", "", false},
		{"object value skipped", "fr", "ES", "", false},
		{"other keys survive", "fr", "FR", "France", true},
		{"parse failure", "de", "US", "", false},
		{"array top level", "ru", "US", "", false},
		{"missing file", "es", "US", "", false},
		{"missing key", "en", "ZZ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := names.Lookup(tt.language, tt.country)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 5, names.Loaded())
}

func TestCountryNamesLoadsOnce(t *testing.T) {
	fsys := &countingFS{
		files: fstest.MapFS{
			"en.json": {Data: []byte(`{"US": "United States"}`)},
		},
		opens: make(map[string]int),
	}
	names := NewCountryNames(fsys)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, ok := names.Lookup("en", "US")
			assert.True(t, ok)
			assert.Equal(t, "United States", name)
			_, ok = names.Lookup("xx", "US")
			assert.False(t, ok)
		}()
	}
	wg.Wait()

	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	require.Equal(t, 1, fsys.opens["en.json"])
	// missing files are not retried either
	require.Equal(t, 1, fsys.opens["xx.json"])
}
