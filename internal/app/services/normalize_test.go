package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/terratensor/geolocale/internal/core/domain"
)

func TestNormalizeDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"München", "Munchen"},
		{"São Paulo", "Sao Paulo"},
		{"Île-de-France", "Ile-de-France"},
		{"Los Angeles", "Los Angeles"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeDiacritics(tt.input); got != tt.expected {
				t.Errorf("normalizeDiacritics(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeNames(t *testing.T) {
	got := normalizeNames(domain.LocalizedNames{CityName: "Zürich", Admin1Name: "Zürich", CountryName: "Schweiz"})
	assert.Equal(t, domain.LocalizedNames{CityName: "Zurich", Admin1Name: "Zurich", CountryName: "Schweiz"}, got)
}
