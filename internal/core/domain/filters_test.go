package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantEmirate string
		wantArea    string
		wantErr     bool
	}{
		{name: "two words each", input: "Abu Dhabi, Khalifa City", wantEmirate: "abu-dhabi", wantArea: "khalifa-city"},
		{name: "extra whitespace", input: "  Dubai ,   Dubai   Marina ", wantEmirate: "dubai", wantArea: "dubai-marina"},
		{name: "single word", input: "dubai,jvc", wantEmirate: "dubai", wantArea: "jvc"},
		{name: "no comma", input: "Dubai Marina", wantErr: true},
		{name: "three parts", input: "Dubai, Marina, Tower", wantErr: true},
		{name: "empty area", input: "Dubai, ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emirate, area, err := ParseLocation(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFilters)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmirate, emirate)
			assert.Equal(t, tt.wantArea, area)
		})
	}
}

func validFilters() SearchFilters {
	return SearchFilters{
		Emirate:   "dubai",
		Area:      "dubai-marina",
		MinPrice:  0,
		MaxPrice:  100000,
		Bedrooms:  "2",
		Bathrooms: 2,
		MaxPages:  3,
	}
}

func TestSearchFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *SearchFilters)
		wantErr bool
	}{
		{name: "valid", mutate: func(f *SearchFilters) {}},
		{name: "seven plus bedrooms", mutate: func(f *SearchFilters) { f.Bedrooms = "7+" }},
		{name: "min equals max", mutate: func(f *SearchFilters) { f.MinPrice = 100000 }},
		{name: "zero max price", mutate: func(f *SearchFilters) { f.MaxPrice = 0 }, wantErr: true},
		{name: "negative min price", mutate: func(f *SearchFilters) { f.MinPrice = -1 }, wantErr: true},
		{name: "min above max", mutate: func(f *SearchFilters) { f.MinPrice = 100001 }, wantErr: true},
		{name: "bad bedrooms token", mutate: func(f *SearchFilters) { f.Bedrooms = "two" }, wantErr: true},
		{name: "empty bedrooms", mutate: func(f *SearchFilters) { f.Bedrooms = "" }, wantErr: true},
		{name: "zero baths", mutate: func(f *SearchFilters) { f.Bathrooms = 0 }, wantErr: true},
		{name: "zero pages", mutate: func(f *SearchFilters) { f.MaxPages = 0 }, wantErr: true},
		{name: "empty area", mutate: func(f *SearchFilters) { f.Area = "" }, wantErr: true},
		{name: "slash in area", mutate: func(f *SearchFilters) { f.Area = "a/b" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFilters()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilters)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSearchFilters(t *testing.T) {
	f, err := NewSearchFilters("Dubai, Dubai Marina", 1000, 90000, " 3 ", 2, true, 2)
	require.NoError(t, err)
	assert.Equal(t, "dubai", f.Emirate)
	assert.Equal(t, "dubai-marina", f.Area)
	assert.Equal(t, "3", f.Bedrooms)
	assert.True(t, f.RequireUtilitiesIncluded)
	assert.NoError(t, f.Validate())

	_, err = NewSearchFilters("Dubai", 0, 1, "1", 1, false, 1)
	assert.ErrorIs(t, err, ErrInvalidFilters)
}
