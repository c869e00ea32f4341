package main

import (
	"bytes"
	"io"
	"testing"

	"bayut-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-location", "Dubai, Dubai Marina",
		"-max-price", "90000",
		"-rooms", "2",
		"-baths", "2",
		"-bills",
		"-pages", "3",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, domain.SearchFilters{
		Emirate:                  "dubai",
		Area:                     "dubai-marina",
		MaxPrice:                 90000,
		Bedrooms:                 "2",
		Bathrooms:                2,
		RequireUtilitiesIncluded: true,
		MaxPages:                 3,
	}, opts.filters)
	assert.True(t, opts.pretty)
}

func TestParseFlagsRejectsInvalidInput(t *testing.T) {
	cases := map[string][]string{
		"bad location":   {"-location", "Dubai", "-max-price", "1", "-rooms", "1"},
		"no max price":   {"-location", "Dubai, Marina", "-rooms", "1"},
		"too many pages": {"-location", "Dubai, Marina", "-max-price", "1", "-rooms", "1", "-pages", "51"},
		"unknown flag":   {"-nope"},
	}
	for name, args := range cases {
		_, err := parseFlags(args, io.Discard)
		assert.Error(t, err, name)
	}

	_, err := parseFlags([]string{"-location", "Dubai, Marina", "-max-price", "1", "-rooms", "two"}, io.Discard)
	assert.ErrorIs(t, err, domain.ErrInvalidFilters)
}

func TestWriteResult(t *testing.T) {
	var compact bytes.Buffer
	require.NoError(t, writeResult(&compact, map[string]int{"a": 1}, false))
	assert.Equal(t, "{\"a\":1}\n", compact.String())

	var pretty bytes.Buffer
	require.NoError(t, writeResult(&pretty, map[string]int{"a": 1}, true))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", pretty.String())
}
