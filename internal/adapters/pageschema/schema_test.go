package pageschema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	schema, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 1, schema.Version)
	assert.Equal(t, "bayut", schema.Site)
	assert.Equal(t, "https://www.bayut.com", schema.BaseURL)
	assert.Equal(t, "article.a37d52f0, li.a37d52f0", schema.Listing.Fragment)
	assert.Equal(t, "div._2923a568 span.dc381b54", schema.Listing.Price)
	assert.Equal(t, "span._3547dac9", schema.Detail.Description)
}

func TestParseAppliesDefaults(t *testing.T) {
	schema, err := Parse([]byte(`
version: 1
site: test
listing:
  fragment: div.card
  link: a.main
  price: span.price
detail:
  description: div.desc
`))
	require.NoError(t, err)
	assert.Equal(t, "href", schema.Listing.LinkAttr)
	assert.Equal(t, "title", schema.Listing.TitleAttr)
	assert.Equal(t, "src", schema.Listing.ImageAttr)
	assert.Empty(t, schema.BaseURL)
}

func TestParseRejectsInvalidSchemas(t *testing.T) {
	cases := map[string]string{
		"missing price":   "version: 1\nsite: s\nlisting:\n  fragment: a\n  link: a\ndetail:\n  description: d\n",
		"unknown version": "version: 2\nsite: s\nlisting:\n  fragment: a\n  link: a\n  price: p\ndetail:\n  description: d\n",
		"unknown field":   "version: 1\nsite: s\nlisting:\n  fragment: a\n  link: a\n  price: p\n  prise: p\ndetail:\n  description: d\n",
		"not yaml":        "version: [",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	schema, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bayut", schema.Site)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nsite: local\nlisting:\n  fragment: li\n  link: a\n  price: b\ndetail:\n  description: p\n"), 0o644))
	schema, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", schema.Site)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
