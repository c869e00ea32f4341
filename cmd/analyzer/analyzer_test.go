package main

import (
	"bytes"
	"errors"
	"testing"

	"bayut-parser-service/internal/core/classifier"
	"bayut-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	texts := map[string]string{
		"dir/a.txt": "Spacious flat, bills included.",
		"dir/b.txt": "All bills included, close to metro.",
		"dir/c.txt": "Utilities to be paid by tenant",
	}
	readFile := func(name string) ([]byte, error) {
		text, ok := texts[name]
		if !ok {
			return nil, errors.New("not found")
		}
		return []byte(text), nil
	}

	report := analyze([]string{"dir/a.txt", "dir/b.txt", "dir/c.txt", "dir/missing.txt"}, classifier.New(), readFile)

	assert.Equal(t, 3, report.TotalFiles)
	assert.Equal(t, 1, report.Failed)

	direct := report.ByStrategy[domain.StrategyDirect]
	require.NotNil(t, direct)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, direct.Files)
	assert.Equal(t, 2, direct.PhraseCounts["bills included"])

	none := report.ByStrategy[domain.StrategyNone]
	require.NotNil(t, none)
	assert.Equal(t, []string{"c.txt"}, none.Files)
	assert.Empty(t, none.PhraseCounts)
}

func TestSortedPhrases(t *testing.T) {
	got := sortedPhrases(map[string]int{"b": 2, "a": 2, "c": 5})
	assert.Equal(t, []PhraseStat{{"c", 5}, {"a", 2}, {"b", 2}}, got)
}

func TestPrintReport(t *testing.T) {
	report := &Report{
		TotalFiles: 2,
		ByStrategy: map[domain.MatchStrategy]*StrategyStats{
			domain.StrategyDirect: {Files: []string{"a.txt"}, PhraseCounts: map[string]int{"dewa included": 1}},
			domain.StrategyNone:   {Files: []string{"z.txt"}, PhraseCounts: map[string]int{}},
		},
	}

	var buf bytes.Buffer
	printReport(report, &buf)
	out := buf.String()

	assert.Contains(t, out, "--- direct: 1 (50.0%) ---")
	assert.Contains(t, out, "dewa included")
	assert.Contains(t, out, "--- fuzzy: 0 ---")
	assert.Contains(t, out, "z.txt")
}
