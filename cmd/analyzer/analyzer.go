// analyzer прогоняет классификатор по сохраненным описаниям (*.txt) и печатает статистику по стратегиям.
// Нужен для подбора словаря и порога нечеткого совпадения.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"bayut-parser-service/internal/core/classifier"
	"bayut-parser-service/internal/core/domain"
)

// PhraseStat - сколько раз фраза дала совпадение
type PhraseStat struct {
	Phrase string
	Count  int
}

// StrategyStats - статистика одной стратегии
type StrategyStats struct {
	Files        []string
	PhraseCounts map[string]int
}

// Report - итог анализа каталога
type Report struct {
	TotalFiles int
	Failed     int
	ByStrategy map[domain.MatchStrategy]*StrategyStats
}

var strategyOrder = []domain.MatchStrategy{
	domain.StrategyDirect,
	domain.StrategyFuzzy,
	domain.StrategySemantic,
	domain.StrategyNone,
}

func main() {
	dir := flag.String("dir", "./descriptions", "каталог с описаниями *.txt")
	threshold := flag.Int("threshold", classifier.DefaultFuzzyThreshold, "порог нечеткого совпадения 1..100")
	out := flag.String("out", "", "файл отчета, по умолчанию stdout")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*dir, "*.txt"))
	if err != nil {
		log.Fatalf("Failed to find txt files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No txt files found in '%s' directory.", *dir)
	}

	var output io.Writer = os.Stdout
	if *out != "" {
		outputFile, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Не удалось создать файл для отчета: %v", err)
		}
		defer outputFile.Close()
		output = outputFile
	}

	c := classifier.New(classifier.WithFuzzyThreshold(*threshold))
	report := analyze(files, c, os.ReadFile)

	fmt.Fprintf(output, "Найдено %d файлов для анализа (порог %d)...\n", len(files), *threshold)
	printReport(report, output)
}

// analyze классифицирует каждый файл. Нечитаемые файлы считаются в Failed.
func analyze(files []string, c *classifier.Classifier, readFile func(string) ([]byte, error)) *Report {
	report := &Report{ByStrategy: make(map[domain.MatchStrategy]*StrategyStats)}

	for _, file := range files {
		data, err := readFile(file)
		if err != nil {
			log.Printf("Error reading file %s: %v", file, err)
			report.Failed++
			continue
		}
		report.TotalFiles++

		result := c.Classify(string(data))
		stats, exists := report.ByStrategy[result.Strategy]
		if !exists {
			stats = &StrategyStats{PhraseCounts: make(map[string]int)}
			report.ByStrategy[result.Strategy] = stats
		}
		stats.Files = append(stats.Files, filepath.Base(file))
		if result.Phrase != "" {
			stats.PhraseCounts[result.Phrase]++
		}
	}

	return report
}

// sortedPhrases - по убыванию частоты, при равенстве по алфавиту
func sortedPhrases(counts map[string]int) []PhraseStat {
	phrases := make([]PhraseStat, 0, len(counts))
	for phrase, count := range counts {
		phrases = append(phrases, PhraseStat{Phrase: phrase, Count: count})
	}
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Count != phrases[j].Count {
			return phrases[i].Count > phrases[j].Count
		}
		return phrases[i].Phrase < phrases[j].Phrase
	})
	return phrases
}

func printReport(report *Report, w io.Writer) {
	fmt.Fprintf(w, "\n================ ИТОГ ================\n")
	fmt.Fprintf(w, "Обработано файлов: %d, не прочитано: %d\n", report.TotalFiles, report.Failed)

	for _, strategy := range strategyOrder {
		stats, ok := report.ByStrategy[strategy]
		if !ok {
			fmt.Fprintf(w, "\n--- %s: 0 ---\n", strategy)
			continue
		}

		share := 0.0
		if report.TotalFiles > 0 {
			share = float64(len(stats.Files)) / float64(report.TotalFiles) * 100
		}
		fmt.Fprintf(w, "\n--- %s: %d (%.1f%%) ---\n", strategy, len(stats.Files), share)

		for _, p := range sortedPhrases(stats.PhraseCounts) {
			fmt.Fprintf(w, "  %-40s %d\n", p.Phrase, p.Count)
		}
		if strategy != domain.StrategyNone {
			continue
		}
		// файлы без совпадений - кандидаты на пополнение словаря
		sort.Strings(stats.Files)
		for _, f := range stats.Files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
