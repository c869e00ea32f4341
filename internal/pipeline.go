package internal

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	"bayut-parser-service/internal/adapters/bayutfetcher"
	"bayut-parser-service/internal/adapters/bayutmarkup"
	"bayut-parser-service/internal/adapters/pageschema"
	"bayut-parser-service/internal/configs"
	"bayut-parser-service/internal/core/classifier"
	"bayut-parser-service/internal/core/usecase"
)

// Pipeline - собранный конвейер поиска без входящих и исходящих адаптеров
type Pipeline struct {
	Classifier *classifier.Classifier
	Search     *usecase.SearchListingsUseCase
}

// NewPipeline собирает загрузчик, разметку, классификатор и use case поиска.
// Используется и сервисом, и CLI.
func NewPipeline(cfg configs.BayutConfig) (*Pipeline, error) {
	schema, err := pageschema.Load(cfg.PageSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load page schema: %w", err)
	}

	fetcher, err := bayutfetcher.NewBayutFetcherAdapter(bayutfetcher.Config{
		BaseURL:  cfg.BaseURL,
		MinDelay: cfg.FetchMinDelay,
		MaxDelay: cfg.FetchMaxDelay,
		Timeout:  cfg.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bayut fetcher: %w", err)
	}

	markup, err := bayutmarkup.NewMarkupAdapter(schema, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize markup adapter: %w", err)
	}

	textClassifier := classifier.New(classifier.WithFuzzyThreshold(cfg.FuzzyThreshold))

	parseUC := usecase.NewParseListingUseCase(markup, fetcher, textClassifier)
	searchUC := usecase.NewSearchListingsUseCase(fetcher, markup, parseUC, usecase.SearchConfig{
		BaseURL:           cfg.BaseURL,
		ChainedQuery:      cfg.ChainedQuery,
		DetailConcurrency: cfg.DetailConcurrency,
	})

	return &Pipeline{Classifier: textClassifier, Search: searchUC}, nil
}

// ParseLogLevel переводит строку из конфигурации в уровень slog
func ParseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
