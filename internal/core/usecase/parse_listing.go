package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"
)

// ParseListingUseCase разбирает карточку объявления и классифицирует его описание
type ParseListingUseCase struct {
	markup     port.ListingMarkupPort
	fetcher    port.PageFetcherPort
	classifier port.TextClassifierPort
}

// NewParseListingUseCase создает новый экземпляр ParseListingUseCase
func NewParseListingUseCase(markup port.ListingMarkupPort, fetcher port.PageFetcherPort, classifier port.TextClassifierPort) *ParseListingUseCase {
	return &ParseListingUseCase{
		markup:     markup,
		fetcher:    fetcher,
		classifier: classifier,
	}
}

// Parse извлекает поля карточки. Отсутствие ссылки или цены - ошибка разбора.
func (uc *ParseListingUseCase) Parse(ctx context.Context, fragment domain.ListingFragment) (*domain.ListingRecord, error) {
	record, err := uc.markup.ParseFragment(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment %d: %v", domain.ErrParseFailure, fragment.Index, err)
	}
	if record == nil || record.URL == "" {
		return nil, fmt.Errorf("%w: fragment %d: primary link not found", domain.ErrParseFailure, fragment.Index)
	}
	if strings.TrimSpace(record.PriceText) == "" {
		return nil, fmt.Errorf("%w: fragment %d: price not found", domain.ErrParseFailure, fragment.Index)
	}

	price, err := ParsePrice(record.PriceText)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment %d: %v", domain.ErrParseFailure, fragment.Index, err)
	}
	record.Price = price
	record.UtilitiesMatch = domain.StrategyNone

	return record, nil
}

// ClassifyUtilities загружает страницу объявления и классифицирует описание.
// Ошибка загрузки не фатальна: запись остается с UtilitiesIncluded=false.
func (uc *ParseListingUseCase) ClassifyUtilities(ctx context.Context, record *domain.ListingRecord) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ParseListing",
		"listing_url": record.URL,
	})

	record.UtilitiesIncluded = false
	record.UtilitiesMatch = domain.StrategyNone

	page, err := uc.fetcher.FetchPage(ctx, record.URL)
	if err != nil {
		logger.Warn("Failed to fetch listing details, utilities are treated as not included", port.Fields{"error": err.Error()})
		return fmt.Errorf("%w: listing details %s: %v", domain.ErrFetch, record.URL, err)
	}

	description, err := uc.markup.ExtractDescription(page)
	if err != nil || strings.TrimSpace(description) == "" {
		logger.Debug("Listing has no description", nil)
		return nil
	}

	result := uc.classifier.Classify(description)
	record.UtilitiesIncluded = result.Matched
	record.UtilitiesMatch = result.Strategy

	logger.Debug("Listing description classified", port.Fields{
		"matched":  result.Matched,
		"strategy": string(result.Strategy),
		"score":    result.Score,
	})
	return nil
}

// Execute - полный разбор карточки вместе с загрузкой страницы объявления
func (uc *ParseListingUseCase) Execute(ctx context.Context, fragment domain.ListingFragment) (*domain.ListingRecord, error) {
	record, err := uc.Parse(ctx, fragment)
	if err != nil {
		return nil, err
	}
	_ = uc.ClassifyUtilities(ctx, record)
	return record, nil
}

// ParsePrice превращает "85,000" в 85000
func ParsePrice(text string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	price, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("price %q is not an integer: %w", text, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("price %q is negative", text)
	}
	return price, nil
}
