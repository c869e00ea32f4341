package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/pagination"
	"bayut-parser-service/internal/core/port"
	usecases_port "bayut-parser-service/internal/core/port/usecases"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SearchConfig - параметры поиска, не зависящие от фильтров
type SearchConfig struct {
	BaseURL string
	// ChainedQuery строит query в виде ?a=1?b=2, как это делает сайт в старых ссылках
	ChainedQuery bool
	// DetailConcurrency - сколько страниц объявлений грузить одновременно, 1 = по очереди
	DetailConcurrency int
}

// SearchListingsUseCase листает выдачу и собирает объявления, прошедшие фильтры
type SearchListingsUseCase struct {
	fetcher port.PageFetcherPort
	markup  port.ListingMarkupPort
	parser  usecases_port.ParseListingPort
	cfg     SearchConfig
	now     func() time.Time
}

// NewSearchListingsUseCase создает новый экземпляр SearchListingsUseCase
func NewSearchListingsUseCase(
	fetcher port.PageFetcherPort,
	markup port.ListingMarkupPort,
	parser usecases_port.ParseListingPort,
	cfg SearchConfig,
) *SearchListingsUseCase {
	if cfg.DetailConcurrency < 1 {
		cfg.DetailConcurrency = 1
	}
	return &SearchListingsUseCase{
		fetcher: fetcher,
		markup:  markup,
		parser:  parser,
		cfg:     cfg,
		now:     time.Now,
	}
}

// BuildSearchURL формирует URL первой страницы выдачи
func BuildSearchURL(baseURL string, filters domain.SearchFilters, chained bool) string {
	separator := "&"
	if chained {
		separator = "?"
	}
	return fmt.Sprintf("%s/to-rent/%s-bedroom-property/%s/%s/?price_min=%d%sprice_max=%d%sbaths_in=%d",
		strings.TrimRight(baseURL, "/"),
		filters.Bedrooms, filters.Emirate, filters.Area,
		filters.MinPrice, separator, filters.MaxPrice, separator, filters.Bathrooms,
	)
}

// Execute выполняет поиск. Ошибка загрузки страницы выдачи прерывает поиск:
// возвращается пустой список и отчет с Aborted=true, ошибка при этом nil.
func (uc *SearchListingsUseCase) Execute(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResult, error) {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "SearchListings",
		"emirate":  filters.Emirate,
		"area":     filters.Area,
	})

	if err := filters.Validate(); err != nil {
		ucLogger.Warn("Invalid search filters", port.Fields{"error": err.Error()})
		return nil, err
	}

	result := &domain.SearchResult{
		ID:        uuid.New(),
		Filters:   filters,
		Listings:  []domain.ListingRecord{},
		StartedAt: uc.now().UTC(),
	}
	report := &result.Report

	cursor := domain.PageCursor{
		URL:  BuildSearchURL(uc.cfg.BaseURL, filters, uc.cfg.ChainedQuery),
		Page: 1,
	}
	ucLogger.Info("Starting search", port.Fields{"search_id": result.ID.String(), "url": cursor.URL, "max_pages": filters.MaxPages})

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pageLogger := ucLogger.WithFields(port.Fields{
			"page": cursor.Page,
			"url":  cursor.URL,
		})
		pageLogger.Debug("Fetching page", nil)

		page, err := uc.fetcher.FetchPage(ctx, cursor.URL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			pageLogger.Error("Failed to fetch search page, aborting search", err, nil)
			result.Listings = []domain.ListingRecord{}
			report.Aborted = true
			report.AbortReason = err.Error()
			report.StopReason = domain.StopPageFetchFailed
			break
		}
		report.PagesFetched++

		fragments, err := uc.markup.SplitFragments(page)
		if err != nil {
			pageLogger.Warn("Failed to split page into listings", port.Fields{"error": err.Error()})
		}
		if len(fragments) == 0 {
			pageLogger.Info("No listings on page, stopping", nil)
			report.StopReason = domain.StopNoFragments
			break
		}
		report.FragmentsSeen += len(fragments)

		accepted, err := uc.processPage(contextkeys.ContextWithLogger(ctx, pageLogger), filters, fragments, report)
		if err != nil {
			return nil, err
		}
		result.Listings = append(result.Listings, accepted...)
		pageLogger.Info("Page processed", port.Fields{"fragments": len(fragments), "accepted": len(accepted)})

		if cursor.Page >= filters.MaxPages {
			report.StopReason = domain.StopMaxPages
			break
		}

		cursor, err = pagination.Advance(cursor)
		if err != nil {
			return nil, fmt.Errorf("use case: failed to derive next page url: %w", err)
		}
	}

	result.FinishedAt = uc.now().UTC()

	ucLogger.Info("Search finished", port.Fields{
		"search_id":      result.ID.String(),
		"listings":       len(result.Listings),
		"pages_fetched":  report.PagesFetched,
		"parse_failures": report.ParseFailures,
		"stop_reason":    string(report.StopReason),
		"aborted":        report.Aborted,
	})
	return result, nil
}

// processPage разбирает карточки одной страницы и применяет фильтры.
// Порядок результата совпадает с порядком карточек на странице.
func (uc *SearchListingsUseCase) processPage(ctx context.Context, filters domain.SearchFilters, fragments []domain.ListingFragment, report *domain.SearchReport) ([]domain.ListingRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx)

	candidates := make([]*domain.ListingRecord, 0, len(fragments))
	for _, fragment := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := uc.parser.Parse(ctx, fragment)
		if err != nil {
			report.ParseFailures++
			logger.Warn("Skipping listing that could not be parsed", port.Fields{"fragment_index": fragment.Index, "error": err.Error()})
			continue
		}

		if record.Price > filters.MaxPrice {
			report.RejectedByPrice++
			continue
		}
		candidates = append(candidates, record)
	}

	detailFailed := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.DetailConcurrency)
	for i, record := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := uc.parser.ClassifyUtilities(gctx, record); err != nil {
				detailFailed[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accepted := make([]domain.ListingRecord, 0, len(candidates))
	for i, record := range candidates {
		if detailFailed[i] {
			report.DetailFetchFailures++
		}
		if filters.RequireUtilitiesIncluded && !record.UtilitiesIncluded {
			report.RejectedByUtilities++
			continue
		}
		accepted = append(accepted, *record)
	}
	return accepted, nil
}
