package bayutfetcher

import (
	"context"
	"fmt"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// FetchPage выдерживает случайную паузу и загружает страницу целиком
func (a *BayutFetcherAdapter) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{"component": "BayutFetcherAdapter(FetchPage)"})

	if err := a.sleep(ctx, a.delay()); err != nil {
		return nil, err
	}

	// "одноразовый" клон со своими обработчиками
	collector := a.collector.Clone()
	collector.Context = ctx
	extensions.RandomUserAgent(collector)
	extensions.Referer(collector)

	var body []byte
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		fetchLogger.Debug("Making request", port.Fields{"url": r.URL.String()})
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Failed to fetch page", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		responseErr = fmt.Errorf("%w: request to %s failed with status %d: %v", domain.ErrFetch, r.Request.URL, r.StatusCode, err)
	})

	visitErr := collector.Visit(pageURL)
	collector.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if responseErr != nil {
		return nil, responseErr
	}
	if visitErr != nil {
		fetchLogger.Error("Failed to initiate visit", visitErr, port.Fields{"url": pageURL})
		return nil, fmt.Errorf("%w: failed to visit %s: %v", domain.ErrFetch, pageURL, visitErr)
	}

	fetchLogger.Debug("Page fetched", port.Fields{"url": pageURL, "bytes": len(body)})
	return body, nil
}
