package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bayut-parser-service/internal/core/classifier"
	"bayut-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBase  = "https://site"
	firstPage = "https://site/to-rent/2-bedroom-property/dubai/marina/?price_min=0&price_max=90000&baths_in=2"
	page2     = "https://site/to-rent/2-bedroom-property/dubai/page-2/marina/?price_min=0&price_max=90000&baths_in=2"
	page3     = "https://site/to-rent/2-bedroom-property/dubai/page-3/marina/?price_min=0&price_max=90000&baths_in=2"
)

func testFilters(maxPages int) domain.SearchFilters {
	return domain.SearchFilters{
		Emirate:   "dubai",
		Area:      "marina",
		MinPrice:  0,
		MaxPrice:  90000,
		Bedrooms:  "2",
		Bathrooms: 2,
		MaxPages:  maxPages,
	}
}

func newTestSearch(fetcher *fakeFetcher, concurrency int) *SearchListingsUseCase {
	parser := NewParseListingUseCase(fakeMarkup{}, fetcher, classifier.New())
	return NewSearchListingsUseCase(fetcher, fakeMarkup{}, parser, SearchConfig{
		BaseURL:           testBase,
		DetailConcurrency: concurrency,
	})
}

// страница из пяти карточек, фильтры по цене проходят три
func seedFirstPage(f *fakeFetcher) {
	f.pages[firstPage] = strings.Join([]string{
		"https://site/l/1|50,000|one",
		"https://site/l/2|95,000|too expensive",
		"|40,000|no link",
		"https://site/l/4|85,000|four",
		"https://site/l/5|90,000|five",
	}, "\n")
	f.pages["https://site/l/1"] = "All bills included."
	f.pages["https://site/l/4"] = "Tenant pays DEWA and chiller."
	f.errs["https://site/l/5"] = errors.New("connection reset")
}

func urls(records []domain.ListingRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.URL)
	}
	return out
}

func TestSearchStopsOnEmptyPage(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)
	fetcher.pages[page2] = ""

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), testFilters(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://site/l/1", "https://site/l/4", "https://site/l/5"}, urls(result.Listings))
	assert.NotContains(t, fetcher.Calls(), page3)
	assert.Equal(t, domain.StopNoFragments, result.Report.StopReason)
	assert.Equal(t, 2, result.Report.PagesFetched)
	assert.Equal(t, 5, result.Report.FragmentsSeen)
	assert.Equal(t, 1, result.Report.ParseFailures)
	assert.Equal(t, 1, result.Report.RejectedByPrice)
	assert.Equal(t, 1, result.Report.DetailFetchFailures)
	assert.False(t, result.Report.Aborted)

	assert.True(t, result.Listings[0].UtilitiesIncluded)
	assert.Equal(t, domain.StrategyDirect, result.Listings[0].UtilitiesMatch)
	assert.False(t, result.Listings[1].UtilitiesIncluded)
	assert.False(t, result.Listings[2].UtilitiesIncluded)
	assert.Equal(t, 50000, result.Listings[0].Price)
}

func TestSearchAbortsOnFirstPageFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errs[firstPage] = errors.New("503 service unavailable")

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), testFilters(3))
	require.NoError(t, err)

	assert.Empty(t, result.Listings)
	assert.True(t, result.Report.Aborted)
	assert.Equal(t, domain.StopPageFetchFailed, result.Report.StopReason)
	assert.Equal(t, []string{firstPage}, fetcher.Calls())
}

func TestSearchAbortDiscardsEarlierPages(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)
	fetcher.errs[page2] = errors.New("timeout")

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), testFilters(3))
	require.NoError(t, err)

	assert.Empty(t, result.Listings)
	assert.True(t, result.Report.Aborted)
	assert.NotContains(t, fetcher.Calls(), page3)
}

func TestSearchRespectsMaxPages(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), testFilters(1))
	require.NoError(t, err)

	assert.Len(t, result.Listings, 3)
	assert.Equal(t, domain.StopMaxPages, result.Report.StopReason)
	assert.NotContains(t, fetcher.Calls(), page2)
}

func TestSearchUtilitiesFilter(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)

	filters := testFilters(1)
	filters.RequireUtilitiesIncluded = true

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://site/l/1"}, urls(result.Listings))
	assert.Equal(t, 2, result.Report.RejectedByUtilities)
	for _, l := range result.Listings {
		assert.True(t, l.UtilitiesIncluded)
	}
}

func TestSearchPriceBound(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), testFilters(1))
	require.NoError(t, err)

	for _, l := range result.Listings {
		assert.LessOrEqual(t, l.Price, 90000)
	}
	// страница дорогого объявления не загружается
	assert.NotContains(t, fetcher.Calls(), "https://site/l/2")
}

func TestSearchKeepsOrderWithConcurrentDetails(t *testing.T) {
	fetcher := newFakeFetcher()
	lines := make([]string, 0, 6)
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		u := "https://site/l/" + id
		lines = append(lines, u+"|1,000|"+id)
		fetcher.pages[u] = "utilities included"
		// первые карточки отвечают дольше последних
		fetcher.delays[u] = time.Duration(6-i) * 5 * time.Millisecond
	}
	fetcher.pages[firstPage] = strings.Join(lines, "\n")

	result, err := newTestSearch(fetcher, 4).Execute(context.Background(), testFilters(1))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://site/l/a", "https://site/l/b", "https://site/l/c",
		"https://site/l/d", "https://site/l/e", "https://site/l/f",
	}, urls(result.Listings))
	for _, l := range result.Listings {
		assert.True(t, l.UtilitiesIncluded)
	}
}

func TestSearchInvalidFiltersMakeNoRequests(t *testing.T) {
	fetcher := newFakeFetcher()
	filters := testFilters(1)
	filters.MaxPrice = 0

	result, err := newTestSearch(fetcher, 1).Execute(context.Background(), filters)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidFilters)
	assert.Empty(t, fetcher.Calls())
}

func TestSearchCancelled(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestSearch(fetcher, 1).Execute(ctx, testFilters(2))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetcher.Calls())
}

func TestSearchCancelledDuringPageFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	seedFirstPage(fetcher)
	fetcher.delays[firstPage] = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := newTestSearch(fetcher, 1).Execute(ctx, testFilters(2))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildSearchURL(t *testing.T) {
	filters := domain.SearchFilters{
		Emirate: "abu-dhabi", Area: "khalifa-city",
		MinPrice: 1000, MaxPrice: 80000, Bedrooms: "7+", Bathrooms: 2, MaxPages: 1,
	}

	assert.Equal(t,
		"https://www.bayut.com/to-rent/7+-bedroom-property/abu-dhabi/khalifa-city/?price_min=1000&price_max=80000&baths_in=2",
		BuildSearchURL("https://www.bayut.com/", filters, false),
	)
	assert.Equal(t,
		"https://www.bayut.com/to-rent/7+-bedroom-property/abu-dhabi/khalifa-city/?price_min=1000?price_max=80000?baths_in=2",
		BuildSearchURL("https://www.bayut.com", filters, true),
	)
}
