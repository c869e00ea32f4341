package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// fakeFetcher отдает страницы из памяти и запоминает запрошенные URL
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	delays map[string]time.Duration
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  map[string]string{},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	delay := f.delays[pageURL]
	err, hasErr := f.errs[pageURL]
	page, hasPage := f.pages[pageURL]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if hasErr {
		return nil, err
	}
	if !hasPage {
		return nil, fmt.Errorf("unexpected url %s", pageURL)
	}
	return []byte(page), nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeMarkup: страница выдачи - строки вида "url|price|title", страница объявления - текст описания
type fakeMarkup struct{}

func (fakeMarkup) SplitFragments(page []byte) ([]domain.ListingFragment, error) {
	var fragments []domain.ListingFragment
	for _, line := range strings.Split(string(page), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fragments = append(fragments, domain.ListingFragment{Index: len(fragments), HTML: line})
	}
	return fragments, nil
}

func (fakeMarkup) ParseFragment(fragment domain.ListingFragment) (*domain.ListingRecord, error) {
	parts := strings.Split(fragment.HTML, "|")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed fragment")
	}
	record := &domain.ListingRecord{URL: parts[0], PriceText: parts[1]}
	if len(parts) > 2 {
		record.Title = parts[2]
	}
	return record, nil
}

func (fakeMarkup) ExtractDescription(page []byte) (string, error) {
	return string(page), nil
}

type fakeHistory struct {
	saved   []*domain.SearchResult
	saveErr error
}

func (h *fakeHistory) Save(ctx context.Context, result *domain.SearchResult) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saved = append(h.saved, result)
	return nil
}

func (h *fakeHistory) FindByID(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error) {
	for _, r := range h.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrSearchNotFound
}

type fakePublisher struct {
	published []*domain.SearchResult
	taskIDs   []uuid.UUID
	err       error
}

func (p *fakePublisher) PublishListings(ctx context.Context, result *domain.SearchResult, taskID uuid.UUID) error {
	p.published = append(p.published, result)
	p.taskIDs = append(p.taskIDs, taskID)
	return p.err
}

type fakeReporter struct {
	reported []uuid.UUID
}

func (r *fakeReporter) ReportResults(ctx context.Context, taskID uuid.UUID, result *domain.SearchResult) error {
	r.reported = append(r.reported, taskID)
	return nil
}

type fakeSearch struct {
	result *domain.SearchResult
	err    error
}

func (s *fakeSearch) Execute(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResult, error) {
	return s.result, s.err
}
