package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopReason объясняет, почему поиск перестал листать страницы
type StopReason string

const (
	StopMaxPages        StopReason = "max_pages"
	StopNoFragments     StopReason = "no_fragments"
	StopPageFetchFailed StopReason = "page_fetch_failed"
)

// SearchReport - диагностика одного прогона
type SearchReport struct {
	PagesFetched        int
	FragmentsSeen       int
	ParseFailures       int
	RejectedByPrice     int
	RejectedByUtilities int
	DetailFetchFailures int
	Aborted             bool
	AbortReason         string
	StopReason          StopReason
}

// SearchResult - результат одного поиска
type SearchResult struct {
	ID         uuid.UUID
	Filters    SearchFilters
	Listings   []ListingRecord
	Report     SearchReport
	StartedAt  time.Time
	FinishedAt time.Time
}
