package domain

import "errors"

// Ошибки, которые возвращаются из use case'ов и адаптеров.
var (
	ErrInvalidFilters = errors.New("invalid search filters")
	ErrFetch          = errors.New("page fetch failed")
	ErrParseFailure   = errors.New("listing fragment parse failure")
	ErrSearchNotFound = errors.New("search run not found")

	// ErrHistoryUnavailable - хранилище истории поисков не настроено
	ErrHistoryUnavailable = errors.New("search history storage is not configured")
)
