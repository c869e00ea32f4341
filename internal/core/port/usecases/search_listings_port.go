package usecases_port

import (
	"context"

	"bayut-parser-service/internal/core/domain"
)

type SearchListingsPort interface {
	Execute(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResult, error)
}
