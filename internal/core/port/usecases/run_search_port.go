package usecases_port

import (
	"context"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

type RunSearchPort interface {
	Execute(ctx context.Context, filters domain.SearchFilters, taskID uuid.UUID) (*domain.SearchResult, error)
}

type GetSearchPort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error)
}
