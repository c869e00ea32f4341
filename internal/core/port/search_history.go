package port

import (
	"context"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// SearchHistoryPort хранит результаты выполненных поисков
type SearchHistoryPort interface {
	Save(ctx context.Context, result *domain.SearchResult) error

	// FindByID возвращает domain.ErrSearchNotFound, если прогона нет
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error)
}
