package port

import (
	"context"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListingsPublisherPort отправляет найденные объявления дальше по конвейеру
type ListingsPublisherPort interface {
	PublishListings(ctx context.Context, result *domain.SearchResult, taskID uuid.UUID) error
}
