package rabbitmq

import (
	"context"
	"fmt"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/contracts"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"

	"github.com/google/uuid"
)

// ListingsPublisherAdapter публикует найденные объявления одним событием на поиск
type ListingsPublisherAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewListingsPublisherAdapter(producer messagePublisher, routingKey string) (*ListingsPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ListingsPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *ListingsPublisherAdapter) PublishListings(ctx context.Context, result *domain.SearchResult, taskID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ListingsPublisherAdapter",
		"routing_key": a.routingKey,
		"search_id":   result.ID.String(),
	})

	err := publishJSON(ctx, a.producer, a.routingKey, newListingsFoundDTO(result, taskID), contracts.ListingsFoundEvent, contracts.Version1)
	if err != nil {
		logger.Error("Failed to publish listings", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish listings of search %s: %w", result.ID, err)
	}

	logger.Info("Listings published", port.Fields{"count": len(result.Listings)})
	return nil
}
