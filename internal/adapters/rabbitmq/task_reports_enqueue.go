package rabbitmq

import (
	"context"
	"fmt"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"

	"github.com/google/uuid"
)

type TaskReporterAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewTaskReporterAdapter(producer messagePublisher, routingKey string) (*TaskReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &TaskReporterAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *TaskReporterAdapter) ReportResults(ctx context.Context, taskID uuid.UUID, result *domain.SearchResult) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "TaskReporterAdapter",
		"routing_key": a.routingKey,
	})

	if err := publishJSON(ctx, a.producer, a.routingKey, newTaskResultDTO(taskID, result), "", ""); err != nil {
		logger.Error("Failed to publish report for task", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish report for task %s: %w", taskID, err)
	}

	logger.Info("Report for task published", nil)
	return nil
}
