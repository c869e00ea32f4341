package port

import (
	"context"

	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

type TaskReporterPort interface {
	ReportResults(ctx context.Context, taskID uuid.UUID, result *domain.SearchResult) error
}
