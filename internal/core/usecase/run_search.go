package usecase

import (
	"context"
	"fmt"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"
	usecases_port "bayut-parser-service/internal/core/port/usecases"

	"github.com/google/uuid"
)

// RunSearchUseCase выполняет поиск и раздает результат: в историю, в очередь, в отчет по задаче.
// Любой из выходных портов может быть nil, тогда соответствующий шаг пропускается.
type RunSearchUseCase struct {
	searchUC  usecases_port.SearchListingsPort
	history   port.SearchHistoryPort
	publisher port.ListingsPublisherPort
	reporter  port.TaskReporterPort
}

func NewRunSearchUseCase(
	searchUC usecases_port.SearchListingsPort,
	history port.SearchHistoryPort,
	publisher port.ListingsPublisherPort,
	reporter port.TaskReporterPort,
) *RunSearchUseCase {
	return &RunSearchUseCase{
		searchUC:  searchUC,
		history:   history,
		publisher: publisher,
		reporter:  reporter,
	}
}

// Execute запускает поиск. taskID равен uuid.Nil для запросов не из очереди.
func (uc *RunSearchUseCase) Execute(ctx context.Context, filters domain.SearchFilters, taskID uuid.UUID) (*domain.SearchResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RunSearch",
	})
	if taskID != uuid.Nil {
		ucLogger = ucLogger.WithFields(port.Fields{"task_id": taskID.String()})
	}
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	result, err := uc.searchUC.Execute(ctx, filters)
	if err != nil {
		ucLogger.Error("Search failed", err, nil)
		return nil, fmt.Errorf("use case: search failed: %w", err)
	}

	resultLogger := ucLogger.WithFields(port.Fields{"search_id": result.ID.String()})

	if uc.history != nil {
		if err := uc.history.Save(ctx, result); err != nil {
			resultLogger.Error("Failed to save search run to history", err, nil)
		} else {
			resultLogger.Debug("Search run saved to history", nil)
		}
	}

	if uc.publisher != nil && len(result.Listings) > 0 {
		if err := uc.publisher.PublishListings(ctx, result, taskID); err != nil {
			resultLogger.Error("Failed to publish found listings", err, nil)
		}
	}

	if uc.reporter != nil && taskID != uuid.Nil {
		if err := uc.reporter.ReportResults(ctx, taskID, result); err != nil {
			resultLogger.Error("Failed to report task results", err, nil)
		}
	}

	return result, nil
}

// GetSearchUseCase достает сохраненный прогон из истории
type GetSearchUseCase struct {
	history port.SearchHistoryPort
}

func NewGetSearchUseCase(history port.SearchHistoryPort) *GetSearchUseCase {
	return &GetSearchUseCase{history: history}
}

func (uc *GetSearchUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error) {
	if uc.history == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	return uc.history.FindByID(ctx, id)
}
