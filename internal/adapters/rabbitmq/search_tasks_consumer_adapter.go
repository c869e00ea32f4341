package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/contracts"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"
	usecases_port "bayut-parser-service/internal/core/port/usecases"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_common"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SearchTasksConsumerAdapter слушает очередь задач поиска и запускает RunSearch
type SearchTasksConsumerAdapter struct {
	consumer    *rabbitmq_consumer.Consumer
	runSearchUC usecases_port.RunSearchPort
	logger      port.LoggerPort
	taskTimeout time.Duration
}

func NewSearchTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	runSearchUC usecases_port.RunSearchPort,
	taskTimeout time.Duration,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*SearchTasksConsumerAdapter, error) {
	adapter := &SearchTasksConsumerAdapter{
		runSearchUC: runSearchUC,
		logger:      logger,
		taskTimeout: taskTimeout,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for search tasks: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// messageHandler возвращает nil для сообщений, которые бессмысленно повторять
func (a *SearchTasksConsumerAdapter) messageHandler(d amqp.Delivery) error {
	headerTraceID, _ := d.Headers[constants.HeaderTraceID].(string)
	traceID := contextkeys.TraceIDOrNew(headerTraceID)

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	ctx := context.Background()
	if a.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.taskTimeout)
		defer cancel()
	}
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	msgLogger.Info("Received new search task", nil)

	if err := contracts.ValidateEvent(contracts.SearchTaskEvent, contracts.Version1, d.Body); err != nil {
		msgLogger.Error("Search task does not match contract, dropping", err, nil)
		return nil
	}

	var taskDTO SearchTaskDTO
	if err := json.Unmarshal(d.Body, &taskDTO); err != nil {
		msgLogger.Error("Error unmarshalling search task, dropping", err, nil)
		return nil
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": taskDTO.TaskID.String()})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)

	filters, err := taskDTO.ToFilters()
	if err != nil {
		taskLogger.Error("Invalid search filters, dropping", err, nil)
		return nil
	}

	result, err := a.runSearchUC.Execute(ctx, filters, taskDTO.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilters) {
			taskLogger.Error("Search rejected filters, dropping", err, nil)
			return nil
		}
		taskLogger.Error("Search failed, message will be retried", err, nil)
		return err
	}

	taskLogger.Info("Search task processed", port.Fields{
		"search_id": result.ID.String(),
		"listings":  len(result.Listings),
		"aborted":   result.Report.Aborted,
	})
	return nil
}

// Start реализует EventListenerPort
func (a *SearchTasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *SearchTasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}
