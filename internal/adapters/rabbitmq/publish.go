package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/contextkeys"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - часть rabbitmq_producer.Publisher, нужная адаптерам
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// publishJSON сериализует payload и публикует его с trace id и заголовками события
func publishJSON(ctx context.Context, producer messagePublisher, routingKey string, payload interface{}, eventType, eventVersion string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{},
	}
	if eventType != "" {
		msg.Headers[constants.HeaderEventType] = eventType
		msg.Headers[constants.HeaderEventVersion] = eventVersion
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return producer.Publish(publishCtx, routingKey, msg)
}
