package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bayut-parser-service/pkg/rabbitmq/rabbitmq_common"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/semaphore"
)

// MessageHandler обрабатывает одно сообщение. nil - ack, ошибка - ретрай
// (или отказ, если ретраи выключены).
type MessageHandler func(delivery amqp.Delivery) error

// Consumer раздает сообщения очереди обработчикам в отдельных горутинах
type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	handler    MessageHandler
	dlx        *rabbitmq_producer.Publisher
	sem        *semaphore.Weighted
	wg         sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewConsumer открывает канал, настраивает топологию и издателя финального DLX
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}
	if cfg.MaxConcurrentHandlers > 0 {
		c.sem = semaphore.NewWeighted(cfg.MaxConcurrentHandlers)
	}

	if err := c.setupTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		dlx, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("consumer: failed to create final DLX publisher: %w", err)
		}
		c.dlx = dlx
	}

	return c, nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.queueName, c.config.ConsumerTag, false, c.config.ExclusiveConsumer, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register on queue '%s': %w", c.config.ConsumerTag, c.queueName, err)
	}

	c.Logger.Info("Waiting for messages", "queue", c.queueName)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumer", "consumer_tag", c.config.ConsumerTag)
			return nil

		case amqpErr := <-notifyClose:
			c.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", c.config.ConsumerTag)
			if amqpErr == nil {
				return fmt.Errorf("consumer: connection closed")
			}
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "consumer_tag", c.config.ConsumerTag)
				return nil
			}
			if c.sem != nil {
				if err := c.sem.Acquire(ctx, 1); err != nil {
					// вернется брокеру при закрытии канала
					return nil
				}
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				if c.sem != nil {
					defer c.sem.Release(1)
				}
				c.process(delivery)
			}(d)
		}
	}
}

func (c *Consumer) process(d amqp.Delivery) {
	tag := d.DeliveryTag
	c.Logger.Debug("Processing message", "delivery_tag", tag)

	handlerErr := c.handler(d)
	count := deathCount(d, c.queueName)

	switch decideOutcome(handlerErr, c.config.EnableRetryMechanism, count, c.config.MaxRetries) {
	case outcomeAck:
		_ = d.Ack(false)
		c.Logger.Debug("Message acked", "delivery_tag", tag)

	case outcomeDrop:
		c.Logger.Error(handlerErr, "Handler failed, retries disabled, dropping message", "delivery_tag", tag)
		_ = d.Nack(false, false)

	case outcomeRetry:
		c.Logger.Warn("Handler failed, scheduling retry", "delivery_tag", tag, "death_count", count, "error", handlerErr.Error())
		_ = d.Nack(false, false)

	case outcomeDeadLetter:
		c.Logger.Error(handlerErr, "Max retries reached, publishing to final DLX", "delivery_tag", tag)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := c.dlx.Publish(ctx, c.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			c.Logger.Error(err, "Failed to publish to final DLX, message goes to retry again", "delivery_tag", tag)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	}
}

// Close дожидается обработчиков и закрывает канал
func (c *Consumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish")
	c.wg.Wait()

	var firstErr error
	if c.dlx != nil {
		if err := c.dlx.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.channel = nil
	}
	c.Logger.Info("Consumer closed", "queue", c.queueName)
	return firstErr
}
