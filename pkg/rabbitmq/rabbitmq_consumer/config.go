package rabbitmq_consumer

import (
	"fmt"

	"bayut-parser-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig - настройки очереди, привязки и ретраев
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь. Пустое имя при DeclareQueue - имя сгенерирует сервер.
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Обменник для привязки. Пустое имя - привязка не выполняется.
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table
	RoutingKeyForBind      string
	BindingArgs            amqp.Table

	// QoS, значения <= 0 - без ограничений
	PrefetchCount int
	PrefetchSize  int
	QosGlobal     bool

	ConsumerTag       string
	ExclusiveConsumer bool
	// MaxConcurrentHandlers ограничивает число одновременно обрабатываемых сообщений
	MaxConcurrentHandlers int64

	// Ретраи через очередь ожидания с TTL
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // миллисекунды
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

// Validate проверяет согласованность настроек
func (c ConsumerConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && c.ExchangeNameForBind != "" && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required to declare exchange '%s'", c.ExchangeNameForBind)
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry exchange, retry queue, final DLX and final DLQ are required for retries")
		}
		if c.RetryTTL <= 0 || c.MaxRetries < 0 {
			return fmt.Errorf("consumer: retry TTL must be positive and max retries non-negative")
		}
	}
	return nil
}
