package rabbitmq_consumer

import amqp "github.com/rabbitmq/amqp091-go"

type deliveryOutcome int

const (
	outcomeAck deliveryOutcome = iota
	outcomeDrop
	outcomeRetry
	outcomeDeadLetter
)

// decideOutcome выбирает судьбу сообщения по результату обработчика
func decideOutcome(handlerErr error, retryEnabled bool, deathCount int64, maxRetries int) deliveryOutcome {
	switch {
	case handlerErr == nil:
		return outcomeAck
	case !retryEnabled:
		return outcomeDrop
	case deathCount < int64(maxRetries):
		return outcomeRetry
	default:
		return outcomeDeadLetter
	}
}

// deathCount - сколько раз сообщение было отклонено из очереди queueName
func deathCount(d amqp.Delivery, queueName string) int64 {
	if d.Headers == nil {
		return 0
	}
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}
