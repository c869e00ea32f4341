package port

import "context"

// EventListenerPort - входящий адаптер очереди задач
type EventListenerPort interface {
	// Start блокируется до отмены ctx или фатальной ошибки
	Start(ctx context.Context) error

	// Close дожидается обработки текущих сообщений
	Close() error
}
