package contextkeys

import (
	"context"

	"github.com/google/uuid"
)

// длиннее в логи не пускаем
const maxTraceIDLen = 128

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// ContextWithTraceID помещает trace_id в контекст
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext возвращает пустую строку, если trace_id не задан
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// TraceIDOrNew принимает trace_id из заголовка запроса или сообщения.
// Пустой, слишком длинный или содержащий управляющие символы заменяется новым UUID.
func TraceIDOrNew(candidate string) string {
	if candidate == "" || len(candidate) > maxTraceIDLen {
		return uuid.New().String()
	}
	for i := 0; i < len(candidate); i++ {
		if c := candidate[i]; c < 0x21 || c > 0x7e {
			return uuid.New().String()
		}
	}
	return candidate
}
