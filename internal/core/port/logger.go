package port

// Fields - структурированные поля записи лога
type Fields map[string]interface{}

// LoggerPort - логгер, которым пользуются ядро и адаптеры.
// Логгер передается через context (см. contextkeys), компоненты добавляют свои поля через WithFields.
type LoggerPort interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)

	WithFields(fields Fields) LoggerPort
}
