package constants

// Обменник, общий для парсеров системы
const (
	ParserExchange     = "parser_exchange"
	ParserExchangeType = "direct"
)

// Имена очередей
const (
	QueueSearchTasks = "search_tasks_bayut"
)

// Ключи маршрутизации
const (
	RoutingKeySearchTasks   = "bayut.search.tasks"
	RoutingKeyListingsFound = "bayut.listings.found"
	RoutingKeyTaskResults   = "notify.task.result"
)

const (
	FinalDLXExchangeForSearchTasks   = "search_tasks_bayut_final_dlx"
	FinalDLQForSearchTasks           = "search_tasks_bayut_final_dlq"
	FinalDLQRoutingKeyForSearchTasks = "search_tasks_bayut.dlq.key"
)

// Параметры ретраев задач поиска
const (
	SearchTasksRetryTTL   = 10000 // мс
	SearchTasksMaxRetries = 3
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
