package constants

import "time"

// Source - значение поля source в исходящих событиях
const Source = "bayut"

const DefaultBaseURL = "https://www.bayut.com"

// Значения по умолчанию для фильтров без явного значения
const (
	DefaultMaxPages = 1
	MaxPagesLimit   = 50
)

// BedroomOptions - варианты числа спален, которые понимает сайт
var BedroomOptions = []string{"1", "2", "3", "4", "5", "6", "7+"}

// Паузы и таймауты сетевого доступа по умолчанию
const (
	DefaultFetchMinDelay     = 1 * time.Second
	DefaultFetchMaxDelay     = 3 * time.Second
	DefaultFetchTimeout      = 10 * time.Second
	DefaultDetailConcurrency = 1
)
