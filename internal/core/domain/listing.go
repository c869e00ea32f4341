package domain

// ListingFragment - разметка одной карточки объявления со страницы выдачи
type ListingFragment struct {
	Index int // позиция карточки на странице
	HTML  string
}

// ListingRecord - разобранное объявление
type ListingRecord struct {
	URL       string // абсолютная ссылка на объявление
	Title     string
	ImageURL  string
	Location  string
	PriceText string // цена как на сайте, например "85,000"
	Price     int

	UtilitiesIncluded bool
	UtilitiesMatch    MatchStrategy // какая стратегия классификатора сработала
}

// PageCursor - текущая позиция пагинации в рамках одного поиска
type PageCursor struct {
	URL  string
	Page int // начиная с 1
}

// MatchStrategy - стратегия классификатора описаний
type MatchStrategy string

const (
	StrategyNone     MatchStrategy = "none"
	StrategyDirect   MatchStrategy = "direct"
	StrategyFuzzy    MatchStrategy = "fuzzy"
	StrategySemantic MatchStrategy = "semantic"
)

// ClassificationResult - итог классификации текста описания
type ClassificationResult struct {
	Matched  bool
	Strategy MatchStrategy
	Score    int    // лучшая нечеткая оценка 0..100, если нечеткий слой отработал
	Phrase   string // фраза словаря или пара терминов, давшая совпадение
}
