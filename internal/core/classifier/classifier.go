package classifier

import (
	"strings"

	"bayut-parser-service/internal/core/domain"

	"github.com/agnivade/levenshtein"
)

// Match - результат одной стратегии
type Match struct {
	OK     bool
	Score  int
	Phrase string
}

// Strategy - один слой классификатора. Слои проверяются по порядку,
// первый сработавший определяет результат.
type Strategy struct {
	Name  domain.MatchStrategy
	Match func(text string) Match
}

// Classifier определяет, говорит ли описание о включенных коммунальных платежах
type Classifier struct {
	lexicon    []string
	threshold  int
	strategies []Strategy
}

// Option настраивает Classifier
type Option func(*Classifier)

// WithLexicon заменяет словарь фраз для прямого и нечеткого поиска
func WithLexicon(phrases []string) Option {
	return func(c *Classifier) {
		c.lexicon = phrases
	}
}

// WithFuzzyThreshold задает порог нечеткого совпадения (0..100)
func WithFuzzyThreshold(threshold int) Option {
	return func(c *Classifier) {
		if threshold > 0 && threshold <= 100 {
			c.threshold = threshold
		}
	}
}

// New создает классификатор со стратегиями direct -> fuzzy -> semantic
func New(opts ...Option) *Classifier {
	c := &Classifier{
		lexicon:   DefaultLexicon,
		threshold: DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}

	// фразы словаря проходят ту же нормализацию, что и текст
	prepared := make([]string, 0, len(c.lexicon))
	for _, phrase := range c.lexicon {
		if p := Preprocess(phrase); p != "" {
			prepared = append(prepared, p)
		}
	}
	c.lexicon = prepared

	c.strategies = []Strategy{
		{Name: domain.StrategyDirect, Match: c.matchDirect},
		{Name: domain.StrategyFuzzy, Match: c.matchFuzzy},
		{Name: domain.StrategySemantic, Match: matchSemantic},
	}
	return c
}

// Strategies возвращает порядок стратегий
func (c *Classifier) Strategies() []domain.MatchStrategy {
	names := make([]domain.MatchStrategy, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Threshold возвращает порог нечеткого совпадения
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Classify прогоняет текст через стратегии до первого совпадения
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	prepared := Preprocess(text)
	result := domain.ClassificationResult{Strategy: domain.StrategyNone}
	if prepared == "" {
		return result
	}

	for _, strategy := range c.strategies {
		m := strategy.Match(prepared)
		if m.Score > result.Score {
			result.Score = m.Score
		}
		if m.OK {
			result.Matched = true
			result.Strategy = strategy.Name
			result.Phrase = m.Phrase
			return result
		}
	}
	return result
}

func (c *Classifier) matchDirect(text string) Match {
	for _, phrase := range c.lexicon {
		if strings.Contains(text, phrase) {
			return Match{OK: true, Score: 100, Phrase: phrase}
		}
	}
	return Match{}
}

func (c *Classifier) matchFuzzy(text string) Match {
	best := Match{}
	for _, phrase := range c.lexicon {
		score := PartialRatio(phrase, text)
		if score > best.Score {
			best = Match{Score: score, Phrase: phrase}
		}
	}
	best.OK = best.Score >= c.threshold
	if !best.OK {
		best.Phrase = ""
	}
	return best
}

func matchSemantic(text string) Match {
	for _, sentence := range strings.Split(text, "\n") {
		var utility, inclusion string
		for _, token := range strings.Fields(sentence) {
			if _, ok := utilityTerms[token]; ok && utility == "" {
				utility = token
			}
			if _, ok := inclusionTerms[token]; ok && inclusion == "" {
				inclusion = token
			}
		}
		if utility != "" && inclusion != "" {
			return Match{OK: true, Phrase: utility + "+" + inclusion}
		}
	}
	return Match{}
}

// PartialRatio - лучшая похожесть phrase на любое окно text той же длины
// в процентах, через расстояние Левенштейна.
func PartialRatio(phrase, text string) int {
	p := []rune(phrase)
	t := []rune(text)
	if len(p) == 0 || len(t) == 0 {
		return 0
	}

	if len(t) <= len(p) {
		return similarity(levenshtein.ComputeDistance(phrase, text), len(p))
	}

	best := 0
	for i := 0; i+len(p) <= len(t); i++ {
		score := similarity(levenshtein.ComputeDistance(phrase, string(t[i:i+len(p)])), len(p))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func similarity(distance, length int) int {
	if distance >= length {
		return 0
	}
	return (length - distance) * 100 / length
}
