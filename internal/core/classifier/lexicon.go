package classifier

// DefaultFuzzyThreshold - минимальная нечеткая оценка (0..100) для совпадения
const DefaultFuzzyThreshold = 80

// DefaultLexicon - фразы, которые однозначно говорят о включенных коммунальных платежах
var DefaultLexicon = []string{
	"bills included",
	"all bills included",
	"bills are included",
	"bills covered",
	"utilities included",
	"utilities are included",
	"utilities covered",
	"including utilities",
	"free utilities",
	"water and electricity included",
	"water and electricity are included",
	"water and electricity are free",
	"electricity and water included",
	"water electricity included",
	"including water electricity",
	"including water and electricity",
	"free water and electricity",
	"electricity and maintenance are included",
	"dewa included",
	"free dewa",
}

var utilityTerms = map[string]struct{}{
	"water":       {},
	"electricity": {},
	"utilities":   {},
	"bills":       {},
}

var inclusionTerms = map[string]struct{}{
	"free":      {},
	"included":  {},
	"including": {},
	"covered":   {},
}
