package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lowerCaser = cases.Lower(language.Und)

// Preprocess нормализует текст описания: NFKC, нижний регистр, границы
// предложений превращаются в '\n', прочая пунктуация - в пробел.
// Повторный вызов результат не меняет.
func Preprocess(text string) string {
	normalized := norm.NFKC.String(lowerCaser.String(norm.NFKC.String(text)))

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		switch {
		case isSentenceBreak(r):
			b.WriteByte('\n')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	lines := strings.Split(b.String(), "\n")
	sentences := lines[:0]
	for _, line := range lines {
		if words := strings.Fields(line); len(words) > 0 {
			sentences = append(sentences, strings.Join(words, " "))
		}
	}
	return strings.Join(sentences, "\n")
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ';', '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}
