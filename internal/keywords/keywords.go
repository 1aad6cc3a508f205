package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomakado/containers/set"
)

const (
	// Максимальное количество тегов у статьи
	MaxTags = 10
	// Слова короче не считаются тегами
	MinLen = 4
)

// Стоп-слова английского текста
var stopWords = set.New(
	"the", "over", "about", "after", "again", "against", "also", "among", "and",
	"been", "before", "being", "below", "between", "both", "could", "does",
	"doing", "down", "during", "each", "even", "from", "further", "have",
	"having", "here", "into", "just", "like", "more", "most", "much", "must",
	"only", "other", "ought", "said", "says", "same", "should", "some", "such",
	"than", "that", "their", "theirs", "them", "then", "there", "these", "they",
	"this", "those", "through", "under", "until", "upon", "very", "were",
	"what", "when", "where", "which", "while", "will", "with", "within",
	"without", "would", "year", "years", "your", "yours",
)

// Extract достает из текста теги: слова от MinLen символов, без стоп-слов,
// без повторов, в порядке первого появления, не больше MaxTags штук.
func Extract(title, body string) []string {
	tags := make([]string, 0, MaxTags)
	seen := make(map[string]struct{}, MaxTags)

	for _, token := range tokenize(title + " " + body) {
		if len(tags) == MaxTags {
			break
		}

		if utf8.RuneCountInString(token) < MinLen || stopWords.Contains(token) {
			continue
		}

		if _, ok := seen[token]; ok {
			continue
		}

		seen[token] = struct{}{}
		tags = append(tags, token)
	}

	return tags
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
