package classifier

import (
	"strings"
	"unicode"

	"github.com/tomakado/containers/set"
)

// Категория-заглушка, если классификатор не смог выбрать однозначно
const Uncategorized = "uncategorized"

// Категории в порядке таксономии. Порядок влияет только на обход, не на результат
var Taxonomy = []string{
	"business",
	"politics",
	"sports",
	"entertainment",
	"health",
	"technology",
}

// Слова и фразы, по которым категория набирает очки
var triggers = map[string][]string{
	"business": {
		"business", "market", "markets", "economy", "economic", "stock", "stocks",
		"shares", "sensex", "nifty", "investor", "investors", "investment", "bank",
		"banking", "rbi", "inflation", "gdp", "company", "companies", "revenue",
		"profit", "trade", "rupee", "ipo", "stock market", "interest rate",
	},
	"politics": {
		"election", "elections", "politics", "political", "government", "minister",
		"parliament", "congress", "bjp", "vote", "votes", "voting", "poll", "polls",
		"party", "opposition", "cabinet", "president", "mla", "prime minister",
		"chief minister", "lok sabha", "rajya sabha",
	},
	"sports": {
		"cricket", "football", "hockey", "tennis", "match", "tournament", "player",
		"players", "wicket", "ipl", "bcci", "olympics", "goal", "coach", "league",
		"champion", "championship", "medal", "world cup", "test match",
	},
	"entertainment": {
		"film", "films", "movie", "movies", "bollywood", "actor", "actress", "music",
		"song", "album", "celebrity", "netflix", "director", "trailer", "concert",
		"award", "awards", "box office",
	},
	"health": {
		"health", "hospital", "doctor", "doctors", "disease", "covid", "vaccine",
		"virus", "patients", "medical", "medicine", "cancer", "outbreak",
		"healthcare", "dengue", "public health",
	},
	"technology": {
		"technology", "tech", "ai", "software", "smartphone", "app", "internet",
		"cyber", "google", "apple", "iphone", "isro", "satellite", "robot",
		"digital", "chip", "semiconductor", "artificial intelligence",
	},
}

type category struct {
	slug    string
	// Проверка вхождения одиночного слова
	hasWord func(string) bool
	phrases [][]string
}

var categories = compile()

func compile() []category {
	out := make([]category, 0, len(Taxonomy))

	for _, slug := range Taxonomy {
		var (
			words   []string
			phrases [][]string
		)

		for _, term := range triggers[slug] {
			parts := tokenize(term)
			switch len(parts) {
			case 0:
				continue
			case 1:
				words = append(words, parts[0])
			default:
				phrases = append(phrases, parts)
			}
		}

		wordSet := set.New(words...)
		out = append(out, category{
			slug:    slug,
			hasWord: func(w string) bool { return wordSet.Contains(w) },
			phrases: phrases,
		})
	}

	return out
}

// Scores считает очки каждой категории: одно вхождение триггера целым словом (или фразой) = 1 очко
func Scores(title, body string) map[string]int {
	tokens := tokenize(title + " " + body)
	scores := make(map[string]int, len(categories))

	for _, c := range categories {
		score := 0
		for i, token := range tokens {
			if c.hasWord(token) {
				score++
			}
			for _, phrase := range c.phrases {
				if hasPhraseAt(tokens, i, phrase) {
					score++
				}
			}
		}
		scores[c.slug] = score
	}

	return scores
}

// Classify выбирает категорию со строго максимальным счетом. При ничьей (в том числе все нули) Uncategorized
func Classify(title, body string) string {
	scores := Scores(title, body)

	var (
		best    = Uncategorized
		bestVal = 0
		tie     = false
	)

	for _, slug := range Taxonomy {
		switch s := scores[slug]; {
		case s > bestVal:
			best, bestVal, tie = slug, s, false
		case s == bestVal && s > 0:
			tie = true
		}
	}

	if bestVal == 0 || tie {
		return Uncategorized
	}

	return best
}

func hasPhraseAt(tokens []string, i int, phrase []string) bool {
	if i+len(phrase) > len(tokens) {
		return false
	}

	for j, word := range phrase {
		if tokens[i+j] != word {
			return false
		}
	}

	return true
}

// Разбиваем текст на слова в нижнем регистре. Разделитель - все, что не буква и не цифра
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
