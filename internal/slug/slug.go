package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

// Максимальная длина slug в байтах
const MaxLen = 96

// Буквы, которые не раскладываются через NFD, переводим в ASCII руками
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"Æ", "AE",
	"œ", "oe",
	"Œ", "OE",
	"ø", "o",
	"Ø", "O",
	"ł", "l",
	"Ł", "L",
	"đ", "d",
	"Đ", "D",
)

// Make строит slug из заголовка: только a-z, 0-9 и одиночные дефисы между ними.
// Функция детерминированная, уникальность slug не гарантирует.
func Make(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: empty title", model.ErrInvalidInput)
	}

	var (
		b       strings.Builder
		pending bool
	)

	for _, r := range strings.ToLower(fold(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			// Дефис пишем только между словами, поэтому в начале и в конце его не будет
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case isSeparator(r):
			pending = true
		}
		// Остальная пунктуация и не-ASCII символы просто выкидываются
	}

	s := truncate(b.String())
	if s == "" {
		return "", fmt.Errorf("%w: title %q has no slug-able characters", model.ErrInvalidInput, title)
	}

	return s, nil
}

// Снимаем диакритику: é -> e, ü -> u
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, ligatures.Replace(s))
	if err != nil {
		return s
	}

	return folded
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}

	switch r {
	case '-', '_', '/', '\\', '|', '+', '&', '–', '—', '·':
		return true
	}

	return false
}

// Режем по границе слова, чтобы не оставлять обрубок в конце
func truncate(s string) string {
	if len(s) <= MaxLen {
		return s
	}

	cut := s[:MaxLen]
	if idx := strings.LastIndexByte(cut, '-'); idx > 0 {
		cut = cut[:idx]
	}

	return strings.Trim(cut, "-")
}
