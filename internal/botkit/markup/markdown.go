package markup

import (
	"fmt"
	"strings"
)

// Все символы, которые MarkdownV2 требует экранировать вне разметки
var replacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// Внутри (...) у ссылки экранируются только ) и \
var linkReplacer = strings.NewReplacer(
	"\\", "\\\\",
	")", "\\)",
)

func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

func Bold(src string) string {
	return "*" + EscapeForMarkdown(src) + "*"
}

func Link(text, url string) string {
	return fmt.Sprintf("[%s](%s)", EscapeForMarkdown(text), linkReplacer.Replace(url))
}

// Хештег из slug категории: дефисы телеграм в тегах не понимает
func Hashtag(slug string) string {
	return EscapeForMarkdown("#" + strings.ReplaceAll(slug, "-", "_"))
}
