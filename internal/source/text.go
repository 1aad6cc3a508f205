package source

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var (
	// GNews обрезает content и дописывает в конец "... [1234 chars]"
	truncatedMarker = regexp.MustCompile(`\s*\[\+?\d+ chars\]\s*$`)
	// Библиотека readability оставляет много пустых строк, схлопываем их
	redundantNewLines = regexp.MustCompile(`\n{3,}`)
)

// PlainText превращает html (если это html) в текст и чистит служебные хвосты
func PlainText(s string) string {
	s = truncatedMarker.ReplaceAllString(strings.TrimSpace(s), "")
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := readability.FromReader(strings.NewReader(s), nil)
	if err == nil && strings.TrimSpace(doc.TextContent) != "" {
		return strings.TrimSpace(redundantNewLines.ReplaceAllString(doc.TextContent, "\n"))
	}

	// readability не справилась с фрагментом
	return fragmentText(s)
}

// Текст html фрагмента одной строкой
func fragmentText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
