package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

// RSS клиент, альтернатива GNews для источников без API
type RSSSource struct {
	// URL откуда мы забираем ленту
	URL        string
	SourceName string
	Max        int
}

// Имя источника попадает в автора статьи. Если не задано, берем хост ленты
func NewRSSSource(feedURL, name string, max int) RSSSource {
	if max <= 0 || max > MaxBatch {
		max = MaxBatch
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultRSSName(feedURL)
	}

	return RSSSource{URL: feedURL, SourceName: name, Max: max}
}

func defaultRSSName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return "RSS"
	}

	return strings.TrimPrefix(u.Hostname(), "www.")
}

func (s RSSSource) Name() string {
	return s.SourceName
}

// Fetch забирает ленту и мапит ее элементы в кандидатов
func (s RSSSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: rss %s: %v", model.ErrSourceUnavailable, s.URL, err)
	}

	items := feed.Items
	if len(items) > s.Max {
		items = items[:s.Max]
	}

	return lo.Map(items, func(item *rss.Item, _ int) model.Candidate {
		return model.Candidate{
			Title:       strings.TrimSpace(item.Title),
			Description: PlainText(item.Summary),
			Content:     PlainText(item.Content),
			ImageURL:    imageOf(item),
			URL:         item.Link,
			SourceName:  s.SourceName,
			PublishedAt: item.Date.UTC(),
		}
	}), nil
}

// Загружаем ленту. rss.Fetch не умеет в контекст, поэтому ждем его в отдельной горутине
func (s RSSSource) loadFeed(ctx context.Context, feedURL string) (*rss.Feed, error) {
	// Буферизованные каналы, чтобы горутина не повисла, если мы уже ушли по контексту
	var (
		feedCh = make(chan *rss.Feed, 1)
		errCh  = make(chan error, 1)
	)

	go func() {
		feed, err := rss.Fetch(feedURL)
		if err != nil {
			errCh <- err
			return
		}

		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}

// Картинку берем из первого enclosure с image/* типом
func imageOf(item *rss.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}

	return ""
}
