package views

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/news-portal/internal/events"
	"github.com/kovalyov-valentin/news-portal/internal/metrics"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type ViewStorage interface {
	// Атомарный инкремент на стороне базы, возвращает новое значение
	IncrementViews(ctx context.Context, slug string) (int64, error)
}

// Счетчик просмотров статей
type Counter struct {
	storage   ViewStorage
	publisher events.Publisher
	timeout   time.Duration

	wg sync.WaitGroup
}

func New(storage ViewStorage, publisher events.Publisher, timeout time.Duration) *Counter {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Counter{
		storage:   storage,
		publisher: publisher,
		timeout:   timeout,
	}
}

// Increment увеличивает счетчик на единицу одним запросом к базе.
// Для неизвестного slug возвращает model.ErrNotFound
func (c *Counter) Increment(ctx context.Context, slug string) (int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, fmt.Errorf("empty slug: %w", model.ErrInvalidInput)
	}

	views, err := c.storage.IncrementViews(ctx, slug)
	if err != nil {
		status := "failed"
		if errors.Is(err, model.ErrNotFound) {
			status = "not_found"
		}
		metrics.ViewIncrements.WithLabelValues(status).Inc()
		return 0, err
	}

	metrics.ViewIncrements.WithLabelValues("ok").Inc()

	if err := c.publisher.Publish(events.Viewed(slug, views)); err != nil {
		log.Printf("[ERROR] failed to publish viewed event for %s: %v", slug, err)
	}

	return views, nil
}

// Record засчитывает просмотр в фоне, не задерживая чтение статьи.
// Ошибки только логируются
func (c *Counter) Record(slug string) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		// Контекст запроса к этому моменту уже может быть отменен, поэтому свой
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if _, err := c.Increment(ctx, slug); err != nil {
			log.Printf("[ERROR] failed to record view for %s: %v", slug, err)
		}
	}()
}

// Wait дожидается всех фоновых инкрементов. Нужен при остановке сервиса
func (c *Counter) Wait() {
	c.wg.Wait()
}
