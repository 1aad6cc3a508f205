package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kovalyov-valentin/news-portal/internal/events"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type memViews struct {
	mu    sync.Mutex
	views map[string]int64
}

func (m *memViews) IncrementViews(ctx context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.views[slug]
	if !ok {
		return 0, model.ErrNotFound
	}
	v++
	m.views[slug] = v
	return v, nil
}

type countingPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *countingPublisher) Publish(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.Type == events.ArticleViewed {
		p.count++
	}
	return nil
}

func TestIncrement(t *testing.T) {
	t.Parallel()

	store := &memViews{views: map[string]int64{"x": 0}}
	counter := New(store, nil, 0)

	views, err := counter.Increment(context.Background(), "x")
	if err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if views != 1 {
		t.Errorf("expected views 1, got %d", views)
	}
}

func TestIncrementUnknownSlug(t *testing.T) {
	t.Parallel()

	store := &memViews{views: map[string]int64{}}
	counter := New(store, nil, 0)

	if _, err := counter.Increment(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := counter.Increment(context.Background(), "  "); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	t.Parallel()

	const n = 200

	var (
		store   = &memViews{views: map[string]int64{"x": 5}}
		pub     = &countingPublisher{}
		counter = New(store, pub, 0)
		wg      sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := counter.Increment(context.Background(), "x"); err != nil {
				t.Errorf("Increment returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.views["x"]; got != 5+n {
		t.Errorf("expected %d views, got %d", 5+n, got)
	}
	if pub.count != n {
		t.Errorf("expected %d viewed events, got %d", n, pub.count)
	}
}

func TestRecordInBackground(t *testing.T) {
	t.Parallel()

	store := &memViews{views: map[string]int64{"x": 0}}
	counter := New(store, nil, 0)

	for i := 0; i < 10; i++ {
		counter.Record("x")
	}
	// Неизвестный slug не должен ронять остальных
	counter.Record("missing")
	counter.Wait()

	if got := store.views["x"]; got != 10 {
		t.Errorf("expected 10 views, got %d", got)
	}
}
