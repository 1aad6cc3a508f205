package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kovalyov-valentin/news-portal/internal/classifier"
	"github.com/kovalyov-valentin/news-portal/internal/events"
	"github.com/kovalyov-valentin/news-portal/internal/keywords"
	"github.com/kovalyov-valentin/news-portal/internal/metrics"
	"github.com/kovalyov-valentin/news-portal/internal/model"
	"github.com/kovalyov-valentin/news-portal/internal/slug"
)

// Источник кандидатов. Реализован у GNews и RSS
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Candidate, error)
}

type ArticleStorage interface {
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, article model.Article) (model.Article, error)
}

type CategoryProvider interface {
	BySlug(ctx context.Context, slug string) (model.Category, error)
}

type CountryProvider interface {
	ByCode(ctx context.Context, code string) (model.Country, error)
}

// Больше статей за один запуск не обрабатываем, сколько бы ни вернул источник
const MaxBatch = 10

var errMissingFields = errors.New("candidate has no title or description")

type Options struct {
	// Сколько кандидатов максимум берем из одной пачки
	BatchSize int
	// Код страны, которую проставляем всем статьям
	DefaultRegion string
	// Таймаут на поход во внешний источник
	FetchTimeout time.Duration
}

// Пайплайн загрузки статей
type Ingester struct {
	source     Source
	articles   ArticleStorage
	categories CategoryProvider
	countries  CountryProvider
	publisher  events.Publisher

	batchSize     int
	defaultRegion string
	fetchTimeout  time.Duration

	now func() time.Time
}

func New(
	source Source,
	articles ArticleStorage,
	categories CategoryProvider,
	countries CountryProvider,
	publisher events.Publisher,
	opts Options,
) *Ingester {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if opts.BatchSize <= 0 || opts.BatchSize > MaxBatch {
		opts.BatchSize = MaxBatch
	}

	return &Ingester{
		source:        source,
		articles:      articles,
		categories:    categories,
		countries:     countries,
		publisher:     publisher,
		batchSize:     opts.BatchSize,
		defaultRegion: opts.DefaultRegion,
		fetchTimeout:  opts.FetchTimeout,
		now:           time.Now,
	}
}

// Подготовленный кандидат: либо уже есть итоговый исход, либо статья готова к вставке
type prepared struct {
	outcome model.Outcome
	article *model.Article
}

// Run выполняет один запуск: забирает пачку из источника и сохраняет новые статьи.
// Ошибку возвращает только если упал сам источник, остальные проблемы попадают в сводку.
func (i *Ingester) Run(ctx context.Context) (model.IngestionRun, error) {
	started := i.now()
	run := model.IngestionRun{StartedAt: started}

	defer func() {
		metrics.IngestRunDuration.Observe(time.Since(started).Seconds())
	}()

	candidates, err := i.fetch(ctx)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("source_unavailable").Inc()
		run.FinishedAt = i.now()
		return run, err
	}

	if len(candidates) > i.batchSize {
		candidates = candidates[:i.batchSize]
	}
	run.Fetched = len(candidates)

	log.Printf("[INFO] fetched %d candidates from %s", run.Fetched, i.source.Name())

	// Пока одна статья вставляется, следующая уже считает slug, категорию и теги.
	// Канал не буферизованный, поэтому вперед убегаем максимум на одного кандидата
	var (
		queue  = make(chan prepared)
		region = &regionResolver{code: i.defaultRegion, countries: i.countries}
	)

	go func() {
		defer close(queue)

		for _, candidate := range candidates {
			queue <- i.prepare(ctx, candidate, region)
		}
	}()

	for p := range queue {
		outcome := p.outcome
		if p.article != nil {
			outcome = i.insert(ctx, *p.article)
		}

		i.report(outcome)
		run.Add(outcome)
	}

	metrics.IngestRuns.WithLabelValues("ok").Inc()
	run.FinishedAt = i.now()

	log.Printf(
		"[INFO] ingestion finished: fetched=%d accepted=%d duplicate=%d skipped=%d failed=%d",
		run.Fetched, run.Accepted, run.Duplicate, run.Skipped, run.Failed,
	)

	return run, nil
}

func (i *Ingester) fetch(ctx context.Context) ([]model.Candidate, error) {
	if i.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.fetchTimeout)
		defer cancel()
	}

	candidates, err := i.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("fetch from %s: %w", i.source.Name(), err)
	}

	return candidates, nil
}

// Шаги до вставки: валидация, slug, проверка дублей, классификация, теги
func (i *Ingester) prepare(ctx context.Context, c model.Candidate, region *regionResolver) prepared {
	var (
		title       = strings.TrimSpace(c.Title)
		description = strings.TrimSpace(c.Description)
		content     = strings.TrimSpace(c.Content)
	)

	if title == "" || description == "" {
		return prepared{outcome: model.Skipped(title, errMissingFields)}
	}

	articleSlug, err := slug.Make(title)
	if err != nil {
		return prepared{outcome: model.Failed(title, "", err)}
	}

	exists, err := i.articles.ExistsBySlug(ctx, articleSlug)
	if err != nil {
		return prepared{outcome: model.Failed(title, articleSlug, err)}
	}
	if exists {
		return prepared{outcome: model.Duplicate(title, articleSlug)}
	}

	category, err := i.resolveCategory(ctx, classifier.Classify(title, description))
	if err != nil {
		return prepared{outcome: model.Failed(title, articleSlug, err)}
	}

	countryID, err := region.resolve(ctx)
	if err != nil {
		return prepared{outcome: model.Failed(title, articleSlug, err)}
	}

	if content == "" {
		content = description
	}

	author := strings.TrimSpace(c.SourceName)
	if author == "" {
		author = i.source.Name()
	}

	publishedAt := c.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = i.now().UTC()
	}

	article := &model.Article{
		Title:       title,
		Description: description,
		Content:     content,
		ImageURL:    c.ImageURL,
		Link:        c.URL,
		Slug:        articleSlug,
		Author:      author,
		PublishedAt: publishedAt,
		CountryID:   countryID,
		Tags:        keywords.Extract(title, description),
	}

	if category != nil {
		article.CategoryID = &category.ID
		article.CategoryName = category.Name
		article.CategorySlug = category.Slug
	}

	return prepared{article: article}
}

func (i *Ingester) insert(ctx context.Context, article model.Article) model.Outcome {
	created, err := i.articles.Insert(ctx, article)
	switch {
	case errors.Is(err, model.ErrDuplicate):
		// Параллельный запуск успел вставить ту же статью раньше нас
		return model.Duplicate(article.Title, article.Slug)
	case err != nil:
		return model.Failed(article.Title, article.Slug, err)
	}

	if err := i.publisher.Publish(events.Created(created)); err != nil {
		log.Printf("[ERROR] failed to publish created event for %s: %v", created.Slug, err)
	}

	return model.Accepted(created)
}

// Категорию ищем по slug, если ее нет в базе - берем uncategorized, если нет и ее - оставляем пустой
func (i *Ingester) resolveCategory(ctx context.Context, categorySlug string) (*model.Category, error) {
	for _, s := range []string{categorySlug, classifier.Uncategorized} {
		category, err := i.categories.BySlug(ctx, s)
		switch {
		case err == nil:
			return &category, nil
		case errors.Is(err, model.ErrNotFound):
			continue
		default:
			return nil, err
		}
	}

	return nil, nil
}

func (i *Ingester) report(o model.Outcome) {
	metrics.IngestOutcomes.WithLabelValues(o.Kind.String()).Inc()

	switch o.Kind {
	case model.OutcomeAccepted:
		log.Printf("[INFO] created article %s", o.Slug)
	case model.OutcomeDuplicate:
		log.Printf("[INFO] article %s already exists, skipping", o.Slug)
	case model.OutcomeSkipped:
		log.Printf("[INFO] skipping candidate %q: %v", o.Title, o.Reason)
	case model.OutcomeFailed:
		log.Printf("[ERROR] failed to ingest candidate %q: %v", o.Title, o.Reason)
	}
}

// Страна по умолчанию одна на весь запуск, поэтому ищем ее один раз.
// Ошибку базы не кешируем, следующий кандидат попробует еще раз.
// Используется только из горутины подготовки, так что без мьютекса
type regionResolver struct {
	code      string
	countries CountryProvider

	resolved bool
	id       *int64
}

func (r *regionResolver) resolve(ctx context.Context) (*int64, error) {
	if r.code == "" || r.countries == nil || r.resolved {
		return r.id, nil
	}

	country, err := r.countries.ByCode(ctx, r.code)
	switch {
	case errors.Is(err, model.ErrNotFound):
		log.Printf("[WARN] default region %s not found, articles will have no country", r.code)
	case err != nil:
		return nil, err
	default:
		r.id = &country.ID
	}

	r.resolved = true

	return r.id, nil
}
