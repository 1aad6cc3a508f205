package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

// Хранилище статей в postgres
type ArticlePostgresStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticlePostgresStorage {
	return &ArticlePostgresStorage{db: db}
}

// Категорию подтягиваем join'ом, чтобы страницам не ходить за ней отдельно
const selectArticle = `
	SELECT a.id, a.title, a.description, a.content, a.image_url, a.link, a.slug,
	       a.author, a.published_at, a.category_id, c.name AS category_name,
	       c.slug AS category_slug, a.country_id, a.tags, a.views, a.posted_at, a.created_at
	FROM articles a
	LEFT JOIN categories c ON c.id = a.category_id`

// Вставка статьи, если slug еще свободен.
// Если slug занят (в том числе другим параллельным запуском), возвращается model.ErrDuplicate
func (s *ArticlePostgresStorage) Insert(ctx context.Context, article model.Article) (model.Article, error) {
	// nil массив pq пишет как NULL, а колонка NOT NULL
	if article.Tags == nil {
		article.Tags = []string{}
	}

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO articles (title, description, content, image_url, link, slug, author, published_at, category_id, country_id, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (slug) DO NOTHING
		 RETURNING id, views, created_at`,
		article.Title,
		article.Description,
		article.Content,
		nullString(article.ImageURL),
		nullString(article.Link),
		article.Slug,
		article.Author,
		article.PublishedAt,
		nullInt64(article.CategoryID),
		nullInt64(article.CountryID),
		pq.StringArray(article.Tags),
	)

	if err := row.Scan(&article.ID, &article.Views, &article.CreatedAt); err != nil {
		// ON CONFLICT DO NOTHING не возвращает строк
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, fmt.Errorf("insert article %q: %w", article.Slug, model.ErrDuplicate)
		}
		return model.Article{}, wrap("insert article", err)
	}

	return article, nil
}

// Предварительная проверка дедупликации
func (s *ArticlePostgresStorage) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug); err != nil {
		return false, wrap("article exists", err)
	}

	return exists, nil
}

func (s *ArticlePostgresStorage) BySlug(ctx context.Context, slug string) (model.Article, error) {
	var article dbArticle
	if err := s.db.GetContext(ctx, &article, selectArticle+` WHERE a.slug = $1`, slug); err != nil {
		return model.Article{}, wrap("article by slug", err)
	}

	return article.toModel(), nil
}

// Атомарный инкремент счетчика одним запросом, без чтения на стороне приложения
func (s *ArticlePostgresStorage) IncrementViews(ctx context.Context, slug string) (int64, error) {
	var views int64
	if err := s.db.GetContext(ctx, &views, `UPDATE articles SET views = views + 1 WHERE slug = $1 RETURNING views`, slug); err != nil {
		return 0, wrap("increment views", err)
	}

	return views, nil
}

// Самые читаемые статьи
func (s *ArticlePostgresStorage) TopViewed(ctx context.Context, limit uint64) ([]model.Article, error) {
	var articles []dbArticle
	if err := s.db.SelectContext(
		ctx,
		&articles,
		selectArticle+` ORDER BY a.views DESC, a.published_at DESC LIMIT $1`,
		limit,
	); err != nil {
		return nil, wrap("top viewed articles", err)
	}

	return lo.Map(articles, func(article dbArticle, _ int) model.Article { return article.toModel() }), nil
}

// Статьи, которые еще не публиковались в канале, начиная с since, самые старые первыми
func (s *ArticlePostgresStorage) AllNotPosted(ctx context.Context, since time.Time, limit uint64) ([]model.Article, error) {
	var articles []dbArticle
	if err := s.db.SelectContext(
		ctx,
		&articles,
		selectArticle+` WHERE a.posted_at IS NULL AND a.created_at >= $1 ORDER BY a.created_at ASC LIMIT $2`,
		since.UTC(),
		limit,
	); err != nil {
		return nil, wrap("not posted articles", err)
	}

	return lo.Map(articles, func(article dbArticle, _ int) model.Article { return article.toModel() }), nil
}

func (s *ArticlePostgresStorage) MarkPosted(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE articles SET posted_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return wrap("mark posted", err)
	}

	return nil
}

type dbArticle struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Content      string         `db:"content"`
	ImageURL     sql.NullString `db:"image_url"`
	Link         sql.NullString `db:"link"`
	Slug         string         `db:"slug"`
	Author       string         `db:"author"`
	PublishedAt  time.Time      `db:"published_at"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	CategoryName sql.NullString `db:"category_name"`
	CategorySlug sql.NullString `db:"category_slug"`
	CountryID    sql.NullInt64  `db:"country_id"`
	Tags         pq.StringArray `db:"tags"`
	Views        int64          `db:"views"`
	PostedAt     sql.NullTime   `db:"posted_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (a dbArticle) toModel() model.Article {
	article := model.Article{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Content:      a.Content,
		ImageURL:     a.ImageURL.String,
		Link:         a.Link.String,
		Slug:         a.Slug,
		Author:       a.Author,
		PublishedAt:  a.PublishedAt,
		CategoryID:   int64Ptr(a.CategoryID),
		CategoryName: a.CategoryName.String,
		CategorySlug: a.CategorySlug.String,
		CountryID:    int64Ptr(a.CountryID),
		Tags:         []string(a.Tags),
		Views:        a.Views,
		CreatedAt:    a.CreatedAt,
	}

	if a.PostedAt.Valid {
		postedAt := a.PostedAt.Time
		article.PostedAt = &postedAt
	}

	return article
}
