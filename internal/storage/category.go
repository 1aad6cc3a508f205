package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

// Справочники категорий и стран. Ядро их только читает
type CategoryPostgresStorage struct {
	db *sqlx.DB
}

func NewCategoryStorage(db *sqlx.DB) *CategoryPostgresStorage {
	return &CategoryPostgresStorage{db: db}
}

func (s *CategoryPostgresStorage) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []dbCategory
	if err := s.db.SelectContext(ctx, &categories, `SELECT id, name, slug FROM categories ORDER BY name`); err != nil {
		return nil, wrap("categories", err)
	}

	return lo.Map(categories, func(category dbCategory, _ int) model.Category {
		return model.Category(category)
	}), nil
}

func (s *CategoryPostgresStorage) BySlug(ctx context.Context, slug string) (model.Category, error) {
	var category dbCategory
	if err := s.db.GetContext(ctx, &category, `SELECT id, name, slug FROM categories WHERE slug = $1`, slug); err != nil {
		return model.Category{}, wrap("category by slug", err)
	}

	return model.Category(category), nil
}

type CountryPostgresStorage struct {
	db *sqlx.DB
}

func NewCountryStorage(db *sqlx.DB) *CountryPostgresStorage {
	return &CountryPostgresStorage{db: db}
}

// Поиск страны по ISO коду, например IN
func (s *CountryPostgresStorage) ByCode(ctx context.Context, code string) (model.Country, error) {
	var country dbCountry
	if err := s.db.GetContext(ctx, &country, `SELECT id, code, name FROM countries WHERE code = upper($1)`, code); err != nil {
		return model.Country{}, wrap("country by code", err)
	}

	return model.Country(country), nil
}

// Внутренние модели, чтобы правильно мапить их на колонки в таблицах
type dbCategory struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type dbCountry struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}
