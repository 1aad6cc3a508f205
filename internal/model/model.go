package model

import "time"

// Кандидат на публикацию, как он пришел из внешнего источника.
// В базу еще не попал и не провалидирован
type Candidate struct {
	Title       string
	Description string
	// Полный текст, если источник его отдает
	Content  string
	ImageURL string
	// Ссылка на оригинал
	URL        string
	SourceName string
	// Нулевое время, если источник дату не прислал
	PublishedAt time.Time
}

// Модель статьи, которая хранится у нас в базе
type Article struct {
	ID          int64
	Title       string
	Description string
	Content     string
	ImageURL    string
	Link        string
	// Уникальный ключ статьи, по нему же идет дедупликация
	Slug        string
	Author      string
	PublishedAt time.Time
	CategoryID  *int64
	// Заполняются только при чтении, через join с categories
	CategoryName string
	CategorySlug string
	CountryID    *int64
	Tags         []string
	// Счетчик просмотров, только растет
	Views int64
	// Время публикации в телеграм канале, nil если еще не постили
	PostedAt  *time.Time
	CreatedAt time.Time
}

// Категория из фиксированной таксономии
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Страна/регион
type Country struct {
	ID   int64
	Code string
	Name string
}

// Комментарий к статье. ParentID == nil значит комментарий корневой
type Comment struct {
	ID        int64
	ArticleID int64
	UserName  string
	Text      string
	ParentID  *int64
	CreatedAt time.Time
}

// Узел дерева комментариев
type CommentNode struct {
	Comment
	Replies []*CommentNode
}
