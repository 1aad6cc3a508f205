package events

import (
	"time"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type Type string

const (
	ArticleCreated Type = "article.created"
	ArticleViewed  Type = "article.viewed"
	CommentCreated Type = "comment.created"
)

// Событие об изменении статьи. Key - slug статьи, по нему читающая сторона и подписывается
type Event struct {
	Type      Type      `json:"type"`
	Key       string    `json:"key"`
	ArticleID int64     `json:"article_id,omitempty"`
	CommentID int64     `json:"comment_id,omitempty"`
	Views     int64     `json:"views,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(event Event) error
}

// Заглушка, когда шина не настроена
type Noop struct{}

func (Noop) Publish(Event) error { return nil }

func Created(article model.Article) Event {
	return Event{Type: ArticleCreated, Key: article.Slug, ArticleID: article.ID, At: time.Now().UTC()}
}

func Viewed(slug string, views int64) Event {
	return Event{Type: ArticleViewed, Key: slug, Views: views, At: time.Now().UTC()}
}

func Commented(slug string, comment model.Comment) Event {
	return Event{
		Type:      CommentCreated,
		Key:       slug,
		ArticleID: comment.ArticleID,
		CommentID: comment.ID,
		At:        time.Now().UTC(),
	}
}
