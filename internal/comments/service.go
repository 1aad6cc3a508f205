package comments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/kovalyov-valentin/news-portal/internal/events"
	"github.com/kovalyov-valentin/news-portal/internal/metrics"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

const (
	MaxUserNameLen = 100
	MaxTextLen     = 5000
)

type CommentStorage interface {
	ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error)
	ByID(ctx context.Context, id int64) (model.Comment, error)
	Add(ctx context.Context, comment model.Comment) (model.Comment, error)
}

type ArticleProvider interface {
	BySlug(ctx context.Context, slug string) (model.Article, error)
}

// Комментарий от пользователя, еще не сохраненный
type NewComment struct {
	ArticleSlug string
	UserName    string
	Text        string
	ParentID    *int64
}

type Service struct {
	comments  CommentStorage
	articles  ArticleProvider
	publisher events.Publisher
}

func NewService(comments CommentStorage, articles ArticleProvider, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &Service{comments: comments, articles: articles, publisher: publisher}
}

// Thread возвращает дерево комментариев статьи
func (s *Service) Thread(ctx context.Context, articleID int64) ([]*model.CommentNode, error) {
	flat, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	return Build(flat), nil
}

func (s *Service) ThreadBySlug(ctx context.Context, slug string) ([]*model.CommentNode, error) {
	article, err := s.articles.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return s.Thread(ctx, article.ID)
}

// Add проверяет и сохраняет комментарий. Ответ можно оставить только на комментарий той же статьи
func (s *Service) Add(ctx context.Context, in NewComment) (model.Comment, error) {
	comment, err := s.add(ctx, in)
	if err != nil {
		status := "failed"
		if errors.Is(err, model.ErrInvalidInput) {
			status = "invalid"
		}
		metrics.CommentsSubmitted.WithLabelValues(status).Inc()
		return model.Comment{}, err
	}

	metrics.CommentsSubmitted.WithLabelValues("ok").Inc()

	if err := s.publisher.Publish(events.Commented(in.ArticleSlug, comment)); err != nil {
		log.Printf("[ERROR] failed to publish comment event for %s: %v", in.ArticleSlug, err)
	}

	return comment, nil
}

func (s *Service) add(ctx context.Context, in NewComment) (model.Comment, error) {
	var (
		userName = strings.TrimSpace(in.UserName)
		text     = strings.TrimSpace(in.Text)
	)

	switch {
	case userName == "":
		return model.Comment{}, fmt.Errorf("user name is empty: %w", model.ErrInvalidInput)
	case text == "":
		return model.Comment{}, fmt.Errorf("comment text is empty: %w", model.ErrInvalidInput)
	case utf8.RuneCountInString(userName) > MaxUserNameLen:
		return model.Comment{}, fmt.Errorf("user name is longer than %d: %w", MaxUserNameLen, model.ErrInvalidInput)
	case utf8.RuneCountInString(text) > MaxTextLen:
		return model.Comment{}, fmt.Errorf("comment text is longer than %d: %w", MaxTextLen, model.ErrInvalidInput)
	}

	article, err := s.articles.BySlug(ctx, in.ArticleSlug)
	if err != nil {
		return model.Comment{}, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.ByID(ctx, *in.ParentID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			return model.Comment{}, fmt.Errorf("parent comment %d not found: %w", *in.ParentID, model.ErrInvalidInput)
		case err != nil:
			return model.Comment{}, err
		case parent.ArticleID != article.ID:
			return model.Comment{}, fmt.Errorf("parent comment %d belongs to another article: %w", *in.ParentID, model.ErrInvalidInput)
		}
	}

	return s.comments.Add(ctx, model.Comment{
		ArticleID: article.ID,
		UserName:  userName,
		Text:      text,
		ParentID:  in.ParentID,
	})
}
