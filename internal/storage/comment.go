package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type CommentPostgresStorage struct {
	db *sqlx.DB
}

func NewCommentStorage(db *sqlx.DB) *CommentPostgresStorage {
	return &CommentPostgresStorage{db: db}
}

// Плоский список комментариев статьи по возрастанию времени создания.
// id как второй ключ, чтобы порядок был стабильным при одинаковом created_at
func (s *CommentPostgresStorage) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	var comments []dbComment
	if err := s.db.SelectContext(
		ctx,
		&comments,
		`SELECT id, article_id, user_name, comment_text, parent_comment_id, created_at
		 FROM comments
		 WHERE article_id = $1
		 ORDER BY created_at ASC, id ASC`,
		articleID,
	); err != nil {
		return nil, wrap("list comments", err)
	}

	return lo.Map(comments, func(comment dbComment, _ int) model.Comment { return comment.toModel() }), nil
}

func (s *CommentPostgresStorage) ByID(ctx context.Context, id int64) (model.Comment, error) {
	var comment dbComment
	if err := s.db.GetContext(
		ctx,
		&comment,
		`SELECT id, article_id, user_name, comment_text, parent_comment_id, created_at FROM comments WHERE id = $1`,
		id,
	); err != nil {
		return model.Comment{}, wrap("comment by id", err)
	}

	return comment.toModel(), nil
}

func (s *CommentPostgresStorage) Add(ctx context.Context, comment model.Comment) (model.Comment, error) {
	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO comments (article_id, user_name, comment_text, parent_comment_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		comment.ArticleID,
		comment.UserName,
		comment.Text,
		nullInt64(comment.ParentID),
	)

	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return model.Comment{}, wrap("add comment", err)
	}

	return comment, nil
}

type dbComment struct {
	ID        int64         `db:"id"`
	ArticleID int64         `db:"article_id"`
	UserName  string        `db:"user_name"`
	Text      string        `db:"comment_text"`
	ParentID  sql.NullInt64 `db:"parent_comment_id"`
	CreatedAt time.Time     `db:"created_at"`
}

func (c dbComment) toModel() model.Comment {
	return model.Comment{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		UserName:  c.UserName,
		Text:      c.Text,
		ParentID:  int64Ptr(c.ParentID),
		CreatedAt: c.CreatedAt,
	}
}
