package api

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

type categoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newCategoriesResponse(categories []model.Category) []categoryResponse {
	return lo.Map(categories, func(c model.Category, _ int) categoryResponse {
		return categoryResponse{Name: c.Name, Slug: c.Slug}
	})
}

type articleResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	ImageURL    string            `json:"image_url,omitempty"`
	Link        string            `json:"link,omitempty"`
	Slug        string            `json:"slug"`
	Author      string            `json:"author"`
	PublishedAt time.Time         `json:"published_at"`
	Category    *categoryResponse `json:"category,omitempty"`
	Tags        []string          `json:"tags"`
	Views       int64             `json:"views"`
	PostedAt    *time.Time        `json:"posted_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func newArticleResponse(a model.Article) articleResponse {
	resp := articleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		ImageURL:    a.ImageURL,
		Link:        a.Link,
		Slug:        a.Slug,
		Author:      a.Author,
		PublishedAt: a.PublishedAt,
		Tags:        a.Tags,
		Views:       a.Views,
		PostedAt:    timeOrNil(a.PostedAt),
		CreatedAt:   a.CreatedAt,
	}

	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if a.CategorySlug != "" {
		resp.Category = &categoryResponse{Name: a.CategoryName, Slug: a.CategorySlug}
	}

	return resp
}

func newArticlesResponse(articles []model.Article) []articleResponse {
	return lo.Map(articles, func(a model.Article, _ int) articleResponse { return newArticleResponse(a) })
}

type failureResponse struct {
	Title  string `json:"title"`
	Slug   string `json:"slug,omitempty"`
	Reason string `json:"reason"`
}

type ingestResponse struct {
	Message   string            `json:"message"`
	Fetched   int               `json:"fetched"`
	Accepted  int               `json:"accepted"`
	Duplicate int               `json:"duplicate"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Failures  []failureResponse `json:"failures"`
	Posts     []articleResponse `json:"posts"`
}

func newIngestResponse(run model.IngestionRun) ingestResponse {
	return ingestResponse{
		Message:   fmt.Sprintf("Fetched %d articles, %d new", run.Fetched, run.Accepted),
		Fetched:   run.Fetched,
		Accepted:  run.Accepted,
		Duplicate: run.Duplicate,
		Skipped:   run.Skipped,
		Failed:    run.Failed,
		Failures: lo.Map(run.Failures, func(f model.CandidateFailure, _ int) failureResponse {
			return failureResponse(f)
		}),
		Posts: newArticlesResponse(run.Created),
	}
}

type addCommentRequest struct {
	UserName string `json:"user_name"`
	Text     string `json:"comment_text"`
	ParentID *int64 `json:"parent_comment_id"`
}

type commentResponse struct {
	ID        int64              `json:"id"`
	UserName  string             `json:"user_name"`
	Text      string             `json:"comment_text"`
	ParentID  *int64             `json:"parent_comment_id"`
	CreatedAt time.Time          `json:"created_at"`
	Replies   []*commentResponse `json:"replies"`
}

func newCommentResponse(c model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		UserName:  c.UserName,
		Text:      c.Text,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		Replies:   []*commentResponse{},
	}
}

// Дерево переводим в ответ без рекурсии, глубина ответов не ограничена
func newCommentsResponse(forest []*model.CommentNode) []*commentResponse {
	type pending struct {
		node *model.CommentNode
		out  *commentResponse
	}

	var (
		roots = make([]*commentResponse, 0, len(forest))
		stack = make([]pending, 0, len(forest))
	)

	for _, node := range forest {
		out := newCommentResponse(node.Comment)
		roots = append(roots, &out)
		stack = append(stack, pending{node: node, out: &out})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, reply := range p.node.Replies {
			out := newCommentResponse(reply.Comment)
			p.out.Replies = append(p.out.Replies, &out)
			stack = append(stack, pending{node: reply, out: &out})
		}
	}

	return roots
}
