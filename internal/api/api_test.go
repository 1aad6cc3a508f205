package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kovalyov-valentin/news-portal/internal/comments"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type fakeIngester struct {
	run model.IngestionRun
	err error
}

func (f *fakeIngester) Run(ctx context.Context) (model.IngestionRun, error) {
	return f.run, f.err
}

type fakeArticles struct {
	mu     sync.Mutex
	bySlug map[string]model.Article
	top    []model.Article
	limit  uint64
}

func (f *fakeArticles) BySlug(ctx context.Context, slug string) (model.Article, error) {
	a, ok := f.bySlug[slug]
	if !ok {
		return model.Article{}, fmt.Errorf("article %s: %w", slug, model.ErrNotFound)
	}
	return a, nil
}

func (f *fakeArticles) TopViewed(ctx context.Context, limit uint64) ([]model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	return f.top, nil
}

type fakeCategories struct {
	categories []model.Category
	err        error
}

func (f *fakeCategories) Categories(ctx context.Context) ([]model.Category, error) {
	return f.categories, f.err
}

type fakeViews struct {
	mu        sync.Mutex
	recorded  []string
	increment []string
	err       error
}

func (f *fakeViews) Increment(ctx context.Context, slug string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increment = append(f.increment, slug)
	return 1, f.err
}

func (f *fakeViews) Record(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, slug)
}

func (f *fakeViews) snapshot() (recorded, increment []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.recorded...), append([]string(nil), f.increment...)
}

type fakeComments struct {
	mu     sync.Mutex
	forest []*model.CommentNode
	added  []comments.NewComment
	err    error
}

func (f *fakeComments) ThreadBySlug(ctx context.Context, slug string) ([]*model.CommentNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.forest, nil
}

func (f *fakeComments) Add(ctx context.Context, in comments.NewComment) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Comment{}, f.err
	}
	f.added = append(f.added, in)
	return model.Comment{ID: 5, UserName: in.UserName, Text: in.Text, ParentID: in.ParentID}, nil
}

type deps struct {
	ingester *fakeIngester
	articles   *fakeArticles
	categories *fakeCategories
	views      *fakeViews
	comments   *fakeComments
}

func newTestServer(t *testing.T) (*httptest.Server, deps) {
	t.Helper()

	d := deps{
		ingester: &fakeIngester{},
		articles: &fakeArticles{bySlug: map[string]model.Article{
			"hello-world": {ID: 1, Title: "Hello world", Slug: "hello-world", CategoryName: "Politics", CategorySlug: "politics"},
		}},
		categories: &fakeCategories{},
		views:      &fakeViews{},
		comments:   &fakeComments{},
	}

	srv := httptest.NewServer(New(d.ingester, d.articles, d.categories, d.views, d.comments).Router())
	t.Cleanup(srv.Close)

	return srv, d
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestIngest(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.ingester.run = model.IngestionRun{
		Fetched:   3,
		Accepted:  1,
		Duplicate: 1,
		Failed:    1,
		Failures:  []model.CandidateFailure{{Title: "Broken", Slug: "broken", Reason: "store unavailable"}},
		Created:   []model.Article{{ID: 9, Title: "New", Slug: "new", PublishedAt: time.Now()}},
	}

	resp, err := http.Post(srv.URL+"/api/ingest", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ingestResponse
	decode(t, resp, &body)

	if body.Fetched != 3 || body.Accepted != 1 || body.Duplicate != 1 || body.Failed != 1 {
		t.Errorf("unexpected counts: %+v", body)
	}
	if len(body.Posts) != 1 || body.Posts[0].Slug != "new" || body.Posts[0].Tags == nil {
		t.Errorf("unexpected posts: %+v", body.Posts)
	}
	if len(body.Failures) != 1 || body.Failures[0].Reason != "store unavailable" {
		t.Errorf("unexpected failures: %+v", body.Failures)
	}
	if body.Message == "" {
		t.Errorf("expected message")
	}
}

func TestIngestSourceUnavailable(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.ingester.err = fmt.Errorf("fetch: %w", model.ErrSourceUnavailable)

	resp, err := http.Post(srv.URL+"/api/ingest", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body errorResponse
	decode(t, resp, &body)

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if body.Error == "" {
		t.Errorf("expected error message")
	}
}

func TestArticleRecordsView(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/articles/hello-world")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body articleResponse
	decode(t, resp, &body)

	if body.Slug != "hello-world" || body.Category == nil || body.Category.Slug != "politics" {
		t.Errorf("unexpected article: %+v", body)
	}
	if recorded, _ := d.views.snapshot(); len(recorded) != 1 || recorded[0] != "hello-world" {
		t.Errorf("expected one recorded view, got %v", recorded)
	}
}

func TestArticleNotFound(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/articles/missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if recorded, _ := d.views.snapshot(); len(recorded) != 0 {
		t.Errorf("no view should be recorded for a missing article")
	}
}

func TestRecordViewAlwaysNoContent(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.views.mu.Lock()
	d.views.err = model.ErrStoreUnavailable
	d.views.mu.Unlock()

	resp, err := http.Post(srv.URL+"/api/articles/hello-world/views", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if _, increment := d.views.snapshot(); len(increment) != 1 {
		t.Errorf("expected one increment, got %d", len(increment))
	}
}

func TestTopArticles(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.articles.top = []model.Article{{ID: 1, Slug: "a", Views: 10}, {ID: 2, Slug: "b", Views: 3}}

	resp, err := http.Get(srv.URL + "/api/articles/top?limit=500")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body []articleResponse
	decode(t, resp, &body)

	if len(body) != 2 || body[0].Slug != "a" {
		t.Errorf("unexpected top: %+v", body)
	}
	d.articles.mu.Lock()
	limit := d.articles.limit
	d.articles.mu.Unlock()
	if limit != maxTopLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxTopLimit, limit)
	}

	bad, err := http.Get(srv.URL + "/api/articles/top?limit=-1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	bad.Body.Close()

	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", bad.StatusCode)
	}
}

func TestComments(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)

	reply := &model.CommentNode{Comment: model.Comment{ID: 2, Text: "reply"}, Replies: []*model.CommentNode{}}
	d.comments.forest = []*model.CommentNode{
		{Comment: model.Comment{ID: 1, Text: "root"}, Replies: []*model.CommentNode{reply}},
	}

	resp, err := http.Get(srv.URL + "/api/articles/hello-world/comments")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if got := resp.Header.Get("X-Comments-Count"); got != "2" {
		t.Errorf("X-Comments-Count = %q, want 2", got)
	}

	var forest []commentResponse
	decode(t, resp, &forest)

	if len(forest) != 1 || len(forest[0].Replies) != 1 || forest[0].Replies[0].ID != 2 {
		t.Fatalf("unexpected forest: %+v", forest)
	}
	if forest[0].Replies[0].Replies == nil {
		t.Errorf("leaf replies should be an empty list")
	}
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)

	resp, err := http.Post(
		srv.URL+"/api/articles/hello-world/comments",
		"application/json",
		strings.NewReader(`{"user_name":"reader","comment_text":"nice","parent_comment_id":1}`),
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body commentResponse
	decode(t, resp, &body)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	d.comments.mu.Lock()
	added := d.comments.added
	d.comments.mu.Unlock()
	if len(added) != 1 || added[0].ArticleSlug != "hello-world" || added[0].ParentID == nil || *added[0].ParentID != 1 {
		t.Errorf("unexpected added comments: %+v", added)
	}
	if body.ID != 5 || body.UserName != "reader" {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestAddCommentInvalid(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/articles/hello-world/comments", "application/json", strings.NewReader(`{`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", resp.StatusCode)
	}

	d.comments.mu.Lock()
	d.comments.err = fmt.Errorf("user name is empty: %w", model.ErrInvalidInput)
	d.comments.mu.Unlock()

	resp, err = http.Post(srv.URL+"/api/articles/hello-world/comments", "application/json", strings.NewReader(`{"comment_text":"x"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid comment: expected 400, got %d", resp.StatusCode)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.categories.categories = []model.Category{
		{ID: 1, Name: "Politics", Slug: "politics"},
		{ID: 2, Name: "Sports", Slug: "sports"},
	}

	resp, err := http.Get(srv.URL + "/api/categories")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var got []categoryResponse
	decode(t, resp, &got)

	if len(got) != 2 || got[0].Slug != "politics" || got[1].Name != "Sports" {
		t.Errorf("unexpected categories: %+v", got)
	}
}

func TestCategoriesStoreUnavailable(t *testing.T) {
	t.Parallel()

	srv, d := newTestServer(t)
	d.categories.err = fmt.Errorf("categories: %w", model.ErrStoreUnavailable)

	resp, err := http.Get(srv.URL + "/api/categories")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
