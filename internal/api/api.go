package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kovalyov-valentin/news-portal/internal/comments"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

type Ingester interface {
	Run(ctx context.Context) (model.IngestionRun, error)
}

type ArticleProvider interface {
	BySlug(ctx context.Context, slug string) (model.Article, error)
	TopViewed(ctx context.Context, limit uint64) ([]model.Article, error)
}

type CategoryLister interface {
	Categories(ctx context.Context) ([]model.Category, error)
}

type ViewCounter interface {
	Increment(ctx context.Context, slug string) (int64, error)
	Record(slug string)
}

type CommentService interface {
	ThreadBySlug(ctx context.Context, slug string) ([]*model.CommentNode, error)
	Add(ctx context.Context, in comments.NewComment) (model.Comment, error)
}

type Server struct {
	ingester   Ingester
	articles   ArticleProvider
	categories CategoryLister
	views      ViewCounter
	comments   CommentService
	subscriber Subscriber
}

func New(
	ingester Ingester,
	articles ArticleProvider,
	categories CategoryLister,
	views ViewCounter,
	comments CommentService,
) *Server {
	return &Server{
		ingester:   ingester,
		articles:   articles,
		categories: categories,
		views:      views,
		comments:   comments,
	}
}

// Router собирает все маршруты сервиса
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(instrument)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ingest", s.ingest).Methods(http.MethodPost)
	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	// top регистрируем раньше {slug}, иначе его перехватит маршрут статьи
	api.HandleFunc("/articles/top", s.topArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{slug}", s.article).Methods(http.MethodGet)
	api.HandleFunc("/articles/{slug}/views", s.recordView).Methods(http.MethodPost)
	api.HandleFunc("/articles/{slug}/comments", s.listComments).Methods(http.MethodGet)
	api.HandleFunc("/articles/{slug}/comments", s.addComment).Methods(http.MethodPost)
	api.HandleFunc("/live", s.live).Methods(http.MethodGet)
	api.HandleFunc("/articles/{slug}/live", s.live).Methods(http.MethodGet)

	return router
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	run, err := s.ingester.Run(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newIngestResponse(run))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.Categories(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newCategoriesResponse(categories))
}

func (s *Server) article(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	article, err := s.articles.BySlug(r.Context(), slug)
	if err != nil {
		respondWithError(w, err)
		return
	}

	// Просмотр засчитываем в фоне, страница отдается в любом случае
	s.views.Record(slug)

	respondWithJSON(w, http.StatusOK, newArticleResponse(article))
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	if _, err := s.views.Increment(r.Context(), slug); err != nil {
		log.Printf("[ERROR] failed to increment views for %s: %v", slug, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) topArticles(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxTopLimit)
	}

	articles, err := s.articles.TopViewed(r.Context(), uint64(limit))
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newArticlesResponse(articles))
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	forest, err := s.comments.ThreadBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		respondWithError(w, err)
		return
	}

	w.Header().Set("X-Comments-Count", strconv.Itoa(comments.Count(forest)))
	respondWithJSON(w, http.StatusOK, newCommentsResponse(forest))
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	comment, err := s.comments.Add(r.Context(), comments.NewComment{
		ArticleSlug: mux.Vars(r)["slug"],
		UserName:    req.UserName,
		Text:        req.Text,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newCommentResponse(comment))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Printf("[ERROR] request failed: %v", err)
	}

	respondWithJSON(w, code, errorResponse{Error: err.Error()})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ERROR] failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Printf("[ERROR] failed to write response: %v", err)
	}
}

func timeOrNil(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
