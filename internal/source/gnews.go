package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

const DefaultGNewsEndpoint = "https://gnews.io/api/v4/search"

// Больше 10 статей за запрос бесплатный тариф GNews все равно не отдает
const MaxBatch = 10

type GNewsConfig struct {
	Endpoint string
	APIKey   string
	Query    string
	Language string
	Country  string
	Max      int
}

// Клиент GNews API
type GNewsSource struct {
	cfg    GNewsConfig
	client *http.Client
}

func NewGNewsSource(cfg GNewsConfig, client *http.Client) *GNewsSource {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGNewsEndpoint
	}
	if cfg.Max <= 0 || cfg.Max > MaxBatch {
		cfg.Max = MaxBatch
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &GNewsSource{cfg: cfg, client: client}
}

func (s *GNewsSource) Name() string {
	return "GNews"
}

// Fetch забирает одну пачку статей. Любая проблема (сеть, статус, битый json) - model.ErrSourceUnavailable
func (s *GNewsSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	if s.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gnews api key is not configured", model.ErrSourceUnavailable)
	}

	reqURL, err := s.buildURL()
	if err != nil {
		return nil, fmt.Errorf("%w: build url: %v", model.ErrSourceUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrSourceUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gnews api error: %d", model.ErrSourceUnavailable, resp.StatusCode)
	}

	var payload gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrSourceUnavailable, err)
	}

	return lo.Map(payload.Articles, func(article gnewsArticle, _ int) model.Candidate {
		return article.toCandidate()
	}), nil
}

func (s *GNewsSource) buildURL() (string, error) {
	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if s.cfg.Query != "" {
		q.Set("q", s.cfg.Query)
	}
	if s.cfg.Language != "" {
		q.Set("lang", s.cfg.Language)
	}
	if s.cfg.Country != "" {
		q.Set("country", s.cfg.Country)
	}
	q.Set("max", strconv.Itoa(s.cfg.Max))
	q.Set("apikey", s.cfg.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func (a gnewsArticle) toCandidate() model.Candidate {
	candidate := model.Candidate{
		Title:       a.Title,
		Description: PlainText(a.Description),
		Content:     PlainText(a.Content),
		ImageURL:    a.Image,
		URL:         a.URL,
		SourceName:  a.Source.Name,
	}

	// Кривую дату не считаем ошибкой, просто оставляем нулевое время
	if published, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		candidate.PublishedAt = published.UTC()
	}

	return candidate
}
