package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type fakeArticles struct {
	pending []model.Article
	since   time.Time
	posted  []int64
}

func (f *fakeArticles) AllNotPosted(ctx context.Context, since time.Time, limit uint64) ([]model.Article, error) {
	f.since = since
	if len(f.pending) == 0 {
		return nil, nil
	}
	return f.pending[:1], nil
}

func (f *fakeArticles) MarkPosted(ctx context.Context, id int64) error {
	f.posted = append(f.posted, id)
	f.pending = f.pending[1:]
	return nil
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return f.summary, f.err
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func article() model.Article {
	return model.Article{
		ID:           3,
		Title:        "Sensex rises 2%!",
		Description:  "Markets rallied.",
		Slug:         "sensex-rises-2",
		CategorySlug: "business",
	}
}

func newTestNotifier(articles *fakeArticles, summarizer Summarizer, sender *fakeSender) *Notifier {
	n := New(articles, summarizer, sender, time.Minute, 24*time.Hour, -1001, "https://portal.example")
	n.now = func() time.Time { return time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestSelectAndSendArticle(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{pending: []model.Article{article()}}
	sender := &fakeSender{}
	n := newTestNotifier(articles, fakeSummarizer{summary: "Stocks went up."}, sender)

	if err := n.SelectAndSendArticle(context.Background()); err != nil {
		t.Fatalf("SelectAndSendArticle returned error: %v", err)
	}

	if !articles.since.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected lookup window start %v", articles.since)
	}
	if len(articles.posted) != 1 || articles.posted[0] != 3 {
		t.Errorf("expected article 3 marked posted, got %v", articles.posted)
	}

	want := "*Sensex rises 2%\\!*\n\nStocks went up\\.\n\n\\#business\n\n[Читать на сайте](https://portal.example/news/sensex-rises-2)"
	if len(sender.sent) != 1 || sender.sent[0].Text != want {
		t.Fatalf("unexpected message:\n%q\nwant\n%q", sender.sent[0].Text, want)
	}
	if sender.sent[0].ChatID != -1001 || sender.sent[0].ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("unexpected message config: %+v", sender.sent[0])
	}

	// Больше публиковать нечего
	if err := n.SelectAndSendArticle(context.Background()); err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("nothing new should be sent, got %d messages", len(sender.sent))
	}
}

func TestSummaryFailureStillSends(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{pending: []model.Article{article()}}
	sender := &fakeSender{}
	n := newTestNotifier(articles, fakeSummarizer{err: errors.New("rate limited")}, sender)

	if err := n.SelectAndSendArticle(context.Background()); err != nil {
		t.Fatalf("SelectAndSendArticle returned error: %v", err)
	}
	if len(sender.sent) != 1 || len(articles.posted) != 1 {
		t.Errorf("article should be sent without summary")
	}
}

func TestSendFailureDoesNotMarkPosted(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{pending: []model.Article{article()}}
	sender := &fakeSender{err: errors.New("telegram down")}
	n := newTestNotifier(articles, fakeSummarizer{}, sender)

	if err := n.SelectAndSendArticle(context.Background()); err == nil {
		t.Fatalf("expected send error")
	}
	if len(articles.posted) != 0 {
		t.Errorf("article must stay unposted, got %v", articles.posted)
	}
}
