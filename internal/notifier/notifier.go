package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-portal/internal/bot"
	"github.com/kovalyov-valentin/news-portal/internal/botkit"
	"github.com/kovalyov-valentin/news-portal/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type ArticleProvider interface {
	AllNotPosted(ctx context.Context, since time.Time, limit uint64) ([]model.Article, error)
	MarkPosted(ctx context.Context, id int64) error
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Публикует в канал новые статьи, по одной за тик
type Notifier struct {
	articles   ArticleProvider
	summarizer Summarizer
	bot        botkit.Sender
	// Как часто проверяем, есть ли что публиковать
	sendInterval time.Duration
	// Насколько далеко в прошлое смотрим. Статьи старше окна в канал уже не попадут
	lookupTimeWindow time.Duration
	channelID        int64
	siteBaseURL      string

	now func() time.Time
}

func New(
	articleProvider ArticleProvider,
	summarizer Summarizer,
	bot botkit.Sender,
	sendInterval time.Duration,
	lookupTimeWindow time.Duration,
	channelID int64,
	siteBaseURL string,
) *Notifier {
	return &Notifier{
		articles:         articleProvider,
		summarizer:       summarizer,
		bot:              bot,
		sendInterval:     sendInterval,
		lookupTimeWindow: lookupTimeWindow,
		channelID:        channelID,
		siteBaseURL:      siteBaseURL,
		now:              time.Now,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	ticker := time.NewTicker(n.sendInterval)
	defer ticker.Stop()

	n.tick(ctx)

	for {
		select {
		case <-ticker.C:
			n.tick(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ошибка одной отправки не должна останавливать публикацию, следующий тик попробует снова
func (n *Notifier) tick(ctx context.Context) {
	if err := n.SelectAndSendArticle(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[ERROR] failed to send article to channel: %v", err)
	}
}

// SelectAndSendArticle берет самую старую неопубликованную статью из окна, отправляет и помечает опубликованной
func (n *Notifier) SelectAndSendArticle(ctx context.Context) error {
	articles, err := n.articles.AllNotPosted(ctx, n.now().Add(-n.lookupTimeWindow), 1)
	if err != nil {
		return fmt.Errorf("select article: %w", err)
	}

	if len(articles) == 0 {
		return nil
	}

	article := articles[0]

	summary, err := n.summarizer.Summarize(ctx, article.Description)
	if err != nil {
		// Без пересказа статья все равно уходит в канал
		log.Printf("[WARN] failed to summarize article %s: %v", article.Slug, err)
		summary = ""
	}

	if _, err := n.bot.Send(n.message(article, summary)); err != nil {
		return fmt.Errorf("send article %s: %w", article.Slug, err)
	}

	if err := n.articles.MarkPosted(ctx, article.ID); err != nil {
		return fmt.Errorf("mark article %s posted: %w", article.Slug, err)
	}

	log.Printf("[INFO] article %s posted to channel", article.Slug)

	return nil
}

// Заголовок жирным, пересказ, хештег категории и ссылка на страницу статьи
func (n *Notifier) message(article model.Article, summary string) tgbotapi.MessageConfig {
	parts := []string{markup.Bold(article.Title)}

	if summary = strings.TrimSpace(summary); summary != "" {
		parts = append(parts, markup.EscapeForMarkdown(summary))
	}

	if article.CategorySlug != "" {
		parts = append(parts, markup.Hashtag(article.CategorySlug))
	}

	parts = append(parts, markup.Link("Читать на сайте", bot.ArticleURL(n.siteBaseURL, article.Slug)))

	msg := tgbotapi.NewMessage(n.channelID, strings.Join(parts, "\n\n"))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	return msg
}
