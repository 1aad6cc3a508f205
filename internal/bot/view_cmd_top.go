package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/botkit"
	"github.com/kovalyov-valentin/news-portal/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

const topLimit = 5

type TopProvider interface {
	TopViewed(ctx context.Context, limit uint64) ([]model.Article, error)
}

// Самые просматриваемые статьи со ссылками на сайт
func ViewCmdTop(provider TopProvider, siteBaseURL string) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.Sender, update tgbotapi.Update) error {
		articles, err := provider.TopViewed(ctx, topLimit)
		if err != nil {
			return err
		}

		msgText := "Пока нет ни одной статьи"
		if len(articles) > 0 {
			lines := lo.Map(articles, func(article model.Article, i int) string {
				return formatTopArticle(i+1, article, siteBaseURL)
			})
			msgText = fmt.Sprintf("*Популярное*\n\n%s", strings.Join(lines, "\n\n"))
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, msgText)
		reply.ParseMode = tgbotapi.ModeMarkdownV2
		reply.DisableWebPagePreview = true

		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}

func formatTopArticle(place int, article model.Article, siteBaseURL string) string {
	return fmt.Sprintf(
		"%d\\. %s\n👁 %d",
		place,
		markup.Link(article.Title, ArticleURL(siteBaseURL, article.Slug)),
		article.Views,
	)
}

// Ссылка на страницу статьи на сайте
func ArticleURL(siteBaseURL, slug string) string {
	return strings.TrimRight(siteBaseURL, "/") + "/news/" + slug
}
