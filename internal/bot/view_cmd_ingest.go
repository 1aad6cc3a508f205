package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/botkit"
	"github.com/kovalyov-valentin/news-portal/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type Ingester interface {
	Run(ctx context.Context) (model.IngestionRun, error)
}

// Ручной запуск загрузки статей, отвечает сводкой по запуску
func ViewCmdIngest(ingester Ingester) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.Sender, update tgbotapi.Update) error {
		run, err := ingester.Run(ctx)
		if errors.Is(err, model.ErrSourceUnavailable) {
			reply := tgbotapi.NewMessage(update.Message.Chat.ID, "Источник новостей недоступен, попробуйте позже")
			_, err := bot.Send(reply)
			return err
		}
		if err != nil {
			return err
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, formatRun(run))
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}

func formatRun(run model.IngestionRun) string {
	var sb strings.Builder

	fmt.Fprintf(
		&sb,
		"*Загрузка завершена*\nПолучено: %d\nНовых: %d\nДублей: %d\nПропущено: %d\nОшибок: %d",
		run.Fetched, run.Accepted, run.Duplicate, run.Skipped, run.Failed,
	)

	if len(run.Created) > 0 {
		titles := lo.Map(run.Created, func(article model.Article, _ int) string {
			return "• " + markup.EscapeForMarkdown(article.Title)
		})
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(titles, "\n"))
	}

	return sb.String()
}
