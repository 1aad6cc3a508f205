package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-portal/internal/botkit"
)

func ViewCmdStart(commands []string) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.Sender, update tgbotapi.Update) error {
		list := lo.Map(commands, func(cmd string, _ int) string { return "/" + cmd })

		reply := tgbotapi.NewMessage(
			update.Message.Chat.ID,
			"Привет! Я присылаю свежие новости с портала.\nКоманды: "+strings.Join(list, ", "),
		)

		_, err := bot.Send(reply)
		return err
	}
}
