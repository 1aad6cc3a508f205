package botkit

import (
	"context"
	"log"
	"runtime/debug"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Часть клиента телеграма, которой пользуются view
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// View обрабатывает одну команду
type ViewFunc func(ctx context.Context, bot Sender, update tgbotapi.Update) error

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	cmdViews map[string]ViewFunc
	// Сколько живет обработка одного update. /ingest ходит во внешний API, поэтому с запасом
	updateTimeout time.Duration
}

func New(api *tgbotapi.BotAPI, updateTimeout time.Duration) *Bot {
	if updateTimeout <= 0 {
		updateTimeout = 5 * time.Second
	}

	return &Bot{
		api:           api,
		sender:        api,
		cmdViews:      make(map[string]ViewFunc),
		updateTimeout: updateTimeout,
	}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

// Commands возвращает зарегистрированные команды по алфавиту
func (b *Bot) Commands() []string {
	cmds := make([]string, 0, len(b.cmdViews))
	for cmd := range b.cmdViews {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)

	return cmds
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, b.updateTimeout)
			b.handleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered: %v\n%s", p, string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	view, ok := b.cmdViews[update.Message.Command()]
	if !ok {
		return
	}

	if err := view(ctx, b.sender, update); err != nil {
		log.Printf("[ERROR] failed to handle update: %v", err)

		if _, err := b.sender.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			log.Printf("[ERROR] failed to send message: %v", err)
		}
	}
}
