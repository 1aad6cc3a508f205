package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/kovalyov-valentin/news-portal/internal/api"
	"github.com/kovalyov-valentin/news-portal/internal/bot"
	"github.com/kovalyov-valentin/news-portal/internal/bot/middleware"
	"github.com/kovalyov-valentin/news-portal/internal/botkit"
	"github.com/kovalyov-valentin/news-portal/internal/comments"
	"github.com/kovalyov-valentin/news-portal/internal/config"
	"github.com/kovalyov-valentin/news-portal/internal/events"
	"github.com/kovalyov-valentin/news-portal/internal/ingest"
	"github.com/kovalyov-valentin/news-portal/internal/notifier"
	"github.com/kovalyov-valentin/news-portal/internal/scheduler"
	"github.com/kovalyov-valentin/news-portal/internal/source"
	"github.com/kovalyov-valentin/news-portal/internal/storage"
	"github.com/kovalyov-valentin/news-portal/internal/summary"
	"github.com/kovalyov-valentin/news-portal/internal/views"
)

func main() {
	// .env удобен локально, в проде переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] failed to load .env: %v", err)
	}

	cfg := config.Get()

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	src, err := newSource(cfg)
	if err != nil {
		log.Printf("[ERROR] failed to create source: %v", err)
		return
	}

	var (
		publisher  events.Publisher = events.Noop{}
		subscriber api.Subscriber
	)
	if cfg.NATSURL != "" {
		bus, err := events.NewNATSBus(cfg.NATSURL)
		if err != nil {
			log.Printf("[ERROR] failed to connect to nats: %v", err)
			return
		}
		defer func() {
			if err := bus.Close(); err != nil {
				log.Printf("[ERROR] failed to close nats connection: %v", err)
			}
		}()

		publisher, subscriber = bus, bus
	}

	var (
		articleStorage  = storage.NewArticleStorage(db)
		categoryStorage = storage.NewCategoryStorage(db)
		countryStorage  = storage.NewCountryStorage(db)
		commentStorage  = storage.NewCommentStorage(db)

		ingester = ingest.New(
			src,
			articleStorage,
			categoryStorage,
			countryStorage,
			publisher,
			ingest.Options{
				BatchSize:     cfg.BatchSize,
				DefaultRegion: cfg.DefaultRegion,
				FetchTimeout:  cfg.IngestTimeout,
			},
		)
		viewCounter    = views.New(articleStorage, publisher, cfg.ViewTimeout)
		commentService = comments.NewService(commentStorage, articleStorage, publisher)
	)
	defer viewCounter.Wait()

	sched, err := scheduler.New(ingester, scheduler.Options{
		Schedule: cfg.IngestSchedule,
		// Запас сверху на вставки после похода в источник
		Timeout:    2 * cfg.IngestTimeout,
		RunOnStart: true,
	})
	if err != nil {
		log.Printf("[ERROR] failed to create scheduler: %v", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	runWorker(ctx, &wg, "scheduler", sched.Start)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(ingester, articleStorage, categoryStorage, viewCounter, commentService).WithSubscriber(subscriber).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("[INFO] http server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server failed: %v", err)
			cancel()
		}
	}()

	if cfg.TelegramBotToken != "" {
		if err := startTelegram(ctx, &wg, cfg, ingester, articleStorage); err != nil {
			log.Printf("[ERROR] failed to start telegram bot: %v", err)
		}
	} else {
		log.Printf("[INFO] telegram bot token is not set, bot and notifier are disabled")
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] failed to shutdown http server: %v", err)
	}

	wg.Wait()
	log.Println("news portal stopped")
}

func newSource(cfg config.Config) (ingest.Source, error) {
	switch cfg.SourceKind {
	case config.SourceRSS:
		if cfg.RSSFeedURL == "" {
			return nil, errors.New("rss_feed_url is required for rss source")
		}
		return source.NewRSSSource(cfg.RSSFeedURL, cfg.RSSSourceName, cfg.BatchSize), nil
	case config.SourceGNews, "":
		return source.NewGNewsSource(source.GNewsConfig{
			Endpoint: cfg.GNewsEndpoint,
			APIKey:   cfg.GNewsAPIKey,
			Query:    cfg.GNewsQuery,
			Language: cfg.GNewsLanguage,
			Country:  cfg.GNewsCountry,
			Max:      cfg.BatchSize,
		}, &http.Client{Timeout: cfg.IngestTimeout}), nil
	default:
		return nil, errors.New("unknown source kind: " + cfg.SourceKind)
	}
}

func startTelegram(
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg config.Config,
	ingester *ingest.Ingester,
	articleStorage *storage.ArticlePostgresStorage,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}

	newsBot := botkit.New(botAPI, 2*cfg.IngestTimeout)
	newsBot.RegisterCmdView(
		"ingest",
		middleware.AdminOnly(botAPI, cfg.TelegramChannelID, bot.ViewCmdIngest(ingester)),
	)
	newsBot.RegisterCmdView("top", bot.ViewCmdTop(articleStorage, cfg.SiteBaseURL))
	newsBot.RegisterCmdView("start", bot.ViewCmdStart(newsBot.Commands()))

	runWorker(ctx, wg, "bot", newsBot.Run)

	if cfg.TelegramChannelID == 0 {
		log.Printf("[INFO] telegram channel id is not set, notifier is disabled")
		return nil
	}

	n := notifier.New(
		articleStorage,
		summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIPrompt),
		botAPI,
		cfg.NotificationInterval,
		cfg.NotificationWindow,
		cfg.TelegramChannelID,
		cfg.SiteBaseURL,
	)
	runWorker(ctx, wg, "notifier", n.Start)

	return nil
}

// Воркер работает до отмены контекста, остановку по отмене ошибкой не считаем
func runWorker(ctx context.Context, wg *sync.WaitGroup, name string, start func(context.Context) error) {
	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] %s stopped with error: %v", name, err)
				return
			}

			log.Printf("%s stopped", name)
		}
	}()
}
