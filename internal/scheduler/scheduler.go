package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

type Runner interface {
	Run(ctx context.Context) (model.IngestionRun, error)
}

type Options struct {
	// Расписание в формате cron или @every 30m
	Schedule string
	// Ограничение на один запуск, 0 - без ограничения
	Timeout time.Duration
	// Сразу выполнить один запуск, не дожидаясь расписания
	RunOnStart bool
}

// Периодический запуск загрузки статей.
// Если предыдущий запуск еще идет, очередной пропускается
type Scheduler struct {
	runner Runner
	opts   Options
	cron   *cron.Cron

	// Контекст Start, от него наследуются все запуски
	ctx context.Context
}

func New(runner Runner, opts Options) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.Default())

	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{runner: runner, opts: opts, cron: c, ctx: context.Background()}

	if _, err := c.AddFunc(opts.Schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", opts.Schedule, err)
	}

	return s, nil
}

// Start запускает расписание и блокируется до отмены контекста.
// Отмена контекста прерывает и уже идущий запуск
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if s.opts.RunOnStart {
		s.runOnce()
	}

	s.cron.Start()
	log.Printf("[INFO] ingestion scheduled: %s", s.opts.Schedule)

	<-ctx.Done()

	<-s.cron.Stop().Done()

	return ctx.Err()
}

func (s *Scheduler) runOnce() {
	ctx := s.ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	if _, err := s.runner.Run(ctx); err != nil {
		log.Printf("[ERROR] scheduled ingestion failed: %v", err)
	}
}
