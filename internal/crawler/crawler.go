package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobAgent/internal/browser"
	"jobAgent/internal/dedup"
	"jobAgent/internal/llm"
)

type Config struct {
	MaxPages int
	DryRun   bool
}

type Crawler struct {
	board   Board
	applier *Applier
	store   dedup.Store
	journal Journal
	cfg     Config
	log     *zap.Logger
	now     func() time.Time
}

// New создает краулер. journal может быть nil.
func New(board Board, applier *Applier, store dedup.Store, journal Journal, cfg Config, log *zap.Logger) *Crawler {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if journal == nil {
		journal = nopJournal{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Crawler{
		board:   board,
		applier: applier,
		store:   store,
		journal: journal,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// Run выполняет один обход: вход, страницы доски по порядку, обработка новых вакансий.
// Вакансия попадает в хранилище только после успешной обработки и сразу сохраняется.
// Ошибка отдельной вакансии не прерывает обход, ошибки входа, доски и хранилища прерывают.
func (c *Crawler) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:   uuid.NewString(),
		Started: c.now(),
	}
	log := c.log.With(zap.String("run_id", res.RunID))

	if err := c.journal.StartRun(ctx, res.RunID, c.cfg.DryRun); err != nil {
		log.Warn("Не удалось записать начало запуска", zap.Error(err))
	}

	err := c.run(ctx, log, &res)
	res.Finished = c.now()

	if jerr := c.journal.FinishRun(context.WithoutCancel(ctx), res, err); jerr != nil {
		log.Warn("Не удалось записать итог запуска", zap.Error(jerr))
	}

	fields := []zap.Field{
		zap.Int("pages", res.Pages),
		zap.Int("seen", res.Seen),
		zap.Int("skipped", res.Skipped),
		zap.Int("handled", res.Handled),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Finished.Sub(res.Started)),
	}
	if err != nil {
		log.Error("Обход прерван", append(fields, zap.Error(err))...)
		return res, err
	}
	log.Info("Обход завершен", fields...)
	return res, nil
}

func (c *Crawler) run(ctx context.Context, log *zap.Logger, res *Result) error {
	if err := c.board.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	seen := make(map[string]struct{})

	for page := 1; page <= c.cfg.MaxPages; page++ {
		ids, err := c.board.OpenBoard(ctx, page)
		if err != nil {
			return fmt.Errorf("open board page %d: %w", page, err)
		}
		if len(ids) == 0 {
			log.Info("Вакансий на странице нет, обход страниц завершен", zap.Int("page", page))
			break
		}
		res.Pages++
		log.Info("Страница доски открыта", zap.Int("page", page), zap.Int("jobs", len(ids)))

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			res.Seen++

			if c.store.Contains(id) {
				res.Skipped++
				log.Debug("Вакансия уже обработана", zap.String("job_id", id))
				continue
			}

			if err := c.handle(ctx, log, res, id); err != nil {
				return err
			}

			if err := c.board.Restore(ctx, page); err != nil {
				return fmt.Errorf("restore board page %d: %w", page, err)
			}
		}
	}

	return nil
}

// handle возвращает ошибку только если обход нужно прервать.
func (c *Crawler) handle(ctx context.Context, log *zap.Logger, res *Result, id string) error {
	outcome, err := c.applier.Apply(ctx, id)
	if err != nil {
		if abortsRun(err) {
			return err
		}
		res.Failed++
		log.Warn("Ошибка обработки вакансии, пропускаем", zap.String("job_id", id), zap.Error(err))
		return nil
	}

	c.store.Add(id)
	if err := c.store.Persist(); err != nil {
		return fmt.Errorf("persist processed jobs: %w", err)
	}
	res.Handled++

	if err := c.journal.RecordApplication(ctx, res.RunID, outcome); err != nil {
		log.Warn("Не удалось записать отклик", zap.String("job_id", id), zap.Error(err))
	}
	return nil
}

// abortsRun: сессия браузера потеряна, контекст отменен или исчерпан лимит
// модели. Лимит не восстановится до конца обхода.
func abortsRun(err error) bool {
	return browser.IsFatal(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, llm.ErrRateLimited)
}
