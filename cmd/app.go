package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobAgent/internal/agent"
	"jobAgent/internal/config"
	"jobAgent/internal/database"
	"jobAgent/internal/dedup"
	"jobAgent/internal/llm"
	"jobAgent/internal/logger"
	"jobAgent/internal/migrations"
	"jobAgent/internal/search"
	"jobAgent/internal/tools"
)

// app держит общие зависимости подкоманд.
type app struct {
	cfg     *config.Cfg
	log     *logger.Zap
	db      *database.DB
	journal *database.JournalRepository
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log}, nil
}

// openJournal подключает журнал в PostgreSQL, если задан DB_HOST.
func (a *app) openJournal() error {
	if !a.cfg.Database.Enabled() {
		a.log.Debug("DB_HOST не задан, журнал в БД выключен")
		return nil
	}

	if err := migrations.Run(a.cfg, a.log); err != nil {
		return fmt.Errorf("ошибка миграций: %w", err)
	}

	db, err := database.New(a.cfg.Database, a.log)
	if err != nil {
		return err
	}
	a.db = db
	a.journal = database.NewJournalRepository(db.DB)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close(a.log)
	}
	_ = a.log.Sync()
}

func (a *app) secrets() []string {
	return []string{
		a.cfg.LLM.APIKey,
		a.cfg.Search.APIKey,
		a.cfg.Site.Credentials.Password,
		a.cfg.Database.Password,
		a.cfg.Redis.Password,
	}
}

// newAgent собирает диалоговый цикл: модель, веб-поиск и реестр инструментов.
func (a *app) newAgent() (*agent.Loop, error) {
	var requests llm.RequestLogger
	if a.journal != nil {
		requests = a.journal
	}

	model := llm.NewClient(llm.Config{
		APIKey:            a.cfg.LLM.APIKey,
		BaseURL:           a.cfg.LLM.BaseURL,
		Model:             a.cfg.LLM.Model,
		MaxTokens:         a.cfg.LLM.MaxTokens,
		RequestsPerMinute: a.cfg.LLM.RequestsPerMinute,
		TokensPerHour:     a.cfg.LLM.TokensPerHour,
		Secrets:           a.secrets(),
	}, a.log.Named("llm"), requests)

	searcher := search.New(searchConfig(a.cfg.Search), a.log.Named("search"))

	webSearch, err := tools.WebSearch(searcher)
	if err != nil {
		return nil, err
	}
	registry := tools.NewRegistry(a.log.Named("tools"))
	if err := registry.Register(webSearch); err != nil {
		return nil, err
	}

	return agent.New(model, registry, a.log, agent.Config{MaxTurns: a.cfg.Agent.MaxTurns}), nil
}

// openStore открывает хранилище обработанных вакансий. close нужно вызвать всегда.
func (a *app) openStore(ctx context.Context) (store dedup.Store, closeFn func(), err error) {
	switch a.cfg.Crawler.DedupBackend {
	case "", "file":
		fs, err := dedup.OpenFile(a.cfg.Crawler.ProcessedFile)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{a.cfg.Redis.Addr},
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		rs, err := dedup.OpenRedis(ctx, client, a.cfg.Redis.Key)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return rs, func() {
			if err := client.Close(); err != nil {
				a.log.Warn("Ошибка закрытия Redis", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("неизвестный DEDUP_BACKEND %q (file или redis)", a.cfg.Crawler.DedupBackend)
	}
}

func searchConfig(cfg config.Search) search.Config {
	return search.Config{
		URL:          cfg.URL,
		APIKey:       cfg.APIKey,
		MaxResults:   cfg.MaxResults,
		Timeout:      cfg.Timeout,
		Retries:      cfg.Retries,
		RetryDelay:   cfg.RetryDelay,
		MaxFailures:  cfg.MaxFailures,
		ResetTimeout: cfg.ResetTimeout,
	}
}
