package djinni

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobAgent/internal/browser"
	"jobAgent/internal/config"
	"jobAgent/internal/crawler"
)

// Authenticator выполняет вход через форму. Реализуется browser.Session.
type Authenticator interface {
	Login(ctx context.Context, form browser.LoginForm, creds config.Credentials) error
}

type Config struct {
	BaseURL     string
	Credentials config.Credentials
	Selectors   Selectors
	// BoardTimeout ограничивает ожидание списка вакансий.
	BoardTimeout  time.Duration
	DetailTimeout time.Duration
	SettleDelay   time.Duration
	SubmitDelay   time.Duration
}

// Board работает с одной страницей браузера: доска, карточка вакансии и
// снова доска.
type Board struct {
	page browser.Page
	auth Authenticator
	cfg  Config
	log  *zap.Logger
}

var _ crawler.Board = (*Board)(nil)

func New(page browser.Page, auth Authenticator, cfg Config, log *zap.Logger) *Board {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors
	}
	if cfg.BoardTimeout <= 0 {
		cfg.BoardTimeout = 60 * time.Second
	}
	if cfg.DetailTimeout <= 0 {
		cfg.DetailTimeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Board{
		page: page,
		auth: auth,
		cfg:  cfg,
		log:  log,
	}
}

func (b *Board) Login(ctx context.Context) error {
	return b.auth.Login(ctx, LoginForm(b.cfg.BaseURL, b.cfg.Selectors), b.cfg.Credentials)
}

// OpenBoard открывает страницу n. Если на первой странице список не появился,
// возвращается ошибка таймаута; на следующих страницах это конец доски.
func (b *Board) OpenBoard(ctx context.Context, n int) ([]string, error) {
	url := BoardURL(b.cfg.BaseURL, n)
	if err := b.page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	if err := b.page.WaitFor(ctx, b.cfg.Selectors.JobItem, b.cfg.BoardTimeout); err != nil {
		if n > 1 && browser.IsTimeout(err) {
			return nil, nil
		}
		return nil, err
	}

	if err := b.page.Pause(ctx, b.cfg.SettleDelay); err != nil {
		return nil, err
	}

	raw, err := b.page.Attributes(ctx, b.cfg.Selectors.JobItem, "id")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw))
	for _, attr := range raw {
		id, ok := JobID(attr)
		if !ok {
			b.log.Debug("Пропущен элемент без id вакансии", zap.String("id_attr", attr))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *Board) OpenJob(ctx context.Context, id string) (crawler.JobPosting, error) {
	sel := b.cfg.Selectors

	if err := b.page.Click(ctx, sel.titleSelector(id)); err != nil {
		return crawler.JobPosting{}, err
	}
	if err := b.page.WaitFor(ctx, sel.Description, b.cfg.DetailTimeout); err != nil {
		return crawler.JobPosting{}, err
	}

	text, err := b.page.InnerText(ctx, sel.Description)
	if err != nil {
		return crawler.JobPosting{}, err
	}

	canApply, err := b.page.IsVisible(ctx, sel.ApplyToggle)
	if err != nil {
		return crawler.JobPosting{}, err
	}

	return crawler.JobPosting{
		ID:             id,
		Description:    text,
		HasApplyAction: canApply,
	}, nil
}

func (b *Board) OpenApplyForm(ctx context.Context) error {
	return b.page.Click(ctx, b.cfg.Selectors.ApplyToggle)
}

func (b *Board) MotivationVisible(ctx context.Context) (bool, error) {
	return b.page.IsVisible(ctx, b.cfg.Selectors.Motivation)
}

func (b *Board) FillMotivation(ctx context.Context, text string) error {
	return b.page.Fill(ctx, b.cfg.Selectors.Motivation, text)
}

func (b *Board) SubmitVisible(ctx context.Context) (bool, error) {
	return b.page.IsVisible(ctx, b.cfg.Selectors.Submit)
}

// Submit нажимает кнопку отклика и выжидает SubmitDelay, чтобы сайт обработал запрос.
func (b *Board) Submit(ctx context.Context) error {
	if err := b.page.Click(ctx, b.cfg.Selectors.Submit); err != nil {
		return err
	}
	return b.page.Pause(ctx, b.cfg.SubmitDelay)
}

func (b *Board) Restore(ctx context.Context, n int) error {
	url := BoardURL(b.cfg.BaseURL, n)
	if b.page.URL() == url {
		return nil
	}

	if err := b.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("back to board: %w", err)
	}
	return b.page.WaitFor(ctx, b.cfg.Selectors.JobItem, b.cfg.BoardTimeout)
}
