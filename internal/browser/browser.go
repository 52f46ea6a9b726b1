package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"jobAgent/internal/config"
)

func New(cfg Config, log *zap.Logger) *Session {
	// Установка дефолтных таймаутов
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if cfg.LoginTimeout == 0 {
		cfg.LoginTimeout = 60 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-US"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		cfg: cfg,
		log: log,
	}
}

// State возвращает текущее состояние сессии.
func (s *Session) State() State {
	return s.state.Current()
}

// getPage безопасно возвращает текущую страницу с read lock
func (s *Session) getPage(op string) (playwright.Page, error) {
	if s.state.Current() == StateClosed {
		return nil, &Error{Kind: KindClosed, Op: op}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.page == nil {
		return nil, &Error{Kind: KindNotLaunched, Op: op}
	}
	return s.page, nil
}

func (s *Session) getEnvMap() map[string]string {
	if s.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": s.cfg.Display,
		}
	}
	return nil
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// Launch запускает драйвер, Chromium, контекст и страницу. При ошибке на
// любом шаге уже захваченные ресурсы освобождаются.
func (s *Session) Launch(ctx context.Context) (err error) {
	if s.state.Current() == StateClosed {
		return &Error{Kind: KindClosed, Op: "launch"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.cfg.BrowsersPath != "" {
		os.Setenv("PLAYWRIGHT_BROWSERS_PATH", s.cfg.BrowsersPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil {
		return nil
	}

	defer func() {
		if err != nil {
			s.releaseLocked()
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("запуск playwright: %w", err)
	}
	s.pw = pw

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args:     []string{"--no-sandbox"},
	}
	if env := s.getEnvMap(); env != nil {
		opts.Env = env
	}

	br, err := pw.Chromium.Launch(opts)
	if err != nil {
		return fmt.Errorf("запуск chromium: %w", err)
	}
	s.browser = br

	bctx, err := br.NewContext(playwright.BrowserNewContextOptions{
		Locale: playwright.String(s.cfg.Locale),
	})
	if err != nil {
		return fmt.Errorf("создание контекста браузера: %w", err)
	}
	s.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("создание страницы: %w", err)
	}
	page.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))
	s.page = page

	s.log.Debug("Браузер запущен", zap.Bool("headless", s.cfg.Headless))
	return nil
}

// Login входит на сайт и ждет элемент, который виден только после входа.
// Таймаут ожидания - фатальная ошибка сессии, повторов здесь нет.
func (s *Session) Login(ctx context.Context, form LoginForm, creds config.Credentials) error {
	if s.state.Current() == StateAuthenticated {
		return nil
	}

	page, err := s.getPage("login")
	if err != nil {
		return err
	}

	if err := s.state.Transition("login", StateAuthenticating); err != nil {
		return err
	}

	if err := s.login(ctx, page, form, creds); err != nil {
		if terr := s.state.Transition("login", StateUnauthenticated); terr != nil {
			s.log.Warn("Не удалось откатить состояние сессии", zap.Error(terr))
		}
		return err
	}

	if err := s.state.Transition("login", StateAuthenticated); err != nil {
		return err
	}

	s.log.Info("Вход выполнен", zap.String("url", page.URL()))
	return nil
}

func (s *Session) login(ctx context.Context, page playwright.Page, form LoginForm, creds config.Credentials) error {
	if err := s.gotoURL(ctx, page, "login", form.URL); err != nil {
		return err
	}

	if err := s.WaitFor(ctx, form.EmailSelector, s.cfg.Timeout); err != nil {
		return err
	}

	if err := s.Fill(ctx, form.EmailSelector, creds.Email); err != nil {
		return err
	}
	if err := s.Fill(ctx, form.PasswordSelector, creds.Password); err != nil {
		return err
	}
	if err := s.Click(ctx, form.SubmitSelector); err != nil {
		return err
	}

	_, err := page.WaitForSelector(form.ConfirmSelector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(s.cfg.LoginTimeout),
	})
	if err != nil {
		return classifyError("login", form.ConfirmSelector, err, KindSelectorNotFound)
	}

	return nil
}

// Navigate загружает url и ждет готовности корня страницы.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page, err := s.getPage("navigate")
	if err != nil {
		return err
	}

	authenticated := s.state.Current() == StateAuthenticated
	if authenticated {
		if err := s.state.Transition("navigate", StateNavigating); err != nil {
			return err
		}
		defer func() {
			if terr := s.state.Transition("navigate", StateAuthenticated); terr != nil {
				s.log.Debug("Сессия закрыта во время навигации", zap.Error(terr))
			}
		}()
	}

	if err := s.gotoURL(ctx, page, "navigate", url); err != nil {
		return err
	}

	_, err = page.WaitForSelector("body", playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(s.cfg.NavigateTimeout),
	})
	return classifyError("navigate", "body", err, KindSelectorNotFound)
}

func (s *Session) gotoURL(ctx context.Context, page playwright.Page, op, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()

	// Channel для получения результата
	errChan := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   ms(s.cfg.NavigateTimeout),
		})
		errChan <- err
	}()

	select {
	case <-navCtx.Done():
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Op: op, Err: fmt.Errorf("navigate timeout after %v: %s", s.cfg.NavigateTimeout, url)}
		}
		return navCtx.Err()
	case err := <-errChan:
		return classifyError(op, "", err, KindUnknown)
	}
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	page, err := s.getPage("wait")
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	err = page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(timeout),
	})
	return classifyError("wait", selector, err, KindSelectorNotFound)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	page, err := s.getPage("click")
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.dismissOverlays(page)

	err = page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: ms(s.cfg.Timeout),
	})
	return classifyError("click", selector, err, KindSelectorNotFound)
}

func (s *Session) Fill(ctx context.Context, selector, text string) error {
	page, err := s.getPage("fill")
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = page.Locator(selector).First().Fill(text, playwright.LocatorFillOptions{
		Timeout: ms(s.cfg.Timeout),
	})
	return classifyError("fill", selector, err, KindSelectorNotFound)
}

func (s *Session) IsVisible(ctx context.Context, selector string) (bool, error) {
	page, err := s.getPage("visible")
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	visible, err := page.Locator(selector).First().IsVisible()
	if err != nil {
		return false, classifyError("visible", selector, err, KindUnknown)
	}
	return visible, nil
}

func (s *Session) InnerText(ctx context.Context, selector string) (string, error) {
	page, err := s.getPage("inner_text")
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := page.Locator(selector).First().InnerText(playwright.LocatorInnerTextOptions{
		Timeout: ms(s.cfg.Timeout),
	})
	if err != nil {
		return "", classifyError("inner_text", selector, err, KindSelectorNotFound)
	}
	return text, nil
}

// Attributes возвращает значение атрибута attr у всех элементов selector в порядке DOM.
func (s *Session) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	page, err := s.getPage("attributes")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := page.Locator(selector).EvaluateAll(
		"(els, attr) => els.map(e => e.getAttribute(attr) || '')", attr)
	if err != nil {
		return nil, classifyError("attributes", selector, err, KindUnknown)
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, &Error{Kind: KindUnknown, Op: "attributes", Selector: selector,
			Err: fmt.Errorf("неожиданный результат %T", raw)}
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		if v, ok := item.(string); ok && v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

func (s *Session) URL() string {
	page, err := s.getPage("url")
	if err != nil {
		return ""
	}
	return page.URL()
}

// Pause - намеренная пауза, чтобы не провоцировать защиту сайта от автоматизации.
func (s *Session) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close освобождает браузер безусловно. Повторный вызов ничего не делает.
func (s *Session) Close() error {
	s.state.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

func (s *Session) releaseLocked() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие контекста: %w", err))
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие браузера: %w", err))
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("остановка playwright: %w", err))
		}
		s.pw = nil
	}
	s.page = nil

	return errors.Join(errs...)
}
