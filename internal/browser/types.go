package browser

import (
	"context"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Page - набор примитивов над открытой страницей, которыми пользуется
// адаптер сайта. Session реализует его поверх playwright.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	IsVisible(ctx context.Context, selector string) (bool, error)
	InnerText(ctx context.Context, selector string) (string, error)
	Attributes(ctx context.Context, selector, attr string) ([]string, error)
	URL() string
	Pause(ctx context.Context, d time.Duration) error
}

// LoginForm описывает страницу входа конкретного сайта.
type LoginForm struct {
	URL              string
	EmailSelector    string
	PasswordSelector string
	SubmitSelector   string
	// ConfirmSelector появляется только у залогиненного пользователя.
	ConfirmSelector string
}

type Config struct {
	Headless        bool
	BrowsersPath    string
	Display         string
	Locale          string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	LoginTimeout    time.Duration
}

// Session владеет одним браузером, одним контекстом и одной страницей.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	log     *zap.Logger
	state   stateMachine
	mu      sync.RWMutex
}

var _ Page = (*Session)(nil)
