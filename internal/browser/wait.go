package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// overlayCloseSelectors - кнопки закрытия cookie-баннеров и модальных окон,
// которые перекрывают элементы перед кликом.
var overlayCloseSelectors = []string{
	"[role='dialog'] button[aria-label*='close' i]",
	".modal button.close",
	".popup button.close",
	"[data-dismiss='modal']",
	"[data-bs-dismiss='modal']",
	".close-button",
	"[aria-label='Close']",
}

const overlaySettle = 300 * time.Millisecond

// dismissOverlays закрывает видимые оверлеи. Ошибки не важны: если закрыть
// не удалось, клик все равно будет выполнен и вернет свою ошибку.
func (s *Session) dismissOverlays(page playwright.Page) {
	for _, selector := range overlayCloseSelectors {
		buttons, err := page.Locator(selector).All()
		if err != nil {
			continue
		}

		for _, button := range buttons {
			visible, err := button.IsVisible()
			if err != nil || !visible {
				continue
			}

			if err := button.Click(playwright.LocatorClickOptions{Timeout: ms(2 * time.Second)}); err == nil {
				s.log.Debug("Закрыт оверлей", zap.String("selector", selector))
				page.WaitForTimeout(float64(overlaySettle.Milliseconds()))
			}
		}
	}
}
