// Package djinni - адаптер DOM сайта djinni.co для краулера.
package djinni

import (
	"fmt"
	"strings"

	"jobAgent/internal/browser"
)

const (
	DefaultBaseURL = "https://djinni.co"
	jobItemPrefix  = "job-item-"
)

// Selectors - CSS-селекторы страниц djinni. Внешний контракт сайта.
type Selectors struct {
	JobItem     string
	TitleLink   string
	Description string
	ApplyToggle string
	Motivation  string
	Submit      string

	LoginEmail    string
	LoginPassword string
	LoginSubmit   string
	// InboxLink виден только залогиненному пользователю.
	InboxLink string
}

var DefaultSelectors = Selectors{
	JobItem:     "[id^='job-item-']",
	TitleLink:   "a.job-item__title-link",
	Description: "div.job-post__description",
	ApplyToggle: "button.js-inbox-toggle-reply-form",
	Motivation:  "textarea#message",
	Submit:      "button#job_apply",

	LoginEmail:    "input[name='email']",
	LoginPassword: "input[name='password']",
	LoginSubmit:   "button[type='submit']",
	InboxLink:     "a[href='/my/inbox/']",
}

func LoginForm(baseURL string, sel Selectors) browser.LoginForm {
	return browser.LoginForm{
		URL:              strings.TrimRight(baseURL, "/") + "/login",
		EmailSelector:    sel.LoginEmail,
		PasswordSelector: sel.LoginPassword,
		SubmitSelector:   sel.LoginSubmit,
		ConfirmSelector:  sel.InboxLink,
	}
}

// BoardURL - адрес страницы n личной доски вакансий.
func BoardURL(baseURL string, n int) string {
	return fmt.Sprintf("%s/my/dashboard/?page=%d", strings.TrimRight(baseURL, "/"), n)
}

// JobID извлекает id вакансии из атрибута id элемента списка.
func JobID(elementID string) (string, bool) {
	id, ok := strings.CutPrefix(strings.TrimSpace(elementID), jobItemPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// titleSelector - ссылка на вакансию внутри ее элемента списка.
func (s Selectors) titleSelector(id string) string {
	return fmt.Sprintf("[id='%s%s'] %s", jobItemPrefix, id, s.TitleLink)
}
