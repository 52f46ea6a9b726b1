package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTimeout
	KindSelectorNotFound
	KindNotLaunched
	KindClosed
	KindInvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindSelectorNotFound:
		return "selector_not_found"
	case KindNotLaunched:
		return "not_launched"
	case KindClosed:
		return "closed"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "unknown"
	}
}

// Error - типизированная ошибка браузерной операции.
type Error struct {
	Kind     ErrorKind
	Op       string
	Selector string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("browser %s: %s", e.Op, e.Kind)
	if e.Selector != "" {
		msg += fmt.Sprintf(" (%s)", e.Selector)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classifyError переводит ошибку playwright в *Error. fallback используется,
// когда ошибка не таймаут и не закрытая страница.
func classifyError(op, selector string, err error, fallback ErrorKind) error {
	if err == nil {
		return nil
	}

	var be *Error
	if errors.As(err, &be) {
		return err
	}

	kind := fallback
	switch {
	case errors.Is(err, playwright.ErrTimeout):
		kind = KindTimeout
	case errors.Is(err, playwright.ErrTargetClosed):
		kind = KindClosed
	}

	return &Error{Kind: kind, Op: op, Selector: selector, Err: err}
}

// KindOf возвращает вид ошибки или KindUnknown для чужих ошибок.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsFatal сообщает, что сессией больше нельзя пользоваться.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindClosed, KindNotLaunched:
		return true
	default:
		return false
	}
}
