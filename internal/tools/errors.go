package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool - модель запросила инструмент, которого нет в реестре.
var ErrUnknownTool = errors.New("unknown tool")

type ErrorKind int

const (
	KindUnknownTool ErrorKind = iota
	KindFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownTool:
		return "unknown_tool"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind ErrorKind
	Tool string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool %q: %s: %v", e.Tool, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsUnknownTool(err error) bool {
	return errors.Is(err, ErrUnknownTool)
}

// IsFailure сообщает, что обработчик инструмента вернул ошибку.
func IsFailure(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == KindFailure
}
