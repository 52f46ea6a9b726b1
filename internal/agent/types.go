// Package agent реализует диалоговый цикл с вызовом инструментов: модель
// получает историю и схемы инструментов, запрашивает вызовы, получает их
// результаты и так до финального ответа.
package agent

import (
	"context"
	"errors"

	"jobAgent/internal/llm"
	"jobAgent/internal/logger"
)

// GenericErrorReply отправляется пользователю вместо подробностей ошибки.
const GenericErrorReply = "Sorry, something went wrong while processing your message."

// ErrTurnLimit - модель продолжает запрашивать инструменты после MaxTurns обращений.
var ErrTurnLimit = errors.New("agent turn limit exceeded")

// ToolExecutor - реестр инструментов с точки зрения цикла.
type ToolExecutor interface {
	Definitions() []llm.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// Config содержит конфигурацию цикла.
type Config struct {
	MaxTurns int // Максимум обращений к модели за одно сообщение, 0 - без ограничения
}

// Loop не хранит состояние между сообщениями: каждая история принадлежит одному вызову Respond.
type Loop struct {
	model llm.ChatModel
	tools ToolExecutor
	log   *logger.Zap
	cfg   Config
}
