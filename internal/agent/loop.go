package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"jobAgent/internal/llm"
	"jobAgent/internal/logger"
)

// New создает цикл. Отрицательный MaxTurns трактуется как отсутствие ограничения.
func New(model llm.ChatModel, tools ToolExecutor, log *logger.Zap, cfg Config) *Loop {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxTurns < 0 {
		cfg.MaxTurns = 0
	}

	return &Loop{
		model: model,
		tools: tools,
		log:   log,
		cfg:   cfg,
	}
}

// Respond возвращает финальный текст модели на сообщение пользователя.
func (l *Loop) Respond(ctx context.Context, text string) (string, error) {
	conversation, err := l.Run(ctx, text)
	if err != nil {
		return "", err
	}
	return conversation[len(conversation)-1].Content, nil
}

// Reply - граница для ботов и других внешних интерфейсов: ошибки логируются,
// пользователь получает GenericErrorReply.
func (l *Loop) Reply(ctx context.Context, text string) string {
	answer, err := l.Respond(ctx, text)
	if err != nil {
		l.log.Error("Ошибка обработки сообщения", zap.Error(err))
		return GenericErrorReply
	}
	return answer
}

// Run ведет диалог и возвращает полную историю. Последнее сообщение - ответ
// ассистента без вызовов инструментов.
func (l *Loop) Run(ctx context.Context, text string) ([]llm.Message, error) {
	conversation := []llm.Message{llm.UserMessage(text)}

	var defs []llm.ToolDefinition
	if l.tools != nil {
		defs = l.tools.Definitions()
	}

	for turn := 1; ; turn++ {
		if err := ctx.Err(); err != nil {
			return conversation, err
		}

		reply, err := l.model.Chat(ctx, conversation, defs)
		if err != nil {
			return conversation, fmt.Errorf("turn %d: %w", turn, err)
		}
		reply.Role = llm.RoleAssistant
		conversation = append(conversation, reply)

		if len(reply.ToolCalls) == 0 {
			l.log.Debug("Финальный ответ модели", zap.Int("turn", turn))
			return conversation, nil
		}

		if l.cfg.MaxTurns > 0 && turn >= l.cfg.MaxTurns {
			l.log.Warn("Превышен лимит обращений к модели",
				zap.Int("turn", turn),
				zap.Int("max_turns", l.cfg.MaxTurns))
			return conversation, fmt.Errorf("%w: %d", ErrTurnLimit, l.cfg.MaxTurns)
		}

		for _, call := range reply.ToolCalls {
			result, err := l.execute(ctx, call)
			if err != nil {
				return conversation, fmt.Errorf("turn %d: %w", turn, err)
			}

			l.log.Debug("Результат инструмента",
				zap.Int("turn", turn),
				zap.String("tool", call.Name),
				zap.Int("result_len", len(result)))
			conversation = append(conversation, llm.ToolResultMessage(call, result))
		}
	}
}

func (l *Loop) execute(ctx context.Context, call llm.ToolCall) (string, error) {
	if l.tools == nil {
		return "", fmt.Errorf("tool %q requested but no tools are configured", call.Name)
	}

	result, err := l.tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		return "", err
	}
	return stringify(result), nil
}

// stringify превращает результат инструмента в текст для модели.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
