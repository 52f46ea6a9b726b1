// Package llm предоставляет клиент чат-модели с поддержкой вызова инструментов.
// Протокол - chat completions в формате OpenAI, поэтому подходит и OpenAI,
// и любой совместимый endpoint (например, Ollama /v1).
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message - одно сообщение диалога. Набор заполненных полей зависит от роли:
// у assistant могут быть ToolCalls, у tool - ToolName и ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolName   string
	ToolCallID string
}

// ToolCall - запрос модели выполнить инструмент.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition - схема инструмента, которая отправляется модели.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Definition
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// ToolResultMessage формирует ответ инструмента, помеченный его именем.
func ToolResultMessage(call ToolCall, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolName:   call.Name,
		ToolCallID: call.ID,
	}
}

// ChatModel отправляет историю и схемы инструментов, возвращает одно сообщение ассистента.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error)
}

// RequestLog - запись о запросе к модели для журнала.
type RequestLog struct {
	Role       string
	Prompt     string
	Response   string
	Model      string
	TokensUsed int
}

// RequestLogger сохраняет запросы к LLM (например, в базу данных).
type RequestLogger interface {
	LogLLMRequest(ctx context.Context, entry RequestLog) error
}
