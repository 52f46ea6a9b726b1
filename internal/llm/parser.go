package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrMalformedToolCall - модель прислала аргументы, которые не являются JSON-объектом.
var ErrMalformedToolCall = errors.New("malformed tool call")

func parseArguments(raw string) (map[string]any, error) {
	args := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}
	return args, nil
}

func parseToolCall(toolCall openai.ToolCall) (ToolCall, error) {
	args, err := parseArguments(toolCall.Function.Arguments)
	if err != nil {
		return ToolCall{}, fmt.Errorf("%s: %w", toolCall.Function.Name, err)
	}

	return ToolCall{
		ID:        toolCall.ID,
		Name:      toolCall.Function.Name,
		Arguments: args,
	}, nil
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) (Message, error) {
	msg := Message{
		Role:    RoleAssistant,
		Content: m.Content,
	}

	for _, tc := range m.ToolCalls {
		call, err := parseToolCall(tc)
		if err != nil {
			return Message{}, err
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}

	return msg, nil
}

func toOpenAIMessages(messages []Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, m := range messages {
		om := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}

		switch m.Role {
		case RoleAssistant:
			for _, call := range m.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("encode arguments of %s: %w", call.Name, err)
				}
				om.ToolCalls = append(om.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
		case RoleTool:
			om.Name = m.ToolName
			om.ToolCallID = m.ToolCallID
		}

		out = append(out, om)
	}

	return out, nil
}

func toOpenAITools(defs []ToolDefinition) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}

	tools := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		fn := &openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fn.Parameters = d.Parameters
		}
		tools = append(tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: fn,
		})
	}
	return tools
}

// renderPrompt превращает историю в текст для журнала запросов.
func renderPrompt(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(m.Role))
		if m.ToolName != "" {
			b.WriteString("(" + m.ToolName + ")")
		}
		b.WriteString(": ")
		b.WriteString(m.Content)
		for _, call := range m.ToolCalls {
			b.WriteString(fmt.Sprintf("\n-> %s %v", call.Name, call.Arguments))
		}
	}
	return b.String()
}
