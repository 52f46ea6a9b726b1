package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const draftPrompt = "Write a short and polite motivation message for the following job description:\n\n%s"

// Responder - диалоговый агент, которому поручается черновик письма.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

type AgentDrafter struct {
	agent Responder
}

func NewAgentDrafter(agent Responder) *AgentDrafter {
	return &AgentDrafter{agent: agent}
}

func (d *AgentDrafter) Draft(ctx context.Context, description string) (string, error) {
	text, err := d.agent.Respond(ctx, fmt.Sprintf(draftPrompt, description))
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("agent returned an empty motivation message")
	}
	return text, nil
}
