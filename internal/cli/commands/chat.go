package commands

import (
	"context"
	"fmt"
	"io"

	"jobAgent/internal/cli/ui"
)

// Greeting - ответ на /start.
const Greeting = "Hi! Send me a message and I will answer, searching the web when needed."

type Replier interface {
	Reply(ctx context.Context, text string) string
}

// ChatHandler пересылает сообщения агенту
type ChatHandler struct {
	agent Replier
	out   io.Writer
}

func NewChatHandler(agent Replier, out io.Writer) *ChatHandler {
	return &ChatHandler{agent: agent, out: out}
}

func (h *ChatHandler) Start() {
	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconChat+" "+Greeting+ui.ColorReset)
}

// Ask отправляет сообщение и печатает ответ
func (h *ChatHandler) Ask(ctx context.Context, text string) {
	fmt.Fprintln(h.out, ui.ColorGray+ui.IconClock+" Думаю..."+ui.ColorReset)
	reply := h.agent.Reply(ctx, text)
	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconRobot+ui.ColorReset+" "+reply)
	fmt.Fprintln(h.out)
}
