// Package cli - интерактивный чат с агентом в терминале.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"jobAgent/internal/cli/commands"
	"jobAgent/internal/cli/ui"
	"jobAgent/internal/logger"
)

type CLI struct {
	log         *logger.Zap
	out         io.Writer
	rl          *readline.Instance
	in          *bufio.Reader
	chatHandler *commands.ChatHandler
	runsHandler *commands.RunsHandler
}

// New создает REPL на stdin/stdout. journal может быть nil.
func New(agent commands.Replier, journal commands.RunJournal, log *logger.Zap) *CLI {
	c := newCLI(agent, journal, log, os.Stdin, os.Stdout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".job-agent-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Warn("Не удалось инициализировать readline, будет использован fallback режим", zap.Error(err))
	} else {
		c.rl = rl
		c.out = rl.Stdout()
		c.chatHandler = commands.NewChatHandler(agent, c.out)
		c.runsHandler = commands.NewRunsHandler(journal, c.out, log.Logger)
	}

	return c
}

func newCLI(agent commands.Replier, journal commands.RunJournal, log *logger.Zap, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		log:         log,
		out:         out,
		in:          bufio.NewReader(in),
		chatHandler: commands.NewChatHandler(agent, out),
		runsHandler: commands.NewRunsHandler(journal, out, log.Logger),
	}
}

func (c *CLI) readLine() (string, error) {
	if c.rl != nil {
		return c.rl.Readline()
	}
	// Fallback для работы без readline
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) closeReadline() {
	if c.rl != nil {
		c.rl.Close()
	}
}

// Run читает строки до exit, EOF или отмены ctx.
func (c *CLI) Run(ctx context.Context) {
	ui.PrintWelcome(c.out)
	defer c.closeReadline()

	for {
		select {
		case <-ctx.Done():
			io.WriteString(c.out, "\n"+ui.ColorCyan+ui.IconWave+" Получен сигнал завершения..."+ui.ColorReset+"\n")
			return
		default:
		}

		line, err := c.readLine()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return
			}
			continue
		} else if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !c.handleCommand(ctx, line) {
			return
		}
	}
}

// handleCommand возвращает false, когда пора выходить.
func (c *CLI) handleCommand(ctx context.Context, line string) bool {
	switch {
	case line == "exit":
		io.WriteString(c.out, ui.ColorCyan+ui.IconWave+" До свидания!"+ui.ColorReset+"\n")
		return false

	case line == "/start":
		c.chatHandler.Start()

	case line == "help":
		ui.PrintHelp(c.out)

	case line == "clear":
		ui.ClearScreen(c.out)

	case line == "runs":
		c.runsHandler.List(ctx)

	case strings.HasPrefix(line, "run "):
		c.runsHandler.Show(ctx, strings.TrimSpace(strings.TrimPrefix(line, "run ")))

	default:
		c.chatHandler.Ask(ctx, line)
	}
	return true
}
