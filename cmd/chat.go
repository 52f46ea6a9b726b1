package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobAgent/internal/cli"
	"jobAgent/internal/cli/commands"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with the agent in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.cfg.RequireAgent(); err != nil {
				a.log.Error("Конфигурация неполная", zap.Error(err))
				return err
			}
			if err := a.openJournal(); err != nil {
				return err
			}

			loop, err := a.newAgent()
			if err != nil {
				return err
			}

			var journal commands.RunJournal
			if a.journal != nil {
				journal = a.journal
			}

			cli.New(loop, journal, a.log).Run(cmd.Context())
			return nil
		},
	}
}
