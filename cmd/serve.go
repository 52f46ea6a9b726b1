package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobAgent/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat agent and the run journal over HTTP",
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

			var runs server.RunLister
			if a.journal != nil {
				runs = a.journal
			}

			return server.New(a.cfg.Server, a.log, loop, runs).Run(cmd.Context())
		},
	}
}
