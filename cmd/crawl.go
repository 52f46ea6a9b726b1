package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobAgent/internal/browser"
	"jobAgent/internal/crawler"
	"jobAgent/internal/site/djinni"
)

func newCrawlCmd() *cobra.Command {
	var (
		dryRun   bool
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Log in, walk the job board and apply to new postings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg
			if cmd.Flags().Changed("dry-run") {
				cfg.Crawler.DryRun = dryRun
			}
			if cmd.Flags().Changed("max-pages") {
				cfg.Crawler.MaxPages = maxPages
			}

			if err := cfg.RequireCrawler(); err != nil {
				a.log.Error("Конфигурация неполная", zap.Error(err))
				return err
			}

			ctx := cmd.Context()

			if err := a.openJournal(); err != nil {
				return err
			}

			loop, err := a.newAgent()
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			session := browser.New(browser.Config{
				Headless:        cfg.Browser.Headless,
				BrowsersPath:    cfg.Browser.BrowsersPath,
				Display:         cfg.Browser.Display,
				Locale:          cfg.Browser.Locale,
				Timeout:         cfg.Browser.Timeout,
				NavigateTimeout: cfg.Browser.NavigateTimeout,
				LoginTimeout:    cfg.Browser.LoginTimeout,
			}, a.log.Named("browser"))
			defer func() {
				if err := session.Close(); err != nil {
					a.log.Warn("Ошибка закрытия браузера", zap.Error(err))
				}
			}()

			if err := session.Launch(ctx); err != nil {
				return err
			}

			board := djinni.New(session, session, djinni.Config{
				BaseURL:       cfg.Site.BaseURL,
				Credentials:   cfg.Site.Credentials,
				BoardTimeout:  cfg.Browser.NavigateTimeout,
				DetailTimeout: cfg.Crawler.DetailTimeout,
				SettleDelay:   cfg.Crawler.SettleDelay,
				SubmitDelay:   cfg.Crawler.SubmitDelay,
			}, a.log.Named("djinni"))

			var journal crawler.Journal
			if a.journal != nil {
				journal = a.journal
			}

			applier := crawler.NewApplier(board, crawler.NewAgentDrafter(loop), cfg.Crawler.DryRun, a.log.Named("applier"))
			c := crawler.New(board, applier, store, journal, crawler.Config{
				MaxPages: cfg.Crawler.MaxPages,
				DryRun:   cfg.Crawler.DryRun,
			}, a.log.Named("crawler"))

			res, err := c.Run(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: pages=%d seen=%d skipped=%d handled=%d failed=%d\n",
				res.RunID, res.Pages, res.Seen, res.Skipped, res.Handled, res.Failed)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fill the form but do not submit (overrides CRAWLER_DRY_RUN)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 1, "board pages to walk (overrides CRAWLER_MAX_PAGES)")

	return cmd
}
