package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobagent",
		Short:         "Job board crawler with a tool-calling chat agent",
		Long:          "jobagent logs into djinni.co, walks the job board, applies to new postings with a drafted motivation letter, and answers chat messages using an LLM with web search.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCrawlCmd(),
		newChatCmd(),
		newServeCmd(),
		newProcessedCmd(),
	)

	return rootCmd
}
