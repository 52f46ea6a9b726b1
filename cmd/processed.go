package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jobAgent/internal/dedup"
)

func newProcessedCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "processed",
		Short: "Show job ids already handled by the crawler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			return writeProcessed(cmd.OutOrStdout(), store, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print ids as a JSON array")
	return cmd
}

func writeProcessed(w io.Writer, store dedup.Store, asJSON bool) error {
	ids := store.IDs()

	if asJSON {
		if ids == nil {
			ids = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ids)
	}

	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total: %d\n", store.Len())
	return err
}
