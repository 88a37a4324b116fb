package main

import (
	"document-archive/internal/cache"
	"document-archive/internal/db"
	"document-archive/internal/document"
	"fmt"

	"github.com/spf13/cobra"
)

func getReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuilds the full-text search index",
		Long:  "Rebuilds the search index at SEARCH_INDEX_PATH from the active documents. Stop the server first, the index is locked while open.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := db.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			index := openIndex(cfg, logger)
			if index == nil {
				return fmt.Errorf("search index %s could not be opened", cfg.SearchIndexPath)
			}
			defer index.Close()

			service := document.NewService(document.NewRepository(gdb), cache.New(nil, logger), cfg.CacheTTL, index, nil, nil, logger)
			n, err := service.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents\n", n)
			return nil
		},
	}
}
