package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the profile search index from the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.New(cfg.Data.StorePath(), log.Component("store").Logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := os.RemoveAll(cfg.Data.SearchPath()); err != nil {
			return fmt.Errorf("remove search index: %w", err)
		}
		index, err := search.NewProfileIndex(search.Options{
			DataPath: cfg.Data.SearchPath(),
			Logger:   log.Component("search").Logger,
		})
		if err != nil {
			return err
		}
		defer index.Close()
		st.SetSearchIndexer(index)

		n, err := st.ReindexProfiles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d profiles\n", n)
		return nil
	},
}
