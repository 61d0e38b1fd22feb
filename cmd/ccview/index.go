package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/index"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Refresh the session summary cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := index.IndexAll(db, cfg.ClaudeRoot)
			if err != nil {
				return err
			}
			fmt.Println(stats)
			return nil
		},
	}
	return cmd
}
