package main

import (
	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/index"
	"github.com/ccview/ccview/internal/session"
	"github.com/ccview/ccview/internal/tui"
)

func browseCmd() *cobra.Command {
	var workspace string
	var all bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse sessions interactively",
		Long:  `Opens a TUI panel listing sessions newest first. Type to filter by id, description or workspace; Enter copies the resume command.`,
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

			// best effort refresh; a stale cache still browses
			index.IndexAll(db, cfg.ClaudeRoot)

			summaries, err := db.ListSummaries(all)
			if err != nil {
				return err
			}
			if workspace != "" {
				var kept []session.Summary
				for _, s := range summaries {
					if s.Workspace == workspace {
						kept = append(kept, s)
					}
				}
				summaries = kept
			}
			session.SortByModified(summaries)

			return tui.Run(summaries, tui.Options{
				Truncate:     cfg.Truncate,
				LargeSession: cfg.LargeSession,
			})
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Only sessions from this workspace")
	cmd.Flags().BoolVar(&all, "all", false, "Include sub-agent sessions")

	return cmd
}
