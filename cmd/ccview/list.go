package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/index"
	"github.com/ccview/ccview/internal/scan"
	"github.com/ccview/ccview/internal/session"
)

func sessionIDOf(fi scan.FileInfo) string {
	return session.SessionIDForPath(fi.Path)
}

func listCmd() *cobra.Command {
	var workspace, filter string
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
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

			if _, err := index.IndexAll(db, cfg.ClaudeRoot); err != nil {
				return err
			}

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
			summaries = session.Filter(summaries, filter)
			session.SortByModified(summaries)
			if limit > 0 && len(summaries) > limit {
				summaries = summaries[:limit]
			}

			for i, s := range summaries {
				fmt.Printf("%d. %s\n", i+1, s.SessionID)
				if s.Workspace != "" {
					fmt.Printf("   Workspace: %s\n", s.Workspace)
				}
				fmt.Printf("   Modified: %s\n", s.Modified.Format("2006-01-02 15:04:05"))
				fmt.Printf("   Size: %s  Messages: %d  Tokens: %s\n",
					humanize.Bytes(uint64(s.Size)), s.MessageCount,
					humanize.Comma(s.Tokens.Input+s.Tokens.Output))
				if s.Description != "" {
					fmt.Printf("   %s\n", s.Description)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Only sessions from this workspace")
	cmd.Flags().StringVar(&filter, "filter", "", "Substring filter on id, description or workspace")
	cmd.Flags().IntVar(&limit, "limit", 10, "Max sessions to list (0 = no limit)")
	cmd.Flags().BoolVar(&all, "all", false, "Include sub-agent sessions")

	return cmd
}
