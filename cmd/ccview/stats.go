package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/render"
	"github.com/ccview/ccview/internal/session"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [session-id | path]",
		Short: "Show token, tool and timing statistics for a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			fi, err := resolveSession(cfg, arg)
			if err != nil {
				return err
			}

			conv, err := session.Load(fi.Path)
			if err != nil {
				return err
			}
			totals := session.Aggregate(conv.Turns)

			summary, err := session.Summarize(fi.Path, session.SummarizeOptions{Workspace: fi.Workspace})
			if err != nil {
				return err
			}

			fmt.Print(render.Stats(summary, totals))
			return nil
		},
	}
	return cmd
}
