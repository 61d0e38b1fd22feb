package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/index"
	"github.com/ccview/ccview/internal/resume"
	"github.com/ccview/ccview/internal/session"
)

func resumeCmd() *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Copy (or run) the command that resumes a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !resume.ValidID(id) {
				fmt.Fprintf(os.Stderr, "warning: %q does not look like a session UUID\n", id)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cwd := lookupCwd(cfg, id)
			if execute {
				return resume.Exec(id, cwd)
			}
			return resume.Copy(id, cwd)
		},
	}

	cmd.Flags().BoolVar(&execute, "exec", false, "Run the resume command instead of copying it")

	return cmd
}

// lookupCwd finds the session's working directory: from the cache if
// present, otherwise with a shallow parse of the log.
func lookupCwd(cfg *config.Config, id string) string {
	if db, err := index.OpenDB(cfg.DBPath); err == nil {
		defer db.Close()
		if s, err := db.GetSummary(id); err == nil && s != nil {
			return s.Cwd
		}
	}

	fi, err := resolveSession(cfg, id)
	if err != nil {
		return ""
	}
	s, err := session.Summarize(fi.Path, session.SummarizeOptions{Workspace: fi.Workspace})
	if err != nil {
		return ""
	}
	return s.Cwd
}
