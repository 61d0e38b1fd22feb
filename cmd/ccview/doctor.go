package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/index"
	"github.com/ccview/ccview/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify the projects root, cache DB, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Projects Root ===")
			checkDir("Claude", cfg.ClaudeRoot)

			fmt.Println("\n=== File Scan ===")
			files, err := scan.Root(cfg.ClaudeRoot, "")
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				workspaces := make(map[string]struct{})
				for _, f := range files {
					workspaces[f.Workspace] = struct{}{}
				}
				fmt.Printf("  Session files: %d\n", len(files))
				fmt.Printf("  Workspaces:    %d\n", len(workspaces))
			}

			fmt.Println("\n=== Cache ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'ccview index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			fmt.Printf("  Cached sessions: %d\n", sessionCount)

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
