package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "ccview",
		Short:   "ccview - browse, export and resume Claude Code session logs",
		Version: version,
	}

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
