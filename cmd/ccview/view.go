package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/render"
	"github.com/ccview/ccview/internal/session"
)

func viewCmd() *cobra.Command {
	var output string
	var toStdout bool
	var truncate, width int

	cmd := &cobra.Command{
		Use:   "view [session-id | path]",
		Short: "Export a session as a text document",
		Long:  `Renders a session log as a readable document. With no argument, exports the most recently modified session.`,
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

			if truncate <= 0 {
				truncate = cfg.Truncate
			}
			if toStdout && width == 0 {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width = w
				}
			}
			doc := render.Document(conv, render.Options{Truncate: truncate, Width: width})

			if toStdout {
				fmt.Print(doc)
				return nil
			}

			if output == "" {
				output = fmt.Sprintf("claude-session-%s.md", conv.SessionID)
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Printf("Exported to: %s\n", output)
			fmt.Printf("  Messages: %d\n", conv.MessageCount())
			if n := len(conv.Faults); n > 0 {
				fmt.Printf("  Skipped %d undecodable line(s)\n", n)
			}
			fmt.Printf("  Output size: %s\n", humanize.Bytes(uint64(len(doc))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print to stdout instead of a file")
	cmd.Flags().IntVar(&truncate, "truncate", 0, "Truncation threshold in characters")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")

	return cmd
}
