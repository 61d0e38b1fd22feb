package main

import (
	"fmt"
	"os"

	"github.com/ccview/ccview/internal/config"
	"github.com/ccview/ccview/internal/scan"
)

// resolveSession turns a session id, a file path, or "" (most recent)
// into the log file to operate on.
func resolveSession(cfg *config.Config, arg string) (scan.FileInfo, error) {
	if arg != "" {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return scan.FileInfo{Path: arg, Mtime: info.ModTime(), Size: info.Size()}, nil
		}
	}

	files, err := scan.Root(cfg.ClaudeRoot, "")
	if err != nil {
		return scan.FileInfo{}, fmt.Errorf("scan %s: %w", cfg.ClaudeRoot, err)
	}
	if len(files) == 0 {
		return scan.FileInfo{}, fmt.Errorf("no session files under %s", cfg.ClaudeRoot)
	}

	if arg == "" {
		recent := files[0]
		for _, fi := range files[1:] {
			if fi.Mtime.After(recent.Mtime) {
				recent = fi
			}
		}
		return recent, nil
	}

	for _, fi := range files {
		if sessionIDOf(fi) == arg {
			return fi, nil
		}
	}
	return scan.FileInfo{}, fmt.Errorf("session not found: %s", arg)
}
