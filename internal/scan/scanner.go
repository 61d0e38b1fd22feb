// Package scan enumerates session log files under the Claude projects
// root, one workspace directory per project.
package scan

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type FileInfo struct {
	Path      string
	Workspace string // directory label under the projects root
	Mtime     time.Time
	Size      int64
}

// Root walks root (~/.claude/projects) and collects session files,
// skipping sub-agent directories and index files. workspace filters to
// one workspace directory when non-empty.
func Root(root, workspace string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if filepath.Base(path) == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		base := filepath.Base(path)
		if strings.Contains(base, "sessions-index") {
			return nil
		}
		if strings.HasPrefix(base, "agent-") {
			return nil
		}

		ws := workspaceLabel(root, path)
		if workspace != "" && ws != workspace {
			return nil
		}

		files = append(files, FileInfo{
			Path:      path,
			Workspace: ws,
			Mtime:     info.ModTime(),
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	return files, err
}

// workspaceLabel is the first path element under root.
func workspaceLabel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// Workspaces lists the workspace directory names under root.
func Workspaces(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
