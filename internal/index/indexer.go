package index

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ccview/ccview/internal/scan"
	"github.com/ccview/ccview/internal/session"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll refreshes the summary cache from the files under root.
// Unchanged files (same mtime and size) are skipped; files are
// summarized concurrently since each one is independent.
func IndexAll(db *DB, root string) (Stats, error) {
	var stats Stats

	files, err := scan.Root(root, "")
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	seen := make(map[string]struct{})
	var todo []scan.FileInfo

	for _, fi := range files {
		id := session.SessionIDForPath(fi.Path)
		seen[id] = struct{}{}

		st, err := db.GetFileState(id)
		if err != nil {
			stats.Errors++
			continue
		}
		if st != nil && st.Mtime == fi.Mtime.Unix() && st.Size == fi.Size {
			stats.Skipped++
			continue
		}
		todo = append(todo, fi)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, fi := range todo {
		fi := fi
		g.Go(func() error {
			s, err := session.Summarize(fi.Path, session.SummarizeOptions{Workspace: fi.Workspace})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Errors++
				fmt.Fprintf(os.Stderr, "  WARN: summarize %s: %v\n", fi.Path, err)
				return nil
			}
			if s.MessageCount == 0 {
				// not listed, and forget any stale cache entry
				delete(seen, s.SessionID)
				return nil
			}
			if err := db.UpsertSummary(s); err != nil {
				stats.Errors++
				fmt.Fprintf(os.Stderr, "  WARN: index %s: %v\n", fi.Path, err)
				return nil
			}
			stats.Updated++
			return nil
		})
	}
	g.Wait()

	pruned, err := prune(db, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// prune drops cache entries whose files no longer exist.
func prune(db *DB, seen map[string]struct{}) (int, error) {
	all, err := db.AllSessionIDs()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for id := range all {
		if _, ok := seen[id]; !ok {
			if err := db.DeleteSession(id); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
