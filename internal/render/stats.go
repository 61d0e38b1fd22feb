package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ccview/ccview/internal/session"
)

// Stats renders session analytics: overview, token usage with per-model
// breakdown, tool counts, timeline. Maps are emitted in sorted order so
// the text is stable.
func Stats(s *session.Summary, totals session.UsageTotals) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session Analytics: %s\n\n", s.SessionID)

	b.WriteString("Overview\n")
	if s.Workspace != "" {
		fmt.Fprintf(&b, "  Workspace: %s\n", s.Workspace)
	}
	fmt.Fprintf(&b, "  Messages: %d\n", totals.Turns)
	fmt.Fprintf(&b, "  File Size: %s\n", humanize.Bytes(uint64(s.Size)))
	if s.Model != "" {
		fmt.Fprintf(&b, "  Model: %s\n", s.Model)
	}
	if s.Cwd != "" {
		fmt.Fprintf(&b, "  Working Dir: %s\n", s.Cwd)
	}
	b.WriteString("\n")

	b.WriteString("Token Usage\n")
	fmt.Fprintf(&b, "  Input Tokens: %s\n", humanize.Comma(totals.Tokens.Input))
	fmt.Fprintf(&b, "  Output Tokens: %s\n", humanize.Comma(totals.Tokens.Output))
	if totals.Tokens.CacheRead > 0 {
		fmt.Fprintf(&b, "  Cache Read: %s\n", humanize.Comma(totals.Tokens.CacheRead))
	}
	if totals.Tokens.CacheCreation > 0 {
		fmt.Fprintf(&b, "  Cache Create: %s\n", humanize.Comma(totals.Tokens.CacheCreation))
	}
	fmt.Fprintf(&b, "  Total: %s\n", humanize.Comma(totals.Tokens.Total()))

	if len(totals.ByModel) > 0 {
		b.WriteString("\nBy Model\n")
		for _, model := range sortedKeys(totals.ByModel) {
			tc := totals.ByModel[model]
			fmt.Fprintf(&b, "  %s: in=%s out=%s\n", model, humanize.Comma(tc.Input), humanize.Comma(tc.Output))
		}
	}

	if len(totals.ToolCalls) > 0 {
		b.WriteString("\nTool Usage\n")
		for _, tool := range sortedByCount(totals.ToolCalls) {
			fmt.Fprintf(&b, "  %s: %d\n", tool, totals.ToolCalls[tool])
		}
	}

	if d, ok := totals.Duration(); ok {
		b.WriteString("\nTimeline\n")
		fmt.Fprintf(&b, "  First Message: %s\n", totals.First.UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "  Last Message: %s\n", totals.Last.UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "  Duration: %s\n", d.Round(time.Second))
	} else {
		b.WriteString("\nTimeline\n  Duration: unavailable\n")
	}

	return b.String()
}

func sortedKeys(m map[string]session.TokenCounts) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedByCount orders tool names by descending count, ties by name.
func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
