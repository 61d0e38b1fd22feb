package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ccview/ccview/internal/session"
)

// Document renders the whole conversation as one text artifact. Output
// is byte-identical for the same conversation and options (the header
// timestamp comes from opts.Now).
func Document(conv *session.Conversation, opts Options) string {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Claude Code Session: %s\n\n", conv.SessionID)
	fmt.Fprintf(&b, "**Session File:** `%s`\n", conv.FilePath)
	fmt.Fprintf(&b, "**Messages:** %d\n", conv.MessageCount())
	if conv.Cwd != "" {
		fmt.Fprintf(&b, "**Directory:** `%s`\n", conv.Cwd)
	}
	if conv.Summary != "" {
		fmt.Fprintf(&b, "**Summary:** %s\n", conv.Summary)
	}
	fmt.Fprintf(&b, "**Generated:** %s\n", now().UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("\n---\n\n")

	for i := range conv.Turns {
		for _, line := range turnLines(i, &conv.Turns[i], opts) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if n := len(conv.Faults); n > 0 {
		fmt.Fprintf(&b, "---\n\n_%d undecodable line(s) skipped._\n", n)
	}
	return b.String()
}
