package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ccview/ccview/internal/render"
	"github.com/ccview/ccview/internal/session"
)

const progressTickInterval = 100 * time.Millisecond

// previewJob tracks one background parse-and-render. Selecting another
// session cancels it; the renderer stops at the next row-group boundary
// and the partial output is dropped.
type previewJob struct {
	sessionID string
	cancel    context.CancelFunc
	done      atomic.Int64
	total     atomic.Int64
}

// previewMsg is sent when an async preview render finishes, is
// cancelled, or fails.
type previewMsg struct {
	sessionID string
	content   string
	stats     string
	canceled  bool
	err       error
}

type progressTickMsg struct {
	sessionID string
}

// loadPreviewCmd parses the session file and renders it row group by
// row group under the job's context.
func loadPreviewCmd(ctx context.Context, job *previewJob, filePath string, width, truncate, largeSession int) tea.Cmd {
	return func() tea.Msg {
		conv, err := session.Load(filePath)
		if err != nil {
			return previewMsg{sessionID: job.sessionID, err: err}
		}

		opts := render.RowOptions{
			Options:      render.Options{Truncate: truncate, Width: width},
			LargeSession: largeSession,
			OnProgress: func(done, total int) {
				job.done.Store(int64(done))
				job.total.Store(int64(total))
			},
		}

		var b strings.Builder
		writeHeader(&b, conv)
		_, err = render.Rows(ctx, conv.Turns, opts, func(g render.RowGroup) bool {
			for _, line := range g.Lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
			return true
		})
		if errors.Is(err, context.Canceled) {
			return previewMsg{sessionID: job.sessionID, canceled: true}
		}
		if err != nil {
			return previewMsg{sessionID: job.sessionID, err: err}
		}

		totals := session.Aggregate(conv.Turns)
		summary := &session.Summary{
			SessionID: conv.SessionID,
			Cwd:       conv.Cwd,
			Model:     modelOf(totals),
		}
		return previewMsg{
			sessionID: job.sessionID,
			content:   b.String(),
			stats:     render.Stats(summary, totals),
		}
	}
}

func writeHeader(b *strings.Builder, conv *session.Conversation) {
	fmt.Fprintf(b, "Session: %s\n", conv.SessionID)
	fmt.Fprintf(b, "Messages: %d", conv.MessageCount())
	if n := len(conv.Faults); n > 0 {
		fmt.Fprintf(b, "  (%d bad lines skipped)", n)
	}
	b.WriteString("\n\n")
}

// modelOf picks an arbitrary-but-stable model name for the stats header.
func modelOf(totals session.UsageTotals) string {
	var names []string
	for name := range totals.ByModel {
		if name != session.UnknownModel {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	min := names[0]
	for _, n := range names[1:] {
		if n < min {
			min = n
		}
	}
	return min
}

func progressTick(sessionID string) tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{sessionID: sessionID}
	})
}

func newViewport(width, height int) viewport.Model {
	return viewport.New(width, height)
}
