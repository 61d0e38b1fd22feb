package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const descriptionLen = 200

// SessionIDForPath derives the session id from a log file's name. The
// id is fixed for the life of anything built from that file.
func SessionIDForPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}

// Summary is the lightweight per-file view used for listing, filtering
// and sorting without a full parse.
type Summary struct {
	SessionID    string
	FilePath     string
	Workspace    string
	Cwd          string
	Description  string
	MessageCount int
	Size         int64
	Modified     time.Time
	First        time.Time
	Last         time.Time
	Model        string
	Tokens       TokenCounts
	ToolCalls    map[string]int
	SubAgent     bool
}

// SummarizeOptions tune the shallow pass.
type SummarizeOptions struct {
	// Workspace is an optional directory label prefixed to descriptions
	// and matched by Filter.
	Workspace string
	// SubAgent flags a session as sub-agent/internal from a record-level
	// marker. Nil uses the sidechain marker.
	SubAgent func(*RawRecord) bool
}

// Summarize performs one shallow pass over a session file: message
// count, first user text, timestamps, token and tool totals. It decodes
// records but never assembles or renders them.
func Summarize(path string, opts SummarizeOptions) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat session: %w", err)
	}

	subAgent := opts.SubAgent
	if subAgent == nil {
		subAgent = func(rec *RawRecord) bool { return rec.IsSidechain }
	}

	s := &Summary{
		SessionID: SessionIDForPath(path),
		FilePath:  path,
		Workspace: opts.Workspace,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		ToolCalls: make(map[string]int),
	}

	var firstUser string
	d := NewDecoder(f)
	for {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if s.Cwd == "" && rec.Cwd != "" {
			s.Cwd = rec.Cwd
		}
		if subAgent(rec) {
			s.SubAgent = true
		}
		if rec.Kind != KindUser && rec.Kind != KindAssistant {
			continue
		}

		s.MessageCount++
		if !rec.Timestamp.IsZero() {
			if s.First.IsZero() {
				s.First = rec.Timestamp
			}
			s.Last = rec.Timestamp
		}

		switch rec.Kind {
		case KindUser:
			if firstUser == "" && !rec.IsMeta {
				firstUser = leadingText(rec.Blocks)
			}
		case KindAssistant:
			if s.Model == "" && rec.Model != "" {
				s.Model = rec.Model
			}
			if rec.Usage != nil {
				s.Tokens.add(rec.Usage)
			}
			for _, b := range rec.Blocks {
				if b.Type == "tool_use" {
					name := b.ToolUse.Name
					if name == "" {
						name = "unknown"
					}
					s.ToolCalls[name]++
				}
			}
		}
	}

	s.Description = shortDescription(firstUser, opts.Workspace)
	return s, nil
}

// leadingText picks the first displayable user text, skipping command and
// reminder scaffolding.
func leadingText(blocks []ContentBlock) string {
	for _, b := range blocks {
		if b.Type != "text" || b.Text == "" {
			continue
		}
		if isSystemText(b.Text) {
			continue
		}
		return b.Text
	}
	return ""
}

// isSystemText reports machine-generated user content that makes a poor
// session description.
func isSystemText(text string) bool {
	return strings.HasPrefix(text, "<local-command-") ||
		strings.HasPrefix(text, "<command-name>") ||
		strings.HasPrefix(text, "<local-command-stdout>") ||
		strings.Contains(text, "<system-reminder>") ||
		strings.HasPrefix(text, "Caveat:")
}

func shortDescription(text, workspace string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if r := []rune(text); len(r) > descriptionLen {
		text = string(r[:descriptionLen])
	}
	if workspace != "" && text != "" {
		return "[" + workspace + "] " + text
	}
	if workspace != "" {
		return "[" + workspace + "]"
	}
	return text
}

// Filter returns the summaries whose id, description or workspace label
// contains the query, case-insensitively. It never reparses.
func Filter(summaries []Summary, query string) []Summary {
	if query == "" {
		return summaries
	}
	q := strings.ToLower(query)
	var out []Summary
	for _, s := range summaries {
		if strings.Contains(strings.ToLower(s.SessionID), q) ||
			strings.Contains(strings.ToLower(s.Description), q) ||
			strings.Contains(strings.ToLower(s.Workspace), q) {
			out = append(out, s)
		}
	}
	return out
}

// SortByModified orders summaries newest first, the default listing
// order.
func SortByModified(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Modified.After(summaries[j].Modified)
	})
}
