// Package render turns an assembled conversation into display output:
// a deterministic text document, or row groups consumed incrementally
// by the TUI.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/ccview/ccview/internal/session"
)

const (
	defaultTruncate = 2000
	thinkingLimit   = 500
)

type Options struct {
	Truncate int              // rune threshold before bodies are cut (0 = default)
	Width    int              // wrap width in columns (0 = no wrap)
	Now      func() time.Time // header timestamp source, injectable for stable output
}

func (o Options) truncateAt() int {
	if o.Truncate > 0 {
		return o.Truncate
	}
	return defaultTruncate
}

// Truncate cuts s to at most limit runes. When it cuts, the returned
// text is exactly limit runes followed by a marker naming the omitted
// amount. Content within the limit is returned untouched.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	head := string(runes[:limit])
	omitted := len(runes) - limit
	lines := strings.Count(string(runes[limit:]), "\n")
	return fmt.Sprintf("%s\n... (+%d chars, %d lines omitted)", head, omitted, lines), true
}

// turnHeading numbers turns from 1 in display order.
func turnHeading(index int, t *session.DisplayTurn) string {
	role := t.Role
	switch role {
	case "user":
		role = "User"
	case "assistant":
		role = "Assistant"
	}
	return fmt.Sprintf("## Message %d: %s", index+1, role)
}

// annotationLine returns the model/usage/timestamp line for a turn, or
// "" when the turn carries none of it.
func annotationLine(t *session.DisplayTurn) string {
	var parts []string
	if !t.Timestamp.IsZero() {
		parts = append(parts, t.Timestamp.UTC().Format(time.RFC3339))
	}
	if t.Model != "" {
		parts = append(parts, "Model: "+t.Model)
	}
	if t.StopReason != "" {
		parts = append(parts, "Stop: "+t.StopReason)
	}
	if u := t.Usage; u != nil {
		tok := fmt.Sprintf("Tokens: in=%d, out=%d", u.InputTokens, u.OutputTokens)
		if u.CacheReadTokens > 0 {
			tok += fmt.Sprintf(", cache_read=%d", u.CacheReadTokens)
		}
		if u.CacheCreationTokens > 0 {
			tok += fmt.Sprintf(", cache_create=%d", u.CacheCreationTokens)
		}
		parts = append(parts, tok)
	}
	if len(parts) == 0 {
		return ""
	}
	return "_" + strings.Join(parts, " | ") + "_"
}

// turnLines renders one turn as plain text lines: heading, annotation,
// thinking, body, tool blocks, orphans, image indicators.
func turnLines(index int, t *session.DisplayTurn, opts Options) []string {
	limit := opts.truncateAt()
	var lines []string

	lines = append(lines, turnHeading(index, t))
	if ann := annotationLine(t); ann != "" {
		lines = append(lines, ann)
	}
	lines = append(lines, "")

	for _, think := range t.ThinkingBlocks {
		cut, _ := Truncate(think, thinkingLimit)
		lines = append(lines, "**[Thinking]**")
		for _, l := range strings.Split(cut, "\n") {
			lines = append(lines, "> "+l)
		}
		lines = append(lines, "")
	}

	for _, text := range t.TextBlocks {
		cut, _ := Truncate(text, limit)
		lines = append(lines, strings.Split(cut, "\n")...)
		lines = append(lines, "")
	}

	for i := range t.Tools {
		lines = append(lines, toolLines(&t.Tools[i], limit)...)
	}

	for i := range t.Orphans {
		lines = append(lines, orphanLines(&t.Orphans[i], limit)...)
	}

	for _, img := range t.Images {
		lines = append(lines, fmt.Sprintf("[Image: %s (%s bytes)]", img.MediaType, humanize.Comma(int64(img.ByteSize))), "")
	}

	if opts.Width > 0 {
		lines = wrapLines(lines, opts.Width)
	}
	return lines
}

func toolLines(inv *session.ToolInvocation, limit int) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("**[Tool: %s]**", inv.Use.Name))
	lines = append(lines, "```json")
	input, _ := Truncate(prettyJSON(inv.Use.Input), limit)
	lines = append(lines, strings.Split(input, "\n")...)
	lines = append(lines, "```")

	if inv.Result == nil {
		lines = append(lines, "**[Tool Result: pending]**", "")
		return lines
	}
	lines = append(lines, resultLines("Tool Result", inv.Result, limit)...)
	return lines
}

func orphanLines(res *session.ToolResult, limit int) []string {
	header := fmt.Sprintf("Orphan Tool Result (%s)", res.ToolUseID)
	return resultLines(header, res, limit)
}

func resultLines(label string, res *session.ToolResult, limit int) []string {
	status := "SUCCESS"
	if res.IsError {
		status = "ERROR"
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("**[%s: %s]**", label, status))
	body := res.Content
	if body != "" {
		cut, _ := Truncate(body, limit)
		lines = append(lines, "```")
		lines = append(lines, strings.Split(cut, "\n")...)
		lines = append(lines, "```")
	}
	if res.Truncated {
		lines = append(lines, "_(result was truncated at capture time)_")
	}
	lines = append(lines, "")
	return lines
}

// prettyJSON re-indents raw JSON without re-marshalling, preserving key
// order so output stays stable.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func wrapLines(lines []string, width int) []string {
	var out []string
	for _, l := range lines {
		out = append(out, wrapLine(l, width)...)
	}
	return out
}

// wrapLine breaks a line into pieces that fit within maxWidth visible
// columns, measuring with rune widths.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}
