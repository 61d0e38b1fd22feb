package session

import (
	"fmt"
	"io"
	"os"
)

// toolRef locates an unresolved tool call inside the turns built so far.
type toolRef struct {
	turn int
	tool int
}

// pendingResult is a tool result waiting for its call to appear.
type pendingResult struct {
	res      ToolResult
	turn     int
	consumed bool
}

// hostTurn picks the turn a standalone tool-result record hangs off:
// the preceding turn, or a turn of its own when the stream starts with
// results.
func hostTurn(conv *Conversation, rec *RawRecord, host int) int {
	if host >= 0 {
		return host
	}
	conv.Turns = append(conv.Turns, DisplayTurn{
		Ordinal:   rec.Ordinal,
		Role:      rec.Role,
		Timestamp: rec.Timestamp,
	})
	return 0
}

// Assemble drains the decoder and builds the ordered turn sequence,
// correlating tool calls with their results in either arrival order.
// Correlation never reorders turns, only enriches them.
func Assemble(d *Decoder) (*Conversation, error) {
	conv := &Conversation{}

	open := make(map[string]toolRef)
	var pending []pendingResult
	pendingByID := make(map[string][]int)

	for {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}

		if conv.SessionID == "" && rec.SessionID != "" {
			conv.SessionID = rec.SessionID
		}
		if conv.Cwd == "" && rec.Cwd != "" {
			conv.Cwd = rec.Cwd
		}

		switch rec.Kind {
		case KindSummary:
			if rec.Summary != "" {
				conv.Summary = rec.Summary
			}
			continue
		case KindToolResult:
			res := *rec.Blocks[0].ToolResult
			host := len(conv.Turns) - 1
			if res.Nested {
				host = hostTurn(conv, rec, host)
				conv.Turns[host].Orphans = append(conv.Turns[host].Orphans, res)
				continue
			}
			if ref, ok := open[res.ToolUseID]; ok {
				conv.Turns[ref.turn].Tools[ref.tool].Result = &res
				delete(open, res.ToolUseID)
				continue
			}
			host = hostTurn(conv, rec, host)
			pendingByID[res.ToolUseID] = append(pendingByID[res.ToolUseID], len(pending))
			pending = append(pending, pendingResult{res: res, turn: host})
			continue
		case KindUnknown:
			conv.UnknownCount++
			continue
		}

		if !rec.Timestamp.IsZero() {
			if conv.First.IsZero() {
				conv.First = rec.Timestamp
			}
			conv.Last = rec.Timestamp
		}

		turnIdx := len(conv.Turns)
		conv.Turns = append(conv.Turns, DisplayTurn{
			Ordinal:    rec.Ordinal,
			Role:       rec.Role,
			Timestamp:  rec.Timestamp,
			Model:      rec.Model,
			StopReason: rec.StopReason,
			Usage:      rec.Usage,
		})
		t := &conv.Turns[turnIdx]

		for _, b := range rec.Blocks {
			switch b.Type {
			case "text":
				t.TextBlocks = append(t.TextBlocks, b.Text)
			case "thinking":
				t.ThinkingBlocks = append(t.ThinkingBlocks, b.Thinking)
			case "image":
				t.Images = append(t.Images, *b.Image)
			case "tool_use":
				inv := ToolInvocation{Use: *b.ToolUse}
				if q := pendingByID[inv.Use.ID]; len(q) > 0 {
					pi := q[0]
					pendingByID[inv.Use.ID] = q[1:]
					pending[pi].consumed = true
					res := pending[pi].res
					inv.Result = &res
				} else {
					open[inv.Use.ID] = toolRef{turn: turnIdx, tool: len(t.Tools)}
				}
				t.Tools = append(t.Tools, inv)
			case "tool_result":
				res := *b.ToolResult
				if res.Nested {
					// a result nesting another result is never correlated
					t.Orphans = append(t.Orphans, res)
					continue
				}
				if ref, ok := open[res.ToolUseID]; ok {
					conv.Turns[ref.turn].Tools[ref.tool].Result = &res
					delete(open, res.ToolUseID)
					continue
				}
				pendingByID[res.ToolUseID] = append(pendingByID[res.ToolUseID], len(pending))
				pending = append(pending, pendingResult{res: res, turn: turnIdx})
			}
		}
	}

	// results that never found their call become flagged orphans on the
	// turn they arrived in
	for i := range pending {
		if !pending[i].consumed {
			p := pending[i]
			conv.Turns[p.turn].Orphans = append(conv.Turns[p.turn].Orphans, p.res)
		}
	}

	conv.Faults = d.Faults()
	return conv, nil
}

// Load opens a session file and assembles it. The session id is the file
// stem; opening failures fail the whole operation with no partial result.
func Load(path string) (*Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	conv, err := Assemble(NewDecoder(f))
	if err != nil {
		return nil, err
	}
	conv.FilePath = path
	conv.SessionID = SessionIDForPath(path)
	return conv, nil
}
