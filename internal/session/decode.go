package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB, large tool outputs
const maxFaultRaw = 256              // bytes of a bad line kept for diagnostics

// wireRecord mirrors one log line. Content may live under message
// (real session logs) or at the top level (older exports).
type wireRecord struct {
	Type        string          `json:"type"`
	Timestamp   string          `json:"timestamp"`
	Cwd         string          `json:"cwd"`
	SessionID   string          `json:"sessionId"`
	IsMeta      bool            `json:"isMeta"`
	IsSidechain bool            `json:"isSidechain"`
	Summary     string          `json:"summary"`
	Message     json.RawMessage `json:"message"`
	Content     json.RawMessage `json:"content"`

	// top-level tool-result records
	ToolUseID string `json:"toolUseId"`
	IsError   bool   `json:"isError"`
	Truncated bool   `json:"truncated"`
}

type wireMessage struct {
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Content    json.RawMessage `json:"content"`
	Usage      *wireUsage      `json:"usage"`
}

type wireUsage struct {
	InputTokens         int64 `json:"input_tokens"`
	OutputTokens        int64 `json:"output_tokens"`
	CacheReadTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationTokens int64 `json:"cache_creation_input_tokens"`
}

type wireBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Status    string          `json:"status"`
	Truncated bool            `json:"truncated"`
	Content   json.RawMessage `json:"content"`
	Source    *wireImgSource  `json:"source"`
}

type wireImgSource struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Decoder pulls typed records off a line-oriented JSON stream. Malformed
// lines are recorded as faults and skipped; Next never fails because of
// them. Next returns io.EOF at end of stream.
type Decoder struct {
	sc      *bufio.Scanner
	ordinal int
	faults  []DecodeFault
	scanErr error
	done    bool
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc}
}

// Next returns the next decodable record, or io.EOF.
func (d *Decoder) Next() (*RawRecord, error) {
	if d.done {
		return nil, io.EOF
	}
	for d.sc.Scan() {
		d.ordinal++
		line := d.sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var w wireRecord
		if err := json.Unmarshal(line, &w); err != nil {
			d.recordFault(line)
			continue
		}
		return d.convert(&w), nil
	}
	d.done = true
	if err := d.sc.Err(); err != nil {
		// an oversized line poisons the scanner; count it as a fault on
		// the tail rather than failing the whole parse
		if errors.Is(err, bufio.ErrTooLong) {
			d.faults = append(d.faults, DecodeFault{Ordinal: d.ordinal + 1, Raw: "(oversized line)"})
			return nil, io.EOF
		}
		d.scanErr = err
		return nil, err
	}
	return nil, io.EOF
}

// Faults returns the malformed lines seen so far.
func (d *Decoder) Faults() []DecodeFault { return d.faults }

func (d *Decoder) recordFault(line []byte) {
	raw := string(line)
	if len(raw) > maxFaultRaw {
		raw = raw[:maxFaultRaw]
	}
	d.faults = append(d.faults, DecodeFault{Ordinal: d.ordinal, Raw: raw})
}

func (d *Decoder) convert(w *wireRecord) *RawRecord {
	rec := &RawRecord{
		Ordinal:     d.ordinal,
		RawType:     w.Type,
		Timestamp:   parseTimestamp(w.Timestamp),
		Cwd:         w.Cwd,
		SessionID:   w.SessionID,
		IsMeta:      w.IsMeta,
		IsSidechain: w.IsSidechain,
		Summary:     w.Summary,
	}

	switch w.Type {
	case "user":
		rec.Kind = KindUser
	case "assistant":
		rec.Kind = KindAssistant
	case "summary":
		rec.Kind = KindSummary
		return rec
	case "tool-result":
		// a result as its own record rather than a block inside a
		// user message
		rec.Kind = KindToolResult
		rec.Role = w.Type
		body, nested := flattenResultContent(w.Content)
		rec.Blocks = []ContentBlock{{Type: "tool_result", ToolResult: &ToolResult{
			ToolUseID: w.ToolUseID,
			IsError:   w.IsError,
			Content:   body,
			Truncated: w.Truncated,
			Nested:    nested,
		}}}
		return rec
	default:
		rec.Kind = KindUnknown
		return rec
	}

	rec.Role = w.Type
	content := w.Content
	if len(w.Message) > 0 {
		var msg wireMessage
		if err := json.Unmarshal(w.Message, &msg); err == nil {
			if msg.Role != "" {
				rec.Role = msg.Role
			}
			rec.Model = msg.Model
			rec.StopReason = msg.StopReason
			if msg.Usage != nil {
				rec.Usage = &Usage{
					InputTokens:         msg.Usage.InputTokens,
					OutputTokens:        msg.Usage.OutputTokens,
					CacheReadTokens:     msg.Usage.CacheReadTokens,
					CacheCreationTokens: msg.Usage.CacheCreationTokens,
					Model:               msg.Model,
				}
			}
			if len(msg.Content) > 0 {
				content = msg.Content
			}
		}
	}

	rec.Blocks = decodeContent(content)
	return rec
}

// decodeContent handles both the string form and the block-array form of
// a content field. Unrecognized block types are dropped.
func decodeContent(raw json.RawMessage) []ContentBlock {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []ContentBlock{{Type: "text", Text: s}}
	}

	var wire []wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}

	var blocks []ContentBlock
	for _, b := range wire {
		switch b.Type {
		case "text":
			if b.Text != "" {
				blocks = append(blocks, ContentBlock{Type: "text", Text: b.Text})
			}
		case "thinking":
			if b.Thinking != "" {
				blocks = append(blocks, ContentBlock{Type: "thinking", Thinking: b.Thinking})
			}
		case "tool_use":
			blocks = append(blocks, ContentBlock{Type: "tool_use", ToolUse: &ToolUse{
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			}})
		case "tool_result":
			body, nested := flattenResultContent(b.Content)
			blocks = append(blocks, ContentBlock{Type: "tool_result", ToolResult: &ToolResult{
				ToolUseID: b.ToolUseID,
				// some log generations tag errors with a status string
				// instead of the is_error flag
				IsError:   b.IsError || b.Status == "error",
				Content:   body,
				Truncated: b.Truncated,
				Nested:    nested,
			}})
		case "image":
			img := &Image{MediaType: "unknown"}
			if b.Source != nil {
				if b.Source.MediaType != "" {
					img.MediaType = b.Source.MediaType
				}
				img.ByteSize = len(b.Source.Data)
			}
			blocks = append(blocks, ContentBlock{Type: "image", Image: img})
		}
	}
	return blocks
}

// flattenResultContent turns a tool_result content field into plain text.
// The field may be a string or an array of blocks; a nested tool_result
// inside it is reported so the assembler can refuse to correlate.
func flattenResultContent(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, false
	}

	var wire []wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		// keep something rather than nothing
		return strings.TrimSpace(string(raw)), false
	}

	nested := false
	var parts []string
	for _, b := range wire {
		switch b.Type {
		case "text":
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case "tool_result":
			nested = true
		}
	}
	return strings.Join(parts, "\n"), nested
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
