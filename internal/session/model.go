package session

import (
	"encoding/json"
	"time"
)

// RecordKind discriminates top-level log records.
type RecordKind string

const (
	KindUser       RecordKind = "user"
	KindAssistant  RecordKind = "assistant"
	KindSummary    RecordKind = "summary"
	KindToolResult RecordKind = "tool-result"
	KindUnknown    RecordKind = "unknown"
)

// RawRecord is one decoded log line. Ordinal is the 1-based line number
// and is the sole ordering of the stream.
type RawRecord struct {
	Ordinal     int
	Kind        RecordKind
	RawType     string // original type tag, kept for unknown records
	Role        string
	Timestamp   time.Time
	Cwd         string
	SessionID   string
	IsMeta      bool
	IsSidechain bool
	Summary     string // for summary records
	Model       string
	Usage       *Usage
	StopReason  string
	Blocks      []ContentBlock
}

// ContentBlock is a tagged variant over the block types that appear in
// user/assistant content arrays. Exactly one of the payload fields is
// meaningful for a given Type.
type ContentBlock struct {
	Type       string // "text", "thinking", "tool_use", "tool_result", "image"
	Text       string
	Thinking   string
	ToolUse    *ToolUse
	ToolResult *ToolResult
	Image      *Image
}

// ToolUse is a tool call issued by the assistant.
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult is the outcome of a tool call, referencing its ToolUse by ID.
type ToolResult struct {
	ToolUseID string
	IsError   bool
	Content   string
	Truncated bool
	// Nested is set when the result's content array itself contained a
	// tool_result block. Such results are never correlated.
	Nested bool
}

// Image records that an image block was present. No pixel data is kept.
type Image struct {
	MediaType string
	ByteSize  int
}

// Usage holds token counters reported on an assistant record.
type Usage struct {
	InputTokens         int64
	OutputTokens        int64
	CacheReadTokens     int64
	CacheCreationTokens int64
	Model               string
}

// ToolInvocation pairs a tool call with its result. Result is nil while
// the call is unresolved at end-of-stream.
type ToolInvocation struct {
	Use    ToolUse
	Result *ToolResult
}

// Pending reports whether the invocation never received a result.
func (ti ToolInvocation) Pending() bool { return ti.Result == nil }

// DisplayTurn is the assembler's output unit: one user or assistant
// record folded into render-ready fields. Orphans are tool results that
// matched no tool call by end-of-stream; they stay on the turn they
// arrived in so ordinal order is preserved.
type DisplayTurn struct {
	Ordinal        int
	Role           string
	Timestamp      time.Time
	Model          string
	StopReason     string
	TextBlocks     []string
	ThinkingBlocks []string
	Tools          []ToolInvocation
	Images         []Image
	Usage          *Usage
	Orphans        []ToolResult
}

// Conversation is one fully assembled session.
type Conversation struct {
	SessionID    string
	FilePath     string
	Cwd          string
	Summary      string // from a summary record, if any
	Turns        []DisplayTurn
	Faults       []DecodeFault
	UnknownCount int
	First        time.Time
	Last         time.Time
}

// MessageCount returns the number of user/assistant turns.
func (c *Conversation) MessageCount() int { return len(c.Turns) }

// OrphanCount returns the number of tool results that never found a
// matching tool call.
func (c *Conversation) OrphanCount() int {
	n := 0
	for i := range c.Turns {
		n += len(c.Turns[i].Orphans)
	}
	return n
}

// DecodeFault records a line that was not valid JSON. Faults are counted,
// never fatal.
type DecodeFault struct {
	Ordinal int
	Raw     string
}
