package session

import (
	"io"
	"strings"
	"testing"
)

func drain(t *testing.T, d *Decoder) []*RawRecord {
	t.Helper()
	var recs []*RawRecord
	for {
		rec, err := d.Next()
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		recs = append(recs, rec)
	}
}

func TestDecodeSkipsMalformedLines(t *testing.T) {
	input := `{"type":"user","content":[{"type":"text","text":"first"}]}
not-json
{"type":"assistant","content":[{"type":"text","text":"second"}]}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Ordinal != 1 || recs[1].Ordinal != 3 {
		t.Fatalf("expected ordinals 1 and 3, got %d and %d", recs[0].Ordinal, recs[1].Ordinal)
	}

	faults := d.Faults()
	if len(faults) != 1 {
		t.Fatalf("expected 1 fault, got %d", len(faults))
	}
	if faults[0].Ordinal != 2 {
		t.Fatalf("expected fault on line 2, got %d", faults[0].Ordinal)
	}
	if faults[0].Raw != "not-json" {
		t.Fatalf("unexpected fault raw: %q", faults[0].Raw)
	}
}

func TestDecodeMissingFieldsIsNotAFault(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"type":"user"}`))
	recs := drain(t, d)

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Kind != KindUser {
		t.Fatalf("expected user record, got %s", recs[0].Kind)
	}
	if len(recs[0].Blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(recs[0].Blocks))
	}
	if len(d.Faults()) != 0 {
		t.Fatalf("expected no faults, got %d", len(d.Faults()))
	}
}

func TestDecodeRoutesRecordKinds(t *testing.T) {
	input := `{"type":"user","content":"hello"}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}
{"type":"summary","summary":"a session"}
{"type":"system","subtype":"init"}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)

	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	kinds := []RecordKind{KindUser, KindAssistant, KindSummary, KindUnknown}
	for i, want := range kinds {
		if recs[i].Kind != want {
			t.Fatalf("record %d: expected kind %s, got %s", i, want, recs[i].Kind)
		}
	}
	if recs[2].Summary != "a session" {
		t.Fatalf("summary not captured: %q", recs[2].Summary)
	}
	if recs[3].RawType != "system" {
		t.Fatalf("unknown type tag not preserved: %q", recs[3].RawType)
	}
}

func TestDecodeStringContent(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"type":"user","message":{"role":"user","content":"just a string"}}`))
	recs := drain(t, d)

	if len(recs) != 1 || len(recs[0].Blocks) != 1 {
		t.Fatalf("expected 1 record with 1 block")
	}
	b := recs[0].Blocks[0]
	if b.Type != "text" || b.Text != "just a string" {
		t.Fatalf("unexpected block: %+v", b)
	}
}

func TestDecodeContentBlocks(t *testing.T) {
	input := `{"type":"assistant","message":{"role":"assistant","model":"claude-test-1","content":[` +
		`{"type":"thinking","thinking":"hmm"},` +
		`{"type":"text","text":"answer"},` +
		`{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}},` +
		`{"type":"image","source":{"media_type":"image/png","data":"aGVsbG8="}}` +
		`],"usage":{"input_tokens":10,"output_tokens":5,"cache_read_input_tokens":3,"cache_creation_input_tokens":2}}}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Model != "claude-test-1" {
		t.Fatalf("model not captured: %q", rec.Model)
	}
	if rec.Usage == nil || rec.Usage.InputTokens != 10 || rec.Usage.OutputTokens != 5 ||
		rec.Usage.CacheReadTokens != 3 || rec.Usage.CacheCreationTokens != 2 {
		t.Fatalf("usage not captured: %+v", rec.Usage)
	}
	if rec.Usage.Model != "claude-test-1" {
		t.Fatalf("usage model not captured: %q", rec.Usage.Model)
	}

	if len(rec.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(rec.Blocks))
	}
	if rec.Blocks[0].Thinking != "hmm" {
		t.Fatalf("thinking block wrong: %+v", rec.Blocks[0])
	}
	tu := rec.Blocks[2].ToolUse
	if tu == nil || tu.ID != "t1" || tu.Name != "Bash" {
		t.Fatalf("tool_use block wrong: %+v", tu)
	}
	img := rec.Blocks[3].Image
	if img == nil || img.MediaType != "image/png" || img.ByteSize != len("aGVsbG8=") {
		t.Fatalf("image block wrong: %+v", img)
	}
}

func TestDecodeToolResultForms(t *testing.T) {
	input := `{"type":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"plain"}]}
{"type":"user","content":[{"type":"tool_result","tool_use_id":"t2","is_error":true,"content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}]}
{"type":"user","content":[{"type":"tool_result","tool_use_id":"t3","content":[{"type":"tool_result","tool_use_id":"t4"}]}]}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	r1 := recs[0].Blocks[0].ToolResult
	if r1.ToolUseID != "t1" || r1.Content != "plain" || r1.IsError {
		t.Fatalf("string result wrong: %+v", r1)
	}

	r2 := recs[1].Blocks[0].ToolResult
	if r2.Content != "a\nb" || !r2.IsError {
		t.Fatalf("array result wrong: %+v", r2)
	}

	r3 := recs[2].Blocks[0].ToolResult
	if !r3.Nested {
		t.Fatalf("nested result not flagged: %+v", r3)
	}
}

func TestDecodeTopLevelToolResultRecord(t *testing.T) {
	input := `{"type":"tool-result","toolUseId":"t1","isError":true,"truncated":true,"content":"boom"}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Kind != KindToolResult {
		t.Fatalf("expected tool-result kind, got %s", rec.Kind)
	}
	if len(rec.Blocks) != 1 || rec.Blocks[0].Type != "tool_result" {
		t.Fatalf("expected one tool_result block, got %+v", rec.Blocks)
	}
	res := rec.Blocks[0].ToolResult
	if res.ToolUseID != "t1" || !res.IsError || res.Content != "boom" {
		t.Fatalf("result fields wrong: %+v", res)
	}
	if !res.Truncated {
		t.Fatalf("capture-time truncation flag not decoded")
	}
}

func TestDecodeToolResultStatusKey(t *testing.T) {
	input := `{"type":"user","content":[{"type":"tool_result","tool_use_id":"t1","status":"success","content":"ok"}]}
{"type":"user","content":[{"type":"tool_result","tool_use_id":"t2","status":"error","content":"bad"}]}`

	d := NewDecoder(strings.NewReader(input))
	recs := drain(t, d)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	if recs[0].Blocks[0].ToolResult.IsError {
		t.Fatalf("status success misread as error")
	}
	if !recs[1].Blocks[0].ToolResult.IsError {
		t.Fatalf("status error not mapped to IsError")
	}
}

func TestDecodeEmptyStream(t *testing.T) {
	d := NewDecoder(strings.NewReader(""))
	if recs := drain(t, d); len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
	if len(d.Faults()) != 0 {
		t.Fatalf("expected no faults")
	}
	// EOF is sticky
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
