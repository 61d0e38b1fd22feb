package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSession(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSummarizeShallowPass(t *testing.T) {
	log := strings.Join([]string{
		`{"type":"summary","summary":"debugging the scheduler"}`,
		`{"type":"user","timestamp":"2026-01-02T10:00:00Z","cwd":"/home/me/proj","content":"fix the flaky test"}`,
		`{"type":"assistant","timestamp":"2026-01-02T10:01:00Z","message":{"model":"claude-x","usage":{"input_tokens":120,"output_tokens":40},"content":[{"type":"text","text":"on it"},{"type":"tool_use","id":"t1","name":"Bash","input":{}}]}}`,
		`{"type":"user","timestamp":"2026-01-02T10:02:00Z","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}`,
	}, "\n") + "\n"

	path := writeSession(t, "abc-123.jsonl", log)
	s, err := Summarize(path, SummarizeOptions{Workspace: "proj"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.SessionID != "abc-123" {
		t.Fatalf("session id: %q", s.SessionID)
	}
	if s.MessageCount != 3 {
		t.Fatalf("message count: %d", s.MessageCount)
	}
	if s.Cwd != "/home/me/proj" {
		t.Fatalf("cwd: %q", s.Cwd)
	}
	if s.Model != "claude-x" {
		t.Fatalf("model: %q", s.Model)
	}
	if s.Tokens.Input != 120 || s.Tokens.Output != 40 {
		t.Fatalf("tokens: %+v", s.Tokens)
	}
	if s.ToolCalls["Bash"] != 1 {
		t.Fatalf("tool calls: %+v", s.ToolCalls)
	}
	if s.Description != "[proj] fix the flaky test" {
		t.Fatalf("description: %q", s.Description)
	}
	if !s.First.Equal(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("first: %v", s.First)
	}
	if !s.Last.Equal(time.Date(2026, 1, 2, 10, 2, 0, 0, time.UTC)) {
		t.Fatalf("last: %v", s.Last)
	}
}

func TestSummarizeSkipsSystemText(t *testing.T) {
	log := strings.Join([]string{
		`{"type":"user","content":"<command-name>/clear</command-name>"}`,
		`{"type":"user","content":"Caveat: the messages below were generated"}`,
		`{"type":"user","content":"real question here"}`,
	}, "\n") + "\n"

	path := writeSession(t, "s.jsonl", log)
	s, err := Summarize(path, SummarizeOptions{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Description != "real question here" {
		t.Fatalf("description: %q", s.Description)
	}
}

func TestSummarizeFlagsSubAgent(t *testing.T) {
	log := `{"type":"user","isSidechain":true,"content":"internal task"}` + "\n"
	path := writeSession(t, "side.jsonl", log)

	s, err := Summarize(path, SummarizeOptions{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !s.SubAgent {
		t.Fatalf("expected SubAgent set")
	}
}

func TestSummarizeLongDescriptionClipped(t *testing.T) {
	long := strings.Repeat("x", 400)
	path := writeSession(t, "long.jsonl", `{"type":"user","content":"`+long+`"}`+"\n")

	s, err := Summarize(path, SummarizeOptions{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if n := len([]rune(s.Description)); n != 200 {
		t.Fatalf("description length: %d", n)
	}
}

func TestFilterCaseInsensitive(t *testing.T) {
	summaries := []Summary{
		{SessionID: "aaa", Description: "Refactor the Parser"},
		{SessionID: "bbb", Description: "update docs", Workspace: "WebApp"},
		{SessionID: "ccc-PARSER", Description: "misc"},
	}

	got := Filter(summaries, "parser")
	if len(got) != 2 || got[0].SessionID != "aaa" || got[1].SessionID != "ccc-PARSER" {
		t.Fatalf("filter parser: %+v", got)
	}

	got = Filter(summaries, "webapp")
	if len(got) != 1 || got[0].SessionID != "bbb" {
		t.Fatalf("filter workspace: %+v", got)
	}

	if got := Filter(summaries, ""); len(got) != 3 {
		t.Fatalf("empty query should pass all, got %d", len(got))
	}
	if got := Filter(summaries, "nomatch"); len(got) != 0 {
		t.Fatalf("no-match query: %+v", got)
	}
}

func TestSortByModifiedNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	summaries := []Summary{
		{SessionID: "old", Modified: base},
		{SessionID: "new", Modified: base.Add(2 * time.Hour)},
		{SessionID: "mid", Modified: base.Add(time.Hour)},
	}

	SortByModified(summaries)

	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if summaries[i].SessionID != id {
			t.Fatalf("position %d: got %q want %q", i, summaries[i].SessionID, id)
		}
	}
}
