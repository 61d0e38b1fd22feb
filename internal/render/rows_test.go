package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/ccview/ccview/internal/session"
)

func makeTurns(n int) []session.DisplayTurn {
	turns := make([]session.DisplayTurn, n)
	for i := range turns {
		turns[i] = session.DisplayTurn{
			Ordinal:    i + 1,
			Role:       "user",
			TextBlocks: []string{fmt.Sprintf("message %d", i+1)},
		}
	}
	return turns
}

func TestRowsDeliversAllInOrder(t *testing.T) {
	turns := makeTurns(5)

	var indices []int
	n, err := Rows(context.Background(), turns, RowOptions{}, func(g RowGroup) bool {
		indices = append(indices, g.Index)
		return true
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if n != 5 {
		t.Fatalf("delivered %d, want 5", n)
	}
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("out of order at %d: %v", i, indices)
		}
	}
}

func TestRowsCancelAfterK(t *testing.T) {
	turns := makeTurns(20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const k = 7
	callbacks := 0
	n, err := Rows(ctx, turns, RowOptions{}, func(g RowGroup) bool {
		callbacks++
		if callbacks == k {
			cancel()
		}
		return true
	})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != k {
		t.Fatalf("delivered %d, want exactly %d", n, k)
	}
	if callbacks != k {
		t.Fatalf("emit called %d times after cancel at %d", callbacks, k)
	}
}

func TestRowsEmitFalseStopsWithoutError(t *testing.T) {
	turns := makeTurns(10)

	n, err := Rows(context.Background(), turns, RowOptions{}, func(g RowGroup) bool {
		return g.Index < 3
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if n != 3 {
		t.Fatalf("delivered %d, want 3", n)
	}
}

func TestRowsProgressCadence(t *testing.T) {
	turns := makeTurns(12)

	var reports [][2]int
	opts := RowOptions{
		LargeSession:  10,
		ProgressEvery: 5,
		OnProgress: func(done, total int) {
			reports = append(reports, [2]int{done, total})
		},
	}

	n, err := Rows(context.Background(), turns, opts, func(g RowGroup) bool { return true })
	if err != nil || n != 12 {
		t.Fatalf("Rows: n=%d err=%v", n, err)
	}

	want := [][2]int{{5, 12}, {10, 12}, {12, 12}}
	if len(reports) != len(want) {
		t.Fatalf("progress reports: %v", reports)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Fatalf("report %d: got %v want %v", i, reports[i], want[i])
		}
	}
}

func TestRowsNoProgressForSmallSession(t *testing.T) {
	turns := makeTurns(4)

	called := false
	opts := RowOptions{
		LargeSession:  10,
		ProgressEvery: 2,
		OnProgress:    func(done, total int) { called = true },
	}
	if _, err := Rows(context.Background(), turns, opts, func(g RowGroup) bool { return true }); err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if called {
		t.Fatalf("progress reported for a session under the threshold")
	}
}
