package render

import (
	"context"

	"github.com/ccview/ccview/internal/session"
)

const (
	defaultLargeSession  = 500
	defaultProgressEvery = 50
)

// RowGroup is the incremental unit handed to a consumer: one turn,
// already formatted into display lines.
type RowGroup struct {
	Index int
	Turn  *session.DisplayTurn
	Lines []string
}

// ProgressFunc reports how many row groups are done out of the total.
type ProgressFunc func(done, total int)

// RowOptions tune the incremental renderer.
type RowOptions struct {
	Options
	// LargeSession is the turn count above which progress is reported.
	LargeSession int
	// ProgressEvery is the row-group cadence of progress callbacks.
	ProgressEvery int
	OnProgress    ProgressFunc
}

// Rows feeds emit one row group per turn, in order. Cancellation is
// checked before every group: once ctx is done, no further groups are
// emitted and no further progress callbacks fire. emit returning false
// stops early without error. The count of delivered groups is returned
// either way.
func Rows(ctx context.Context, turns []session.DisplayTurn, opts RowOptions, emit func(RowGroup) bool) (int, error) {
	large := opts.LargeSession
	if large <= 0 {
		large = defaultLargeSession
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	reportProgress := opts.OnProgress != nil && len(turns) > large

	delivered := 0
	for i := range turns {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		group := RowGroup{
			Index: i,
			Turn:  &turns[i],
			Lines: turnLines(i, &turns[i], opts.Options),
		}
		if !emit(group) {
			return delivered, nil
		}
		delivered++

		if reportProgress && delivered%every == 0 {
			opts.OnProgress(delivered, len(turns))
		}
	}

	if reportProgress {
		opts.OnProgress(delivered, len(turns))
	}
	return delivered, nil
}
