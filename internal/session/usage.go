package session

import "time"

// UnknownModel buckets usage from assistant records that carried no
// model name.
const UnknownModel = "unknown"

// TokenCounts groups the four token counters reported per response.
type TokenCounts struct {
	Input         int64
	Output        int64
	CacheRead     int64
	CacheCreation int64
}

func (tc TokenCounts) Total() int64 {
	return tc.Input + tc.Output + tc.CacheRead + tc.CacheCreation
}

func (tc *TokenCounts) add(u *Usage) {
	tc.Input += u.InputTokens
	tc.Output += u.OutputTokens
	tc.CacheRead += u.CacheReadTokens
	tc.CacheCreation += u.CacheCreationTokens
}

// UsageTotals is the per-session aggregate over a turn sequence. It is
// derived only; it holds no state of its own.
type UsageTotals struct {
	Tokens    TokenCounts
	ByModel   map[string]TokenCounts
	ToolCalls map[string]int
	Turns     int
	First     time.Time
	Last      time.Time
}

// Duration returns the span between first and last timestamped turn.
// ok is false when either endpoint was absent from the log.
func (ut UsageTotals) Duration() (d time.Duration, ok bool) {
	if ut.First.IsZero() || ut.Last.IsZero() {
		return 0, false
	}
	return ut.Last.Sub(ut.First), true
}

// Aggregate folds a turn sequence into totals. Tool calls count once per
// invocation whether or not a result arrived.
func Aggregate(turns []DisplayTurn) UsageTotals {
	totals := UsageTotals{
		ByModel:   make(map[string]TokenCounts),
		ToolCalls: make(map[string]int),
		Turns:     len(turns),
	}

	for i := range turns {
		t := &turns[i]

		if !t.Timestamp.IsZero() {
			if totals.First.IsZero() {
				totals.First = t.Timestamp
			}
			totals.Last = t.Timestamp
		}

		if t.Usage != nil {
			totals.Tokens.add(t.Usage)
			model := t.Usage.Model
			if model == "" {
				model = UnknownModel
			}
			mc := totals.ByModel[model]
			mc.add(t.Usage)
			totals.ByModel[model] = mc
		}

		for j := range t.Tools {
			name := t.Tools[j].Use.Name
			if name == "" {
				name = "unknown"
			}
			totals.ToolCalls[name]++
		}
	}

	return totals
}
