// Package reconcile turns a flat run of turns into area intervals and splits
// those intervals at day boundaries.
package reconcile

import "github.com/jwebster45206/ascension-log/pkg/logdata"

// BuildIntervals groups consecutive turns with the same area name into
// intervals. Area names are compared exactly. The intervals reference the
// given turns; nothing is copied.
func BuildIntervals(turns []*logdata.SingleTurn) []*logdata.TurnInterval {
	var out []*logdata.TurnInterval
	prevEnd := 0
	runStart := 0
	for i := 1; i <= len(turns); i++ {
		if i < len(turns) && turns[i].Area == turns[runStart].Area {
			continue
		}
		run := turns[runStart:i:i]
		start := max(prevEnd, run[0].TurnNumber-1, 0)
		// a repeated turn number yields a zero-length interval
		start = min(start, run[0].TurnNumber)
		iv := logdata.NewDetailedInterval(start, run)
		out = append(out, iv)
		prevEnd = iv.EndTurn
		runStart = i
	}
	return out
}
