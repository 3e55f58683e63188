package reconcile

import (
	"sort"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
)

// Kind says whether a Unit carries an interval or a day change.
type Kind int

const (
	KindInterval Kind = iota
	KindDayChange
)

func (k Kind) String() string {
	if k == KindDayChange {
		return "day_change"
	}
	return "interval"
}

// Unit is one emission of the reconciled sequence: an interval (possibly a
// part of a split one) tagged with its day, or a day change.
type Unit struct {
	Kind      Kind
	Interval  *logdata.TurnInterval
	Day       int
	DayChange logdata.DayChange
}

// Turn is the unit's position in the sequence: the end turn of an interval or
// the turn number of a day change.
func (u Unit) Turn() int {
	if u.Kind == KindDayChange {
		return u.DayChange.TurnNumber
	}
	return u.Interval.EndTurn
}

// Reconcile walks the intervals together with the day changes and returns the
// interleaved sequence. days must start with the day that is current before
// the first interval; that day is not emitted. Every other day change is
// emitted exactly once, including days on which no turn was spent.
func Reconcile(intervals []*logdata.TurnInterval, days []logdata.DayChange) ([]Unit, error) {
	if err := checkDays(days); err != nil {
		return nil, err
	}
	r := &reconciler{days: days, next: 1}
	for i, ti := range intervals {
		parts, err := r.split(ti)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			if p.day < r.current().DayNumber {
				return nil, logdata.InvalidArgument("interval %s belongs to day %d after day %d started", p.iv, p.day, r.current().DayNumber)
			}
			r.advanceTo(p.day)
			r.out = append(r.out, Unit{Kind: KindInterval, Interval: p.iv, Day: p.day})
		}

		var next *logdata.TurnInterval
		if i+1 < len(intervals) {
			next = intervals[i+1]
		}
		for n := r.dueAfter(ti.EndTurn, next); n > 0; n-- {
			r.advance()
		}
	}
	for !r.nextDay().IsSentinel() {
		r.advance()
	}
	return r.out, nil
}

// DayForTurn returns the day a turn number falls on when only day change
// turn numbers are known: the last day that began before the turn.
func DayForTurn(days []logdata.DayChange, turn int) int {
	i := sort.Search(len(days), func(i int) bool {
		return days[i].TurnNumber >= turn
	})
	if i == 0 {
		return days[0].DayNumber
	}
	return days[i-1].DayNumber
}

// CheckTurnDays verifies that every turn with an explicit day number refers to
// a known day and lies within that day's turn range.
func CheckTurnDays(turns []*logdata.SingleTurn, days []logdata.DayChange) error {
	if err := checkDays(days); err != nil {
		return err
	}
	index := make(map[int]int, len(days))
	for i, d := range days {
		index[d.DayNumber] = i
	}
	for _, t := range turns {
		if t.DayNumber == 0 {
			continue
		}
		i, ok := index[t.DayNumber]
		if !ok {
			return logdata.InvalidArgument("turn %d references day %d which has no day change", t.TurnNumber, t.DayNumber)
		}
		if t.TurnNumber < days[i].TurnNumber {
			return logdata.InvalidArgument("turn %d is before day %d began at turn %d", t.TurnNumber, t.DayNumber, days[i].TurnNumber)
		}
		if i+1 < len(days) && t.TurnNumber > days[i+1].TurnNumber {
			return logdata.InvalidArgument("turn %d is after day %d began at turn %d", t.TurnNumber, days[i+1].DayNumber, days[i+1].TurnNumber)
		}
	}
	return nil
}

func checkDays(days []logdata.DayChange) error {
	if len(days) == 0 {
		return logdata.InvalidArgument("at least one day change is required")
	}
	for i := 1; i < len(days); i++ {
		if days[i].DayNumber <= days[i-1].DayNumber {
			return logdata.InvalidArgument("day %d follows day %d", days[i].DayNumber, days[i-1].DayNumber)
		}
		if days[i].TurnNumber < days[i-1].TurnNumber {
			return logdata.InvalidArgument("day %d starts at turn %d, before day %d at turn %d",
				days[i].DayNumber, days[i].TurnNumber, days[i-1].DayNumber, days[i-1].TurnNumber)
		}
	}
	return nil
}

type part struct {
	iv  *logdata.TurnInterval
	day int
}

type reconciler struct {
	days []logdata.DayChange
	// next indexes the first day change not yet emitted
	next int
	out  []Unit
}

func (r *reconciler) current() logdata.DayChange {
	return r.days[r.next-1]
}

func (r *reconciler) nextDay() logdata.DayChange {
	if r.next < len(r.days) {
		return r.days[r.next]
	}
	return logdata.NoDayChange
}

func (r *reconciler) advance() {
	dc := r.days[r.next]
	r.next++
	r.out = append(r.out, Unit{Kind: KindDayChange, DayChange: dc, Day: dc.DayNumber})
}

// advanceTo emits every pending day change up to and including day.
func (r *reconciler) advanceTo(day int) {
	for nd := r.nextDay(); !nd.IsSentinel() && nd.DayNumber <= day; nd = r.nextDay() {
		r.advance()
	}
}

// dueAfter decides, without emitting anything, how many pending day changes
// close together with an interval ending at end. When the next interval still
// starts on the current day the day changes are deferred until it is done.
func (r *reconciler) dueAfter(end int, next *logdata.TurnInterval) int {
	n := 0
	for j := r.next; j < len(r.days) && r.days[j].TurnNumber <= end; j++ {
		n++
	}
	if n == 0 || next == nil {
		return n
	}
	first := r.firstDay(next)
	if first <= r.current().DayNumber {
		return 0
	}
	for n > 0 && r.days[r.next+n-1].DayNumber > first {
		n--
	}
	return n
}

func (r *reconciler) turnDay(t *logdata.SingleTurn) int {
	if t.DayNumber > 0 {
		return t.DayNumber
	}
	return DayForTurn(r.days, t.TurnNumber)
}

func (r *reconciler) firstDay(ti *logdata.TurnInterval) int {
	if turns := ti.Turns(); len(turns) > 0 {
		return r.turnDay(turns[0])
	}
	return DayForTurn(r.days, ti.StartTurn+1)
}

func (r *reconciler) split(ti *logdata.TurnInterval) ([]part, error) {
	if err := ti.Validate(); err != nil {
		return nil, err
	}
	if turns := ti.Turns(); len(turns) > 0 {
		return r.splitDetailed(ti, turns)
	}
	return r.splitSimple(ti), nil
}

// splitDetailed cuts the interval wherever the day of its turns changes.
func (r *reconciler) splitDetailed(ti *logdata.TurnInterval, turns []*logdata.SingleTurn) ([]part, error) {
	days := make([]int, len(turns))
	for i, t := range turns {
		days[i] = r.turnDay(t)
		if i > 0 && days[i] < days[i-1] {
			return nil, logdata.InvalidArgument("turn %d is on day %d after a turn on day %d", t.TurnNumber, days[i], days[i-1])
		}
	}
	if days[0] == days[len(days)-1] {
		return []part{{iv: ti, day: days[0]}}, nil
	}

	var parts []part
	start := ti.StartTurn
	runStart := 0
	for i := 1; i <= len(turns); i++ {
		if i < len(turns) && days[i] == days[runStart] {
			continue
		}
		run := turns[runStart:i:i]
		iv := logdata.NewDetailedInterval(start, run)
		parts = append(parts, part{iv: iv, day: days[runStart]})
		start = iv.EndTurn
		runStart = i
	}
	return parts, nil
}

// splitSimple cuts a summary-only interval at every day change falling
// strictly inside it. Totals are shared out by length; the last part takes
// the rounding remainder so the parts always add up to the whole.
func (r *reconciler) splitSimple(ti *logdata.TurnInterval) []part {
	var cuts []int
	for j := r.next; j < len(r.days); j++ {
		t := r.days[j].TurnNumber
		if t >= ti.EndTurn {
			break
		}
		if t > ti.StartTurn && (len(cuts) == 0 || cuts[len(cuts)-1] != t) {
			cuts = append(cuts, t)
		}
	}
	if len(cuts) == 0 {
		return []part{{iv: ti, day: DayForTurn(r.days, ti.StartTurn+1)}}
	}

	bounds := append([]int{ti.StartTurn}, cuts...)
	bounds = append(bounds, ti.EndTurn)
	parts := make([]part, 0, len(bounds)-1)
	var used logdata.IntervalTotals
	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		totals := ti.Totals.Portion(b-a, ti.Length())
		if i+2 == len(bounds) {
			totals = ti.Totals.Sub(used)
		}
		used = used.Add(totals)
		iv := &logdata.TurnInterval{Area: ti.Area, StartTurn: a, EndTurn: b, Totals: totals}
		parts = append(parts, part{iv: iv, day: DayForTurn(r.days, a+1)})
	}
	return parts
}
