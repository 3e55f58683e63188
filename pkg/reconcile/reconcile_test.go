package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
)

func turnsIn(area string, from, to int) []*logdata.SingleTurn {
	var out []*logdata.SingleTurn
	for n := from; n <= to; n++ {
		out = append(out, &logdata.SingleTurn{TurnNumber: n, Area: area, Type: logdata.TurnCombat})
	}
	return out
}

func concat(parts ...[]*logdata.SingleTurn) []*logdata.SingleTurn {
	var out []*logdata.SingleTurn
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// describe flattens units for compact comparisons.
func describe(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		if u.Kind == KindDayChange {
			out[i] = fmt.Sprintf("day %d@%d", u.DayChange.DayNumber, u.DayChange.TurnNumber)
		} else {
			out[i] = fmt.Sprintf("%s [%d,%d] d%d", u.Interval.Area, u.Interval.StartTurn, u.Interval.EndTurn, u.Day)
		}
	}
	return out
}

func TestBuildIntervals(t *testing.T) {
	tests := []struct {
		name  string
		turns []*logdata.SingleTurn
		want  []string
	}{
		{"empty", nil, nil},
		{"single turn", turnsIn("A", 1, 1), []string{"A [0,1]"}},
		{"one area", turnsIn("A", 1, 5), []string{"A [0,5]"}},
		{
			"area switches",
			concat(turnsIn("A", 1, 2), turnsIn("B", 3, 3), turnsIn("A", 4, 4)),
			[]string{"A [0,2]", "B [2,3]", "A [3,4]"},
		},
		{
			"exact area names",
			concat(turnsIn("The Spooky Forest", 1, 1), turnsIn("the spooky forest", 2, 2)),
			[]string{"The Spooky Forest [0,1]", "the spooky forest [1,2]"},
		},
		{
			"repeated turn number",
			concat(turnsIn("A", 1, 3), turnsIn("B", 3, 3)),
			[]string{"A [0,3]", "B [3,3]"},
		},
		{
			"log starting mid-run",
			turnsIn("A", 40, 42),
			[]string{"A [39,42]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildIntervals(tt.turns)
			var desc []string
			for _, iv := range got {
				assert.True(t, iv.Detailed())
				desc = append(desc, fmt.Sprintf("%s [%d,%d]", iv.Area, iv.StartTurn, iv.EndTurn))
			}
			assert.Equal(t, tt.want, desc)
		})
	}
}

func TestDayForTurn(t *testing.T) {
	days := []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 10}, {DayNumber: 3, TurnNumber: 20}}
	tests := []struct {
		turn, want int
	}{
		{0, 1}, {1, 1}, {10, 1}, {11, 2}, {20, 2}, {21, 3}, {500, 3},
	}
	for _, tt := range tests {
		if got := DayForTurn(days, tt.turn); got != tt.want {
			t.Errorf("DayForTurn(%d) = %d, want %d", tt.turn, got, tt.want)
		}
	}
}

func TestReconcile_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		turns []*logdata.SingleTurn
		days  []logdata.DayChange
		want  []string
	}{
		{
			name:  "single area without day change",
			turns: turnsIn("Noob Cave", 1, 5),
			days:  []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}},
			want:  []string{"Noob Cave [0,5] d1"},
		},
		{
			name: "explicit day on boundary turn",
			turns: concat(turnsIn("Cobb's Knob", 1, 9), []*logdata.SingleTurn{
				{TurnNumber: 10, DayNumber: 2, Area: "Haunted Pantry"},
			}),
			days: []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 10}},
			want: []string{"Cobb's Knob [0,9] d1", "day 2@10", "Haunted Pantry [9,10] d2"},
		},
		{
			name:  "day change closes interval",
			turns: concat(turnsIn("Cobb's Knob", 1, 9), turnsIn("Haunted Pantry", 10, 10)),
			days:  []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 10}},
			want:  []string{"Cobb's Knob [0,9] d1", "Haunted Pantry [9,10] d1", "day 2@10"},
		},
		{
			name:  "zero turn day",
			turns: concat(turnsIn("A", 1, 15), turnsIn("B", 16, 16)),
			days: []logdata.DayChange{
				{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 15}, {DayNumber: 3, TurnNumber: 15},
			},
			want: []string{"A [0,15] d1", "day 2@15", "day 3@15", "B [15,16] d3"},
		},
		{
			name:  "boundary strictly inside interval",
			turns: turnsIn("A", 1, 6),
			days:  []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 4}},
			want:  []string{"A [0,4] d1", "day 2@4", "A [4,6] d2"},
		},
		{
			name:  "interval spanning several days",
			turns: turnsIn("A", 1, 9),
			days: []logdata.DayChange{
				{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 3}, {DayNumber: 3, TurnNumber: 6},
			},
			want: []string{"A [0,3] d1", "day 2@3", "A [3,6] d2", "day 3@6", "A [6,9] d3"},
		},
		{
			name:  "next area still on closing day defers day change",
			turns: concat(turnsIn("A", 1, 5), turnsIn("B", 5, 6)),
			days:  []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 5}},
			want:  []string{"A [0,5] d1", "B [5,5] d1", "day 2@5", "B [5,6] d2"},
		},
		{
			name:  "trailing days without turns",
			turns: turnsIn("A", 1, 3),
			days: []logdata.DayChange{
				{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 100}, {DayNumber: 3, TurnNumber: 100},
			},
			want: []string{"A [0,3] d1", "day 2@100", "day 3@100"},
		},
		{
			name:  "log starting on a later day",
			turns: turnsIn("A", 31, 33),
			days:  []logdata.DayChange{{DayNumber: 4, TurnNumber: 30}},
			want:  []string{"A [30,33] d4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, CheckTurnDays(tt.turns, tt.days))
			units, err := Reconcile(BuildIntervals(tt.turns), tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.want, describe(units))
		})
	}
}

func TestReconcile_SimpleIntervals(t *testing.T) {
	intervals := []*logdata.TurnInterval{
		{
			Area: "The Haunted Bathroom", StartTurn: 0, EndTurn: 10,
			Totals: logdata.IntervalTotals{CombatTurns: 7, NoncombatTurns: 3, Statgain: logdata.Statgain{Muscle: 11}},
		},
		{
			Area: "The Haunted Ballroom", StartTurn: 10, EndTurn: 12,
			Totals: logdata.IntervalTotals{CombatTurns: 2},
		},
	}
	days := []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 4}, {DayNumber: 3, TurnNumber: 10}}

	units, err := Reconcile(intervals, days)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The Haunted Bathroom [0,4] d1",
		"day 2@4",
		"The Haunted Bathroom [4,10] d2",
		"day 3@10",
		"The Haunted Ballroom [10,12] d3",
	}, describe(units))

	first, second := units[0].Interval.Totals, units[2].Interval.Totals
	assert.Equal(t, intervals[0].Totals, first.Add(second), "split totals add up to the whole")
	assert.Equal(t, 4, first.Statgain.Muscle)
	assert.Equal(t, 2, first.CombatTurns)
	assert.Equal(t, 5, second.CombatTurns)
}

func TestReconcile_Errors(t *testing.T) {
	turns := turnsIn("A", 1, 3)

	_, err := Reconcile(BuildIntervals(turns), nil)
	assert.ErrorIs(t, err, logdata.ErrInvalidArgument)

	_, err = Reconcile(BuildIntervals(turns), []logdata.DayChange{{DayNumber: 2, TurnNumber: 0}, {DayNumber: 1, TurnNumber: 5}})
	assert.ErrorIs(t, err, logdata.ErrInvalidArgument)

	_, err = Reconcile(BuildIntervals(turns), []logdata.DayChange{{DayNumber: 1, TurnNumber: 5}, {DayNumber: 2, TurnNumber: 2}})
	assert.ErrorIs(t, err, logdata.ErrInvalidArgument)

	bad := []*logdata.TurnInterval{{Area: "A", StartTurn: 5, EndTurn: 2}}
	_, err = Reconcile(bad, []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}})
	assert.ErrorIs(t, err, logdata.ErrInvalidArgument)
}

func TestCheckTurnDays(t *testing.T) {
	days := []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}, {DayNumber: 2, TurnNumber: 10}}
	tests := []struct {
		name string
		turn logdata.SingleTurn
		ok   bool
	}{
		{"no explicit day", logdata.SingleTurn{TurnNumber: 50}, true},
		{"inside day", logdata.SingleTurn{TurnNumber: 4, DayNumber: 1}, true},
		{"closing turn of day", logdata.SingleTurn{TurnNumber: 10, DayNumber: 1}, true},
		{"opening turn of next day", logdata.SingleTurn{TurnNumber: 10, DayNumber: 2}, true},
		{"unknown day", logdata.SingleTurn{TurnNumber: 4, DayNumber: 7}, false},
		{"before day began", logdata.SingleTurn{TurnNumber: 4, DayNumber: 2}, false},
		{"after next day began", logdata.SingleTurn{TurnNumber: 11, DayNumber: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := tt.turn
			err := CheckTurnDays([]*logdata.SingleTurn{&turn}, days)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, logdata.ErrInvalidArgument)
			}
		})
	}
}

// randomLog builds a turn sequence with random area switches and random day
// changes, some of them on the same turn.
func randomLog(r *rand.Rand) ([]*logdata.SingleTurn, []logdata.DayChange) {
	areas := []string{"A", "B", "C"}
	n := 1 + r.IntN(60)
	area := areas[0]
	turns := make([]*logdata.SingleTurn, 0, n)
	for i := 1; i <= n; i++ {
		if r.IntN(4) == 0 {
			area = areas[r.IntN(len(areas))]
		}
		turns = append(turns, &logdata.SingleTurn{TurnNumber: i, Area: area})
	}
	days := []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}}
	at := 0
	last := 1 + r.IntN(6)
	for d := 2; d <= last; d++ {
		at += r.IntN(n/2 + 2)
		days = append(days, logdata.DayChange{DayNumber: d, TurnNumber: min(at, n+3)})
	}
	return turns, days
}

func TestReconcile_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 500; iter++ {
		turns, days := randomLog(r)
		units, err := Reconcile(BuildIntervals(turns), days)
		require.NoError(t, err, "iteration %d", iter)

		var seen []*logdata.SingleTurn
		var dayChanges []int
		lastTurn := -1
		for _, u := range units {
			assert.GreaterOrEqual(t, u.Turn(), lastTurn, "iteration %d: emission out of order: %v", iter, describe(units))
			lastTurn = u.Turn()

			if u.Kind == KindDayChange {
				dayChanges = append(dayChanges, u.DayChange.DayNumber)
				continue
			}
			for _, turn := range u.Interval.Turns() {
				assert.Equal(t, DayForTurn(days, turn.TurnNumber), u.Day,
					"iteration %d: turn %d tagged with wrong day", iter, turn.TurnNumber)
			}
			seen = append(seen, u.Interval.Turns()...)
		}

		require.Len(t, seen, len(turns), "iteration %d: turns dropped or duplicated", iter)
		for i := range turns {
			assert.Same(t, turns[i], seen[i], "iteration %d", iter)
		}

		var want []int
		for _, d := range days[1:] {
			want = append(want, d.DayNumber)
		}
		assert.Equal(t, want, dayChanges, "iteration %d: every day change emitted once, in order", iter)
	}
}
