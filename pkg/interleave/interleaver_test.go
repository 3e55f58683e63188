package interleave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
)

func intervalUnit(start, day int, turns ...*logdata.SingleTurn) reconcile.Unit {
	return reconcile.Unit{
		Kind:     reconcile.KindInterval,
		Interval: logdata.NewDetailedInterval(start, turns),
		Day:      day,
	}
}

func dayUnit(day, turn int) reconcile.Unit {
	dc := logdata.DayChange{DayNumber: day, TurnNumber: turn}
	return reconcile.Unit{Kind: reconcile.KindDayChange, DayChange: dc, Day: day}
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestMerge_OrdersByTurnThenKind(t *testing.T) {
	pulls := []Event{{Kind: KindPull, Value: logdata.Pull{Item: "pie", TurnNumber: 3}}}
	levels := []Event{
		{Kind: KindLevel, Value: logdata.LevelData{Level: 2, TurnNumber: 1}},
		{Kind: KindLevel, Value: logdata.LevelData{Level: 3, TurnNumber: 3}},
	}
	notes := []Event{{Kind: KindNote, Value: logdata.Note{TurnNumber: 3, Header: "boss"}}}
	familiars := []Event{{Kind: KindFamiliar, Value: logdata.FamiliarChange{Familiar: "Grey Goose", TurnNumber: 3}}}

	got := Merge(notes, levels, familiars, pulls)

	require.Len(t, got, 5)
	assert.Equal(t, []Kind{KindLevel, KindPull, KindFamiliar, KindLevel, KindNote}, kinds(got))
	assert.Equal(t, []int{1, 3, 3, 3, 3}, []int{got[0].Turn(), got[1].Turn(), got[2].Turn(), got[3].Turn(), got[4].Turn()})
}

func TestMerge_SameKindKeepsInputOrder(t *testing.T) {
	a := []Event{{Kind: KindNote, Value: logdata.Note{TurnNumber: 2, Header: "first"}}}
	b := []Event{{Kind: KindNote, Value: logdata.Note{TurnNumber: 2, Header: "second"}}}

	got := Merge(a, b)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Value.(logdata.Note).Header)
	assert.Equal(t, "second", got[1].Value.(logdata.Note).Header)

	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "pull", KindPull.String())
	assert.Equal(t, "free_action", KindFreeAction.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func turn(n int, area string) *logdata.SingleTurn {
	return &logdata.SingleTurn{TurnNumber: n, Area: area, Type: logdata.TurnCombat}
}

func TestInterleaver_PullOnDayBoundary(t *testing.T) {
	streams := logdata.Streams{
		Pulls: []logdata.Pull{
			{Item: "wrecked generator", Amount: 1, TurnNumber: 5, DayNumber: 2},
			{Item: "Ur-Donut", Amount: 1, TurnNumber: 12, DayNumber: 3},
		},
	}
	var first []*logdata.SingleTurn
	for n := 1; n <= 12; n++ {
		first = append(first, turn(n, "The Hidden Park"))
	}
	units := []reconcile.Unit{
		intervalUnit(0, 2, first...),
		dayUnit(3, 12),
		intervalUnit(12, 3, turn(13, "The Hidden Temple"), turn(14, "The Hidden Temple")),
	}

	il := New(streams, DefaultConfig())
	b1 := il.Next(units[0])
	require.Len(t, b1.Events, 1)
	assert.Equal(t, "wrecked generator", b1.Events[0].Value.(logdata.Pull).Item)

	b2 := il.Next(units[1])
	require.Len(t, b2.Events, 1, "pull made after the day began belongs to the day change")
	assert.Equal(t, "Ur-Donut", b2.Events[0].Value.(logdata.Pull).Item)

	b3 := il.Next(units[2])
	assert.Empty(t, b3.Events)
	assert.Empty(t, il.Flush().Events)
}

func TestInterleaver_DeferredConsumables(t *testing.T) {
	late := turn(10, "The Haunted Pantry")
	late.Consumables = []logdata.Consumable{
		{Name: "fortune cookie", Type: logdata.ConsumableFood, Amount: 1},
		{Name: "ice-cold Willer", Type: logdata.ConsumableBooze, Amount: 1, DayNumber: 2},
		{Name: "agua de vida", Type: logdata.ConsumableSpleen, Amount: 1, DayNumber: 3},
	}

	il := New(logdata.Streams{}, DefaultConfig())
	b := il.Next(intervalUnit(9, 1, late))
	assert.Empty(t, b.Events, "same day consumables stay with their turn")

	b = il.Next(dayUnit(2, 10))
	require.Len(t, b.Events, 1)
	used := b.Events[0].Value.(UsedConsumable)
	assert.Equal(t, "ice-cold Willer", used.Name)
	assert.Equal(t, 10, used.Turn(), "turn number filled from the owning turn")

	b = il.Next(dayUnit(3, 10))
	require.Len(t, b.Events, 1)
	assert.Equal(t, KindConsumable, b.Events[0].Kind)
	assert.Equal(t, "agua de vida", b.Events[0].Value.(UsedConsumable).Name)

	assert.Empty(t, il.Flush().Events)
}

func TestInterleaver_FlushReturnsLeftovers(t *testing.T) {
	t1 := turn(1, "Noob Cave")
	t1.Consumables = []logdata.Consumable{{Name: "Ambitious Turkey", Amount: 1, DayNumber: 4}}
	streams := logdata.Streams{
		Levels: []logdata.LevelData{{Level: 2, TurnNumber: 1}, {Level: 3, TurnNumber: 40}},
		Notes:  []logdata.Note{{TurnNumber: 41, Footer: "ran out of adventures"}},
	}

	il := New(streams, DefaultConfig())
	b := il.Next(intervalUnit(0, 1, t1))
	assert.Equal(t, []Kind{KindLevel}, kinds(b.Events))

	rest := il.Flush()
	assert.Equal(t, []Kind{KindConsumable, KindLevel, KindNote}, kinds(rest.Events))
}

func TestInterleaver_SideEventsWithinInterval(t *testing.T) {
	streams := logdata.Streams{
		Familiars:     []logdata.FamiliarChange{{Familiar: "Lil' Barrel Mimic", TurnNumber: 0}},
		Hunted:        []logdata.HuntedCombat{{Name: "dairy goat", TurnNumber: 2}},
		Banished:      []logdata.BanishedCombat{{Name: "Knob Goblin Harem Guard", Banisher: "Feel Hatred", TurnNumber: 2}},
		Disintegrated: []logdata.DisintegratedCombat{{Name: "ninja snowman assassin", TurnNumber: 3}},
		Lost:          []logdata.LostCombat{{Name: "goth giant", TurnNumber: 4}},
		Hybrids:       []logdata.HybridData{{Name: "Fish", Intrinsic: true, TurnNumber: 2}},
		LearnedSkills: []logdata.LearnedSkill{{Name: "Saucegeyser", TurnNumber: 3}},
	}
	il := New(streams, DefaultConfig())
	b := il.Next(intervalUnit(0, 1, turn(1, "A"), turn(2, "A"), turn(3, "A")))

	assert.Equal(t, []Kind{KindFamiliar, KindHybrid, KindHunted, KindBanished, KindDisintegrated, KindLearnedSkill}, kinds(b.Events))

	b = il.Next(intervalUnit(3, 1, turn(4, "B")))
	assert.Equal(t, []Kind{KindLost}, kinds(b.Events))
}

func TestInterleaver_FreeActions(t *testing.T) {
	t1 := turn(7, "The Castle in the Clouds in the Sky (Basement)")
	t1.FreeRunaway = true
	t1.Encounter = "Procrastination Giant"
	t1.Encounters = []logdata.Encounter{
		{TurnNumber: 7, Area: "Your Campsite", Name: "Rest"},
		{TurnNumber: 7, Name: "Cook ghost pickle on a stick"},
		{TurnNumber: 7, Name: "Cooking lesson"},
		{TurnNumber: 7, Name: "Mix"},
	}

	il := New(logdata.Streams{}, DefaultConfig())
	b := il.Next(intervalUnit(6, 1, t1))

	require.Len(t, b.Events, 4)
	var runaway, rest, crafts int
	for _, e := range b.Events {
		require.Equal(t, KindFreeAction, e.Kind)
		fa := e.Value.(logdata.FreeAction)
		switch {
		case fa.Runaway:
			runaway++
			assert.Equal(t, "Procrastination Giant", fa.Name)
		case fa.Crafting:
			crafts++
		default:
			rest++
			assert.Equal(t, "Your Campsite", fa.Area)
		}
	}
	assert.Equal(t, 1, runaway)
	assert.Equal(t, 1, rest)
	assert.Equal(t, 2, crafts)
}

func TestInterleaver_RestAreaConfigurable(t *testing.T) {
	t1 := turn(1, "A")
	t1.Encounters = []logdata.Encounter{{TurnNumber: 1, Area: "Your Campsite", Name: "Rest"}}

	cfg := DefaultConfig()
	cfg.RestArea = "Chateau Mantegna"
	b := New(logdata.Streams{}, cfg).Next(intervalUnit(0, 1, t1))
	assert.Empty(t, b.Events)
}

func TestInterleaver_CurrencyAndOneTimeDrops(t *testing.T) {
	t1 := turn(1, "The Hidden Bowling Alley")
	t1.Drops = []logdata.Item{
		{Name: "copper coin", Amount: 3},
		{Name: "gold coin", Amount: 1},
		{Name: "star chart", Amount: 1},
	}
	t2 := turn(2, "The Hole in the Sky")
	t2.Drops = []logdata.Item{{Name: "silver coin", Amount: 2}, {Name: "star chart", Amount: 1}}
	t3 := turn(3, "The Hole in the Sky")
	t3.Drops = []logdata.Item{{Name: "copper coin", Amount: 1}}

	il := New(logdata.Streams{}, DefaultConfig())

	b := il.Next(intervalUnit(0, 1, t1))
	assert.Equal(t, 103, b.Currency)
	assert.Equal(t, 103, b.DayCurrency)
	require.Len(t, b.NotableDrops, 1)
	assert.Equal(t, "star chart", b.NotableDrops[0].Name)

	b = il.Next(intervalUnit(1, 1, t2))
	assert.Equal(t, 20, b.Currency)
	assert.Equal(t, 123, b.DayCurrency)
	assert.Empty(t, b.NotableDrops, "one-time items are reported once")

	b = il.Next(dayUnit(2, 2))
	assert.Zero(t, b.DayCurrency)

	b = il.Next(intervalUnit(2, 2, t3))
	assert.Equal(t, 1, b.Currency)
	assert.Equal(t, 1, b.DayCurrency)
}

func TestInDay(t *testing.T) {
	assert.True(t, InDay(logdata.Consumable{}, 1))
	assert.True(t, InDay(logdata.Consumable{DayNumber: 1}, 2))
	assert.True(t, InDay(logdata.Consumable{DayNumber: 2}, 2))
	assert.False(t, InDay(logdata.Consumable{DayNumber: 3}, 2))
}
