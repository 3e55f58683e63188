package interleave

import (
	"slices"
	"strings"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
)

// Currency is a collectible dropped in several denominations that is totalled
// per interval and per day.
type Currency struct {
	Name          string         `json:"name" yaml:"name"`
	Denominations map[string]int `json:"denominations" yaml:"denominations"`
}

// Value returns the currency value of an item, 0 when it is not a denomination.
func (c Currency) Value(it logdata.Item) int {
	return c.Denominations[it.Name] * it.Amount
}

// Config holds the game knowledge the interleaver needs.
type Config struct {
	// RestArea is the location whose nested encounters are free rests.
	RestArea string
	// CraftingPrefixes are the verbs that start a zero-turn crafting encounter.
	CraftingPrefixes []string
	Currency         Currency
	// OneTimeItems are reported only the first time they drop.
	OneTimeItems []string
}

func DefaultConfig() Config {
	return Config{
		RestArea:         "Your Campsite",
		CraftingPrefixes: []string{"Cook", "Mix", "Smith", "Combine", "Tinker", "Craft"},
		Currency: Currency{
			Name: "coins",
			Denominations: map[string]int{
				"copper coin": 1,
				"silver coin": 10,
				"gold coin":   100,
			},
		},
		OneTimeItems: []string{
			"Knob Goblin encryption key",
			"enchanted bean",
			"S.O.C.K.",
			"digital key",
			"star chart",
			"Wand of Nagamar",
			"Staff of Fats",
		},
	}
}

// Block is what the interleaver produces for one reconciled unit.
type Block struct {
	Events []Event
	// Currency collected in this interval and so far today.
	Currency    int
	DayCurrency int
	// NotableDrops lists one-time items seen for the first time in this traversal.
	NotableDrops []logdata.Item
}

// Interleaver holds the stream cursors of one traversal. Use a new one for
// every walk over the reconciled sequence.
type Interleaver struct {
	cfg     Config
	streams logdata.Streams
	pos     [numKinds]int

	lastEnd     int
	deferred    []logdata.Consumable
	dayCurrency int
	oneTime     map[string]bool
	seen        map[string]bool
}

func New(streams logdata.Streams, cfg Config) *Interleaver {
	oneTime := make(map[string]bool, len(cfg.OneTimeItems))
	for _, name := range cfg.OneTimeItems {
		oneTime[name] = true
	}
	return &Interleaver{
		cfg:     cfg,
		streams: streams,
		oneTime: oneTime,
		seen:    make(map[string]bool),
	}
}

// InDay reports whether a consumable attached to a turn of the given day was
// also used on that day.
func InDay(c logdata.Consumable, day int) bool {
	return c.DayNumber == 0 || c.DayNumber <= day
}

// Next returns the side events belonging to u and advances the cursors.
func (il *Interleaver) Next(u reconcile.Unit) Block {
	if u.Kind == reconcile.KindDayChange {
		return il.dayChange(u.DayChange)
	}
	return il.interval(u.Interval, u.Day)
}

// Flush returns every event not yet handed out.
func (il *Interleaver) Flush() Block {
	streams := il.takeAll(func(int) bool { return true }, func(logdata.Pull) bool { return true })
	streams = append(streams, consumableEvents(il.deferred))
	il.deferred = nil
	return Block{Events: Merge(streams...), DayCurrency: il.dayCurrency}
}

func (il *Interleaver) interval(ti *logdata.TurnInterval, day int) Block {
	end := ti.EndTurn
	upTo := func(turn int) bool { return turn <= end }
	streams := il.takeAll(upTo, func(p logdata.Pull) bool {
		return p.DayNumber == 0 || p.DayNumber <= day
	})

	var b Block
	var free []Event
	for _, t := range ti.Turns() {
		free = append(free, il.freeActions(t)...)
		for _, c := range t.Consumables {
			if !InDay(c, day) {
				if c.TurnNumber == 0 {
					c.TurnNumber = t.TurnNumber
				}
				il.deferred = append(il.deferred, c)
			}
		}
		for _, d := range t.Drops {
			b.Currency += il.cfg.Currency.Value(d)
			if il.oneTime[d.Name] && !il.seen[d.Name] {
				il.seen[d.Name] = true
				b.NotableDrops = append(b.NotableDrops, d)
			}
		}
	}
	slices.SortStableFunc(free, func(a, b Event) int { return a.Turn() - b.Turn() })
	streams = append(streams, free)

	il.dayCurrency += b.Currency
	il.lastEnd = max(il.lastEnd, end)
	b.Events = Merge(streams...)
	b.DayCurrency = il.dayCurrency
	return b
}

// dayChange emits the pulls and consumables of the closing turns that were
// used after the new day began.
func (il *Interleaver) dayChange(dc logdata.DayChange) Block {
	pulls := takePulls(&il.pos[KindPull], il.streams.Pulls, func(p logdata.Pull) bool {
		return p.TurnNumber <= il.lastEnd && p.DayNumber <= dc.DayNumber
	})

	var due, later []logdata.Consumable
	for _, c := range il.deferred {
		if c.DayNumber <= dc.DayNumber {
			due = append(due, c)
		} else {
			later = append(later, c)
		}
	}
	il.deferred = later
	il.dayCurrency = 0
	return Block{Events: Merge(pulls, consumableEvents(due))}
}

func (il *Interleaver) takeAll(upTo func(int) bool, pullOK func(logdata.Pull) bool) [][]Event {
	s := il.streams
	return [][]Event{
		takePulls(&il.pos[KindPull], s.Pulls, func(p logdata.Pull) bool { return upTo(p.TurnNumber) && pullOK(p) }),
		take(&il.pos[KindHybrid], s.Hybrids, KindHybrid, upTo),
		take(&il.pos[KindHunted], s.Hunted, KindHunted, upTo),
		take(&il.pos[KindBanished], s.Banished, KindBanished, upTo),
		take(&il.pos[KindDisintegrated], s.Disintegrated, KindDisintegrated, upTo),
		take(&il.pos[KindLost], s.Lost, KindLost, upTo),
		take(&il.pos[KindFamiliar], s.Familiars, KindFamiliar, upTo),
		take(&il.pos[KindLearnedSkill], s.LearnedSkills, KindLearnedSkill, upTo),
		take(&il.pos[KindLevel], s.Levels, KindLevel, upTo),
		take(&il.pos[KindNote], s.Notes, KindNote, upTo),
	}
}

// freeActions finds the free runaway of a turn and the free rests and zero-turn
// crafting among its nested encounters.
func (il *Interleaver) freeActions(t *logdata.SingleTurn) []Event {
	var out []Event
	if t.FreeRunaway {
		out = append(out, Event{Kind: KindFreeAction, Value: logdata.FreeAction{
			Name: t.Encounter, Area: t.Area, Runaway: true, TurnNumber: t.TurnNumber,
		}})
	}
	for _, e := range t.Encounters {
		switch {
		case il.cfg.RestArea != "" && e.Area == il.cfg.RestArea:
			out = append(out, Event{Kind: KindFreeAction, Value: logdata.FreeAction{
				Name: e.Name, Area: e.Area, TurnNumber: e.TurnNumber,
			}})
		case il.isCrafting(e.Name):
			out = append(out, Event{Kind: KindFreeAction, Value: logdata.FreeAction{
				Name: e.Name, Area: e.Area, Crafting: true, TurnNumber: e.TurnNumber,
			}})
		}
	}
	return out
}

func (il *Interleaver) isCrafting(name string) bool {
	for _, p := range il.cfg.CraftingPrefixes {
		if name == p || strings.HasPrefix(name, p+" ") {
			return true
		}
	}
	return false
}

func take[T logdata.Dated](pos *int, items []T, kind Kind, ok func(int) bool) []Event {
	var out []Event
	for *pos < len(items) && ok(items[*pos].Turn()) {
		out = append(out, Event{Kind: kind, Value: items[*pos]})
		*pos++
	}
	return out
}

func takePulls(pos *int, pulls []logdata.Pull, ok func(logdata.Pull) bool) []Event {
	var out []Event
	for *pos < len(pulls) && ok(pulls[*pos]) {
		out = append(out, Event{Kind: KindPull, Value: pulls[*pos]})
		*pos++
	}
	return out
}

func consumableEvents(cs []logdata.Consumable) []Event {
	out := make([]Event, 0, len(cs))
	for _, c := range cs {
		out = append(out, Event{Kind: KindConsumable, Value: UsedConsumable{Consumable: c}})
	}
	slices.SortStableFunc(out, func(a, b Event) int { return a.Turn() - b.Turn() })
	return out
}

// UsedConsumable adapts a consumable to the Dated interface.
type UsedConsumable struct {
	logdata.Consumable
}

func (u UsedConsumable) Turn() int { return u.TurnNumber }
