package summary

import (
	"cmp"
	"slices"
	"sort"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
)

// Build replays a reconciled sequence once and returns its aggregate view.
// The result depends only on its inputs and copies everything it keeps.
func Build(units []reconcile.Unit, streams logdata.Streams) *LogSummary {
	a := newAggregator(streams)
	for _, u := range units {
		if u.Kind != reconcile.KindInterval {
			continue
		}
		if turns := u.Interval.Turns(); turns != nil {
			for _, t := range turns {
				a.addTurn(t, u.Day)
			}
			continue
		}
		a.addSimple(u.Interval, u.Day)
	}
	return a.finish()
}

type aggregator struct {
	s       *LogSummary
	streams logdata.Streams

	areas     map[string]int
	days      map[int]int
	drops     map[string]*ItemTally
	combat    map[string]*ItemTally
	consumed  map[string]*ConsumableTally
	skills    map[string]*SkillTally
	familiars map[string]*FamiliarUsage
}

func newAggregator(streams logdata.Streams) *aggregator {
	s := &LogSummary{Statgains: make(map[StatSource]logdata.Statgain, len(StatSources))}
	for _, src := range StatSources {
		s.Statgains[src] = logdata.Statgain{}
	}

	s.Levels = []LevelSummary{{Level: 1}}
	for _, l := range streams.Levels {
		last := &s.Levels[len(s.Levels)-1]
		if l.TurnNumber <= last.ReachedOnTurn {
			last.Level = max(last.Level, l.Level)
			continue
		}
		s.Levels = append(s.Levels, LevelSummary{Level: l.Level, ReachedOnTurn: l.TurnNumber})
	}

	days := make(map[int]int, len(streams.DayChanges))
	for i, dc := range streams.DayChanges {
		s.Days = append(s.Days, DaySummary{Day: dc.DayNumber, StartTurn: dc.TurnNumber})
		days[dc.DayNumber] = i
	}
	for _, p := range streams.Pulls {
		day := p.DayNumber
		if day == 0 && len(streams.DayChanges) > 0 {
			day = reconcile.DayForTurn(streams.DayChanges, p.TurnNumber)
		}
		if i, ok := days[day]; ok {
			s.Days[i].Pulls += p.Amount
		}
	}

	return &aggregator{
		s:         s,
		streams:   streams,
		areas:     make(map[string]int),
		days:      days,
		drops:     make(map[string]*ItemTally),
		combat:    make(map[string]*ItemTally),
		consumed:  make(map[string]*ConsumableTally),
		skills:    make(map[string]*SkillTally),
		familiars: make(map[string]*FamiliarUsage),
	}
}

// familiarAt returns the familiar recorded for the turn, falling back to the
// last familiar change at or before it.
func (a *aggregator) familiarAt(turn int) string {
	fs := a.streams.Familiars
	i := sort.Search(len(fs), func(i int) bool { return fs[i].TurnNumber > turn })
	if i == 0 {
		return ""
	}
	return fs[i-1].Familiar
}

func (a *aggregator) area(name string) *AreaSummary {
	i, ok := a.areas[name]
	if !ok {
		i = len(a.s.Areas)
		a.areas[name] = i
		a.s.Areas = append(a.s.Areas, AreaSummary{Area: name})
	}
	return &a.s.Areas[i]
}

func (a *aggregator) day(n int) *DaySummary {
	if i, ok := a.days[n]; ok {
		return &a.s.Days[i]
	}
	return nil
}

// add books totals that were already split by source.
func (a *aggregator) add(area string, day, turn int, t logdata.IntervalTotals) {
	turns := t.CombatTurns + t.NoncombatTurns + t.OtherTurns
	a.s.Turns.add(t)
	a.s.TotalStatgain = a.s.TotalStatgain.Add(t.Statgain)
	a.s.Meat = a.s.Meat.Add(t.Meat)
	a.s.MP = a.s.MP.Add(t.MP)

	ar := a.area(area)
	ar.Turns += turns
	ar.Statgain = ar.Statgain.Add(t.Statgain)

	lv := a.s.LevelAt(turn)
	lv.Turns.add(t)
	lv.Statgain = lv.Statgain.Add(t.Statgain)
	lv.Meat = lv.Meat.Add(t.Meat)
	lv.MP = lv.MP.Add(t.MP)

	if d := a.day(day); d != nil {
		d.Turns += turns
		d.Statgain = d.Statgain.Add(t.Statgain)
		d.Meat = d.Meat.Add(t.Meat)
	}
}

func (a *aggregator) addStats(src StatSource, s logdata.Statgain) {
	a.s.Statgains[src] = a.s.Statgains[src].Add(s)
}

func (a *aggregator) addTurn(t *logdata.SingleTurn, day int) {
	totals := logdata.IntervalTotals{Statgain: t.Statgain, Meat: t.Meat, MP: t.MP}
	encounterStats := t.Statgain.Sub(t.ConsumableStatgain())
	switch t.Type {
	case logdata.TurnCombat:
		totals.CombatTurns = 1
		a.addStats(SourceCombat, encounterStats)
	case logdata.TurnNoncombat:
		totals.NoncombatTurns = 1
		a.addStats(SourceNoncombat, encounterStats)
	default:
		totals.OtherTurns = 1
		a.addStats(SourceOther, encounterStats)
	}
	a.add(t.Area, day, t.TurnNumber, totals)

	for _, c := range t.Consumables {
		switch c.Type {
		case logdata.ConsumableFood:
			a.addStats(SourceFood, c.Statgain)
		case logdata.ConsumableBooze:
			a.addStats(SourceBooze, c.Statgain)
		default:
			a.addStats(SourceUsedItem, c.Statgain)
		}
		ct, ok := a.consumed[c.Name]
		if !ok {
			ct = &ConsumableTally{Name: c.Name, Type: c.Type}
			a.consumed[c.Name] = ct
		}
		ct.Amount += c.Amount
		ct.Adventures += c.Adventures
		ct.Statgain = ct.Statgain.Add(c.Statgain)
	}
	for _, it := range t.Drops {
		tally(a.drops, it, t.TurnNumber)
	}
	for _, it := range t.CombatItems {
		tally(a.combat, it, t.TurnNumber)
	}
	for _, sc := range t.Skills {
		st, ok := a.skills[sc.Name]
		if !ok {
			st = &SkillTally{Name: sc.Name}
			a.skills[sc.Name] = st
		}
		st.Casts += sc.Casts
		st.MPCost += sc.MPCost
	}

	fam := t.Familiar
	if fam == "" {
		fam = a.familiarAt(t.TurnNumber)
	}
	a.useFamiliar(fam, 1)

	if t.FreeRunaway {
		a.s.FreeRunaways++
	}
	ref := EncounterRef{TurnNumber: t.TurnNumber, DayNumber: day, Area: t.Area, Name: t.Encounter}
	switch t.Category {
	case logdata.CategorySemirare:
		a.s.Semirares = append(a.s.Semirares, ref)
	case logdata.CategoryBadMoon:
		a.s.BadMoon = append(a.s.BadMoon, ref)
	case logdata.CategoryWandering:
		a.s.Wandering = append(a.s.Wandering, ref)
	}
}

// addSimple books a summary-only interval. Its stats have no known source and
// count as other; its turns count at the level of its first turn.
func (a *aggregator) addSimple(ti *logdata.TurnInterval, day int) {
	t := ti.Totals
	if t.CombatTurns+t.NoncombatTurns+t.OtherTurns == 0 {
		t.OtherTurns = ti.Length()
	}
	a.addStats(SourceOther, t.Statgain)
	a.add(ti.Area, day, ti.StartTurn+1, t)
	a.useFamiliar(a.familiarAt(ti.StartTurn+1), t.CombatTurns+t.NoncombatTurns+t.OtherTurns)
}

func (a *aggregator) useFamiliar(name string, turns int) {
	if name == "" || turns == 0 {
		return
	}
	f, ok := a.familiars[name]
	if !ok {
		f = &FamiliarUsage{Name: name}
		a.familiars[name] = f
	}
	f.Turns += turns
}

func tally(m map[string]*ItemTally, it logdata.Item, turn int) {
	found := it.FoundOnTurn
	if found == 0 {
		found = turn
	}
	t, ok := m[it.Name]
	if !ok {
		t = &ItemTally{Name: it.Name, FirstTurn: found}
		m[it.Name] = t
	}
	t.Amount += it.Amount
	t.FirstTurn = min(t.FirstTurn, found)
}

func (a *aggregator) finish() *LogSummary {
	s := a.s
	for i := range s.Levels {
		if n := s.Levels[i].Turns.Total; n > 0 {
			s.Levels[i].StatsPerTurn = float64(s.Levels[i].Statgain.Total()) / float64(n)
		}
	}

	s.DroppedItems = sortedTallies(a.drops)
	s.CombatItems = sortedTallies(a.combat)

	for _, c := range a.consumed {
		s.Consumables = append(s.Consumables, *c)
	}
	slices.SortFunc(s.Consumables, func(x, y ConsumableTally) int {
		return cmp.Or(cmp.Compare(x.Type, y.Type), cmp.Compare(y.Amount, x.Amount), cmp.Compare(x.Name, y.Name))
	})
	for _, sk := range a.skills {
		s.Skills = append(s.Skills, *sk)
	}
	slices.SortFunc(s.Skills, func(x, y SkillTally) int {
		return cmp.Or(cmp.Compare(y.Casts, x.Casts), cmp.Compare(x.Name, y.Name))
	})
	for _, f := range a.familiars {
		s.Familiars = append(s.Familiars, *f)
	}
	slices.SortFunc(s.Familiars, func(x, y FamiliarUsage) int {
		return cmp.Or(cmp.Compare(y.Turns, x.Turns), cmp.Compare(x.Name, y.Name))
	})

	st := a.streams
	s.Hunted = slices.Clone(st.Hunted)
	s.Banished = slices.Clone(st.Banished)
	s.Disintegrated = slices.Clone(st.Disintegrated)
	s.Lost = slices.Clone(st.Lost)
	s.Pulls = slices.Clone(st.Pulls)
	s.LearnedSkills = slices.Clone(st.LearnedSkills)
	s.Hybrids = slices.Clone(st.Hybrids)
	s.Snapshots = slices.Clone(st.Snapshots)
	s.EquipmentChanges = len(st.EquipmentChanges)
	return s
}

func sortedTallies(m map[string]*ItemTally) []ItemTally {
	var out []ItemTally
	for _, t := range m {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(x, y ItemTally) int {
		return cmp.Or(cmp.Compare(y.Amount, x.Amount), cmp.Compare(x.Name, y.Name))
	})
	return out
}
