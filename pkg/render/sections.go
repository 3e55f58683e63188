package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/summary"
)

type section struct {
	key    string
	title  string
	render func(r *Renderer, s *summary.LogSummary) string
}

// summarySections is the fixed order of the summary part of a full log.
var summarySections = []section{
	{"turn-counts", "adventures", (*Renderer).turnCounts},
	{"stat-gains", "stat gains", (*Renderer).statGains},
	{"areas", "areas", (*Renderer).areas},
	{"levels", "levels", (*Renderer).levels},
	{"days", "days", (*Renderer).days},
	{"meat", "meat", (*Renderer).meat},
	{"meat-per-level", "meat per level", (*Renderer).meatPerLevel},
	{"mp", "MP gains", (*Renderer).mp},
	{"mp-per-level", "MP per level", (*Renderer).mpPerLevel},
	{"familiars", "familiars", (*Renderer).familiars},
	{"semirares", "semi-rares", func(r *Renderer, s *summary.LogSummary) string { return r.encounters(s.Semirares) }},
	{"bad-moon", "bad moon adventures", func(r *Renderer, s *summary.LogSummary) string { return r.encounters(s.BadMoon) }},
	{"wandering", "wandering encounters", func(r *Renderer, s *summary.LogSummary) string { return r.encounters(s.Wandering) }},
	{"hunted", "hunted combats", (*Renderer).hunted},
	{"banished", "banished combats", (*Renderer).banished},
	{"disintegrated", "disintegrated combats", (*Renderer).disintegrated},
	{"lost", "lost combats", (*Renderer).lost},
	{"free-runaways", "free runaways", (*Renderer).freeRunaways},
	{"pulls", "pulls", (*Renderer).pulls},
	{"consumables", "consumables", (*Renderer).consumables},
	{"dropped-items", "dropped items", func(r *Renderer, s *summary.LogSummary) string { return r.items(s.DroppedItems) }},
	{"combat-items", "combat items", func(r *Renderer, s *summary.LogSummary) string { return r.items(s.CombatItems) }},
	{"skills", "skills cast", (*Renderer).skills},
	{"learned-skills", "learned skills", (*Renderer).learnedSkills},
	{"hybridization", "hybridization", (*Renderer).hybrids},
	{"equipment", "equipment changes", (*Renderer).equipment},
	{"snapshots", "player snapshots", (*Renderer).snapshots},
}

// SectionKeys lists the summary section keys in render order.
func SectionKeys() []string {
	keys := make([]string, len(summarySections))
	for i, s := range summarySections {
		keys[i] = s.key
	}
	return keys
}

func (r *Renderer) turnCounts(s *summary.LogSummary) string {
	t := s.Turns
	return r.table([]string{"Total", "Combat", "Noncombat", "Other"},
		[][]string{{r.num(t.Total), r.num(t.Combat), r.num(t.Noncombat), r.num(t.Other)}})
}

func (r *Renderer) statGains(s *summary.LogSummary) string {
	rows := make([][]string, 0, len(summary.StatSources)+1)
	for _, src := range summary.StatSources {
		rows = append(rows, r.statRow(r.title.String(strings.ReplaceAll(string(src), "_", " ")), s.Statgains[src]))
	}
	rows = append(rows, r.statRow("Total", s.TotalStatgain))
	return r.table([]string{"Source", "Muscle", "Myst", "Moxie"}, rows)
}

func (r *Renderer) statRow(label string, g logdata.Statgain) []string {
	return []string{label, r.num(g.Muscle), r.num(g.Mysticality), r.num(g.Moxie)}
}

func (r *Renderer) areas(s *summary.LogSummary) string {
	if len(s.Areas) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Areas))
	for _, a := range s.Areas {
		rows = append(rows, []string{a.Area, r.num(a.Turns), r.stats(a.Statgain)})
	}
	return r.table([]string{"Area", "Turns", "Stats"}, rows)
}

func (r *Renderer) levels(s *summary.LogSummary) string {
	rows := make([][]string, 0, len(s.Levels))
	for _, l := range s.Levels {
		rows = append(rows, []string{
			strconv.Itoa(l.Level), r.num(l.ReachedOnTurn),
			r.num(l.Turns.Combat), r.num(l.Turns.Noncombat), r.num(l.Turns.Other),
			r.stats(l.Statgain), r.printer.Sprintf("%.1f", l.StatsPerTurn),
		})
	}
	return r.table([]string{"Level", "Reached", "Combat", "Noncombat", "Other", "Stats", "Stats/turn"}, rows)
}

func (r *Renderer) days(s *summary.LogSummary) string {
	if len(s.Days) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Days))
	for _, d := range s.Days {
		rows = append(rows, []string{
			strconv.Itoa(d.Day), r.num(d.StartTurn), r.num(d.Turns),
			r.stats(d.Statgain), r.num(d.Meat.Net()), r.num(d.Pulls),
		})
	}
	return r.table([]string{"Day", "Start", "Turns", "Stats", "Meat", "Pulls"}, rows)
}

func (r *Renderer) meatRow(label string, m logdata.MeatGain) []string {
	return []string{label, r.num(m.Encounter), r.num(m.Other), r.num(m.Spent), r.num(m.Net())}
}

var meatHeader = []string{"", "Encounter", "Other", "Spent", "Net"}

func (r *Renderer) meat(s *summary.LogSummary) string {
	return r.table(meatHeader, [][]string{r.meatRow("Total", s.Meat)})
}

func (r *Renderer) meatPerLevel(s *summary.LogSummary) string {
	rows := make([][]string, 0, len(s.Levels))
	for _, l := range s.Levels {
		rows = append(rows, r.meatRow(fmt.Sprintf("Level %d", l.Level), l.Meat))
	}
	return r.table(meatHeader, rows)
}

func (r *Renderer) mpRow(label string, m logdata.MPGain) []string {
	return []string{label, r.num(m.Encounter), r.num(m.Starfish), r.num(m.Resting),
		r.num(m.OutOfEncounter), r.num(m.Consumable), r.num(m.Total())}
}

var mpHeader = []string{"", "Encounter", "Starfish", "Resting", "Out of encounter", "Consumable", "Total"}

func (r *Renderer) mp(s *summary.LogSummary) string {
	return r.table(mpHeader, [][]string{r.mpRow("Total", s.MP)})
}

func (r *Renderer) mpPerLevel(s *summary.LogSummary) string {
	rows := make([][]string, 0, len(s.Levels))
	for _, l := range s.Levels {
		rows = append(rows, r.mpRow(fmt.Sprintf("Level %d", l.Level), l.MP))
	}
	return r.table(mpHeader, rows)
}

func (r *Renderer) familiars(s *summary.LogSummary) string {
	if len(s.Familiars) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Familiars))
	for _, f := range s.Familiars {
		rows = append(rows, []string{f.Name, r.num(f.Turns)})
	}
	return r.table([]string{"Familiar", "Turns"}, rows)
}

func (r *Renderer) encounters(refs []summary.EncounterRef) string {
	if len(refs) == 0 {
		return r.none()
	}
	lines := make([]string, 0, len(refs))
	for _, e := range refs {
		lines = append(lines, r.f.escape(fmt.Sprintf("Turn %d (day %d): %s in %s", e.TurnNumber, e.DayNumber, e.Name, e.Area)))
	}
	return r.list(lines)
}

// turnList renders one "Turn N: text" line per record.
func turnList[T logdata.Dated](r *Renderer, items []T, text func(T) string) string {
	if len(items) == 0 {
		return r.none()
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, r.f.escape(fmt.Sprintf("Turn %d: %s", it.Turn(), text(it))))
	}
	return r.list(lines)
}

func (r *Renderer) hunted(s *summary.LogSummary) string {
	return turnList(r, s.Hunted, func(h logdata.HuntedCombat) string { return h.Name })
}

func (r *Renderer) banished(s *summary.LogSummary) string {
	return turnList(r, s.Banished, func(b logdata.BanishedCombat) string {
		if b.Banisher == "" {
			return b.Name
		}
		return b.Name + " (" + b.Banisher + ")"
	})
}

func (r *Renderer) disintegrated(s *summary.LogSummary) string {
	return turnList(r, s.Disintegrated, func(d logdata.DisintegratedCombat) string { return d.Name })
}

func (r *Renderer) lost(s *summary.LogSummary) string {
	return turnList(r, s.Lost, func(l logdata.LostCombat) string {
		if l.Area == "" {
			return l.Name
		}
		return l.Name + " in " + l.Area
	})
}

func (r *Renderer) freeRunaways(s *summary.LogSummary) string {
	return r.paragraph(r.f.escape(fmt.Sprintf("%s free runaways", r.num(s.FreeRunaways))))
}

func (r *Renderer) pulls(s *summary.LogSummary) string {
	return turnList(r, s.Pulls, func(p logdata.Pull) string {
		return fmt.Sprintf("%s (day %d)", itemText(p.Item, p.Amount), p.DayNumber)
	})
}

func (r *Renderer) consumables(s *summary.LogSummary) string {
	if len(s.Consumables) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Consumables))
	for _, c := range s.Consumables {
		rows = append(rows, []string{c.Name, c.Type.String(), r.num(c.Amount), r.num(c.Adventures), r.stats(c.Statgain)})
	}
	return r.table([]string{"Name", "Type", "Amount", "Adventures", "Stats"}, rows)
}

func (r *Renderer) items(items []summary.ItemTally) string {
	if len(items) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Name, r.num(it.Amount), r.num(it.FirstTurn)})
	}
	return r.table([]string{"Item", "Amount", "First turn"}, rows)
}

func (r *Renderer) skills(s *summary.LogSummary) string {
	if len(s.Skills) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Skills))
	for _, sk := range s.Skills {
		rows = append(rows, []string{sk.Name, r.num(sk.Casts), r.num(sk.MPCost)})
	}
	return r.table([]string{"Skill", "Casts", "MP"}, rows)
}

func (r *Renderer) learnedSkills(s *summary.LogSummary) string {
	return turnList(r, s.LearnedSkills, func(l logdata.LearnedSkill) string { return l.Name })
}

func (r *Renderer) hybrids(s *summary.LogSummary) string {
	return turnList(r, s.Hybrids, func(h logdata.HybridData) string {
		if h.Intrinsic {
			return h.Name + " (intrinsic)"
		}
		return h.Name
	})
}

func (r *Renderer) equipment(s *summary.LogSummary) string {
	return r.paragraph(r.f.escape(fmt.Sprintf("%s equipment changes", r.num(s.EquipmentChanges))))
}

func (r *Renderer) snapshots(s *summary.LogSummary) string {
	if len(s.Snapshots) == 0 {
		return r.none()
	}
	rows := make([][]string, 0, len(s.Snapshots))
	for _, p := range s.Snapshots {
		rows = append(rows, []string{
			r.num(p.TurnNumber), strconv.Itoa(p.DayNumber),
			r.num(p.Muscle), r.num(p.Mysticality), r.num(p.Moxie),
			r.num(p.Meat), r.num(p.Adventures),
			fmt.Sprintf("%d/%d/%d", p.Fullness, p.Drunkenness, p.Spleen),
		})
	}
	return r.table([]string{"Turn", "Day", "Muscle", "Myst", "Moxie", "Meat", "Adventures", "Organs"}, rows)
}
