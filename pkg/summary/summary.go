// Package summary computes the aggregate statistics of a reconciled log.
package summary

import (
	"sort"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
)

// StatSource names where a stat gain came from.
type StatSource string

const (
	SourceCombat    StatSource = "combat"
	SourceNoncombat StatSource = "noncombat"
	SourceOther     StatSource = "other"
	SourceFood      StatSource = "food"
	SourceBooze     StatSource = "booze"
	SourceUsedItem  StatSource = "used_item"
)

// StatSources lists every source in display order.
var StatSources = []StatSource{SourceCombat, SourceNoncombat, SourceOther, SourceFood, SourceBooze, SourceUsedItem}

type TurnCounts struct {
	Total     int `json:"total"`
	Combat    int `json:"combat"`
	Noncombat int `json:"noncombat"`
	Other     int `json:"other"`
}

func (c *TurnCounts) add(t logdata.IntervalTotals) {
	c.Combat += t.CombatTurns
	c.Noncombat += t.NoncombatTurns
	c.Other += t.OtherTurns
	c.Total += t.CombatTurns + t.NoncombatTurns + t.OtherTurns
}

type AreaSummary struct {
	Area     string           `json:"area"`
	Turns    int              `json:"turns"`
	Statgain logdata.Statgain `json:"stats"`
}

type LevelSummary struct {
	Level         int              `json:"level"`
	ReachedOnTurn int              `json:"reached_on_turn"`
	Turns         TurnCounts       `json:"turns"`
	Statgain      logdata.Statgain `json:"stats"`
	StatsPerTurn  float64          `json:"stats_per_turn"`
	Meat          logdata.MeatGain `json:"meat"`
	MP            logdata.MPGain   `json:"mp"`
}

type DaySummary struct {
	Day       int              `json:"day"`
	StartTurn int              `json:"start_turn"`
	Turns     int              `json:"turns"`
	Statgain  logdata.Statgain `json:"stats"`
	Meat      logdata.MeatGain `json:"meat"`
	Pulls     int              `json:"pulls"`
}

type ItemTally struct {
	Name      string `json:"name"`
	Amount    int    `json:"amount"`
	FirstTurn int    `json:"first_turn"`
}

type ConsumableTally struct {
	Name       string                 `json:"name"`
	Type       logdata.ConsumableType `json:"type"`
	Amount     int                    `json:"amount"`
	Adventures int                    `json:"adventures"`
	Statgain   logdata.Statgain       `json:"stats"`
}

type SkillTally struct {
	Name   string `json:"name"`
	Casts  int    `json:"casts"`
	MPCost int    `json:"mp_cost"`
}

type FamiliarUsage struct {
	Name  string `json:"name"`
	Turns int    `json:"turns"`
}

// EncounterRef points at a notable turn.
type EncounterRef struct {
	TurnNumber int    `json:"turn"`
	DayNumber  int    `json:"day"`
	Area       string `json:"area"`
	Name       string `json:"name"`
}

// LogSummary is the aggregate view of one log. It holds copies only, so it
// stays valid independently of the timeline it was built from.
type LogSummary struct {
	Turns         TurnCounts                      `json:"turns"`
	Statgains     map[StatSource]logdata.Statgain `json:"statgains"`
	TotalStatgain logdata.Statgain                `json:"total_statgain"`
	Areas         []AreaSummary                   `json:"areas"`
	Levels        []LevelSummary                  `json:"levels"`
	Days          []DaySummary                    `json:"days"`
	Meat          logdata.MeatGain                `json:"meat"`
	MP            logdata.MPGain                  `json:"mp"`
	DroppedItems  []ItemTally                     `json:"dropped_items,omitempty"`
	CombatItems   []ItemTally                     `json:"combat_items,omitempty"`
	Consumables   []ConsumableTally               `json:"consumables,omitempty"`
	Skills        []SkillTally                    `json:"skills,omitempty"`
	Familiars     []FamiliarUsage                 `json:"familiars,omitempty"`

	Semirares     []EncounterRef                `json:"semirares,omitempty"`
	BadMoon       []EncounterRef                `json:"bad_moon,omitempty"`
	Wandering     []EncounterRef                `json:"wandering,omitempty"`
	Hunted        []logdata.HuntedCombat        `json:"hunted,omitempty"`
	Banished      []logdata.BanishedCombat      `json:"banished,omitempty"`
	Disintegrated []logdata.DisintegratedCombat `json:"disintegrated,omitempty"`
	Lost          []logdata.LostCombat          `json:"lost,omitempty"`
	FreeRunaways  int                           `json:"free_runaways"`

	Pulls            []logdata.Pull           `json:"pulls,omitempty"`
	LearnedSkills    []logdata.LearnedSkill   `json:"learned_skills,omitempty"`
	Hybrids          []logdata.HybridData     `json:"hybrids,omitempty"`
	EquipmentChanges int                      `json:"equipment_changes"`
	Snapshots        []logdata.PlayerSnapshot `json:"snapshots,omitempty"`
}

// LevelAt returns the level a turn is played at: the last level reached
// before the turn. It returns nil when no level is known.
func (s *LogSummary) LevelAt(turn int) *LevelSummary {
	if len(s.Levels) == 0 {
		return nil
	}
	i := sort.Search(len(s.Levels), func(i int) bool {
		return s.Levels[i].ReachedOnTurn >= turn
	})
	return &s.Levels[max(i-1, 0)]
}
