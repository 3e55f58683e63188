package logdata

import (
	"fmt"
	"slices"
	"strings"
)

type TurnType int

const (
	TurnOther TurnType = iota
	TurnCombat
	TurnNoncombat
)

var turnTypeNames = map[TurnType]string{
	TurnOther:     "other",
	TurnCombat:    "combat",
	TurnNoncombat: "noncombat",
}

func (t TurnType) String() string {
	if name, ok := turnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TurnType(%d)", int(t))
}

func (t TurnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TurnType) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*t = TurnOther
		return nil
	}
	for k, v := range turnTypeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return InvalidArgument("unknown turn type %q", s)
}

// EncounterCategory marks the special encounter classes tracked in the summary.
type EncounterCategory int

const (
	CategoryRegular EncounterCategory = iota
	CategorySemirare
	CategoryBadMoon
	CategoryWandering
)

var categoryNames = map[EncounterCategory]string{
	CategoryRegular:   "regular",
	CategorySemirare:  "semirare",
	CategoryBadMoon:   "bad_moon",
	CategoryWandering: "wandering",
}

func (c EncounterCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EncounterCategory(%d)", int(c))
}

func (c EncounterCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *EncounterCategory) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*c = CategoryRegular
		return nil
	}
	for k, v := range categoryNames {
		if v == s {
			*c = k
			return nil
		}
	}
	return InvalidArgument("unknown encounter category %q", s)
}

// SingleTurn is one adventure spent in an area.
type SingleTurn struct {
	TurnNumber  int               `json:"turn" yaml:"turn"`
	DayNumber   int               `json:"day,omitempty" yaml:"day,omitempty"`
	Area        string            `json:"area" yaml:"area"`
	Encounter   string            `json:"encounter,omitempty" yaml:"encounter,omitempty"`
	Type        TurnType          `json:"type,omitempty" yaml:"type,omitempty"`
	Category    EncounterCategory `json:"category,omitempty" yaml:"category,omitempty"`
	Statgain    Statgain          `json:"stats,omitempty" yaml:"stats,omitempty"`
	Meat        MeatGain          `json:"meat,omitempty" yaml:"meat,omitempty"`
	MP          MPGain            `json:"mp,omitempty" yaml:"mp,omitempty"`
	Drops       []Item            `json:"drops,omitempty" yaml:"drops,omitempty"`
	Consumables []Consumable      `json:"consumables,omitempty" yaml:"consumables,omitempty"`
	Skills      []SkillCast       `json:"skills,omitempty" yaml:"skills,omitempty"`
	CombatItems []Item            `json:"combat_items,omitempty" yaml:"combat_items,omitempty"`
	Equipment   Equipment         `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Familiar    string            `json:"familiar,omitempty" yaml:"familiar,omitempty"`
	FreeRunaway bool              `json:"free_runaway,omitempty" yaml:"free_runaway,omitempty"`
	Encounters  []Encounter       `json:"encounters,omitempty" yaml:"encounters,omitempty"`
}

func (t *SingleTurn) Validate() error {
	if t == nil {
		return InvalidArgument("turn cannot be nil")
	}
	if t.TurnNumber < 0 {
		return InvalidArgument("turn number must be non-negative, got %d", t.TurnNumber)
	}
	if t.DayNumber < 0 {
		return InvalidArgument("turn %d: day number must be non-negative, got %d", t.TurnNumber, t.DayNumber)
	}
	for _, it := range t.Drops {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("turn %d drop: %w", t.TurnNumber, err)
		}
	}
	for _, it := range t.CombatItems {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("turn %d combat item: %w", t.TurnNumber, err)
		}
	}
	for _, c := range t.Consumables {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("turn %d consumable: %w", t.TurnNumber, err)
		}
	}
	for _, s := range t.Skills {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("turn %d skill: %w", t.TurnNumber, err)
		}
	}
	return nil
}

// Fold merges a sub-action that shares this turn's number into the turn. The
// sub-action is kept as a nested encounter; its gains and items are added.
func (t *SingleTurn) Fold(o *SingleTurn) {
	t.Encounters = append(t.Encounters, Encounter{
		TurnNumber: o.TurnNumber,
		Area:       o.Area,
		Name:       o.Encounter,
	})
	t.Encounters = append(t.Encounters, o.Encounters...)
	t.Statgain = t.Statgain.Add(o.Statgain)
	t.Meat = t.Meat.Add(o.Meat)
	t.MP = t.MP.Add(o.MP)
	t.Drops = append(t.Drops, o.Drops...)
	t.Consumables = append(t.Consumables, o.Consumables...)
	t.Skills = append(t.Skills, o.Skills...)
	t.CombatItems = append(t.CombatItems, o.CombatItems...)
	t.FreeRunaway = t.FreeRunaway || o.FreeRunaway
	if t.Category == CategoryRegular {
		t.Category = o.Category
	}
	if o.Equipment != nil {
		t.Equipment = o.Equipment.Clone()
	}
	if o.Familiar != "" {
		t.Familiar = o.Familiar
	}
}

// Clone returns a deep copy of the turn.
func (t *SingleTurn) Clone() *SingleTurn {
	c := *t
	c.Drops = slices.Clone(t.Drops)
	c.Consumables = slices.Clone(t.Consumables)
	c.Skills = slices.Clone(t.Skills)
	c.CombatItems = slices.Clone(t.CombatItems)
	c.Encounters = slices.Clone(t.Encounters)
	c.Equipment = t.Equipment.Clone()
	return &c
}

// ConsumableStatgain sums the stat gains of the turn's consumables.
func (t *SingleTurn) ConsumableStatgain() Statgain {
	var s Statgain
	for _, c := range t.Consumables {
		s = s.Add(c.Statgain)
	}
	return s
}
