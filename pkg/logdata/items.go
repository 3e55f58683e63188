package logdata

import (
	"fmt"
	"maps"
	"strings"
)

// Item is a dropped or pulled item with the turn it was found on.
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Amount      int    `json:"amount" yaml:"amount"`
	FoundOnTurn int    `json:"turn,omitempty" yaml:"turn,omitempty"`
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return InvalidArgument("item name cannot be empty")
	}
	if i.Amount <= 0 {
		return InvalidArgument("item %q amount must be positive, got %d", i.Name, i.Amount)
	}
	if i.FoundOnTurn < 0 {
		return InvalidArgument("item %q turn must be non-negative, got %d", i.Name, i.FoundOnTurn)
	}
	return nil
}

type ConsumableType int

const (
	ConsumableOther ConsumableType = iota
	ConsumableFood
	ConsumableBooze
	ConsumableSpleen
)

var consumableTypeNames = map[ConsumableType]string{
	ConsumableOther:  "other",
	ConsumableFood:   "food",
	ConsumableBooze:  "booze",
	ConsumableSpleen: "spleen",
}

func (c ConsumableType) String() string {
	if name, ok := consumableTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ConsumableType(%d)", int(c))
}

func (c ConsumableType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ConsumableType) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*c = ConsumableOther
		return nil
	}
	for k, v := range consumableTypeNames {
		if v == s {
			*c = k
			return nil
		}
	}
	return InvalidArgument("unknown consumable type %q", s)
}

// Consumable is an item eaten, drunk, chewed or used. DayNumber records when it
// was used, which can be later than the day of the turn it is attached to.
type Consumable struct {
	Name       string         `json:"name" yaml:"name"`
	Type       ConsumableType `json:"type,omitempty" yaml:"type,omitempty"`
	Amount     int            `json:"amount" yaml:"amount"`
	TurnNumber int            `json:"turn,omitempty" yaml:"turn,omitempty"`
	DayNumber  int            `json:"day,omitempty" yaml:"day,omitempty"`
	Adventures int            `json:"adventures,omitempty" yaml:"adventures,omitempty"`
	Statgain   Statgain       `json:"stats,omitempty" yaml:"stats,omitempty"`
}

func (c Consumable) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return InvalidArgument("consumable name cannot be empty")
	}
	if c.Amount <= 0 {
		return InvalidArgument("consumable %q amount must be positive, got %d", c.Name, c.Amount)
	}
	if c.TurnNumber < 0 || c.DayNumber < 0 {
		return InvalidArgument("consumable %q has negative turn or day", c.Name)
	}
	return nil
}

// SkillCast counts casts of one skill on a turn.
type SkillCast struct {
	Name   string `json:"name" yaml:"name"`
	Casts  int    `json:"casts" yaml:"casts"`
	MPCost int    `json:"mp_cost,omitempty" yaml:"mp_cost,omitempty"`
}

func (s SkillCast) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return InvalidArgument("skill name cannot be empty")
	}
	if s.Casts <= 0 {
		return InvalidArgument("skill %q casts must be positive, got %d", s.Name, s.Casts)
	}
	return nil
}

// Equipment maps slot names to the item worn in that slot.
type Equipment map[string]string

func (e Equipment) Clone() Equipment {
	if e == nil {
		return nil
	}
	return maps.Clone(e)
}

func (e Equipment) Equal(o Equipment) bool {
	return maps.Equal(e, o)
}

// Encounter is a sub-event that happened on a turn without spending one of its own.
type Encounter struct {
	TurnNumber int    `json:"turn" yaml:"turn"`
	Area       string `json:"area,omitempty" yaml:"area,omitempty"`
	Name       string `json:"name" yaml:"name"`
}
