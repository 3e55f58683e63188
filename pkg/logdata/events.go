package logdata

import "math"

// Dated is implemented by every record stored in a turn-sorted stream.
type Dated interface {
	Turn() int
}

// DayChange marks the start of an in-game day. TurnNumber is the number of
// turns completed when the day began.
type DayChange struct {
	DayNumber  int `json:"day" yaml:"day"`
	TurnNumber int `json:"turn" yaml:"turn"`
}

// NoDayChange signals that no further day changes remain.
var NoDayChange = DayChange{DayNumber: math.MaxInt, TurnNumber: math.MaxInt}

func (d DayChange) Turn() int { return d.TurnNumber }

func (d DayChange) IsSentinel() bool { return d == NoDayChange }

type FamiliarChange struct {
	Familiar   string `json:"familiar" yaml:"familiar"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (f FamiliarChange) Turn() int { return f.TurnNumber }

type Pull struct {
	Item       string `json:"item" yaml:"item"`
	Amount     int    `json:"amount" yaml:"amount"`
	TurnNumber int    `json:"turn" yaml:"turn"`
	DayNumber  int    `json:"day" yaml:"day"`
}

func (p Pull) Turn() int { return p.TurnNumber }

type EquipmentChange struct {
	TurnNumber int       `json:"turn" yaml:"turn"`
	Equipment  Equipment `json:"equipment" yaml:"equipment"`
}

func (e EquipmentChange) Turn() int { return e.TurnNumber }

// PlayerSnapshot records the player's status at a point in the run.
type PlayerSnapshot struct {
	TurnNumber  int `json:"turn" yaml:"turn"`
	DayNumber   int `json:"day,omitempty" yaml:"day,omitempty"`
	Muscle      int `json:"muscle,omitempty" yaml:"muscle,omitempty"`
	Mysticality int `json:"mysticality,omitempty" yaml:"mysticality,omitempty"`
	Moxie       int `json:"moxie,omitempty" yaml:"moxie,omitempty"`
	Meat        int `json:"meat,omitempty" yaml:"meat,omitempty"`
	Adventures  int `json:"adventures,omitempty" yaml:"adventures,omitempty"`
	Fullness    int `json:"fullness,omitempty" yaml:"fullness,omitempty"`
	Drunkenness int `json:"drunkenness,omitempty" yaml:"drunkenness,omitempty"`
	Spleen      int `json:"spleen,omitempty" yaml:"spleen,omitempty"`
}

func (p PlayerSnapshot) Turn() int { return p.TurnNumber }

// LevelData records the turn on which a level was reached.
type LevelData struct {
	Level      int `json:"level" yaml:"level"`
	TurnNumber int `json:"turn" yaml:"turn"`
}

func (l LevelData) Turn() int { return l.TurnNumber }

type LearnedSkill struct {
	Name       string `json:"name" yaml:"name"`
	TurnNumber int    `json:"turn" yaml:"turn"`
	DayNumber  int    `json:"day,omitempty" yaml:"day,omitempty"`
}

func (l LearnedSkill) Turn() int { return l.TurnNumber }

// HybridData records a DNA hybridization.
type HybridData struct {
	Name       string `json:"name" yaml:"name"`
	Intrinsic  bool   `json:"intrinsic,omitempty" yaml:"intrinsic,omitempty"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (h HybridData) Turn() int { return h.TurnNumber }

type HuntedCombat struct {
	Name       string `json:"name" yaml:"name"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (h HuntedCombat) Turn() int { return h.TurnNumber }

type BanishedCombat struct {
	Name       string `json:"name" yaml:"name"`
	Banisher   string `json:"banisher,omitempty" yaml:"banisher,omitempty"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (b BanishedCombat) Turn() int { return b.TurnNumber }

type DisintegratedCombat struct {
	Name       string `json:"name" yaml:"name"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (d DisintegratedCombat) Turn() int { return d.TurnNumber }

type LostCombat struct {
	Name       string `json:"name" yaml:"name"`
	Area       string `json:"area,omitempty" yaml:"area,omitempty"`
	TurnNumber int    `json:"turn" yaml:"turn"`
}

func (l LostCombat) Turn() int { return l.TurnNumber }

// Note is a header or footer comment attached to a turn.
type Note struct {
	TurnNumber int    `json:"turn" yaml:"turn"`
	Header     string `json:"header,omitempty" yaml:"header,omitempty"`
	Footer     string `json:"footer,omitempty" yaml:"footer,omitempty"`
}

func (n Note) Turn() int { return n.TurnNumber }

// FreeAction is synthesized from a turn's nested encounters: a free rest or a
// zero-turn crafting action.
type FreeAction struct {
	Name       string `json:"name"`
	Area       string `json:"area,omitempty"`
	Crafting   bool   `json:"crafting,omitempty"`
	Runaway    bool   `json:"runaway,omitempty"`
	TurnNumber int    `json:"turn"`
}

func (f FreeAction) Turn() int { return f.TurnNumber }

// Streams is a read-only snapshot of every dated side-event stream.
type Streams struct {
	DayChanges       []DayChange
	Familiars        []FamiliarChange
	Pulls            []Pull
	EquipmentChanges []EquipmentChange
	Snapshots        []PlayerSnapshot
	Levels           []LevelData
	LearnedSkills    []LearnedSkill
	Hybrids          []HybridData
	Hunted           []HuntedCombat
	Banished         []BanishedCombat
	Disintegrated    []DisintegratedCombat
	Lost             []LostCombat
	Notes            []Note
}
