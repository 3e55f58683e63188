package logdata

import "fmt"

// Statgain holds substat gains for the three player stats.
type Statgain struct {
	Muscle      int `json:"muscle,omitempty" yaml:"muscle,omitempty"`
	Mysticality int `json:"mysticality,omitempty" yaml:"mysticality,omitempty"`
	Moxie       int `json:"moxie,omitempty" yaml:"moxie,omitempty"`
}

func (s Statgain) Add(o Statgain) Statgain {
	return Statgain{
		Muscle:      s.Muscle + o.Muscle,
		Mysticality: s.Mysticality + o.Mysticality,
		Moxie:       s.Moxie + o.Moxie,
	}
}

func (s Statgain) Sub(o Statgain) Statgain {
	return Statgain{
		Muscle:      s.Muscle - o.Muscle,
		Mysticality: s.Mysticality - o.Mysticality,
		Moxie:       s.Moxie - o.Moxie,
	}
}

// Portion returns num/den of the gain, rounded toward zero.
func (s Statgain) Portion(num, den int) Statgain {
	if den == 0 {
		return Statgain{}
	}
	return Statgain{
		Muscle:      s.Muscle * num / den,
		Mysticality: s.Mysticality * num / den,
		Moxie:       s.Moxie * num / den,
	}
}

func (s Statgain) Total() int {
	return s.Muscle + s.Mysticality + s.Moxie
}

func (s Statgain) IsZero() bool {
	return s == Statgain{}
}

func (s Statgain) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Muscle, s.Mysticality, s.Moxie)
}

// MeatGain splits meat movement by where it came from.
type MeatGain struct {
	Encounter int `json:"encounter,omitempty" yaml:"encounter,omitempty"`
	Other     int `json:"other,omitempty" yaml:"other,omitempty"`
	Spent     int `json:"spent,omitempty" yaml:"spent,omitempty"`
}

func (m MeatGain) Add(o MeatGain) MeatGain {
	return MeatGain{
		Encounter: m.Encounter + o.Encounter,
		Other:     m.Other + o.Other,
		Spent:     m.Spent + o.Spent,
	}
}

func (m MeatGain) Sub(o MeatGain) MeatGain {
	return MeatGain{
		Encounter: m.Encounter - o.Encounter,
		Other:     m.Other - o.Other,
		Spent:     m.Spent - o.Spent,
	}
}

func (m MeatGain) Portion(num, den int) MeatGain {
	if den == 0 {
		return MeatGain{}
	}
	return MeatGain{
		Encounter: m.Encounter * num / den,
		Other:     m.Other * num / den,
		Spent:     m.Spent * num / den,
	}
}

// Net is total gained minus total spent.
func (m MeatGain) Net() int {
	return m.Encounter + m.Other - m.Spent
}

// MPGain splits MP regeneration by source.
type MPGain struct {
	Encounter      int `json:"encounter,omitempty" yaml:"encounter,omitempty"`
	Starfish       int `json:"starfish,omitempty" yaml:"starfish,omitempty"`
	Resting        int `json:"resting,omitempty" yaml:"resting,omitempty"`
	OutOfEncounter int `json:"out_of_encounter,omitempty" yaml:"out_of_encounter,omitempty"`
	Consumable     int `json:"consumable,omitempty" yaml:"consumable,omitempty"`
}

func (m MPGain) Add(o MPGain) MPGain {
	return MPGain{
		Encounter:      m.Encounter + o.Encounter,
		Starfish:       m.Starfish + o.Starfish,
		Resting:        m.Resting + o.Resting,
		OutOfEncounter: m.OutOfEncounter + o.OutOfEncounter,
		Consumable:     m.Consumable + o.Consumable,
	}
}

func (m MPGain) Sub(o MPGain) MPGain {
	return MPGain{
		Encounter:      m.Encounter - o.Encounter,
		Starfish:       m.Starfish - o.Starfish,
		Resting:        m.Resting - o.Resting,
		OutOfEncounter: m.OutOfEncounter - o.OutOfEncounter,
		Consumable:     m.Consumable - o.Consumable,
	}
}

func (m MPGain) Portion(num, den int) MPGain {
	if den == 0 {
		return MPGain{}
	}
	return MPGain{
		Encounter:      m.Encounter * num / den,
		Starfish:       m.Starfish * num / den,
		Resting:        m.Resting * num / den,
		OutOfEncounter: m.OutOfEncounter * num / den,
		Consumable:     m.Consumable * num / den,
	}
}

func (m MPGain) Total() int {
	return m.Encounter + m.Starfish + m.Resting + m.OutOfEncounter + m.Consumable
}
