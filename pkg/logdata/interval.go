package logdata

import "fmt"

// IntervalTotals are the aggregate values of a turn interval.
type IntervalTotals struct {
	Statgain       Statgain `json:"stats,omitempty" yaml:"stats,omitempty"`
	Meat           MeatGain `json:"meat,omitempty" yaml:"meat,omitempty"`
	MP             MPGain   `json:"mp,omitempty" yaml:"mp,omitempty"`
	CombatTurns    int      `json:"combat_turns,omitempty" yaml:"combat_turns,omitempty"`
	NoncombatTurns int      `json:"noncombat_turns,omitempty" yaml:"noncombat_turns,omitempty"`
	OtherTurns     int      `json:"other_turns,omitempty" yaml:"other_turns,omitempty"`
}

func (t IntervalTotals) Add(o IntervalTotals) IntervalTotals {
	return IntervalTotals{
		Statgain:       t.Statgain.Add(o.Statgain),
		Meat:           t.Meat.Add(o.Meat),
		MP:             t.MP.Add(o.MP),
		CombatTurns:    t.CombatTurns + o.CombatTurns,
		NoncombatTurns: t.NoncombatTurns + o.NoncombatTurns,
		OtherTurns:     t.OtherTurns + o.OtherTurns,
	}
}

func (t IntervalTotals) Sub(o IntervalTotals) IntervalTotals {
	return IntervalTotals{
		Statgain:       t.Statgain.Sub(o.Statgain),
		Meat:           t.Meat.Sub(o.Meat),
		MP:             t.MP.Sub(o.MP),
		CombatTurns:    t.CombatTurns - o.CombatTurns,
		NoncombatTurns: t.NoncombatTurns - o.NoncombatTurns,
		OtherTurns:     t.OtherTurns - o.OtherTurns,
	}
}

// Portion returns num/den of every total, rounded toward zero.
func (t IntervalTotals) Portion(num, den int) IntervalTotals {
	if den == 0 {
		return IntervalTotals{}
	}
	return IntervalTotals{
		Statgain:       t.Statgain.Portion(num, den),
		Meat:           t.Meat.Portion(num, den),
		MP:             t.MP.Portion(num, den),
		CombatTurns:    t.CombatTurns * num / den,
		NoncombatTurns: t.NoncombatTurns * num / den,
		OtherTurns:     t.OtherTurns * num / den,
	}
}

// TurnInterval is a run of turns spent in one area. StartTurn is exclusive and
// EndTurn inclusive. A detailed interval references the SingleTurns it covers;
// a simple interval only carries Totals.
type TurnInterval struct {
	Area      string         `json:"area" yaml:"area"`
	StartTurn int            `json:"start" yaml:"start"`
	EndTurn   int            `json:"end" yaml:"end"`
	Totals    IntervalTotals `json:"totals,omitempty" yaml:"totals,omitempty"`

	turns []*SingleTurn
}

// NewDetailedInterval builds an interval over the given turns. The turns must
// be non-empty and are referenced, not copied.
func NewDetailedInterval(start int, turns []*SingleTurn) *TurnInterval {
	return &TurnInterval{
		Area:      turns[0].Area,
		StartTurn: start,
		EndTurn:   turns[len(turns)-1].TurnNumber,
		turns:     turns,
	}
}

func (ti *TurnInterval) Validate() error {
	if ti == nil {
		return InvalidArgument("interval cannot be nil")
	}
	if ti.StartTurn < 0 {
		return InvalidArgument("interval %q start must be non-negative, got %d", ti.Area, ti.StartTurn)
	}
	if ti.EndTurn < ti.StartTurn {
		return InvalidArgument("interval %q end %d is before start %d", ti.Area, ti.EndTurn, ti.StartTurn)
	}
	return nil
}

func (ti *TurnInterval) Detailed() bool {
	return ti.turns != nil
}

// Turns returns the turns of a detailed interval, or nil.
func (ti *TurnInterval) Turns() []*SingleTurn {
	return ti.turns
}

func (ti *TurnInterval) Length() int {
	return ti.EndTurn - ti.StartTurn
}

// Aggregate returns the interval totals, summing the turns of a detailed interval.
func (ti *TurnInterval) Aggregate() IntervalTotals {
	if !ti.Detailed() {
		return ti.Totals
	}
	var out IntervalTotals
	for _, t := range ti.turns {
		out.Statgain = out.Statgain.Add(t.Statgain)
		out.Meat = out.Meat.Add(t.Meat)
		out.MP = out.MP.Add(t.MP)
		switch t.Type {
		case TurnCombat:
			out.CombatTurns++
		case TurnNoncombat:
			out.NoncombatTurns++
		default:
			out.OtherTurns++
		}
	}
	return out
}

func (ti *TurnInterval) String() string {
	return fmt.Sprintf("[%d-%d] %s", ti.StartTurn+1, ti.EndTurn, ti.Area)
}
