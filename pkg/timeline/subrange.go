package timeline

import (
	"fmt"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
)

// SubIntervalLogData returns a new finalized store holding only the turns and
// side events with start <= turn <= end. The day active at start becomes the
// first day of the new store.
func (s *Store) SubIntervalLogData(start, end int) (*Store, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, logdata.InvalidArgument("range start must be non-negative, got %d", start)
	}
	if end <= start {
		return nil, logdata.InvalidArgument("range end %d must be after start %d", end, start)
	}

	days := s.streams.DayChanges
	active := reconcile.DayForTurn(days, start)

	opts := s.opts
	opts.Name = fmt.Sprintf("%s [%d-%d]", s.opts.Name, start, end)
	if !opts.StartDate.IsZero() {
		opts.StartDate = opts.StartDate.AddDate(0, 0, active-days[0].DayNumber)
	}
	sub := New(opts)
	sub.seeded = true

	if err := sub.AddDayChange(logdata.DayChange{DayNumber: active, TurnNumber: start}); err != nil {
		return nil, err
	}
	for _, dc := range days {
		if dc.DayNumber > active && dc.TurnNumber >= start && dc.TurnNumber <= end {
			if err := sub.AddDayChange(dc); err != nil {
				return nil, err
			}
		}
	}

	if s.opts.Mode == ModeTurns {
		for _, t := range s.turns {
			if t.TurnNumber < start || t.TurnNumber > end {
				continue
			}
			if err := sub.AddTurn(t); err != nil {
				return nil, err
			}
		}
	} else {
		for _, iv := range s.intervals {
			lo, hi := max(iv.StartTurn, start-1, 0), min(iv.EndTurn, end)
			if hi <= lo {
				continue
			}
			totals := iv.Totals
			if hi-lo != iv.Length() {
				totals = totals.Portion(hi-lo, iv.Length())
			}
			clipped := &logdata.TurnInterval{Area: iv.Area, StartTurn: lo, EndTurn: hi, Totals: totals}
			if err := sub.AddInterval(clipped); err != nil {
				return nil, err
			}
		}
	}

	if err := copyRange(s.familiars, start, end, sub.AddFamiliarChange); err != nil {
		return nil, err
	}
	if err := copyRange(s.pulls, start, end, sub.AddPull); err != nil {
		return nil, err
	}
	if err := copyRange(s.equipment, start, end, sub.AddEquipmentChange); err != nil {
		return nil, err
	}
	if err := copyRange(s.snapshots, start, end, sub.AddPlayerSnapshot); err != nil {
		return nil, err
	}
	if err := copyRange(s.levels, start, end, sub.AddLevel); err != nil {
		return nil, err
	}
	if err := copyRange(s.learned, start, end, sub.AddLearnedSkill); err != nil {
		return nil, err
	}
	if err := copyRange(s.hybrids, start, end, sub.AddHybridContent); err != nil {
		return nil, err
	}
	if err := copyRange(s.hunted, start, end, sub.AddHuntedCombat); err != nil {
		return nil, err
	}
	if err := copyRange(s.banished, start, end, sub.AddBanishedCombat); err != nil {
		return nil, err
	}
	if err := copyRange(s.disintegrated, start, end, sub.AddDisintegratedCombat); err != nil {
		return nil, err
	}
	if err := copyRange(s.lost, start, end, sub.AddLostCombat); err != nil {
		return nil, err
	}
	if err := copyRange(s.notes, start, end, sub.AddNote); err != nil {
		return nil, err
	}

	if err := sub.CreateSummary(); err != nil {
		return nil, fmt.Errorf("failed to summarize turns %d-%d: %w", start, end, err)
	}
	return sub, nil
}

func copyRange[T logdata.Dated](src *logdata.Stream[T], start, end int, add func(T) error) error {
	for _, v := range src.Range(start, end) {
		if err := add(v); err != nil {
			return err
		}
	}
	return nil
}
