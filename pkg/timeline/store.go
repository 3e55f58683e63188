package timeline

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/jwebster45206/ascension-log/pkg/interleave"
	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/reconcile"
	"github.com/jwebster45206/ascension-log/pkg/render"
	"github.com/jwebster45206/ascension-log/pkg/summary"
)

const (
	stateIdle int32 = iota
	stateBuilding
	stateBuilt
)

// Store owns every record of one log. Records are added from one goroutine;
// once CreateSummary has succeeded the store is read-only and safe for
// concurrent readers.
type Store struct {
	opts  Options
	state atomic.Int32

	turns     []*logdata.SingleTurn
	intervals []*logdata.TurnInterval

	days          *logdata.Stream[logdata.DayChange]
	familiars     *logdata.Stream[logdata.FamiliarChange]
	pulls         *logdata.Stream[logdata.Pull]
	equipment     *logdata.Stream[logdata.EquipmentChange]
	snapshots     *logdata.Stream[logdata.PlayerSnapshot]
	levels        *logdata.Stream[logdata.LevelData]
	learned       *logdata.Stream[logdata.LearnedSkill]
	hybrids       *logdata.Stream[logdata.HybridData]
	hunted        *logdata.Stream[logdata.HuntedCombat]
	banished      *logdata.Stream[logdata.BanishedCombat]
	disintegrated *logdata.Stream[logdata.DisintegratedCombat]
	lost          *logdata.Stream[logdata.LostCombat]
	notes         *logdata.Stream[logdata.Note]

	// sub-range stores seed their first day at the range's first turn
	seeded bool

	// set by CreateSummary
	built   []*logdata.TurnInterval
	units   []reconcile.Unit
	streams logdata.Streams
	summary *summary.LogSummary
}

func equal[T comparable](prev, next T) bool { return prev == next }

// New creates an empty store.
func New(opts Options) *Store {
	return &Store{
		opts: opts,
		days: logdata.NewStream(equal[logdata.DayChange]),
		familiars: logdata.NewStream(func(prev, next logdata.FamiliarChange) bool {
			return prev.Familiar == next.Familiar
		}),
		pulls: logdata.NewStream[logdata.Pull](nil),
		equipment: logdata.NewStream(func(prev, next logdata.EquipmentChange) bool {
			return prev.Equipment.Equal(next.Equipment)
		}),
		snapshots: logdata.NewStream(equal[logdata.PlayerSnapshot]),
		levels: logdata.NewStream(func(prev, next logdata.LevelData) bool {
			return next.Level <= prev.Level
		}),
		learned:       logdata.NewStream(equal[logdata.LearnedSkill]),
		hybrids:       logdata.NewStream(equal[logdata.HybridData]),
		hunted:        logdata.NewStream(equal[logdata.HuntedCombat]),
		banished:      logdata.NewStream(equal[logdata.BanishedCombat]),
		disintegrated: logdata.NewStream(equal[logdata.DisintegratedCombat]),
		lost:          logdata.NewStream(equal[logdata.LostCombat]),
		notes:         logdata.NewStream[logdata.Note](nil),
	}
}

func (s *Store) Options() Options {
	return s.opts
}

func (s *Store) Name() string {
	return s.opts.Name
}

// checkOpen fails once summary construction has started.
func (s *Store) checkOpen() error {
	if s.state.Load() != stateIdle {
		return logdata.InvalidState("log %q is finalized", s.opts.Name)
	}
	return nil
}

func checkTurn(what string, turn int) error {
	if turn < 0 {
		return logdata.InvalidArgument("%s turn must be non-negative, got %d", what, turn)
	}
	return nil
}

func checkName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return logdata.InvalidArgument("%s name cannot be empty", what)
	}
	return nil
}

// AddTurn appends a single turn. Turn numbers must not decrease. A turn that
// repeats the previous number is folded into it under IterationMafia.
func (s *Store) AddTurn(t *logdata.SingleTurn) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.opts.Mode != ModeTurns {
		return logdata.InvalidState("log %q takes intervals, not turns", s.opts.Name)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if n := len(s.turns); n > 0 {
		last := s.turns[n-1]
		if t.TurnNumber < last.TurnNumber {
			return logdata.InvalidArgument("turn %d follows turn %d", t.TurnNumber, last.TurnNumber)
		}
		if t.TurnNumber == last.TurnNumber && s.opts.Iteration == IterationMafia {
			last.Fold(t)
			return nil
		}
	}
	s.turns = append(s.turns, t.Clone())
	return nil
}

// AddInterval appends a pre-aggregated interval. Intervals must not overlap.
func (s *Store) AddInterval(ti *logdata.TurnInterval) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.opts.Mode != ModeIntervals {
		return logdata.InvalidState("log %q takes turns, not intervals", s.opts.Name)
	}
	if err := ti.Validate(); err != nil {
		return err
	}
	if n := len(s.intervals); n > 0 && ti.StartTurn < s.intervals[n-1].EndTurn {
		return logdata.InvalidArgument("interval %s overlaps %s", ti, s.intervals[n-1])
	}
	c := &logdata.TurnInterval{Area: ti.Area, StartTurn: ti.StartTurn, EndTurn: ti.EndTurn, Totals: ti.Totals}
	s.intervals = append(s.intervals, c)
	return nil
}

// AddDayChange appends a day change. Days must be added in order.
func (s *Store) AddDayChange(dc logdata.DayChange) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if dc.DayNumber < 1 {
		return logdata.InvalidArgument("day number must be positive, got %d", dc.DayNumber)
	}
	if err := checkTurn("day change", dc.TurnNumber); err != nil {
		return err
	}
	if last, ok := s.days.Last(); ok && last != dc {
		if dc.DayNumber <= last.DayNumber || dc.TurnNumber < last.TurnNumber {
			return logdata.InvalidArgument("day %d at turn %d cannot follow day %d at turn %d",
				dc.DayNumber, dc.TurnNumber, last.DayNumber, last.TurnNumber)
		}
	}
	s.days.Add(dc)
	return nil
}

func (s *Store) AddFamiliarChange(fc logdata.FamiliarChange) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("familiar", fc.Familiar); err != nil {
		return err
	}
	if err := checkTurn("familiar change", fc.TurnNumber); err != nil {
		return err
	}
	s.familiars.Add(fc)
	return nil
}

func (s *Store) AddPull(p logdata.Pull) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("pulled item", p.Item); err != nil {
		return err
	}
	if p.Amount <= 0 {
		return logdata.InvalidArgument("pull of %q amount must be positive, got %d", p.Item, p.Amount)
	}
	if err := checkTurn("pull", p.TurnNumber); err != nil {
		return err
	}
	if p.DayNumber < 0 {
		return logdata.InvalidArgument("pull of %q day must be non-negative, got %d", p.Item, p.DayNumber)
	}
	s.pulls.Add(p)
	return nil
}

func (s *Store) AddEquipmentChange(e logdata.EquipmentChange) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkTurn("equipment change", e.TurnNumber); err != nil {
		return err
	}
	e.Equipment = e.Equipment.Clone()
	s.equipment.Add(e)
	return nil
}

func (s *Store) AddPlayerSnapshot(p logdata.PlayerSnapshot) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkTurn("player snapshot", p.TurnNumber); err != nil {
		return err
	}
	s.snapshots.Add(p)
	return nil
}

func (s *Store) AddLevel(l logdata.LevelData) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if l.Level < 1 {
		return logdata.InvalidArgument("level must be positive, got %d", l.Level)
	}
	if err := checkTurn("level", l.TurnNumber); err != nil {
		return err
	}
	s.levels.Add(l)
	return nil
}

func (s *Store) AddLearnedSkill(l logdata.LearnedSkill) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("skill", l.Name); err != nil {
		return err
	}
	if err := checkTurn("learned skill", l.TurnNumber); err != nil {
		return err
	}
	s.learned.Add(l)
	return nil
}

func (s *Store) AddHybridContent(h logdata.HybridData) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("hybrid", h.Name); err != nil {
		return err
	}
	if err := checkTurn("hybrid", h.TurnNumber); err != nil {
		return err
	}
	s.hybrids.Add(h)
	return nil
}

func (s *Store) AddHuntedCombat(h logdata.HuntedCombat) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("hunted monster", h.Name); err != nil {
		return err
	}
	if err := checkTurn("hunted combat", h.TurnNumber); err != nil {
		return err
	}
	s.hunted.Add(h)
	return nil
}

func (s *Store) AddBanishedCombat(b logdata.BanishedCombat) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("banished monster", b.Name); err != nil {
		return err
	}
	if err := checkTurn("banished combat", b.TurnNumber); err != nil {
		return err
	}
	s.banished.Add(b)
	return nil
}

func (s *Store) AddDisintegratedCombat(d logdata.DisintegratedCombat) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("disintegrated monster", d.Name); err != nil {
		return err
	}
	if err := checkTurn("disintegrated combat", d.TurnNumber); err != nil {
		return err
	}
	s.disintegrated.Add(d)
	return nil
}

func (s *Store) AddLostCombat(l logdata.LostCombat) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := checkName("lost combat monster", l.Name); err != nil {
		return err
	}
	if err := checkTurn("lost combat", l.TurnNumber); err != nil {
		return err
	}
	s.lost.Add(l)
	return nil
}

// AddNote attaches a header or footer comment to a turn.
func (s *Store) AddNote(n logdata.Note) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if strings.TrimSpace(n.Header) == "" && strings.TrimSpace(n.Footer) == "" {
		return logdata.InvalidArgument("note on turn %d is empty", n.TurnNumber)
	}
	if err := checkTurn("note", n.TurnNumber); err != nil {
		return err
	}
	s.notes.Add(n)
	return nil
}

func (s *Store) snapshotStreams() logdata.Streams {
	return logdata.Streams{
		DayChanges:       s.days.Items(),
		Familiars:        s.familiars.Items(),
		Pulls:            s.pulls.Items(),
		EquipmentChanges: s.equipment.Items(),
		Snapshots:        s.snapshots.Items(),
		Levels:           s.levels.Items(),
		LearnedSkills:    s.learned.Items(),
		Hybrids:          s.hybrids.Items(),
		Hunted:           s.hunted.Items(),
		Banished:         s.banished.Items(),
		Disintegrated:    s.disintegrated.Items(),
		Lost:             s.lost.Items(),
		Notes:            s.notes.Items(),
	}
}

// CreateSummary builds the intervals, reconciles them with the day changes and
// computes the summary. It succeeds at most once per store; a repeated or
// concurrent call returns an error wrapping logdata.ErrInvalidState. When no
// day change was added, day 1 starts at turn 0. Turns played before the first
// day change are rejected with logdata.ErrInvalidArgument.
func (s *Store) CreateSummary() error {
	if !s.state.CompareAndSwap(stateIdle, stateBuilding) {
		return logdata.InvalidState("summary of log %q was already created", s.opts.Name)
	}
	streams := s.snapshotStreams()
	if len(streams.DayChanges) == 0 {
		streams.DayChanges = []logdata.DayChange{{DayNumber: 1, TurnNumber: 0}}
	}
	if !s.seeded {
		if err := s.checkFirstDay(streams.DayChanges[0]); err != nil {
			s.state.Store(stateIdle)
			return err
		}
	}

	intervals := s.intervals
	if s.opts.Mode == ModeTurns {
		if err := reconcile.CheckTurnDays(s.turns, streams.DayChanges); err != nil {
			s.state.Store(stateIdle)
			return err
		}
		intervals = reconcile.BuildIntervals(s.turns)
	}
	units, err := reconcile.Reconcile(intervals, streams.DayChanges)
	if err != nil {
		s.state.Store(stateIdle)
		return err
	}

	s.built = intervals
	s.units = units
	s.streams = streams
	s.summary = summary.Build(units, streams)
	s.state.Store(stateBuilt)
	return nil
}

// checkFirstDay rejects turns that were played before first began.
func (s *Store) checkFirstDay(first logdata.DayChange) error {
	if first.TurnNumber == 0 {
		return nil
	}
	switch {
	case s.opts.Mode == ModeTurns && len(s.turns) > 0 && s.turns[0].TurnNumber <= first.TurnNumber:
		return logdata.InvalidArgument("turn %d was played before day %d began after turn %d",
			s.turns[0].TurnNumber, first.DayNumber, first.TurnNumber)
	case s.opts.Mode == ModeIntervals && len(s.intervals) > 0 && s.intervals[0].StartTurn < first.TurnNumber:
		return logdata.InvalidArgument("interval %s starts before day %d began after turn %d",
			s.intervals[0], first.DayNumber, first.TurnNumber)
	}
	return nil
}

func (s *Store) checkBuilt() error {
	if s.state.Load() != stateBuilt {
		return logdata.InvalidState("summary of log %q has not been created", s.opts.Name)
	}
	return nil
}

// Intervals returns the interval sequence before day splitting.
func (s *Store) Intervals() ([]*logdata.TurnInterval, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	return s.built, nil
}

// Units returns the reconciled sequence of intervals and day changes.
func (s *Store) Units() ([]reconcile.Unit, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	return s.units, nil
}

// Streams returns the side-event streams the summary was built from.
func (s *Store) Streams() (logdata.Streams, error) {
	if err := s.checkBuilt(); err != nil {
		return logdata.Streams{}, err
	}
	return s.streams, nil
}

// LogSummary returns the summary. Callers must treat it as read-only.
func (s *Store) LogSummary() (*summary.LogSummary, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	return s.summary, nil
}

// TurnRundown renders one block per reconciled unit.
func (s *Store) TurnRundown(f render.Format) ([]string, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	il := interleave.New(s.streams, s.opts.Interleave)
	return render.New(f).Rundown(s.units, il), nil
}

// Fragments renders the full log as logical fragments.
func (s *Store) Fragments(f render.Format, start time.Time) ([]render.Fragment, error) {
	if err := s.checkBuilt(); err != nil {
		return nil, err
	}
	return render.New(f).Render(render.Input{
		Title:       s.opts.Name,
		StartDate:   start,
		Units:       s.units,
		Interleaver: interleave.New(s.streams, s.opts.Interleave),
		Summary:     s.summary,
	}), nil
}

// FullTextualLog renders the full log. A zero start falls back to the start
// date in the store options.
func (s *Store) FullTextualLog(f render.Format, start time.Time) (string, error) {
	if start.IsZero() {
		start = s.opts.StartDate
	}
	frags, err := s.Fragments(f, start)
	if err != nil {
		return "", err
	}
	return render.Join(frags), nil
}
