package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

// DateLayout is the layout of Header.StartDate.
const DateLayout = "2006-01-02"

// RecordError is a data-quality problem with one record. It never aborts the
// remaining records.
type RecordError struct {
	Section string
	// Index is the position of the record in its section.
	Index int
	// Line is the source line for JSON Lines documents, 0 otherwise.
	Line int
	Err  error
}

func (e RecordError) Error() string {
	switch {
	case e.Line > 0 && e.Section != "":
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Section, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
	}
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Report collects the outcome of feeding a document into a store.
type Report struct {
	Accepted int
	Errors   []RecordError
}

func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Messages returns the errors as strings, in record order.
func (r *Report) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// Err joins every record error, or returns nil.
func (r *Report) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *Report) add(d *Document, section string, i int, err error) {
	if err != nil {
		r.Errors = append(r.Errors, RecordError{Section: section, Index: i, Line: d.line(section, i), Err: err})
		return
	}
	r.Accepted++
}

// Options resolves the store options for the document. Header fields override
// base; an invalid header field is reported and the base value kept.
func (d *Document) Options(base timeline.Options) (timeline.Options, []RecordError) {
	opts := base
	var errs []RecordError
	if d.Name != "" {
		opts.Name = d.Name
	}
	if d.Mode != "" {
		m, err := timeline.ParseMode(d.Mode)
		if err != nil {
			errs = append(errs, RecordError{Section: SectionHeader, Err: logdata.InvalidArgument("%v", err)})
		} else {
			opts.Mode = m
		}
	} else if len(d.Intervals) > 0 && len(d.Turns) == 0 {
		opts.Mode = timeline.ModeIntervals
	}
	if d.Iteration != "" {
		it, err := timeline.ParseTurnIteration(d.Iteration)
		if err != nil {
			errs = append(errs, RecordError{Section: SectionHeader, Err: logdata.InvalidArgument("%v", err)})
		} else {
			opts.Iteration = it
		}
	}
	if d.StartDate != "" {
		t, err := time.Parse(DateLayout, d.StartDate)
		if err != nil {
			errs = append(errs, RecordError{Section: SectionHeader, Err: logdata.InvalidArgument("start date %q is not YYYY-MM-DD", d.StartDate)})
		} else {
			opts.StartDate = t
		}
	}
	return opts, errs
}

// Apply feeds every record of the document into a new store: day changes
// first, then turns or intervals, then the side events. The store is not
// finalized; call CreateSummary when done.
func Apply(d *Document, base timeline.Options) (*timeline.Store, Report) {
	opts, headerErrs := d.Options(base)
	rep := Report{Errors: headerErrs}
	s := timeline.New(opts)

	each(&rep, d, SectionDayChanges, d.DayChanges, s.AddDayChange)
	if opts.Mode == timeline.ModeIntervals {
		each(&rep, d, SectionIntervals, d.Intervals, s.AddInterval)
		each(&rep, d, SectionTurns, d.Turns, s.AddTurn)
	} else {
		each(&rep, d, SectionTurns, d.Turns, s.AddTurn)
		each(&rep, d, SectionIntervals, d.Intervals, s.AddInterval)
	}
	each(&rep, d, SectionFamiliarChanges, d.FamiliarChanges, s.AddFamiliarChange)
	each(&rep, d, SectionPulls, d.Pulls, s.AddPull)
	each(&rep, d, SectionEquipmentChanges, d.EquipmentChanges, s.AddEquipmentChange)
	each(&rep, d, SectionPlayerSnapshots, d.PlayerSnapshots, s.AddPlayerSnapshot)
	each(&rep, d, SectionLevels, d.Levels, s.AddLevel)
	each(&rep, d, SectionLearnedSkills, d.LearnedSkills, s.AddLearnedSkill)
	each(&rep, d, SectionHybridContent, d.HybridContent, s.AddHybridContent)
	each(&rep, d, SectionHuntedCombats, d.HuntedCombats, s.AddHuntedCombat)
	each(&rep, d, SectionBanishedCombats, d.BanishedCombats, s.AddBanishedCombat)
	each(&rep, d, SectionDisintegratedCombats, d.DisintegratedCombats, s.AddDisintegratedCombat)
	each(&rep, d, SectionLostCombats, d.LostCombats, s.AddLostCombat)
	each(&rep, d, SectionNotes, d.Notes, s.AddNote)
	return s, rep
}

func each[T any](rep *Report, d *Document, section string, records []T, add func(T) error) {
	for i, r := range records {
		rep.add(d, section, i, add(r))
	}
}

// Load parses and applies a document, then finalizes the store. Record errors
// land in the report; the error is set only when the document as a whole is
// unusable.
func Load(data []byte, f Format, base timeline.Options) (*timeline.Store, Report, error) {
	doc, parseErrs, err := Parse(data, f)
	if err != nil {
		return nil, Report{}, err
	}
	s, rep := Apply(doc, base)
	rep.Errors = append(parseErrs, rep.Errors...)
	if err := s.CreateSummary(); err != nil {
		return nil, rep, fmt.Errorf("failed to reconstruct log: %w", err)
	}
	return s, rep, nil
}
