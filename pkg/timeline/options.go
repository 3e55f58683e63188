// Package timeline holds the event timeline of one ascension log and exposes
// the reconstructed views of it.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwebster45206/ascension-log/pkg/interleave"
)

// Mode says how turn data enters the store.
type Mode int

const (
	// ModeTurns stores single turns and builds intervals from them.
	ModeTurns Mode = iota
	// ModeIntervals stores pre-aggregated intervals.
	ModeIntervals
)

func (m Mode) String() string {
	if m == ModeIntervals {
		return "intervals"
	}
	return "turns"
}

// ParseMode accepts "turns" or "intervals"; empty means turns.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "turns":
		return ModeTurns, nil
	case "intervals":
		return ModeIntervals, nil
	default:
		return ModeTurns, fmt.Errorf("unknown mode %q", s)
	}
}

// TurnIteration decides what happens to a turn that repeats the number of the
// turn before it.
type TurnIteration int

const (
	// IterationMafia folds the repeated turn into the previous one. Log
	// producers write free sub-actions this way.
	IterationMafia TurnIteration = iota
	// IterationStrict keeps every record as its own turn.
	IterationStrict
)

func (t TurnIteration) String() string {
	if t == IterationStrict {
		return "strict"
	}
	return "mafia"
}

// ParseTurnIteration accepts "mafia" or "strict"; empty means mafia.
func ParseTurnIteration(s string) (TurnIteration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mafia":
		return IterationMafia, nil
	case "strict":
		return IterationStrict, nil
	default:
		return IterationMafia, fmt.Errorf("unknown turn iteration %q", s)
	}
}

type Options struct {
	Name       string
	Mode       Mode
	Iteration  TurnIteration
	StartDate  time.Time
	Interleave interleave.Config
}

// DefaultOptions returns options for a turn-by-turn log.
func DefaultOptions() Options {
	return Options{
		Mode:       ModeTurns,
		Iteration:  IterationMafia,
		Interleave: interleave.DefaultConfig(),
	}
}
