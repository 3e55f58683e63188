// Package interleave merges the dated side-event streams into the reconciled
// interval sequence.
package interleave

import (
	"container/heap"
	"fmt"

	"github.com/jwebster45206/ascension-log/pkg/logdata"
)

// Kind identifies the stream an event came from. The declaration order is the
// tie-break order for events on the same turn.
type Kind int

const (
	KindPull Kind = iota
	KindConsumable
	KindHybrid
	KindHunted
	KindBanished
	KindDisintegrated
	KindLost
	KindFamiliar
	KindFreeAction
	KindLearnedSkill
	KindLevel
	KindNote
	numKinds
)

var kindNames = [numKinds]string{
	"pull", "consumable", "hybrid", "hunted", "banished", "disintegrated",
	"lost", "familiar", "free_action", "learned_skill", "level", "note",
}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one side event. Value holds the record from the matching stream,
// e.g. a logdata.Pull for KindPull.
type Event struct {
	Kind  Kind
	Value logdata.Dated
}

func (e Event) Turn() int {
	return e.Value.Turn()
}

// Merge merges event lists that are each sorted by turn into one list sorted
// by turn. Events on the same turn are ordered by Kind, then by input order.
func Merge(streams ...[]Event) []Event {
	h := make(cursorHeap, 0, len(streams))
	total := 0
	for i, s := range streams {
		total += len(s)
		if len(s) > 0 {
			h = append(h, &cursor{events: s, stream: i})
		}
	}
	heap.Init(&h)

	out := make([]Event, 0, total)
	for h.Len() > 0 {
		c := h[0]
		out = append(out, c.events[c.pos])
		c.pos++
		if c.pos == len(c.events) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return out
}

type cursor struct {
	events []Event
	pos    int
	stream int
}

func (c *cursor) head() Event {
	return c.events[c.pos]
}

type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	a, b := h[i].head(), h[j].head()
	if a.Turn() != b.Turn() {
		return a.Turn() < b.Turn()
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return h[i].stream < h[j].stream
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(*cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
