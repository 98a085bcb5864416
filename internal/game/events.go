package game

import "slices"

type EventKind uint8

const (
	EventAimChanged EventKind = iota + 1
	EventPowerChanged
	EventShotLaunched
	EventOutcome
	EventRoundAdvanced
	EventMatchEnded
	EventMatchStarted
)

func (k EventKind) String() string {
	switch k {
	case EventAimChanged:
		return "aimChanged"
	case EventPowerChanged:
		return "powerChanged"
	case EventShotLaunched:
		return "shotLaunched"
	case EventOutcome:
		return "outcome"
	case EventRoundAdvanced:
		return "roundAdvanced"
	case EventMatchEnded:
		return "matchEnded"
	case EventMatchStarted:
		return "matchStarted"
	default:
		return "unknown"
	}
}

// Event is pushed to subscribers once per occurrence. Only the fields that
// belong to Kind are set.
type Event struct {
	Kind    EventKind `json:"kind" msgpack:"kind"`
	Tick    uint32    `json:"tick" msgpack:"tick"`
	Outcome Outcome   `json:"outcome,omitempty" msgpack:"outcome,omitempty"`
	Round   int       `json:"round,omitempty" msgpack:"round,omitempty"`
	Score   [2]int    `json:"score" msgpack:"score"`
	Power   float64   `json:"power,omitempty" msgpack:"power,omitempty"`
	Target  Vec2      `json:"target" msgpack:"target"`
	Curve   Vec2      `json:"curve" msgpack:"curve"`
}

// Listener receives events synchronously. It must not call back into the
// Match that emitted them.
type Listener func(Event)

type listenerSet struct {
	next int
	subs map[int]Listener
	// order keeps delivery deterministic.
	order []int
}

func (s *listenerSet) add(fn Listener) func() {
	if s.subs == nil {
		s.subs = make(map[int]Listener)
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	s.order = append(s.order, id)
	return func() { s.remove(id) }
}

func (s *listenerSet) remove(id int) {
	if _, ok := s.subs[id]; !ok {
		return
	}
	delete(s.subs, id)
	for i, o := range s.order {
		if o == id {
			// A fresh slice keeps an in-progress emit walking the old order.
			s.order = slices.Concat(s.order[:i], s.order[i+1:])
			break
		}
	}
}

func (s *listenerSet) emit(ev Event) {
	for _, id := range s.order {
		if fn, ok := s.subs[id]; ok {
			fn(ev)
		}
	}
}

func (s *listenerSet) clear() {
	s.subs = nil
	s.order = nil
}
