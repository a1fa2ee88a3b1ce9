package player

import (
	"time"

	"github.com/Nixie-Tech-LLC/stheno/internal/playlist"
)

// StateKind enumerates the playback state machine's states.
type StateKind string

const (
	StateIdle            StateKind = "idle"
	StateLoading         StateKind = "loading"
	StatePlaying         StateKind = "playing"
	StateErrorRecovering StateKind = "error_recovering"
	StateSuspended       StateKind = "suspended"
	StateWithheld        StateKind = "withheld"
)

// RecoveryGrace is how long the engine lingers on an unrenderable item
// before force-advancing past it. A broken item must never block the loop.
const RecoveryGrace = 1500 * time.Millisecond

// State is the engine's complete playback state. It is a value: Reduce
// returns a new State and never mutates its input, so every transition is
// testable without timers or a renderer.
//
// Hidden tracks display visibility orthogonally to Kind: a hidden player
// stops accruing elapsed time but otherwise stays exactly where it was, so
// regaining visibility resumes mid-item instead of restarting or skipping
// ahead.
type State struct {
	Kind           StateKind
	Seq            playlist.Sequence
	Index          int
	ItemID         int
	Elapsed        time.Duration
	Repeats        int
	Recovery       time.Duration
	Hidden         bool
	WithheldReason string
}

// Presentation is the state as shown to the renderer: visibility overrides
// whatever the machine is doing underneath.
func (s *State) Presentation() StateKind {
	if s.Hidden && s.Kind != StateWithheld {
		return StateSuspended
	}
	return s.Kind
}

// Current returns the item the engine is on, if any.
func (s *State) Current() (playlist.Item, bool) {
	if s.Index < 0 || s.Index >= len(s.Seq.Items) {
		return playlist.Item{}, false
	}
	switch s.Kind {
	case StatePlaying, StateLoading, StateErrorRecovering:
		return s.Seq.Items[s.Index], true
	}
	return playlist.Item{}, false
}

// Remaining reports the time left on the current duration-mode item.
// Times-mode and looping items have no meaningful countdown.
func (s *State) Remaining() time.Duration {
	it, ok := s.Current()
	if !ok || it.Playback.Mode != "duration" || it.Playback.Loop {
		return 0
	}
	left := time.Duration(it.Playback.Seconds)*time.Second - s.Elapsed
	if left < 0 {
		return 0
	}
	return left
}

// EventType tags the inputs that can drive a transition.
type EventType string

const (
	EvTick       EventType = "tick"
	EvMediaReady EventType = "media_ready"
	EvMediaEnded EventType = "media_ended"
	EvMediaError EventType = "media_error"
	EvHidden     EventType = "hidden"
	EvVisible    EventType = "visible"
	EvSequence   EventType = "sequence"
	EvAdvance    EventType = "advance"
	EvWithhold   EventType = "withhold"
	EvRestore    EventType = "restore"
)

// Event is one input to the state machine. All events funnel through a
// single sequential handler, so transitions for the same item instance are
// never processed out of order.
type Event struct {
	Type   EventType
	Delta  time.Duration      // EvTick
	Seq    *playlist.Sequence // EvSequence
	Reason string             // EvWithhold
}

// Reduce applies one event to the state. It is the whole state machine:
// pure, total, and panic-free. Unknown or out-of-place events leave the
// state untouched.
func Reduce(s State, ev Event) State {
	switch ev.Type {
	case EvWithhold:
		return State{Kind: StateWithheld, WithheldReason: ev.Reason, Hidden: s.Hidden}

	case EvRestore:
		if s.Kind == StateWithheld {
			return State{Kind: StateIdle, Hidden: s.Hidden}
		}
		return s

	case EvSequence:
		if ev.Seq == nil {
			return s
		}
		return applySequence(s, *ev.Seq)

	case EvMediaReady:
		if s.Kind == StateLoading {
			s.Kind = StatePlaying
			s.Elapsed = 0
			s.Repeats = 0
		}
		return s

	case EvTick:
		return applyTick(s, ev.Delta)

	case EvMediaEnded:
		return applyEnded(s)

	case EvMediaError:
		if s.Kind == StatePlaying || s.Kind == StateLoading {
			s.Kind = StateErrorRecovering
			s.Recovery = 0
		}
		return s

	case EvAdvance:
		if s.Kind == StatePlaying || s.Kind == StateErrorRecovering {
			return advance(s)
		}
		return s

	case EvHidden:
		s.Hidden = true
		return s

	case EvVisible:
		s.Hidden = false
		return s
	}
	return s
}

// applySequence implements the re-materialization rules: an identical
// sequence preserves playback state untouched, any content change restarts
// at the first eligible item, and an empty sequence is legitimate idle.
// A sequence arriving while withheld doubles as restoration.
func applySequence(s State, seq playlist.Sequence) State {
	if seq.Empty() {
		return State{Kind: StateIdle, Seq: seq, Hidden: s.Hidden}
	}

	if s.Kind != StateWithheld && s.Kind != StateIdle && seq.Fingerprint == s.Seq.Fingerprint {
		// same content: keep (index-by-id, elapsed, count), no visual restart
		if idx := seq.IndexOf(s.ItemID); idx >= 0 {
			s.Index = idx
		}
		s.Seq = seq
		return s
	}

	return State{
		Kind:   StateLoading,
		Seq:    seq,
		Index:  0,
		ItemID: seq.Items[0].ID,
		Hidden: s.Hidden,
	}
}

func applyTick(s State, delta time.Duration) State {
	if s.Hidden || delta <= 0 {
		return s
	}

	switch s.Kind {
	case StatePlaying:
		s.Elapsed += delta
		it, ok := s.Current()
		if !ok {
			return s
		}
		p := it.Playback
		// looping media never timer-advances; times mode waits for natural
		// completion
		if p.Mode == "duration" && !p.Loop && s.Elapsed >= time.Duration(p.Seconds)*time.Second {
			return advance(s)
		}
		return s

	case StateErrorRecovering:
		s.Recovery += delta
		if s.Recovery >= RecoveryGrace {
			return advance(s)
		}
		return s
	}
	return s
}

func applyEnded(s State) State {
	if s.Kind != StatePlaying {
		return s
	}
	it, ok := s.Current()
	if !ok {
		return s
	}
	p := it.Playback
	switch {
	case p.Mode == "times":
		if s.Repeats+1 >= p.Count {
			return advance(s)
		}
		s.Repeats++
		s.Elapsed = 0
		return s
	case p.Loop:
		// onEnded is the only way a continuous-loop item moves on
		return advance(s)
	}
	// non-looping duration media restarts in the renderer until the timer
	// expires
	return s
}

func advance(s State) State {
	if s.Seq.Empty() {
		return State{Kind: StateIdle, Seq: s.Seq, Hidden: s.Hidden}
	}
	idx := s.Seq.Next(s.Index)
	return State{
		Kind:   StatePlaying,
		Seq:    s.Seq,
		Index:  idx,
		ItemID: s.Seq.Items[idx].ID,
		Hidden: s.Hidden,
	}
}
