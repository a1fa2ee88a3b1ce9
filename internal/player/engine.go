// Package player contains the playback engine and its surrounding adapters:
// the sync/poll loop that feeds it fresh screen data, the MQTT command
// listener, and the localhost control surface the kiosk renderer drives.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nixie-Tech-LLC/stheno/internal/playlist"
)

// DefaultTick is the engine's time-advance granularity. Correctness does not
// depend on it; it only bounds how late a duration expiry can fire.
const DefaultTick = 250 * time.Millisecond

// Engine drives playback for one screen. All transition-triggering inputs
// (ticks, media events, sequence updates) funnel through a single goroutine,
// so "timer says advance" and "fetch says content changed" can never race:
// pending external events are always applied before the tick that arrived
// with them.
type Engine struct {
	logger zerolog.Logger
	tick   time.Duration
	events chan Event

	mu       sync.RWMutex
	state    State
	onChange func(State)
}

// NewEngine creates an engine in the Idle state.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger,
		tick:   DefaultTick,
		events: make(chan Event, 64),
		state:  State{Kind: StateIdle},
	}
}

// OnStateChange registers a callback fired from the engine loop whenever the
// presented state, item, or sequence changes. Must be set before Run.
func (e *Engine) OnStateChange(fn func(State)) { e.onChange = fn }

// Dispatch queues one event for the engine loop.
func (e *Engine) Dispatch(ev Event) {
	e.events <- ev
}

// Run executes the engine loop until context cancellation.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info().Dur("tick", e.tick).Msg("playback engine started")
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("playback engine stopped")
			return ctx.Err()

		case ev := <-e.events:
			e.apply(ev)

		case now := <-ticker.C:
			// content changes queued in the same instant win over the timer:
			// drain them first, then let the tick act on the new sequence
			e.drain()
			delta := now.Sub(last)
			last = now
			e.apply(Event{Type: EvTick, Delta: delta})
		}
	}
}

func (e *Engine) drain() {
	for {
		select {
		case ev := <-e.events:
			e.apply(ev)
		default:
			return
		}
	}
}

func (e *Engine) apply(ev Event) {
	e.mu.Lock()
	prev := e.state
	next := Reduce(prev, ev)
	e.state = next
	e.mu.Unlock()

	if !changed(prev, next) {
		return
	}

	e.logger.Debug().
		Str("event", string(ev.Type)).
		Str("from", string(prev.Presentation())).
		Str("to", string(next.Presentation())).
		Int("index", next.Index).
		Int("item", next.ItemID).
		Msg("playback transition")

	if e.onChange != nil {
		e.onChange(next)
	}
}

func changed(a, b State) bool {
	return a.Presentation() != b.Presentation() ||
		a.Index != b.Index ||
		a.ItemID != b.ItemID ||
		a.Repeats != b.Repeats ||
		a.Seq.Fingerprint != b.Seq.Fingerprint
}

// Snapshot returns a copy of the current state for read-only use.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// CurrentItem returns what should be on screen right now.
func (e *Engine) CurrentItem() (playlist.Item, bool) {
	s := e.Snapshot()
	return s.Current()
}

// RemainingSeconds reports the countdown for the current duration-mode item,
// rounded up so the UI never shows 0 while something is still playing.
func (e *Engine) RemainingSeconds() int {
	s := e.Snapshot()
	rem := s.Remaining()
	if rem <= 0 {
		return 0
	}
	return int((rem + time.Second - 1) / time.Second)
}

// IsIdle reports whether the engine has nothing to show.
func (e *Engine) IsIdle() bool {
	return e.Snapshot().Kind == StateIdle
}

// Advance requests a manual skip to the next item (preview/editor tooling).
func (e *Engine) Advance() {
	e.Dispatch(Event{Type: EvAdvance})
}
