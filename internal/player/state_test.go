package player

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
	"github.com/Nixie-Tech-LLC/stheno/internal/playlist"
)

func boolPtr(b bool) *bool { return &b }

func durItem(id, position, seconds int) model.PlaylistItem {
	return model.PlaylistItem{
		ID: id, MediaID: id * 100, MediaType: model.MediaImage,
		MediaURL: "https://cdn.example.com/a.png", Position: position,
		Config: &model.PlaybackConfig{Mode: model.ModeDuration, Duration: seconds},
	}
}

func timesItem(id, position, count int) model.PlaylistItem {
	return model.PlaylistItem{
		ID: id, MediaID: id * 100, MediaType: model.MediaVideo,
		MediaURL: "https://cdn.example.com/a.mp4", Position: position,
		Config: &model.PlaybackConfig{Mode: model.ModeTimes, Times: count},
	}
}

func loopItem(id, position int) model.PlaylistItem {
	return model.PlaylistItem{
		ID: id, MediaID: id * 100, MediaType: model.MediaVideo,
		MediaURL: "https://cdn.example.com/a.mp4", Position: position,
		Config: &model.PlaybackConfig{Mode: model.ModeDuration, Duration: 5, Loop: true},
	}
}

func seqOf(items ...model.PlaylistItem) playlist.Sequence {
	return playlist.Materialize(items, nil, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
}

// playingAt fast-forwards a fresh state into Playing on the given sequence.
func playingAt(t *testing.T, seq playlist.Sequence) State {
	t.Helper()
	s := Reduce(State{Kind: StateIdle}, Event{Type: EvSequence, Seq: &seq})
	require.Equal(t, StateLoading, s.Kind)
	s = Reduce(s, Event{Type: EvMediaReady})
	require.Equal(t, StatePlaying, s.Kind)
	require.Equal(t, 0, s.Index)
	return s
}

func tick(s State, d time.Duration) State {
	return Reduce(s, Event{Type: EvTick, Delta: d})
}

func TestIdleToPlaying(t *testing.T) {
	seq := seqOf(durItem(1, 0, 5))
	s := playingAt(t, seq)
	assert.Equal(t, 1, s.ItemID)
	assert.Equal(t, time.Duration(0), s.Elapsed)
}

func TestDurationExpiryAdvances(t *testing.T) {
	seq := seqOf(durItem(1, 0, 5), durItem(2, 1, 10))
	s := playingAt(t, seq)

	s = tick(s, 4999*time.Millisecond)
	assert.Equal(t, 0, s.Index, "one ms early, still on first item")

	s = tick(s, time.Millisecond)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, 2, s.ItemID)
	assert.Equal(t, time.Duration(0), s.Elapsed)
}

func TestWrapAroundToFirstItem(t *testing.T) {
	seq := seqOf(durItem(1, 0, 5), durItem(2, 1, 5), durItem(3, 2, 5))
	s := playingAt(t, seq)
	s.Index = 2
	s.ItemID = 3

	s = tick(s, 5*time.Second)
	assert.Equal(t, 0, s.Index, "last item wraps to index 0, never out of bounds")
	assert.Equal(t, 1, s.ItemID)
}

func TestTimesModeAdvancesOnNaturalCompletion(t *testing.T) {
	seq := seqOf(timesItem(1, 0, 2), durItem(2, 1, 5))
	s := playingAt(t, seq)

	// a timer alone never advances times mode
	s = tick(s, time.Hour)
	assert.Equal(t, 0, s.Index)

	s = Reduce(s, Event{Type: EvMediaEnded})
	assert.Equal(t, 0, s.Index, "first completion repeats the item")
	assert.Equal(t, 1, s.Repeats)

	s = Reduce(s, Event{Type: EvMediaEnded})
	assert.Equal(t, 1, s.Index, "second completion moves on")
	assert.Equal(t, 0, s.Repeats)
}

func TestLoopItemNeverTimerAdvances(t *testing.T) {
	seq := seqOf(loopItem(1, 0), durItem(2, 1, 5))
	s := playingAt(t, seq)

	s = tick(s, time.Hour)
	assert.Equal(t, 0, s.Index, "looping media ignores its duration timer")

	s = Reduce(s, Event{Type: EvMediaEnded})
	assert.Equal(t, 1, s.Index, "onEnded is the loop item's only advance path")
}

func TestErrorRecoveryIsBounded(t *testing.T) {
	seq := seqOf(durItem(1, 0, 5), durItem(2, 1, 5))
	s := playingAt(t, seq)

	s = Reduce(s, Event{Type: EvMediaError})
	require.Equal(t, StateErrorRecovering, s.Kind)

	elapsed := time.Duration(0)
	for s.Kind == StateErrorRecovering {
		require.Less(t, elapsed, 10*time.Second, "recovery must not hang")
		s = tick(s, 100*time.Millisecond)
		elapsed += 100 * time.Millisecond
	}
	assert.Equal(t, StatePlaying, s.Kind)
	assert.Equal(t, 1, s.Index, "recovery always lands on the next item")
	assert.LessOrEqual(t, elapsed, RecoveryGrace)
}

func TestSuspendPausesAccrual(t *testing.T) {
	seq := seqOf(durItem(1, 0, 5))
	s := playingAt(t, seq)
	s = tick(s, 2*time.Second)

	s = Reduce(s, Event{Type: EvHidden})
	assert.Equal(t, StateSuspended, s.Presentation())

	// hidden time neither counts nor catches up
	s = tick(s, time.Hour)
	assert.Equal(t, 2*time.Second, s.Elapsed)

	s = Reduce(s, Event{Type: EvVisible})
	assert.Equal(t, StatePlaying, s.Presentation())
	s = tick(s, time.Second)
	assert.Equal(t, 3*time.Second, s.Elapsed, "resumes where it paused")
}

func TestIdenticalSequencePreservesState(t *testing.T) {
	items := []model.PlaylistItem{durItem(1, 0, 5), durItem(2, 1, 5)}
	s := playingAt(t, seqOf(items...))
	s = tick(s, 5*time.Second) // now on item 2
	s = tick(s, 2*time.Second)
	require.Equal(t, 1, s.Index)

	refreshed := seqOf(items...)
	s = Reduce(s, Event{Type: EvSequence, Seq: &refreshed})
	assert.Equal(t, StatePlaying, s.Kind, "no visual restart")
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, 2, s.ItemID)
	assert.Equal(t, 2*time.Second, s.Elapsed)
}

func TestChangedSequenceRestartsAtFirstItem(t *testing.T) {
	s := playingAt(t, seqOf(durItem(1, 0, 5), durItem(2, 1, 5), durItem(3, 2, 5)))
	s = tick(s, 5*time.Second) // mid item "2"
	s = tick(s, 2*time.Second)
	require.Equal(t, 2, s.ItemID)

	// item "1" removed, "4" appended: content changed, restart at index 0
	replaced := seqOf(durItem(2, 0, 5), durItem(3, 1, 5), durItem(4, 2, 5))
	s = Reduce(s, Event{Type: EvSequence, Seq: &replaced})
	assert.Equal(t, StateLoading, s.Kind)
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 2, s.ItemID, "first item of the new sequence, not resumed mid-item")
	assert.Equal(t, time.Duration(0), s.Elapsed)
}

func TestEmptySequenceIsIdle(t *testing.T) {
	s := playingAt(t, seqOf(durItem(1, 0, 5)))

	empty := seqOf()
	s = Reduce(s, Event{Type: EvSequence, Seq: &empty})
	assert.Equal(t, StateIdle, s.Kind)

	// idle is re-checked on every re-materialization: content coming back
	// resumes playback without intervention
	restored := seqOf(durItem(1, 0, 5))
	s = Reduce(s, Event{Type: EvSequence, Seq: &restored})
	assert.Equal(t, StateLoading, s.Kind)
}

func TestWithholdShortCircuits(t *testing.T) {
	s := playingAt(t, seqOf(durItem(1, 0, 5)))

	s = Reduce(s, Event{Type: EvWithhold, Reason: "account suspended"})
	assert.Equal(t, StateWithheld, s.Kind)
	assert.Equal(t, "account suspended", s.WithheldReason)

	s = tick(s, time.Hour)
	assert.Equal(t, StateWithheld, s.Kind)

	// a healthy sequence restores playback
	seq := seqOf(durItem(1, 0, 5))
	s = Reduce(s, Event{Type: EvSequence, Seq: &seq})
	assert.Equal(t, StateLoading, s.Kind)
}

func TestManualAdvance(t *testing.T) {
	s := playingAt(t, seqOf(durItem(1, 0, 5), durItem(2, 1, 5)))
	s = Reduce(s, Event{Type: EvAdvance})
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, time.Duration(0), s.Elapsed)
}

// Full cycle: [1: 5s enabled, 2: disabled, 3: 5s enabled] plays 1 then 3
// then wraps, item 2 never rendered, 10s total cycle.
func TestEndToEndCycle(t *testing.T) {
	disabled := durItem(2, 1, 10)
	disabled.Config.Enabled = boolPtr(false)
	seq := seqOf(durItem(1, 0, 5), disabled, durItem(3, 2, 5))

	require.Len(t, seq.Items, 2)
	s := playingAt(t, seq)

	var shown []int
	total := time.Duration(0)
	for total < 10*time.Second {
		if len(shown) == 0 || shown[len(shown)-1] != s.ItemID {
			shown = append(shown, s.ItemID)
		}
		s = tick(s, time.Second)
		total += time.Second
	}

	assert.Equal(t, []int{1, 3}, shown)
	assert.Equal(t, 1, s.ItemID, "cycle wraps back to the first item after 10s")
	assert.NotContains(t, shown, 2)
}

func TestEngineLoopSerializesEvents(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = engine.Run(ctx) }()

	seq := seqOf(durItem(1, 0, 5), durItem(2, 1, 5))
	engine.Dispatch(Event{Type: EvSequence, Seq: &seq})
	engine.Dispatch(Event{Type: EvMediaReady})

	assert.Eventually(t, func() bool {
		return engine.Snapshot().Kind == StatePlaying
	}, 2*time.Second, 10*time.Millisecond)

	it, ok := engine.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, 1, it.ID)
	assert.False(t, engine.IsIdle())
	assert.LessOrEqual(t, engine.RemainingSeconds(), 5)

	engine.Advance()
	assert.Eventually(t, func() bool {
		return engine.Snapshot().ItemID == 2
	}, 2*time.Second, 10*time.Millisecond)
}
