// Package playlist turns a screen's raw playlist into the concrete, ordered
// sequence of items eligible to play right now.
package playlist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
	"github.com/Nixie-Tech-LLC/stheno/internal/schedule"
)

// Item is one playable slot of a materialized sequence, with its playback
// rule already normalized.
type Item struct {
	ID        int             `json:"id"`
	MediaID   int             `json:"media_id"`
	MediaType model.MediaType `json:"media_type"`
	MediaURL  string          `json:"media_url"`
	Playback  model.Playback  `json:"playback"`
}

// Sequence is the materializer's output: the filtered, ordered items plus
// the id of the schedule that governed the materialization (0 = baseline).
// Fingerprint identifies the sequence's content; two sequences with equal
// fingerprints are interchangeable and the engine preserves playback state
// across them.
type Sequence struct {
	Items       []Item `json:"items"`
	ScheduleID  int    `json:"schedule_id"`
	Fingerprint string `json:"fingerprint"`
}

// Empty reports whether there is nothing to play (a valid idle state, not an
// error).
func (s *Sequence) Empty() bool { return len(s.Items) == 0 }

// IndexOf resolves an item by identity, returning -1 when the item is no
// longer part of the sequence.
func (s *Sequence) IndexOf(itemID int) int {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Next returns the index following i, wrapping to 0 past the end.
func (s *Sequence) Next(i int) int {
	if len(s.Items) == 0 {
		return 0
	}
	return (i + 1) % len(s.Items)
}

// Materialize produces the sequence for the current moment. The result is a
// pure function of its inputs: identical inputs yield an identical sequence
// and fingerprint, which is what the sync adapter relies on to detect that
// nothing actually changed.
//
// Ordering is always playlist position. Schedule priority never reorders
// items; it only decided which schedule won in the resolver.
func Materialize(items []model.PlaylistItem, active *model.Schedule, now time.Time) Sequence {
	sorted := make([]model.PlaylistItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	seq := Sequence{}
	if active != nil {
		seq.ScheduleID = active.ID
	}

	for i := range sorted {
		it := &sorted[i]
		if !it.Enabled() {
			continue
		}
		if !eligibleNow(it, now) {
			continue
		}
		seq.Items = append(seq.Items, Item{
			ID:        it.ID,
			MediaID:   it.MediaID,
			MediaType: it.MediaType,
			MediaURL:  it.MediaURL,
			Playback:  it.Playback(),
		})
	}

	seq.Fingerprint = fingerprint(&seq)
	return seq
}

func eligibleNow(it *model.PlaylistItem, now time.Time) bool {
	el := it.Eligibility()
	if !el.Custom {
		return true
	}
	w := el.Window
	if !schedule.DateInRange(w.ValidFrom, w.ValidTo, now) {
		return false
	}
	if len(w.Days) > 0 && !schedule.DayMatches(w.Days, now) {
		return false
	}
	if w.StartTime != "" || w.EndTime != "" {
		return schedule.TimeOfDayMatches(w.StartTime, w.EndTime, now)
	}
	return true
}

// fingerprint covers everything the engine considers identity: the governing
// schedule and each item's id and effective playback rule, in order.
func fingerprint(s *Sequence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sched=%d", s.ScheduleID)
	for i := range s.Items {
		it := &s.Items[i]
		fmt.Fprintf(&b, ";%d:%s:%d:%d:%t",
			it.ID, it.Playback.Mode, it.Playback.Seconds, it.Playback.Count, it.Playback.Loop)
	}
	return b.String()
}
