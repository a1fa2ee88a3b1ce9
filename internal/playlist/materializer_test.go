package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func item(id, position int) model.PlaylistItem {
	return model.PlaylistItem{
		ID:        id,
		MediaID:   id * 100,
		MediaType: model.MediaImage,
		MediaURL:  "https://cdn.example.com/media.png",
		Position:  position,
	}
}

func TestMaterializeOrdersByPosition(t *testing.T) {
	items := []model.PlaylistItem{item(3, 2), item(1, 0), item(2, 1)}
	seq := Materialize(items, nil, time.Now())

	ids := []int{}
	for _, it := range seq.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestMaterializeDropsDisabled(t *testing.T) {
	disabled := item(2, 1)
	disabled.Config = &model.PlaybackConfig{Enabled: boolPtr(false), Window: &model.ItemWindow{}}

	seq := Materialize([]model.PlaylistItem{item(1, 0), disabled, item(3, 2)}, nil, time.Now())

	assert.Len(t, seq.Items, 2)
	assert.Equal(t, -1, seq.IndexOf(2), "disabled item must not appear even if schedule-eligible")
}

func TestMaterializeCustomWindow(t *testing.T) {
	// Monday 10:00
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	inWindow := item(1, 0)
	inWindow.Config = &model.PlaybackConfig{
		ScheduleType: model.ScheduleCustom,
		Window:       &model.ItemWindow{StartTime: "09:00", EndTime: "17:00", Days: []int{1}},
	}
	outOfHours := item(2, 1)
	outOfHours.Config = &model.PlaybackConfig{
		ScheduleType: model.ScheduleCustom,
		Window:       &model.ItemWindow{StartTime: "12:00", EndTime: "17:00"},
	}
	wrongDay := item(3, 2)
	wrongDay.Config = &model.PlaybackConfig{
		ScheduleType: model.ScheduleCustom,
		Window:       &model.ItemWindow{Days: []int{0, 6}},
	}
	expired := item(4, 3)
	expired.Config = &model.PlaybackConfig{
		ScheduleType: model.ScheduleCustom,
		Window:       &model.ItemWindow{ValidTo: strPtr("2025-03-01")},
	}
	always := item(5, 4)

	seq := Materialize([]model.PlaylistItem{inWindow, outOfHours, wrongDay, expired, always}, nil, now)

	ids := []int{}
	for _, it := range seq.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{1, 5}, ids)
}

func TestMaterializeDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	items := []model.PlaylistItem{item(2, 1), item(1, 0), item(3, 2)}

	a := Materialize(items, nil, now)
	b := Materialize(items, nil, now)

	assert.Equal(t, a, b, "identical inputs must yield identical output")
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}

func TestFingerprintTracksContentIdentity(t *testing.T) {
	now := time.Now()
	items := []model.PlaylistItem{item(1, 0), item(2, 1)}

	base := Materialize(items, nil, now)

	// a duration change is a content change
	changed := []model.PlaylistItem{item(1, 0), item(2, 1)}
	changed[1].Config = &model.PlaybackConfig{Mode: model.ModeDuration, Duration: 20}
	assert.NotEqual(t, base.Fingerprint, Materialize(changed, nil, now).Fingerprint)

	// so is a different governing schedule
	sched := model.Schedule{ID: 7}
	assert.NotEqual(t, base.Fingerprint, Materialize(items, &sched, now).Fingerprint)
}

func TestMaterializeEmptyIsIdleNotError(t *testing.T) {
	disabled := item(1, 0)
	disabled.Config = &model.PlaybackConfig{Enabled: boolPtr(false)}

	seq := Materialize([]model.PlaylistItem{disabled}, nil, time.Now())
	assert.True(t, seq.Empty())

	seq = Materialize(nil, nil, time.Now())
	assert.True(t, seq.Empty())
}

func TestNormalizationClamps(t *testing.T) {
	bad := item(1, 0)
	bad.Config = &model.PlaybackConfig{Mode: model.ModeDuration, Duration: -5}
	seq := Materialize([]model.PlaylistItem{bad}, nil, time.Now())
	assert.Equal(t, model.DefaultItemDuration, seq.Items[0].Playback.Seconds)

	// times mode on non-finite media degrades to duration
	gif := item(2, 0)
	gif.MediaType = model.MediaGIF
	gif.Config = &model.PlaybackConfig{Mode: model.ModeTimes, Times: 3}
	seq = Materialize([]model.PlaylistItem{gif}, nil, time.Now())
	assert.Equal(t, model.ModeDuration, seq.Items[0].Playback.Mode)

	vid := item(3, 0)
	vid.MediaType = model.MediaVideo
	vid.Config = &model.PlaybackConfig{Mode: model.ModeTimes, Times: 0}
	seq = Materialize([]model.PlaylistItem{vid}, nil, time.Now())
	assert.Equal(t, model.ModeTimes, seq.Items[0].Playback.Mode)
	assert.Equal(t, 1, seq.Items[0].Playback.Count)
}

func TestNextWrapsAround(t *testing.T) {
	seq := Materialize([]model.PlaylistItem{item(1, 0), item(2, 1), item(3, 2)}, nil, time.Now())
	assert.Equal(t, 1, seq.Next(0))
	assert.Equal(t, 2, seq.Next(1))
	assert.Equal(t, 0, seq.Next(2))
}
