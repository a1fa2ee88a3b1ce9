package model

// MediaType identifies what kind of asset a playlist item points at.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaPDF   MediaType = "pdf"
	MediaGIF   MediaType = "gif"
)

// PlaybackMode selects how an item decides it is finished.
type PlaybackMode string

const (
	// ModeDuration plays the item for a fixed number of seconds.
	ModeDuration PlaybackMode = "duration"
	// ModeTimes plays the item's natural length N times (finite media only).
	ModeTimes PlaybackMode = "times"
)

// ScheduleType controls whether an item is always eligible or only inside
// its own time/day window.
type ScheduleType string

const (
	ScheduleAlways ScheduleType = "always"
	ScheduleCustom ScheduleType = "custom"
)

// DefaultItemDuration is applied when an item has no playback config.
const DefaultItemDuration = 10

// ItemWindow is the eligibility window for schedule_type=custom items.
// Dates are YYYY-MM-DD, times HH:MM, days 0(Sun)-6(Sat).
type ItemWindow struct {
	ValidFrom *string `json:"valid_from,omitempty"`
	ValidTo   *string `json:"valid_to,omitempty"`
	StartTime string  `json:"start_time,omitempty"`
	EndTime   string  `json:"end_time,omitempty"`
	Days      []int   `json:"days,omitempty"`
}

// PlaybackConfig holds the per-item playback rules as stored by the CMS.
// Every field is optional on the wire; use the accessor methods rather than
// reading fields directly so absent values fall back to the documented
// defaults.
type PlaybackConfig struct {
	Mode         PlaybackMode `json:"mode,omitempty"`
	Duration     int          `json:"duration,omitempty"`
	Times        int          `json:"times,omitempty"`
	Loop         bool         `json:"loop,omitempty"`
	Enabled      *bool        `json:"enabled,omitempty"`
	Priority     int          `json:"priority,omitempty"`
	ScheduleType ScheduleType `json:"schedule_type,omitempty"`
	Window       *ItemWindow  `json:"window,omitempty"`
}

// Playback is the normalized, effective playback rule for one item. Exactly
// one of Seconds/Count is meaningful depending on Mode, and both are always
// clamped to >= 1 so a misconfigured item can never produce a zero or
// negative timer.
type Playback struct {
	Mode    PlaybackMode `json:"mode"`
	Seconds int          `json:"seconds,omitempty"`
	Count   int          `json:"count,omitempty"`
	Loop    bool         `json:"loop,omitempty"`
}

// Eligibility is the normalized schedule gate for one item: either always
// eligible or gated by a custom window.
type Eligibility struct {
	Custom bool
	Window ItemWindow
}

// PlaylistItem is one slot in a screen's content list. Position defines the
// playback order and is unique per screen.
type PlaylistItem struct {
	ID        int             `db:"id"         json:"id"`
	ScreenID  int             `db:"screen_id"  json:"screen_id"`
	MediaID   int             `db:"media_id"   json:"media_id"`
	MediaType MediaType       `db:"media_type" json:"media_type"`
	MediaURL  string          `db:"media_url"  json:"media_url"`
	Position  int             `db:"position"   json:"position"`
	Config    *PlaybackConfig `db:"-"          json:"playback_config,omitempty"`
}

// Enabled reports whether the item participates in playback at all.
// Items without a config are enabled.
func (p *PlaylistItem) Enabled() bool {
	if p.Config == nil || p.Config.Enabled == nil {
		return true
	}
	return *p.Config.Enabled
}

// Eligibility returns the item's normalized schedule gate. Custom items with
// no window degrade to always-eligible rather than never-eligible.
func (p *PlaylistItem) Eligibility() Eligibility {
	if p.Config == nil || p.Config.ScheduleType != ScheduleCustom || p.Config.Window == nil {
		return Eligibility{}
	}
	return Eligibility{Custom: true, Window: *p.Config.Window}
}

// Playback returns the item's normalized playback rule. Times mode only
// makes sense for finite media, so anything but video degrades to duration
// mode; missing or invalid values clamp to safe minimums.
func (p *PlaylistItem) Playback() Playback {
	cfg := p.Config
	if cfg == nil {
		return Playback{Mode: ModeDuration, Seconds: DefaultItemDuration}
	}

	loop := cfg.Loop && (p.MediaType == MediaVideo || p.MediaType == MediaGIF)

	if cfg.Mode == ModeTimes && p.MediaType == MediaVideo {
		count := cfg.Times
		if count < 1 {
			count = 1
		}
		return Playback{Mode: ModeTimes, Count: count, Loop: loop}
	}

	seconds := cfg.Duration
	if seconds < 1 {
		seconds = DefaultItemDuration
	}
	return Playback{Mode: ModeDuration, Seconds: seconds, Loop: loop}
}
