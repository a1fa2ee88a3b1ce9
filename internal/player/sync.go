package player

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nixie-Tech-LLC/stheno/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/stheno/internal/model"
	"github.com/Nixie-Tech-LLC/stheno/internal/playlist"
	"github.com/Nixie-Tech-LLC/stheno/internal/schedule"
)

// SyncConfig configures the polling adapter.
type SyncConfig struct {
	ServerURL    string
	ScreenCode   string
	DeviceID     string
	PollInterval time.Duration
}

// Syncer periodically fetches the screen definition and feeds the engine
// with materialized sequences. It owns the last-known-good snapshot: a
// transient fetch failure keeps the current content playing, and a fetch
// whose version marker matches the last applied one is discarded before any
// re-materialization happens.
type Syncer struct {
	cfg    SyncConfig
	client *http.Client
	engine *Engine
	logger zerolog.Logger

	refresh chan struct{}

	// loop-goroutine state, never touched from outside Run
	lastMarker    string
	screenVersion string
	screen        model.Screen
	schedules     []model.Schedule
	haveGood      bool
}

// NewSyncer creates a polling adapter for one screen.
func NewSyncer(cfg SyncConfig, engine *Engine, logger zerolog.Logger) *Syncer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Syncer{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		engine:  engine,
		logger:  logger,
		refresh: make(chan struct{}, 1),
	}
}

// RequestRefresh short-circuits the poll interval (visibility regained, MQTT
// refresh command). Coalesces: at most one pending refresh.
func (s *Syncer) RequestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Run executes the sync loop until context cancellation. Besides the poll
// interval, a minute-aligned timer re-materializes from the last-known-good
// snapshot so half-open schedule window edges are honored exactly, even when
// no fetch happens at the boundary.
func (s *Syncer) Run(ctx context.Context) error {
	s.logger.Info().
		Str("screen_code", s.cfg.ScreenCode).
		Dur("interval", s.cfg.PollInterval).
		Msg("sync adapter started")

	s.poll(ctx)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	boundary := time.NewTimer(untilNextMinute(time.Now()))
	defer boundary.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sync adapter stopped")
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		case <-s.refresh:
			s.poll(ctx)
		case now := <-boundary.C:
			if s.haveGood {
				s.rematerialize(now)
			}
			boundary.Reset(untilNextMinute(time.Now()))
		}
	}
}

// untilNextMinute returns the wait to just past the next minute boundary.
func untilNextMinute(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now) + 50*time.Millisecond
}

func (s *Syncer) poll(ctx context.Context) {
	now := time.Now()

	screen, err := s.fetchScreen(ctx)
	if err != nil {
		s.handleFetchError(err)
		return
	}

	if reason, withheld := screen.ContentWithheld(); withheld {
		s.logger.Warn().Str("reason", reason).Msg("content withheld by backend")
		s.haveGood = false
		s.lastMarker = ""
		s.engine.Dispatch(Event{Type: EvWithhold, Reason: reason})
		return
	}

	schedules, err := s.fetchSchedules(ctx)
	if err != nil {
		s.handleFetchError(err)
		return
	}

	go s.heartbeat(ctx, s.screenVersion)

	marker := versionMarker(screen, schedules)
	if s.haveGood && marker == s.lastMarker {
		// nothing actually changed: discard entirely, no state touch
		s.logger.Debug().Str("marker", marker).Msg("version marker unchanged")
		return
	}

	s.screen = *screen
	s.schedules = schedules
	s.lastMarker = marker
	s.screenVersion = screen.UpdatedAt.Format(time.RFC3339Nano)
	s.haveGood = true
	s.rematerialize(now)
}

// handleFetchError distinguishes a removed screen (terminal presentation)
// from transient failures (keep playing last-known-good; only an initial
// failure with no good state presents as withheld).
func (s *Syncer) handleFetchError(err error) {
	if isNotFound(err) {
		s.logger.Warn().Err(err).Msg("screen not found on backend")
		s.haveGood = false
		s.lastMarker = ""
		s.engine.Dispatch(Event{Type: EvWithhold, Reason: "screen not found"})
		return
	}
	if !s.haveGood {
		s.logger.Warn().Err(err).Msg("initial fetch failed, nothing to play")
		s.engine.Dispatch(Event{Type: EvWithhold, Reason: "backend unreachable"})
		return
	}
	s.logger.Warn().Err(err).Msg("fetch failed, keeping last known content")
}

func (s *Syncer) rematerialize(now time.Time) {
	winner := schedule.Resolve(now, s.schedules)
	seq := playlist.Materialize(s.screen.Playlist, winner, now)
	s.engine.Dispatch(Event{Type: EvSequence, Seq: &seq})
}

// versionMarker combines the screen's updated_at with the schedule
// snapshot's identity. Equal markers mean neither playlist nor schedules
// changed since the last applied fetch.
func versionMarker(screen *model.Screen, schedules []model.Schedule) string {
	var b strings.Builder
	b.WriteString(screen.UpdatedAt.Format(time.RFC3339Nano))
	for i := range schedules {
		fmt.Fprintf(&b, "|%d:%s", schedules[i].ID, schedules[i].UpdatedAt.Format(time.RFC3339Nano))
	}
	return b.String()
}

type notFoundError struct{ url string }

func (e *notFoundError) Error() string { return "not found: " + e.url }

func isNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

func (s *Syncer) fetchScreen(ctx context.Context) (*model.Screen, error) {
	var resp packets.ScreenResponse
	url := fmt.Sprintf("%s/api/tv/screens/%s", s.cfg.ServerURL, s.cfg.ScreenCode)
	if err := s.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return screenFromResponse(&resp), nil
}

func (s *Syncer) fetchSchedules(ctx context.Context) ([]model.Schedule, error) {
	var resp []packets.ScheduleResponse
	url := fmt.Sprintf("%s/api/tv/screens/%s/schedules", s.cfg.ServerURL, s.cfg.ScreenCode)
	if err := s.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Schedule, 0, len(resp))
	for i := range resp {
		out = append(out, scheduleFromResponse(&resp[i]))
	}
	return out, nil
}

func (s *Syncer) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return &notFoundError{url: url}
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// heartbeat is fire-and-forget telemetry: it must never block or fail
// playback, so errors only surface at debug level.
func (s *Syncer) heartbeat(ctx context.Context, version string) {
	body, _ := json.Marshal(packets.PingRequest{
		DeviceID: s.cfg.DeviceID,
		Version:  version,
	})
	url := fmt.Sprintf("%s/api/tv/screens/%s/ping", s.cfg.ServerURL, s.cfg.ScreenCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("heartbeat failed")
		return
	}
	res.Body.Close()
}

func screenFromResponse(r *packets.ScreenResponse) *model.Screen {
	screen := &model.Screen{
		ID:            r.ID,
		ScreenCode:    r.ScreenCode,
		Name:          r.Name,
		Orientation:   r.Orientation,
		AspectRatio:   r.AspectRatio,
		Status:        model.ScreenStatus(r.Status),
		AccountStatus: model.AccountStatus(r.AccountStatus),
		UpdatedAt:     parseRFC3339(r.UpdatedAt),
		CreatedAt:     parseRFC3339(r.CreatedAt),
	}
	for i := range r.Playlist {
		it := &r.Playlist[i]
		screen.Playlist = append(screen.Playlist, model.PlaylistItem{
			ID:        it.ID,
			ScreenID:  r.ID,
			MediaID:   it.MediaID,
			MediaType: model.MediaType(it.MediaType),
			MediaURL:  it.MediaURL,
			Position:  it.Position,
			Config:    it.PlaybackConfig,
		})
	}
	return screen
}

func scheduleFromResponse(r *packets.ScheduleResponse) model.Schedule {
	return model.Schedule{
		ID:            r.ID,
		ScreenID:      r.ScreenID,
		Name:          r.Name,
		RepeatType:    model.RepeatType(r.RepeatType),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		AllDay:        r.AllDay,
		Days:          r.Days,
		MonthDay:      r.MonthDay,
		SpecificDate:  r.SpecificDate,
		ValidityStart: r.ValidityStart,
		ValidityEnd:   r.ValidityEnd,
		Priority:      r.Priority,
		Active:        r.Active,
		CreatedAt:     parseRFC3339(r.CreatedAt),
		UpdatedAt:     parseRFC3339(r.UpdatedAt),
	}
}

func parseRFC3339(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
