package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/stheno/internal/db"
	"github.com/Nixie-Tech-LLC/stheno/internal/http/api"
	"github.com/Nixie-Tech-LLC/stheno/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/stheno/internal/model"
	"github.com/Nixie-Tech-LLC/stheno/internal/mqtt"
	redisclient "github.com/Nixie-Tech-LLC/stheno/internal/redis"
)

// heartbeatTTL is how long a device counts as online after its last ping.
const heartbeatTTL = 90 * time.Second

type TvController struct {
	store db.Store
}

func NewTvController(store db.Store) *TvController {
	return &TvController{store: store}
}

// ScreenModule mounts the read-only endpoints the player polls.
func ScreenModule(store db.Store) api.Module {
	ctl := NewTvController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/screens/:code", ctl.getScreen)
		c.GET("/screens/:code/schedules", ctl.listSchedules)
		c.POST("/screens/:code/ping", ctl.ping)
	})
}

// GET /api/tv/screens/:code
func (t *TvController) getScreen(ctx *gin.Context) (any, *api.APIError) {
	screen, err := t.store.GetScreenByCode(ctx.Param("code"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	return screenResponse(screen), nil
}

// GET /api/tv/screens/:code/schedules
func (t *TvController) listSchedules(ctx *gin.Context) (any, *api.APIError) {
	screen, err := t.store.GetScreenByCode(ctx.Param("code"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}

	list, err := t.store.ListSchedulesForScreen(screen.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list schedules"}
	}

	response := make([]packets.ScheduleResponse, 0, len(list))
	for i := range list {
		response = append(response, scheduleResponse(&list[i]))
	}
	return response, nil
}

// POST /api/tv/screens/:code/ping
func (t *TvController) ping(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := t.store.GetScreenByCode(ctx.Param("code"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}

	redisclient.MarkAlive(ctx, screen.ScreenCode, heartbeatTTL)
	if err := t.store.TouchScreenPing(screen.ID); err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("failed to record ping")
	}

	current := screen.UpdatedAt.Format(time.RFC3339Nano)
	if request.Version != "" && request.Version != current {
		// the device applied an older marker than what we hold: nudge it
		mqtt.PublishRefresh(request.DeviceID)
	}

	return packets.PingResponse{UpdatedAt: current}, nil
}

func screenResponse(s *model.Screen) packets.ScreenResponse {
	out := packets.ScreenResponse{
		ID:            s.ID,
		ScreenCode:    s.ScreenCode,
		Name:          s.Name,
		Orientation:   s.Orientation,
		AspectRatio:   s.AspectRatio,
		Status:        string(s.Status),
		AccountStatus: string(s.AccountStatus),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339Nano),
		Playlist:      make([]packets.PlaylistItemResponse, 0, len(s.Playlist)),
	}
	if s.LastPing != nil {
		ping := s.LastPing.Format(time.RFC3339Nano)
		out.LastPing = &ping
	}
	for i := range s.Playlist {
		it := &s.Playlist[i]
		out.Playlist = append(out.Playlist, packets.PlaylistItemResponse{
			ID:             it.ID,
			MediaID:        it.MediaID,
			MediaType:      string(it.MediaType),
			MediaURL:       it.MediaURL,
			Position:       it.Position,
			PlaybackConfig: it.Config,
		})
	}
	return out
}

func scheduleResponse(s *model.Schedule) packets.ScheduleResponse {
	return packets.ScheduleResponse{
		ID:            s.ID,
		ScreenID:      s.ScreenID,
		Name:          s.Name,
		RepeatType:    string(s.RepeatType),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		AllDay:        s.AllDay,
		Days:          s.Days,
		MonthDay:      s.MonthDay,
		SpecificDate:  s.SpecificDate,
		ValidityStart: s.ValidityStart,
		ValidityEnd:   s.ValidityEnd,
		Priority:      s.Priority,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339Nano),
	}
}
