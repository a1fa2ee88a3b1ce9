package player

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/stheno/internal/http/api"
)

// The player exposes a small localhost surface for the kiosk renderer: it
// polls what to show and reports media/visibility events back. The renderer
// stays dumb on purpose; every decision lives in the engine.

type PlayerController struct {
	engine *Engine
	syncer *Syncer
}

func NewPlayerController(engine *Engine, syncer *Syncer) *PlayerController {
	return &PlayerController{engine: engine, syncer: syncer}
}

// PlayerModule mounts the renderer-facing endpoints.
func PlayerModule(engine *Engine, syncer *Syncer) api.Module {
	ctl := NewPlayerController(engine, syncer)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/state", ctl.getState)
		c.POST("/advance", ctl.advance)
		c.POST("/events", ctl.postEvent)
	})
}

type StateResponse struct {
	State            string `json:"state"`
	Index            int    `json:"index"`
	ItemID           int    `json:"item_id,omitempty"`
	MediaType        string `json:"media_type,omitempty"`
	MediaURL         string `json:"media_url,omitempty"`
	Mode             string `json:"mode,omitempty"`
	Loop             bool   `json:"loop,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds"`
	ScheduleID       int    `json:"schedule_id,omitempty"`
	WithheldReason   string `json:"withheld_reason,omitempty"`
}

type EventRequest struct {
	Type string `json:"type" binding:"required"`
}

// GET /player/state
func (p *PlayerController) getState(ctx *gin.Context) (any, *api.APIError) {
	s := p.engine.Snapshot()
	resp := StateResponse{
		State:            string(s.Presentation()),
		Index:            s.Index,
		ScheduleID:       s.Seq.ScheduleID,
		WithheldReason:   s.WithheldReason,
		RemainingSeconds: int((s.Remaining() + time.Second - 1) / time.Second),
	}
	if it, ok := s.Current(); ok {
		resp.ItemID = it.ID
		resp.MediaType = string(it.MediaType)
		resp.MediaURL = it.MediaURL
		resp.Mode = string(it.Playback.Mode)
		resp.Loop = it.Playback.Loop
	}
	return resp, nil
}

// POST /player/advance
func (p *PlayerController) advance(ctx *gin.Context) (any, *api.APIError) {
	p.engine.Advance()
	return gin.H{"success": "advance requested"}, nil
}

// POST /player/events
func (p *PlayerController) postEvent(ctx *gin.Context) (any, *api.APIError) {
	var request EventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	switch request.Type {
	case "ready":
		p.engine.Dispatch(Event{Type: EvMediaReady})
	case "ended":
		p.engine.Dispatch(Event{Type: EvMediaEnded})
	case "error":
		p.engine.Dispatch(Event{Type: EvMediaError})
	case "hidden":
		p.engine.Dispatch(Event{Type: EvHidden})
	case "visible":
		p.engine.Dispatch(Event{Type: EvVisible})
		// a display coming back may have missed pushes; re-sync immediately
		p.syncer.RequestRefresh()
	default:
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown event type"}
	}
	return gin.H{"success": "event accepted"}, nil
}
