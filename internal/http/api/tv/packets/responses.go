package packets

import "github.com/Nixie-Tech-LLC/stheno/internal/model"

// RESPONSES FOR /api/tv/screens/*

// ScreenResponse mirrors model.Screen but flattens times to RFC3339.
// UpdatedAt is the content version marker players compare between polls.
type ScreenResponse struct {
	ID            int                    `json:"id"`
	ScreenCode    string                 `json:"screen_code"`
	Name          string                 `json:"name"`
	Orientation   string                 `json:"orientation"`
	AspectRatio   string                 `json:"aspect_ratio"`
	Status        string                 `json:"status"`
	AccountStatus string                 `json:"account_status"`
	LastPing      *string                `json:"last_ping,omitempty"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
	Playlist      []PlaylistItemResponse `json:"playlist"`
}

type PlaylistItemResponse struct {
	ID             int                   `json:"id"`
	MediaID        int                   `json:"media_id"`
	MediaType      string                `json:"media_type"`
	MediaURL       string                `json:"media_url"`
	Position       int                   `json:"position"`
	PlaybackConfig *model.PlaybackConfig `json:"playback_config,omitempty"`
}

type ScheduleResponse struct {
	ID            int     `json:"id"`
	ScreenID      int     `json:"screen_id"`
	Name          string  `json:"name"`
	RepeatType    string  `json:"repeat_type"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	AllDay        bool    `json:"all_day"`
	Days          []int   `json:"days,omitempty"`
	MonthDay      int     `json:"month_day,omitempty"`
	SpecificDate  *string `json:"specific_date,omitempty"`
	ValidityStart *string `json:"validity_start,omitempty"`
	ValidityEnd   *string `json:"validity_end,omitempty"`
	Priority      int     `json:"priority"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type PingResponse struct {
	UpdatedAt string `json:"updated_at"`
}
