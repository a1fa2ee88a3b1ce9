package model

import "time"

// ScreenStatus is the lifecycle state of a screen as managed by the CMS.
type ScreenStatus string

const (
	ScreenActive   ScreenStatus = "active"
	ScreenArchived ScreenStatus = "archived"
	ScreenDisabled ScreenStatus = "disabled"
)

// AccountStatus mirrors the owning account's standing. Anything other than
// active withholds content on the device.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountExpired   AccountStatus = "expired"
)

// Screen represents a display device in the system. The player only ever
// reads this aggregate; UpdatedAt doubles as the content version marker.
type Screen struct {
	ID            int            `db:"id"             json:"id"`
	ScreenCode    string         `db:"screen_code"    json:"screen_code"`
	DeviceID      *string        `db:"device_id"      json:"device_id"`
	Name          string         `db:"name"           json:"name"`
	Orientation   string         `db:"orientation"    json:"orientation"`
	AspectRatio   string         `db:"aspect_ratio"   json:"aspect_ratio"`
	Status        ScreenStatus   `db:"status"         json:"status"`
	AccountStatus AccountStatus  `db:"account_status" json:"account_status"`
	LastPing      *time.Time     `db:"last_ping"      json:"last_ping,omitempty"`
	CreatedAt     time.Time      `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"     json:"updated_at"`
	Playlist      []PlaylistItem `db:"-"              json:"playlist,omitempty"`
}

// ContentWithheld reports whether the screen's lifecycle or account state
// blocks playback entirely, and with what reason.
func (s *Screen) ContentWithheld() (string, bool) {
	switch s.Status {
	case ScreenArchived:
		return "screen archived", true
	case ScreenDisabled:
		return "screen disabled", true
	}
	switch s.AccountStatus {
	case AccountSuspended:
		return "account suspended", true
	case AccountExpired:
		return "account expired", true
	}
	return "", false
}
