package packets

// REQUESTS FOR /api/tv/screens/*

// PingRequest is the heartbeat a player posts on every poll cycle. Version
// carries the marker the device last applied so the server can nudge stale
// devices over MQTT.
type PingRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Version  string `json:"version,omitempty"`
}
