package db

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
)

// GetScreenByCode loads one screen plus its ordered playlist. This is the
// read the player polls, so it has to return the playlist in final playback
// order with each item's playback config attached.
func (s *pgStore) GetScreenByCode(code string) (*model.Screen, error) {
	var screen model.Screen
	const q = `
	SELECT id, screen_code, device_id, name, orientation, aspect_ratio,
	       status, account_status, last_ping, created_at, updated_at
	  FROM screens
	 WHERE screen_code = $1;`
	if err := s.db.Get(&screen, q, code); err != nil {
		return nil, err
	}

	items, err := s.playlistForScreen(screen.ID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("GetScreenByCode playlist load failed")
		return nil, err
	}
	screen.Playlist = items
	return &screen, nil
}

type playlistItemRow struct {
	ID             int    `db:"id"`
	ScreenID       int    `db:"screen_id"`
	MediaID        int    `db:"media_id"`
	MediaType      string `db:"media_type"`
	MediaURL       string `db:"media_url"`
	Position       int    `db:"position"`
	PlaybackConfig []byte `db:"playback_config"`
}

func (s *pgStore) playlistForScreen(screenID int) ([]model.PlaylistItem, error) {
	var rows []playlistItemRow
	const q = `
	SELECT id, screen_id, media_id, media_type, media_url, position, playback_config
	  FROM playlist_items
	 WHERE screen_id = $1
	 ORDER BY position;`
	if err := s.db.Select(&rows, q, screenID); err != nil {
		return nil, err
	}

	out := make([]model.PlaylistItem, 0, len(rows))
	for _, r := range rows {
		item := model.PlaylistItem{
			ID:        r.ID,
			ScreenID:  r.ScreenID,
			MediaID:   r.MediaID,
			MediaType: model.MediaType(r.MediaType),
			MediaURL:  r.MediaURL,
			Position:  r.Position,
		}
		if len(r.PlaybackConfig) > 0 {
			var cfg model.PlaybackConfig
			if err := json.Unmarshal(r.PlaybackConfig, &cfg); err != nil {
				// a corrupt config must not take the whole playlist down;
				// the item falls back to defaults
				log.Error().Err(err).Int("item_id", r.ID).Msg("invalid playback_config, using defaults")
			} else {
				item.Config = &cfg
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// TouchScreenPing records device liveness on the screen row.
func (s *pgStore) TouchScreenPing(screenID int) error {
	_, err := s.db.Exec(`UPDATE screens SET last_ping = now() WHERE id = $1;`, screenID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("TouchScreenPing failed")
	}
	return err
}
