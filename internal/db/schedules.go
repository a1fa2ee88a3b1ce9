package db

import (
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
)

type scheduleRow struct {
	ID            int           `db:"id"`
	ScreenID      int           `db:"screen_id"`
	Name          string        `db:"name"`
	RepeatType    string        `db:"repeat_type"`
	StartTime     string        `db:"start_time"`
	EndTime       string        `db:"end_time"`
	AllDay        bool          `db:"all_day"`
	Days          pq.Int64Array `db:"days"`
	MonthDay      int           `db:"month_day"`
	SpecificDate  *string       `db:"specific_date"`
	ValidityStart *string       `db:"validity_start"`
	ValidityEnd   *string       `db:"validity_end"`
	Priority      int           `db:"priority"`
	Active        bool          `db:"active"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// ListSchedulesForScreen returns the screen's full schedule collection. The
// player filters for "active right now" itself; the server just hands over
// the snapshot.
func (s *pgStore) ListSchedulesForScreen(screenID int) ([]model.Schedule, error) {
	var rows []scheduleRow
	const q = `
	SELECT id, screen_id, name, repeat_type, start_time, end_time, all_day,
	       days, month_day, specific_date, validity_start, validity_end,
	       priority, active, created_at, updated_at
	  FROM schedules
	 WHERE screen_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&rows, q, screenID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("ListSchedulesForScreen failed")
		return nil, err
	}

	out := make([]model.Schedule, 0, len(rows))
	for _, r := range rows {
		days := make([]int, 0, len(r.Days))
		for _, d := range r.Days {
			days = append(days, int(d))
		}
		out = append(out, model.Schedule{
			ID:            r.ID,
			ScreenID:      r.ScreenID,
			Name:          r.Name,
			RepeatType:    model.RepeatType(r.RepeatType),
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			AllDay:        r.AllDay,
			Days:          days,
			MonthDay:      r.MonthDay,
			SpecificDate:  r.SpecificDate,
			ValidityStart: r.ValidityStart,
			ValidityEnd:   r.ValidityEnd,
			Priority:      r.Priority,
			Active:        r.Active,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out, nil
}
