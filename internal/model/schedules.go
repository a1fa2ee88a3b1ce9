package model

import "time"

// RepeatType is a schedule recurrence rule.
type RepeatType string

const (
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatOnce    RepeatType = "once"
)

// Schedule is a recurrence rule bound to one screen. At any instant zero or
// more schedules can match; the resolver picks the single authoritative one.
//
// StartTime/EndTime are HH:MM in the screen's local time and form a
// half-open window [start, end). A window with start >= end never matches:
// overnight wraparound is deliberately not inferred from it.
type Schedule struct {
	ID            int        `db:"id"              json:"id"`
	ScreenID      int        `db:"screen_id"       json:"screen_id"`
	Name          string     `db:"name"            json:"name"`
	RepeatType    RepeatType `db:"repeat_type"     json:"repeat_type"`
	StartTime     string     `db:"start_time"      json:"start_time"`
	EndTime       string     `db:"end_time"        json:"end_time"`
	AllDay        bool       `db:"all_day"         json:"all_day"`
	Days          []int      `db:"-"               json:"days,omitempty"`
	MonthDay      int        `db:"month_day"       json:"month_day,omitempty"`
	SpecificDate  *string    `db:"specific_date"   json:"specific_date,omitempty"`
	ValidityStart *string    `db:"validity_start"  json:"validity_start,omitempty"`
	ValidityEnd   *string    `db:"validity_end"    json:"validity_end,omitempty"`
	Priority      int        `db:"priority"        json:"priority"`
	Active        bool       `db:"active"          json:"active"`
	CreatedAt     time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"      json:"updated_at"`
}
