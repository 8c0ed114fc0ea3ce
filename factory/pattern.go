/*
Package factory provides JSON to Go rotation-pattern conversion.

PURPOSE:
  Converts JSON rota definitions into rota.RecurrencePattern values.
  This enables roster configuration without code changes - coordinators
  can define rotations in JSON, and the factory creates the proper Go
  structs.

JSON SCHEMA:
  {
    "patterns": [
      {
        "id": "rot-weekday-am",
        "subject_id": "emp-1",
        "client_id": "client-7",
        "weekdays": [1, 3, 5],
        "start_time": "09:00",
        "end_time": "17:00",
        "start_date": "2024-01-01",
        "end_date": "2024-06-30",
        "interval": "weekly",
        "overtime": false,
        "label": "Weekday mornings"
      }
    ]
  }

KEY FEATURES:
  - Validates JSON structure and pattern invariants before anything is
    stored
  - Weekday numbers follow the engine convention: 0=Sunday ... 6=Saturday
  - end_date omitted = open-ended (except one_off, which requires it)

USAGE:
  f := factory.NewPatternFactory()
  patterns, err := f.ParseRoster(jsonString)
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// JSON SHAPES
// =============================================================================

type RosterJSON struct {
	Patterns []PatternJSON `json:"patterns"`
}

type PatternJSON struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	ClientID  string `json:"client_id"`
	Weekdays  []int  `json:"weekdays"`
	StartTime string `json:"start_time"` // "15:04"
	EndTime   string `json:"end_time"`
	StartDate string `json:"start_date"` // "2006-01-02"
	EndDate   string `json:"end_date,omitempty"`
	Interval  string `json:"interval"`
	Overtime  bool   `json:"overtime"`
	Label     string `json:"label,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// =============================================================================
// PATTERN FACTORY
// =============================================================================

type PatternFactory struct{}

func NewPatternFactory() *PatternFactory { return &PatternFactory{} }

// ParseRoster parses a full roster definition. Every pattern must pass
// engine validation; one bad pattern fails the whole parse so partial
// rosters are never stored.
func (f *PatternFactory) ParseRoster(raw string) ([]rota.RecurrencePattern, error) {
	var roster RosterJSON
	if err := json.Unmarshal([]byte(raw), &roster); err != nil {
		return nil, fmt.Errorf("invalid roster JSON: %w", err)
	}
	if len(roster.Patterns) == 0 {
		return nil, fmt.Errorf("roster defines no patterns")
	}

	patterns := make([]rota.RecurrencePattern, 0, len(roster.Patterns))
	for i, pj := range roster.Patterns {
		p, err := f.ParsePattern(pj)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, pj.ID, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// ParsePattern converts one JSON definition into a validated pattern.
func (f *PatternFactory) ParsePattern(pj PatternJSON) (rota.RecurrencePattern, error) {
	if pj.ID == "" || pj.SubjectID == "" {
		return rota.RecurrencePattern{}, fmt.Errorf("id and subject_id are required")
	}

	startTime, err := parseClock(pj.StartTime)
	if err != nil {
		return rota.RecurrencePattern{}, fmt.Errorf("start_time: %w", err)
	}
	endTime, err := parseClock(pj.EndTime)
	if err != nil {
		return rota.RecurrencePattern{}, fmt.Errorf("end_time: %w", err)
	}
	startDate, err := ParseDate(pj.StartDate)
	if err != nil {
		return rota.RecurrencePattern{}, fmt.Errorf("start_date: %w", err)
	}

	var endDate *rota.TimePoint
	if pj.EndDate != "" {
		ed, err := ParseDate(pj.EndDate)
		if err != nil {
			return rota.RecurrencePattern{}, fmt.Errorf("end_date: %w", err)
		}
		endDate = &ed
	}

	weekdays := make([]time.Weekday, 0, len(pj.Weekdays))
	for _, wd := range pj.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}

	p := rota.RecurrencePattern{
		ID:        rota.PatternID(pj.ID),
		SubjectID: rota.SubjectID(pj.SubjectID),
		ClientID:  rota.ClientID(pj.ClientID),
		Weekdays:  weekdays,
		StartTime: startTime,
		EndTime:   endTime,
		StartDate: startDate,
		EndDate:   endDate,
		Interval:  rota.RecurrenceInterval(pj.Interval),
		Overtime:  pj.Overtime,
		Label:     pj.Label,
		Notes:     pj.Notes,
	}
	if err := p.Validate(); err != nil {
		return rota.RecurrencePattern{}, err
	}
	return p, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseDate parses a "2006-01-02" calendar day.
func ParseDate(s string) (rota.TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return rota.TimePoint{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return rota.DayOf(t), nil
}

func parseClock(s string) (rota.MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return rota.NewMinuteOfDay(t.Hour(), t.Minute()), nil
}
