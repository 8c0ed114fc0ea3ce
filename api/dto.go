/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API. DTOs keep the wire format decoupled from
  domain types: dates travel as "YYYY-MM-DD" strings, clock times as
  "HH:MM", money as decimal strings.

CONVENTIONS:
  - *DTO types are responses
  - *Request / *Body types are request bodies
  - Validation happens in handlers, not here
*/
package api

import (
	"fmt"
	"time"

	"github.com/warp/rota-engine/payroll"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// ERROR RESPONSE
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PATTERN DTOs
// =============================================================================

type PatternDTO struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	ClientID  string `json:"client_id"`
	Weekdays  []int  `json:"weekdays"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Interval  string `json:"interval"`
	Overtime  bool   `json:"overtime"`
	Label     string `json:"label,omitempty"`
}

func toPatternDTO(p rota.RecurrencePattern) PatternDTO {
	weekdays := make([]int, len(p.Weekdays))
	for i, wd := range p.Weekdays {
		weekdays[i] = int(wd)
	}
	dto := PatternDTO{
		ID:        string(p.ID),
		SubjectID: string(p.SubjectID),
		ClientID:  string(p.ClientID),
		Weekdays:  weekdays,
		StartTime: clockString(p.StartTime),
		EndTime:   clockString(p.EndTime),
		StartDate: p.StartDate.String(),
		Interval:  string(p.Interval),
		Overtime:  p.Overtime,
		Label:     p.Label,
	}
	if p.EndDate != nil {
		dto.EndDate = p.EndDate.String()
	}
	return dto
}

type CreateExceptionRequest struct {
	PatternID string `json:"pattern_id"`
	Date      string `json:"date"`
}

// =============================================================================
// INSTANCE DTOs
// =============================================================================

type CreateInstanceRequest struct {
	ID        string `json:"id,omitempty"`
	SubjectID string `json:"subject_id"`
	ClientID  string `json:"client_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// InstanceDTO is one resolved timeline entry of any origin.
type InstanceDTO struct {
	SubjectID string `json:"subject_id"`
	ClientID  string `json:"client_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Origin    string `json:"origin"`
	SourceID  string `json:"source_id"`
	Overtime  bool   `json:"overtime"`

	Suppressed   bool   `json:"suppressed,omitempty"`
	SuppressedBy string `json:"suppressed_by,omitempty"`

	// Cover-origin only.
	CoveredSubjectID string `json:"covered_subject_id,omitempty"`
	RequestID        string `json:"request_id,omitempty"`

	// Display row from the packing pass.
	Row int `json:"row"`
}

func toInstanceDTO(ri rota.ResolvedInstance) InstanceDTO {
	return InstanceDTO{
		SubjectID:    string(ri.SubjectID),
		ClientID:     string(ri.ClientID),
		Start:        ri.Start.Format(time.RFC3339),
		End:          ri.End.Format(time.RFC3339),
		Origin:       string(ri.Origin),
		SourceID:     ri.SourceID,
		Overtime:     ri.Overtime,
		Suppressed:   ri.Suppressed,
		SuppressedBy: string(ri.SuppressedBy),
	}
}

// ScheduleDTO is one resolved window: every instance with its display
// row, plus the problems the pass skipped over.
type ScheduleDTO struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	Instances []InstanceDTO `json:"instances"`
	RowCount  int           `json:"row_count"`
	Problems  []string      `json:"problems,omitempty"`
}

// =============================================================================
// LEAVE / REQUEST DTOs
// =============================================================================

type CreateLeaveRequest struct {
	ID              string `json:"id,omitempty"`
	SubjectID       string `json:"subject_id"`
	Type            string `json:"type"`
	From            string `json:"from"`
	To              string `json:"to"`
	DaysCharged     int    `json:"days_charged"`
	NoCoverRequired bool   `json:"no_cover_required"`
}

type LeaveDTO struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subject_id"`
	Type        string `json:"type"`
	From        string `json:"from"`
	To          string `json:"to"`
	Status      string `json:"status"`
	DaysCharged int    `json:"days_charged"`
}

func toLeaveDTO(l rota.LeaveRecord) LeaveDTO {
	return LeaveDTO{
		ID:          string(l.ID),
		SubjectID:   string(l.SubjectID),
		Type:        l.Type,
		From:        l.From.String(),
		To:          l.To.String(),
		Status:      string(l.Status),
		DaysCharged: l.DaysCharged,
	}
}

type SubmitRequestBody struct {
	ID               string `json:"id,omitempty"`
	SubjectID        string `json:"subject_id"`
	Kind             string `json:"kind"` // overtime | leave | shift_cover
	CoveredSubjectID string `json:"covered_subject_id,omitempty"`
	LinkedLeaveID    string `json:"linked_leave_id,omitempty"`
	From             string `json:"from"`
	To               string `json:"to"`
}

type RequestDTO struct {
	ID               string `json:"id"`
	SubjectID        string `json:"subject_id"`
	Kind             string `json:"kind"`
	CoveredSubjectID string `json:"covered_subject_id,omitempty"`
	LinkedLeaveID    string `json:"linked_leave_id,omitempty"`
	From             string `json:"from"`
	To               string `json:"to"`
	Status           string `json:"status"`

	// Set on approval responses for shift-cover requests.
	ReassignedShifts int `json:"reassigned_shifts,omitempty"`
}

func toRequestDTO(req rota.ExceptionRequest) RequestDTO {
	return RequestDTO{
		ID:               string(req.ID),
		SubjectID:        string(req.SubjectID),
		Kind:             string(req.Kind),
		CoveredSubjectID: string(req.CoveredSubjectID),
		LinkedLeaveID:    string(req.LinkedLeaveID),
		From:             req.From.String(),
		To:               req.To.String(),
		Status:           string(req.Status),
	}
}

// =============================================================================
// PAY DTOs
// =============================================================================

type CreateProfileRequest struct {
	SubjectID            string `json:"subject_id"`
	BaseSalary           string `json:"base_salary"`
	Frequency            string `json:"frequency"`
	AnnualLeaveAllowance int    `json:"annual_leave_allowance"`
	TenureStart          string `json:"tenure_start,omitempty"`
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type PayPreviewDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Base  string `json:"base"`

	Bonuses    string `json:"bonuses"`
	Deductions string `json:"deductions"`

	OvertimeDays int    `json:"overtime_days"`
	OvertimePay  string `json:"overtime_pay"`

	HolidayShiftDates []string `json:"holiday_shift_dates,omitempty"`
	HolidayBonus      string   `json:"holiday_bonus"`

	UnusedLeavePayout    string `json:"unused_leave_payout"`
	ExcessLeaveDeduction string `json:"excess_leave_deduction"`

	Total  string `json:"total"`
	Status string `json:"status"`
}

func toPayPreviewDTO(p payroll.MonthlyPayPreview) PayPreviewDTO {
	dates := make([]string, len(p.HolidayShiftDates))
	for i, d := range p.HolidayShiftDates {
		dates[i] = d.String()
	}
	return PayPreviewDTO{
		Year:                 p.Year,
		Month:                int(p.Month),
		Base:                 p.Base.StringFixed(2),
		Bonuses:              p.Bonuses.StringFixed(2),
		Deductions:           p.Deductions.StringFixed(2),
		OvertimeDays:         p.OvertimeDays,
		OvertimePay:          p.OvertimePay.StringFixed(2),
		HolidayShiftDates:    dates,
		HolidayBonus:         p.HolidayBonus.StringFixed(2),
		UnusedLeavePayout:    p.UnusedLeavePayout.StringFixed(2),
		ExcessLeaveDeduction: p.ExcessLeaveDeduction.StringFixed(2),
		Total:                p.Total.StringFixed(2),
		Status:               string(p.Status),
	}
}

// =============================================================================
// FORMAT HELPERS
// =============================================================================

func clockString(m rota.MinuteOfDay) string {
	return fmt.Sprintf("%02d:%02d", m.Hour(), m.Minute())
}
