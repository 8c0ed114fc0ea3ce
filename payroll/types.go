/*
Package payroll projects forward-looking monthly pay from resolved
schedule instances plus compensation configuration.

PURPOSE:
  Given one subject's CompensationProfile, their resolved instances over
  a 12-month forward window, approved overtime requests, bonus records,
  a public-holiday calendar, and the existing pay ledger, produce one
  MonthlyPayPreview per month.

DESIGN PRINCIPLES:
  1. Precision: all money math uses decimal.Decimal; rounding happens
     only at presentation.
  2. Purity: the forecaster reads nothing ambient; "now" is a parameter.
  3. Absence is empty, not an error: a missing profile yields a nil
     projection.

KEY CONCEPTS IN THIS FILE (types.go):
  - CompensationProfile: base salary, pay frequency, leave allowance
  - BonusRecord: recurring or one-off extra pay
  - PayLedgerEntry: what has already been recorded/paid
  - HolidayCalendar: date -> public holiday name lookup
  - MonthlyPayPreview: the per-month projection output
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// COMPENSATION PROFILE
// =============================================================================

type PayFrequency string

const (
	FrequencyWeekly   PayFrequency = "weekly"
	FrequencyBiweekly PayFrequency = "biweekly"
	FrequencyMonthly  PayFrequency = "monthly"
	FrequencyAnnual   PayFrequency = "annual"
)

type CompensationProfile struct {
	SubjectID  rota.SubjectID
	BaseSalary decimal.Decimal
	Frequency  PayFrequency

	// AnnualLeaveAllowance is the full-year allowance in days.
	AnnualLeaveAllowance int

	TenureStart rota.TimePoint
}

// Normalization factors for monthly base pay.
var (
	weeksPerMonth    = decimal.NewFromFloat(4.33)
	biweeksPerMonth  = decimal.NewFromFloat(2.17)
	monthsPerYear    = decimal.NewFromInt(12)
	workingDaysMonth = decimal.NewFromInt(20)

	overtimeRate = decimal.NewFromFloat(1.5)
	holidayRate  = decimal.NewFromFloat(0.5)
)

// MonthlyBase normalizes the base salary to a monthly figure.
func (p CompensationProfile) MonthlyBase() decimal.Decimal {
	switch p.Frequency {
	case FrequencyWeekly:
		return p.BaseSalary.Mul(weeksPerMonth)
	case FrequencyBiweekly:
		return p.BaseSalary.Mul(biweeksPerMonth)
	case FrequencyAnnual:
		return p.BaseSalary.Div(monthsPerYear)
	default: // monthly
		return p.BaseSalary
	}
}

// DailyRate is the per-working-day rate: monthly base over 20 days.
func (p CompensationProfile) DailyRate() decimal.Decimal {
	return p.MonthlyBase().Div(workingDaysMonth)
}

// =============================================================================
// BONUS RECORDS
// =============================================================================

// BonusRecord is extra pay, either recurring (active over a range of
// months) or one-off (a single date).
type BonusRecord struct {
	ID        string
	SubjectID rota.SubjectID
	Amount    decimal.Decimal
	Label     string

	Recurring bool

	// Recurring: active window. To nil = still active.
	From rota.TimePoint
	To   *rota.TimePoint

	// One-off: the month it lands in is taken from Date.
	Date rota.TimePoint
}

// AppliesTo reports whether the bonus lands in the given month.
func (b BonusRecord) AppliesTo(year int, month time.Month) bool {
	if b.Recurring {
		monthStart := rota.StartOfMonth(year, month)
		monthEnd := rota.EndOfMonth(year, month)
		if b.From.After(monthEnd) {
			return false
		}
		if b.To != nil && b.To.Before(monthStart) {
			return false
		}
		return true
	}
	return b.Date.Year() == year && b.Date.Month() == month
}

// =============================================================================
// PAY LEDGER
// =============================================================================

type LedgerKind string

const (
	LedgerSalary    LedgerKind = "salary"
	LedgerBonus     LedgerKind = "bonus"
	LedgerDeduction LedgerKind = "deduction"
)

// PayLedgerEntry records pay that has been processed or adjustments
// entered against a month.
type PayLedgerEntry struct {
	ID        string
	SubjectID rota.SubjectID
	Kind      LedgerKind
	Amount    decimal.Decimal
	Year      int
	Month     time.Month
	Label     string
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayCalendar looks up public holidays by date.
type HolidayCalendar interface {
	// HolidayName returns the holiday name for the date and whether the
	// date is a public holiday.
	HolidayName(date rota.TimePoint) (string, bool)
}

// MapCalendar is a HolidayCalendar backed by a date-string map.
type MapCalendar map[string]string

func (m MapCalendar) HolidayName(date rota.TimePoint) (string, bool) {
	name, ok := m[date.String()]
	return name, ok
}

// =============================================================================
// MONTHLY PAY PREVIEW - Output record
// =============================================================================

type PreviewStatus string

const (
	StatusPending PreviewStatus = "pending"
	StatusReady   PreviewStatus = "ready"
	StatusPaid    PreviewStatus = "paid"
)

type MonthlyPayPreview struct {
	SubjectID rota.SubjectID
	Year      int
	Month     time.Month

	Base      decimal.Decimal
	DailyRate decimal.Decimal

	// Distinct public-holiday shift dates and the 0.5x daily-rate bonus
	// for them. Base pay for those days is assumed already covered by
	// salary.
	HolidayShiftDates []rota.TimePoint
	HolidayBonus      decimal.Decimal

	Bonuses    decimal.Decimal
	Deductions decimal.Decimal

	OvertimeDays int
	OvertimePay  decimal.Decimal

	// Populated only in the leave-year rollover month.
	UnusedLeavePayout    decimal.Decimal
	ExcessLeaveDeduction decimal.Decimal

	Total  decimal.Decimal
	Status PreviewStatus
}
