/*
forecast.go - 12-month pay projection

PURPOSE:
  Projects the next 12 months of compensation for one subject:

    total = base
          + bonuses
          + overtime pay (1.5x daily rate per overtime day)
          + holiday bonus (0.5x daily rate per holiday shift date)
          + unused-leave payout      (rollover month only)
          - deductions
          - excess-leave deduction   (rollover month only)

OVERTIME DAYS:
  The union of approved overtime-request day spans clipped to the month,
  plus the distinct dates of overtime-flagged pattern occurrences.
  A date counts once however many signals land on it.

LEAVE-YEAR ROLLOVER:
  Only the projection month that starts a new leave year settles the
  just-closed leave year: allowance is pro-rated by months of tenure
  within that year, leave days consumed in it are subtracted, and the
  remainder is paid out (or deducted when negative) at the daily rate.

STATUS:
  "paid"    a ledger salary entry exists for the month
  "ready"   the month has fully elapsed, or it is the current month and
            today is on/past the cutoff day
  "pending" otherwise
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/rota"
)

const (
	// ForecastMonths is the fixed projection horizon.
	ForecastMonths = 12

	// DefaultCutoffDay: from this day of the month the current month's
	// pay counts as ready for processing.
	DefaultCutoffDay = 25
)

// Forecaster projects monthly pay for one subject.
type Forecaster struct {
	Profile  *CompensationProfile
	Calendar HolidayCalendar

	// LeaveYearStartMonth anchors the fixed leave-year accrual period.
	// Zero value falls back to April.
	LeaveYearStartMonth time.Month

	// CutoffDay overrides DefaultCutoffDay when positive.
	CutoffDay int
}

// Input is everything one forecast reads. Instances and leave are the
// output of resolution passes over the forward window; requests are the
// approved overtime-kind ones.
type Input struct {
	Instances []rota.ResolvedInstance
	Overtime  []rota.ExceptionRequest
	Leave     []rota.LeaveRecord
	Bonuses   []BonusRecord
	Ledger    []PayLedgerEntry
	Now       time.Time
}

// Forecast returns one preview per of the next 12 months, starting with
// the month containing Now. A nil profile yields a nil projection.
func (f *Forecaster) Forecast(in Input) []MonthlyPayPreview {
	if f.Profile == nil {
		return nil
	}

	base := f.Profile.MonthlyBase()
	dailyRate := f.Profile.DailyRate()

	previews := make([]MonthlyPayPreview, 0, ForecastMonths)
	cursor := rota.StartOfMonth(in.Now.Year(), in.Now.Month())

	for i := 0; i < ForecastMonths; i++ {
		year, month := cursor.Year(), cursor.Month()
		preview := MonthlyPayPreview{
			SubjectID: f.Profile.SubjectID,
			Year:      year,
			Month:     month,
			Base:      base,
			DailyRate: dailyRate,
		}

		preview.HolidayShiftDates = f.holidayShiftDates(in.Instances, year, month)
		preview.HolidayBonus = dailyRate.
			Mul(holidayRate).
			Mul(decimal.NewFromInt(int64(len(preview.HolidayShiftDates))))

		preview.OvertimeDays = f.overtimeDayCount(in, year, month)
		preview.OvertimePay = dailyRate.
			Mul(overtimeRate).
			Mul(decimal.NewFromInt(int64(preview.OvertimeDays)))

		preview.Bonuses = f.bonusTotal(in, year, month)
		preview.Deductions = f.deductionTotal(in, year, month)

		if month == f.leaveYearStart() {
			payout, deduction := f.settleLeaveYear(in, year)
			preview.UnusedLeavePayout = payout
			preview.ExcessLeaveDeduction = deduction
		} else {
			preview.UnusedLeavePayout = decimal.Zero
			preview.ExcessLeaveDeduction = decimal.Zero
		}

		preview.Total = base.
			Add(preview.Bonuses).
			Add(preview.OvertimePay).
			Add(preview.HolidayBonus).
			Add(preview.UnusedLeavePayout).
			Sub(preview.Deductions).
			Sub(preview.ExcessLeaveDeduction)

		preview.Status = f.status(in, year, month)

		previews = append(previews, preview)
		cursor = cursor.AddMonths(1)
	}

	return previews
}

func (f *Forecaster) leaveYearStart() time.Month {
	if f.LeaveYearStartMonth == 0 {
		return time.April
	}
	return f.LeaveYearStartMonth
}

func (f *Forecaster) cutoffDay() int {
	if f.CutoffDay > 0 {
		return f.CutoffDay
	}
	return DefaultCutoffDay
}

// holidayShiftDates collects the distinct dates in the month where the
// subject has an unsuppressed shift on a public holiday.
func (f *Forecaster) holidayShiftDates(instances []rota.ResolvedInstance, year int, month time.Month) []rota.TimePoint {
	if f.Calendar == nil {
		return nil
	}
	seen := make(map[string]bool)
	var dates []rota.TimePoint
	for _, ri := range instances {
		if ri.SubjectID != f.Profile.SubjectID || ri.Suppressed {
			continue
		}
		day := ri.Day()
		if day.Year() != year || day.Month() != month {
			continue
		}
		if _, ok := f.Calendar.HolidayName(day); !ok {
			continue
		}
		if seen[day.String()] {
			continue
		}
		seen[day.String()] = true
		dates = append(dates, day)
	}
	return dates
}

// overtimeDayCount unions approved overtime-request spans (clipped to
// the month) with overtime-flagged pattern occurrence dates.
func (f *Forecaster) overtimeDayCount(in Input, year int, month time.Month) int {
	monthWindow := rota.Window{
		From: rota.StartOfMonth(year, month),
		To:   rota.EndOfMonth(year, month),
	}

	days := make(map[string]bool)

	for _, req := range in.Overtime {
		if req.Kind != rota.KindOvertime || req.Status != rota.RequestApproved {
			continue
		}
		if req.SubjectID != f.Profile.SubjectID {
			continue
		}
		span, ok := monthWindow.Clip(rota.Window{From: req.From, To: req.To})
		if !ok {
			continue
		}
		for _, day := range span.Days() {
			days[day.String()] = true
		}
	}

	for _, ri := range in.Instances {
		if ri.SubjectID != f.Profile.SubjectID || !ri.Overtime {
			continue
		}
		if ri.Origin != rota.OriginPattern {
			continue
		}
		day := ri.Day()
		if monthWindow.Contains(day) {
			days[day.String()] = true
		}
	}

	return len(days)
}

func (f *Forecaster) bonusTotal(in Input, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, b := range in.Bonuses {
		if b.SubjectID != f.Profile.SubjectID {
			continue
		}
		if b.AppliesTo(year, month) {
			total = total.Add(b.Amount)
		}
	}
	for _, e := range in.Ledger {
		if e.SubjectID != f.Profile.SubjectID || e.Kind != LedgerBonus {
			continue
		}
		if e.Year == year && e.Month == month {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (f *Forecaster) deductionTotal(in Input, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, e := range in.Ledger {
		if e.SubjectID != f.Profile.SubjectID || e.Kind != LedgerDeduction {
			continue
		}
		if e.Year == year && e.Month == month {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// settleLeaveYear computes the unused-leave payout or excess-leave
// deduction for the leave year ending just before the rollover month in
// the given year.
func (f *Forecaster) settleLeaveYear(in Input, rolloverYear int) (payout, deduction decimal.Decimal) {
	yearStart := rota.NewTimePoint(rolloverYear-1, f.leaveYearStart(), 1)
	yearEnd := rota.NewTimePoint(rolloverYear, f.leaveYearStart(), 1).AddDays(-1)

	accrued := f.accruedAllowance(yearStart, yearEnd)

	consumed := 0
	for _, l := range in.Leave {
		if l.SubjectID != f.Profile.SubjectID || l.Status != rota.LeaveApproved {
			continue
		}
		if l.From.AfterOrEqual(yearStart) && l.From.BeforeOrEqual(yearEnd) {
			consumed += l.DaysCharged
		}
	}

	remaining := accrued.Sub(decimal.NewFromInt(int64(consumed)))
	value := remaining.Abs().Mul(f.Profile.DailyRate())
	if remaining.IsNegative() {
		return decimal.Zero, value
	}
	return value, decimal.Zero
}

// accruedAllowance pro-rates the annual allowance by full months of
// tenure within the leave year. A full year of tenure accrues the full
// allowance.
func (f *Forecaster) accruedAllowance(yearStart, yearEnd rota.TimePoint) decimal.Decimal {
	allowance := decimal.NewFromInt(int64(f.Profile.AnnualLeaveAllowance))

	tenure := f.Profile.TenureStart
	if tenure.IsZero() || tenure.BeforeOrEqual(yearStart) {
		return allowance
	}
	if tenure.After(yearEnd) {
		return decimal.Zero
	}

	months := (yearEnd.Year()-tenure.Year())*12 + int(yearEnd.Month()) - int(tenure.Month()) + 1
	if months > 12 {
		months = 12
	}
	if months < 0 {
		months = 0
	}
	return allowance.Mul(decimal.NewFromInt(int64(months))).Div(monthsPerYear)
}

// status derives the preview status from the ledger and the clock.
func (f *Forecaster) status(in Input, year int, month time.Month) PreviewStatus {
	for _, e := range in.Ledger {
		if e.SubjectID != f.Profile.SubjectID || e.Kind != LedgerSalary {
			continue
		}
		if e.Year == year && e.Month == month {
			return StatusPaid
		}
	}

	today := rota.DayOf(in.Now)
	monthEnd := rota.EndOfMonth(year, month)
	if monthEnd.Before(today) {
		return StatusReady
	}
	if year == today.Year() && month == today.Month() && today.Day() >= f.cutoffDay() {
		return StatusReady
	}
	return StatusPending
}
