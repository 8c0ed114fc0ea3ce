package payroll

import (
	"context"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// PAY STORE - Compensation configuration and pay history
// =============================================================================

// Store provides the compensation records a forecast reads. Implemented
// alongside rota.RecordStore by the storage backends.
type Store interface {
	// GetCompensationProfile returns nil, nil when the subject has no
	// profile; the forecaster then yields an empty projection.
	GetCompensationProfile(ctx context.Context, subject rota.SubjectID) (*CompensationProfile, error)
	SaveCompensationProfile(ctx context.Context, p CompensationProfile) error

	ListBonuses(ctx context.Context, subject rota.SubjectID) ([]BonusRecord, error)
	SaveBonus(ctx context.Context, b BonusRecord) error

	ListPayLedger(ctx context.Context, subject rota.SubjectID) ([]PayLedgerEntry, error)
	SaveLedgerEntry(ctx context.Context, e PayLedgerEntry) error

	// Holidays returns the public-holiday lookup, keyed by date.
	Holidays(ctx context.Context) (MapCalendar, error)
	SaveHoliday(ctx context.Context, date rota.TimePoint, name string) error
}
