package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/rota-engine/payroll"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// MEMORY PAY STORE
// =============================================================================

// MemoryPay is the in-memory payroll.Store counterpart to Memory.
type MemoryPay struct {
	mu       sync.RWMutex
	profiles map[rota.SubjectID]payroll.CompensationProfile
	bonuses  map[string]payroll.BonusRecord
	ledger   map[string]payroll.PayLedgerEntry
	holidays map[string]string
}

func NewMemoryPay() *MemoryPay {
	return &MemoryPay{
		profiles: make(map[rota.SubjectID]payroll.CompensationProfile),
		bonuses:  make(map[string]payroll.BonusRecord),
		ledger:   make(map[string]payroll.PayLedgerEntry),
		holidays: make(map[string]string),
	}
}

var _ payroll.Store = (*MemoryPay)(nil)

func (m *MemoryPay) GetCompensationProfile(_ context.Context, subject rota.SubjectID) (*payroll.CompensationProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[subject]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryPay) SaveCompensationProfile(_ context.Context, p payroll.CompensationProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.SubjectID] = p
	return nil
}

func (m *MemoryPay) ListBonuses(_ context.Context, subject rota.SubjectID) ([]payroll.BonusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.BonusRecord
	for _, b := range m.bonuses {
		if b.SubjectID == subject {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryPay) SaveBonus(_ context.Context, b payroll.BonusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonuses[b.ID] = b
	return nil
}

func (m *MemoryPay) ListPayLedger(_ context.Context, subject rota.SubjectID) ([]payroll.PayLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.PayLedgerEntry
	for _, e := range m.ledger {
		if e.SubjectID == subject {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryPay) SaveLedgerEntry(_ context.Context, e payroll.PayLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger[e.ID] = e
	return nil
}

func (m *MemoryPay) Holidays(_ context.Context) (payroll.MapCalendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cal := make(payroll.MapCalendar, len(m.holidays))
	for k, v := range m.holidays {
		cal[k] = v
	}
	return cal, nil
}

func (m *MemoryPay) SaveHoliday(_ context.Context, date rota.TimePoint, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[date.String()] = name
	return nil
}
