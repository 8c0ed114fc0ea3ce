/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements rota.RecordStore and payroll.Store using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  patterns:              Recurring rotation rules
  pattern_exceptions:    Deleted single occurrences (unique per pattern+date)
  manual_instances:      Hand-entered shift instances
  leave_records:         Absence records with status
  exception_requests:    Overtime / leave / shift-cover requests
  compensation_profiles: Base salary and leave allowance per subject
  bonus_records:         Recurring and one-off extra pay
  pay_ledger:            Processed pay and adjustments
  holidays:              Public-holiday calendar

STATUS TRANSITIONS:
  Request and leave statuses are monotonic. TransitionRequest moves
  pending to a terminal status inside one SQL transaction; approving or
  rejecting anything not pending fails with rota.ErrRequestNotPending.
  ReassignManualShifts is guarded by the cover_applied column so the
  shift-cover side effect applies exactly once.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rota.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rota/store.go: RecordStore interface definition
  - payroll/store.go: Pay store interface definition
  - rota/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/payroll"
	"github.com/warp/rota-engine/rota"
)

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339
)

// Store implements rota.RecordStore and payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ rota.RecordStore = (*Store)(nil)
	_ payroll.Store    = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Recurring rotation rules
	CREATE TABLE IF NOT EXISTS patterns (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		weekdays_json TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		interval TEXT NOT NULL,
		overtime INTEGER NOT NULL DEFAULT 0,
		label TEXT,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_patterns_subject
		ON patterns(subject_id);
	CREATE INDEX IF NOT EXISTS idx_patterns_dates
		ON patterns(start_date, end_date);

	-- Deleted single occurrences
	CREATE TABLE IF NOT EXISTS pattern_exceptions (
		pattern_id TEXT NOT NULL,
		date TEXT NOT NULL,
		PRIMARY KEY (pattern_id, date)
	);

	-- Hand-entered shift instances
	CREATE TABLE IF NOT EXISTS manual_instances (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_manual_subject_start
		ON manual_instances(subject_id, start_at);

	-- Absence records
	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		leave_type TEXT,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		status TEXT NOT NULL,
		days_charged INTEGER NOT NULL DEFAULT 0,
		no_cover_required INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_leave_subject_dates
		ON leave_records(subject_id, from_date, to_date);

	-- Overtime / leave / shift-cover requests
	CREATE TABLE IF NOT EXISTS exception_requests (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		covered_subject_id TEXT,
		linked_leave_id TEXT,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		status TEXT NOT NULL,
		cover_applied INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_requests_status_dates
		ON exception_requests(status, from_date, to_date);

	-- Compensation
	CREATE TABLE IF NOT EXISTS compensation_profiles (
		subject_id TEXT PRIMARY KEY,
		base_salary TEXT NOT NULL,
		frequency TEXT NOT NULL,
		annual_leave_allowance INTEGER NOT NULL DEFAULT 0,
		tenure_start TEXT
	);

	CREATE TABLE IF NOT EXISTS bonus_records (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		label TEXT,
		recurring INTEGER NOT NULL DEFAULT 0,
		from_date TEXT,
		to_date TEXT,
		one_off_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_bonus_subject
		ON bonus_records(subject_id);

	CREATE TABLE IF NOT EXISTS pay_ledger (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		label TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_subject_month
		ON pay_ledger(subject_id, year, month);

	-- Public-holiday calendar
	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PATTERNS
// =============================================================================

func (s *Store) SavePattern(ctx context.Context, p rota.RecurrencePattern) error {
	if err := p.Validate(); err != nil {
		return err
	}

	weekdays := make([]int, len(p.Weekdays))
	for i, wd := range p.Weekdays {
		weekdays[i] = int(wd)
	}
	weekdaysJSON, err := json.Marshal(weekdays)
	if err != nil {
		return err
	}

	var endDate any
	if p.EndDate != nil {
		endDate = p.EndDate.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO patterns
			(id, subject_id, client_id, weekdays_json, start_minute, end_minute,
			 start_date, end_date, interval, overtime, label, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			client_id = excluded.client_id,
			weekdays_json = excluded.weekdays_json,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			interval = excluded.interval,
			overtime = excluded.overtime,
			label = excluded.label,
			notes = excluded.notes`,
		string(p.ID), string(p.SubjectID), string(p.ClientID), string(weekdaysJSON),
		int(p.StartTime), int(p.EndTime), p.StartDate.String(), endDate,
		string(p.Interval), boolInt(p.Overtime), p.Label, p.Notes)
	return err
}

func (s *Store) DeletePattern(ctx context.Context, id rota.PatternID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, string(id)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pattern_exceptions WHERE pattern_id = ?`, string(id)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListPatterns(ctx context.Context, window rota.Window) ([]rota.RecurrencePattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A pattern qualifies when its validity range touches the window.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, client_id, weekdays_json, start_minute, end_minute,
		       start_date, end_date, interval, overtime, label, notes
		FROM patterns
		WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY id`,
		window.To.String(), window.From.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rota.RecurrencePattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPattern(rows *sql.Rows) (rota.RecurrencePattern, error) {
	var (
		p                              rota.RecurrencePattern
		id, subject, client, interval  string
		weekdaysJSON, startDate        string
		endDate, label, notes          sql.NullString
		startMinute, endMinute, overtime int
	)
	err := rows.Scan(&id, &subject, &client, &weekdaysJSON, &startMinute, &endMinute,
		&startDate, &endDate, &interval, &overtime, &label, &notes)
	if err != nil {
		return p, err
	}

	var weekdayInts []int
	if err := json.Unmarshal([]byte(weekdaysJSON), &weekdayInts); err != nil {
		return p, fmt.Errorf("pattern %s: bad weekdays: %w", id, err)
	}
	weekdays := make([]time.Weekday, len(weekdayInts))
	for i, wd := range weekdayInts {
		weekdays[i] = time.Weekday(wd)
	}

	start, err := parseDate(startDate)
	if err != nil {
		return p, err
	}

	p = rota.RecurrencePattern{
		ID:        rota.PatternID(id),
		SubjectID: rota.SubjectID(subject),
		ClientID:  rota.ClientID(client),
		Weekdays:  weekdays,
		StartTime: rota.MinuteOfDay(startMinute),
		EndTime:   rota.MinuteOfDay(endMinute),
		StartDate: start,
		Interval:  rota.RecurrenceInterval(interval),
		Overtime:  overtime != 0,
		Label:     label.String,
		Notes:     notes.String,
	}
	if endDate.Valid {
		ed, err := parseDate(endDate.String)
		if err != nil {
			return p, err
		}
		p.EndDate = &ed
	}
	return p, nil
}

// =============================================================================
// PATTERN EXCEPTIONS
// =============================================================================

func (s *Store) SaveException(ctx context.Context, ex rota.PatternException) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// (pattern, date) is unique; saving twice is a no-op.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pattern_exceptions (pattern_id, date) VALUES (?, ?)
		ON CONFLICT(pattern_id, date) DO NOTHING`,
		string(ex.PatternID), ex.Date.String())
	return err
}

func (s *Store) ListExceptions(ctx context.Context) ([]rota.PatternException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_id, date FROM pattern_exceptions ORDER BY pattern_id, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rota.PatternException
	for rows.Next() {
		var patternID, date string
		if err := rows.Scan(&patternID, &date); err != nil {
			return nil, err
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		out = append(out, rota.PatternException{PatternID: rota.PatternID(patternID), Date: d})
	}
	return out, rows.Err()
}

// =============================================================================
// MANUAL INSTANCES
// =============================================================================

func (s *Store) SaveManualInstance(ctx context.Context, inst rota.ManualShiftInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manual_instances (id, subject_id, client_id, start_at, end_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			client_id = excluded.client_id,
			start_at = excluded.start_at,
			end_at = excluded.end_at`,
		string(inst.ID), string(inst.SubjectID), string(inst.ClientID),
		inst.Start.Format(tsLayout), inst.End.Format(tsLayout))
	return err
}

func (s *Store) ListManualInstances(ctx context.Context, window rota.Window) ([]rota.ManualShiftInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, client_id, start_at, end_at
		FROM manual_instances
		WHERE DATE(start_at) >= ? AND DATE(start_at) <= ?
		ORDER BY id`,
		window.From.String(), window.To.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rota.ManualShiftInstance
	for rows.Next() {
		var id, subject, client, startAt, endAt string
		if err := rows.Scan(&id, &subject, &client, &startAt, &endAt); err != nil {
			return nil, err
		}
		start, err := time.Parse(tsLayout, startAt)
		if err != nil {
			return nil, err
		}
		end, err := time.Parse(tsLayout, endAt)
		if err != nil {
			return nil, err
		}
		out = append(out, rota.ManualShiftInstance{
			ID:        rota.InstanceID(id),
			SubjectID: rota.SubjectID(subject),
			ClientID:  rota.ClientID(client),
			Start:     start,
			End:       end,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func (s *Store) SaveLeave(ctx context.Context, l rota.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Monotonic: a terminal status never moves again.
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM leave_records WHERE id = ?`, string(l.ID)).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return err
	default:
		if existing != string(rota.LeavePending) && existing != string(l.Status) {
			return rota.ErrRequestNotPending
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leave_records
			(id, subject_id, leave_type, from_date, to_date, status, days_charged, no_cover_required)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			leave_type = excluded.leave_type,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			status = excluded.status,
			days_charged = excluded.days_charged,
			no_cover_required = excluded.no_cover_required`,
		string(l.ID), string(l.SubjectID), l.Type, l.From.String(), l.To.String(),
		string(l.Status), l.DaysCharged, boolInt(l.NoCoverRequired))
	return err
}

func (s *Store) ListLeave(ctx context.Context, window rota.Window, statuses ...rota.LeaveStatus) ([]rota.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, subject_id, leave_type, from_date, to_date, status, days_charged, no_cover_required
		FROM leave_records
		WHERE to_date >= ? AND from_date <= ?`
	args := []any{window.From.String(), window.To.String()}
	query, args = appendStatusFilter(query, args, leaveStatusStrings(statuses))
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rota.LeaveRecord
	for rows.Next() {
		var (
			id, subject, status, fromDate, toDate string
			leaveType                             sql.NullString
			daysCharged, noCover                  int
		)
		if err := rows.Scan(&id, &subject, &leaveType, &fromDate, &toDate, &status, &daysCharged, &noCover); err != nil {
			return nil, err
		}
		from, err := parseDate(fromDate)
		if err != nil {
			return nil, err
		}
		to, err := parseDate(toDate)
		if err != nil {
			return nil, err
		}
		out = append(out, rota.LeaveRecord{
			ID:              rota.LeaveID(id),
			SubjectID:       rota.SubjectID(subject),
			Type:            leaveType.String,
			From:            from,
			To:              to,
			Status:          rota.LeaveStatus(status),
			DaysCharged:     daysCharged,
			NoCoverRequired: noCover != 0,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// EXCEPTION REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, r rota.ExceptionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exception_requests
			(id, subject_id, kind, covered_subject_id, linked_leave_id,
			 from_date, to_date, status, cover_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			kind = excluded.kind,
			covered_subject_id = excluded.covered_subject_id,
			linked_leave_id = excluded.linked_leave_id,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			status = excluded.status,
			cover_applied = excluded.cover_applied`,
		string(r.ID), string(r.SubjectID), string(r.Kind),
		string(r.CoveredSubjectID), string(r.LinkedLeaveID),
		r.From.String(), r.To.String(), string(r.Status), boolInt(r.CoverApplied))
	return err
}

func (s *Store) GetRequest(ctx context.Context, id rota.RequestID) (*rota.ExceptionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRequest(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getRequest(ctx context.Context, q querier, id rota.RequestID) (*rota.ExceptionRequest, error) {
	var (
		subject, kind, status, fromDate, toDate string
		covered, linked                         sql.NullString
		coverApplied                            int
	)
	err := q.QueryRowContext(ctx, `
		SELECT subject_id, kind, covered_subject_id, linked_leave_id,
		       from_date, to_date, status, cover_applied
		FROM exception_requests WHERE id = ?`, string(id)).
		Scan(&subject, &kind, &covered, &linked, &fromDate, &toDate, &status, &coverApplied)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	from, err := parseDate(fromDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(toDate)
	if err != nil {
		return nil, err
	}
	return &rota.ExceptionRequest{
		ID:               id,
		SubjectID:        rota.SubjectID(subject),
		Kind:             rota.RequestKind(kind),
		CoveredSubjectID: rota.SubjectID(covered.String),
		LinkedLeaveID:    rota.LeaveID(linked.String),
		From:             from,
		To:               to,
		Status:           rota.RequestStatus(status),
		CoverApplied:     coverApplied != 0,
	}, nil
}

func (s *Store) ListRequests(ctx context.Context, window rota.Window, statuses ...rota.RequestStatus) ([]rota.ExceptionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, subject_id, kind, covered_subject_id, linked_leave_id,
		       from_date, to_date, status, cover_applied
		FROM exception_requests
		WHERE to_date >= ? AND from_date <= ?`
	args := []any{window.From.String(), window.To.String()}
	query, args = appendStatusFilter(query, args, requestStatusStrings(statuses))
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rota.ExceptionRequest
	for rows.Next() {
		var (
			id, subject, kind, status, fromDate, toDate string
			covered, linked                             sql.NullString
			coverApplied                                int
		)
		if err := rows.Scan(&id, &subject, &kind, &covered, &linked, &fromDate, &toDate, &status, &coverApplied); err != nil {
			return nil, err
		}
		from, err := parseDate(fromDate)
		if err != nil {
			return nil, err
		}
		to, err := parseDate(toDate)
		if err != nil {
			return nil, err
		}
		out = append(out, rota.ExceptionRequest{
			ID:               rota.RequestID(id),
			SubjectID:        rota.SubjectID(subject),
			Kind:             rota.RequestKind(kind),
			CoveredSubjectID: rota.SubjectID(covered.String),
			LinkedLeaveID:    rota.LeaveID(linked.String),
			From:             from,
			To:               to,
			Status:           rota.RequestStatus(status),
			CoverApplied:     coverApplied != 0,
		})
	}
	return out, rows.Err()
}

// TransitionRequest moves a pending request to a terminal status. The
// status guard lives in the UPDATE's WHERE clause so the check and the
// write are one atomic statement.
func (s *Store) TransitionRequest(ctx context.Context, id rota.RequestID, to rota.RequestStatus) (*rota.ExceptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE exception_requests SET status = ?
		WHERE id = ? AND status = ?`,
		string(to), string(id), string(rota.RequestPending))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, rota.ErrRequestNotPending
	}

	return s.getRequest(ctx, s.db, id)
}

// ReassignManualShifts applies the one-time shift-cover side effect
// inside a single SQL transaction.
func (s *Store) ReassignManualShifts(ctx context.Context, requestID rota.RequestID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	req, err := s.getRequest(ctx, tx, requestID)
	if err != nil {
		return 0, err
	}
	if req == nil {
		return 0, rota.ErrRequestNotPending
	}
	if req.CoverApplied {
		return 0, rota.ErrReassignmentReplayed
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE manual_instances SET subject_id = ?
		WHERE subject_id = ? AND DATE(start_at) >= ? AND DATE(start_at) <= ?`,
		string(req.SubjectID), string(req.CoveredSubjectID),
		req.From.String(), req.To.String())
	if err != nil {
		return 0, err
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE exception_requests SET cover_applied = 1 WHERE id = ?`,
		string(requestID)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(moved), nil
}

// =============================================================================
// COMPENSATION PROFILES
// =============================================================================

func (s *Store) GetCompensationProfile(ctx context.Context, subject rota.SubjectID) (*payroll.CompensationProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		salary, frequency string
		allowance         int
		tenure            sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT base_salary, frequency, annual_leave_allowance, tenure_start
		FROM compensation_profiles WHERE subject_id = ?`, string(subject)).
		Scan(&salary, &frequency, &allowance, &tenure)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(salary)
	if err != nil {
		return nil, fmt.Errorf("profile %s: bad salary: %w", subject, err)
	}

	profile := payroll.CompensationProfile{
		SubjectID:            subject,
		BaseSalary:           amount,
		Frequency:            payroll.PayFrequency(frequency),
		AnnualLeaveAllowance: allowance,
	}
	if tenure.Valid {
		ts, err := parseDate(tenure.String)
		if err != nil {
			return nil, err
		}
		profile.TenureStart = ts
	}
	return &profile, nil
}

func (s *Store) SaveCompensationProfile(ctx context.Context, p payroll.CompensationProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tenure any
	if !p.TenureStart.IsZero() {
		tenure = p.TenureStart.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compensation_profiles
			(subject_id, base_salary, frequency, annual_leave_allowance, tenure_start)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			base_salary = excluded.base_salary,
			frequency = excluded.frequency,
			annual_leave_allowance = excluded.annual_leave_allowance,
			tenure_start = excluded.tenure_start`,
		string(p.SubjectID), p.BaseSalary.String(), string(p.Frequency),
		p.AnnualLeaveAllowance, tenure)
	return err
}

// =============================================================================
// BONUSES AND LEDGER
// =============================================================================

func (s *Store) SaveBonus(ctx context.Context, b payroll.BonusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fromDate, toDate, oneOff any
	if b.Recurring {
		fromDate = b.From.String()
		if b.To != nil {
			toDate = b.To.String()
		}
	} else {
		oneOff = b.Date.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bonus_records
			(id, subject_id, amount, label, recurring, from_date, to_date, one_off_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			amount = excluded.amount,
			label = excluded.label,
			recurring = excluded.recurring,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			one_off_date = excluded.one_off_date`,
		b.ID, string(b.SubjectID), b.Amount.String(), b.Label,
		boolInt(b.Recurring), fromDate, toDate, oneOff)
	return err
}

func (s *Store) ListBonuses(ctx context.Context, subject rota.SubjectID) ([]payroll.BonusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, label, recurring, from_date, to_date, one_off_date
		FROM bonus_records WHERE subject_id = ? ORDER BY id`, string(subject))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.BonusRecord
	for rows.Next() {
		var (
			id, amount              string
			label                   sql.NullString
			recurring               int
			fromDate, toDate, oneOff sql.NullString
		)
		if err := rows.Scan(&id, &amount, &label, &recurring, &fromDate, &toDate, &oneOff); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bonus %s: bad amount: %w", id, err)
		}

		b := payroll.BonusRecord{
			ID:        id,
			SubjectID: subject,
			Amount:    value,
			Label:     label.String,
			Recurring: recurring != 0,
		}
		if fromDate.Valid {
			if b.From, err = parseDate(fromDate.String); err != nil {
				return nil, err
			}
		}
		if toDate.Valid {
			to, err := parseDate(toDate.String)
			if err != nil {
				return nil, err
			}
			b.To = &to
		}
		if oneOff.Valid {
			if b.Date, err = parseDate(oneOff.String); err != nil {
				return nil, err
			}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SaveLedgerEntry(ctx context.Context, e payroll.PayLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_ledger (id, subject_id, kind, amount, year, month, label)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			kind = excluded.kind,
			amount = excluded.amount,
			year = excluded.year,
			month = excluded.month,
			label = excluded.label`,
		e.ID, string(e.SubjectID), string(e.Kind), e.Amount.String(),
		e.Year, int(e.Month), e.Label)
	return err
}

func (s *Store) ListPayLedger(ctx context.Context, subject rota.SubjectID) ([]payroll.PayLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, amount, year, month, label
		FROM pay_ledger WHERE subject_id = ? ORDER BY year, month, id`, string(subject))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.PayLedgerEntry
	for rows.Next() {
		var (
			id, kind, amount string
			year, month      int
			label            sql.NullString
		)
		if err := rows.Scan(&id, &kind, &amount, &year, &month, &label); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("ledger %s: bad amount: %w", id, err)
		}
		out = append(out, payroll.PayLedgerEntry{
			ID:        id,
			SubjectID: subject,
			Kind:      payroll.LedgerKind(kind),
			Amount:    value,
			Year:      year,
			Month:     time.Month(month),
			Label:     label.String,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, date rota.TimePoint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (date, name) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		date.String(), name)
	return err
}

func (s *Store) Holidays(ctx context.Context) (payroll.MapCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT date, name FROM holidays`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cal := make(payroll.MapCalendar)
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		cal[date] = name
	}
	return cal, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s string) (rota.TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return rota.TimePoint{}, err
	}
	return rota.DayOf(t), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func appendStatusFilter(query string, args []any, statuses []string) (string, []any) {
	if len(statuses) == 0 {
		return query, args
	}
	query += ` AND status IN (`
	for i, s := range statuses {
		if i > 0 {
			query += `, `
		}
		query += `?`
		args = append(args, s)
	}
	query += `)`
	return query, args
}

func leaveStatusStrings(statuses []rota.LeaveStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func requestStatusStrings(statuses []rota.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
