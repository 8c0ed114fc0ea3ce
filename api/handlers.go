/*
handlers.go - HTTP API handlers for the rota resolution engine

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Schedule:
    GET    /api/schedule               Resolve a window (from/to query params)

  Patterns:
    GET    /api/patterns               List rotation patterns
    POST   /api/patterns               Create one pattern
    POST   /api/patterns/import        Import a JSON roster definition
    DELETE /api/patterns/{id}          Delete a pattern
    POST   /api/patterns/{id}/exceptions  Delete one occurrence

  Instances:
    POST   /api/instances              Create a manual shift instance

  Leave:
    GET    /api/leave                  List leave in a window
    POST   /api/leave                  Submit leave (pending)

  Requests:
    GET    /api/requests/pending       List pending exception requests
    POST   /api/requests               Submit an exception request
    POST   /api/requests/{id}/approve  Approve (side effects below)
    POST   /api/requests/{id}/reject   Reject

  Pay:
    POST   /api/subjects/{id}/profile  Upsert compensation profile
    GET    /api/subjects/{id}/pay-preview  12-month pay projection
    POST   /api/holidays               Register a public holiday

APPROVAL SIDE EFFECTS:
  Approving a leave-kind request materializes an approved LeaveRecord.
  Approving a shift-cover request reassigns the covered subject's manual
  instances in the request range to the covering subject, exactly once;
  replays fail with 409.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (resolve, pack, forecast)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (non-pending transition, replayed reassignment)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/payroll"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    rota.RecordStore
	Pay      payroll.Store
	Patterns *factory.PatternFactory

	// Now supplies the clock for resolution and forecasting. Injectable
	// so tests can pin it; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler with the given stores.
func NewHandler(store rota.RecordStore, pay payroll.Store) *Handler {
	return &Handler{
		Store:    store,
		Pay:      pay,
		Patterns: factory.NewPatternFactory(),
		Now:      time.Now,
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule resolves the requested window and returns the packed
// timeline. Optional subject_id / client_id query params filter the
// output after resolution.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}

	snapshot, err := rota.LoadSnapshot(r.Context(), h.Store, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	result := rota.Resolve(snapshot, window, h.Now())

	all := result.All()
	if subject := r.URL.Query().Get("subject_id"); subject != "" {
		all = result.ForSubject(rota.SubjectID(subject))
	} else if client := r.URL.Query().Get("client_id"); client != "" {
		all = result.ForClient(rota.ClientID(client))
	}

	assignments, rowCount := rota.PackRows(all)

	// Cover rows carry the request id as SourceID; map it back to the
	// covered party for the response.
	coveredBy := make(map[string]rota.SubjectID, len(result.Covers))
	for _, c := range result.Covers {
		coveredBy[string(c.RequestID)] = c.CoveredSubjectID
	}

	dtos := make([]InstanceDTO, len(all))
	for i, ri := range all {
		dtos[i] = toInstanceDTO(ri)
		if ri.Origin == rota.OriginCover {
			dtos[i].CoveredSubjectID = string(coveredBy[ri.SourceID])
			dtos[i].RequestID = ri.SourceID
		}
	}
	for _, a := range assignments {
		dtos[a.Index].Row = a.Row
	}

	dto := ScheduleDTO{
		From:      window.From.String(),
		To:        window.To.String(),
		Instances: dtos,
		RowCount:  rowCount,
	}
	for _, p := range result.Problems {
		dto.Problems = append(dto.Problems, p.Error())
	}

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PATTERN HANDLERS
// =============================================================================

// ListPatterns returns the patterns overlapping the requested window,
// or all patterns when no window is given.
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	window := rota.Window{
		From: rota.NewTimePoint(1, time.January, 1),
		To:   rota.NewTimePoint(9999, time.December, 31),
	}
	if r.URL.Query().Get("from") != "" {
		var err error
		window, err = windowFromQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid window", err)
			return
		}
	}

	patterns, err := h.Store.ListPatterns(r.Context(), window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list patterns", err)
		return
	}

	dtos := make([]PatternDTO, len(patterns))
	for i, p := range patterns {
		dtos[i] = toPatternDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePattern creates one rotation pattern from its JSON definition.
func (h *Handler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	var pj factory.PatternJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if pj.ID == "" {
		pj.ID = "rot-" + uuid.NewString()
	}

	pattern, err := h.Patterns.ParsePattern(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}

	if err := h.Store.SavePattern(r.Context(), pattern); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save pattern", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatternDTO(pattern))
}

// ImportRoster bulk-imports a roster definition. All-or-nothing: one
// invalid pattern rejects the whole roster.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	patterns, err := h.Patterns.ParseRoster(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid roster", err)
		return
	}

	for _, p := range patterns {
		if err := h.Store.SavePattern(r.Context(), p); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save pattern", err)
			return
		}
	}

	dtos := make([]PatternDTO, len(patterns))
	for i, p := range patterns {
		dtos[i] = toPatternDTO(p)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// DeletePattern removes a pattern entirely.
func (h *Handler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	id := rota.PatternID(chi.URLParam(r, "id"))
	if err := h.Store.DeletePattern(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete pattern", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateException deletes a single occurrence of a pattern.
func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	patternID := rota.PatternID(chi.URLParam(r, "id"))

	var req CreateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := factory.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	ex := rota.PatternException{PatternID: patternID, Date: date}
	if err := h.Store.SaveException(r.Context(), ex); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save exception", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"pattern_id": string(patternID),
		"date":       date.String(),
	})
}

// =============================================================================
// INSTANCE HANDLERS
// =============================================================================

// CreateInstance creates a manual shift instance.
func (h *Handler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var req CreateInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SubjectID == "" || req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "subject_id and client_id are required", nil)
		return
	}

	day, err := factory.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time format (use HH:MM)", err)
		return
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time format (use HH:MM)", err)
		return
	}
	if start >= end {
		writeError(w, http.StatusBadRequest, "start_time must precede end_time", nil)
		return
	}

	id := req.ID
	if id == "" {
		id = "inst-" + uuid.NewString()
	}

	inst := rota.ManualShiftInstance{
		ID:        rota.InstanceID(id),
		SubjectID: rota.SubjectID(req.SubjectID),
		ClientID:  rota.ClientID(req.ClientID),
		Start:     day.At(start),
		End:       day.At(end),
	}
	if err := h.Store.SaveManualInstance(r.Context(), inst); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save instance", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeave returns leave records in a window.
func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}

	leave, err := h.Store.ListLeave(r.Context(), window,
		rota.LeavePending, rota.LeaveApproved, rota.LeaveRejected)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave", err)
		return
	}

	dtos := make([]LeaveDTO, len(leave))
	for i, l := range leave {
		dtos[i] = toLeaveDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeave records a pending leave request.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SubjectID == "" {
		writeError(w, http.StatusBadRequest, "subject_id is required", nil)
		return
	}

	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	id := req.ID
	if id == "" {
		id = "lv-" + uuid.NewString()
	}
	daysCharged := req.DaysCharged
	if daysCharged == 0 {
		daysCharged = rota.DaysBetween(from, to) + 1
	}

	leave := rota.LeaveRecord{
		ID:              rota.LeaveID(id),
		SubjectID:       rota.SubjectID(req.SubjectID),
		Type:            req.Type,
		From:            from,
		To:              to,
		Status:          rota.LeavePending,
		DaysCharged:     daysCharged,
		NoCoverRequired: req.NoCoverRequired,
	}
	if err := h.Store.SaveLeave(r.Context(), leave); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(leave))
}

// =============================================================================
// EXCEPTION REQUEST HANDLERS
// =============================================================================

// ListPendingRequests returns pending exception requests in a window.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}

	requests, err := h.Store.ListRequests(r.Context(), window, rota.RequestPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitRequest records a pending exception request.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.SubjectID == "" {
		writeError(w, http.StatusBadRequest, "subject_id is required", nil)
		return
	}

	kind := rota.RequestKind(body.Kind)
	switch kind {
	case rota.KindOvertime, rota.KindLeave, rota.KindShiftCover:
	default:
		writeError(w, http.StatusBadRequest, "Unknown request kind", nil)
		return
	}
	if kind == rota.KindShiftCover && body.CoveredSubjectID == "" {
		writeError(w, http.StatusBadRequest, "shift_cover requires covered_subject_id", nil)
		return
	}

	from, to, err := parseDateRange(body.From, body.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	id := body.ID
	if id == "" {
		id = "req-" + uuid.NewString()
	}

	req := rota.ExceptionRequest{
		ID:               rota.RequestID(id),
		SubjectID:        rota.SubjectID(body.SubjectID),
		Kind:             kind,
		CoveredSubjectID: rota.SubjectID(body.CoveredSubjectID),
		LinkedLeaveID:    rota.LeaveID(body.LinkedLeaveID),
		From:             from,
		To:               to,
		Status:           rota.RequestPending,
	}
	if err := h.Store.SaveRequest(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ApproveRequest moves a pending request to approved and runs the
// kind-specific side effects.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := rota.RequestID(chi.URLParam(r, "id"))
	ctx := r.Context()

	req, err := h.Store.TransitionRequest(ctx, id, rota.RequestApproved)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	dto := toRequestDTO(*req)

	switch req.Kind {
	case rota.KindLeave:
		// A leave-kind approval materializes the approved leave record
		// that suppression and pay forecasting read.
		leave := rota.LeaveRecord{
			ID:          rota.LeaveID("lv-" + uuid.NewString()),
			SubjectID:   req.SubjectID,
			Type:        "annual",
			From:        req.From,
			To:          req.To,
			Status:      rota.LeaveApproved,
			DaysCharged: rota.DaysBetween(req.From, req.To) + 1,
		}
		if err := h.Store.SaveLeave(ctx, leave); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record leave", err)
			return
		}

	case rota.KindShiftCover:
		moved, err := h.Store.ReassignManualShifts(ctx, req.ID)
		if err != nil {
			if errors.Is(err, rota.ErrReassignmentReplayed) {
				writeError(w, http.StatusConflict, "Reassignment already applied", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to reassign shifts", err)
			return
		}
		dto.ReassignedShifts = moved
	}

	writeJSON(w, http.StatusOK, dto)
}

// RejectRequest moves a pending request to rejected. No side effects.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := rota.RequestID(chi.URLParam(r, "id"))

	req, err := h.Store.TransitionRequest(r.Context(), id, rota.RequestRejected)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// =============================================================================
// PAY HANDLERS
// =============================================================================

// SaveProfile upserts a subject's compensation profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	subject := rota.SubjectID(chi.URLParam(r, "id"))

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	profile, err := parseProfile(subject, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
		return
	}

	if err := h.Pay.SaveCompensationProfile(r.Context(), profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateHoliday registers a public holiday date.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := factory.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	if err := h.Pay.SaveHoliday(r.Context(), date, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"date": date.String(), "name": req.Name})
}

// GetPayPreview projects the next 12 months of pay for a subject. The
// projection window also looks one year back so the leave-year rollover
// month can settle the just-closed year.
func (h *Handler) GetPayPreview(w http.ResponseWriter, r *http.Request) {
	subject := rota.SubjectID(chi.URLParam(r, "id"))
	ctx := r.Context()
	now := h.Now()

	profile, err := h.Pay.GetCompensationProfile(ctx, subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "No compensation profile for subject", nil)
		return
	}

	forward := rota.Window{
		From: rota.StartOfMonth(now.Year(), now.Month()),
		To:   rota.StartOfMonth(now.Year(), now.Month()).AddMonths(payroll.ForecastMonths).AddDays(-1),
	}
	lookback := rota.Window{
		From: forward.From.AddYears(-1),
		To:   forward.To,
	}

	snapshot, err := rota.LoadSnapshot(ctx, h.Store, forward)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	result := rota.Resolve(snapshot, forward, now)

	// Leave consumption needs the previous leave year too.
	leave, err := h.Store.ListLeave(ctx, lookback, rota.LeaveApproved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave", err)
		return
	}

	bonuses, err := h.Pay.ListBonuses(ctx, subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load bonuses", err)
		return
	}
	ledger, err := h.Pay.ListPayLedger(ctx, subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pay ledger", err)
		return
	}
	calendar, err := h.Pay.Holidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return
	}

	forecaster := payroll.Forecaster{Profile: profile, Calendar: calendar}
	previews := forecaster.Forecast(payroll.Input{
		Instances: result.All(),
		Overtime:  snapshot.Requests,
		Leave:     leave,
		Bonuses:   bonuses,
		Ledger:    ledger,
		Now:       now,
	})

	dtos := make([]PayPreviewDTO, len(previews))
	for i, p := range previews {
		dtos[i] = toPayPreviewDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PARSING AND RESPONSE HELPERS
// =============================================================================

func windowFromQuery(r *http.Request) (rota.Window, error) {
	from, to, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		return rota.Window{}, err
	}
	return rota.Window{From: from, To: to}, nil
}

func parseDateRange(fromStr, toStr string) (from, to rota.TimePoint, err error) {
	if from, err = factory.ParseDate(fromStr); err != nil {
		return
	}
	if to, err = factory.ParseDate(toStr); err != nil {
		return
	}
	if to.Before(from) {
		err = errors.New("range end precedes start")
	}
	return
}

func parseClock(s string) (rota.MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return rota.NewMinuteOfDay(t.Hour(), t.Minute()), nil
}

func parseProfile(subject rota.SubjectID, req CreateProfileRequest) (payroll.CompensationProfile, error) {
	salary, err := decimal.NewFromString(req.BaseSalary)
	if err != nil {
		return payroll.CompensationProfile{}, err
	}

	freq := payroll.PayFrequency(req.Frequency)
	switch freq {
	case payroll.FrequencyWeekly, payroll.FrequencyBiweekly, payroll.FrequencyMonthly, payroll.FrequencyAnnual:
	default:
		return payroll.CompensationProfile{}, errors.New("unknown pay frequency")
	}

	profile := payroll.CompensationProfile{
		SubjectID:            subject,
		BaseSalary:           salary,
		Frequency:            freq,
		AnnualLeaveAllowance: req.AnnualLeaveAllowance,
	}
	if req.TenureStart != "" {
		tenure, err := factory.ParseDate(req.TenureStart)
		if err != nil {
			return payroll.CompensationProfile{}, err
		}
		profile.TenureStart = tenure
	}
	return profile, nil
}

func writeTransitionError(w http.ResponseWriter, err error) {
	if errors.Is(err, rota.ErrRequestNotPending) {
		writeError(w, http.StatusConflict, "Request is not pending", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to transition request", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
