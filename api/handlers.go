/*
handlers.go - HTTP API handlers for shift reconciliation

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to roster/reconcile.

ENDPOINTS:
  Schedule:
    GET    /api/schedule                        Authoritative shifts (?lang=, ?employee_id=, ?month=)
    PUT    /api/schedule                        Replace the authoritative schedule
    DELETE /api/schedule/shifts/{date}/{slot}   Remove one slot

  Reconcile:
    POST   /api/reconcile/compare               Extraction -> differences
    POST   /api/reconcile/import                Extraction + selection -> merge

  Reports:
    GET    /api/reports/monthly?employee_id=    Monthly shift counts and hours

  Imports:
    GET    /api/imports                         Import history
    GET    /api/imports/{id}                    One import run

  Scenarios:
    GET    /api/scenarios                       List demo scenarios
    GET    /api/scenarios/current               Currently loaded scenario
    POST   /api/scenarios/load                  Seed the schedule from a scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Authoritative schedule and import log
  - Extractions/Builder/Comparer: Engine entry points
  - validator + translator: Request validation with readable messages

RECONCILE FLOW:
  1. Decode extraction payload (factory)
  2. Build external schedule (reconcile.Builder)
  3. Load authoritative schedule, scope it to the employee and month
  4. Compare (reconcile.Comparer)
  5. For import: apply selection onto the full schedule, Put, record run

  Scoping keeps other employees' shifts and other months out of the diff;
  without it they would all surface as removed.

ERROR HANDLING:
  Errors are returned as JSON {error, details}:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/shift-reconciler/factory"
	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers need.
type Store interface {
	roster.ScheduleStore
	roster.ImportLog
}

// Options tunes engine behaviour per deployment.
type Options struct {
	DefaultLocale     string
	MorningCutOffHour int
	MatchEmployee     bool
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Extractions *factory.ExtractionFactory
	Builder     *reconcile.Builder
	Comparer    *reconcile.Comparer

	defaultLocale string
	logger        *zap.Logger
	validate      *validator.Validate
	translator    ut.Translator

	now   func() time.Time
	newID func() string

	// Held across every Get-modify-Put of the schedule.
	writeMu         sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, logger *zap.Logger, opts Options) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	locale := opts.DefaultLocale
	if !roster.SupportedLocale(locale) {
		locale = roster.DefaultLocale
	}

	policy := reconcile.DefaultWorkWeek()
	if opts.MorningCutOffHour > 0 {
		policy.MorningCutOffHour = opts.MorningCutOffHour
	}

	return &Handler{
		Store:         store,
		Extractions:   factory.NewExtractionFactory(),
		Builder:       &reconcile.Builder{Policy: policy},
		Comparer:      &reconcile.Comparer{Policy: policy, MatchEmployee: opts.MatchEmployee},
		defaultLocale: locale,
		logger:        logger,
		validate:      validate,
		translator:    trans,
		now:           time.Now,
		newID:         uuid.NewString,
	}, nil
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the authoritative schedule, flattened.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported locale", fmt.Errorf("lang=%q", r.URL.Query().Get("lang")))
		return
	}

	schedule, err := h.Store.Get(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to load schedule", err)
		return
	}

	if employeeID := strings.TrimSpace(r.URL.Query().Get("employee_id")); employeeID != "" {
		if schedule, err = schedule.ForEmployee(employeeID); err != nil {
			h.internalError(w, r, "Failed to filter schedule", err)
			return
		}
	}
	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (want YYYY-MM)", err)
			return
		}
		if schedule, err = schedule.InMonth(start.Year(), start.Month()); err != nil {
			h.internalError(w, r, "Failed to filter schedule", err)
			return
		}
	}

	shifts, err := schedule.Shifts()
	if err != nil {
		h.internalError(w, r, "Stored schedule is corrupt", err)
		return
	}

	writeJSON(w, http.StatusOK, ToScheduleResponse(shifts, locale))
}

// PutSchedule replaces the authoritative schedule.
func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	var req PutScheduleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	schedule, err := ScheduleFromInputs(req.Shifts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if err := h.Store.Put(r.Context(), schedule); err != nil {
		h.internalError(w, r, "Failed to save schedule", err)
		return
	}

	shifts, _ := schedule.Shifts()
	h.logger.Info("schedule replaced", zap.Int("shifts", len(shifts)))
	writeJSON(w, http.StatusOK, ToScheduleResponse(shifts, h.defaultLocale))
}

// DeleteShift removes one slot from the authoritative schedule.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	date, err := roster.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	slot, ok := roster.ParseSlot(chi.URLParam(r, "slot"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid slot", fmt.Errorf("slot %q (want morning or evening)", chi.URLParam(r, "slot")))
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	schedule, err := h.Store.Get(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to load schedule", err)
		return
	}
	if !schedule.Remove(date, slot) {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	if err := h.Store.Put(r.Context(), schedule); err != nil {
		h.internalError(w, r, "Failed to save schedule", err)
		return
	}

	h.logger.Info("shift removed",
		zap.String("date", roster.FormatDate(date)),
		zap.String("slot", string(slot)))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECONCILE HANDLERS
// =============================================================================

// comparison is everything one extraction produces against the store.
type comparison struct {
	extraction    factory.Extraction
	build         reconcile.BuildResult
	authoritative roster.Schedule
	diffs         []reconcile.Difference
}

// compare runs the reconcile flow. Any returned error is already classified
// by fail.
func (h *Handler) compare(ctx context.Context, ej factory.ExtractionJSON) (*comparison, error) {
	ex, err := h.Extractions.FromJSON(ej)
	if err != nil {
		return nil, err
	}

	built, err := ex.Build(h.Builder)
	if err != nil {
		return nil, err
	}

	auth, err := h.Store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	diffs, err := h.Comparer.CompareScoped(auth, built.Schedule, ex.EmployeeID, ex.Year, ex.Month)
	if err != nil {
		return nil, fmt.Errorf("compare failed: %w", err)
	}

	return &comparison{extraction: ex, build: built, authoritative: auth, diffs: diffs}, nil
}

// Compare returns the differences between an extraction and the stored
// schedule. Nothing is written.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported locale", fmt.Errorf("lang=%q", r.URL.Query().Get("lang")))
		return
	}

	var ej factory.ExtractionJSON
	if !h.decodeAndValidate(w, r, &ej) {
		return
	}

	c, err := h.compare(r.Context(), ej)
	if err != nil {
		h.fail(w, r, "Compare failed", err)
		return
	}

	resp := NewCompareResponse(c.extraction, c.build, c.diffs, locale)

	h.logger.Debug("extraction compared",
		zap.String("employee_id", resp.EmployeeID),
		zap.String("month", resp.Month),
		zap.Int("differences", len(c.diffs)),
		zap.Int("skipped", c.build.Skipped),
		zap.Int("collisions", len(c.build.Collisions)))

	writeJSON(w, http.StatusOK, resp)
}

// Import recomputes the differences, applies the selected ones and
// records the run. The merged schedule and the run are committed together.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	c, err := h.compare(r.Context(), req.ExtractionJSON)
	if err != nil {
		h.fail(w, r, "Import failed", err)
		return
	}

	selection := reconcile.Select(req.SelectedIDs...)
	if req.All {
		selection = reconcile.SelectAll(c.diffs)
	}

	merged := reconcile.Apply(c.authoritative, c.diffs, selection)
	var updated roster.Schedule
	if merged.AppliedCount > 0 {
		updated = merged.Updated
	}

	run := roster.ImportRun{
		ID:         h.newID(),
		EmployeeID: c.extraction.EmployeeID,
		Year:       c.extraction.Year,
		Month:      c.extraction.Month,
		Selected:   selection.IDs(),
		Applied:    merged.AppliedCount,
		CreatedAt:  h.now().UTC(),
	}
	if err := h.Store.CommitImport(r.Context(), updated, run); err != nil {
		h.internalError(w, r, "Failed to commit import", err)
		return
	}

	h.logger.Info("extraction imported",
		zap.String("run_id", run.ID),
		zap.String("employee_id", run.EmployeeID),
		zap.Int("selected", len(run.Selected)),
		zap.Int("applied", run.Applied))

	writeJSON(w, http.StatusOK, ImportResponse{
		RunID:        run.ID,
		AppliedCount: run.Applied,
		Selected:     run.Selected,
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetMonthlyReport returns per-month counts and hours for one employee.
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported locale", fmt.Errorf("lang=%q", r.URL.Query().Get("lang")))
		return
	}
	employeeID := strings.TrimSpace(r.URL.Query().Get("employee_id"))
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	schedule, err := h.Store.Get(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to load schedule", err)
		return
	}

	months, err := reconcile.Aggregate(schedule, employeeID)
	if err != nil {
		h.internalError(w, r, "Failed to aggregate", err)
		return
	}

	keys := reconcile.SortedMonths(months)
	dtos := make([]MonthlyReportDTO, len(keys))
	for i, k := range keys {
		dtos[i] = ToMonthlyReportDTO(months[k], locale)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// IMPORT LOG HANDLERS
// =============================================================================

// ListImports returns import history, newest first.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListImports(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list imports", err)
		return
	}

	dtos := make([]ImportRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = ToImportRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetImport returns a single import run.
func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetImport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get import", err)
		return
	}
	writeJSON(w, http.StatusOK, ToImportRunDTO(run))
}

// =============================================================================
// HELPERS
// =============================================================================

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

// fail maps err to a status: client errors 400, missing resources 404,
// anything else 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case factory.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.internalError(w, r, message, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Error(message,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, message, err)
}

// decodeAndValidate reads a JSON body into v and runs struct validation.
// It writes the 400 itself and returns false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "Validation failed", errors.New(verrs[0].Translate(h.translator)))
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// locale reads ?lang=, falling back to the configured default.
func (h *Handler) locale(r *http.Request) (string, bool) {
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" {
		return h.defaultLocale, true
	}
	return lang, roster.SupportedLocale(lang)
}

// ScheduleFromInputs builds a schedule from replacement rows. Reversed
// boundaries are swapped. A slot listed twice is an error.
func ScheduleFromInputs(inputs []ShiftInput) (roster.Schedule, error) {
	schedule := roster.Schedule{}
	for i, in := range inputs {
		shift, err := fromShiftInput(in)
		if err != nil {
			return nil, fmt.Errorf("shift %d: %w", i, err)
		}
		if _, exists := schedule.Get(shift.Date, shift.Slot); exists {
			return nil, fmt.Errorf("shift %d: %s %s listed twice", i, in.Date, in.Slot)
		}
		schedule.Set(shift.Date, shift.Slot, shift.Assignment)
	}
	return schedule, nil
}

func fromShiftInput(in ShiftInput) (roster.Shift, error) {
	date, err := roster.ParseDate(in.Date)
	if err != nil {
		return roster.Shift{}, err
	}
	slot, ok := roster.ParseSlot(in.Slot)
	if !ok {
		return roster.Shift{}, fmt.Errorf("invalid slot %q", in.Slot)
	}
	start, err := roster.ParseTimeOfDay(in.Start)
	if err != nil {
		return roster.Shift{}, err
	}
	end, err := roster.ParseTimeOfDay(in.End)
	if err != nil {
		return roster.Shift{}, err
	}
	start, end = roster.OrderPair(start, end)
	return roster.Shift{
		Date: date,
		Slot: slot,
		Assignment: roster.Assignment{
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			Start:      start,
			End:        end,
		},
	}, nil
}

func ToScheduleResponse(shifts []roster.Shift, locale string) ScheduleResponse {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = ToShiftDTO(s, locale)
	}
	return ScheduleResponse{Shifts: dtos, Count: len(dtos)}
}
