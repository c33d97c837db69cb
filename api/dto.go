/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the roster/reconcile model from the external API contract:
  - Dates are "YYYY-MM-DD", boundaries "HH:MM:SS"
  - Weekday names are localized here, never in the engine
  - Hours are decimal strings with two places

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Schedule:  ShiftDTO, ScheduleResponse, PutScheduleRequest, ShiftInput
  Reconcile: DifferenceDTO, AssignmentDTO, CollisionDTO, CompareResponse,
             ImportRequest, ImportResponse
  Reports:   MonthlyReportDTO
  Imports:   ImportRunDTO

VALIDATION:
  Request types carry go-playground/validator tags; handlers run them and
  translate the first failure into the error details.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/extraction.go: ExtractionJSON type
*/
package api

import (
	"time"

	"github.com/warp/shift-reconciler/factory"
	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
)

// =============================================================================
// SCHEDULE
// =============================================================================

// ShiftDTO represents one occupied slot in API responses.
type ShiftDTO struct {
	Date       string `json:"date"`
	WeekID     string `json:"week_id"`
	DayName    string `json:"day_name"`
	Slot       string `json:"slot"`
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Hours      string `json:"hours,omitempty"`
}

// ScheduleResponse wraps the flattened authoritative schedule.
type ScheduleResponse struct {
	Shifts []ShiftDTO `json:"shifts"`
	Count  int        `json:"count"`
}

// ShiftInput is one slot in a schedule replacement.
type ShiftInput struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"required,oneof=morning evening"`
	EmployeeID string `json:"employee_id" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
}

// PutScheduleRequest replaces the authoritative schedule wholesale.
type PutScheduleRequest struct {
	Shifts []ShiftInput `json:"shifts" validate:"dive"`
}

// =============================================================================
// RECONCILE
// =============================================================================

// AssignmentDTO is one side of a difference.
type AssignmentDTO struct {
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Hours      string `json:"hours"`
}

// DifferenceDTO represents a difference record.
type DifferenceDTO struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Date          string         `json:"date"`
	DayName       string         `json:"day_name"`
	Slot          string         `json:"slot"`
	Applicable    bool           `json:"applicable"`
	Authoritative *AssignmentDTO `json:"authoritative"`
	External      *AssignmentDTO `json:"external"`
}

// CollisionDTO reports an extracted row that overwrote an earlier one.
type CollisionDTO struct {
	Date        string        `json:"date"`
	Slot        string        `json:"slot"`
	Previous    AssignmentDTO `json:"previous"`
	Replacement AssignmentDTO `json:"replacement"`
}

// DiffSummary counts differences by type.
type DiffSummary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// CompareResponse is the result of comparing an extraction.
type CompareResponse struct {
	EmployeeID  string          `json:"employee_id"`
	Month       string          `json:"month"`
	Differences []DifferenceDTO `json:"differences"`
	Summary     DiffSummary     `json:"summary"`
	Collisions  []CollisionDTO  `json:"collisions"`
	Skipped     int             `json:"skipped"`
}

// ImportRequest is an extraction plus the difference ids to merge.
type ImportRequest struct {
	factory.ExtractionJSON
	SelectedIDs []string `json:"selected_ids" validate:"required_unless=All true,dive,required"`
	All         bool     `json:"all"`
}

// ImportResponse reports a merge-import.
type ImportResponse struct {
	RunID        string   `json:"run_id"`
	AppliedCount int      `json:"applied_count"`
	Selected     []string `json:"selected"`
}

// =============================================================================
// REPORTS & IMPORT LOG
// =============================================================================

// MonthlyReportDTO is one month of an employee's shifts.
type MonthlyReportDTO struct {
	Month      string     `json:"month"`
	Morning    int        `json:"morning"`
	Evening    int        `json:"evening"`
	TotalHours string     `json:"total_hours"`
	Shifts     []ShiftDTO `json:"shifts"`
}

// ImportRunDTO represents an import run in API responses.
type ImportRunDTO struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employee_id"`
	Month      string   `json:"month"`
	Selected   []string `json:"selected"`
	Applied    int      `json:"applied"`
	CreatedAt  string   `json:"created_at"`
}

// ErrorResponse is returned for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func ToShiftDTO(s roster.Shift, locale string) ShiftDTO {
	return ShiftDTO{
		Date:       roster.FormatDate(s.Date),
		WeekID:     roster.WeekOf(s.Date).String(),
		DayName:    roster.DayName(s.Date.Weekday(), locale),
		Slot:       string(s.Slot),
		EmployeeID: s.Assignment.EmployeeID,
		Start:      s.Assignment.Start.String(),
		End:        s.Assignment.End.String(),
	}
}

func toAssignmentDTO(a roster.Assignment) AssignmentDTO {
	return AssignmentDTO{
		EmployeeID: a.EmployeeID,
		Start:      a.Start.String(),
		End:        a.End.String(),
		Hours:      reconcile.ShiftHours(a).StringFixed(2),
	}
}

func toAssignmentPtr(a *roster.Assignment) *AssignmentDTO {
	if a == nil {
		return nil
	}
	dto := toAssignmentDTO(*a)
	return &dto
}

func ToDifferenceDTO(d reconcile.Difference, locale string) DifferenceDTO {
	return DifferenceDTO{
		ID:            d.ID,
		Type:          string(d.Type),
		Date:          roster.FormatDate(d.Date),
		DayName:       roster.DayName(d.Weekday(), locale),
		Slot:          string(d.Slot),
		Applicable:    d.Type.Applicable(),
		Authoritative: toAssignmentPtr(d.Authoritative),
		External:      toAssignmentPtr(d.External),
	}
}

func toCollisionDTO(c reconcile.Collision) CollisionDTO {
	return CollisionDTO{
		Date:        roster.FormatDate(c.Date),
		Slot:        string(c.Slot),
		Previous:    toAssignmentDTO(c.Previous),
		Replacement: toAssignmentDTO(c.Replacement),
	}
}

// NewCompareResponse assembles the compare result for one extraction.
func NewCompareResponse(ex factory.Extraction, built reconcile.BuildResult, diffs []reconcile.Difference, locale string) CompareResponse {
	resp := CompareResponse{
		EmployeeID:  ex.EmployeeID,
		Month:       roster.MonthKey(roster.NewDate(ex.Year, ex.Month, 1)),
		Differences: make([]DifferenceDTO, len(diffs)),
		Collisions:  make([]CollisionDTO, len(built.Collisions)),
		Skipped:     built.Skipped,
	}
	for i, d := range diffs {
		resp.Differences[i] = ToDifferenceDTO(d, locale)
		switch d.Type {
		case reconcile.DiffAdded:
			resp.Summary.Added++
		case reconcile.DiffRemoved:
			resp.Summary.Removed++
		case reconcile.DiffChanged:
			resp.Summary.Changed++
		}
	}
	for i, col := range built.Collisions {
		resp.Collisions[i] = toCollisionDTO(col)
	}
	return resp
}

func ToMonthlyReportDTO(m *reconcile.MonthlySummary, locale string) MonthlyReportDTO {
	shifts := make([]ShiftDTO, len(m.Shifts))
	for i, s := range m.Shifts {
		dto := ToShiftDTO(roster.Shift{Date: s.Date, Slot: s.Slot, Assignment: s.Assignment}, locale)
		dto.Hours = s.Hours.StringFixed(2)
		shifts[i] = dto
	}
	return MonthlyReportDTO{
		Month:      m.Month,
		Morning:    m.Morning,
		Evening:    m.Evening,
		TotalHours: m.TotalHours.StringFixed(2),
		Shifts:     shifts,
	}
}

func ToImportRunDTO(r roster.ImportRun) ImportRunDTO {
	selected := r.Selected
	if selected == nil {
		selected = []string{}
	}
	return ImportRunDTO{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Month:      roster.MonthKey(roster.NewDate(r.Year, r.Month, 1)),
		Selected:   selected,
		Applied:    r.Applied,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
