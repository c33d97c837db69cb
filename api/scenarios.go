/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that seed the authoritative schedule with
	realistic data, each paired with a sample extraction payload that
	exercises one reconciliation feature when posted to /api/reconcile/compare.

AVAILABLE SCENARIOS:

	single-month:     One employee; added, removed and changed in one month
	shared-week:      Two employees share a week; compare is scoped to one
	noisy-extraction: Reversed boundaries, null and string days, a collision

HOW SCENARIOS WORK:
 1. Build the seed schedule from (date, slot, employee, start, end) rows
 2. Replace the stored schedule with it
 3. Remember the scenario id for GET /api/scenarios/current

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "single-month"}

NOTE:

	Loading a scenario replaces the whole schedule. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: Compare/Import handlers the samples are meant for
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/shift-reconciler/roster"
)

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	SampleExtraction json.RawMessage `json:"sample_extraction"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

type seedRow struct {
	year       int
	month      time.Month
	day        int
	slot       roster.Slot
	employeeID string
	start, end string
}

type scenario struct {
	ScenarioDTO
	seed []seedRow
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "single-month",
			Name:        "Single Month",
			Description: "Employee A, January 2024: one changed start, one added evening, one missing evening",
			SampleExtraction: json.RawMessage(`{"employee_id":"A","month":1,"year":2024,"entries":[` +
				`{"day":8,"start":"08:00","end":"16:00"},` +
				`{"day":9,"start":"13:00","end":"22:00"},` +
				`{"day":11,"start":"07:00","end":"16:00"}]}`),
		},
		seed: []seedRow{
			{2024, time.January, 8, roster.SlotMorning, "A", "07:00", "16:00"},
			{2024, time.January, 10, roster.SlotEvening, "A", "13:00", "22:00"},
			{2024, time.January, 11, roster.SlotMorning, "A", "07:00", "16:00"},
			{2024, time.January, 12, roster.SlotEvening, "A", "13:00", "22:00"}, // closed slot, never compared
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "shared-week",
			Name:        "Shared Week",
			Description: "A and B alternate slots; comparing B's extraction never reports A's shifts",
			SampleExtraction: json.RawMessage(`{"employee_id":"B","month":1,"year":2024,"entries":[` +
				`{"day":14,"start":"13:00","end":"22:00"},` +
				`{"day":15,"start":"07:00","end":"15:30"}]}`),
		},
		seed: []seedRow{
			{2024, time.January, 14, roster.SlotMorning, "A", "07:00", "13:00"},
			{2024, time.January, 14, roster.SlotEvening, "B", "13:00", "22:00"},
			{2024, time.January, 15, roster.SlotMorning, "B", "07:00", "16:00"},
			{2024, time.January, 15, roster.SlotEvening, "A", "13:00", "22:00"},
			{2024, time.January, 16, roster.SlotMorning, "A", "07:00", "16:00"},
			{2024, time.January, 17, roster.SlotMorning, roster.Unassigned, "07:00", "16:00"},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "noisy-extraction",
			Name:        "Noisy Extraction",
			Description: "OCR output with reversed boundaries, null and string days, and two rows in one slot",
			SampleExtraction: json.RawMessage(`{"employee_id":"A","month":"2","year":"2024","entries":[` +
				`{"day":5,"start":"16:00","end":"07:00"},` +
				`{"day":null,"start":"07:00","end":"16:00"},` +
				`{"day":"6","start":"13:00","end":"22:00"},` +
				`{"day":7,"start":"07:00","end":"11:00"},` +
				`{"day":7,"start":"08:00","end":"16:00"}]}`),
		},
		seed: []seedRow{
			{2024, time.February, 5, roster.SlotMorning, "A", "07:00", "16:00"},
			{2024, time.February, 7, roster.SlotMorning, "A", "07:00", "16:00"},
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

func (s scenario) schedule() (roster.Schedule, error) {
	out := roster.Schedule{}
	for _, row := range s.seed {
		date, err := roster.DateOf(row.year, row.month, row.day)
		if err != nil {
			return nil, err
		}
		start, err := roster.ParseTimeOfDay(row.start)
		if err != nil {
			return nil, err
		}
		end, err := roster.ParseTimeOfDay(row.end)
		if err != nil {
			return nil, err
		}
		out.Set(date, row.slot, roster.Assignment{EmployeeID: row.employeeID, Start: start, End: end})
	}
	return out, nil
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.writeMu.Lock()
	current := h.currentScenario
	h.writeMu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario replaces the schedule with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario_id=%q", req.ScenarioID))
		return
	}

	seed, err := s.schedule()
	if err != nil {
		h.internalError(w, r, "Invalid scenario seed", err)
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if err := h.Store.Put(r.Context(), seed); err != nil {
		h.internalError(w, r, "Failed to load scenario", err)
		return
	}
	h.currentScenario = s.ID

	h.logger.Info("scenario loaded", zap.String("scenario", s.ID), zap.Int("shifts", seed.Len()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}
