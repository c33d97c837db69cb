/*
Package factory provides JSON to Go conversion of extraction payloads.

PURPOSE:
  Converts the JSON produced by the external extraction step (an AI/OCR read
  of an HR report or screenshot) into reconcile.RawEntry rows plus the
  month/year/employee context the Builder needs. The extractor is noisy, so
  decoding is lenient about field shapes and leaves completeness checks to
  the Builder.

JSON SCHEMA:
  {
    "employee_id": "A",
    "month": 1,
    "year": 2024,
    "entries": [
      {"day": 8, "start": "07:00", "end": "16:00"},
      {"day": "9", "start": "13:00", "end": "22:00"},
      {"day": null, "start": "07:00"}
    ]
  }

KEY FEATURES:
  - "day", "month" and "year" accept numbers or numeric strings
  - null / missing fields decode to zero values (skipped by the Builder)
  - "shifts" is accepted as an alias of "entries"
  - month must be 1-12, year positive, employee_id non-empty

USAGE:
  ex, err := factory.ParseExtraction(body)
  result, err := ex.Build(reconcile.NewBuilder())

SEE ALSO:
  - reconcile/builder.go: Consumes RawEntry
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
)

var (
	// ErrMissingEmployee is returned when the payload names no employee.
	ErrMissingEmployee = errors.New("extraction: employee_id is required")

	// ErrMalformedPayload is returned when the payload is not a JSON object.
	ErrMalformedPayload = errors.New("extraction: malformed payload")
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ExtractionJSON is the JSON representation of an extraction result.
type ExtractionJSON struct {
	EmployeeID string      `json:"employee_id"`
	Month      FlexInt     `json:"month"`
	Year       FlexInt     `json:"year"`
	Entries    []EntryJSON `json:"entries"`
	Shifts     []EntryJSON `json:"shifts,omitempty"` // older prompts
}

// EntryJSON is one extracted row.
type EntryJSON struct {
	Day   FlexInt `json:"day"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// FlexInt decodes a JSON number or numeric string. null, "" and
// non-numeric strings decode to 0, which downstream treats as missing.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected number or numeric string, got %s", data)
	}
	if n != math.Trunc(n) {
		return fmt.Errorf("expected whole number, got %s", data)
	}
	*f = FlexInt(n)
	return nil
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extraction is a decoded payload for one employee and month.
type Extraction struct {
	EmployeeID string
	Year       int
	Month      time.Month
	Entries    []reconcile.RawEntry
}

// Build runs the entries through b.
func (e Extraction) Build(b *reconcile.Builder) (reconcile.BuildResult, error) {
	return b.Build(e.Entries, e.Month, e.Year, e.EmployeeID)
}

// =============================================================================
// EXTRACTION FACTORY
// =============================================================================

// ExtractionFactory converts JSON payloads to Extractions.
type ExtractionFactory struct{}

// NewExtractionFactory creates a new extraction factory.
func NewExtractionFactory() *ExtractionFactory {
	return &ExtractionFactory{}
}

// Parse decodes and validates a raw JSON payload.
func (f *ExtractionFactory) Parse(data []byte) (Extraction, error) {
	var ej ExtractionJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return f.FromJSON(ej)
}

// ParseExtraction decodes a payload with a default factory.
func ParseExtraction(data []byte) (Extraction, error) {
	return NewExtractionFactory().Parse(data)
}

// FromJSON validates an already-decoded payload.
func (f *ExtractionFactory) FromJSON(ej ExtractionJSON) (Extraction, error) {
	employeeID := strings.TrimSpace(ej.EmployeeID)
	if employeeID == "" {
		return Extraction{}, ErrMissingEmployee
	}

	month := time.Month(ej.Month)
	if month < time.January || month > time.December {
		return Extraction{}, &roster.DateError{
			Value:  fmt.Sprintf("%04d-%02d", int(ej.Year), int(ej.Month)),
			Reason: "month must be 1-12",
		}
	}
	if ej.Year <= 0 {
		return Extraction{}, &roster.DateError{
			Value:  strconv.Itoa(int(ej.Year)),
			Reason: "year must be positive",
		}
	}

	rows := ej.Entries
	if len(rows) == 0 {
		rows = ej.Shifts
	}

	entries := make([]reconcile.RawEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, reconcile.RawEntry{
			Day:   int(r.Day),
			Start: r.Start,
			End:   r.End,
		})
	}

	return Extraction{
		EmployeeID: employeeID,
		Year:       int(ej.Year),
		Month:      month,
		Entries:    entries,
	}, nil
}

// IsClientError reports whether err came from a bad payload.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingEmployee) ||
		errors.Is(err, ErrMalformedPayload) ||
		roster.IsClientError(err)
}
