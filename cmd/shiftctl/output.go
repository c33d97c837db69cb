package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/warp/shift-reconciler/api"
)

func (a *app) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

func (a *app) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(a.out)
	tw.SetStyle(table.StyleLight)
	return tw
}

func (a *app) renderShifts(shifts []api.ShiftDTO) {
	tw := a.newTable()
	tw.AppendHeader(table.Row{"Date", "Day", "Slot", "Employee", "Start", "End"})
	for _, s := range shifts {
		tw.AppendRow(table.Row{s.Date, s.DayName, s.Slot, s.EmployeeID, s.Start, s.End})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", len(shifts)})
	tw.Render()
}

func side(a *api.AssignmentDTO) string {
	if a == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s-%s", a.EmployeeID, a.Start, a.End)
}

func (a *app) renderComparison(resp api.CompareResponse) {
	fmt.Fprintf(a.out, "%s %s: %d added, %d removed, %d changed (%d skipped)\n",
		resp.EmployeeID, resp.Month,
		resp.Summary.Added, resp.Summary.Removed, resp.Summary.Changed, resp.Skipped)

	if len(resp.Differences) > 0 {
		tw := a.newTable()
		tw.AppendHeader(table.Row{"ID", "Type", "Day", "Authoritative", "External"})
		for _, d := range resp.Differences {
			tw.AppendRow(table.Row{d.ID, d.Type, d.DayName, side(d.Authoritative), side(d.External)})
		}
		tw.Render()
	}

	for _, c := range resp.Collisions {
		fmt.Fprintf(a.out, "collision %s %s: %s replaced by %s\n",
			c.Date, c.Slot, side(&c.Previous), side(&c.Replacement))
	}
}

func (a *app) renderReport(employeeID string, months []api.MonthlyReportDTO) {
	if len(months) == 0 {
		fmt.Fprintf(a.out, "no shifts for %s\n", employeeID)
		return
	}
	tw := a.newTable()
	tw.AppendHeader(table.Row{"Month", "Morning", "Evening", "Hours"})
	for _, m := range months {
		tw.AppendRow(table.Row{m.Month, m.Morning, m.Evening, m.TotalHours})
	}
	tw.Render()
}

func (a *app) renderImports(runs []api.ImportRunDTO) {
	tw := a.newTable()
	tw.AppendHeader(table.Row{"Run", "Employee", "Month", "Selected", "Applied", "Created"})
	for _, r := range runs {
		tw.AppendRow(table.Row{r.ID, r.EmployeeID, r.Month, len(r.Selected), r.Applied, r.CreatedAt})
	}
	tw.Render()
}
