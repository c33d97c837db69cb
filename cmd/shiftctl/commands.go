package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/shift-reconciler/api"
	"github.com/warp/shift-reconciler/factory"
	"github.com/warp/shift-reconciler/reconcile"
	"github.com/warp/shift-reconciler/roster"
	"github.com/warp/shift-reconciler/store/sqlite"
)

func (a *app) withStore(ctx context.Context, fn func(ctx context.Context, s *sqlite.Store) error) error {
	store, err := sqlite.New(a.v.GetString("db"))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

// =============================================================================
// SCHEDULE
// =============================================================================

func (a *app) showCmd() *cobra.Command {
	var employeeID, month string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the authoritative schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				schedule, err := s.Get(ctx)
				if err != nil {
					return err
				}
				if employeeID != "" {
					if schedule, err = schedule.ForEmployee(employeeID); err != nil {
						return err
					}
				}
				if month != "" {
					start, err := time.Parse("2006-01", month)
					if err != nil {
						return fmt.Errorf("invalid --month %q (want YYYY-MM)", month)
					}
					if schedule, err = schedule.InMonth(start.Year(), start.Month()); err != nil {
						return err
					}
				}

				shifts, err := schedule.Shifts()
				if err != nil {
					return err
				}
				resp := api.ToScheduleResponse(shifts, a.locale())
				if a.v.GetBool("json") {
					return a.printJSON(resp)
				}
				a.renderShifts(resp.Shifts)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "only this employee")
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the authoritative schedule from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req api.PutScheduleRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			schedule, err := api.ScheduleFromInputs(req.Shifts)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				if err := s.Put(ctx, schedule); err != nil {
					return err
				}
				a.logger.Info("schedule loaded", zap.String("file", file), zap.Int("shifts", schedule.Len()))
				fmt.Fprintf(a.out, "loaded %d shifts\n", schedule.Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "schedule JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	var date, slot string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove one slot from the authoritative schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := roster.ParseDate(date)
			if err != nil {
				return err
			}
			sl, ok := roster.ParseSlot(slot)
			if !ok {
				return fmt.Errorf("invalid --slot %q (want morning or evening)", slot)
			}

			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				schedule, err := s.Get(ctx)
				if err != nil {
					return err
				}
				if !schedule.Remove(d, sl) {
					return fmt.Errorf("no shift on %s %s", date, slot)
				}
				if err := s.Put(ctx, schedule); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "removed %s\n", reconcile.DifferenceID(d, sl))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&slot, "slot", "", "morning or evening")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

// =============================================================================
// RECONCILE
// =============================================================================

type comparison struct {
	extraction    factory.Extraction
	build         reconcile.BuildResult
	authoritative roster.Schedule
	diffs         []reconcile.Difference
}

func (a *app) compare(ctx context.Context, s *sqlite.Store, file string) (*comparison, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	ex, err := factory.ParseExtraction(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	built, err := ex.Build(reconcile.NewBuilder())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	auth, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	diffs, err := reconcile.NewComparer().CompareScoped(auth, built.Schedule, ex.EmployeeID, ex.Year, ex.Month)
	if err != nil {
		return nil, err
	}
	return &comparison{extraction: ex, build: built, authoritative: auth, diffs: diffs}, nil
}

func (a *app) compareCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare an extraction with the authoritative schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				c, err := a.compare(ctx, s, file)
				if err != nil {
					return err
				}
				resp := api.NewCompareResponse(c.extraction, c.build, c.diffs, a.locale())
				if a.v.GetBool("json") {
					return a.printJSON(resp)
				}
				a.renderComparison(resp)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "extraction JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		file     string
		selected []string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge selected differences into the authoritative schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				c, err := a.compare(ctx, s, file)
				if err != nil {
					return err
				}

				selection := reconcile.Select(selected...)
				if all {
					selection = reconcile.SelectAll(c.diffs)
				}
				merged := reconcile.Apply(c.authoritative, c.diffs, selection)
				var updated roster.Schedule
				if merged.AppliedCount > 0 {
					updated = merged.Updated
				}

				run := roster.ImportRun{
					ID:         a.newID(),
					EmployeeID: c.extraction.EmployeeID,
					Year:       c.extraction.Year,
					Month:      c.extraction.Month,
					Selected:   selection.IDs(),
					Applied:    merged.AppliedCount,
					CreatedAt:  a.now().UTC(),
				}
				if err := s.CommitImport(ctx, updated, run); err != nil {
					return err
				}
				a.logger.Info("extraction imported", zap.String("run_id", run.ID), zap.Int("applied", run.Applied))

				resp := api.ImportResponse{RunID: run.ID, AppliedCount: run.Applied, Selected: run.Selected}
				if a.v.GetBool("json") {
					return a.printJSON(resp)
				}
				fmt.Fprintf(a.out, "applied %d of %d selected (run %s)\n", resp.AppliedCount, len(resp.Selected), resp.RunID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "extraction JSON file")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "difference ids to merge")
	cmd.Flags().BoolVar(&all, "all", false, "merge every added and changed difference")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("select", "all")
	cmd.MarkFlagsOneRequired("select", "all")
	return cmd
}

// =============================================================================
// REPORTS
// =============================================================================

func (a *app) reportCmd() *cobra.Command {
	var employeeID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly shift counts and hours for one employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				schedule, err := s.Get(ctx)
				if err != nil {
					return err
				}
				months, err := reconcile.Aggregate(schedule, employeeID)
				if err != nil {
					return err
				}

				keys := reconcile.SortedMonths(months)
				dtos := make([]api.MonthlyReportDTO, len(keys))
				for i, k := range keys {
					dtos[i] = api.ToMonthlyReportDTO(months[k], a.locale())
				}
				if a.v.GetBool("json") {
					return a.printJSON(dtos)
				}
				a.renderReport(employeeID, dtos)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func (a *app) importsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imports",
		Short: "List import history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s *sqlite.Store) error {
				runs, err := s.ListImports(ctx)
				if err != nil {
					return err
				}
				dtos := make([]api.ImportRunDTO, len(runs))
				for i, r := range runs {
					dtos[i] = api.ToImportRunDTO(r)
				}
				if a.v.GetBool("json") {
					return a.printJSON(dtos)
				}
				if len(dtos) == 0 {
					fmt.Fprintln(a.out, "no imports")
					return nil
				}
				a.renderImports(dtos)
				return nil
			})
		},
	}
}
