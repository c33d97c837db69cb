/*
main.go - Operator CLI for shift reconciliation

PURPOSE:
  Runs the same reconcile flow as the HTTP API directly against a SQLite
  database: load an authoritative schedule, compare an extraction, merge a
  selection, report monthly hours.

COMMANDS:
  show     [--employee ID] [--month YYYY-MM]
  load     --file schedule.json          {"shifts":[{date,slot,employee_id,start,end}]}
  compare  --file extraction.json
  import   --file extraction.json (--select id,... | --all)
  report   --employee ID
  remove   --date YYYY-MM-DD --slot morning|evening
  imports

GLOBAL FLAGS (env SHIFTCTL_<NAME>):
  --db         SQLite path (default shifts.db)
  --json       JSON output instead of tables
  --locale     Day-name locale (en|he)
  --log-level  zap level for stderr logs (default warn)

SEE ALSO:
  - api/handlers.go: HTTP version of the same flow
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/shift-reconciler/config"
	"github.com/warp/shift-reconciler/roster"
)

type app struct {
	v      *viper.Viper
	out    io.Writer
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		out:    out,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	root := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Reconcile extracted shift reports against the authoritative schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !roster.SupportedLocale(a.locale()) {
				return fmt.Errorf("unsupported locale %q", a.locale())
			}
			logger, err := config.NewLogger(a.v.GetString("log-level"))
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)

	a.v.SetEnvPrefix("SHIFTCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.PersistentFlags().String("db", "shifts.db", "SQLite database path")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().String("locale", roster.DefaultLocale, "day-name locale (en, he)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	for _, name := range []string{"db", "json", "locale", "log-level"} {
		_ = a.v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(
		a.showCmd(),
		a.loadCmd(),
		a.compareCmd(),
		a.importCmd(),
		a.reportCmd(),
		a.removeCmd(),
		a.importsCmd(),
	)
	return root
}

func (a *app) locale() string {
	return a.v.GetString("locale")
}
