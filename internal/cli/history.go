package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/queryir"
	"github.com/roach88/bfjit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string // show a single run

	Status    string
	Hash      string
	Source    string
	ErrorCode string
	MinSteps  int64
}

// Query builds the run filter selected by the history flags.
func (o *HistoryOptions) Query() queryir.Select {
	var preds []queryir.Predicate
	eq := func(f queryir.Field, v string) {
		if v != "" {
			preds = append(preds, queryir.Equals{Field: f, Value: v})
		}
	}
	eq(queryir.FieldStatus, o.Status)
	eq(queryir.FieldProgramHash, o.Hash)
	eq(queryir.FieldSourcePath, o.Source)
	eq(queryir.FieldErrorCode, o.ErrorCode)
	if o.MinSteps > 0 {
		preds = append(preds, queryir.AtLeast{Field: queryir.FieldSteps, Value: o.MinSteps})
	}
	return queryir.Select{Filter: queryir.AllOf(preds...), Limit: o.Limit}
}

// HistoryResult is the JSON form of the history listing.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with 'bfjit run --db', newest first.

Examples:
  bfjit history --db ./runs.db
  bfjit history --db ./runs.db --limit 5 --format json
  bfjit history --db ./runs.db --status error --error-code E303
  bfjit history --db ./runs.db --hash 9f2c... --min-steps 1000
  bfjit history --db ./runs.db --id 0192e4a1-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 = all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show only the run with this ID")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only runs with this status (ok|error)")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only runs of the program with this hash")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only runs of this source path")
	cmd.Flags().StringVar(&opts.ErrorCode, "error-code", "", "only runs that failed with this error code")
	cmd.Flags().Int64Var(&opts.MinSteps, "min-steps", 0, "only runs that executed at least this many steps")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Status != "" && opts.Status != string(store.StatusOK) && opts.Status != string(store.StatusError) {
		if outErr := formatter.Error(ErrCodeGeneric, fmt.Sprintf("invalid --status %q (must be ok or error)", opts.Status), nil); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitCommandError, "invalid status filter", nil)
	}
	if opts.MinSteps < 0 {
		if outErr := formatter.Error(ErrCodeGeneric, "--min-steps must not be negative", nil); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitCommandError, "invalid step filter", nil)
	}

	if _, err := os.Stat(opts.Database); errors.Is(err, os.ErrNotExist) {
		if outErr := formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputStoreError(formatter, opts.Database, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.ID != "" {
		run, err := st.ReadRun(cmdContext(cmd), opts.ID)
		if errors.Is(err, store.ErrNotFound) {
			if outErr := formatter.Error(ErrCodeNotFound, err.Error(), map[string]any{"id": opts.ID}); outErr != nil {
				return outErr
			}
			return reportedExitError(ExitCommandError, "run not found", err)
		}
		if err != nil {
			return outputStoreError(formatter, opts.Database, err)
		}
		return outputRuns(formatter, []store.Run{run})
	}

	runs, err := st.FindRuns(cmdContext(cmd), opts.Query())
	if err != nil {
		return outputStoreError(formatter, opts.Database, err)
	}
	formatter.VerboseLog("Read %d run(s) from %s", len(runs), opts.Database)

	return outputRuns(formatter, runs)
}

// outputRuns prints runs as a table or a JSON document.
func outputRuns(formatter *OutputFormatter, runs []store.Run) error {
	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tSTATUS\tSTEPS\tIN\tOUT\tSOURCE")
	for _, r := range runs {
		status := string(r.Status)
		if r.ErrorCode != "" {
			status += " " + r.ErrorCode
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Seq, r.ID, status, r.Steps, r.BytesIn, r.BytesOut, r.SourcePath)
	}
	return tw.Flush()
}

func outputStoreError(formatter *OutputFormatter, path string, err error) error {
	if outErr := formatter.Error(ErrCodeStore, err.Error(), map[string]any{"db": path}); outErr != nil {
		return outErr
	}
	return reportedExitError(ExitCommandError, "run history", err)
}
