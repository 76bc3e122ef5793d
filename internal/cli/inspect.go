package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quiltsoft/stitch/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	DB string // snapshot database path
}

// RunSummary is the wire form of one snapshot run.
type RunSummary struct {
	Token      string `json:"token"`
	Source     string `json:"source"`
	CreatedAt  string `json:"createdAt"`
	Entries    int    `json:"entries"`
	Assets     int    `json:"assets"`
	Unresolved int    `json:"unresolved"`
}

// EntitySummary is the wire form of one stored entity.
type EntitySummary struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Locale      string `json:"locale,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// InspectResult holds inspect output for either mode.
type InspectResult struct {
	Runs     []RunSummary    `json:"runs,omitempty"`
	Run      *RunSummary     `json:"run,omitempty"`
	Entities []EntitySummary `json:"entities,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [run-token]",
		Short: "Inspect snapshot runs in a database",
		Long: `List snapshot runs, or show the entities of one run.

Without a token, lists all runs newest first. With a token, shows that
run and every entity written under it, in write order.

Exit codes:
  0 - Success
  2 - Command error (database not found, unknown token)

Examples:
  stitch inspect --db snapshots.db
  stitch inspect --db snapshots.db 0190f8a1-...
  stitch inspect --db snapshots.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return runInspect(opts, token, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "snapshot database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(opts *InspectOptions, token string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	if token == "" {
		return inspectRuns(opts, st, formatter, cmd)
	}
	return inspectRun(opts, st, formatter, cmd, token)
}

func inspectRuns(opts *InspectOptions, st *store.Store, formatter *OutputFormatter, cmd *cobra.Command) error {
	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	result := InspectResult{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		result.Runs = append(result.Runs, runSummary(r))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs.")
		return nil
	}
	for _, r := range result.Runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d entr%s, %d asset(s), %d unresolved\n",
			r.Token, r.Source, r.Entries, plural(r.Entries, "y", "ies"), r.Assets, r.Unresolved)
	}
	return nil
}

func inspectRun(opts *InspectOptions, st *store.Store, formatter *OutputFormatter, cmd *cobra.Command, token string) error {
	run, err := st.ReadRun(cmd.Context(), token)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("reading run %s", token), err)
	}

	entities, err := st.ReadEntities(cmd.Context(), token)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading entities", err)
	}

	summary := runSummary(run)
	result := InspectResult{Run: &summary, Entities: make([]EntitySummary, 0, len(entities))}
	for _, e := range entities {
		result.Entities = append(result.Entities, EntitySummary{
			Kind:        e.Kind,
			ID:          e.ID,
			Locale:      e.Locale,
			ContentType: e.ContentType,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "run %s (%s, %s)\n", run.Token, run.Source, run.CreatedAt)
	for _, e := range result.Entities {
		line := fmt.Sprintf("  %s %s", e.Kind, e.ID)
		if e.Locale != "" {
			line += " [" + e.Locale + "]"
		}
		if e.ContentType != "" {
			line += " (" + e.ContentType + ")"
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

func runSummary(r store.Run) RunSummary {
	return RunSummary{
		Token:      r.Token,
		Source:     r.Source,
		CreatedAt:  r.CreatedAt,
		Entries:    r.EntryCount,
		Assets:     r.AssetCount,
		Unresolved: r.Unresolved,
	}
}
