package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tesler-ui/datasync/internal/journal"
	"github.com/tesler-ui/datasync/internal/state"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplaySummary is the result of replaying a journal against a fresh store.
type ReplaySummary struct {
	Actions    int            `json:"actions"`
	LastSeq    int64          `json:"last_seq"`
	ByType     map[string]int `json:"by_type"`
	ScreenName string         `json:"screen,omitempty"`
	ViewName   string         `json:"view,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded action journal",
		Long: `Replay a recorded action journal against a fresh store.

Reducers are pure functions of (state, action) and seq fixes the order,
so replaying a journal reproduces the exact state the recorded session
reached. The command reports the replayed action stream and the final
screen/view the store ended on.

Examples:
  datasync replay --db ./session.db
  datasync replay --db ./session.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error("E005", fmt.Sprintf("journal database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("journal database not found: %s", opts.Database))
	}

	store, err := journal.Open(opts.Database)
	if err != nil {
		_ = formatter.Error("E004", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer store.Close()

	records, err := store.ReadAll(cmd.Context())
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	summary := ReplaySummary{ByType: make(map[string]int)}
	st := state.NewStore()

	for _, r := range records {
		act, err := journal.Decode(r.Type, r.Payload)
		if err != nil {
			_ = formatter.Error("E001", fmt.Sprintf("seq %d: %v", r.Seq, err), nil)
			return NewExitError(ExitFailure, fmt.Sprintf("replay failed at seq %d", r.Seq))
		}
		formatter.VerboseLog("seq %d: %s", r.Seq, r.Type)
		st.Apply(act)
		summary.Actions++
		summary.LastSeq = r.Seq
		summary.ByType[r.Type]++
	}

	sn := st.Snapshot()
	summary.ScreenName = sn.ScreenName()
	summary.ViewName = sn.ViewName()

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "Replayed %d action(s), last seq %d\n", summary.Actions, summary.LastSeq)
	if summary.ScreenName != "" {
		fmt.Fprintf(formatter.Writer, "Final screen: %s", summary.ScreenName)
		if summary.ViewName != "" {
			fmt.Fprintf(formatter.Writer, ", view: %s", summary.ViewName)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
