package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tesler-ui/datasync/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Type     string // optional - filter to one action type
	Verify   bool
}

// TraceEntry is one journaled action in the trace timeline.
type TraceEntry struct {
	Seq     int64           `json:"seq"`
	Type    string          `json:"type"`
	Hash    string          `json:"hash"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Timeline []TraceEntry   `json:"timeline"`
	ByType   map[string]int `json:"by_type"`
	Corrupt  []int64        `json:"corrupt,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List a recorded action journal",
		Long: `List the action timeline of a recorded journal.

Shows every journaled action with its seq, type tag, and payload hash.
With --verify, payload hashes are recomputed and mismatches reported.

Examples:
  datasync trace --db ./session.db
  datasync trace --db ./session.db --type bcFetchDataSuccess
  datasync trace --db ./session.db --verify --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only show actions of this type")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute payload hashes and report mismatches")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	result := TraceResult{ByType: make(map[string]int)}
	for _, r := range records {
		if opts.Type != "" && r.Type != opts.Type {
			continue
		}
		entry := TraceEntry{Seq: r.Seq, Type: r.Type, Hash: r.Hash}
		if opts.Verbose {
			entry.Payload = json.RawMessage(r.Payload)
		}
		result.Timeline = append(result.Timeline, entry)
		result.ByType[r.Type]++
	}

	if opts.Verify {
		corrupt, err := store.Verify(cmd.Context())
		if err != nil {
			_ = formatter.Error("E001", err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		result.Corrupt = corrupt
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Timeline {
			fmt.Fprintf(formatter.Writer, "%6d  %-24s %s\n", e.Seq, e.Type, e.Hash[:12])
			if opts.Verbose && len(e.Payload) > 0 {
				fmt.Fprintf(formatter.Writer, "        %s\n", e.Payload)
			}
		}
		fmt.Fprintf(formatter.Writer, "%d action(s)\n", len(result.Timeline))
		if opts.Verify {
			if len(result.Corrupt) == 0 {
				fmt.Fprintln(formatter.Writer, "✓ Journal intact")
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %d corrupt record(s): %v\n", len(result.Corrupt), result.Corrupt)
			}
		}
	}

	if len(result.Corrupt) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d corrupt record(s)", len(result.Corrupt)))
	}
	return nil
}
