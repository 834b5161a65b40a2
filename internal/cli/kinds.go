package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/typetrace/internal/classify"
	"github.com/roach88/typetrace/internal/store"
)

// KindsOptions holds flags for the kinds command.
type KindsOptions struct {
	*RootOptions
	Index string
	RunID string // optional - defaults to the latest run
	Kind  string // optional - list the records of one kind
	Name  string // optional - list the records with one name
}

// KindsResult is the output of the kinds command.
type KindsResult struct {
	RunID     string      `json:"run_id"`
	Input     string      `json:"input"`
	Output    string      `json:"output"`
	Mode      string      `json:"mode"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	Items     int64       `json:"items"`
	Dropped   int64       `json:"dropped"`
	Truncated bool        `json:"truncated"`
	Kinds     []KindEntry `json:"kinds"`
	Types     []TypeEntry `json:"types,omitempty"`
}

// KindEntry is one row of the per-kind table.
type KindEntry struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// TypeEntry is one indexed record listed by --kind or --name.
type TypeEntry struct {
	Seq    int64  `json:"seq"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Record string `json:"record"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KindsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "Show per-kind counts of an indexed run",
		Long: `Show how many records of each kind a run produced.

Runs are recorded with --index. Without --run the latest run is shown.
With --kind or --name the matching records are listed too.

Examples:
  typetrace kinds --index runs.db
  typetrace kinds --index runs.db --run 0190a5c4-...
  typetrace kinds --index runs.db --kind AnonymousFunction --format json
  typetrace kinds --index runs.db --name Promise`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKinds(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Index, "index", "", "path to SQLite kind index (required)")
	_ = cmd.MarkFlagRequired("index")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (defaults to the latest run)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "list the records of this kind")
	cmd.Flags().StringVar(&opts.Name, "name", "", "list the records with this name")
	cmd.MarkFlagsMutuallyExclusive("kind", "name")

	return cmd
}

// Error codes of kinds failures in JSON mode.
const (
	codeIndexNotFound = "E001"
	codeNoRuns        = "E002"
	codeQueryFailed   = "E003"
	codeUnknownKind   = "E004"
)

func runKinds(opts *KindsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := newPrinter(cmd, opts.Format)

	if opts.Kind != "" && !classify.IsKnown(classify.Kind(opts.Kind)) {
		return p.Fail(ExitCommandError, codeUnknownKind, "unknown kind", unknownKind(opts.Kind))
	}

	// Don't create an empty index for a mistyped path.
	if _, err := os.Stat(opts.Index); err != nil {
		return p.Fail(ExitCommandError, codeIndexNotFound, "index not found", err)
	}

	st, err := store.Open(opts.Index)
	if err != nil {
		return p.Fail(ExitCommandError, codeIndexNotFound, "failed to open index", err)
	}
	defer st.Close()

	p.Debugf("Reading index %s", opts.Index)
	result, err := queryKinds(ctx, st, opts)
	if errors.Is(err, store.ErrNoRuns) {
		return p.Fail(ExitCommandError, codeNoRuns, "no runs in index", err)
	}
	if err != nil {
		return p.Fail(ExitCommandError, codeQueryFailed, "failed to query index", err)
	}
	p.Debugf("Run %s: %d kinds", result.RunID, len(result.Kinds))

	return p.Result(result, func(w io.Writer) { outputKindsText(w, result) })
}

func unknownKind(kind string) error {
	known := classify.Kinds()
	names := make([]string, len(known))
	for i, k := range known {
		names[i] = string(k)
	}
	return fmt.Errorf("%q is not one of: %s", kind, strings.Join(names, ", "))
}

func queryKinds(ctx context.Context, st *store.Store, opts *KindsOptions) (KindsResult, error) {
	runID := opts.RunID
	if runID == "" {
		latest, err := st.LatestRunID(ctx)
		if err != nil {
			return KindsResult{}, err
		}
		runID = latest
	}

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return KindsResult{}, err
	}

	counts, err := st.KindCounts(ctx, runID)
	if err != nil {
		return KindsResult{}, err
	}

	result := KindsResult{
		RunID:     run.ID,
		Input:     run.Input,
		Output:    run.Output,
		Mode:      run.Mode,
		Status:    run.Status,
		Error:     run.Error,
		Items:     run.Items,
		Dropped:   run.Dropped,
		Truncated: run.Truncated,
		Kinds:     make([]KindEntry, 0, len(counts)),
	}
	for _, kc := range counts {
		result.Kinds = append(result.Kinds, KindEntry{Kind: kc.Kind, Count: kc.Count})
	}

	var rows []store.TypeRow
	switch {
	case opts.Kind != "":
		rows, err = st.TypesByKind(ctx, runID, opts.Kind)
	case opts.Name != "":
		rows, err = st.TypesByName(ctx, runID, opts.Name)
	}
	if err != nil {
		return KindsResult{}, err
	}
	if rows != nil {
		result.Types = make([]TypeEntry, 0, len(rows))
		for _, r := range rows {
			result.Types = append(result.Types, TypeEntry{Seq: r.Seq, ID: r.TypeID, Name: r.Name, Record: r.Record})
		}
	}
	return result, nil
}

func outputKindsText(w io.Writer, result KindsResult) {
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Input: %s (%s mode)\n", result.Input, result.Mode)
	fmt.Fprintf(w, "Output: %s\n", result.Output)
	fmt.Fprintf(w, "Status: %s\n", result.Status)
	if result.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(w, "Items: %d  Dropped: %d  Truncated: %t\n", result.Items, result.Dropped, result.Truncated)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Kinds ===")
	if len(result.Kinds) == 0 {
		fmt.Fprintln(w, "  (no records)")
	}
	for _, k := range result.Kinds {
		fmt.Fprintf(w, "  %-28s %d\n", k.Kind, k.Count)
	}

	if result.Types != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Types ===")
		if len(result.Types) == 0 {
			fmt.Fprintln(w, "  (no records)")
		}
		for _, t := range result.Types {
			fmt.Fprintf(w, "  [%d] %s\n", t.Seq, t.Record)
		}
	}
}
